package cmd

import (
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"v.io/x/lib/cmdline"

	"github.com/cds-astro/go-moc/filter"
	"github.com/cds-astro/go-moc/qty"
)

// newCmdFilter builds the `filter` parent with `position`/`time` children
// (§6 "filter {position,time}"). Unlike the rest of the tree, this one
// nests — v.io/x/lib/cmdline.Command.Children supports arbitrary depth,
// and the spec's own bracket notation names this as one grouped surface
// rather than two independent top-level verbs.
func newCmdFilter() *cmdline.Command {
	return &cmdline.Command{
		Name:     "filter",
		Short:    "Filter CSV rows by MOC membership",
		Children: []*cmdline.Command{newCmdFilterPosition(), newCmdFilterTime()},
	}
}

// newCmdFilterPosition declares the same flags a working implementation
// would take, so `filter position -help` documents the real surface, but
// the Runner always fails with errNoHealpixProvider: position filtering
// needs a geom.Coverage.Hash implementation (filter.NewPositionFilter),
// and this binary has none to inject.
func newCmdFilterPosition() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "position",
		Short:    "Keep CSV rows whose (lon,lat) columns fall inside a space MOC",
		ArgsName: "mocpath [inpath [outpath]]",
	}
	cmd.Flags.Int("lon-col", 0, "0-based column index of longitude")
	cmd.Flags.Int("lat-col", 1, "0-based column index of latitude")
	cmd.Flags.Bool("degrees", true, "Input lon/lat are in degrees rather than radians")
	cmd.Flags.Bool("header", false, "First input row is a header, passed through unfiltered")
	cmd.Flags.Int("chunk-size", 0, "Rows evaluated per chunk (0: default)")
	cmd.Flags.Int("parallelism", 1, "Row-evaluation pool size per chunk")
	cmd.Flags.String("moc-format", "", "MOC input format, guessed from mocpath's extension if empty")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) < 1 || len(argv) > 3 {
			return fmt.Errorf("filter position takes mocpath [inpath [outpath]], but found %v", argv)
		}
		return errNoHealpixProvider
	})
	return cmd
}

// errNoHealpixProvider is returned by every CLI operation that needs a
// concrete geom.Coverage or moc.HealpixLayerProvider implementation.
// spec.md §1 scopes "the specific HEALPix geometry library" out as an
// external collaborator, and no such library appears anywhere in the
// example corpus (DESIGN.md), so this binary has nothing to inject — the
// library's own geom/moc.HealpixLayer* adapter interfaces stay ready for
// a caller that links one in.
var errNoHealpixProvider = fmt.Errorf("no HEALPix coverage provider is wired into this binary; see DESIGN.md")

func newCmdFilterTime() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "time",
		Short:    "Keep CSV rows whose time/frequency column falls inside a 1-D MOC",
		ArgsName: "mocpath [inpath [outpath]]",
	}
	quantityFlag := cmd.Flags.String("quantity", "time", "time|frequency")
	col := cmd.Flags.Int("col", 0, "0-based column index of the value")
	header := cmd.Flags.Bool("header", false, "First input row is a header, passed through unfiltered")
	chunkSize := cmd.Flags.Int("chunk-size", 0, "Rows evaluated per chunk (0: default)")
	parallelism := cmd.Flags.Int("parallelism", 1, "Row-evaluation pool size per chunk")
	mocFormat := cmd.Flags.String("moc-format", "", "MOC input format, guessed from mocpath's extension if empty")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) < 1 || len(argv) > 3 {
			return fmt.Errorf("filter time takes mocpath [inpath [outpath]], but found %v", argv)
		}
		inPath, outPath := "", ""
		if len(argv) >= 2 {
			inPath = argv[1]
		}
		if len(argv) == 3 {
			outPath = argv[2]
		}
		q, err := quantityByName(*quantityFlag)
		if err != nil {
			return err
		}
		m, err := readMOC1D(argv[0], *mocFormat, q)
		if err != nil {
			return err
		}
		var vp filter.ValuePredicate[uint64]
		switch q.Name {
		case qty.Frequency.Name:
			vp = filter.NewFrequencyPredicate[uint64](m)
		default:
			vp = filter.NewTimePredicate[uint64](m)
		}
		test := filter.NewValueFilter[uint64](vp, *col)

		in, err := openInput(inPath)
		if err != nil {
			return err
		}
		defer in.Close()
		out, err := openOutput(outPath)
		if err != nil {
			return err
		}
		defer out.Close()

		return filter.FilterCSV(in, out, test, filter.Opts{
			HasHeader:   *header,
			ChunkSize:   *chunkSize,
			Parallelism: *parallelism,
		})
	})
	return cmd
}
