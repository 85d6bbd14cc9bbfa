package cmd

import (
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"v.io/x/lib/cmdline"

	"github.com/cds-astro/go-moc/moc"
	"github.com/cds-astro/go-moc/moc2"
)

// newBinaryOp builds a subcommand applying a two-MOC operation
// (intersection, union, symdiff, minus) to two same-quantity inputs.
func newBinaryOp(name, short string, apply func(a, b moc.RangeMOC[uint64]) moc.RangeMOC[uint64]) *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     name,
		Short:    short,
		ArgsName: "apath bpath outpath",
	}
	quantityFlag := cmd.Flags.String("quantity", "space", "space|time|frequency")
	formatFlag := cmd.Flags.String("format", "", "Input/output format, guessed from file extensions if empty")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 3 {
			return fmt.Errorf("%s takes apath bpath outpath, but found %v", name, argv)
		}
		q, err := quantityByName(*quantityFlag)
		if err != nil {
			return err
		}
		a, err := readMOC1D(argv[0], *formatFlag, q)
		if err != nil {
			return err
		}
		b, err := readMOC1D(argv[1], *formatFlag, q)
		if err != nil {
			return err
		}
		return writeMOC1D(argv[2], *formatFlag, apply(a, b))
	})
	return cmd
}

func newCmdComplement() *cmdline.Command {
	cmd := &cmdline.Command{Name: "complement", Short: "Complement a MOC", ArgsName: "inpath outpath"}
	quantityFlag := cmd.Flags.String("quantity", "space", "space|time|frequency")
	formatFlag := cmd.Flags.String("format", "", "Input/output format, guessed from file extensions if empty")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("complement takes inpath outpath, but found %v", argv)
		}
		q, err := quantityByName(*quantityFlag)
		if err != nil {
			return err
		}
		m, err := readMOC1D(argv[0], *formatFlag, q)
		if err != nil {
			return err
		}
		return writeMOC1D(argv[1], *formatFlag, m.Complement())
	})
	return cmd
}

func newCmdDegrade() *cmdline.Command {
	cmd := &cmdline.Command{Name: "degrade", Short: "Degrade a MOC to a coarser depth", ArgsName: "inpath outpath"}
	quantityFlag := cmd.Flags.String("quantity", "space", "space|time|frequency")
	formatFlag := cmd.Flags.String("format", "", "Input/output format, guessed from file extensions if empty")
	depthFlag := cmd.Flags.Int("depth", -1, "Target depth (required, must be <= the input's depth)")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("degrade takes inpath outpath, but found %v", argv)
		}
		if *depthFlag < 0 {
			return fmt.Errorf("degrade requires -depth >= 0")
		}
		q, err := quantityByName(*quantityFlag)
		if err != nil {
			return err
		}
		m, err := readMOC1D(argv[0], *formatFlag, q)
		if err != nil {
			return err
		}
		return writeMOC1D(argv[1], *formatFlag, m.Degrade(*depthFlag))
	})
	return cmd
}

// newHealpixOp builds a subcommand for one of the HEALPix-neighbour-graph
// operations (extend, contract, extborder, intborder, fillexcept,
// fillholes, split). None of them can run in this binary: they all need a
// moc.HealpixLayerProvider, and spec.md §1 scopes "the specific HEALPix
// geometry library" out as an external collaborator nothing in the
// example corpus supplies (DESIGN.md). The flags a real implementation
// would take are still declared so -help documents the intended surface.
func newHealpixOp(name, short string) *cmdline.Command {
	cmd := &cmdline.Command{Name: name, Short: short, ArgsName: "inpath outpath"}
	cmd.Flags.String("format", "", "Input/output format, guessed from file extensions if empty")
	cmd.Flags.Bool("indirect-neighbours", false, "Use 8-connectivity (edges+corners) instead of 4-connectivity")
	cmd.Flags.Int("except-n-largest", 0, "fillexcept: number of largest holes to leave unfilled")
	cmd.Flags.Float64("sky-fraction", 0, "fillholes: fill holes no larger than this sky fraction")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("%s takes inpath outpath, but found %v", name, argv)
		}
		return errNoHealpixProvider
	})
	return cmd
}

func newCmdSplit() *cmdline.Command {
	cmd := &cmdline.Command{Name: "split", Short: "Split a MOC into its connected components", ArgsName: "inpath outprefix"}
	cmd.Flags.String("format", "", "Input/output format, guessed from file extensions if empty")
	cmd.Flags.Bool("indirect-neighbours", false, "Use 8-connectivity (edges+corners) instead of 4-connectivity")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("split takes inpath outprefix, but found %v", argv)
		}
		return errNoHealpixProvider
	})
	return cmd
}

// newFoldOp builds sfold/tfold/ffold (§4.6 "Fold projections"). inAxis
// selects which of the 2-D product's two axes the CLI's single-MOC input
// is read as: "first" (time or frequency, for tfold/ffold) or "second"
// (space, for sfold — always the product's second axis).
func newFoldOp(name, short, inAxis string, apply func(in moc.RangeMOC[uint64], st moc2.RangeMOC2[uint64, uint64]) moc.RangeMOC[uint64]) *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     name,
		Short:    short,
		ArgsName: "inpath 2dpath outpath",
	}
	formatFlag := cmd.Flags.String("format", "", "Input/output format, guessed from file extensions if empty")
	dimFlag := cmd.Flags.String("dim", "", "2-D input's dim: time.space|frequency.space")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 3 {
			return fmt.Errorf("%s takes inpath 2dpath outpath, but found %v", name, argv)
		}
		qa, qb, err := quantityPairByName(*dimFlag)
		if err != nil {
			return err
		}
		twoD, err := readMOC2D(argv[1], *formatFlag, *dimFlag)
		if err != nil {
			return err
		}
		inQ := qa
		if inAxis == "second" {
			inQ = qb
		}
		in, err := readMOC1D(argv[0], *formatFlag, inQ)
		if err != nil {
			return err
		}
		return writeMOC1D(argv[2], *formatFlag, apply(in, twoD))
	})
	return cmd
}
