package cmd

import (
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"v.io/x/lib/cmdline"

	"github.com/cds-astro/go-moc/encoding/fits"
	"github.com/cds-astro/go-moc/moc"
	"github.com/cds-astro/go-moc/valued"
)

// newCmdFromFits implements `from-fits`: build a MOC from a multi-order
// probability map's cumulative threshold (§4.8). Skymap ingestion (the
// other half of §4.8's FromFITSSkymap) additionally needs a
// geom.Coverage.FromRing implementation for RING-ordered rows, which this
// binary has no provider for (DESIGN.md) — so `-kind skymap` fails with
// errNoHealpixProvider rather than silently mishandling RING data.
func newCmdFromFits() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "from-fits",
		Short:    "Build a MOC from a FITS probability map by cumulative threshold",
		ArgsName: "inpath outpath",
	}
	kindFlag := cmd.Flags.String("kind", "multiorder", "multiorder|skymap")
	formatFlag := cmd.Flags.String("format", "", "Output MOC format, guessed from outpath's extension if empty")
	depthFlag := cmd.Flags.Int("depth", 10, "Target MOC depth")
	cumulFromFlag := cmd.Flags.Float64("cumul-from", 0, "Lower bound of the cumulative value range to include")
	cumulToFlag := cmd.Flags.Float64("cumul-to", 0.9, "Upper bound of the cumulative value range to include")
	ascFlag := cmd.Flags.Bool("asc", false, "Sort candidates ascending instead of descending")
	strictFlag := cmd.Flags.Bool("strict", false, "Exclude a straddling cell instead of including it whole")
	noSplitFlag := cmd.Flags.Bool("no-split", false, "Disable recursive descent of a straddling cell")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("from-fits takes inpath outpath, but found %v", argv)
		}
		if *kindFlag == "skymap" {
			return errNoHealpixProvider
		}
		if *kindFlag != "multiorder" {
			return fmt.Errorf("unknown -kind %q, want multiorder|skymap", *kindFlag)
		}
		opts := valued.Opts{
			CumulFrom: *cumulFromFlag,
			CumulTo:   *cumulToFlag,
			Asc:       *ascFlag,
			Strict:    *strictFlag,
			NoSplit:   *noSplitFlag,
		}
		r, err := openInput(argv[0])
		if err != nil {
			return err
		}
		defer r.Close()

		var m moc.RangeMOC[uint64]
		m, err = fits.FromFITSMultiOrderMap[uint64](r, *depthFlag, opts)
		if err != nil {
			return err
		}
		return writeMOC1D(argv[1], *formatFlag, m)
	})
	return cmd
}
