package cmd

import (
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"v.io/x/lib/cmdline"

	"github.com/cds-astro/go-moc/encoding/fits"
	"github.com/cds-astro/go-moc/qty"
	"github.com/cds-astro/go-moc/valued"
)

// newCmdMomsum implements the `momsum` operation: sum a multi-order
// probability map's value within a region MOC (§4.8, valued.SumWithin).
func newCmdMomsum() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "momsum",
		Short:    "Sum a multi-order map's value within a region MOC",
		ArgsName: "mappath regionpath",
	}
	regionFormatFlag := cmd.Flags.String("region-format", "", "Region MOC format, guessed from regionpath's extension if empty")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("momsum takes mappath regionpath, but found %v", argv)
		}
		mapFile, err := openInput(argv[0])
		if err != nil {
			return err
		}
		defer mapFile.Close()
		cells, err := fits.ReadMultiOrderMapCells[uint64](mapFile)
		if err != nil {
			return err
		}
		region, err := readMOC1D(argv[1], *regionFormatFlag, qty.Hpx)
		if err != nil {
			return err
		}
		sum := valued.SumWithin(qty.Hpx, cells, region)
		fmt.Println(sum)
		return nil
	})
	return cmd
}
