package cmd

import (
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"v.io/x/lib/cmdline"
)

func newCmdConvert() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "convert",
		Short:    "Convert a MOC between ASCII, JSON and FITS",
		ArgsName: "srcpath destpath",
	}
	quantityFlag := cmd.Flags.String("quantity", "space", "Quantity of a 1-D input: space|time|frequency")
	dimFlag := cmd.Flags.String("dim", "", "Set for a 2-D input: time.space|frequency.space")
	srcFormatFlag := cmd.Flags.String("src-format", "", "Input format, guessed from srcpath's extension if empty: ascii|json|fits|fits-nuniq")
	dstFormatFlag := cmd.Flags.String("dst-format", "", "Output format, guessed from destpath's extension if empty: ascii|json|fits|fits-nuniq")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("convert takes srcpath destpath, but found %v", argv)
		}
		srcPath, destPath := argv[0], argv[1]
		if *dimFlag != "" {
			m, err := readMOC2D(srcPath, *srcFormatFlag, *dimFlag)
			if err != nil {
				return err
			}
			return writeMOC2D(destPath, *dstFormatFlag, m)
		}
		q, err := quantityByName(*quantityFlag)
		if err != nil {
			return err
		}
		m, err := readMOC1D(srcPath, *srcFormatFlag, q)
		if err != nil {
			return err
		}
		return writeMOC1D(destPath, *dstFormatFlag, m)
	})
	return cmd
}
