package cmd

import (
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"v.io/x/lib/cmdline"

	"github.com/cds-astro/go-moc/store"
)

// newCmdChecksum computes a content fingerprint for a MOC file
// (store.Checksum), the same commutative seahash sum the handle store's
// `info`/`list` would report for a live handle. The handle store itself
// (§6) is a process-wide slab meant for a long-lived embedding (a WASM
// host, a server); a one-shot CLI invocation has no second request to
// reuse a handle for, so moc-tool calls store.Checksum directly on a
// freshly read MOC instead of routing through a store.Store.
func newCmdChecksum() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "checksum",
		Short:    "Print a MOC file's content checksum",
		ArgsName: "path",
	}
	quantityFlag := cmd.Flags.String("quantity", "space", "space|time|frequency")
	formatFlag := cmd.Flags.String("format", "", "Input format, guessed from path's extension if empty")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("checksum takes one pathname argument, but found %v", argv)
		}
		q, err := quantityByName(*quantityFlag)
		if err != nil {
			return err
		}
		m, err := readMOC1D(argv[0], *formatFlag, q)
		if err != nil {
			return err
		}
		fmt.Printf("%016x\n", store.Checksum(m))
		return nil
	})
	return cmd
}
