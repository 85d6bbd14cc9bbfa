package cmd

import (
	"log"

	"v.io/x/lib/cmdline"

	"github.com/cds-astro/go-moc/moc"
	"github.com/cds-astro/go-moc/moc2"
)

func newCmdIntersection() *cmdline.Command {
	return newBinaryOp("intersection", "Intersect two MOCs", func(a, b moc.RangeMOC[uint64]) moc.RangeMOC[uint64] { return a.And(b) })
}

func newCmdUnion() *cmdline.Command {
	return newBinaryOp("union", "Union two MOCs", func(a, b moc.RangeMOC[uint64]) moc.RangeMOC[uint64] { return a.Or(b) })
}

func newCmdSymdiff() *cmdline.Command {
	return newBinaryOp("symdiff", "Symmetric difference of two MOCs", func(a, b moc.RangeMOC[uint64]) moc.RangeMOC[uint64] { return a.Xor(b) })
}

func newCmdMinus() *cmdline.Command {
	return newBinaryOp("minus", "Subtract one MOC from another", func(a, b moc.RangeMOC[uint64]) moc.RangeMOC[uint64] { return a.Minus(b) })
}

func newCmdExtend() *cmdline.Command {
	return newHealpixOp("extend", "Extend a MOC by its external border")
}

func newCmdContract() *cmdline.Command {
	return newHealpixOp("contract", "Contract a MOC by removing its internal border")
}

func newCmdExtBorder() *cmdline.Command {
	return newHealpixOp("extborder", "Compute a MOC's external border")
}

func newCmdIntBorder() *cmdline.Command {
	return newHealpixOp("intborder", "Compute a MOC's internal border")
}

func newCmdFillExcept() *cmdline.Command {
	return newHealpixOp("fillexcept", "Fill every hole except the N largest")
}

func newCmdFillHoles() *cmdline.Command {
	return newHealpixOp("fillholes", "Fill holes no larger than a given sky fraction")
}

func newCmdSfold() *cmdline.Command {
	return newFoldOp("sfold", "Fold a space MOC through an ST-MOC/SF-MOC to the other axis", "second",
		func(in moc.RangeMOC[uint64], st moc2.RangeMOC2[uint64, uint64]) moc.RangeMOC[uint64] {
			return moc2.SpaceFold[uint64, uint64](in, st)
		})
}

func newCmdTfold() *cmdline.Command {
	return newFoldOp("tfold", "Fold a time MOC through an ST-MOC to its space axis", "first",
		func(in moc.RangeMOC[uint64], st moc2.RangeMOC2[uint64, uint64]) moc.RangeMOC[uint64] {
			return moc2.TimeFold[uint64, uint64](in, st)
		})
}

func newCmdFfold() *cmdline.Command {
	return newFoldOp("ffold", "Fold a frequency MOC through an SF-MOC to its space axis", "first",
		func(in moc.RangeMOC[uint64], sf moc2.RangeMOC2[uint64, uint64]) moc.RangeMOC[uint64] {
			return moc2.FrequencyFold[uint64, uint64](in, sf)
		})
}

// Run is moc-tool's entry point, grounded on cmd/bio-pamtool/cmd/main.go's
// Run(): a single flat v.io/x/lib/cmdline tree (plus the one nested
// `filter {position,time}` group §6 itself names as a pair), each
// subcommand a newCmdXxx() constructor wiring its own flags and a
// cmdutil.RunnerFunc.
func Run() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(&cmdline.Command{
		Name:  "moc-tool",
		Short: "Build, convert and query Multi-Order Coverage maps",
		Children: []*cmdline.Command{
			newCmdConvert(),
			newCmdFilter(),
			newCmdFromFits(),
			newCmdChecksum(),
			newCmdComplement(),
			newCmdDegrade(),
			newCmdIntersection(),
			newCmdUnion(),
			newCmdSymdiff(),
			newCmdMinus(),
			newCmdSplit(),
			newCmdExtend(),
			newCmdContract(),
			newCmdExtBorder(),
			newCmdIntBorder(),
			newCmdFillExcept(),
			newCmdFillHoles(),
			newCmdSfold(),
			newCmdTfold(),
			newCmdFfold(),
			newCmdMomsum(),
		},
	})
}
