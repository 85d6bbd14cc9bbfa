package main

import "github.com/cds-astro/go-moc/cmd/moc-tool/cmd"

func main() {
	cmd.Run()
}
