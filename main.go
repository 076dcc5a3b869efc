package main

import (
	"os"

	"github.com/eduke-tools/assetstats/cli"
)

func main() {
	cli.Run(os.Args)
}
