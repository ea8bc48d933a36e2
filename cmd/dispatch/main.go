package main

import (
	"os"

	"github.com/predicated/dispatch/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
