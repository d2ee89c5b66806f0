package main

import (
	"os"

	"github.com/dscript-lang/dscript/cmd/dscript/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
