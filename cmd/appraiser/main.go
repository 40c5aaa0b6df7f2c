package main

import (
	"os"

	"github.com/newelco/appraiser/cmd/appraiser/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
