package main

import (
	"os"

	"github.com/goliatone/go-formwizard/cmd/formwizard/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
