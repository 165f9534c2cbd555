// Command markupguard sanitizes JSON arrays of untrusted HTML fragments.
package main

import (
	"os"

	"github.com/njchilds90/markupguard/internal/cli"
	"github.com/njchilds90/markupguard/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		config.Exitf("load config: %v", err)
	}
	if err := cli.NewRootCommand(cfg, os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		config.Exitf("Error: %v", err)
	}
}
