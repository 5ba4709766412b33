// Package main is the entry point for the oauthcore-demo CLI, a thin
// cobra wrapper that exercises the oauthcore package's five caller
// operations from a terminal.
package main

import (
	"fmt"
	"os"

	"github.com/httpcraft/oauthcore/internal/oauthcli"
)

func main() {
	if err := oauthcli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
