// ABOUTME: Entry point for the panel CLI
// ABOUTME: Command-line client and terminal dashboard for the municipal backend

package main

import (
	"fmt"
	"os"

	"github.com/gadibarra/panel-municipal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
