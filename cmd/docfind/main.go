// Package main provides the entry point for the docfind CLI.
package main

import (
	"fmt"
	"os"

	"github.com/docfind-go/docfind/cmd/docfind/cmd"
	dferrors "github.com/docfind-go/docfind/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "docfind:", err)
		os.Exit(dferrors.ExitCode(err))
	}
}
