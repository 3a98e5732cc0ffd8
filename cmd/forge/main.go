// Package main provides the entry point for the forge CLI.
package main

import (
	"context"
	"os"

	"github.com/mrz1836/forge/internal/cli"
)

//nolint:gochecknoglobals // Set via ldflags at build time
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	err := cli.Execute(context.Background(), cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})
	os.Exit(cli.ExitCodeForError(err))
}
