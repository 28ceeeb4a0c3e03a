// Package main is the entry point for the git-forest CLI.
//
// It delegates all functionality to the internal/cli package, which
// defines cobra commands. The one exception is the hidden background
// version-check invocation, which is intercepted before cobra ever sees
// the arguments: it performs a network fetch, writes the cache, and
// exits silently.
package main

import (
	"os"

	"github.com/mmr-tortoise/forest/internal/cli"
	"github.com/mmr-tortoise/forest/internal/version"
)

func main() {
	if len(os.Args) == 2 && os.Args[1] == version.BackgroundCheckArg {
		version.RunBackgroundCheck()
		return
	}

	rootCmd := cli.NewRootCommand()
	cli.Execute(rootCmd)
}
