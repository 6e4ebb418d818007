// Package main is the single-binary entrypoint for QuestDo.
package main

import "github.com/questdo/questdo/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
