package main

import "github.com/mplug-cli/mplug/internal/cli"

// Version is overridden by ldflags at release time.
var Version = "dev"

func main() {
	cli.Execute(Version)
}
