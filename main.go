package main

import (
	"github.com/sealmetrics/sealcheck/cmd"
)

// Version is the current version of sealcheck
// It is set at build time by using -ldflags "-X main.version=x.x.x"
var version string

func main() {
	cmd.Execute(version)
}
