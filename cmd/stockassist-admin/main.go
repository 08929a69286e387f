package main

import (
	"github.com/stockassist/platform/cmd/cli"
)

// main delegates to the cli package so the commands stay testable.
func main() {
	cli.Execute()
}
