// Package main is the entry point for the plumage CLI binary.
package main

import (
	"os"

	cli "plumage/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
