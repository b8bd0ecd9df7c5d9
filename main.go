// Package main is the entry point for the keepgen CLI.
package main

import "keepgen.dev/pkg/keepgen/cmd"

func main() {
	cmd.Execute()
}
