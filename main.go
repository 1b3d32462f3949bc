// Package main is the entry point for the treejson CLI.
package main

import "treejson.dev/pkg/treejson/cmd"

func main() {
	cmd.Execute()
}
