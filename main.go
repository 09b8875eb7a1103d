// main package for restitch command-line tool
// Package main is the entry point for the restitch CLI.
package main

import "restitch.dev/pkg/restitch/cmd"

func main() {
	cmd.Execute()
}
