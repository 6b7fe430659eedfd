// Package main is the entry point for the dashboard engine CLI.
package main

import (
	"dashmon/cmd/dashmon/cmd"
)

func main() {
	cmd.Execute()
}
