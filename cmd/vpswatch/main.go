// Package main is the entry point for the vpswatch daemon.
package main

import "vpswatch/cmd/vpswatch/cmd"

func main() {
	cmd.Execute()
}
