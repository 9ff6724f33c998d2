// Package main provides the regionpress CLI tool for compacting
// Minecraft region files.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
