package main

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags.
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "regionpress",
	Short: "Compact Minecraft region files by pruning never-visited chunks",
	Long: `Regionpress rebuilds region containers (*.mca) keeping only the
chunks a player ever touched. Generation-only chunks are safely
regenerable by the game and usually dominate a world's storage.

Examples:
  # Compact ./input/ into ./output/
  regionpress run

  # Replace files in place and strip cached chunk data too
  regionpress run --input ./world/region --nokeep --optimise-chunks

  # Compact a world backup stored in S3
  regionpress run --input s3://backups/world/region --output ./region

  # Show what a region file holds
  regionpress inspect r.0.0.mca`,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}
