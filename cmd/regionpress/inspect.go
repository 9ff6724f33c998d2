package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/craftops/regionpress/internal/batch"
	"github.com/craftops/regionpress/internal/chunk"
	"github.com/craftops/regionpress/internal/classify"
	"github.com/craftops/regionpress/internal/regionfile"

	_ "github.com/craftops/regionpress/internal/codec/gzipcodec"
	_ "github.com/craftops/regionpress/internal/codec/nocompcodec"
	_ "github.com/craftops/regionpress/internal/codec/zlibcodec"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.mca>",
	Short: "Show what a region file holds",
	Long: `Decode a region file's directory and chunks and report how many
chunks the stock policy would keep or discard, without writing anything.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	region, err := regionfile.Parse(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}

	policy := classify.Default()
	var (
		present, keep, discard, corrupt, external int
		schemes                                   = map[byte]int{}
	)

	for i := 0; i < regionfile.SlotCount; i++ {
		if region.Slots[i].Empty() {
			continue
		}
		present++

		payload, err := region.Payload(i)
		if err != nil {
			corrupt++
			if verbose {
				fmt.Printf("  slot %4d: unreadable: %v\n", i, err)
			}
			continue
		}
		schemes[payload.Scheme]++
		if payload.External() {
			external++
		}

		sum, _, err := chunk.Decode(payload)
		if err != nil {
			corrupt++
			if verbose {
				fmt.Printf("  slot %4d: undecodable: %v\n", i, err)
			}
			continue
		}

		if classify.Classify(sum, policy) == classify.Discard {
			discard++
		} else {
			keep++
		}
	}

	fmt.Printf("Region:    %s\n", args[0])
	fmt.Printf("Size:      %s (%d sectors)\n", batch.FormatBytes(int64(len(data))), len(data)/regionfile.SectorSize)
	fmt.Printf("Chunks:    %d present, %d empty slots\n", present, regionfile.SlotCount-present)
	fmt.Printf("Keep:      %d\n", keep)
	fmt.Printf("Discard:   %d\n", discard)
	if corrupt > 0 {
		fmt.Printf("Corrupt:   %d\n", corrupt)
	}
	if external > 0 {
		fmt.Printf("External:  %d\n", external)
	}
	for scheme, n := range schemes {
		fmt.Printf("Scheme %d:  %d chunks\n", scheme, n)
	}
	return nil
}
