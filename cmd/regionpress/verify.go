package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/craftops/regionpress/internal/chunk"
	"github.com/craftops/regionpress/internal/regionfile"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <file.mca>...",
	Short: "Verify the structural integrity of region files",
	Long: `Verify that region files are well-formed.

This command checks:
- The directory fits and every slot stays within the file
- No two chunks claim overlapping sectors
- Every chunk payload decompresses and parses`,
	Args: cobra.MinimumNArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	var badFiles int
	for _, path := range args {
		problems := verifyFile(path)
		if len(problems) == 0 {
			fmt.Printf("%s: OK\n", path)
			continue
		}
		badFiles++
		fmt.Printf("%s: %d problems\n", path, len(problems))
		for _, p := range problems {
			fmt.Printf("  %s\n", p)
		}
	}

	if badFiles > 0 {
		return fmt.Errorf("%d of %d files failed verification", badFiles, len(args))
	}
	return nil
}

func verifyFile(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return []string{err.Error()}
	}

	region, err := regionfile.Parse(data)
	if err != nil {
		return []string{err.Error()}
	}

	var problems []string
	claimed := map[uint32]int{} // sector -> slot index

	for i := 0; i < regionfile.SlotCount; i++ {
		slot := region.Slots[i]
		if slot.Empty() {
			continue
		}

		payload, err := region.Payload(i)
		if err != nil {
			problems = append(problems, fmt.Sprintf("slot %d: %v", i, err))
			continue
		}

		// Sector span derived from the payload length, not the advisory
		// count byte.
		sectors := (len(payload.Data) + 5 + regionfile.SectorSize - 1) / regionfile.SectorSize
		for s := slot.Offset; s < slot.Offset+uint32(sectors); s++ {
			if other, ok := claimed[s]; ok {
				problems = append(problems, fmt.Sprintf("slot %d: sector %d overlaps slot %d", i, s, other))
			}
			claimed[s] = i
		}

		if payload.External() {
			continue
		}
		if _, _, err := chunk.Decode(payload); err != nil {
			problems = append(problems, fmt.Sprintf("slot %d: %v", i, err))
		}
	}
	return problems
}
