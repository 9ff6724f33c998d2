package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/craftops/regionpress"
	"github.com/craftops/regionpress/internal/batch"
	"github.com/craftops/regionpress/internal/classify"
	"github.com/craftops/regionpress/internal/stats"
	statslogger "github.com/craftops/regionpress/internal/stats/logger"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Compact every region file from the input into the output",
	Long: `Compact a directory (or bucket) of region files.

Each file is processed independently: its chunks are classified, the
player-relevant ones are re-packed into a fresh container, and the rest
are dropped. A region whose every chunk is discardable produces no
output file at all. One bad file never aborts the batch; the command
exits non-zero if any file failed after the full pass.

Examples:
  # Defaults: ./input/ -> ./output/
  regionpress run

  # Replace in place, deleting nothing-but-air regions
  regionpress run --input ./world/region --nokeep

  # Keep chunks visited for less than a minute too
  regionpress run --min-inhabited 1m`,
	RunE: runRun,
}

var (
	inputDir       string
	outputDir      string
	noKeep         bool
	optimiseChunks bool
	workers        int
	minInhabited   time.Duration
	discardCorrupt bool
)

func init() {
	runCmd.Flags().StringVarP(&inputDir, "input", "i", "./input/", "source directory or bucket of *.mca files")
	runCmd.Flags().StringVarP(&outputDir, "output", "o", "./output/", "destination directory or bucket")
	runCmd.Flags().BoolVar(&noKeep, "nokeep", false, "delete each source file after it is processed (implies in-place replace when --output is unset)")
	runCmd.Flags().BoolVar(&optimiseChunks, "optimise-chunks", false, "also strip cached data (heightmaps, lighting marker) from kept chunks")
	runCmd.Flags().IntVar(&workers, "workers", batch.DefaultWorkers, "number of files compacted concurrently")
	runCmd.Flags().DurationVar(&minInhabited, "min-inhabited", 0, "keep chunks with more inhabited time than this")
	runCmd.Flags().BoolVar(&discardCorrupt, "discard-corrupt", false, "drop unreadable chunks instead of carrying them through verbatim")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	// Mirror the classic tool: -nokeep without an explicit output means
	// replace the input files in place.
	if noKeep && !cmd.Flags().Changed("output") {
		outputDir = inputDir
	}

	logger := zap.NewNop()
	if verbose {
		var err error
		if logger, err = zap.NewDevelopment(); err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		defer logger.Sync()
	}

	// Setup context with cancellation.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt: abandon in-flight files, leave their sources
	// untouched.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, finishing current files...")
		cancel()
	}()

	src, err := openStore(ctx, inputDir, false)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer src.Close()

	dst := src
	if outputDir != inputDir {
		if dst, err = openStore(ctx, outputDir, true); err != nil {
			return fmt.Errorf("opening output: %w", err)
		}
		defer dst.Close()
	}

	policy := classify.Default()
	policy.MinInhabited = minInhabited
	policy.DiscardCorrupt = discardCorrupt

	var collector stats.Collector = stats.NewNoop()
	if verbose {
		collector = statslogger.New(logger.Named("stats"))
	}

	press, err := regionpress.New(
		regionpress.WithPolicy(policy),
		regionpress.WithOptimizer(optimiseChunks),
		regionpress.WithLogger(logger),
		regionpress.WithStats(collector),
	)
	if err != nil {
		return fmt.Errorf("creating compactor: %w", err)
	}

	fmt.Printf("Compacting region files\n")
	fmt.Printf("  Input:     %s\n", inputDir)
	fmt.Printf("  Output:    %s\n", outputDir)
	fmt.Printf("  Workers:   %d\n", workers)
	fmt.Printf("  Optimise:  %v\n", optimiseChunks)
	if minInhabited > 0 {
		fmt.Printf("  Threshold: %s inhabited\n", minInhabited)
	}
	fmt.Println()

	driver := batch.New(press, src, dst,
		batch.WithWorkers(workers),
		batch.WithDeleteSource(noKeep),
		batch.WithProgress(batch.DefaultProgressFunc),
		batch.WithLogger(logger),
		batch.WithStats(collector),
	)

	_, err = driver.Run(ctx)
	return err
}
