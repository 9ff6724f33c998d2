// Package batch drives compaction across a whole set of region files.
package batch

import (
	"fmt"
	"time"
)

// Progress tracks batch progress.
type Progress struct {
	Phase       string
	CurrentFile string
	FilesDone   int
	FilesTotal  int
	FilesFailed int
	Kept        int64
	Discarded   int64
	BytesIn     int64
	BytesOut    int64
	StartTime   time.Time
	Error       error
}

// ProgressFunc is called periodically with progress updates.
type ProgressFunc func(Progress)

// FormatBytes formats bytes as human-readable string.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// FormatDuration formats duration as human-readable string.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}

// DefaultProgressFunc prints progress to stdout.
func DefaultProgressFunc(p Progress) {
	switch p.Phase {
	case "scan":
		fmt.Printf("[Scan] %d region files found\n", p.FilesTotal)
	case "compact":
		fmt.Printf("\r[Compact] %d / %d files, %d kept, %d discarded, %s -> %s",
			p.FilesDone, p.FilesTotal, p.Kept, p.Discarded,
			FormatBytes(p.BytesIn), FormatBytes(p.BytesOut))
	case "done":
		elapsed := time.Since(p.StartTime)
		saved := p.BytesIn - p.BytesOut
		fmt.Printf("\n[Done] %d files, %s reclaimed (%s)\n",
			p.FilesDone, FormatBytes(saved), FormatDuration(elapsed))
	case "error":
		fmt.Printf("\n[Error] %s: %v\n", p.CurrentFile, p.Error)
	}
}
