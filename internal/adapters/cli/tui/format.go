package tui

import (
	"fmt"

	"github.com/piyusharama/transcript-generator/internal/runlog"
)

// FormatSize formats a byte count for display
// Examples: 512 -> "512 B", 1536 -> "1.5 KB", 146800640 -> "140.0 MB"
func FormatSize(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

// FormatLogLine renders a status line as "15:04:05 text".
// Non-informational lines carry their level so they stand out in plain output.
func FormatLogLine(line runlog.Line) string {
	ts := line.Timestamp.Format("15:04:05")
	if line.Level == runlog.LevelInfo || line.Level == "" {
		return fmt.Sprintf("%s %s", ts, line.Text)
	}
	return fmt.Sprintf("%s [%s] %s", ts, line.Level, line.Text)
}
