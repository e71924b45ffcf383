package tui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// renderProgressBar creates a text progress bar like [=====>    ]
func renderProgressBar(current, total int64, width int) string {
	if total <= 0 || current <= 0 {
		return "[" + strings.Repeat(" ", width) + "]"
	}
	if current >= total {
		return "[" + strings.Repeat("=", width) + "]"
	}

	filled := int(float64(current) / float64(total) * float64(width))
	if filled >= width {
		filled = width - 1
	}
	return "[" + strings.Repeat("=", filled) + ">" + strings.Repeat(" ", width-filled-1) + "]"
}

// DownloadProgress renders a single self-overwriting progress line for a download
type DownloadProgress struct {
	label      string
	out        io.Writer
	quiet      bool
	width      int
	mu         sync.Mutex
	lastRender time.Time
	rendered   bool
}

// NewDownloadProgress creates a progress line writing to stdout
func NewDownloadProgress(label string, quiet bool) *DownloadProgress {
	return newDownloadProgress(label, quiet, os.Stdout)
}

func newDownloadProgress(label string, quiet bool, out io.Writer) *DownloadProgress {
	return &DownloadProgress{label: label, out: out, quiet: quiet, width: 30}
}

// Update redraws the line. Renders are throttled except for the final one.
func (p *DownloadProgress) Update(downloaded, total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.quiet {
		return
	}
	done := total > 0 && downloaded >= total
	if !done && p.rendered && time.Since(p.lastRender) < 100*time.Millisecond {
		return
	}
	p.lastRender = time.Now()
	p.rendered = true

	if total > 0 {
		pct := float64(downloaded) / float64(total) * 100
		fmt.Fprintf(p.out, "\r%s %s %5.1f%% (%s / %s)", p.label,
			renderProgressBar(downloaded, total, p.width), pct,
			FormatSize(downloaded), FormatSize(total))
		return
	}
	fmt.Fprintf(p.out, "\r%s %s", p.label, FormatSize(downloaded))
}

// Done ends the progress line with a check mark
func (p *DownloadProgress) Done() {
	p.finish("✓")
}

// Fail ends the progress line with the failure reason
func (p *DownloadProgress) Fail(err error) {
	p.finish("✗ " + err.Error())
}

func (p *DownloadProgress) finish(status string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.quiet {
		return
	}
	if p.rendered {
		fmt.Fprintln(p.out)
	}
	fmt.Fprintf(p.out, "%s %s\n", p.label, status)
}
