// Package runlog holds the ordered status lines produced while a run executes.
package runlog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Level classifies a status line
type Level string

const (
	LevelInfo     Level = "info"
	LevelWarn     Level = "warn"
	LevelError    Level = "error"
	LevelCanceled Level = "canceled"
)

// Line is one sequenced status message
type Line struct {
	Seq       int64
	Timestamp time.Time
	Level     Level
	Text      string
}

// Sink is an append-only sequence of status lines.
// Readers poll with Since and wait on Updated for new lines.
type Sink struct {
	mu      sync.RWMutex
	nextSeq int64
	lines   []Line
	updated chan struct{}
	logger  *slog.Logger
}

// NewSink creates an empty sink. A nil logger disables mirroring.
func NewSink(logger *slog.Logger) *Sink {
	return &Sink{
		updated: make(chan struct{}, 1),
		logger:  logger,
	}
}

// Infof appends an informational line
func (s *Sink) Infof(format string, args ...any) {
	s.Append(LevelInfo, fmt.Sprintf(format, args...))
}

// Warnf appends a warning line
func (s *Sink) Warnf(format string, args ...any) {
	s.Append(LevelWarn, fmt.Sprintf(format, args...))
}

// Errorf appends a failure line
func (s *Sink) Errorf(format string, args ...any) {
	s.Append(LevelError, fmt.Sprintf(format, args...))
}

// Canceledf appends a cancellation line, kept distinct from failures
func (s *Sink) Canceledf(format string, args ...any) {
	s.Append(LevelCanceled, fmt.Sprintf(format, args...))
}

// Append adds one line and wakes any waiting reader.
func (s *Sink) Append(level Level, text string) Line {
	s.mu.Lock()
	s.nextSeq++
	line := Line{
		Seq:       s.nextSeq,
		Timestamp: time.Now(),
		Level:     level,
		Text:      text,
	}
	s.lines = append(s.lines, line)
	s.mu.Unlock()

	select {
	case s.updated <- struct{}{}:
	default:
	}

	s.mirror(line)
	return line
}

func (s *Sink) mirror(line Line) {
	if s.logger == nil {
		return
	}
	level := slog.LevelInfo
	switch line.Level {
	case LevelWarn, LevelCanceled:
		level = slog.LevelWarn
	case LevelError:
		level = slog.LevelError
	}
	s.logger.Log(context.Background(), level, line.Text, "seq", line.Seq, "kind", string(line.Level))
}

// Since returns lines with sequence strictly greater than seq.
func (s *Sink) Since(seq int64) []Line {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.lines) == 0 {
		return nil
	}

	out := make([]Line, 0, len(s.lines))
	for _, line := range s.lines {
		if line.Seq > seq {
			out = append(out, line)
		}
	}
	return out
}

// Lines returns a copy of every line currently held
func (s *Sink) Lines() []Line {
	return s.Since(0)
}

// Reset drops all lines. Sequence numbers keep increasing so readers never see reuse.
func (s *Sink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
}

// Updated fires (coalesced) after lines are appended.
func (s *Sink) Updated() <-chan struct{} {
	return s.updated
}

// LastSeq returns the sequence number of the newest line ever appended
func (s *Sink) LastSeq() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextSeq
}
