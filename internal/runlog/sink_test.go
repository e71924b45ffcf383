package runlog

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSinkAppendKeepsOrder(t *testing.T) {
	sink := NewSink(nil)
	sink.Infof("first %d", 1)
	sink.Warnf("second")
	sink.Errorf("third: %s", "boom")

	lines := sink.Lines()
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}

	want := []string{"first 1", "second", "third: boom"}
	for i, line := range lines {
		if line.Text != want[i] {
			t.Errorf("line %d = %q, want %q", i, line.Text, want[i])
		}
		if line.Seq != int64(i+1) {
			t.Errorf("line %d seq = %d, want %d", i, line.Seq, i+1)
		}
	}
	if lines[2].Level != LevelError {
		t.Errorf("third line level = %s, want error", lines[2].Level)
	}
}

func TestSinkSince(t *testing.T) {
	sink := NewSink(nil)
	for i := 0; i < 5; i++ {
		sink.Infof("line %d", i)
	}

	got := sink.Since(3)
	if len(got) != 2 {
		t.Fatalf("Since(3) returned %d lines, want 2", len(got))
	}
	if got[0].Seq != 4 || got[1].Seq != 5 {
		t.Errorf("Since(3) seqs = %d,%d, want 4,5", got[0].Seq, got[1].Seq)
	}
}

func TestSinkResetKeepsSequence(t *testing.T) {
	sink := NewSink(nil)
	sink.Infof("old")
	sink.Reset()

	if len(sink.Lines()) != 0 {
		t.Fatal("Reset() should drop lines")
	}

	line := sink.Append(LevelInfo, "new")
	if line.Seq != 2 {
		t.Errorf("seq after reset = %d, want 2", line.Seq)
	}
}

func TestSinkUpdatedCoalesces(t *testing.T) {
	sink := NewSink(nil)
	sink.Infof("a")
	sink.Infof("b")

	select {
	case <-sink.Updated():
	default:
		t.Fatal("Updated() should have a pending signal")
	}

	select {
	case <-sink.Updated():
		t.Fatal("Updated() should coalesce signals")
	default:
	}
}

func TestSinkMirrorsToLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	sink := NewSink(logger)

	sink.Canceledf("Canceled before transcription.")

	out := buf.String()
	if !strings.Contains(out, "level=WARN") {
		t.Errorf("expected WARN level for canceled line, got %q", out)
	}
	if !strings.Contains(out, "kind=canceled") {
		t.Errorf("expected kind attribute, got %q", out)
	}
}
