package domain

import "testing"

func TestTranscript_ToText(t *testing.T) {
	tr := &Transcript{
		Segments: []Segment{
			{Start: 0.0, End: 3.5, Text: "Hello world."},
			{Start: 3.5, End: 7.0, Text: " How are you? "},
			{Start: 7.0, End: 8.0, Text: "   "},
		},
	}

	result := tr.ToText()
	expected := "Hello world. How are you?"

	if result != expected {
		t.Errorf("ToText() = %q, want %q", result, expected)
	}
}

func TestTranscript_ToTextPrefersText(t *testing.T) {
	tr := &Transcript{
		Text:     "full text",
		Segments: []Segment{{Text: "segment"}},
	}

	if got := tr.ToText(); got != "full text" {
		t.Errorf("ToText() = %q, want %q", got, "full text")
	}
}

func TestTranscript_ToTextNil(t *testing.T) {
	var tr *Transcript
	if got := tr.ToText(); got != "" {
		t.Errorf("ToText() on nil = %q, want empty", got)
	}
}

func TestAnalysisPrompt(t *testing.T) {
	got := AnalysisPrompt("Summarize in 3 bullets", "hello")
	want := "Summarize in 3 bullets\n\nTranscript:\nhello"

	if got != want {
		t.Errorf("AnalysisPrompt() = %q, want %q", got, want)
	}
}
