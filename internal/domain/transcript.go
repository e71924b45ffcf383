package domain

import (
	"strings"
	"time"
)

// Segment represents a timed segment of transcribed text
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcript represents the full transcription result
type Transcript struct {
	Text          string    `json:"text"`
	Segments      []Segment `json:"segments"`
	Model         string    `json:"model"`
	TranscribedAt time.Time `json:"transcribed_at"`
}

// ToText returns the plain text that is persisted as the transcript artifact
func (t *Transcript) ToText() string {
	if t == nil {
		return ""
	}
	if t.Text != "" {
		return t.Text
	}

	var parts []string
	for _, seg := range t.Segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// AnalysisPrompt combines the user's instruction with the transcript text
func AnalysisPrompt(instruction, transcript string) string {
	return instruction + "\n\nTranscript:\n" + transcript
}
