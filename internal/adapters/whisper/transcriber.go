package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/piyusharama/transcript-generator/internal/adapters/fetch"
	"github.com/piyusharama/transcript-generator/internal/adapters/proc"
	"github.com/piyusharama/transcript-generator/internal/config"
	"github.com/piyusharama/transcript-generator/internal/domain"
	"github.com/piyusharama/transcript-generator/internal/ports"
)

// Model sizes in bytes (approximate)
var modelSizes = map[string]int64{
	"tiny":   75 * 1024 * 1024,
	"base":   142 * 1024 * 1024,
	"small":  466 * 1024 * 1024,
	"medium": 1500 * 1024 * 1024,
	"large":  2900 * 1024 * 1024,
}

// WAVConverter resamples audio into the PCM format whisper.cpp reads
type WAVConverter interface {
	ConvertToWAV(ctx context.Context, inputPath, outputPath string) error
}

// Transcriber implements ports.Transcriber using whisper.cpp
type Transcriber struct {
	modelsDir string
	binDir    string
	override  string
	converter WAVConverter
	runner    proc.Runner
	client    *http.Client
	lookPath  func(string) (string, error)
	goos      string
}

// Option configures a Transcriber
type Option func(*Transcriber)

// WithModelsDir sets where ggml models are stored
func WithModelsDir(dir string) Option {
	return func(t *Transcriber) { t.modelsDir = dir }
}

// WithBinaryPath uses path instead of searching for whisper.cpp
func WithBinaryPath(path string) Option {
	return func(t *Transcriber) { t.override = path }
}

// WithRunner replaces process execution
func WithRunner(r proc.Runner) Option {
	return func(t *Transcriber) { t.runner = r }
}

// WithHTTPClient sets the client used for model downloads
func WithHTTPClient(c *http.Client) Option {
	return func(t *Transcriber) { t.client = c }
}

// NewTranscriber creates a new Whisper transcriber
func NewTranscriber(converter WAVConverter, opts ...Option) *Transcriber {
	t := &Transcriber{
		modelsDir: config.ModelsDir(),
		binDir:    config.BinDir(),
		converter: converter,
		runner:    proc.ExecRunner{},
		client:    http.DefaultClient,
		lookPath:  exec.LookPath,
		goos:      runtime.GOOS,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func modelURL(name string) string {
	return fmt.Sprintf("https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-%s.bin", name)
}

func (t *Transcriber) modelPath(name string) string {
	return filepath.Join(t.modelsDir, fmt.Sprintf("ggml-%s.bin", name))
}

func (t *Transcriber) AvailableModels() []ports.Model {
	models := []ports.Model{
		{Name: "tiny", Size: modelSizes["tiny"], Description: "~75MB, basic accuracy, very fast"},
		{Name: "base", Size: modelSizes["base"], Description: "~142MB, good accuracy, fast (CPU default)"},
		{Name: "small", Size: modelSizes["small"], Description: "~466MB, better accuracy, moderate speed"},
		{Name: "medium", Size: modelSizes["medium"], Description: "~1.5GB, great accuracy (GPU default)"},
		{Name: "large", Size: modelSizes["large"], Description: "~2.9GB, best accuracy, slow"},
	}

	for i := range models {
		models[i].Downloaded = t.IsModelDownloaded(models[i].Name)
	}

	return models
}

func (t *Transcriber) IsModelDownloaded(model string) bool {
	_, err := os.Stat(t.modelPath(model))
	return err == nil
}

func (t *Transcriber) DownloadModel(ctx context.Context, model string, progress func(downloaded, total int64)) error {
	if _, ok := modelSizes[model]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrModelNotFound, model)
	}
	return fetch.ToFile(ctx, t.client, modelURL(model), t.modelPath(model), progress)
}

func (t *Transcriber) DeleteModel(model string) error {
	if err := os.Remove(t.modelPath(model)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s is not downloaded", domain.ErrModelNotFound, model)
		}
		return err
	}
	return nil
}

// Transcribe runs whisper.cpp over audioPath, downloading the model first if needed.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath string, opts ports.TranscribeOpts) (*domain.Transcript, error) {
	model := opts.Model
	if model == "" {
		model = "base"
	}

	whisperBin := t.GetBinaryPath()
	if whisperBin == "" {
		return nil, domain.ErrWhisperNotFound
	}

	if !t.IsModelDownloaded(model) {
		if err := t.DownloadModel(ctx, model, opts.Progress); err != nil {
			return nil, fmt.Errorf("failed to download model %s: %w", model, err)
		}
	}

	workDir, err := os.MkdirTemp("", "transcriptgen-whisper-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(workDir)

	wavPath := filepath.Join(workDir, "audio.wav")
	if err := t.converter.ConvertToWAV(ctx, audioPath, wavPath); err != nil {
		return nil, fmt.Errorf("failed to prepare audio: %w", err)
	}

	outputBase := filepath.Join(workDir, "transcript")
	res, err := t.runner.Run(ctx, whisperBin, buildWhisperArgs(t.modelPath(model), wavPath, outputBase)...)
	if err != nil {
		return nil, proc.Describe("whisper", res, err)
	}

	return parseWhisperJSON(outputBase+".json", model)
}

func buildWhisperArgs(modelPath, audioPath, outputBase string) []string {
	return []string{
		"-m", modelPath,
		"-f", audioPath,
		"-of", outputBase,
		"-oj",
		"-np",
	}
}

func (t *Transcriber) binaryNames() []string {
	names := []string{"whisper-cli", "whisper", "whisper-cpp", "main"}
	if t.goos == "windows" {
		for i, n := range names {
			names[i] = n + ".exe"
		}
	}
	return names
}

// GetBinaryPath returns the resolved whisper.cpp binary, or "" when missing
func (t *Transcriber) GetBinaryPath() string {
	if t.override != "" {
		if _, err := os.Stat(t.override); err == nil {
			return t.override
		}
		return ""
	}

	// Check bundled location
	for _, name := range t.binaryNames() {
		bundled := filepath.Join(t.binDir, name)
		if _, err := os.Stat(bundled); err == nil {
			return bundled
		}
	}

	// "main" is too generic to trust on PATH
	for _, name := range t.binaryNames() {
		if strings.HasPrefix(name, "main") {
			continue
		}
		if path, err := t.lookPath(name); err == nil {
			return path
		}
	}

	return ""
}

func (t *Transcriber) IsAvailable() bool {
	return t.GetBinaryPath() != ""
}

func parseWhisperJSON(path string, model string) (*domain.Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("whisper produced no output: %w", err)
	}

	var output struct {
		Transcription []struct {
			Timestamps struct {
				From string `json:"from"`
				To   string `json:"to"`
			} `json:"timestamps"`
			Text string `json:"text"`
		} `json:"transcription"`
	}

	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("failed to parse whisper output: %w", err)
	}

	var segments []domain.Segment
	var fullText strings.Builder

	for _, item := range output.Transcription {
		text := strings.TrimSpace(item.Text)
		if text == "" {
			continue
		}

		segments = append(segments, domain.Segment{
			Start: parseTimestamp(item.Timestamps.From),
			End:   parseTimestamp(item.Timestamps.To),
			Text:  text,
		})

		if fullText.Len() > 0 {
			fullText.WriteString(" ")
		}
		fullText.WriteString(text)
	}

	return &domain.Transcript{
		Text:          fullText.String(),
		Segments:      segments,
		Model:         model,
		TranscribedAt: time.Now(),
	}, nil
}

var timestampRegex = regexp.MustCompile(`(\d+):(\d+):(\d+)[,.](\d+)`)

func parseTimestamp(ts string) float64 {
	matches := timestampRegex.FindStringSubmatch(ts)
	if len(matches) != 5 {
		return 0
	}

	hours, _ := strconv.Atoi(matches[1])
	minutes, _ := strconv.Atoi(matches[2])
	seconds, _ := strconv.Atoi(matches[3])
	millis, _ := strconv.Atoi(matches[4])

	return float64(hours)*3600 + float64(minutes)*60 + float64(seconds) + float64(millis)/1000
}

// Ensure Transcriber implements interface
var _ ports.Transcriber = (*Transcriber)(nil)
