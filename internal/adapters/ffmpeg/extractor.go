package ffmpeg

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/piyusharama/transcript-generator/internal/adapters/proc"
	"github.com/piyusharama/transcript-generator/internal/config"
	"github.com/piyusharama/transcript-generator/internal/domain"
	"github.com/piyusharama/transcript-generator/internal/ports"
)

// Extractor implements ports.AudioExtractor using the ffmpeg binary
type Extractor struct {
	override string
	binDir   string
	goos     string
	goarch   string
	runner   proc.Runner
	client   *http.Client
	lookPath func(string) (string, error)

	mu         sync.Mutex
	ffmpegPath string
}

// Option configures an Extractor
type Option func(*Extractor)

// WithBinaryPath uses path instead of searching for ffmpeg
func WithBinaryPath(path string) Option {
	return func(e *Extractor) { e.override = path }
}

// WithBinDir sets where the installer places ffmpeg
func WithBinDir(dir string) Option {
	return func(e *Extractor) { e.binDir = dir }
}

// WithRunner replaces process execution
func WithRunner(r proc.Runner) Option {
	return func(e *Extractor) { e.runner = r }
}

// WithHTTPClient sets the client used for installation downloads
func WithHTTPClient(c *http.Client) Option {
	return func(e *Extractor) { e.client = c }
}

// WithPlatform overrides the detected OS and architecture
func WithPlatform(goos, goarch string) Option {
	return func(e *Extractor) {
		e.goos = goos
		e.goarch = goarch
	}
}

// NewExtractor creates a new ffmpeg extractor
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		binDir:   config.BinDir(),
		goos:     runtime.GOOS,
		goarch:   runtime.GOARCH,
		runner:   proc.ExecRunner{},
		client:   http.DefaultClient,
		lookPath: exec.LookPath,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Extractor) binaryName() string {
	if e.goos == "windows" {
		return "ffmpeg.exe"
	}
	return "ffmpeg"
}

func (e *Extractor) findBinary() string {
	if e.override != "" {
		if _, err := os.Stat(e.override); err == nil {
			return e.override
		}
		return ""
	}

	// Check bundled location first
	bundled := filepath.Join(e.binDir, e.binaryName())
	if _, err := os.Stat(bundled); err == nil {
		return bundled
	}

	if path, err := e.lookPath(e.binaryName()); err == nil {
		return path
	}

	return ""
}

// GetFFmpegPath returns the resolved ffmpeg binary, or "" when missing
func (e *Extractor) GetFFmpegPath() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ffmpegPath == "" {
		e.ffmpegPath = e.findBinary()
	}
	return e.ffmpegPath
}

func (e *Extractor) IsFFmpegAvailable() bool {
	return e.GetFFmpegPath() != ""
}

// ExtractAudio re-encodes the audio track of inputPath as MP3.
// The format is forced because outputPath may carry a temporary suffix.
func (e *Extractor) ExtractAudio(ctx context.Context, inputPath, outputPath string) error {
	bin := e.GetFFmpegPath()
	if bin == "" {
		return domain.ErrFFmpegNotFound
	}

	res, err := e.runner.Run(ctx, bin, buildExtractArgs(inputPath, outputPath)...)
	if err != nil {
		return proc.Describe("ffmpeg", res, err)
	}

	if _, err := os.Stat(outputPath); err != nil {
		return fmt.Errorf("ffmpeg completed but output file is missing: %w", err)
	}
	return nil
}

// ConvertToWAV writes mono 16 kHz PCM, the input format whisper.cpp expects.
func (e *Extractor) ConvertToWAV(ctx context.Context, inputPath, outputPath string) error {
	bin := e.GetFFmpegPath()
	if bin == "" {
		return domain.ErrFFmpegNotFound
	}

	res, err := e.runner.Run(ctx, bin, buildWAVArgs(inputPath, outputPath)...)
	if err != nil {
		return proc.Describe("ffmpeg", res, err)
	}
	return nil
}

func buildExtractArgs(inputPath, outputPath string) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", inputPath,
		"-vn",
		"-acodec", "libmp3lame",
		"-q:a", "2",
		"-f", "mp3",
		outputPath,
	}
}

func buildWAVArgs(inputPath, outputPath string) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", inputPath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		"-f", "wav",
		outputPath,
	}
}

// Ensure Extractor implements interface
var _ ports.AudioExtractor = (*Extractor)(nil)
