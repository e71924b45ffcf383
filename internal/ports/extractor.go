package ports

import "context"

// AudioExtractor decodes a media container and writes its audio track.
type AudioExtractor interface {
	// Extraction

	// ExtractAudio decodes inputPath and encodes its audio track as MP3 at outputPath.
	// outputPath may carry a temporary suffix; the encoder must not infer the format from it.
	ExtractAudio(ctx context.Context, inputPath, outputPath string) error

	// ffmpeg management

	// IsFFmpegAvailable checks if ffmpeg is installed.
	IsFFmpegAvailable() bool

	// GetFFmpegPath returns the path to the ffmpeg binary.
	GetFFmpegPath() string

	// InstallFFmpeg downloads and installs a static ffmpeg build, reporting progress via callback.
	InstallFFmpeg(ctx context.Context, progress func(downloaded, total int64)) error

	// FFmpegInstructions returns platform-specific installation instructions
	// when automatic installation is not supported, or "" otherwise.
	FFmpegInstructions() string
}
