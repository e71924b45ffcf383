package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/piyusharama/transcript-generator/internal/adapters/analysis"
	"github.com/piyusharama/transcript-generator/internal/adapters/editor"
	"github.com/piyusharama/transcript-generator/internal/adapters/ffmpeg"
	"github.com/piyusharama/transcript-generator/internal/adapters/history"
	"github.com/piyusharama/transcript-generator/internal/adapters/joblock"
	"github.com/piyusharama/transcript-generator/internal/adapters/whisper"
	"github.com/piyusharama/transcript-generator/internal/application"
	"github.com/piyusharama/transcript-generator/internal/config"
	"github.com/piyusharama/transcript-generator/internal/logging"
	"github.com/piyusharama/transcript-generator/internal/ports"
	"github.com/piyusharama/transcript-generator/internal/runlog"
)

// App holds all application dependencies
type App struct {
	Config      *config.Config
	Logger      *slog.Logger
	Extractor   *ffmpeg.Extractor
	Transcriber *whisper.Transcriber
	Probe       *whisper.Probe
	Analyzer    ports.Analyzer
	Recent      *history.RecentFiles

	Pipeline  *application.Pipeline
	StatusSvc *application.StatusService
	ReportSvc *application.ReportService

	logCloser io.Closer
}

// NewApp creates and wires up all dependencies
func NewApp() (*App, error) {
	// Ensure directories exist
	if err := config.EnsureDirs(); err != nil {
		return nil, err
	}

	// Load config
	cfg, err := config.LoadDefault()
	if err != nil {
		return nil, err
	}

	logger, closer, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}

	// Create adapters
	var extractorOpts []ffmpeg.Option
	if cfg.Paths.FFmpeg != "" {
		extractorOpts = append(extractorOpts, ffmpeg.WithBinaryPath(cfg.Paths.FFmpeg))
	}
	extractor := ffmpeg.NewExtractor(extractorOpts...)

	var transcriberOpts []whisper.Option
	if cfg.Paths.Whisper != "" {
		transcriberOpts = append(transcriberOpts, whisper.WithBinaryPath(cfg.Paths.Whisper))
	}
	transcriber := whisper.NewTranscriber(extractor, transcriberOpts...)
	probe := whisper.NewProbe()

	analyzer, err := analysis.New(cfg)
	if err != nil {
		closer.Close()
		return nil, err
	}

	recent, err := history.Load(config.HistoryPath(), history.DefaultSize)
	if err != nil {
		logger.Warn("recent files unreadable, starting empty", "error", err)
		if recent, err = history.New(config.HistoryPath(), history.DefaultSize); err != nil {
			closer.Close()
			return nil, err
		}
	}

	fs := afero.NewOsFs()
	sink := runlog.NewSink(logger)

	// Create services
	pipeline := application.NewPipeline(fs, extractor, transcriber, ports.DefaultModelPolicy(probe), sink,
		application.WithAnalyzer(analyzer),
		application.WithLocker(joblock.New()),
	)

	logger.Debug("app initialized",
		"provider", cfg.Analysis.Provider,
		"model", cfg.AnalysisModel(),
		"ffmpeg", extractor.GetFFmpegPath(),
		"whisper", transcriber.GetBinaryPath(),
	)

	return &App{
		Config:      cfg,
		Logger:      logger,
		Extractor:   extractor,
		Transcriber: transcriber,
		Probe:       probe,
		Analyzer:    analyzer,
		Recent:      recent,
		Pipeline:    pipeline,
		StatusSvc:   application.NewStatusService(fs),
		ReportSvc:   application.NewReportService(fs, editor.NewLauncher(cfg.Editor.Command)),
		logCloser:   closer,
	}, nil
}

// Close flushes the log file
func (a *App) Close() error {
	if a.logCloser == nil {
		return nil
	}
	return a.logCloser.Close()
}

var globalApp *App

// GetApp returns the global app instance, creating it if needed
func GetApp() (*App, error) {
	if globalApp == nil {
		app, err := NewApp()
		if err != nil {
			return nil, err
		}
		globalApp = app
	}
	return globalApp, nil
}
