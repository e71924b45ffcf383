package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"

	"github.com/spf13/cobra"

	"github.com/piyusharama/transcript-generator/internal/adapters/cli/tui"
	"github.com/piyusharama/transcript-generator/internal/application"
	"github.com/piyusharama/transcript-generator/internal/domain"
	"github.com/piyusharama/transcript-generator/internal/runlog"
)

var (
	analyzeFlag bool
	apiKeyFlag  string
	promptFlag  string
	openFlag    bool
	quietFlag   bool
)

// NewRunCmd creates the run subcommand
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <media-file>",
		Short: "Process a file without the interactive window",
		Long: `Extract, transcribe and optionally analyze a media file, printing progress
to the terminal. Steps whose output already exists are skipped.

Press Ctrl+C once to stop after the current step, twice to abort immediately.`,
		Args: cobra.ExactArgs(1),
		RunE: runRun,
	}

	cmd.Flags().BoolVarP(&analyzeFlag, "analyze", "a", false, "Send the transcript to the language model for analysis")
	cmd.Flags().StringVar(&apiKeyFlag, "api-key", "", "API key for analysis (default: from the environment)")
	cmd.Flags().StringVarP(&promptFlag, "prompt", "p", "", "Analysis instruction (default: from config)")
	cmd.Flags().BoolVar(&openFlag, "open", false, "Open the report in a text editor when one is produced")
	cmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Only print errors")

	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	app, err := GetApp()
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	input := args[0]
	if info, err := os.Stat(input); err != nil {
		return fmt.Errorf("cannot read %s: %w", input, err)
	} else if info.IsDir() {
		return fmt.Errorf("%s is a directory", input)
	}

	cfg := application.RunConfig{AnalysisEnabled: analyzeFlag}
	if analyzeFlag {
		cfg.APIKey = apiKeyFlag
		if cfg.APIKey == "" {
			cfg.APIKey = app.Config.APIKeyFromEnv()
		}
		cfg.Prompt = promptFlag
		if cfg.Prompt == "" {
			cfg.Prompt = app.Config.Analysis.DefaultPrompt
		}
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// First interrupt stops at the next step boundary, the second kills the running tool
	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, os.Interrupt)
	defer signal.Stop(sigs)
	go func() {
		interrupts := 0
		for {
			select {
			case <-sigs:
				interrupts++
				if interrupts == 1 {
					app.Pipeline.Cancel()
					continue
				}
				cancel()
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	sink := app.Pipeline.Log()
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func(from int64) {
		defer wg.Done()
		streamLog(sink, from, os.Stdout, quietFlag, done)
	}(sink.LastSeq())

	result, runErr := app.Pipeline.Run(ctx, input, cfg)
	close(done)
	wg.Wait()

	app.Recent.Add(input)
	if err := app.Recent.Save(); err != nil {
		app.Logger.Warn("failed to save recent files", "error", err)
	}

	if runErr != nil {
		if errors.Is(runErr, domain.ErrFFmpegNotFound) || errors.Is(runErr, domain.ErrWhisperNotFound) {
			return fmt.Errorf("%w\nRun 'transcriptgen deps status' for setup help", runErr)
		}
		return runErr
	}

	if result.State == domain.StateCanceled {
		return nil
	}

	if !quietFlag {
		printOutputs(os.Stdout, result)
	}

	if openFlag && result.ReportProduced() {
		if err := app.ReportSvc.Open(result.ReportPath); err != nil {
			return fmt.Errorf("failed to open report: %w", err)
		}
	}
	return nil
}

// streamLog prints sink lines newer than from until done is closed.
// Quiet output keeps only error lines.
func streamLog(sink *runlog.Sink, from int64, w io.Writer, quiet bool, done <-chan struct{}) {
	seq := from
	flush := func() {
		for _, line := range sink.Since(seq) {
			seq = line.Seq
			if quiet && line.Level != runlog.LevelError {
				continue
			}
			fmt.Fprintln(w, tui.FormatLogLine(line))
		}
	}

	for {
		select {
		case <-sink.Updated():
			flush()
		case <-done:
			flush()
			return
		}
	}
}

func printOutputs(w io.Writer, result *application.RunResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "✓ Complete!")
	fmt.Fprintf(w, "  Audio: %s\n", result.Job.AudioPath)
	fmt.Fprintf(w, "  Transcript: %s\n", result.Job.TranscriptPath)
	if result.ReportProduced() || result.ReportFromCache {
		fmt.Fprintf(w, "  Report: %s\n", result.Job.ReportPath)
	}
	if result.AnalysisErr != nil {
		fmt.Fprintf(w, "  Analysis failed: %v\n", result.AnalysisErr)
	}
}
