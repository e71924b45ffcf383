package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/piyusharama/transcript-generator/internal/adapters/cli/tui"
	"github.com/piyusharama/transcript-generator/internal/config"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "transcriptgen [media-file]",
		Short: "Transcribe video and audio files, with optional AI analysis",
		Long: `transcriptgen extracts the audio track of a video or audio file, transcribes
it locally with whisper.cpp and can send the transcript to a language model
for analysis.

Outputs are written next to the input, in a folder named after it:
  talk.mp4 -> talk/talk.mp3, talk/talk.txt, talk/talk_report.txt

Run without a subcommand to open the interactive window.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRoot,
	}

	// Add subcommands
	rootCmd.AddCommand(NewRunCmd())
	rootCmd.AddCommand(NewStatusCmd())
	rootCmd.AddCommand(NewCleanCmd())
	rootCmd.AddCommand(NewOpenReportCmd())
	rootCmd.AddCommand(NewModelCmd())
	rootCmd.AddCommand(NewDepsCmd())

	return rootCmd
}

func isTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func runRoot(cmd *cobra.Command, args []string) error {
	if !isTerminal() {
		return errors.New("the interactive window needs a terminal; use 'transcriptgen run <file>' instead")
	}

	app, err := GetApp()
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	var input string
	if len(args) == 1 {
		input = args[0]
	}

	window, err := tui.RunWindow(cmd.Context(), tui.WindowConfig{
		Controller: app.Pipeline,
		Reports:    app.ReportSvc,
		Recent:     app.Recent,
		InputPath:  input,
		APIKey:     app.Config.APIKeyFromEnv(),
		Prompt:     app.Config.Analysis.DefaultPrompt,
		KeyLabel:   keyLabel(app.Config),
	})
	if err != nil {
		return err
	}

	if window.Running() {
		app.Logger.Warn("window closed with a run in flight", "state", app.Pipeline.State())
	}
	return nil
}

func keyLabel(cfg *config.Config) string {
	if cfg.Analysis.Provider == config.ProviderGemini {
		return "Gemini API Key:"
	}
	return "OpenAI API Key:"
}

// Execute runs the CLI
func Execute(ctx context.Context) int {
	defer func() {
		if globalApp != nil {
			globalApp.Close()
		}
	}()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
