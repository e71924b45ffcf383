package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piyusharama/transcript-generator/internal/adapters/cli/tui"
)

// NewDepsCmd creates the deps subcommand
func NewDepsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Manage external tools (ffmpeg, whisper.cpp)",
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show dependency status",
		RunE:  runDepsStatus,
	}

	installCmd := &cobra.Command{
		Use:   "install",
		Short: "Install a static ffmpeg build",
		RunE:  runDepsInstall,
	}

	cmd.AddCommand(statusCmd, installCmd)
	return cmd
}

func runDepsStatus(cmd *cobra.Command, args []string) error {
	app, err := GetApp()
	if err != nil {
		return err
	}

	var rows [][]string

	// ffmpeg
	if path := app.Extractor.GetFFmpegPath(); path != "" {
		rows = append(rows, []string{"ffmpeg", "installed", path})
	} else {
		rows = append(rows, []string{"ffmpeg", "not found", "run 'transcriptgen deps install'"})
	}

	// whisper.cpp
	if path := app.Transcriber.GetBinaryPath(); path != "" {
		rows = append(rows, []string{"whisper.cpp", "installed", path})
	} else {
		rows = append(rows, []string{"whisper.cpp", "not found", "install whisper.cpp and put whisper-cli on PATH"})
	}

	// Whisper models
	models := app.Transcriber.AvailableModels()
	downloaded := 0
	for _, m := range models {
		if m.Downloaded {
			downloaded++
		}
	}
	rows = append(rows, []string{"models", fmt.Sprintf("%d/%d downloaded", downloaded, len(models)), ""})

	accel := "CPU only"
	if app.Probe.Accelerated() {
		accel = "GPU available"
	}
	rows = append(rows, []string{"acceleration", accel, ""})

	fmt.Println(renderTable([]string{"Dependency", "Status", "Details"}, rows, nil))
	return nil
}

func runDepsInstall(cmd *cobra.Command, args []string) error {
	app, err := GetApp()
	if err != nil {
		return err
	}

	if app.Extractor.IsFFmpegAvailable() {
		fmt.Printf("ffmpeg is already installed (%s)\n", app.Extractor.GetFFmpegPath())
		return nil
	}

	if instructions := app.Extractor.FFmpegInstructions(); instructions != "" {
		fmt.Println(instructions)
		return nil
	}

	progress := tui.NewDownloadProgress("Installing ffmpeg", false)
	if err := app.Extractor.InstallFFmpeg(cmd.Context(), progress.Update); err != nil {
		progress.Fail(err)
		return err
	}
	progress.Done()
	return nil
}
