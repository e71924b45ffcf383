package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piyusharama/transcript-generator/internal/adapters/cli/tui"
	"github.com/piyusharama/transcript-generator/internal/ports"
)

// NewModelCmd creates the model subcommand
func NewModelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Manage Whisper models",
		Long: `Manage the whisper.cpp models used for transcription.

The model is chosen automatically for each run: medium when GPU acceleration
is available, base otherwise. Missing models are downloaded on first use.`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available models",
		RunE:  runModelList,
	}

	downloadCmd := &cobra.Command{
		Use:   "download [model]",
		Short: "Download a model ahead of time",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runModelDownload,
	}

	removeCmd := &cobra.Command{
		Use:   "remove <model>",
		Short: "Remove a downloaded model",
		Args:  cobra.ExactArgs(1),
		RunE:  runModelRemove,
	}

	cmd.AddCommand(listCmd, downloadCmd, removeCmd)
	return cmd
}

func runModelList(cmd *cobra.Command, args []string) error {
	app, err := GetApp()
	if err != nil {
		return err
	}

	fmt.Println(renderModels(app.Transcriber.AvailableModels(), ports.DefaultModelPolicy(app.Probe).Choose()))
	return nil
}

func renderModels(models []ports.Model, auto string) string {
	rows := make([][]string, 0, len(models))
	for _, m := range models {
		status := "not downloaded"
		if m.Downloaded {
			status = "downloaded"
		}
		if m.Name == auto {
			status += " (auto)"
		}
		rows = append(rows, []string{m.Name, tui.FormatSize(m.Size), status, m.Description})
	}
	return renderTable(
		[]string{"Model", "Size", "Status", "Notes"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft},
	)
}

func runModelDownload(cmd *cobra.Command, args []string) error {
	app, err := GetApp()
	if err != nil {
		return err
	}

	var model string
	if len(args) == 1 {
		model = args[0]
	} else {
		if !isTerminal() {
			return fmt.Errorf("specify a model name; see 'transcriptgen model list'")
		}
		var options []tui.MenuOption
		for _, m := range app.Transcriber.AvailableModels() {
			if m.Downloaded {
				continue
			}
			options = append(options, tui.MenuOption{Label: m.Name, Hint: m.Description, Value: m.Name})
		}
		if len(options) == 0 {
			fmt.Println("All models are already downloaded")
			return nil
		}
		model, err = tui.RunMenu("Which model do you want to download?", options)
		if err != nil {
			return err
		}
		if model == "" {
			fmt.Println("Cancelled")
			return nil
		}
	}

	if app.Transcriber.IsModelDownloaded(model) {
		fmt.Printf("Model '%s' is already downloaded\n", model)
		return nil
	}

	progress := tui.NewDownloadProgress(fmt.Sprintf("Downloading model '%s'", model), false)
	if err := app.Transcriber.DownloadModel(cmd.Context(), model, progress.Update); err != nil {
		progress.Fail(err)
		return err
	}
	progress.Done()
	return nil
}

func runModelRemove(cmd *cobra.Command, args []string) error {
	app, err := GetApp()
	if err != nil {
		return err
	}

	model := args[0]

	if !app.Transcriber.IsModelDownloaded(model) {
		fmt.Printf("Model '%s' is not downloaded\n", model)
		return nil
	}

	if err := app.Transcriber.DeleteModel(model); err != nil {
		return err
	}

	fmt.Printf("Model '%s' removed\n", model)
	return nil
}
