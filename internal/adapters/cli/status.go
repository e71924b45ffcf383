package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/piyusharama/transcript-generator/internal/adapters/cli/tui"
	"github.com/piyusharama/transcript-generator/internal/application"
	"github.com/piyusharama/transcript-generator/internal/domain"
)

var cleanFromFlag string

// NewStatusCmd creates the status subcommand
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <media-file>",
		Short: "Show which outputs already exist for a file",
		Args:  cobra.ExactArgs(1),
		RunE:  runStatus,
	}
}

// NewCleanCmd creates the clean subcommand
func NewCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean <media-file>",
		Short: "Delete outputs so the next run regenerates them",
		Long: `Existing outputs are always reused. Delete them with clean when the input
file has changed or a step should be redone.

--from selects the first step to redo; later steps are removed too.`,
		Args: cobra.ExactArgs(1),
		RunE: runClean,
	}

	cmd.Flags().StringVar(&cleanFromFlag, "from", string(domain.StageExtraction),
		"First step to redo: extraction, transcription, analysis")

	return cmd
}

// NewOpenReportCmd creates the open-report subcommand
func NewOpenReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open-report <media-file>",
		Short: "Open the analysis report of a file in a text editor",
		Args:  cobra.ExactArgs(1),
		RunE:  runOpenReport,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	app, err := GetApp()
	if err != nil {
		return err
	}

	status, err := app.StatusSvc.Status(args[0])
	if err != nil {
		return err
	}

	fmt.Println(renderStatus(status))
	return nil
}

func renderStatus(status *application.JobStatus) string {
	rows := make([][]string, 0, len(status.Artifacts))
	for _, a := range status.Artifacts {
		state, size := "missing", "-"
		if a.Exists {
			state = "done"
			size = tui.FormatSize(a.Size)
		}
		rows = append(rows, []string{a.Label, state, size, a.Path})
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Output folder: %s\n", status.Job.OutputDir))
	sb.WriteString(renderTable(
		[]string{"Step", "Status", "Size", "Path"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
	))
	return sb.String()
}

func parseStage(s string) (domain.Stage, error) {
	switch stage := domain.Stage(strings.ToLower(strings.TrimSpace(s))); stage {
	case domain.StageExtraction, domain.StageTranscription, domain.StageAnalysis:
		return stage, nil
	default:
		return "", fmt.Errorf("unknown step %q (use extraction, transcription or analysis)", s)
	}
}

func runClean(cmd *cobra.Command, args []string) error {
	from, err := parseStage(cleanFromFlag)
	if err != nil {
		return err
	}

	app, err := GetApp()
	if err != nil {
		return err
	}

	removed, err := app.StatusSvc.Clean(args[0], from)
	if err != nil {
		return err
	}

	switch removed {
	case 0:
		fmt.Println("Nothing to remove")
	case 1:
		fmt.Println("Removed 1 file")
	default:
		fmt.Printf("Removed %d files\n", removed)
	}
	return nil
}

func runOpenReport(cmd *cobra.Command, args []string) error {
	app, err := GetApp()
	if err != nil {
		return err
	}

	path, err := app.ReportSvc.OpenForInput(args[0])
	if errors.Is(err, domain.ErrNoReport) {
		return fmt.Errorf("no report at %s; run 'transcriptgen run --analyze %s' first", path, args[0])
	}
	if err != nil {
		return err
	}

	fmt.Printf("Opening report: %s\n", path)
	return nil
}
