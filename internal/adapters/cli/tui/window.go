package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/piyusharama/transcript-generator/internal/application"
	"github.com/piyusharama/transcript-generator/internal/domain"
	"github.com/piyusharama/transcript-generator/internal/ports"
	"github.com/piyusharama/transcript-generator/internal/runlog"
)

var (
	buttonStyle = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))
	focusedButtonStyle = buttonStyle.BorderForeground(lipgloss.Color("212")).
				Foreground(lipgloss.Color("212"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	logFrameStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))
)

// Controller is the part of the pipeline the window drives
type Controller interface {
	Run(ctx context.Context, inputPath string, cfg application.RunConfig) (*application.RunResult, error)
	Cancel() bool
	Log() *runlog.Sink
}

// ReportOpener opens a report in an editor
type ReportOpener interface {
	Open(path string) error
}

// WindowConfig wires the window to the pipeline
type WindowConfig struct {
	Controller Controller
	Reports    ReportOpener
	// Recent may be nil
	Recent ports.RecentInputs

	InputPath string
	APIKey    string
	Prompt    string
	KeyLabel  string
}

type control int

const (
	ctrlFile control = iota
	ctrlBrowse
	ctrlAnalyze
	ctrlKey
	ctrlPrompt
	ctrlGenerate
	ctrlCancel
	ctrlOpenReport
)

type logUpdatedMsg struct{}

type runFinishedMsg struct {
	result *application.RunResult
	err    error
}

// Window is the interactive transcript generator
type Window struct {
	ctx        context.Context
	controller Controller
	reports    ReportOpener
	recent     ports.RecentInputs
	sink       *runlog.Sink
	keyLabel   string

	file    textinput.Model
	picker  filepicker.Model
	key     textinput.Model
	prompt  textarea.Model
	log     viewport.Model
	spinner spinner.Model

	analyze  bool
	picking  bool
	allFiles bool
	focus    control
	running  bool
	finished bool
	report   string
	errMsg   string
	quitting bool

	lastSeq int64
	lines   []string
	width   int
	height  int
}

// NewWindow creates the window. ctx is passed to every run.
func NewWindow(ctx context.Context, cfg WindowConfig) Window {
	file := textinput.New()
	file.Placeholder = "path to a video or audio file"
	file.Prompt = ""
	file.Width = 60
	file.ShowSuggestions = true
	file.SetValue(cfg.InputPath)
	if cfg.Recent != nil {
		file.SetSuggestions(cfg.Recent.List())
	}
	file.Focus()

	key := textinput.New()
	key.Prompt = ""
	key.Width = 40
	key.EchoMode = textinput.EchoPassword
	key.EchoCharacter = '*'
	key.SetValue(cfg.APIKey)

	prompt := textarea.New()
	prompt.ShowLineNumbers = false
	prompt.SetWidth(60)
	prompt.SetHeight(4)
	prompt.SetValue(cfg.Prompt)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = selectedStyle

	keyLabel := cfg.KeyLabel
	if keyLabel == "" {
		keyLabel = "API Key:"
	}

	return Window{
		ctx:        ctx,
		controller: cfg.Controller,
		reports:    cfg.Reports,
		recent:     cfg.Recent,
		sink:       cfg.Controller.Log(),
		keyLabel:   keyLabel,
		file:       file,
		key:        key,
		prompt:     prompt,
		log:        viewport.New(80, 12),
		spinner:    sp,
		focus:      ctrlFile,
		lastSeq:    cfg.Controller.Log().LastSeq(),
		width:      80,
	}
}

func waitForLog(updated <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-updated
		return logUpdatedMsg{}
	}
}

func (m Window) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForLog(m.sink.Updated()))
}

func (m Window) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		if m.picking {
			var cmd tea.Cmd
			m.picker, cmd = m.picker.Update(msg)
			return m, cmd
		}
		return m, nil

	case logUpdatedMsg:
		m.pullLog()
		return m, waitForLog(m.sink.Updated())

	case runFinishedMsg:
		m.finishRun(msg)
		return m, nil

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.picking {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}
	return m.forward(msg)
}

func (m Window) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.controller.Cancel()
		m.sink.Infof("Window closed by OS.")
		m.quitting = true
		return m, tea.Quit
	}

	if m.picking {
		return m.handlePickerKey(msg)
	}

	switch msg.String() {
	case "tab":
		m.moveFocus(1)
		cmd := m.focusCmd()
		return m, cmd
	case "shift+tab":
		m.moveFocus(-1)
		cmd := m.focusCmd()
		return m, cmd
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.log, cmd = m.log.Update(msg)
		return m, cmd
	}

	switch m.focus {
	case ctrlAnalyze:
		if msg.String() == "enter" || msg.String() == " " || msg.String() == "space" {
			m.analyze = !m.analyze
			if m.height > 0 {
				m.resize(m.width, m.height)
			}
		}
		return m, nil
	case ctrlBrowse, ctrlGenerate, ctrlCancel, ctrlOpenReport:
		if msg.String() == "enter" || msg.String() == " " || msg.String() == "space" {
			return m.press(m.focus)
		}
		return m, nil
	case ctrlFile:
		if msg.String() == "enter" {
			return m.press(ctrlGenerate)
		}
	}

	return m.forward(msg)
}

// forward hands a message to the focused text field
func (m Window) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case ctrlFile:
		m.file, cmd = m.file.Update(msg)
	case ctrlKey:
		m.key, cmd = m.key.Update(msg)
	case ctrlPrompt:
		m.prompt, cmd = m.prompt.Update(msg)
	}
	return m, cmd
}

func (m Window) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.picking = false
		return m, nil
	case "ctrl+a":
		m.allFiles = !m.allFiles
		m.picker.AllowedTypes = pickerTypes(m.allFiles)
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.selectMedia(path)
		return m, nil
	}
	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.errMsg = "Not a video/audio file: " + filepath.Base(path) + " (ctrl+a shows all files)"
	}
	return m, cmd
}

// pickerTypes lists the selectable extensions; nil allows every file
func pickerTypes(allFiles bool) []string {
	if allFiles {
		return nil
	}
	exts := domain.MediaExtensions()
	types := make([]string, 0, 2*len(exts))
	for _, ext := range exts {
		types = append(types, ext, strings.ToUpper(ext))
	}
	return types
}

func (m Window) openPicker() (Window, tea.Cmd) {
	p := filepicker.New()
	p.AllowedTypes = pickerTypes(m.allFiles)
	if dir := filepath.Dir(strings.TrimSpace(m.file.Value())); dir != "." {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			p.CurrentDirectory = dir
		}
	}

	height := m.height
	if height <= 0 {
		height = 24
	}
	p, _ = p.Update(tea.WindowSizeMsg{Width: m.width, Height: height})

	m.picker = p
	m.picking = true
	m.errMsg = ""
	return m, p.Init()
}

func (m *Window) selectMedia(path string) {
	m.picking = false
	m.errMsg = ""
	m.file.SetValue(path)
	m.file.CursorEnd()
	m.sink.Infof("Selected media: %s", path)
	if !domain.IsMediaFile(path) {
		m.sink.Warnf("%s is not a recognized video/audio type; extraction may fail.", filepath.Base(path))
	}
	m.pullLog()
	m.setFocus(ctrlGenerate)
}

func (m Window) press(c control) (tea.Model, tea.Cmd) {
	switch c {
	case ctrlBrowse:
		return m.openPicker()
	case ctrlGenerate:
		return m.start()
	case ctrlCancel:
		if m.finished && !m.running {
			m.sink.Infof("Closing application.")
			m.quitting = true
			return m, tea.Quit
		}
		if !m.controller.Cancel() {
			m.sink.Canceledf("Cancel requested... no run is in progress.")
			m.pullLog()
		}
	case ctrlOpenReport:
		m.openReport()
	}
	return m, nil
}

func (m Window) start() (Window, tea.Cmd) {
	if m.running {
		m.errMsg = domain.ErrRunInProgress.Error()
		return m, nil
	}

	path := strings.TrimSpace(m.file.Value())
	if path == "" {
		m.errMsg = "Please select a video/audio file first."
		return m, nil
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		m.errMsg = "File not found: " + path
		return m, nil
	}

	cfg := application.RunConfig{AnalysisEnabled: m.analyze}
	if m.analyze {
		cfg.APIKey = strings.TrimSpace(m.key.Value())
		cfg.Prompt = strings.TrimSpace(m.prompt.Value())
	}

	m.errMsg = ""
	m.running = true
	m.finished = false
	m.report = ""
	m.lines = nil
	m.lastSeq = m.sink.LastSeq()
	m.log.SetContent("")
	if m.recent != nil {
		m.recent.Add(path)
	}
	if m.focus == ctrlOpenReport {
		m.focus = ctrlCancel
	}

	return m, tea.Batch(m.runCmd(path, cfg), m.spinner.Tick)
}

func (m Window) runCmd(path string, cfg application.RunConfig) tea.Cmd {
	controller := m.controller
	ctx := m.ctx
	return func() tea.Msg {
		result, err := controller.Run(ctx, path, cfg)
		return runFinishedMsg{result: result, err: err}
	}
}

func (m *Window) finishRun(msg runFinishedMsg) {
	m.running = false
	m.finished = true
	m.pullLog()

	if msg.err != nil {
		m.errMsg = msg.err.Error()
	}
	if msg.result.ReportProduced() {
		m.report = msg.result.ReportPath
	}

	if m.recent != nil {
		if err := m.recent.Save(); err != nil {
			m.sink.Warnf("Could not save recent files: %v", err)
		}
		m.file.SetSuggestions(m.recent.List())
	}
}

func (m *Window) openReport() {
	if m.report == "" {
		m.sink.Warnf("No report file found to open!")
		return
	}
	m.sink.Infof("Opening report: %s", m.report)
	if err := m.reports.Open(m.report); err != nil {
		if errors.Is(err, domain.ErrNoReport) {
			m.sink.Warnf("No report file found to open!")
			return
		}
		m.sink.Errorf("Error opening report: %v", err)
	}
}

func (m *Window) pullLog() {
	for _, line := range m.sink.Since(m.lastSeq) {
		m.lines = append(m.lines, FormatLogLine(line))
		m.lastSeq = line.Seq
	}
	m.log.SetContent(strings.Join(m.lines, "\n"))
	m.log.GotoBottom()
}

func (m *Window) resize(width, height int) {
	m.width = width
	m.height = height
	inner := width - 4
	if inner < 20 {
		inner = 20
	}
	m.file.Width = inner
	m.prompt.SetWidth(inner)
	m.log.Width = inner

	// form rows above the log, plus its border
	used := 17
	if m.analyze {
		used += 8
	}
	if h := height - used; h > 3 {
		m.log.Height = h
	}
}

func (m Window) controls() []control {
	cs := []control{ctrlFile, ctrlBrowse, ctrlAnalyze}
	if m.analyze {
		cs = append(cs, ctrlKey, ctrlPrompt)
	}
	cs = append(cs, ctrlGenerate, ctrlCancel)
	if m.report != "" {
		cs = append(cs, ctrlOpenReport)
	}
	return cs
}

func (m *Window) moveFocus(delta int) {
	cs := m.controls()
	idx := 0
	for i, c := range cs {
		if c == m.focus {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(cs)) % len(cs)
	m.setFocus(cs[idx])
}

func (m *Window) setFocus(c control) {
	m.focus = c
	m.file.Blur()
	m.key.Blur()
	m.prompt.Blur()
}

// focusCmd focuses the text field under the cursor, if any
func (m *Window) focusCmd() tea.Cmd {
	switch m.focus {
	case ctrlFile:
		return m.file.Focus()
	case ctrlKey:
		return m.key.Focus()
	case ctrlPrompt:
		return m.prompt.Focus()
	}
	return nil
}

func (m Window) button(c control, label string) string {
	if m.focus == c {
		return focusedButtonStyle.Render(label)
	}
	return buttonStyle.Render(label)
}

func (m Window) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Transcript Generator"))
	sb.WriteString("\n\n")

	if m.picking {
		return m.pickerView(&sb)
	}

	sb.WriteString(labelStyle.Render("Video/Audio file:"))
	sb.WriteString("\n")
	sb.WriteString(m.file.View())
	sb.WriteString("\n")
	sb.WriteString(m.button(ctrlBrowse, "Browse..."))
	sb.WriteString("\n\n")

	box := "[ ]"
	if m.analyze {
		box = "[x]"
	}
	check := box + " Analyze Transcript"
	if m.focus == ctrlAnalyze {
		check = selectedStyle.Render(check)
	}
	sb.WriteString(check)
	sb.WriteString("\n")

	if m.analyze {
		sb.WriteString("\n")
		sb.WriteString(labelStyle.Render(m.keyLabel))
		sb.WriteString("\n")
		sb.WriteString(m.key.View())
		sb.WriteString("\n")
		sb.WriteString(labelStyle.Render("Prompt:"))
		sb.WriteString("\n")
		sb.WriteString(m.prompt.View())
		sb.WriteString("\n")
	}

	cancelLabel := "Cancel"
	if m.finished && !m.running {
		cancelLabel = "Close"
	}
	buttons := []string{
		m.button(ctrlGenerate, "Generate Transcript"),
		m.button(ctrlCancel, cancelLabel),
	}
	if m.report != "" {
		buttons = append(buttons, m.button(ctrlOpenReport, "Open Report"))
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, buttons...))
	sb.WriteString("\n")

	if m.running {
		sb.WriteString(m.spinner.View() + " Processing...\n")
	}
	if m.errMsg != "" {
		sb.WriteString(errorStyle.Render("Error: " + m.errMsg))
		sb.WriteString("\n")
	}

	sb.WriteString(logFrameStyle.Render(m.log.View()))
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render("(tab to move, enter to press, ctrl+c to quit)"))
	sb.WriteString("\n")
	return sb.String()
}

func (m Window) pickerView(sb *strings.Builder) string {
	filter := "Media Files"
	if m.allFiles {
		filter = "All Files"
	}
	sb.WriteString(labelStyle.Render("Select a video/audio file (" + filter + ")"))
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(m.picker.CurrentDirectory))
	sb.WriteString("\n\n")
	sb.WriteString(m.picker.View())
	sb.WriteString("\n")
	if m.errMsg != "" {
		sb.WriteString(errorStyle.Render(m.errMsg))
		sb.WriteString("\n")
	}
	sb.WriteString(dimStyle.Render("(enter to open or choose, esc to go back, ctrl+a to toggle all files)"))
	sb.WriteString("\n")
	return sb.String()
}

// Running reports whether a run started from this window is still in flight
func (m Window) Running() bool {
	return m.running
}

// RunWindow shows the window until the user closes it
func RunWindow(ctx context.Context, cfg WindowConfig) (Window, error) {
	p := tea.NewProgram(NewWindow(ctx, cfg), tea.WithAltScreen(), tea.WithContext(ctx))

	finalModel, err := p.Run()
	if err != nil {
		return Window{}, err
	}
	return finalModel.(Window), nil
}
