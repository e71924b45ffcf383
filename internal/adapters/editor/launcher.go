// Package editor opens reports in a plain-text editor.
package editor

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/piyusharama/transcript-generator/internal/ports"
)

// Launcher starts the platform text editor without waiting for it to exit
type Launcher struct {
	command string
	goos    string
	start   func(name string, args ...string) error
}

// NewLauncher creates a launcher. A non-empty command overrides the platform default.
func NewLauncher(command string) *Launcher {
	return &Launcher{command: strings.TrimSpace(command), goos: runtime.GOOS, start: startDetached}
}

// Command returns the program and arguments used to open path
func (l *Launcher) Command(path string) (string, []string) {
	if l.command != "" {
		fields := strings.Fields(l.command)
		return fields[0], append(fields[1:], path)
	}
	switch l.goos {
	case "windows":
		return "notepad", []string{path}
	case "darwin":
		return "open", []string{"-a", "TextEdit", path}
	default:
		return "gedit", []string{path}
	}
}

// Open launches the editor on path
func (l *Launcher) Open(path string) error {
	name, args := l.Command(path)
	if err := l.start(name, args...); err != nil {
		return fmt.Errorf("launch editor: %w", err)
	}
	return nil
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

var _ ports.EditorLauncher = (*Launcher)(nil)
