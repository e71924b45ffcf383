package whisper

import (
	"os/exec"
	"runtime"
)

// Probe detects whether whisper.cpp can offload inference to a GPU
type Probe struct {
	goos     string
	goarch   string
	lookPath func(string) (string, error)
}

// NewProbe creates a probe for the running platform
func NewProbe() *Probe {
	return &Probe{goos: runtime.GOOS, goarch: runtime.GOARCH, lookPath: exec.LookPath}
}

// Accelerated reports Apple Silicon (Metal) or an installed NVIDIA driver.
func (p *Probe) Accelerated() bool {
	if p.goos == "darwin" && p.goarch == "arm64" {
		return true
	}
	_, err := p.lookPath("nvidia-smi")
	return err == nil
}
