package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/piyusharama/transcript-generator/internal/adapters/cli"
)

func main() {
	// Interrupts are handled per command so the first one can stop a run gracefully
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	code := cli.Execute(ctx)
	stop()
	os.Exit(code)
}
