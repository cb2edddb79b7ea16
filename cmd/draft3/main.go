package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
)

func main() {
	exec := NewExecutor()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := exec.Execute(ctx)

	cancel()

	if err != nil {
		pterm.Error.Println(err)

		os.Exit(1) // nolint: gocritic
	}
}
