package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"workstarter/internal/app"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(app.Options{})
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}

	// Failed launches are reported in the log; they do not change the exit code.
	if _, err := a.Run(ctx); err != nil {
		_ = a.Close()
		fmt.Fprintln(os.Stderr, "fatal run:", err)
		os.Exit(1)
	}
	_ = a.Close()
}
