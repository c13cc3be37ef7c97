// Package main provides grocer, a CLI that turns recipe URLs, manual
// entries, and pantry staples into a consolidated, categorized grocery
// list tracked across resumable sessions.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

const version = "0.1.0"

func main() {
	// Opt-in .env support, matching the environment-driven configuration.
	_ = godotenv.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	app := &app{}
	defer app.close()

	if err := newRootCommand(app).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorLabel, err)
		os.Exit(1)
	}
}
