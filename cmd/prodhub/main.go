package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"prodhub/cmd/prodhub/commands"
	"prodhub/internal/core"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := commands.Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", core.UserMessage(err))
		stop()
		os.Exit(1)
	}
}
