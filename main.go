package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/briangreenhill/mapty/internal/activity"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{}))

	cli := activity.NewCLI(os.Stdout, os.Stderr, logger)
	if err := cli.Run(context.Background(), os.Args[1:]); err != nil {
		logger.Error("Error running mapty", slog.Any("error", err))
		os.Exit(1)
	}
}
