package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/practiceplan/internal/planprobe"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := planprobe.NewRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
