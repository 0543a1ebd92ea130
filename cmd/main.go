package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yungbote/neurobridge-voice/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx)
	if err != nil {
		fmt.Printf("Failed to init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	if err := application.Start(ctx); err != nil {
		application.Log.Error("Start failed", "error", err)
		return
	}

	errc := make(chan error, 1)
	go func() { errc <- application.Run() }()

	select {
	case <-ctx.Done():
		application.Log.Info("Shutting down")
	case err := <-errc:
		if err != nil {
			application.Log.Error("Server failed", "error", err)
		}
	}
}
