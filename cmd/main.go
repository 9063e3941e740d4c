package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yungbote/pearls-backend/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	a, err := app.New()
	if err != nil {
		fmt.Printf("failed to initialize app: %v\n", err)
		return 1
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.Start()
	if err := a.Run(ctx, ":"+a.Cfg.Port); err != nil {
		a.Log.Error("Server exited", "error", err)
		return 1
	}
	return 0
}
