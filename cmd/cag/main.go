package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	mylog "cag/internal/log"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	// Load .env file if it exists (for API keys)
	_ = godotenv.Load()
	mylog.InitLogger(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
