package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"quiz-manager/internal/userclient"
)

func main() {
	server := flag.String("server", "http://127.0.0.1:8000", "quiz service base URL")
	timeout := flag.Duration("timeout", 5*time.Second, "HTTP timeout")
	maxInvalid := flag.Int("max-invalid", 3, "invalid answers allowed before a question is skipped")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := userclient.Run(ctx, os.Stdin, os.Stdout, userclient.Config{
		ServerURL:         *server,
		HTTPTimeout:       *timeout,
		MaxInvalidAnswers: *maxInvalid,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
