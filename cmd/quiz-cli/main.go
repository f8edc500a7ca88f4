package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"quiz-manager/internal/cli"
	"quiz-manager/internal/opentdb"
)

func main() {
	csvPath := flag.String("csv", "", "play questions from a converted CSV file instead of OpenTriviaDB")
	count := flag.Int("count", 10, "number of trivia questions")
	flag.Parse()

	var source cli.QuestionSource = cli.TriviaQuestions{
		Fetcher: opentdb.NewClient(&http.Client{Timeout: 10 * time.Second}),
		Amount:  *count,
	}
	if *csvPath != "" {
		source = cli.CSVQuestions{Path: *csvPath}
	}

	if err := cli.Run(context.Background(), os.Stdin, os.Stdout, source); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
