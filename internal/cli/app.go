package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"quiz-manager/internal/opentdb"
	"quiz-manager/internal/pdfconv"
	"quiz-manager/internal/quiz"
)

const (
	maxAttempts   = 3
	questionCount = 10
)

// QuestionSource supplies the questions for an offline practice round.
type QuestionSource interface {
	Questions(ctx context.Context) ([]quiz.Question, error)
}

type triviaFetcher interface {
	FetchQuestions(ctx context.Context, amount int) ([]opentdb.RawQuestion, error)
}

// TriviaQuestions draws a round from OpenTriviaDB.
type TriviaQuestions struct {
	Fetcher triviaFetcher
	Amount  int
}

func (s TriviaQuestions) Questions(ctx context.Context) ([]quiz.Question, error) {
	amount := s.Amount
	if amount <= 0 {
		amount = questionCount
	}
	raw, err := s.Fetcher.FetchQuestions(ctx, amount)
	if err != nil {
		return nil, err
	}
	return quiz.FromTrivia(raw), nil
}

// CSVQuestions reads a round from a file produced by the PDF converter.
type CSVQuestions struct {
	Path string
}

func (s CSVQuestions) Questions(context.Context) ([]quiz.Question, error) {
	file, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return pdfconv.ReadCSV(file)
}

// Run plays one round locally and prints the final score. Nothing is sent to
// the quiz service.
func Run(ctx context.Context, in io.Reader, out io.Writer, source QuestionSource) error {
	questions, err := source.Questions(ctx)
	if err != nil {
		return err
	}

	reader := bufio.NewReader(in)
	answers := make([]string, 0, len(questions))

	for idx, question := range questions {
		printQuestion(out, idx+1, question)

		answer, ok := getAnswer(reader, out, question.Options)
		fmt.Fprintln(out)
		answers = append(answers, answer)
		if !ok {
			fmt.Fprintf(out, "Skipping. Correct answer was %s\n\n", question.CorrectAnswer)
			continue
		}

		if answer == question.CorrectAnswer {
			fmt.Fprintln(out, "Correct!")
		} else {
			fmt.Fprintf(out, "Wrong. Correct answer was %s\n", question.CorrectAnswer)
		}

		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "\nFinal score: %d/%d\n", quiz.Score(questions, answers), len(questions))
	return nil
}

func printQuestion(out io.Writer, number int, question quiz.Question) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Q%d: %s\n\n", number, question.QuestionText)
	for idx, option := range question.Options {
		fmt.Fprintf(out, "%c. %s\n", 'A'+idx, option)
	}
	fmt.Fprintln(out)
}

// getAnswer reads a letter for multiple choice questions and free text when
// the question has no options.
func getAnswer(reader *bufio.Reader, out io.Writer, options []string) (string, bool) {
	if len(options) > 26 {
		return "", false
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		userAnswer, err := reader.ReadString('\n')
		if err != nil {
			return "", false
		}
		userAnswer = strings.TrimSpace(userAnswer)

		if len(options) == 0 {
			if userAnswer != "" {
				return userAnswer, true
			}
		} else {
			maxLetter := byte('A' + len(options) - 1)
			letter := strings.ToUpper(userAnswer)
			if len(letter) == 1 && letter[0] >= 'A' && letter[0] <= maxLetter {
				return options[int(letter[0]-'A')], true
			}
			if attempt < maxAttempts {
				fmt.Fprintf(out, "\nInvalid input. Please enter a letter A-%c.\n", maxLetter)
			}
			continue
		}

		if attempt < maxAttempts {
			fmt.Fprintln(out, "\nPlease type an answer.")
		}
	}

	return "", false
}
