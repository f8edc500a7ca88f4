package userclient

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"quiz-manager/internal/opentdb"
	"quiz-manager/internal/quiz"
)

const (
	defaultServer            = "http://127.0.0.1:8000"
	defaultQuestionCount     = 10
	defaultHTTPTimeout       = 5 * time.Second
	defaultMaxInvalidAnswers = 3
)

// TriviaSource supplies questions for the generate command.
type TriviaSource interface {
	FetchQuestions(ctx context.Context, amount int) ([]opentdb.RawQuestion, error)
}

type Config struct {
	ServerURL         string
	MaxInvalidAnswers int
	HTTPTimeout       time.Duration
	Trivia            TriviaSource
}

type session struct {
	client            *HTTPClient
	trivia            TriviaSource
	reader            *bufio.Reader
	out               io.Writer
	serverURL         string
	username          string
	maxInvalidAnswers int
}

func Run(ctx context.Context, in io.Reader, out io.Writer, cfg Config) error {
	serverURL := strings.TrimSpace(cfg.ServerURL)
	if serverURL == "" {
		serverURL = defaultServer
	}

	maxInvalidAnswers := cfg.MaxInvalidAnswers
	if maxInvalidAnswers <= 0 {
		maxInvalidAnswers = defaultMaxInvalidAnswers
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	trivia := cfg.Trivia
	if trivia == nil {
		trivia = opentdb.NewClient(&http.Client{Timeout: timeout})
	}

	s := &session{
		client:            NewHTTPClient(serverURL, &http.Client{Timeout: timeout}),
		trivia:            trivia,
		reader:            bufio.NewReader(in),
		out:               out,
		serverURL:         serverURL,
		maxInvalidAnswers: maxInvalidAnswers,
	}

	fmt.Fprintf(out, "quiz-user-service\nserver=%s\n\n", serverURL)
	printHelp(out)

	for {
		if s.username != "" {
			fmt.Fprintf(out, "\n%s> ", s.username)
		} else {
			fmt.Fprint(out, "\n> ")
		}
		line, err := s.reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		args := strings.Fields(line)
		command := strings.ToLower(args[0])
		if command == "exit" {
			return nil
		}
		if err := s.dispatch(ctx, command, args[1:]); err != nil {
			fmt.Fprintf(out, "error: %v\n", describeClientError(err, serverURL))
		}
	}
}

func (s *session) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "help":
		printHelp(s.out)
	case "register":
		if len(args) != 2 {
			fmt.Fprintln(s.out, "usage: register <username> <password>")
			return nil
		}
		message, err := s.client.Register(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out, message)
	case "login":
		if len(args) != 2 {
			fmt.Fprintln(s.out, "usage: login <username> <password>")
			return nil
		}
		if err := s.client.Login(ctx, args[0], args[1]); err != nil {
			return err
		}
		s.username = args[0]
		fmt.Fprintf(s.out, "logged in as %s\n", s.username)
	case "logout":
		err := s.client.Logout(ctx)
		s.username = ""
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out, "logged out")
	case "quizzes":
		return s.runList(ctx)
	case "show", "play", "history", "delete":
		quizName := strings.Join(args, " ")
		if quizName == "" {
			fmt.Fprintf(s.out, "usage: %s <quiz_name>\n", command)
			return nil
		}
		switch command {
		case "show":
			return s.runShow(ctx, quizName)
		case "play":
			return s.runPlay(ctx, quizName)
		case "history":
			return s.runHistory(ctx, quizName)
		default:
			return s.runDelete(ctx, quizName)
		}
	case "generate":
		quizName, count, err := parseGenerateArgs(args)
		if err != nil {
			fmt.Fprintf(s.out, "usage: generate <quiz_name> [count] (%v)\n", err)
			return nil
		}
		return s.runGenerate(ctx, quizName, count)
	default:
		fmt.Fprintln(s.out, "unknown command. type 'help' for usage.")
	}
	return nil
}

func (s *session) runList(ctx context.Context) error {
	quizzes, err := s.client.ListQuizzes(ctx)
	if err != nil {
		return err
	}

	if len(quizzes) == 0 {
		fmt.Fprintln(s.out, "No quizzes yet. Try 'generate <quiz_name>'.")
		return nil
	}

	fmt.Fprintln(s.out, "Your quizzes:")
	for idx, item := range quizzes {
		fmt.Fprintf(s.out, "%d. %s (%d questions, %d attempts)\n",
			idx+1,
			item.QuizName,
			len(item.Questions),
			len(item.Attempts),
		)
	}
	return nil
}

func (s *session) runShow(ctx context.Context, quizName string) error {
	item, err := s.client.GetQuiz(ctx, quizName)
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "%s (id %s)\n", item.QuizName, item.ID)
	for idx, question := range item.Questions {
		fmt.Fprintf(s.out, "\n%d. %s\n", idx+1, question.QuestionText)
		printOptions(s.out, question.Options)
		fmt.Fprintf(s.out, "   answer: %s\n", question.CorrectAnswer)
	}
	return nil
}

// runPlay asks every question of an owned quiz and lets the server score the
// answers. Questions skipped after repeated invalid input are sent as empty
// answers.
func (s *session) runPlay(ctx context.Context, quizName string) error {
	item, err := s.client.GetQuiz(ctx, quizName)
	if err != nil {
		return err
	}
	if len(item.Questions) == 0 {
		fmt.Fprintf(s.out, "quiz %s has no questions.\n", quizName)
		return nil
	}

	answers := make([]string, 0, len(item.Questions))
	for idx, question := range item.Questions {
		fmt.Fprintf(s.out, "\n%d. %s\n\n", idx+1, question.QuestionText)
		printOptions(s.out, question.Options)
		fmt.Fprintln(s.out)

		answers = append(answers, s.askOption(question.Options))
	}

	result, err := s.client.SubmitAttempt(ctx, quizName, answers)
	if err != nil {
		return err
	}

	fmt.Fprintln(s.out)
	for idx, correct := range result.CorrectAnswers {
		given := ""
		if idx < len(answers) {
			given = answers[idx]
		}
		mark := "wrong"
		if given == correct {
			mark = "correct"
		}
		fmt.Fprintf(s.out, "%d. %s (answer: %s)\n", idx+1, mark, correct)
	}
	fmt.Fprintf(s.out, "Score: %d/%d\n", result.Score, result.Total)
	return nil
}

func (s *session) askOption(options []string) string {
	invalidCount := 0
	for {
		letter, ok := promptAnswer(s.reader, s.out, len(options))
		if ok {
			return options[int(letter[0]-'A')]
		}
		invalidCount++
		if invalidCount >= s.maxInvalidAnswers {
			fmt.Fprintln(s.out, "Skipping question after multiple invalid responses.")
			return ""
		}
		fmt.Fprintf(s.out, "Invalid input. Attempts remaining: %d\n", s.maxInvalidAnswers-invalidCount)
	}
}

func (s *session) runHistory(ctx context.Context, quizName string) error {
	attempts, err := s.client.History(ctx, quizName)
	if err != nil {
		return err
	}

	if len(attempts) == 0 {
		fmt.Fprintf(s.out, "No attempts on %s yet.\n", quizName)
		return nil
	}

	fmt.Fprintf(s.out, "Attempts on %s:\n", quizName)
	for idx, attempt := range attempts {
		fmt.Fprintf(s.out, "%d. score=%d answers=[%s] at %s\n",
			idx+1,
			attempt.Score,
			strings.Join(attempt.Answers, ", "),
			attempt.SubmittedAt.Format(time.RFC3339),
		)
	}
	return nil
}

func (s *session) runDelete(ctx context.Context, quizName string) error {
	confirmed, err := promptYesNo(s.reader, s.out, fmt.Sprintf("delete quiz %s? (yes/no): ", quizName))
	if err != nil {
		return err
	}
	if !confirmed {
		return nil
	}

	message, err := s.client.DeleteQuiz(ctx, quizName)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, message)
	return nil
}

func (s *session) runGenerate(ctx context.Context, quizName string, count int) error {
	if !s.client.LoggedIn() {
		return ErrNotLoggedIn
	}

	raw, err := s.trivia.FetchQuestions(ctx, count)
	if err != nil {
		return fmt.Errorf("fetch trivia: %w", err)
	}

	created, err := s.client.CreateQuiz(ctx, quizName, quiz.FromTrivia(raw))
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "created quiz %s with %d questions\n", created.QuizName, len(created.Questions))
	return nil
}
