package userclient

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

func promptAnswer(reader *bufio.Reader, out io.Writer, optionCount int) (string, bool) {
	if optionCount < 1 || optionCount > 26 {
		return "", false
	}

	maxLetter := byte('A' + optionCount - 1)
	fmt.Fprintf(out, "Your answer (A-%c): ", maxLetter)

	line, err := reader.ReadString('\n')
	if err != nil {
		return "", false
	}

	answer := strings.ToUpper(strings.TrimSpace(line))
	if len(answer) != 1 {
		return "", false
	}
	letter := answer[0]
	if letter < 'A' || letter > maxLetter {
		return "", false
	}

	return answer, true
}

func printOptions(out io.Writer, options []string) {
	for idx, option := range options {
		fmt.Fprintf(out, "   %c. %s\n", 'A'+idx, option)
	}
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  help")
	fmt.Fprintln(out, "  register <username> <password>")
	fmt.Fprintln(out, "  login <username> <password>")
	fmt.Fprintln(out, "  logout")
	fmt.Fprintln(out, "  quizzes")
	fmt.Fprintln(out, "  show <quiz_name>")
	fmt.Fprintln(out, "  play <quiz_name>")
	fmt.Fprintln(out, "  history <quiz_name>")
	fmt.Fprintln(out, "  delete <quiz_name>")
	fmt.Fprintln(out, "  generate <quiz_name> [count]")
	fmt.Fprintln(out, "  exit")
}

// parseGenerateArgs treats a trailing integer as the question count when more
// than one word is given.
func parseGenerateArgs(args []string) (string, int, error) {
	if len(args) == 0 {
		return "", 0, errors.New("quiz name is required")
	}

	count := defaultQuestionCount
	if len(args) > 1 {
		if value, err := strconv.Atoi(args[len(args)-1]); err == nil {
			if value <= 0 {
				return "", 0, errors.New("count must be a positive integer")
			}
			count = value
			args = args[:len(args)-1]
		}
	}
	return strings.Join(args, " "), count, nil
}

func promptYesNo(reader *bufio.Reader, out io.Writer, prompt string) (bool, error) {
	for {
		fmt.Fprint(out, prompt)
		line, err := reader.ReadString('\n')
		if err != nil {
			return false, err
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		switch answer {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		default:
			fmt.Fprintln(out, "Please answer yes or no.")
		}
	}
}

func describeClientError(err error, serverURL string) error {
	switch {
	case errors.Is(err, ErrServiceUnavailable):
		return fmt.Errorf("quiz service unavailable at %s", serverURL)
	case errors.Is(err, ErrNotLoggedIn):
		return errors.New("not logged in. use 'login <username> <password>' first")
	}
	return err
}
