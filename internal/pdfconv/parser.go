package pdfconv

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"quiz-manager/internal/quiz"
)

var (
	questionLine = regexp.MustCompile(`^(\d+)[.)]\s+(.+)$`)
	optionLine   = regexp.MustCompile(`^([A-Za-z])[.)]\s+(.+)$`)
	answerLine   = regexp.MustCompile(`(?i)^answer\s*[:\-]\s*(.+)$`)
)

type block struct {
	text    string
	options []string
	answer  string
}

// ParseQuestions reads numbered question blocks. A block is a "1." style
// question line, lettered "A." option lines and an "Answer:" line holding a
// letter or the option text.
//
// Unmatched lines continue the previous question or option. Blocks without
// options are dropped.
func ParseQuestions(r io.Reader) ([]quiz.Question, error) {
	var (
		questions []quiz.Question
		current   *block
		inOptions bool
	)

	flush := func() {
		if current == nil {
			return
		}
		if current.text != "" && len(current.options) > 0 {
			questions = append(questions, quiz.Question{
				QuestionText:  current.text,
				Options:       current.options,
				CorrectAnswer: resolveAnswer(current.answer, current.options),
			})
		}
		current = nil
		inOptions = false
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if match := questionLine.FindStringSubmatch(line); match != nil {
			flush()
			current = &block{text: strings.TrimSpace(match[2])}
			continue
		}
		if current == nil {
			continue
		}

		if match := answerLine.FindStringSubmatch(line); match != nil {
			current.answer = strings.TrimSpace(match[1])
			continue
		}
		if match := optionLine.FindStringSubmatch(line); match != nil {
			current.options = append(current.options, strings.TrimSpace(match[2]))
			inOptions = true
			continue
		}

		if inOptions {
			last := len(current.options) - 1
			current.options[last] += " " + line
		} else {
			current.text += " " + line
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read document text: %w", err)
	}
	flush()

	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	return questions, nil
}

// resolveAnswer maps a letter to its option and otherwise matches option text
// case-insensitively. Unmatched answers are kept verbatim.
func resolveAnswer(answer string, options []string) string {
	if len(answer) == 1 {
		letter := strings.ToUpper(answer)[0]
		if letter >= 'A' && int(letter-'A') < len(options) {
			return options[letter-'A']
		}
	}
	for _, option := range options {
		if strings.EqualFold(option, answer) {
			return option
		}
	}
	return answer
}
