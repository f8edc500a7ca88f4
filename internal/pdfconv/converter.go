package pdfconv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"quiz-manager/internal/quiz"
)

var ErrNoQuestions = errors.New("no questions found in document")

const optionSeparator = "|"

type Converter interface {
	Convert(ctx context.Context, pdfPath, username string) (string, error)
}

// PDFConverter writes <stem>_<username>.csv files into OutputDir.
type PDFConverter struct {
	OutputDir string
}

func NewPDFConverter(outputDir string) *PDFConverter {
	return &PDFConverter{OutputDir: outputDir}
}

// Convert extracts the PDF text, parses questions and writes them as CSV.
// It returns the path of the written file.
func (c *PDFConverter) Convert(ctx context.Context, pdfPath, username string) (string, error) {
	text, err := extractText(pdfPath)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	questions, err := ParseQuestions(text)
	if err != nil {
		return "", err
	}

	stem := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	name := fmt.Sprintf("%s_%s.csv", stem, safeName(username))
	outPath := filepath.Join(c.OutputDir, name)

	if err := os.MkdirAll(c.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("create csv: %w", err)
	}
	if err := WriteCSV(out, questions); err != nil {
		_ = out.Close()
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close csv: %w", err)
	}
	return outPath, nil
}

func extractText(pdfPath string) (io.Reader, error) {
	file, reader, err := pdf.Open(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer file.Close()

	text, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}
	return text, nil
}

func WriteCSV(w io.Writer, questions []quiz.Question) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"question_text", "options", "correct_answer"}); err != nil {
		return err
	}
	for _, question := range questions {
		record := []string{
			question.QuestionText,
			strings.Join(question.Options, optionSeparator),
			question.CorrectAnswer,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func safeName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return "user"
	}
	return name
}

// ReadCSV loads questions written by WriteCSV. The header row is required.
func ReadCSV(r io.Reader) ([]quiz.Question, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 3

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoQuestions
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if header[0] != "question_text" {
		return nil, fmt.Errorf("unexpected csv header %q", strings.Join(header, ","))
	}

	var questions []quiz.Question
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		var options []string
		if record[1] != "" {
			options = strings.Split(record[1], optionSeparator)
		}
		questions = append(questions, quiz.Question{
			QuestionText:  record[0],
			Options:       options,
			CorrectAnswer: record[2],
		})
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	return questions, nil
}
