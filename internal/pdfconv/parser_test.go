package pdfconv

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"quiz-manager/internal/quiz"
)

func TestParseQuestions(t *testing.T) {
	text := `
Geography Quiz

1. What is the capital
of France?
A. Berlin
B. Paris
C) Madrid
Answer: B

2) Largest ocean?
a. Atlantic
b. Pacific Ocean,
   by far
answer - pacific ocean, by far

3. Heading without options

4. Pick one
A. Yes
B. No
Answer: Maybe
`

	questions, err := ParseQuestions(strings.NewReader(text))
	if err != nil {
		t.Fatalf("ParseQuestions failed: %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("expected 3 questions, got %d: %+v", len(questions), questions)
	}

	first := questions[0]
	if first.QuestionText != "What is the capital of France?" {
		t.Fatalf("unexpected question text %q", first.QuestionText)
	}
	if !slices.Equal(first.Options, []string{"Berlin", "Paris", "Madrid"}) {
		t.Fatalf("unexpected options %v", first.Options)
	}
	if first.CorrectAnswer != "Paris" {
		t.Fatalf("expected letter answer resolved to Paris, got %q", first.CorrectAnswer)
	}

	second := questions[1]
	if second.Options[1] != "Pacific Ocean, by far" {
		t.Fatalf("expected wrapped option to be joined, got %q", second.Options[1])
	}
	if second.CorrectAnswer != "Pacific Ocean, by far" {
		t.Fatalf("expected text answer matched to option, got %q", second.CorrectAnswer)
	}

	if questions[2].CorrectAnswer != "Maybe" {
		t.Fatalf("expected unmatched answer kept verbatim, got %q", questions[2].CorrectAnswer)
	}
}

func TestParseQuestionsNoQuestions(t *testing.T) {
	inputs := []string{
		"",
		"Just a paragraph of prose.\nNothing numbered here.",
		"1. A question with no options\nAnswer: A",
	}
	for _, input := range inputs {
		if _, err := ParseQuestions(strings.NewReader(input)); !errors.Is(err, ErrNoQuestions) {
			t.Fatalf("input %q: expected ErrNoQuestions, got %v", input, err)
		}
	}
}

func TestResolveAnswer(t *testing.T) {
	options := []string{"Red", "Green"}
	tests := []struct {
		answer string
		want   string
	}{
		{answer: "A", want: "Red"},
		{answer: "b", want: "Green"},
		{answer: "C", want: "C"},
		{answer: "green", want: "Green"},
		{answer: "", want: ""},
	}
	for _, tc := range tests {
		if got := resolveAnswer(tc.answer, options); got != tc.want {
			t.Fatalf("resolveAnswer(%q) = %q, want %q", tc.answer, got, tc.want)
		}
	}
}

func TestWriteCSV(t *testing.T) {
	questions := []quiz.Question{
		{QuestionText: "Capital, of France?", Options: []string{"Berlin", "Paris"}, CorrectAnswer: "Paris"},
		{QuestionText: "Say \"hi\"", Options: []string{"hi"}, CorrectAnswer: "hi"},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, questions); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	want := [][]string{
		{"question_text", "options", "correct_answer"},
		{"Capital, of France?", "Berlin|Paris", "Paris"},
		{"Say \"hi\"", "hi", "hi"},
	}
	if len(records) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(records))
	}
	for i := range want {
		if !slices.Equal(records[i], want[i]) {
			t.Fatalf("record %d = %v, want %v", i, records[i], want[i])
		}
	}
}

func TestConvertRejectsNonPDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.pdf")
	if err := os.WriteFile(path, []byte("plain text, not a pdf"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	converter := NewPDFConverter(dir)
	if _, err := converter.Convert(context.Background(), path, "alice"); err == nil {
		t.Fatal("expected error for non-pdf input")
	}
	if _, err := os.Stat(filepath.Join(dir, "notes_alice.csv")); !os.IsNotExist(err) {
		t.Fatalf("expected no csv written, stat err = %v", err)
	}
}

func TestSafeName(t *testing.T) {
	if got := safeName("../bob"); got != ".._bob" {
		t.Fatalf("safeName = %q", got)
	}
	if got := safeName(".."); got != "user" {
		t.Fatalf("safeName = %q", got)
	}
}

func TestReadCSVLoadsWrittenQuestions(t *testing.T) {
	questions := []quiz.Question{
		{QuestionText: "Capital of France, please?", Options: []string{"Paris", "Rome"}, CorrectAnswer: "Paris"},
		{QuestionText: "Free text", CorrectAnswer: "anything"},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, questions); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	loaded, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(loaded))
	}
	if loaded[0].QuestionText != "Capital of France, please?" || !slices.Equal(loaded[0].Options, []string{"Paris", "Rome"}) {
		t.Fatalf("unexpected first question: %+v", loaded[0])
	}
	if loaded[1].Options != nil || loaded[1].CorrectAnswer != "anything" {
		t.Fatalf("unexpected second question: %+v", loaded[1])
	}
}

func TestReadCSVRejectsBadInput(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("")); !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions for empty input, got %v", err)
	}
	if _, err := ReadCSV(strings.NewReader("question_text,options,correct_answer\n")); !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions for header only, got %v", err)
	}
	if _, err := ReadCSV(strings.NewReader("a,b,c\n")); err == nil {
		t.Fatal("expected error for wrong header")
	}
	if _, err := ReadCSV(strings.NewReader("question_text,options,correct_answer\nonly,two\n")); err == nil {
		t.Fatal("expected error for short record")
	}
}
