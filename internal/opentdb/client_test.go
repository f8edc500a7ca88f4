package opentdb

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func stubClient(status int, body string, seenAmount *string) *Client {
	return NewClient(&http.Client{Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		if seenAmount != nil {
			*seenAmount = r.URL.Query().Get("amount")
		}
		return &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(bytes.NewReader([]byte(body))),
			Header:     make(http.Header),
		}, nil
	})})
}

func TestFetchQuestionsDecodesResults(t *testing.T) {
	var seen string
	client := stubClient(http.StatusOK, `{"response_code":0,"results":[
		{"question":"Capital of France?","correct_answer":"Paris","incorrect_answers":["Lyon","Nice"]}
	]}`, &seen)

	questions, err := client.FetchQuestions(context.Background(), 3)
	if err != nil {
		t.Fatalf("FetchQuestions returned error: %v", err)
	}
	if got := seen; got != "3" {
		t.Fatalf("amount query = %q, want 3", got)
	}
	if len(questions) != 1 || questions[0].CorrectAnswer != "Paris" || len(questions[0].IncorrectAnswers) != 2 {
		t.Fatalf("unexpected questions: %+v", questions)
	}
}

func TestFetchQuestionsUsesDefaultAmountWhenNonPositive(t *testing.T) {
	var seen string
	client := stubClient(http.StatusOK, `{"response_code":0,"results":[]}`, &seen)

	if _, err := client.FetchQuestions(context.Background(), 0); err != nil {
		t.Fatalf("FetchQuestions returned error: %v", err)
	}
	if got := seen; got != "10" {
		t.Fatalf("expected default amount 10, got %q", got)
	}
}

func TestFetchQuestionsErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "non-200 status", status: http.StatusBadGateway, body: ""},
		{name: "invalid json", status: http.StatusOK, body: "not-json"},
		{name: "non-zero response code", status: http.StatusOK, body: `{"response_code":1,"results":[{"question":"ignored"}]}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := stubClient(tc.status, tc.body, nil)
			if _, err := client.FetchQuestions(context.Background(), 5); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
