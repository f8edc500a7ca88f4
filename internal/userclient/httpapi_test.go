package userclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestDoJSONReturnsServiceUnavailable(t *testing.T) {
	client := NewHTTPClient("http://example.test", &http.Client{
		Transport: roundTripperFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("dial error")
		}),
	})

	err := client.doJSON(context.Background(), http.MethodGet, "/health", nil, nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable wrapper, got %v", err)
	}
}

func TestDoJSONReturnsAPIErrorMessageFromBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(errorResponse{Error: "bad request payload"})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, server.Client())
	err := client.doJSON(context.Background(), http.MethodGet, "/anything", nil, nil)
	if err == nil {
		t.Fatalf("expected API error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T (%v)", err, err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("status code = %d, want %d", apiErr.StatusCode, http.StatusBadRequest)
	}
	if apiErr.Message != "bad request payload" {
		t.Fatalf("message = %q, want %q", apiErr.Message, "bad request payload")
	}
}

func TestLoginStoresTokenForLaterRequests(t *testing.T) {
	var seenAuth, seenPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/login":
			var request credentialsRequest
			if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.Username != "alice" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			_ = json.NewEncoder(w).Encode(tokenResponse{Token: "tok-123"})
		default:
			seenAuth = r.Header.Get("Authorization")
			seenPath = r.URL.EscapedPath()
			_, _ = w.Write([]byte(`[]`))
		}
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, server.Client())
	if _, err := client.History(context.Background(), "world geo"); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn before login, got %v", err)
	}

	if err := client.Login(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if !client.LoggedIn() {
		t.Fatal("expected client to be logged in")
	}

	attempts, err := client.History(context.Background(), "world geo")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(attempts) != 0 {
		t.Fatalf("expected empty history, got %+v", attempts)
	}
	if seenAuth != "Bearer tok-123" {
		t.Fatalf("Authorization = %q", seenAuth)
	}
	if seenPath != "/api/quizzes/world%20geo/history" {
		t.Fatalf("path = %q", seenPath)
	}

	if err := client.Logout(context.Background()); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if client.LoggedIn() {
		t.Fatal("expected token cleared after logout")
	}
}

func TestSubmitAttemptSendsJSONArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var answers []string
		if err := json.NewDecoder(r.Body).Decode(&answers); err != nil || answers == nil {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(errorResponse{Error: "answers must be a JSON array of strings"})
			return
		}
		_, _ = w.Write([]byte(`{"score":0,"total":1,"answers":["x"]}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, server.Client())
	client.token = "tok"

	result, err := client.SubmitAttempt(context.Background(), "geo", nil)
	if err != nil {
		t.Fatalf("SubmitAttempt failed: %v", err)
	}
	if result.Total != 1 || len(result.CorrectAnswers) != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
}
