package userclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"quiz-manager/internal/quiz"
)

var (
	ErrServiceUnavailable = errors.New("quiz service unavailable")
	ErrNotLoggedIn        = errors.New("not logged in")
)

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

// HTTPClient talks to the quiz service. Login stores the bearer token used by
// every later call.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type createQuizRequest struct {
	QuizName  string          `json:"quiz_name"`
	Questions []quiz.Question `json:"questions"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	baseURL = strings.TrimSpace(baseURL)
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = defaultServer
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

func (c *HTTPClient) LoggedIn() bool {
	return c.token != ""
}

func (c *HTTPClient) Register(ctx context.Context, username, password string) (string, error) {
	var payload messageResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/register", credentialsRequest{Username: username, Password: password}, &payload); err != nil {
		return "", err
	}
	return payload.Message, nil
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) error {
	var payload tokenResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/login", credentialsRequest{Username: username, Password: password}, &payload); err != nil {
		return err
	}
	if payload.Token == "" {
		return errors.New("login response carried no token")
	}
	c.token = payload.Token
	return nil
}

// Logout drops the local token even when the server call fails.
func (c *HTTPClient) Logout(ctx context.Context) error {
	err := c.doJSON(ctx, http.MethodPost, "/api/logout", nil, nil)
	c.token = ""
	return err
}

func (c *HTTPClient) ListQuizzes(ctx context.Context) ([]quiz.Quiz, error) {
	var quizzes []quiz.Quiz
	if err := c.doAuthJSON(ctx, http.MethodGet, "/api/quizzes", nil, &quizzes); err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (c *HTTPClient) GetQuiz(ctx context.Context, quizName string) (quiz.Quiz, error) {
	var item quiz.Quiz
	if err := c.doAuthJSON(ctx, http.MethodGet, quizPath(quizName, ""), nil, &item); err != nil {
		return quiz.Quiz{}, err
	}
	return item, nil
}

func (c *HTTPClient) CreateQuiz(ctx context.Context, quizName string, questions []quiz.Question) (quiz.Quiz, error) {
	var created quiz.Quiz
	request := createQuizRequest{QuizName: quizName, Questions: questions}
	if err := c.doAuthJSON(ctx, http.MethodPost, "/api/quizzes", request, &created); err != nil {
		return quiz.Quiz{}, err
	}
	return created, nil
}

func (c *HTTPClient) DeleteQuiz(ctx context.Context, quizName string) (string, error) {
	var payload messageResponse
	if err := c.doAuthJSON(ctx, http.MethodDelete, quizPath(quizName, ""), nil, &payload); err != nil {
		return "", err
	}
	return payload.Message, nil
}

func (c *HTTPClient) SubmitAttempt(ctx context.Context, quizName string, answers []string) (quiz.AttemptResult, error) {
	if answers == nil {
		answers = []string{}
	}
	var result quiz.AttemptResult
	if err := c.doAuthJSON(ctx, http.MethodPost, quizPath(quizName, "attempt"), answers, &result); err != nil {
		return quiz.AttemptResult{}, err
	}
	return result, nil
}

func (c *HTTPClient) History(ctx context.Context, quizName string) ([]quiz.Attempt, error) {
	var attempts []quiz.Attempt
	if err := c.doAuthJSON(ctx, http.MethodGet, quizPath(quizName, "history"), nil, &attempts); err != nil {
		return nil, err
	}
	return attempts, nil
}

func quizPath(quizName, action string) string {
	path := "/api/quizzes/" + url.PathEscape(quizName)
	if action != "" {
		path += "/" + action
	}
	return path
}

func (c *HTTPClient) doAuthJSON(ctx context.Context, method, path string, requestBody any, responseBody any) error {
	if c.token == "" {
		return ErrNotLoggedIn
	}
	return c.doJSON(ctx, method, path, requestBody, responseBody)
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, requestBody any, responseBody any) error {
	fullURL := c.baseURL + path

	var body io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return err
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		apiErr := APIError{StatusCode: response.StatusCode}
		var payload errorResponse
		if err := json.NewDecoder(response.Body).Decode(&payload); err == nil && strings.TrimSpace(payload.Error) != "" {
			apiErr.Message = payload.Error
		}
		if apiErr.Message == "" {
			apiErr.Message = response.Status
		}
		return &apiErr
	}

	if responseBody == nil {
		return nil
	}
	return json.NewDecoder(response.Body).Decode(responseBody)
}
