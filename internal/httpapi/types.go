package httpapi

import (
	"quiz-manager/internal/account"
	"quiz-manager/internal/quiz"
)

// registerRequest accepts the full user document shape. The id and quiz list
// are ignored.
type registerRequest struct {
	ID       string           `json:"_id,omitempty"`
	Username string           `json:"username" validate:"required"`
	Password string           `json:"password" validate:"required"`
	Profile  *account.Profile `json:"profile,omitempty"`
	Quizzes  []string         `json:"quizzes,omitempty"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// quizRequest is the quiz document sent by clients. Attempts are accepted but
// never stored from a request.
type quizRequest struct {
	ID        string          `json:"_id"`
	QuizName  string          `json:"quiz_name" validate:"required"`
	Questions []quiz.Question `json:"questions" validate:"required,dive"`
	Attempts  []quiz.Attempt  `json:"attempts,omitempty"`
}

type updateQuizRequest struct {
	QuizName  string          `json:"quiz_name"`
	Questions []quiz.Question `json:"questions" validate:"required,dive"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type uploadResponse struct {
	Filename     string `json:"filename"`
	FileLocation string `json:"file_location"`
}

type processPDFResponse struct {
	CSVFilename string `json:"csvFilename"`
}

type errorResponse struct {
	Error string `json:"error"`
}
