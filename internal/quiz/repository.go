package quiz

import (
	"context"
	"errors"
	"time"
)

var (
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrQuizAlreadyOwned = errors.New("quiz already owned")
)

// QuizRepository stores quiz documents keyed by their generated id.
//
// GetQuiz and FindQuizByName return the quiz with its attempts in submission
// order. FindQuizByName returns the earliest created quiz when several share a
// name.
type QuizRepository interface {
	CreateQuiz(ctx context.Context, quiz Quiz) error
	GetQuiz(ctx context.Context, quizID string) (Quiz, error)
	FindQuizByName(ctx context.Context, quizName string) (Quiz, error)
	UpdateQuestions(ctx context.Context, quizID string, questions []Question, updatedAt time.Time) error
	DeleteQuiz(ctx context.Context, quizID string) error
}

type AttemptRepository interface {
	AppendAttempt(ctx context.Context, quizID string, attempt Attempt) error
}

// OwnershipIndex is the ordered list of quiz ids held by each user record.
// Errors for unknown users are returned unchanged to the caller.
type OwnershipIndex interface {
	OwnedQuizIDs(ctx context.Context, username string) ([]string, error)
	AddOwnedQuiz(ctx context.Context, username, quizID string) error
	RemoveOwnedQuiz(ctx context.Context, username, quizID string) error
}
