package account

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrUnknownUser        = errors.New("unknown username")
	ErrBadPassword        = errors.New("incorrect password")
	ErrInvalidCredentials = errors.New("username and password are required")
)

// Profile holds the optional free-form contact fields of a user.
type Profile struct {
	Email    string `json:"email"`
	Birthday string `json:"birthday"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Profile      Profile   `json:"profile"`
	OwnedQuizIDs []string  `json:"quizzes"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserRepository persists user records and their ordered owned-quiz list.
//
// CreateUser returns ErrDuplicateUsername when the username is taken. The
// other methods return ErrUserNotFound for unknown usernames.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, username string) (User, error)
	AppendOwnedQuiz(ctx context.Context, username, quizID string) error
	RemoveOwnedQuiz(ctx context.Context, username, quizID string) error
}
