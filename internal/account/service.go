package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

type Service struct {
	users  UserRepository
	hasher Hasher
	now    func() time.Time
}

func NewService(users UserRepository, hasher Hasher) *Service {
	if hasher == nil {
		hasher = BcryptHasher{}
	}
	return &Service{
		users:  users,
		hasher: hasher,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Register(ctx context.Context, username, password string, profile Profile) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return User{}, ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	user := User{
		Username:     username,
		PasswordHash: hash,
		Profile:      profile,
		OwnedQuizIDs: []string{},
		CreatedAt:    s.now(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Authenticate distinguishes an unknown username from a wrong password, which
// the login endpoint reports with different messages.
func (s *Service) Authenticate(ctx context.Context, username, password string) (User, error) {
	user, err := s.users.GetUser(ctx, strings.TrimSpace(username))
	if errors.Is(err, ErrUserNotFound) {
		return User{}, ErrUnknownUser
	}
	if err != nil {
		return User{}, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return User{}, ErrBadPassword
	}
	return user, nil
}

func (s *Service) FindByUsername(ctx context.Context, username string) (User, error) {
	return s.users.GetUser(ctx, username)
}

func (s *Service) OwnedQuizIDs(ctx context.Context, username string) ([]string, error) {
	user, err := s.users.GetUser(ctx, username)
	if err != nil {
		return nil, err
	}
	return user.OwnedQuizIDs, nil
}

func (s *Service) AddOwnedQuiz(ctx context.Context, username, quizID string) error {
	return s.users.AppendOwnedQuiz(ctx, username, quizID)
}

func (s *Service) RemoveOwnedQuiz(ctx context.Context, username, quizID string) error {
	return s.users.RemoveOwnedQuiz(ctx, username, quizID)
}
