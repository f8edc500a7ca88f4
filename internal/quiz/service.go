package quiz

import (
	"context"
	"errors"
	"log"
	"slices"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	quizzes  QuizRepository
	attempts AttemptRepository
	owners   OwnershipIndex

	newID func() string
	now   func() time.Time
}

func NewService(quizzes QuizRepository, attempts AttemptRepository, owners OwnershipIndex) *Service {
	return &Service{
		quizzes:  quizzes,
		attempts: attempts,
		owners:   owners,
		newID:    uuid.NewString,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// List returns the caller's quizzes in ownership order. Ids that no longer
// resolve to a stored quiz are skipped.
func (s *Service) List(ctx context.Context, username string) ([]Quiz, error) {
	ownedIDs, err := s.owners.OwnedQuizIDs(ctx, username)
	if err != nil {
		return nil, err
	}

	quizzes := make([]Quiz, 0, len(ownedIDs))
	for _, quizID := range ownedIDs {
		item, err := s.quizzes.GetQuiz(ctx, quizID)
		if errors.Is(err, ErrQuizNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, item)
	}
	return quizzes, nil
}

// Create stores a new quiz and links it into the caller's ownership index.
//
// The ownership check compares the incoming id, which is unassigned for a new
// quiz, against the caller's owned ids. It only rejects a resubmitted quiz that
// carries an id the caller already owns; two quizzes with the same name are
// both accepted.
func (s *Service) Create(ctx context.Context, username string, draft Quiz) (Quiz, error) {
	ownedIDs, err := s.owners.OwnedQuizIDs(ctx, username)
	if err != nil {
		return Quiz{}, err
	}
	if slices.Contains(ownedIDs, draft.ID) {
		return Quiz{}, ErrQuizAlreadyOwned
	}

	now := s.now()
	created := Quiz{
		ID:        s.newID(),
		QuizName:  draft.QuizName,
		Questions: draft.Questions,
		Attempts:  []Attempt{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if created.Questions == nil {
		created.Questions = []Question{}
	}

	if err := s.quizzes.CreateQuiz(ctx, created); err != nil {
		return Quiz{}, err
	}

	if err := s.owners.AddOwnedQuiz(ctx, username, created.ID); err != nil {
		// Undo the insert so the quiz is not left without an owner. The undo
		// must outlive a cancelled request.
		if deleteErr := s.quizzes.DeleteQuiz(context.WithoutCancel(ctx), created.ID); deleteErr != nil {
			log.Printf("quiz %s left without owner %q: %v", created.ID, username, deleteErr)
		}
		return Quiz{}, err
	}

	return created, nil
}

func (s *Service) Get(ctx context.Context, username, quizName string) (Quiz, error) {
	return s.resolveOwned(ctx, username, quizName)
}

// Update replaces the questions of an owned quiz. Attempts and id are kept.
func (s *Service) Update(ctx context.Context, username, quizName string, questions []Question) (Quiz, error) {
	existing, err := s.resolveOwned(ctx, username, quizName)
	if err != nil {
		return Quiz{}, err
	}
	if questions == nil {
		questions = []Question{}
	}

	updatedAt := s.now()
	if err := s.quizzes.UpdateQuestions(ctx, existing.ID, questions, updatedAt); err != nil {
		return Quiz{}, err
	}

	existing.Questions = questions
	existing.UpdatedAt = updatedAt
	return existing, nil
}

// Delete removes an owned quiz and then unlinks it from the owner. If the
// unlink fails the id stays in the index as a dangling reference, which List
// tolerates.
func (s *Service) Delete(ctx context.Context, username, quizName string) error {
	existing, err := s.resolveOwned(ctx, username, quizName)
	if err != nil {
		return err
	}

	if err := s.quizzes.DeleteQuiz(ctx, existing.ID); err != nil {
		return err
	}
	return s.owners.RemoveOwnedQuiz(ctx, username, existing.ID)
}

// Attempt scores answers against the quiz found by name, regardless of who
// owns it, and records the attempt.
func (s *Service) Attempt(ctx context.Context, username, quizName string, answers []string) (AttemptResult, error) {
	target, err := s.quizzes.FindQuizByName(ctx, quizName)
	if err != nil {
		return AttemptResult{}, err
	}
	if answers == nil {
		answers = []string{}
	}

	score := Score(target.Questions, answers)
	attempt := Attempt{
		Username:    username,
		Answers:     answers,
		Score:       score,
		SubmittedAt: s.now(),
	}
	if err := s.attempts.AppendAttempt(ctx, target.ID, attempt); err != nil {
		return AttemptResult{}, err
	}

	return AttemptResult{
		Score:          score,
		Total:          len(target.Questions),
		CorrectAnswers: CorrectAnswers(target.Questions),
	}, nil
}

// History returns the caller's attempts on the quiz found by name.
func (s *Service) History(ctx context.Context, username, quizName string) ([]Attempt, error) {
	target, err := s.quizzes.FindQuizByName(ctx, quizName)
	if err != nil {
		return nil, err
	}
	return AttemptsBy(target.Attempts, username), nil
}

// resolveOwned scans the caller's owned ids in order and returns the first
// quiz with a matching name. Absent and not-owned quizzes are both reported as
// ErrQuizNotFound.
func (s *Service) resolveOwned(ctx context.Context, username, quizName string) (Quiz, error) {
	ownedIDs, err := s.owners.OwnedQuizIDs(ctx, username)
	if err != nil {
		return Quiz{}, err
	}

	for _, quizID := range ownedIDs {
		item, err := s.quizzes.GetQuiz(ctx, quizID)
		if errors.Is(err, ErrQuizNotFound) {
			continue
		}
		if err != nil {
			return Quiz{}, err
		}
		if item.QuizName == quizName {
			return item, nil
		}
	}
	return Quiz{}, ErrQuizNotFound
}
