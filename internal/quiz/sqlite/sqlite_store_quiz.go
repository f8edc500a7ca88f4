package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"quiz-manager/internal/quiz"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteStore) CreateQuiz(ctx context.Context, item quiz.Quiz) error {
	if item.ID == "" {
		return errors.New("quiz id is required")
	}

	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = item.CreatedAt
	}

	questionsJSON, err := encodeQuestions(item.Questions)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO quizzes (quiz_id, quiz_name, questions_json, created_at_unix, updated_at_unix)
		 VALUES (?, ?, ?, ?, ?)`,
		item.ID,
		item.QuizName,
		questionsJSON,
		item.CreatedAt.UnixNano(),
		item.UpdatedAt.UnixNano(),
	)
	return err
}

func (s *SQLiteStore) GetQuiz(ctx context.Context, quizID string) (quiz.Quiz, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT quiz_id, quiz_name, questions_json, created_at_unix, updated_at_unix
		 FROM quizzes WHERE quiz_id = ?`,
		quizID,
	)
	return s.loadQuiz(ctx, row)
}

// FindQuizByName returns the earliest created quiz with the given name,
// falling back to insertion order for identical timestamps.
func (s *SQLiteStore) FindQuizByName(ctx context.Context, quizName string) (quiz.Quiz, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT quiz_id, quiz_name, questions_json, created_at_unix, updated_at_unix
		 FROM quizzes WHERE quiz_name = ?
		 ORDER BY created_at_unix ASC, rowid ASC
		 LIMIT 1`,
		quizName,
	)
	return s.loadQuiz(ctx, row)
}

func (s *SQLiteStore) UpdateQuestions(ctx context.Context, quizID string, questions []quiz.Question, updatedAt time.Time) error {
	questionsJSON, err := encodeQuestions(questions)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(
		ctx,
		`UPDATE quizzes SET questions_json = ?, updated_at_unix = ? WHERE quiz_id = ?`,
		questionsJSON,
		updatedAt.UnixNano(),
		quizID,
	)
	if err != nil {
		return err
	}
	return requireAffected(result, quiz.ErrQuizNotFound)
}

// DeleteQuiz removes the quiz together with its attempt history.
func (s *SQLiteStore) DeleteQuiz(ctx context.Context, quizID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM quiz_attempts WHERE quiz_id = ?`, quizID); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM quizzes WHERE quiz_id = ?`, quizID)
	if err != nil {
		return err
	}
	if err := requireAffected(result, quiz.ErrQuizNotFound); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStore) loadQuiz(ctx context.Context, row rowScanner) (quiz.Quiz, error) {
	var (
		item          quiz.Quiz
		questionsJSON string
		createdAtUnix int64
		updatedAtUnix int64
	)
	err := row.Scan(&item.ID, &item.QuizName, &questionsJSON, &createdAtUnix, &updatedAtUnix)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return quiz.Quiz{}, quiz.ErrQuizNotFound
		}
		return quiz.Quiz{}, err
	}

	if err := json.Unmarshal([]byte(questionsJSON), &item.Questions); err != nil {
		return quiz.Quiz{}, err
	}
	if item.Questions == nil {
		item.Questions = []quiz.Question{}
	}
	item.CreatedAt = time.Unix(0, createdAtUnix).UTC()
	item.UpdatedAt = time.Unix(0, updatedAtUnix).UTC()

	item.Attempts, err = s.listAttempts(ctx, item.ID)
	if err != nil {
		return quiz.Quiz{}, err
	}
	return item, nil
}

func encodeQuestions(questions []quiz.Question) (string, error) {
	if questions == nil {
		questions = []quiz.Question{}
	}
	encoded, err := json.Marshal(questions)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func requireAffected(result sql.Result, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
