package sqlite

import (
	"context"
	"encoding/json"
	"time"

	"quiz-manager/internal/quiz"
)

// AppendAttempt adds an attempt at the end of the quiz's history. The quiz
// check and the insert share a transaction so an attempt never lands on a
// quiz deleted in between.
func (s *SQLiteStore) AppendAttempt(ctx context.Context, quizID string, attempt quiz.Attempt) error {
	answers := attempt.Answers
	if answers == nil {
		answers = []string{}
	}
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	if attempt.SubmittedAt.IsZero() {
		attempt.SubmittedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var found int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM quizzes WHERE quiz_id = ?`, quizID).Scan(&found); err != nil {
		return err
	}
	if found == 0 {
		return quiz.ErrQuizNotFound
	}

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO quiz_attempts (quiz_id, position, username, answers_json, score, submitted_at_unix)
		 SELECT ?, COALESCE(MAX(position), -1) + 1, ?, ?, ?, ?
		 FROM quiz_attempts WHERE quiz_id = ?`,
		quizID,
		attempt.Username,
		string(answersJSON),
		attempt.Score,
		attempt.SubmittedAt.UnixNano(),
		quizID,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStore) listAttempts(ctx context.Context, quizID string) ([]quiz.Attempt, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT username, answers_json, score, submitted_at_unix
		 FROM quiz_attempts
		 WHERE quiz_id = ?
		 ORDER BY position ASC`,
		quizID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attempts := make([]quiz.Attempt, 0)
	for rows.Next() {
		var (
			attempt         quiz.Attempt
			answersJSON     string
			submittedAtUnix int64
		)
		if err := rows.Scan(&attempt.Username, &answersJSON, &attempt.Score, &submittedAtUnix); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(answersJSON), &attempt.Answers); err != nil {
			return nil, err
		}
		attempt.SubmittedAt = time.Unix(0, submittedAtUnix).UTC()
		attempts = append(attempts, attempt)
	}

	return attempts, rows.Err()
}
