package sqlite

import (
	"context"
)

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	// No FK between users and quizzes: the two collections are written
	// independently and a dangling owned id must not block deletes.
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			username TEXT PRIMARY KEY,
			password_hash TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			birthday TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			created_at_unix INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS owned_quizzes (
			username TEXT NOT NULL,
			quiz_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY (username, quiz_id)
		);`,
		`CREATE TABLE IF NOT EXISTS quizzes (
			quiz_id TEXT PRIMARY KEY,
			quiz_name TEXT NOT NULL,
			questions_json TEXT NOT NULL,
			created_at_unix INTEGER NOT NULL,
			updated_at_unix INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS quiz_attempts (
			quiz_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			username TEXT NOT NULL,
			answers_json TEXT NOT NULL,
			score INTEGER NOT NULL,
			submitted_at_unix INTEGER NOT NULL,
			PRIMARY KEY (quiz_id, position)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_owned_quizzes_user ON owned_quizzes(username, position);`,
		`CREATE INDEX IF NOT EXISTS idx_quizzes_name ON quizzes(quiz_name, created_at_unix);`,
		`CREATE INDEX IF NOT EXISTS idx_quiz_attempts_user ON quiz_attempts(quiz_id, username);`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
