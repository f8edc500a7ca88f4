package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"quiz-manager/internal/account"
)

func (s *SQLiteStore) CreateUser(ctx context.Context, user account.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	result, err := s.db.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO users (username, password_hash, email, birthday, phone, address, created_at_unix)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.Username,
		user.PasswordHash,
		user.Profile.Email,
		user.Profile.Birthday,
		user.Profile.Phone,
		user.Profile.Address,
		user.CreatedAt.UnixNano(),
	)
	if err != nil {
		return err
	}
	return requireAffected(result, account.ErrDuplicateUsername)
}

func (s *SQLiteStore) GetUser(ctx context.Context, username string) (account.User, error) {
	var (
		user          account.User
		createdAtUnix int64
	)
	err := s.db.QueryRowContext(
		ctx,
		`SELECT username, password_hash, email, birthday, phone, address, created_at_unix
		 FROM users WHERE username = ?`,
		username,
	).Scan(
		&user.Username,
		&user.PasswordHash,
		&user.Profile.Email,
		&user.Profile.Birthday,
		&user.Profile.Phone,
		&user.Profile.Address,
		&createdAtUnix,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return account.User{}, account.ErrUserNotFound
		}
		return account.User{}, err
	}
	user.CreatedAt = time.Unix(0, createdAtUnix).UTC()

	user.OwnedQuizIDs, err = s.listOwnedQuizIDs(ctx, username)
	if err != nil {
		return account.User{}, err
	}
	return user, nil
}

// AppendOwnedQuiz places the id after the user's last owned quiz. Adding an id
// that is already owned keeps its original position.
func (s *SQLiteStore) AppendOwnedQuiz(ctx context.Context, username, quizID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := requireUser(ctx, tx, username); err != nil {
		return err
	}

	_, err = tx.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO owned_quizzes (username, quiz_id, position)
		 SELECT ?, ?, COALESCE(MAX(position), -1) + 1
		 FROM owned_quizzes WHERE username = ?`,
		username,
		quizID,
		username,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// RemoveOwnedQuiz is a no-op when the id is not owned.
func (s *SQLiteStore) RemoveOwnedQuiz(ctx context.Context, username, quizID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := requireUser(ctx, tx, username); err != nil {
		return err
	}

	if _, err := tx.ExecContext(
		ctx,
		`DELETE FROM owned_quizzes WHERE username = ? AND quiz_id = ?`,
		username,
		quizID,
	); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStore) listOwnedQuizIDs(ctx context.Context, username string) ([]string, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT quiz_id FROM owned_quizzes WHERE username = ? ORDER BY position ASC`,
		username,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var quizID string
		if err := rows.Scan(&quizID); err != nil {
			return nil, err
		}
		ids = append(ids, quizID)
	}

	return ids, rows.Err()
}

func requireUser(ctx context.Context, tx *sql.Tx, username string) error {
	var found int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE username = ?`, username).Scan(&found); err != nil {
		return err
	}
	if found == 0 {
		return account.ErrUserNotFound
	}
	return nil
}
