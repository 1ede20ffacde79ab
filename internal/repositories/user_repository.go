package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	intdb "railway-backend/internal/db"
	"railway-backend/internal/domain"
	"railway-backend/internal/domain/models"
)

type UserRepository struct {
	DB *sql.DB
}

// Create inserts u and sets its ID. Username or email already taken is a
// ConflictError.
func (r UserRepository) Create(ctx context.Context, u *models.User) error {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (username, email, password_hash)
		VALUES (?, ?, ?)
	`, u.Username, strings.ToLower(u.Email), u.PasswordHash)
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			return domain.ConflictError{Resource: "user", Msg: "username or email already registered", Err: err}
		}
		return intdb.Classify("create user", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return intdb.Classify("create user", err)
	}
	u.ID = id
	u.Email = strings.ToLower(u.Email)
	return nil
}

func (r UserRepository) ByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, created_at
		FROM users
		WHERE email = ?
		LIMIT 1
	`, strings.ToLower(strings.TrimSpace(email))).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, domain.NotFoundError{Resource: "user", Err: err}
	}
	if err != nil {
		return models.User{}, intdb.Classify("user by email", err)
	}
	return u, nil
}
