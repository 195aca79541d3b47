package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"agrimarket-be/internal/logger"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

var ErrUserNotFound = errors.New("user not found")

type Repository interface {
	FindByEmail(ctx context.Context, email string) (User, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByEmail(ctx context.Context, email string) (User, error) {
	const q = `
		SELECT id, full_name, email, phone_number, password, role, created_at
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`

	var u User
	err := r.db.GetContext(ctx, &u, q, email)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to find user",
			zap.String("email", email),
			zap.Error(err),
		)
		return User{}, fmt.Errorf("find user by email: %w", err)
	}

	return u, nil
}
