package user

import (
	"context"
	"errors"
	"strings"

	"agrimarket-be/internal/logger"

	"go.uber.org/zap"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type Service interface {
	Login(ctx context.Context, email, password string) (string, User, error)
}

type service struct {
	repo      Repository
	jwtSecret string
}

func NewService(repo Repository, jwtSecret string) Service {
	return &service{repo: repo, jwtSecret: jwtSecret}
}

func (s *service) Login(ctx context.Context, email, password string) (string, User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Login"),
	)

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", User{}, ErrInvalidCredentials
	}

	u, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		log.Info("login failed, email not found")
		return "", User{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", User{}, err
	}

	if !CheckPasswordHash(password, u.Password) {
		log.Info("login failed, password mismatch", zap.Int64("user_id", u.ID))
		return "", User{}, ErrInvalidCredentials
	}

	token, err := GenerateJWT(s.jwtSecret, u.ID, string(u.Role), u.Email)
	if err != nil {
		log.Error("failed to generate jwt", zap.Int64("user_id", u.ID), zap.Error(err))
		return "", User{}, err
	}

	log.Info("login succeeded", zap.Int64("user_id", u.ID))
	return token, u, nil
}
