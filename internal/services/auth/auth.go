package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"herbarium/internal/domain/models"
	"herbarium/internal/lib/logger/sl"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// AdminSubject субъект единственной административной учётки.
const AdminSubject = "admin"

type TokenProvider interface {
	GenerateTokens(ctx context.Context, subject string) (*models.TokenPair, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	RevokeTokens(ctx context.Context, subject string) error
	ParseToken(tokenString string) (string, error)
}

// Auth аутентификация администратора по паролю. Учётка одна, хэш пароля
// задаётся конфигурацией.
type Auth struct {
	log          *slog.Logger
	tokens       TokenProvider
	passwordHash []byte
}

func New(log *slog.Logger, tokens TokenProvider, passwordHash string) *Auth {
	return &Auth{
		log:          log,
		tokens:       tokens,
		passwordHash: []byte(passwordHash),
	}
}

func (a *Auth) Login(ctx context.Context, password string) (*models.TokenPair, error) {
	const op = "auth.Login"

	log := a.log.With(slog.String("op", op))

	log.Info("attempting admin login")

	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
		log.Info("invalid credentials", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	pair, err := a.tokens.GenerateTokens(ctx, AdminSubject)
	if err != nil {
		log.Error("failed to generate tokens", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("admin logged in successfully")

	return pair, nil
}

func (a *Auth) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	const op = "auth.Refresh"

	pair, err := a.tokens.RefreshTokens(ctx, refreshToken)
	if err != nil {
		a.log.Warn("refresh rejected", slog.String("op", op), sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	return pair, nil
}

func (a *Auth) Logout(ctx context.Context) error {
	const op = "auth.Logout"

	if err := a.tokens.RevokeTokens(ctx, AdminSubject); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	a.log.Info("admin logged out", slog.String("op", op))

	return nil
}

// Verify проверяет access-токен и возвращает субъект.
func (a *Auth) Verify(tokenString string) (string, error) {
	const op = "auth.Verify"

	subject, err := a.tokens.ParseToken(tokenString)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	return subject, nil
}
