package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"herbarium/internal/domain/models"
	"herbarium/internal/repository"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidTokenClaims = errors.New("invalid token claims")
	ErrTokenNotInStorage  = errors.New("token not found in storage")
)

// TokenService выпускает и обновляет пары JWT-токенов администратора.
// Refresh-токены хранятся в redis и при обновлении ротируются.
type TokenService struct {
	repo       repository.SessionRepository
	secret     []byte
	tokenTTL   time.Duration
	refreshTTL time.Duration
}

func NewTokenService(repo repository.SessionRepository, secret string, tokenTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		repo:       repo,
		secret:     []byte(secret),
		tokenTTL:   tokenTTL,
		refreshTTL: refreshTTL,
	}
}

func (s *TokenService) GenerateTokens(ctx context.Context, subject string) (*models.TokenPair, error) {
	accessToken, err := s.newToken(subject, s.tokenTTL)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.newToken(subject, s.refreshTTL)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SaveRefreshToken(ctx, subject, refreshToken, s.refreshTTL); err != nil {
		return nil, err
	}

	return &models.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *TokenService) RefreshTokens(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	subject, err := s.ParseToken(refreshToken)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.GetRefreshToken(ctx, subject, refreshToken)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrTokenNotInStorage
	}

	if err := s.repo.DeleteRefreshToken(ctx, subject, refreshToken); err != nil {
		return nil, err
	}

	return s.GenerateTokens(ctx, subject)
}

// RevokeTokens снимает все сессии субъекта.
func (s *TokenService) RevokeTokens(ctx context.Context, subject string) error {
	return s.repo.DeleteAllSessions(ctx, subject)
}

// ParseToken проверяет подпись и срок токена и возвращает субъект.
func (s *TokenService) ParseToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidTokenClaims
	}

	subject, ok := claims["sub"].(string)
	if !ok || subject == "" {
		return "", ErrInvalidTokenClaims
	}

	return subject, nil
}

func (s *TokenService) newToken(subject string, duration time.Duration) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	claims["sub"] = subject
	claims["iat"] = time.Now().Unix()
	claims["exp"] = time.Now().Add(duration).Unix()

	return token.SignedString(s.secret)
}
