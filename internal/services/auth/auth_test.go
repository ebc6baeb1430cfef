package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"herbarium/internal/domain/models"
)

type MockTokenProvider struct {
	mock.Mock
}

func (m *MockTokenProvider) GenerateTokens(ctx context.Context, subject string) (*models.TokenPair, error) {
	args := m.Called(ctx, subject)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenPair), args.Error(1)
}

func (m *MockTokenProvider) RefreshTokens(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenPair), args.Error(1)
}

func (m *MockTokenProvider) RevokeTokens(ctx context.Context, subject string) error {
	args := m.Called(ctx, subject)
	return args.Error(0)
}

func (m *MockTokenProvider) ParseToken(tokenString string) (string, error) {
	args := m.Called(tokenString)
	return args.String(0), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func hashOf(password string) string {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return string(hash)
}

func TestLogin_Success(t *testing.T) {
	tokens := new(MockTokenProvider)
	a := New(testLogger(), tokens, hashOf("correct-horse"))

	pair := &models.TokenPair{AccessToken: "a", RefreshToken: "r"}
	tokens.On("GenerateTokens", mock.Anything, AdminSubject).Return(pair, nil)

	got, err := a.Login(context.Background(), "correct-horse")

	require.NoError(t, err)
	assert.Equal(t, pair, got)
	tokens.AssertExpectations(t)
}

func TestLogin_WrongPassword(t *testing.T) {
	tokens := new(MockTokenProvider)
	a := New(testLogger(), tokens, hashOf("correct-horse"))

	_, err := a.Login(context.Background(), "battery-staple")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	tokens.AssertNotCalled(t, "GenerateTokens")
}

func TestRefresh_InvalidTokenMapsToCredentialsError(t *testing.T) {
	tokens := new(MockTokenProvider)
	a := New(testLogger(), tokens, hashOf("x"))

	tokens.On("RefreshTokens", mock.Anything, "stale").Return(nil, errors.New("token not found in storage"))

	_, err := a.Refresh(context.Background(), "stale")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogout_RevokesAllSessions(t *testing.T) {
	tokens := new(MockTokenProvider)
	a := New(testLogger(), tokens, hashOf("x"))

	tokens.On("RevokeTokens", mock.Anything, AdminSubject).Return(nil)

	assert.NoError(t, a.Logout(context.Background()))
	tokens.AssertExpectations(t)
}

func TestVerify(t *testing.T) {
	tokens := new(MockTokenProvider)
	a := New(testLogger(), tokens, hashOf("x"))

	tokens.On("ParseToken", "good").Return(AdminSubject, nil)
	tokens.On("ParseToken", "bad").Return("", errors.New("invalid token"))

	subject, err := a.Verify("good")
	require.NoError(t, err)
	assert.Equal(t, AdminSubject, subject)

	_, err = a.Verify("bad")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
