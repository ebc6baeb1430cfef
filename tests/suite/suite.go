package suite

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"herbarium/internal/config"
	"herbarium/internal/services/auth"
	tokensvc "herbarium/internal/services/token_service"
)

// AdminPassword пароль администратора, под который собирается тестовый
// bcrypt-хэш.
const AdminPassword = "integration-pass"

type Suite struct {
	*testing.T
	Cfg         *config.Config
	AuthService *auth.Auth
	Tokens      *tokensvc.TokenService
}

func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()
	t.Parallel()

	cfg := config.MustLoadPath(configPath())

	ctx, cancelCtx := context.WithTimeout(context.Background(), time.Hour)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	hash, err := bcrypt.GenerateFromPassword([]byte(AdminPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash test password: %v", err)
	}

	tokens := tokensvc.NewTokenService(newMemorySessions(), cfg.Admin.TokenSecret, cfg.Admin.TokenTTL, cfg.Admin.RefreshTTL)
	authService := auth.New(log, tokens, string(hash))

	t.Cleanup(func() {
		t.Helper()
		cancelCtx()
	})

	return ctx, &Suite{
		T:           t,
		Cfg:         cfg,
		AuthService: authService,
		Tokens:      tokens,
	}
}

func configPath() string {
	const key = "CONFIG_PATH"

	if v := os.Getenv(key); v != "" {
		return v
	}

	return "../config/config.yaml"
}

// memorySessions хранилище refresh-токенов в памяти вместо redis.
type memorySessions struct {
	mu     sync.Mutex
	tokens map[string]map[string]struct{}
}

func newMemorySessions() *memorySessions {
	return &memorySessions{tokens: make(map[string]map[string]struct{})}
}

func (m *memorySessions) SaveRefreshToken(_ context.Context, subject, token string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tokens[subject] == nil {
		m.tokens[subject] = make(map[string]struct{})
	}
	m.tokens[subject][token] = struct{}{}
	return nil
}

func (m *memorySessions) GetRefreshToken(_ context.Context, subject, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.tokens[subject][token]
	return ok, nil
}

func (m *memorySessions) DeleteRefreshToken(_ context.Context, subject, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens[subject], token)
	return nil
}

func (m *memorySessions) DeleteAllSessions(_ context.Context, subject string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, subject)
	return nil
}
