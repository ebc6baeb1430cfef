package repository

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisapp "herbarium/internal/storage/redis"
)

func newMockedSessionRepo(t *testing.T) (*RedisSessionRepo, redismock.ClientMock) {
	t.Helper()
	client, mock := redismock.NewClientMock()
	return NewRedisSessionRepo(&redisapp.Client{Client: client}), mock
}

func TestSaveRefreshToken(t *testing.T) {
	repo, rmock := newMockedSessionRepo(t)

	rmock.ExpectSet("refresh:admin:tok-1", "1", time.Hour).SetVal("OK")

	err := repo.SaveRefreshToken(context.Background(), "admin", "tok-1", time.Hour)

	require.NoError(t, err)
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestGetRefreshToken_Exists(t *testing.T) {
	repo, rmock := newMockedSessionRepo(t)

	rmock.ExpectGet("refresh:admin:tok-1").SetVal("1")

	ok, err := repo.GetRefreshToken(context.Background(), "admin", "tok-1")

	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGetRefreshToken_Missing(t *testing.T) {
	repo, rmock := newMockedSessionRepo(t)

	rmock.ExpectGet("refresh:admin:tok-gone").RedisNil()

	ok, err := repo.GetRefreshToken(context.Background(), "admin", "tok-gone")

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteRefreshToken(t *testing.T) {
	repo, rmock := newMockedSessionRepo(t)

	rmock.ExpectDel("refresh:admin:tok-1").SetVal(1)

	require.NoError(t, repo.DeleteRefreshToken(context.Background(), "admin", "tok-1"))
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestDeleteAllSessions(t *testing.T) {
	repo, rmock := newMockedSessionRepo(t)

	rmock.ExpectKeys("refresh:admin:*").SetVal([]string{"refresh:admin:a", "refresh:admin:b"})
	rmock.ExpectDel("refresh:admin:a", "refresh:admin:b").SetVal(2)

	require.NoError(t, repo.DeleteAllSessions(context.Background(), "admin"))
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestDeleteAllSessions_NoKeys(t *testing.T) {
	repo, rmock := newMockedSessionRepo(t)

	rmock.ExpectKeys("refresh:admin:*").SetVal([]string{})

	require.NoError(t, repo.DeleteAllSessions(context.Background(), "admin"))
	assert.NoError(t, rmock.ExpectationsWereMet())
}
