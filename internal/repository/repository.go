package repository

import (
	redisapp "herbarium/internal/storage/redis"

	"github.com/jackc/pgx/v4/pgxpool"
)

type Repository struct {
	Herb    HerbRepository
	Image   ImageRepository
	Session SessionRepository
}

func NewRepository(db *pgxpool.Pool, rdb *redisapp.Client) *Repository {
	return &Repository{
		Herb:    NewHerbRepository(db),
		Image:   NewImageRepository(db),
		Session: NewRedisSessionRepo(rdb),
	}
}
