package app

import (
	"context"
	"log/slog"

	httpapp "herbarium/internal/app/http"
	"herbarium/internal/config"
	"herbarium/internal/repository"
	"herbarium/internal/services/auth"
	herbsvc "herbarium/internal/services/herb_service"
	imagesvc "herbarium/internal/services/image_service"
	sectionsvc "herbarium/internal/services/section_service"
	tokensvc "herbarium/internal/services/token_service"
	filestorage "herbarium/internal/storage/filestorage"
	"herbarium/internal/storage/postgresql"
	redisstorage "herbarium/internal/storage/redis"
	httprouters "herbarium/internal/transport/http"
)

// App собирает все зависимости приложения: хранилища, репозитории,
// сервисы и HTTP-сервер.
type App struct {
	HTTPServer *httpapp.Server

	db    *postgresql.Storage
	cache *redisstorage.Client
}

func New(log *slog.Logger, cfg *config.Config) *App {
	db, err := postgresql.New(context.Background(), cfg.DSN)
	if err != nil {
		panic(err)
	}

	cache := redisstorage.NewClient(cfg.Redis.RedisAddr, cfg.Redis.RedisPassword, cfg.Redis.RedisDB)

	files, err := filestorage.NewLocalFileStorage(cfg.FileStorage.BaseDir, cfg.FileStorage.BaseURL)
	if err != nil {
		panic(err)
	}

	repo := repository.NewRepository(db.Pool(), cache)

	tokens := tokensvc.NewTokenService(repo.Session, cfg.Admin.TokenSecret, cfg.Admin.TokenTTL, cfg.Admin.RefreshTTL)
	authService := auth.New(log, tokens, cfg.Admin.PasswordHash)
	herbService := herbsvc.NewHerbService(log, repo.Herb)
	sectionService := sectionsvc.NewSectionService(log, repo.Herb)
	imageService := imagesvc.NewImageService(log, repo.Herb, repo.Image, files)

	routers := httprouters.NewRouter(log, herbService, sectionService, imageService, authService, db, cache)

	server := httpapp.New(
		log,
		cfg.Admin.SessionSecret,
		cfg.HTTP.Host,
		cfg.HTTP.Port,
		cfg.FileStorage.BaseDir,
		cfg.RateLimit.LoginPerMinute,
		cfg.RateLimit.APIPerMinute,
		routers,
	)

	return &App{
		HTTPServer: server,
		db:         db,
		cache:      cache,
	}
}

// Stop закрывает хранилища после остановки HTTP-сервера.
func (a *App) Stop() {
	a.db.Stop()
	_ = a.cache.Close()
}
