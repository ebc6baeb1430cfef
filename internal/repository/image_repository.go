package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"herbarium/internal/domain/models"
	"herbarium/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

var imageColumns = []string{
	"id",
	"herb_id",
	"url",
	"alt",
	"position",
	"is_primary",
	"created_at",
}

type ImageRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewImageRepository(db *pgxpool.Pool) *ImageRepo {
	return &ImageRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *ImageRepo) ListImagesByHerbID(ctx context.Context, herbID uuid.UUID) ([]models.Image, error) {
	const op = "repository.image_repository.ListImagesByHerbID"

	query, args, err := r.sb.Select(imageColumns...).
		From("images").
		Where(sq.Eq{"herb_id": herbID}).
		OrderBy("position ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}
	defer rows.Close()

	images, err := scanImages(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return images, nil
}

// AppendImage добавляет изображение в конец коллекции травы. Позиция и
// автоназначение primary для пустой коллекции вычисляются под блокировкой
// строки травы: гонка двух загрузок в пустую коллекцию не может дать два
// главных изображения.
func (r *ImageRepo) AppendImage(ctx context.Context, herbID uuid.UUID, url string, alt *string) (*models.Image, error) {
	const op = "repository.image_repository.AppendImage"

	var created models.Image
	err := r.withHerbLock(ctx, herbID, func(tx pgx.Tx, images []models.Image) error {
		next := models.Image{
			ID:        uuid.New(),
			HerbID:    herbID,
			URL:       url,
			Alt:       alt,
			CreatedAt: time.Now().UTC(),
		}
		appended := models.AppendUploaded(images, next)
		created = appended[len(appended)-1]

		query, args, err := r.sb.Insert("images").
			Columns(imageColumns...).
			Values(
				created.ID,
				created.HerbID,
				created.URL,
				created.Alt,
				created.Position,
				created.IsPrimary,
				created.CreatedAt,
			).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build query: %w", err)
		}

		_, err = tx.Exec(ctx, query, args...)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &created, nil
}

// DeleteImage удаляет изображение и перенумеровывает остаток. Возвращает
// URL удалённого объекта, чтобы вызывающая сторона убрала его из файлового
// хранилища. Primary не переназначается.
func (r *ImageRepo) DeleteImage(ctx context.Context, herbID, imageID uuid.UUID) (string, error) {
	const op = "repository.image_repository.DeleteImage"

	var removedURL string
	err := r.withHerbLock(ctx, herbID, func(tx pgx.Tx, images []models.Image) error {
		var found bool
		for _, img := range images {
			if img.ID == imageID {
				removedURL = img.URL
				found = true
				break
			}
		}
		if !found {
			return storage.ErrImageNotFound
		}

		query, args, err := r.sb.Delete("images").
			Where(sq.Eq{"id": imageID, "herb_id": herbID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build query: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to delete image: %w", err)
		}

		remaining := models.RemoveImage(images, imageID)
		return r.writePositions(ctx, tx, remaining, false)
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return removedURL, nil
}

func (r *ImageRepo) SetPrimaryImage(ctx context.Context, herbID, imageID uuid.UUID) error {
	const op = "repository.image_repository.SetPrimaryImage"

	err := r.withHerbLock(ctx, herbID, func(tx pgx.Tx, images []models.Image) error {
		updated, err := models.SetPrimaryImage(images, imageID)
		if err != nil {
			return err
		}
		return r.writePositions(ctx, tx, updated, true)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *ImageRepo) ReorderImages(ctx context.Context, herbID uuid.UUID, order []uuid.UUID, promoteFirst bool) error {
	const op = "repository.image_repository.ReorderImages"

	err := r.withHerbLock(ctx, herbID, func(tx pgx.Tx, images []models.Image) error {
		updated, err := models.ReorderImages(images, order, promoteFirst)
		if err != nil {
			return err
		}
		return r.writePositions(ctx, tx, updated, promoteFirst)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *ImageRepo) UpdateImageAlt(ctx context.Context, herbID, imageID uuid.UUID, alt *string) (*models.Image, error) {
	const op = "repository.image_repository.UpdateImageAlt"

	query, args, err := r.sb.Update("images").
		Set("alt", alt).
		Where(sq.Eq{"id": imageID, "herb_id": herbID}).
		Suffix("RETURNING " + columnList(imageColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	row := r.db.QueryRow(ctx, query, args...)

	var img models.Image
	err = row.Scan(
		&img.ID,
		&img.HerbID,
		&img.URL,
		&img.Alt,
		&img.Position,
		&img.IsPrimary,
		&img.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrImageNotFound)
		}
		return nil, fmt.Errorf("%s: failed to update alt: %w", op, err)
	}

	return &img, nil
}

// withHerbLock читает коллекцию изображений травы под SELECT ... FOR UPDATE
// строки травы и выполняет fn в той же транзакции. Это граница
// сериализации read-modify-write для композитных полей одной травы.
func (r *ImageRepo) withHerbLock(ctx context.Context, herbID uuid.UUID, fn func(tx pgx.Tx, images []models.Image) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var lockedID uuid.UUID
	err = tx.QueryRow(ctx, `SELECT id FROM herbs WHERE id = $1 FOR UPDATE`, herbID).Scan(&lockedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.ErrHerbNotFound
		}
		return fmt.Errorf("failed to lock herb row: %w", err)
	}

	query, args, err := r.sb.Select(imageColumns...).
		From("images").
		Where(sq.Eq{"herb_id": herbID}).
		OrderBy("position ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to list images: %w", err)
	}
	images, err := scanImages(rows)
	rows.Close()
	if err != nil {
		return err
	}

	if err := fn(tx, images); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// writePositions массово сохраняет позиции (и, при необходимости, флаги
// primary) уже перенумерованной коллекции.
func (r *ImageRepo) writePositions(ctx context.Context, tx pgx.Tx, images []models.Image, withPrimary bool) error {
	for _, img := range images {
		builder := r.sb.Update("images").
			Set("position", img.Position).
			Where(sq.Eq{"id": img.ID})
		if withPrimary {
			builder = builder.Set("is_primary", img.IsPrimary)
		}

		query, args, err := builder.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build query: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to update image position: %w", err)
		}
	}
	return nil
}

func scanImages(rows pgx.Rows) ([]models.Image, error) {
	var images []models.Image
	for rows.Next() {
		var img models.Image
		err := rows.Scan(
			&img.ID,
			&img.HerbID,
			&img.URL,
			&img.Alt,
			&img.Position,
			&img.IsPrimary,
			&img.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("row scanning failed: %w", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return images, nil
}
