package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"herbarium/internal/domain/models"
	"herbarium/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const uniqueViolationCode = "23505"

var herbColumns = []string{
	"id",
	"slug",
	"name",
	"scientific_name",
	"description",
	"properties",
	"uses",
	"contraindications",
	"custom_sections",
	"created_at",
	"updated_at",
}

type HerbRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewHerbRepository(db *pgxpool.Pool) *HerbRepo {
	return &HerbRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *HerbRepo) CreateHerb(ctx context.Context, herb *models.Herb) (*models.Herb, error) {
	const op = "repository.herb_repository.CreateHerb"

	query, args, err := r.sb.Insert("herbs").
		Columns(herbColumns...).
		Values(
			herb.ID,
			herb.Slug,
			herb.Name,
			herb.ScientificName,
			herb.Description,
			herb.Properties,
			herb.Uses,
			herb.Contraindications,
			herb.CustomSections,
			herb.CreatedAt,
			herb.UpdatedAt,
		).
		Suffix("RETURNING " + columnList(herbColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	row := r.db.QueryRow(ctx, query, args...)

	created, err := scanHerb(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrHerbExists)
		}
		return nil, fmt.Errorf("%s: failed to create herb: %w", op, err)
	}

	return created, nil
}

func (r *HerbRepo) GetHerbBySlug(ctx context.Context, slug string) (*models.Herb, error) {
	const op = "repository.herb_repository.GetHerbBySlug"

	query, args, err := r.sb.Select(herbColumns...).
		From("herbs").
		Where(sq.Eq{"slug": slug}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	row := r.db.QueryRow(ctx, query, args...)

	herb, err := scanHerb(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrHerbNotFound)
		}
		return nil, fmt.Errorf("%s: failed to get herb: %w", op, err)
	}

	images, err := r.herbImages(ctx, herb.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	herb.Images = images

	return herb, nil
}

func (r *HerbRepo) ListHerbs(ctx context.Context, filter HerbFilter) ([]models.Herb, error) {
	const op = "repository.herb_repository.ListHerbs"

	builder := r.sb.Select(herbColumns...).
		From("herbs").
		OrderBy("name ASC")

	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"name": pattern},
			sq.ILike{"scientific_name": pattern},
			sq.ILike{"description": pattern},
		})
	}
	if filter.Letter != "" {
		builder = builder.Where(sq.ILike{"name": filter.Letter + "%"})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}
	defer rows.Close()

	var herbs []models.Herb
	for rows.Next() {
		herb, err := scanHerb(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: row scanning failed: %w", op, err)
		}
		herbs = append(herbs, *herb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iteration error: %w", op, err)
	}

	for i := range herbs {
		images, err := r.herbImages(ctx, herbs[i].ID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		herbs[i].Images = images
	}

	return herbs, nil
}

func (r *HerbRepo) UpdateHerbFields(ctx context.Context, herbID uuid.UUID, updates map[string]interface{}) error {
	const op = "repository.herb_repository.UpdateHerbFields"

	if len(updates) == 0 {
		return nil
	}

	query, args, err := r.sb.Update("herbs").
		SetMap(updates).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": herbID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return fmt.Errorf("%s: %w", op, storage.ErrHerbExists)
		}
		return fmt.Errorf("%s: failed to update herb: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrHerbNotFound)
	}

	return nil
}

// MutateHerbSections выполняет read-modify-write секций под блокировкой
// строки травы: текущий блоб перечитывается после SELECT ... FOR UPDATE,
// преобразуется fn и записывается в той же транзакции. Два конкурентных
// изменения секций одной травы не могут потерять запись друг друга.
// Если fn возвращает changed=false, блоб не перезаписывается.
func (r *HerbRepo) MutateHerbSections(ctx context.Context, herbID uuid.UUID, fn func(current models.SectionList) (models.SectionList, bool, error)) (models.SectionList, error) {
	const op = "repository.herb_repository.MutateHerbSections"

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer tx.Rollback(ctx)

	var current models.SectionList
	err = tx.QueryRow(ctx, `SELECT custom_sections FROM herbs WHERE id = $1 FOR UPDATE`, herbID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrHerbNotFound)
		}
		return nil, fmt.Errorf("%s: failed to lock herb row: %w", op, err)
	}

	updated, changed, err := fn(current)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !changed {
		return updated, nil
	}

	query, args, err := r.sb.Update("herbs").
		Set("custom_sections", updated).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": herbID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to update sections: %w", op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	return updated, nil
}

func (r *HerbRepo) DeleteHerb(ctx context.Context, slug string) error {
	const op = "repository.herb_repository.DeleteHerb"

	query, args, err := r.sb.Delete("herbs").
		Where(sq.Eq{"slug": slug}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: failed to delete herb: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrHerbNotFound)
	}

	return nil
}

func (r *HerbRepo) herbImages(ctx context.Context, herbID uuid.UUID) ([]models.Image, error) {
	query, args, err := r.sb.Select(imageColumns...).
		From("images").
		Where(sq.Eq{"herb_id": herbID}).
		OrderBy("position ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	defer rows.Close()

	return scanImages(rows)
}

func scanHerb(row pgx.Row) (*models.Herb, error) {
	var herb models.Herb
	err := row.Scan(
		&herb.ID,
		&herb.Slug,
		&herb.Name,
		&herb.ScientificName,
		&herb.Description,
		&herb.Properties,
		&herb.Uses,
		&herb.Contraindications,
		&herb.CustomSections,
		&herb.CreatedAt,
		&herb.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &herb, nil
}

func columnList(columns []string) string {
	return strings.Join(columns, ", ")
}
