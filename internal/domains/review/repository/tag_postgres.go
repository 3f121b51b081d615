package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"moviehub-backend/internal/shared/apperror"
	"moviehub-backend/pkg/database"
)

type postgresTagRepository struct {
	db database.Queryer
}

func NewPostgresTagRepository(db database.Queryer) TagRepository {
	return &postgresTagRepository{db: db}
}

func (r *postgresTagRepository) WithTx(tx pgx.Tx) TagRepository {
	return &postgresTagRepository{db: tx}
}

func (r *postgresTagRepository) FindExisting(ctx context.Context, names []string) ([]string, error) {
	return r.queryNames(ctx, `SELECT DISTINCT name FROM tags WHERE name = ANY($1)`, names)
}

func (r *postgresTagRepository) Save(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}

	query := `INSERT INTO tags (name) SELECT unnest($1::text[]) ON CONFLICT DO NOTHING`

	if _, err := r.db.Exec(ctx, query, names); err != nil {
		return apperror.FromStorage(fmt.Errorf("failed to save tags: %w", err))
	}
	return nil
}

func (r *postgresTagRepository) Link(ctx context.Context, reviewID int64, names []string) error {
	if len(names) == 0 {
		return nil
	}

	query := `
		INSERT INTO review_tags (review_id, tag_id)
		SELECT $1, t.id FROM tags t WHERE t.name = ANY($2)
		ON CONFLICT DO NOTHING
	`

	if _, err := r.db.Exec(ctx, query, reviewID, names); err != nil {
		return apperror.FromStorage(fmt.Errorf("failed to link tags: %w", err))
	}
	return nil
}

func (r *postgresTagRepository) DeleteLinks(ctx context.Context, reviewID int64) error {
	query := `DELETE FROM review_tags WHERE review_id = $1`

	if _, err := r.db.Exec(ctx, query, reviewID); err != nil {
		return apperror.FromStorage(fmt.Errorf("failed to delete tag links: %w", err))
	}
	return nil
}

func (r *postgresTagRepository) FindReviewTags(ctx context.Context, reviewIDs []int64) ([]ReviewTag, error) {
	query := `
		SELECT rt.review_id, t.name
		FROM review_tags rt
		INNER JOIN tags t ON rt.tag_id = t.id
		WHERE rt.review_id = ANY($1)
	`

	rows, err := r.db.Query(ctx, query, reviewIDs)
	if err != nil {
		return nil, apperror.FromStorage(fmt.Errorf("failed to find review tags: %w", err))
	}
	defer rows.Close()

	var links []ReviewTag
	for rows.Next() {
		var link ReviewTag
		if err := rows.Scan(&link.ReviewID, &link.Name); err != nil {
			return nil, fmt.Errorf("failed to scan review tag: %w", err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.FromStorage(fmt.Errorf("failed to read review tags: %w", err))
	}

	return links, nil
}

func (r *postgresTagRepository) FindAllTags(ctx context.Context) ([]string, error) {
	return r.queryNames(ctx, `SELECT name FROM tags ORDER BY name`)
}

func (r *postgresTagRepository) queryNames(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.FromStorage(fmt.Errorf("failed to query tags: %w", err))
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan tag name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.FromStorage(fmt.Errorf("failed to read tags: %w", err))
	}

	return names, nil
}
