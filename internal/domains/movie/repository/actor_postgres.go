package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"moviehub-backend/internal/shared/apperror"
	"moviehub-backend/pkg/database"
)

type postgresActorRepository struct {
	db database.Queryer
}

func NewPostgresActorRepository(db database.Queryer) ActorRepository {
	return &postgresActorRepository{db: db}
}

func (r *postgresActorRepository) WithTx(tx pgx.Tx) ActorRepository {
	return &postgresActorRepository{db: tx}
}

func (r *postgresActorRepository) FindExisting(ctx context.Context, names []string) ([]string, error) {
	query := `SELECT DISTINCT name FROM actors WHERE name = ANY($1)`

	rows, err := r.db.Query(ctx, query, names)
	if err != nil {
		return nil, apperror.FromStorage(fmt.Errorf("failed to find actors: %w", err))
	}
	defer rows.Close()

	var existing []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan actor name: %w", err)
		}
		existing = append(existing, name)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.FromStorage(fmt.Errorf("failed to read actors: %w", err))
	}

	return existing, nil
}

func (r *postgresActorRepository) Save(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}

	query := `INSERT INTO actors (name) SELECT unnest($1::text[]) ON CONFLICT DO NOTHING`

	if _, err := r.db.Exec(ctx, query, names); err != nil {
		return apperror.FromStorage(fmt.Errorf("failed to save actors: %w", err))
	}
	return nil
}

func (r *postgresActorRepository) Link(ctx context.Context, movieID int64, names []string) error {
	if len(names) == 0 {
		return nil
	}

	query := `
		INSERT INTO movie_actors (movie_id, actor_id)
		SELECT $1, a.id FROM actors a WHERE a.name = ANY($2)
		ON CONFLICT DO NOTHING
	`

	if _, err := r.db.Exec(ctx, query, movieID, names); err != nil {
		return apperror.FromStorage(fmt.Errorf("failed to link actors: %w", err))
	}
	return nil
}

func (r *postgresActorRepository) DeleteLinks(ctx context.Context, movieID int64) error {
	query := `DELETE FROM movie_actors WHERE movie_id = $1`

	if _, err := r.db.Exec(ctx, query, movieID); err != nil {
		return apperror.FromStorage(fmt.Errorf("failed to delete actor links: %w", err))
	}
	return nil
}

func (r *postgresActorRepository) FindMovieActors(ctx context.Context, movieIDs []int64) ([]MovieActor, error) {
	query := `
		SELECT ma.movie_id, a.name
		FROM movie_actors ma
		INNER JOIN actors a ON ma.actor_id = a.id
		WHERE ma.movie_id = ANY($1)
	`

	rows, err := r.db.Query(ctx, query, movieIDs)
	if err != nil {
		return nil, apperror.FromStorage(fmt.Errorf("failed to find movie actors: %w", err))
	}
	defer rows.Close()

	var links []MovieActor
	for rows.Next() {
		var link MovieActor
		if err := rows.Scan(&link.MovieID, &link.Name); err != nil {
			return nil, fmt.Errorf("failed to scan movie actor: %w", err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.FromStorage(fmt.Errorf("failed to read movie actors: %w", err))
	}

	return links, nil
}
