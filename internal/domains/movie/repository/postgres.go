package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"moviehub-backend/internal/domains/movie/model"
	"moviehub-backend/internal/shared/apperror"
	"moviehub-backend/pkg/database"
)

const movieColumns = `m.id, m.title, m.description, m.body, m.year_released, m.languages, m.likes_count, m.created_at, m.updated_at`

type postgresMovieRepository struct {
	db database.Queryer
}

func NewPostgresMovieRepository(db database.Queryer) MovieRepository {
	return &postgresMovieRepository{db: db}
}

func (r *postgresMovieRepository) WithTx(tx pgx.Tx) MovieRepository {
	return &postgresMovieRepository{db: tx}
}

func (r *postgresMovieRepository) Save(ctx context.Context, movie *model.Movie) (int64, error) {
	query := `
		INSERT INTO movies (title, description, body, year_released, languages, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query,
		movie.Title, movie.Description, movie.Body, movie.YearReleased, movie.Languages,
	).Scan(&id)
	if err != nil {
		return 0, apperror.FromStorage(fmt.Errorf("failed to save movie: %w", err))
	}

	return id, nil
}

func (r *postgresMovieRepository) FindByID(ctx context.Context, id int64) (*model.Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies m WHERE m.id = $1`

	movie, err := scanMovie(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound(fmt.Sprint(id), "movie [%d] not found", id)
		}
		return nil, apperror.FromStorage(fmt.Errorf("failed to find movie: %w", err))
	}

	return movie, nil
}

// movieFilterSQL builds the FROM/WHERE tail shared by FindMovies and
// CountMovies. Only clauses whose filter parameter is present are
// composed; arguments stay positional.
func movieFilterSQL(filter model.ListFilter, favoritedByID *int64) (string, []any) {
	var sb strings.Builder
	var args []any

	sb.WriteString(`
		FROM movies m
		LEFT JOIN movie_actors ma ON m.id = ma.movie_id
		LEFT JOIN actors a ON ma.actor_id = a.id
		LEFT JOIN favorite_movies fm ON m.id = fm.movie_id
	`)

	var clauses []string
	if filter.Actor != nil {
		args = append(args, *filter.Actor)
		clauses = append(clauses, fmt.Sprintf("a.name = $%d", len(args)))
	}
	if filter.YearReleased != nil {
		args = append(args, *filter.YearReleased)
		clauses = append(clauses, fmt.Sprintf("m.year_released = $%d", len(args)))
	}
	if favoritedByID != nil {
		args = append(args, *favoritedByID)
		clauses = append(clauses, fmt.Sprintf("fm.user_id = $%d", len(args)))
	}

	if len(clauses) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(clauses, " AND "))
	}

	return sb.String(), args
}

func (r *postgresMovieRepository) FindMovies(ctx context.Context, filter model.ListFilter, favoritedByID *int64) ([]*model.Movie, error) {
	tail, args := movieFilterSQL(filter, favoritedByID)

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(
		`SELECT DISTINCT %s %s ORDER BY m.created_at DESC LIMIT $%d OFFSET $%d`,
		movieColumns, tail, len(args)-1, len(args),
	)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.FromStorage(fmt.Errorf("failed to list movies: %w", err))
	}
	defer rows.Close()

	var movies []*model.Movie
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movie: %w", err)
		}
		movies = append(movies, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.FromStorage(fmt.Errorf("failed to read movies: %w", err))
	}

	return movies, nil
}

func (r *postgresMovieRepository) CountMovies(ctx context.Context, filter model.ListFilter, favoritedByID *int64) (int, error) {
	tail, args := movieFilterSQL(filter, favoritedByID)
	query := `SELECT count(DISTINCT m.id) ` + tail

	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, apperror.FromStorage(fmt.Errorf("failed to count movies: %w", err))
	}
	return count, nil
}

func (r *postgresMovieRepository) Like(ctx context.Context, userID, movieID int64) (bool, error) {
	query := `INSERT INTO favorite_movies (user_id, movie_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`

	tag, err := r.db.Exec(ctx, query, userID, movieID)
	if err != nil {
		return false, apperror.FromStorage(fmt.Errorf("failed to like movie: %w", err))
	}
	return tag.RowsAffected() > 0, nil
}

func (r *postgresMovieRepository) Unlike(ctx context.Context, userID, movieID int64) (bool, error) {
	query := `DELETE FROM favorite_movies WHERE user_id = $1 AND movie_id = $2`

	tag, err := r.db.Exec(ctx, query, userID, movieID)
	if err != nil {
		return false, apperror.FromStorage(fmt.Errorf("failed to unlike movie: %w", err))
	}
	return tag.RowsAffected() > 0, nil
}

func (r *postgresMovieRepository) IncrementLikes(ctx context.Context, movieID int64) error {
	return r.adjustLikes(ctx, movieID, `UPDATE movies SET likes_count = likes_count + 1 WHERE id = $1`)
}

func (r *postgresMovieRepository) DecrementLikes(ctx context.Context, movieID int64) error {
	return r.adjustLikes(ctx, movieID, `UPDATE movies SET likes_count = likes_count - 1 WHERE id = $1`)
}

func (r *postgresMovieRepository) adjustLikes(ctx context.Context, movieID int64, query string) error {
	tag, err := r.db.Exec(ctx, query, movieID)
	if err != nil {
		return apperror.FromStorage(fmt.Errorf("failed to adjust likes count: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound(fmt.Sprint(movieID), "movie [%d] not found", movieID)
	}
	return nil
}

func (r *postgresMovieRepository) FindLikedIDs(ctx context.Context, username string, movieIDs []int64) ([]int64, error) {
	query := `
		SELECT fm.movie_id
		FROM favorite_movies fm
		INNER JOIN users u ON u.id = fm.user_id
		WHERE u.username = $1 AND fm.movie_id = ANY($2)
	`

	rows, err := r.db.Query(ctx, query, username, movieIDs)
	if err != nil {
		return nil, apperror.FromStorage(fmt.Errorf("failed to find liked movies: %w", err))
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan liked movie id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.FromStorage(fmt.Errorf("failed to read liked movies: %w", err))
	}

	return ids, nil
}

func scanMovie(row pgx.Row) (*model.Movie, error) {
	movie := &model.Movie{}
	err := row.Scan(
		&movie.ID,
		&movie.Title,
		&movie.Description,
		&movie.Body,
		&movie.YearReleased,
		&movie.Languages,
		&movie.LikesCount,
		&movie.CreatedAt,
		&movie.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return movie, nil
}
