package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"moviehub-backend/internal/domains/review/model"
	"moviehub-backend/internal/shared/apperror"
	"moviehub-backend/pkg/database"
)

const reviewColumns = `r.id, r.slug, r.title, r.description, r.body, r.movie_id, r.favorites_count, r.created_at, r.updated_at, u.username, u.bio, u.image`

const foreignKeyViolation = "23503"

type postgresReviewRepository struct {
	db database.Queryer
}

func NewPostgresReviewRepository(db database.Queryer) ReviewRepository {
	return &postgresReviewRepository{db: db}
}

func (r *postgresReviewRepository) WithTx(tx pgx.Tx) ReviewRepository {
	return &postgresReviewRepository{db: tx}
}

func (r *postgresReviewRepository) Save(ctx context.Context, authorID int64, review *model.Review) (int64, error) {
	query := `
		INSERT INTO reviews (slug, title, description, body, movie_id, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query,
		review.Slug, review.Title, review.Description, review.Body, review.MovieID, authorID,
	).Scan(&id)
	if err != nil {
		if apperror.IsUniqueViolation(err) {
			// Two overlapping creations raced on the same slug.
			return 0, apperror.Conflict(review.Slug, nil, "slug [%s] already taken", review.Slug)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return 0, apperror.NotFound(fmt.Sprint(review.MovieID), "movie [%d] not found", review.MovieID)
		}
		return 0, apperror.FromStorage(fmt.Errorf("failed to save review: %w", err))
	}

	return id, nil
}

func (r *postgresReviewRepository) FindBySlug(ctx context.Context, slug string) (*model.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews r
		INNER JOIN users u ON r.author_id = u.id
		WHERE r.slug = $1
	`

	review, err := scanReview(r.db.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound(slug, "article [%s] not found", slug)
		}
		return nil, apperror.FromStorage(fmt.Errorf("failed to find review: %w", err))
	}

	return review, nil
}

func (r *postgresReviewRepository) FindByID(ctx context.Context, id int64) (*model.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews r
		INNER JOIN users u ON r.author_id = u.id
		WHERE r.id = $1
	`

	review, err := scanReview(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound(fmt.Sprint(id), "article [%d] not found", id)
		}
		return nil, apperror.FromStorage(fmt.Errorf("failed to find review: %w", err))
	}

	return review, nil
}

func (r *postgresReviewRepository) FindIDBySlug(ctx context.Context, slug string) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `SELECT id FROM reviews WHERE slug = $1`, slug).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperror.NotFound(slug, "article [%s] not found", slug)
		}
		return 0, apperror.FromStorage(fmt.Errorf("failed to find review id: %w", err))
	}
	return id, nil
}

func (r *postgresReviewRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM reviews WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, apperror.FromStorage(fmt.Errorf("failed to probe slug: %w", err))
	}
	return exists, nil
}

func (r *postgresReviewRepository) Update(ctx context.Context, review *model.Review) error {
	query := `
		UPDATE reviews
		SET slug = $2, title = $3, description = $4, body = $5, updated_at = now()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, review.ID, review.Slug, review.Title, review.Description, review.Body)
	if err != nil {
		if apperror.IsUniqueViolation(err) {
			return apperror.Conflict(review.Slug, nil, "slug [%s] already taken", review.Slug)
		}
		return apperror.FromStorage(fmt.Errorf("failed to update review: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound(review.Slug, "article [%s] not found", review.Slug)
	}
	return nil
}

func (r *postgresReviewRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return apperror.FromStorage(fmt.Errorf("failed to delete review: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound(fmt.Sprint(id), "article [%d] not found", id)
	}
	return nil
}

// reviewFilterSQL builds the FROM/WHERE tail shared by FindReviews and
// CountReviews. Only clauses whose filter parameter is present are
// composed; arguments stay positional.
func reviewFilterSQL(filter model.ListFilter, favoritedByID *int64) (string, []any) {
	var sb strings.Builder
	var args []any

	sb.WriteString(`
		FROM reviews r
		INNER JOIN users u ON r.author_id = u.id
		LEFT JOIN review_tags rt ON r.id = rt.review_id
		LEFT JOIN tags t ON rt.tag_id = t.id
		LEFT JOIN favorites f ON r.id = f.review_id
	`)

	var clauses []string
	if filter.MovieID != nil {
		args = append(args, *filter.MovieID)
		clauses = append(clauses, fmt.Sprintf("r.movie_id = $%d", len(args)))
	}
	if filter.Author != nil {
		args = append(args, *filter.Author)
		clauses = append(clauses, fmt.Sprintf("u.username = $%d", len(args)))
	}
	if filter.Tag != nil {
		args = append(args, *filter.Tag)
		clauses = append(clauses, fmt.Sprintf("t.name = $%d", len(args)))
	}
	if favoritedByID != nil {
		args = append(args, *favoritedByID)
		clauses = append(clauses, fmt.Sprintf("f.user_id = $%d", len(args)))
	}

	if len(clauses) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(clauses, " AND "))
	}

	return sb.String(), args
}

func (r *postgresReviewRepository) FindReviews(ctx context.Context, filter model.ListFilter, favoritedByID *int64) ([]*model.Review, error) {
	tail, args := reviewFilterSQL(filter, favoritedByID)

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(
		`SELECT DISTINCT %s %s ORDER BY r.created_at DESC LIMIT $%d OFFSET $%d`,
		reviewColumns, tail, len(args)-1, len(args),
	)

	return r.queryReviews(ctx, query, args...)
}

func (r *postgresReviewRepository) CountReviews(ctx context.Context, filter model.ListFilter, favoritedByID *int64) (int, error) {
	tail, args := reviewFilterSQL(filter, favoritedByID)
	query := `SELECT count(DISTINCT r.id) ` + tail

	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, apperror.FromStorage(fmt.Errorf("failed to count reviews: %w", err))
	}
	return count, nil
}

func (r *postgresReviewRepository) FindFeed(ctx context.Context, username string, offset, limit int) ([]*model.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews r
		INNER JOIN users u ON r.author_id = u.id
		INNER JOIN followers fw ON r.author_id = fw.user_id
		INNER JOIN users uf ON fw.follower_id = uf.id
		WHERE uf.username = $1
		ORDER BY r.created_at DESC
		LIMIT $2 OFFSET $3
	`

	return r.queryReviews(ctx, query, username, limit, offset)
}

func (r *postgresReviewRepository) CountFeed(ctx context.Context, username string) (int, error) {
	query := `
		SELECT count(DISTINCT r.id)
		FROM reviews r
		INNER JOIN followers fw ON r.author_id = fw.user_id
		INNER JOIN users uf ON fw.follower_id = uf.id
		WHERE uf.username = $1
	`

	var count int
	if err := r.db.QueryRow(ctx, query, username).Scan(&count); err != nil {
		return 0, apperror.FromStorage(fmt.Errorf("failed to count feed: %w", err))
	}
	return count, nil
}

func (r *postgresReviewRepository) Favorite(ctx context.Context, userID, reviewID int64) (bool, error) {
	query := `INSERT INTO favorites (user_id, review_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`

	tag, err := r.db.Exec(ctx, query, userID, reviewID)
	if err != nil {
		return false, apperror.FromStorage(fmt.Errorf("failed to favorite review: %w", err))
	}
	return tag.RowsAffected() > 0, nil
}

func (r *postgresReviewRepository) Unfavorite(ctx context.Context, userID, reviewID int64) (bool, error) {
	query := `DELETE FROM favorites WHERE user_id = $1 AND review_id = $2`

	tag, err := r.db.Exec(ctx, query, userID, reviewID)
	if err != nil {
		return false, apperror.FromStorage(fmt.Errorf("failed to unfavorite review: %w", err))
	}
	return tag.RowsAffected() > 0, nil
}

func (r *postgresReviewRepository) IncrementFavorites(ctx context.Context, reviewID int64) error {
	return r.adjustFavorites(ctx, reviewID, `UPDATE reviews SET favorites_count = favorites_count + 1 WHERE id = $1`)
}

func (r *postgresReviewRepository) DecrementFavorites(ctx context.Context, reviewID int64) error {
	return r.adjustFavorites(ctx, reviewID, `UPDATE reviews SET favorites_count = favorites_count - 1 WHERE id = $1`)
}

func (r *postgresReviewRepository) adjustFavorites(ctx context.Context, reviewID int64, query string) error {
	tag, err := r.db.Exec(ctx, query, reviewID)
	if err != nil {
		return apperror.FromStorage(fmt.Errorf("failed to adjust favorites count: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound(fmt.Sprint(reviewID), "article [%d] not found", reviewID)
	}
	return nil
}

func (r *postgresReviewRepository) FindFavoritedIDs(ctx context.Context, username string, reviewIDs []int64) ([]int64, error) {
	query := `
		SELECT f.review_id
		FROM favorites f
		INNER JOIN users u ON u.id = f.user_id
		WHERE u.username = $1 AND f.review_id = ANY($2)
	`

	rows, err := r.db.Query(ctx, query, username, reviewIDs)
	if err != nil {
		return nil, apperror.FromStorage(fmt.Errorf("failed to find favorited reviews: %w", err))
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan favorited review id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.FromStorage(fmt.Errorf("failed to read favorited reviews: %w", err))
	}

	return ids, nil
}

func (r *postgresReviewRepository) queryReviews(ctx context.Context, query string, args ...any) ([]*model.Review, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.FromStorage(fmt.Errorf("failed to list reviews: %w", err))
	}
	defer rows.Close()

	var reviews []*model.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.FromStorage(fmt.Errorf("failed to read reviews: %w", err))
	}

	return reviews, nil
}

func scanReview(row pgx.Row) (*model.Review, error) {
	review := &model.Review{}
	err := row.Scan(
		&review.ID,
		&review.Slug,
		&review.Title,
		&review.Description,
		&review.Body,
		&review.MovieID,
		&review.FavoritesCount,
		&review.CreatedAt,
		&review.UpdatedAt,
		&review.Author.Username,
		&review.Author.Bio,
		&review.Author.Image,
	)
	if err != nil {
		return nil, err
	}
	return review, nil
}
