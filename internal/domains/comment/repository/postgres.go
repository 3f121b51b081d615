package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"moviehub-backend/internal/domains/comment/model"
	"moviehub-backend/internal/shared/apperror"
	"moviehub-backend/pkg/database"
)

const commentColumns = `c.id, c.body, c.created_at, u.username, u.bio, u.image`

type postgresCommentRepository struct {
	db database.Queryer
}

func NewPostgresCommentRepository(db database.Queryer) CommentRepository {
	return &postgresCommentRepository{db: db}
}

func (r *postgresCommentRepository) WithTx(tx pgx.Tx) CommentRepository {
	return &postgresCommentRepository{db: tx}
}

func (r *postgresCommentRepository) Save(ctx context.Context, authorID, reviewID int64, body string) (int64, error) {
	query := `
		INSERT INTO comments (body, review_id, author_id, created_at)
		VALUES ($1, $2, $3, now())
		RETURNING id
	`

	var id int64
	if err := r.db.QueryRow(ctx, query, body, reviewID, authorID).Scan(&id); err != nil {
		return 0, apperror.FromStorage(fmt.Errorf("failed to save comment: %w", err))
	}
	return id, nil
}

func (r *postgresCommentRepository) FindByID(ctx context.Context, id int64) (*model.Comment, error) {
	query := `
		SELECT ` + commentColumns + `, c.review_id
		FROM comments c
		INNER JOIN users u ON c.author_id = u.id
		WHERE c.id = $1
	`

	comment := &model.Comment{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&comment.ID,
		&comment.Body,
		&comment.CreatedAt,
		&comment.Author.Username,
		&comment.Author.Bio,
		&comment.Author.Image,
		&comment.ReviewID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound(fmt.Sprint(id), "comment [%d] not found", id)
		}
		return nil, apperror.FromStorage(fmt.Errorf("failed to find comment: %w", err))
	}

	return comment, nil
}

func (r *postgresCommentRepository) FindByReviewSlug(ctx context.Context, slug string) ([]*model.Comment, error) {
	query := `
		SELECT ` + commentColumns + `
		FROM comments c
		INNER JOIN users u ON c.author_id = u.id
		INNER JOIN reviews r ON c.review_id = r.id
		WHERE r.slug = $1
		ORDER BY c.created_at ASC
	`

	rows, err := r.db.Query(ctx, query, slug)
	if err != nil {
		return nil, apperror.FromStorage(fmt.Errorf("failed to list comments: %w", err))
	}
	defer rows.Close()

	var comments []*model.Comment
	for rows.Next() {
		comment := &model.Comment{}
		err := rows.Scan(
			&comment.ID,
			&comment.Body,
			&comment.CreatedAt,
			&comment.Author.Username,
			&comment.Author.Bio,
			&comment.Author.Image,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.FromStorage(fmt.Errorf("failed to read comments: %w", err))
	}

	return comments, nil
}

func (r *postgresCommentRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return apperror.FromStorage(fmt.Errorf("failed to delete comment: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound(fmt.Sprint(id), "comment [%d] not found", id)
	}
	return nil
}

func (r *postgresCommentRepository) DeleteByReviewID(ctx context.Context, reviewID int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM comments WHERE review_id = $1`, reviewID); err != nil {
		return apperror.FromStorage(fmt.Errorf("failed to delete review comments: %w", err))
	}
	return nil
}
