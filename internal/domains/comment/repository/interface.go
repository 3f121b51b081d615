package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"moviehub-backend/internal/domains/comment/model"
)

// CommentRepository is the storage contract for comment rows.
type CommentRepository interface {
	// Save inserts a comment and returns its generated id.
	Save(ctx context.Context, authorID, reviewID int64, body string) (int64, error)

	// FindByID returns the comment with its author profile, or NotFound.
	FindByID(ctx context.Context, id int64) (*model.Comment, error)

	// FindByReviewSlug lists a review's comments, oldest first.
	FindByReviewSlug(ctx context.Context, slug string) ([]*model.Comment, error)

	// Delete removes one comment.
	Delete(ctx context.Context, id int64) error

	// DeleteByReviewID removes every comment of a review. Part of the
	// review deletion cascade, called inside its transaction.
	DeleteByReviewID(ctx context.Context, reviewID int64) error

	// WithTx rebinds the repository to a transaction.
	WithTx(tx pgx.Tx) CommentRepository
}
