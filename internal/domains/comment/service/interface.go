package service

import (
	"context"

	"moviehub-backend/internal/domains/comment/model"
)

type ServiceInterface interface {
	// Create adds a comment to the article identified by slug.
	Create(ctx context.Context, username, slug string, req model.NewCommentRequest) (*model.Comment, error)
	// List returns the article's comments, oldest first.
	List(ctx context.Context, viewer *string, slug string) ([]*model.Comment, error)
	// Delete removes a comment. Allowed for the comment's author and for
	// the author of the article it belongs to.
	Delete(ctx context.Context, username, slug string, commentID int64) error
}
