package service

import (
	"context"

	"moviehub-backend/internal/domains/review/model"
)

type ServiceInterface interface {
	// GetBySlug returns the enriched review view. Favorited and the
	// author's following flag are only populated when a viewer is given.
	GetBySlug(ctx context.Context, viewer *string, slug string) (*model.Review, error)

	// Create inserts a review for a movie, generates its slug and links
	// its tags in one transaction.
	Create(ctx context.Context, username string, movieID int64, req model.NewReviewRequest) (*model.Review, error)

	// Update applies a conditional update. clientFingerprint is the
	// caller's precondition; a stale one yields Conflict carrying the
	// current entity, an empty one is rejected outright.
	Update(ctx context.Context, username, slug, clientFingerprint string, req model.UpdateReviewRequest) (*model.Review, error)

	// Delete cascades: tag links, comments, then the review row, all in
	// one transaction.
	Delete(ctx context.Context, username, slug string) error

	// Favorite adds the user's favorite edge and bumps the counter.
	Favorite(ctx context.Context, username, slug string) (*model.Review, error)

	// Unfavorite removes the user's favorite edge and drops the counter.
	Unfavorite(ctx context.Context, username, slug string) (*model.Review, error)

	// List returns reviews matching the filter plus the total count.
	List(ctx context.Context, viewer *string, filter model.ListFilter) (*model.ReviewList, error)

	// Feed returns reviews authored by users the given user follows.
	Feed(ctx context.Context, username string, offset, limit int) (*model.ReviewList, error)

	// ListTags returns every known tag name.
	ListTags(ctx context.Context) ([]string, error)
}
