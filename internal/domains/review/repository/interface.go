package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"moviehub-backend/internal/domains/review/model"
)

// ReviewRepository is the storage contract for review rows, favorite
// edges and the denormalized favorites counter.
type ReviewRepository interface {
	// Save inserts a review and returns its generated id. A slug
	// uniqueness race surfaces as Conflict; a missing movie as NotFound.
	Save(ctx context.Context, authorID int64, review *model.Review) (int64, error)

	// FindBySlug returns the review with its author profile, or NotFound.
	FindBySlug(ctx context.Context, slug string) (*model.Review, error)

	// FindByID returns the review with its author profile, or NotFound.
	FindByID(ctx context.Context, id int64) (*model.Review, error)

	// FindIDBySlug resolves a slug to its review id, or NotFound.
	FindIDBySlug(ctx context.Context, slug string) (int64, error)

	// SlugExists probes the slug index. Absence is not an error here.
	SlugExists(ctx context.Context, slug string) (bool, error)

	// Update overwrites slug, title, description and body, bumping
	// updated_at.
	Update(ctx context.Context, review *model.Review) error

	// Delete removes the review row only. The cascade (tag links,
	// comments) is the service's job, inside one transaction.
	Delete(ctx context.Context, id int64) error

	// FindReviews lists reviews matching the filter, newest first.
	FindReviews(ctx context.Context, filter model.ListFilter, favoritedByID *int64) ([]*model.Review, error)

	// CountReviews counts the reviews matching the filter.
	CountReviews(ctx context.Context, filter model.ListFilter, favoritedByID *int64) (int, error)

	// FindFeed lists reviews authored by users the given user follows,
	// newest first.
	FindFeed(ctx context.Context, username string, offset, limit int) ([]*model.Review, error)

	// CountFeed counts the feed of the given user.
	CountFeed(ctx context.Context, username string) (int, error)

	// Favorite inserts a (user, review) favorite edge. Returns false
	// when the edge already existed.
	Favorite(ctx context.Context, userID, reviewID int64) (bool, error)

	// Unfavorite removes the favorite edge. Returns false when there was
	// no edge.
	Unfavorite(ctx context.Context, userID, reviewID int64) (bool, error)

	// IncrementFavorites / DecrementFavorites adjust the denormalized
	// counter. Only the favorite/unfavorite paths may call these.
	IncrementFavorites(ctx context.Context, reviewID int64) error
	DecrementFavorites(ctx context.Context, reviewID int64) error

	// FindFavoritedIDs returns which of reviewIDs the user has
	// favorited. One batched lookup for the enrichment phase.
	FindFavoritedIDs(ctx context.Context, username string, reviewIDs []int64) ([]int64, error)

	// WithTx rebinds the repository to a transaction.
	WithTx(tx pgx.Tx) ReviewRepository
}

// ReviewTag is one (review id, tag name) link row, returned by the
// batched tag lookup and grouped by the service.
type ReviewTag struct {
	ReviewID int64
	Name     string
}

// TagRepository is the storage contract for the shared tag entities and
// their many-to-many links to reviews. Tags are never deleted, even once
// unlinked.
type TagRepository interface {
	// FindExisting returns which of names already exist.
	FindExisting(ctx context.Context, names []string) ([]string, error)

	// Save bulk-inserts new tag names.
	Save(ctx context.Context, names []string) error

	// Link links every name to the review. Insert-or-ignore, so repeated
	// calls are safe.
	Link(ctx context.Context, reviewID int64, names []string) error

	// DeleteLinks detaches all tags from the review. Full-replace
	// updates clear links first, then re-link.
	DeleteLinks(ctx context.Context, reviewID int64) error

	// FindReviewTags returns the link rows for the given reviews.
	FindReviewTags(ctx context.Context, reviewIDs []int64) ([]ReviewTag, error)

	// FindAllTags returns every known tag name.
	FindAllTags(ctx context.Context) ([]string, error)

	// WithTx rebinds the repository to a transaction.
	WithTx(tx pgx.Tx) TagRepository
}
