package repository

import (
	"context"

	"moviehub-backend/internal/domains/user/model"
)

// UserRepository is the storage contract for accounts and follow edges.
type UserRepository interface {
	// Save inserts a new account and returns its generated id.
	Save(ctx context.Context, user *model.User) (int64, error)

	// FindByUsername returns the account, or NotFound.
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// FindByEmail returns the account, or NotFound. Used by login.
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindIDByUsername resolves a username to its id, or NotFound.
	FindIDByUsername(ctx context.Context, username string) (int64, error)

	// Update overwrites the mutable account fields.
	Update(ctx context.Context, user *model.User) error

	// FindFollowedAuthors returns which of authors the follower follows.
	// One batched lookup; absent entries simply do not appear.
	FindFollowedAuthors(ctx context.Context, follower string, authors []string) ([]string, error)

	// Follow inserts a follow edge. Idempotent.
	Follow(ctx context.Context, followerID, followedID int64) error

	// Unfollow removes a follow edge if present.
	Unfollow(ctx context.Context, followerID, followedID int64) error

	// IsFollowing reports whether the edge exists.
	IsFollowing(ctx context.Context, followerID, followedID int64) (bool, error)
}
