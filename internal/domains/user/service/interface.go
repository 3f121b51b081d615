package service

import (
	"context"

	"moviehub-backend/internal/domains/user/model"
)

type ServiceInterface interface {
	// Register creates an account and issues its first token.
	Register(ctx context.Context, req model.RegisterRequest) (*model.AuthenticatedUser, error)

	// Login verifies credentials and issues a token.
	Login(ctx context.Context, req model.LoginRequest) (*model.AuthenticatedUser, error)

	// GetCurrent returns the account of the authenticated principal.
	GetCurrent(ctx context.Context, username string) (*model.User, error)

	// Update applies partial account changes for the principal.
	Update(ctx context.Context, username string, req model.UpdateUserRequest) (*model.User, error)

	// GetProfile returns a public profile; the following flag is only
	// populated when a viewer is given.
	GetProfile(ctx context.Context, viewer *string, username string) (*model.Profile, error)

	// Follow adds a follow edge from viewer to username.
	Follow(ctx context.Context, viewer, username string) (*model.Profile, error)

	// Unfollow removes the follow edge from viewer to username.
	Unfollow(ctx context.Context, viewer, username string) (*model.Profile, error)
}
