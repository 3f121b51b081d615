package service

import (
	"context"

	"moviehub-backend/internal/domains/movie/model"
)

type ServiceInterface interface {
	// Create inserts a movie and links its actors in one transaction.
	Create(ctx context.Context, username string, req model.NewMovieRequest) (*model.Movie, error)

	// GetByID returns the enriched movie view. Liked is only populated
	// when a viewer is given.
	GetByID(ctx context.Context, viewer *string, id int64) (*model.Movie, error)

	// List returns movies matching the filter plus the total count.
	List(ctx context.Context, viewer *string, filter model.ListFilter) (*model.MovieList, error)

	// Like adds the viewer's like edge and bumps the counter.
	Like(ctx context.Context, username string, movieID int64) (*model.Movie, error)

	// Unlike removes the viewer's like edge and drops the counter.
	Unlike(ctx context.Context, username string, movieID int64) (*model.Movie, error)
}
