package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"moviehub-backend/internal/domains/movie/model"
)

// MovieRepository is the storage contract for movie rows, like edges and
// the denormalized likes counter.
type MovieRepository interface {
	// Save inserts a movie and returns its generated id.
	Save(ctx context.Context, movie *model.Movie) (int64, error)

	// FindByID returns the movie row, or NotFound.
	FindByID(ctx context.Context, id int64) (*model.Movie, error)

	// FindMovies lists movies matching the filter, newest first.
	// favoritedByID is the resolved user id for filter.FavoritedBy.
	FindMovies(ctx context.Context, filter model.ListFilter, favoritedByID *int64) ([]*model.Movie, error)

	// CountMovies counts the movies matching the filter.
	CountMovies(ctx context.Context, filter model.ListFilter, favoritedByID *int64) (int, error)

	// Like inserts a (user, movie) like edge. Returns false when the
	// edge already existed, so the caller knows not to bump the counter.
	Like(ctx context.Context, userID, movieID int64) (bool, error)

	// Unlike removes the like edge. Returns false when there was no edge.
	Unlike(ctx context.Context, userID, movieID int64) (bool, error)

	// IncrementLikes / DecrementLikes adjust the denormalized counter.
	// Only the like/unlike paths may call these.
	IncrementLikes(ctx context.Context, movieID int64) error
	DecrementLikes(ctx context.Context, movieID int64) error

	// FindLikedIDs returns which of movieIDs the user has liked.
	// One batched lookup for the enrichment phase.
	FindLikedIDs(ctx context.Context, username string, movieIDs []int64) ([]int64, error)

	// WithTx rebinds the repository to a transaction.
	WithTx(tx pgx.Tx) MovieRepository
}

// MovieActor is one (movie id, actor name) link row, returned by the
// batched actor lookup and grouped by the service.
type MovieActor struct {
	MovieID int64
	Name    string
}

// ActorRepository is the storage contract for the shared actor entities
// and their many-to-many links to movies. Actors are never deleted, even
// once unlinked.
type ActorRepository interface {
	// FindExisting returns which of names already exist.
	FindExisting(ctx context.Context, names []string) ([]string, error)

	// Save bulk-inserts new actor names.
	Save(ctx context.Context, names []string) error

	// Link links every name to the movie. Insert-or-ignore, so repeated
	// calls are safe.
	Link(ctx context.Context, movieID int64, names []string) error

	// DeleteLinks detaches all actors from the movie.
	DeleteLinks(ctx context.Context, movieID int64) error

	// FindMovieActors returns the link rows for the given movies.
	FindMovieActors(ctx context.Context, movieIDs []int64) ([]MovieActor, error)

	// WithTx rebinds the repository to a transaction.
	WithTx(tx pgx.Tx) ActorRepository
}
