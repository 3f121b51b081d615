package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moviehub-backend/internal/domains/movie/model"
	"moviehub-backend/internal/domains/movie/repository"
	usermodel "moviehub-backend/internal/domains/user/model"
	"moviehub-backend/internal/shared/apperror"
	"moviehub-backend/pkg/database"
)

type fakeTxManager struct{}

func (fakeTxManager) WithinTransaction(ctx context.Context, fn database.TxFunc) error {
	return fn(nil)
}

var userIDs = map[string]int64{"alice": 1, "bob": 2}

type fakeMovieRepo struct {
	nextID int64
	movies map[int64]*model.Movie
	likes  map[int64]map[int64]bool // movieID -> userIDs
}

func newFakeMovieRepo() *fakeMovieRepo {
	return &fakeMovieRepo{
		nextID: 1,
		movies: make(map[int64]*model.Movie),
		likes:  make(map[int64]map[int64]bool),
	}
}

func (r *fakeMovieRepo) WithTx(tx pgx.Tx) repository.MovieRepository { return r }

func (r *fakeMovieRepo) Save(ctx context.Context, movie *model.Movie) (int64, error) {
	id := r.nextID
	r.nextID++
	stored := *movie
	stored.ID = id
	r.movies[id] = &stored
	return id, nil
}

func (r *fakeMovieRepo) FindByID(ctx context.Context, id int64) (*model.Movie, error) {
	movie, ok := r.movies[id]
	if !ok {
		return nil, apperror.NotFound("", "movie not found")
	}
	copied := *movie
	return &copied, nil
}

func (r *fakeMovieRepo) FindMovies(ctx context.Context, filter model.ListFilter, favoritedByID *int64) ([]*model.Movie, error) {
	var out []*model.Movie
	for _, movie := range r.movies {
		if favoritedByID != nil && !r.likes[movie.ID][*favoritedByID] {
			continue
		}
		copied := *movie
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeMovieRepo) CountMovies(ctx context.Context, filter model.ListFilter, favoritedByID *int64) (int, error) {
	movies, err := r.FindMovies(ctx, filter, favoritedByID)
	return len(movies), err
}

func (r *fakeMovieRepo) Like(ctx context.Context, userID, movieID int64) (bool, error) {
	if r.likes[movieID] == nil {
		r.likes[movieID] = make(map[int64]bool)
	}
	if r.likes[movieID][userID] {
		return false, nil
	}
	r.likes[movieID][userID] = true
	return true, nil
}

func (r *fakeMovieRepo) Unlike(ctx context.Context, userID, movieID int64) (bool, error) {
	if !r.likes[movieID][userID] {
		return false, nil
	}
	delete(r.likes[movieID], userID)
	return true, nil
}

func (r *fakeMovieRepo) IncrementLikes(ctx context.Context, movieID int64) error {
	r.movies[movieID].LikesCount++
	return nil
}

func (r *fakeMovieRepo) DecrementLikes(ctx context.Context, movieID int64) error {
	r.movies[movieID].LikesCount--
	return nil
}

func (r *fakeMovieRepo) FindLikedIDs(ctx context.Context, username string, movieIDs []int64) ([]int64, error) {
	userID := userIDs[username]
	var out []int64
	for _, id := range movieIDs {
		if r.likes[id][userID] {
			out = append(out, id)
		}
	}
	return out, nil
}

type fakeActorRepo struct {
	actors map[string]bool
	links  map[int64][]string
	calls  int // batched lookup calls, for short-circuit assertions
}

func newFakeActorRepo() *fakeActorRepo {
	return &fakeActorRepo{actors: make(map[string]bool), links: make(map[int64][]string)}
}

func (r *fakeActorRepo) WithTx(tx pgx.Tx) repository.ActorRepository { return r }

func (r *fakeActorRepo) FindExisting(ctx context.Context, names []string) ([]string, error) {
	var out []string
	for _, name := range names {
		if r.actors[name] {
			out = append(out, name)
		}
	}
	return out, nil
}

func (r *fakeActorRepo) Save(ctx context.Context, names []string) error {
	for _, name := range names {
		r.actors[name] = true
	}
	return nil
}

func (r *fakeActorRepo) Link(ctx context.Context, movieID int64, names []string) error {
	for _, name := range names {
		already := false
		for _, linked := range r.links[movieID] {
			if linked == name {
				already = true
				break
			}
		}
		if !already {
			r.links[movieID] = append(r.links[movieID], name)
		}
	}
	return nil
}

func (r *fakeActorRepo) DeleteLinks(ctx context.Context, movieID int64) error {
	delete(r.links, movieID)
	return nil
}

func (r *fakeActorRepo) FindMovieActors(ctx context.Context, movieIDs []int64) ([]repository.MovieActor, error) {
	r.calls++
	var out []repository.MovieActor
	for _, id := range movieIDs {
		for _, name := range r.links[id] {
			out = append(out, repository.MovieActor{MovieID: id, Name: name})
		}
	}
	return out, nil
}

type stubUserRepo struct{}

func (stubUserRepo) Save(ctx context.Context, user *usermodel.User) (int64, error) { return 0, nil }

func (stubUserRepo) FindByUsername(ctx context.Context, username string) (*usermodel.User, error) {
	return nil, apperror.NotFound(username, "user [%s] not found", username)
}

func (stubUserRepo) FindByEmail(ctx context.Context, email string) (*usermodel.User, error) {
	return nil, apperror.NotFound(email, "user not found")
}

func (stubUserRepo) FindIDByUsername(ctx context.Context, username string) (int64, error) {
	id, ok := userIDs[username]
	if !ok {
		return 0, apperror.NotFound(username, "user [%s] not found", username)
	}
	return id, nil
}

func (stubUserRepo) Update(ctx context.Context, user *usermodel.User) error { return nil }

func (stubUserRepo) FindFollowedAuthors(ctx context.Context, follower string, authors []string) ([]string, error) {
	return nil, nil
}

func (stubUserRepo) Follow(ctx context.Context, followerID, followedID int64) error   { return nil }
func (stubUserRepo) Unfollow(ctx context.Context, followerID, followedID int64) error { return nil }
func (stubUserRepo) IsFollowing(ctx context.Context, followerID, followedID int64) (bool, error) {
	return false, nil
}

type fixture struct {
	svc    ServiceInterface
	movies *fakeMovieRepo
	actors *fakeActorRepo
}

func newFixture() *fixture {
	movies := newFakeMovieRepo()
	actors := newFakeActorRepo()
	return &fixture{
		svc:    NewMovieService(movies, actors, stubUserRepo{}, fakeTxManager{}),
		movies: movies,
		actors: actors,
	}
}

func newMovieRequest() model.NewMovieRequest {
	return model.NewMovieRequest{
		Title:        "The Matrix",
		Description:  "simulated reality",
		Body:         "a hacker discovers the truth",
		YearReleased: "1999",
		Languages:    []string{"en"},
		ActorList:    []string{"Keanu Reeves", "Carrie-Anne Moss"},
	}
}

func strptr(s string) *string { return &s }

func TestCreateMovie(t *testing.T) {
	ctx := context.Background()

	t.Run("links actors and returns the enriched view", func(t *testing.T) {
		f := newFixture()

		movie, err := f.svc.Create(ctx, "alice", newMovieRequest())
		require.NoError(t, err)

		assert.Equal(t, "The Matrix", movie.Title)
		assert.ElementsMatch(t, []string{"Keanu Reeves", "Carrie-Anne Moss"}, movie.ActorList)
		require.NotNil(t, movie.Liked)
		assert.False(t, *movie.Liked)
	})

	t.Run("shared actors are reused across movies", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.Create(ctx, "alice", newMovieRequest())
		require.NoError(t, err)
		req := newMovieRequest()
		req.Title = "John Wick"
		_, err = f.svc.Create(ctx, "alice", req)
		require.NoError(t, err)

		assert.Len(t, f.actors.actors, 2, "actor entities must be shared, not duplicated")
	})

	t.Run("invalid year is a validation error", func(t *testing.T) {
		f := newFixture()
		req := newMovieRequest()
		req.YearReleased = "99"

		_, err := f.svc.Create(ctx, "alice", req)
		assert.True(t, apperror.IsValidation(err))
	})
}

func TestGetMovie(t *testing.T) {
	ctx := context.Background()

	t.Run("anonymous viewer leaves Liked nil", func(t *testing.T) {
		f := newFixture()
		created, err := f.svc.Create(ctx, "alice", newMovieRequest())
		require.NoError(t, err)

		movie, err := f.svc.GetByID(ctx, nil, created.ID)
		require.NoError(t, err)
		assert.Nil(t, movie.Liked)
		assert.NotNil(t, movie.ActorList)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.GetByID(ctx, nil, 404)
		assert.True(t, apperror.IsNotFound(err))
	})
}

func TestLikeMovie(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip moves the counter with the edge", func(t *testing.T) {
		f := newFixture()
		created, err := f.svc.Create(ctx, "alice", newMovieRequest())
		require.NoError(t, err)

		liked, err := f.svc.Like(ctx, "bob", created.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), liked.LikesCount)
		require.NotNil(t, liked.Liked)
		assert.True(t, *liked.Liked)

		unliked, err := f.svc.Unlike(ctx, "bob", created.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), unliked.LikesCount)
		require.NotNil(t, unliked.Liked)
		assert.False(t, *unliked.Liked)
	})

	t.Run("repeated like does not inflate the counter", func(t *testing.T) {
		f := newFixture()
		created, err := f.svc.Create(ctx, "alice", newMovieRequest())
		require.NoError(t, err)

		_, err = f.svc.Like(ctx, "bob", created.ID)
		require.NoError(t, err)
		again, err := f.svc.Like(ctx, "bob", created.ID)
		require.NoError(t, err)

		assert.Equal(t, int64(1), again.LikesCount)
	})
}

func TestListMovies(t *testing.T) {
	ctx := context.Background()

	t.Run("empty batch issues no secondary lookups", func(t *testing.T) {
		f := newFixture()

		list, err := f.svc.List(ctx, strptr("alice"), model.ListFilter{Limit: 20})
		require.NoError(t, err)

		assert.NotNil(t, list.Movies)
		assert.Empty(t, list.Movies)
		assert.Equal(t, 0, list.MoviesCount)
		assert.Zero(t, f.actors.calls, "enrichment must short-circuit on an empty page")
	})

	t.Run("favorited filter resolves the username", func(t *testing.T) {
		f := newFixture()
		liked, err := f.svc.Create(ctx, "alice", newMovieRequest())
		require.NoError(t, err)
		req := newMovieRequest()
		req.Title = "Ignored"
		_, err = f.svc.Create(ctx, "alice", req)
		require.NoError(t, err)
		_, err = f.svc.Like(ctx, "bob", liked.ID)
		require.NoError(t, err)

		list, err := f.svc.List(ctx, nil, model.ListFilter{FavoritedBy: strptr("bob"), Limit: 20})
		require.NoError(t, err)

		require.Len(t, list.Movies, 1)
		assert.Equal(t, liked.ID, list.Movies[0].ID)
	})

	t.Run("unknown favorited username is not found", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.List(ctx, nil, model.ListFilter{FavoritedBy: strptr("nobody"), Limit: 20})
		assert.True(t, apperror.IsNotFound(err))
	})
}
