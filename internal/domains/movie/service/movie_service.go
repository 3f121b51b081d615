package service

import (
	"context"

	"github.com/jackc/pgx/v5"

	"moviehub-backend/internal/domains/movie/model"
	"moviehub-backend/internal/domains/movie/repository"
	userRepo "moviehub-backend/internal/domains/user/repository"
	"moviehub-backend/internal/shared/apperror"
	"moviehub-backend/internal/shared/utils"
	"moviehub-backend/pkg/database"
)

type movieService struct {
	movieRepo repository.MovieRepository
	actorRepo repository.ActorRepository
	userRepo  userRepo.UserRepository
	tx        database.TxManager
}

func NewMovieService(
	movieRepo repository.MovieRepository,
	actorRepo repository.ActorRepository,
	users userRepo.UserRepository,
	tx database.TxManager,
) ServiceInterface {
	return &movieService{
		movieRepo: movieRepo,
		actorRepo: actorRepo,
		userRepo:  users,
		tx:        tx,
	}
}

func (s *movieService) Create(ctx context.Context, username string, req model.NewMovieRequest) (*model.Movie, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation(err)
	}

	movie := &model.Movie{
		Title:        req.Title,
		Description:  req.Description,
		Body:         req.Body,
		YearReleased: req.YearReleased,
		Languages:    req.Languages,
	}

	// Row insert and actor linking commit together or not at all.
	var movieID int64
	err := s.tx.WithinTransaction(ctx, func(tx pgx.Tx) error {
		id, err := s.movieRepo.WithTx(tx).Save(ctx, movie)
		if err != nil {
			return err
		}
		movieID = id

		if req.ActorList != nil {
			return syncActors(ctx, s.actorRepo.WithTx(tx), id, req.ActorList)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, &username, movieID)
}

func (s *movieService) GetByID(ctx context.Context, viewer *string, id int64) (*model.Movie, error) {
	movie, err := s.movieRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.enrich(ctx, []*model.Movie{movie}, viewer); err != nil {
		return nil, err
	}
	return movie, nil
}

func (s *movieService) List(ctx context.Context, viewer *string, filter model.ListFilter) (*model.MovieList, error) {
	favoritedByID, err := s.resolveFavoritedBy(ctx, filter.FavoritedBy)
	if err != nil {
		return nil, err
	}

	count, err := s.movieRepo.CountMovies(ctx, filter, favoritedByID)
	if err != nil {
		return nil, err
	}

	movies, err := s.movieRepo.FindMovies(ctx, filter, favoritedByID)
	if err != nil {
		return nil, err
	}

	if err := s.enrich(ctx, movies, viewer); err != nil {
		return nil, err
	}

	if movies == nil {
		movies = []*model.Movie{}
	}
	return &model.MovieList{Movies: movies, MoviesCount: count}, nil
}

func (s *movieService) Like(ctx context.Context, username string, movieID int64) (*model.Movie, error) {
	return s.setLike(ctx, username, movieID, true)
}

func (s *movieService) Unlike(ctx context.Context, username string, movieID int64) (*model.Movie, error) {
	return s.setLike(ctx, username, movieID, false)
}

// setLike writes the like edge and the denormalized counter inside one
// transaction, so the counter always equals the number of edges. The
// counter only moves when the edge actually changed.
func (s *movieService) setLike(ctx context.Context, username string, movieID int64, liked bool) (*model.Movie, error) {
	userID, err := s.userRepo.FindIDByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTransaction(ctx, func(tx pgx.Tx) error {
		repo := s.movieRepo.WithTx(tx)

		if liked {
			inserted, err := repo.Like(ctx, userID, movieID)
			if err != nil {
				return err
			}
			if inserted {
				return repo.IncrementLikes(ctx, movieID)
			}
			return nil
		}

		removed, err := repo.Unlike(ctx, userID, movieID)
		if err != nil {
			return err
		}
		if removed {
			return repo.DecrementLikes(ctx, movieID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, &username, movieID)
}

func (s *movieService) resolveFavoritedBy(ctx context.Context, favoritedBy *string) (*int64, error) {
	if favoritedBy == nil {
		return nil, nil
	}
	id, err := s.userRepo.FindIDByUsername(ctx, *favoritedBy)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// syncActors performs the diff-and-link: find which requested names
// already exist, bulk-insert the missing ones, then link every name to
// the movie with insert-or-ignore writes. Idempotent.
func syncActors(ctx context.Context, actors repository.ActorRepository, movieID int64, names []string) error {
	names = utils.Dedupe(names)
	if len(names) == 0 {
		return nil
	}

	existing, err := actors.FindExisting(ctx, names)
	if err != nil {
		return err
	}

	if missing := utils.Difference(names, existing); len(missing) > 0 {
		if err := actors.Save(ctx, missing); err != nil {
			return err
		}
	}

	return actors.Link(ctx, movieID, names)
}

// enrich is the batch assembly phase: one batched lookup per secondary
// attribute, then a merge into the transient fields. An empty batch
// issues no lookups at all. Viewer-dependent fields stay nil for
// anonymous requests.
func (s *movieService) enrich(ctx context.Context, movies []*model.Movie, viewer *string) error {
	if len(movies) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(movies))
	for _, m := range movies {
		ids = append(ids, m.ID)
	}

	links, err := s.actorRepo.FindMovieActors(ctx, ids)
	if err != nil {
		return err
	}
	actorsByMovie := make(map[int64][]string, len(movies))
	for _, link := range links {
		actorsByMovie[link.MovieID] = append(actorsByMovie[link.MovieID], link.Name)
	}
	for _, m := range movies {
		actorList := actorsByMovie[m.ID]
		if actorList == nil {
			actorList = []string{}
		}
		m.ActorList = actorList
	}

	if viewer == nil {
		return nil
	}

	likedIDs, err := s.movieRepo.FindLikedIDs(ctx, *viewer, ids)
	if err != nil {
		return err
	}
	liked := make(map[int64]bool, len(likedIDs))
	for _, id := range likedIDs {
		liked[id] = true
	}
	for _, m := range movies {
		flag := liked[m.ID]
		m.Liked = &flag
	}

	return nil
}
