package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	commentRepo "moviehub-backend/internal/domains/comment/repository"
	"moviehub-backend/internal/domains/review/model"
	"moviehub-backend/internal/domains/review/repository"
	userRepo "moviehub-backend/internal/domains/user/repository"
	"moviehub-backend/internal/shared/apperror"
	"moviehub-backend/internal/shared/precondition"
	"moviehub-backend/internal/shared/utils"
	"moviehub-backend/pkg/database"
)

// errPreconditionRequired rejects unconditional writes to guarded
// resources.
var errPreconditionRequired = errors.New("precondition required: supply an If-Match header")

type reviewService struct {
	reviewRepo  repository.ReviewRepository
	tagRepo     repository.TagRepository
	commentRepo commentRepo.CommentRepository
	userRepo    userRepo.UserRepository
	tx          database.TxManager
}

func NewReviewService(
	reviews repository.ReviewRepository,
	tags repository.TagRepository,
	comments commentRepo.CommentRepository,
	users userRepo.UserRepository,
	tx database.TxManager,
) ServiceInterface {
	return &reviewService{
		reviewRepo:  reviews,
		tagRepo:     tags,
		commentRepo: comments,
		userRepo:    users,
		tx:          tx,
	}
}

func (s *reviewService) GetBySlug(ctx context.Context, viewer *string, slug string) (*model.Review, error) {
	review, err := s.reviewRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if err := s.enrich(ctx, []*model.Review{review}, viewer); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *reviewService) Create(ctx context.Context, username string, movieID int64, req model.NewReviewRequest) (*model.Review, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation(err)
	}

	authorID, err := s.userRepo.FindIDByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	slug, err := s.generateSlug(ctx, req.Title)
	if err != nil {
		return nil, err
	}

	review := &model.Review{
		Slug:        slug,
		Title:       req.Title,
		Description: req.Description,
		Body:        req.Body,
		MovieID:     movieID,
	}

	// Row insert and tag linking commit together or not at all.
	var reviewID int64
	err = s.tx.WithinTransaction(ctx, func(tx pgx.Tx) error {
		id, err := s.reviewRepo.WithTx(tx).Save(ctx, authorID, review)
		if err != nil {
			return err
		}
		reviewID = id

		if req.TagList != nil {
			return syncTags(ctx, s.tagRepo.WithTx(tx), id, req.TagList)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.getByID(ctx, &username, reviewID)
}

func (s *reviewService) Update(ctx context.Context, username, slug, clientFingerprint string, req model.UpdateReviewRequest) (*model.Review, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation(err)
	}

	old, err := s.GetBySlug(ctx, &username, slug)
	if err != nil {
		return nil, err
	}

	if err := checkCanMutate(username, old.Author.Username, slug); err != nil {
		return nil, err
	}

	switch precondition.Evaluate(precondition.Fingerprint(old.UpdatedAt), clientFingerprint) {
	case precondition.Required:
		return nil, apperror.Validation(errPreconditionRequired)
	case precondition.Conflict:
		return nil, apperror.Conflict(slug, old, "article [%s] was modified by someone else", slug)
	}

	updated := *old
	if req.Title != nil && *req.Title != old.Title {
		// A new title gets a new slug; same collision fallback as create.
		newSlug, err := s.generateSlug(ctx, *req.Title)
		if err != nil {
			return nil, err
		}
		updated.Slug = newSlug
		updated.Title = *req.Title
	}
	if req.Description != nil {
		updated.Description = *req.Description
	}
	if req.Body != nil {
		updated.Body = *req.Body
	}

	// Row update and tag replacement commit together or not at all.
	err = s.tx.WithinTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.reviewRepo.WithTx(tx).Update(ctx, &updated); err != nil {
			return err
		}

		if req.TagList != nil {
			// Full-replace semantics: clear the prior links, then
			// diff-and-link the new set.
			tags := s.tagRepo.WithTx(tx)
			if err := tags.DeleteLinks(ctx, updated.ID); err != nil {
				return err
			}
			return syncTags(ctx, tags, updated.ID, req.TagList)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.getByID(ctx, &username, updated.ID)
}

func (s *reviewService) Delete(ctx context.Context, username, slug string) error {
	review, err := s.reviewRepo.FindBySlug(ctx, slug)
	if err != nil {
		return err
	}

	if err := checkCanMutate(username, review.Author.Username, slug); err != nil {
		return err
	}

	// Cascade order matters: tag links, comments, then the row, so a
	// failure mid-sequence rolls back without dangling references.
	return s.tx.WithinTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.tagRepo.WithTx(tx).DeleteLinks(ctx, review.ID); err != nil {
			return err
		}
		if err := s.commentRepo.WithTx(tx).DeleteByReviewID(ctx, review.ID); err != nil {
			return err
		}
		return s.reviewRepo.WithTx(tx).Delete(ctx, review.ID)
	})
}

func (s *reviewService) Favorite(ctx context.Context, username, slug string) (*model.Review, error) {
	return s.setFavorite(ctx, username, slug, true)
}

func (s *reviewService) Unfavorite(ctx context.Context, username, slug string) (*model.Review, error) {
	return s.setFavorite(ctx, username, slug, false)
}

// setFavorite writes the favorite edge and the denormalized counter
// inside one transaction, so the counter always equals the number of
// edges. The counter only moves when the edge actually changed.
func (s *reviewService) setFavorite(ctx context.Context, username, slug string, favorited bool) (*model.Review, error) {
	userID, err := s.userRepo.FindIDByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	reviewID, err := s.reviewRepo.FindIDBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTransaction(ctx, func(tx pgx.Tx) error {
		repo := s.reviewRepo.WithTx(tx)

		if favorited {
			inserted, err := repo.Favorite(ctx, userID, reviewID)
			if err != nil {
				return err
			}
			if inserted {
				return repo.IncrementFavorites(ctx, reviewID)
			}
			return nil
		}

		removed, err := repo.Unfavorite(ctx, userID, reviewID)
		if err != nil {
			return err
		}
		if removed {
			return repo.DecrementFavorites(ctx, reviewID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.getByID(ctx, &username, reviewID)
}

func (s *reviewService) List(ctx context.Context, viewer *string, filter model.ListFilter) (*model.ReviewList, error) {
	var favoritedByID *int64
	if filter.FavoritedBy != nil {
		id, err := s.userRepo.FindIDByUsername(ctx, *filter.FavoritedBy)
		if err != nil {
			return nil, err
		}
		favoritedByID = &id
	}

	count, err := s.reviewRepo.CountReviews(ctx, filter, favoritedByID)
	if err != nil {
		return nil, err
	}

	reviews, err := s.reviewRepo.FindReviews(ctx, filter, favoritedByID)
	if err != nil {
		return nil, err
	}

	if err := s.enrich(ctx, reviews, viewer); err != nil {
		return nil, err
	}

	return reviewList(reviews, count), nil
}

func (s *reviewService) Feed(ctx context.Context, username string, offset, limit int) (*model.ReviewList, error) {
	count, err := s.reviewRepo.CountFeed(ctx, username)
	if err != nil {
		return nil, err
	}

	reviews, err := s.reviewRepo.FindFeed(ctx, username, offset, limit)
	if err != nil {
		return nil, err
	}

	if err := s.enrich(ctx, reviews, &username); err != nil {
		return nil, err
	}

	return reviewList(reviews, count), nil
}

func (s *reviewService) ListTags(ctx context.Context) ([]string, error) {
	tags, err := s.tagRepo.FindAllTags(ctx)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

func (s *reviewService) getByID(ctx context.Context, viewer *string, id int64) (*model.Review, error) {
	review, err := s.reviewRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.enrich(ctx, []*model.Review{review}, viewer); err != nil {
		return nil, err
	}
	return review, nil
}

// generateSlug normalizes the title and probes the slug index. A taken
// slug is discarded for a random unique token: correctness over
// prettiness. The probe is not locked against concurrent creation; a
// true race is caught by the unique index and surfaces as Conflict.
func (s *reviewService) generateSlug(ctx context.Context, title string) (string, error) {
	slug := utils.GenerateSlug(title)
	if slug == "" {
		return uuid.NewString(), nil
	}

	taken, err := s.reviewRepo.SlugExists(ctx, slug)
	if err != nil {
		return "", err
	}
	if taken {
		return uuid.NewString(), nil
	}
	return slug, nil
}

// syncTags performs the diff-and-link: find which requested names
// already exist, bulk-insert the missing ones, then link every name to
// the review with insert-or-ignore writes. Idempotent.
func syncTags(ctx context.Context, tags repository.TagRepository, reviewID int64, names []string) error {
	names = utils.Dedupe(names)
	if len(names) == 0 {
		return nil
	}

	existing, err := tags.FindExisting(ctx, names)
	if err != nil {
		return err
	}

	if missing := utils.Difference(names, existing); len(missing) > 0 {
		if err := tags.Save(ctx, missing); err != nil {
			return err
		}
	}

	return tags.Link(ctx, reviewID, names)
}

// checkCanMutate is the author-only mutation rule. Roles never widen it.
func checkCanMutate(actor, owner, slug string) error {
	if actor != owner {
		return apperror.Forbidden(slug, "user [%s] is not allowed to modify article [%s]", actor, slug)
	}
	return nil
}

// enrich is the batch assembly phase: collect the primary ids and author
// names, issue one batched lookup per secondary attribute, then merge
// the resulting maps into the transient fields. An empty batch issues no
// lookups at all; viewer-dependent fields stay nil for anonymous
// requests; ids absent from a map mean empty set / false, never an
// error.
func (s *reviewService) enrich(ctx context.Context, reviews []*model.Review, viewer *string) error {
	if len(reviews) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(reviews))
	authorSet := make(map[string]struct{}, len(reviews))
	authors := make([]string, 0, len(reviews))
	for _, rv := range reviews {
		ids = append(ids, rv.ID)
		if _, ok := authorSet[rv.Author.Username]; !ok {
			authorSet[rv.Author.Username] = struct{}{}
			authors = append(authors, rv.Author.Username)
		}
	}

	links, err := s.tagRepo.FindReviewTags(ctx, ids)
	if err != nil {
		return err
	}
	tagsByReview := make(map[int64][]string, len(reviews))
	for _, link := range links {
		tagsByReview[link.ReviewID] = append(tagsByReview[link.ReviewID], link.Name)
	}
	for _, rv := range reviews {
		tagList := tagsByReview[rv.ID]
		if tagList == nil {
			tagList = []string{}
		}
		rv.TagList = tagList
	}

	if viewer == nil {
		return nil
	}

	favoritedIDs, err := s.reviewRepo.FindFavoritedIDs(ctx, *viewer, ids)
	if err != nil {
		return err
	}
	favorited := make(map[int64]bool, len(favoritedIDs))
	for _, id := range favoritedIDs {
		favorited[id] = true
	}
	for _, rv := range reviews {
		flag := favorited[rv.ID]
		rv.Favorited = &flag
	}

	followed, err := s.userRepo.FindFollowedAuthors(ctx, *viewer, authors)
	if err != nil {
		return err
	}
	following := make(map[string]bool, len(followed))
	for _, name := range followed {
		following[name] = true
	}
	for _, rv := range reviews {
		flag := following[rv.Author.Username]
		rv.Author.Following = &flag
	}

	return nil
}

func reviewList(reviews []*model.Review, count int) *model.ReviewList {
	if reviews == nil {
		reviews = []*model.Review{}
	}
	return &model.ReviewList{Articles: reviews, ReviewsCount: count}
}
