package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commentmodel "moviehub-backend/internal/domains/comment/model"
	commentRepo "moviehub-backend/internal/domains/comment/repository"
	"moviehub-backend/internal/domains/review/model"
	"moviehub-backend/internal/domains/review/repository"
	usermodel "moviehub-backend/internal/domains/user/model"
	"moviehub-backend/internal/shared/apperror"
	"moviehub-backend/internal/shared/precondition"
	"moviehub-backend/pkg/database"
)

// fakeTxManager runs the function directly; the fakes below are not
// transactional, WithTx on them returns the fake itself.
type fakeTxManager struct{}

func (fakeTxManager) WithinTransaction(ctx context.Context, fn database.TxFunc) error {
	return fn(nil)
}

// fakeClock hands out strictly increasing timestamps so updated_at
// always moves on writes.
type fakeClock struct{ now time.Time }

func (c *fakeClock) next() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

type fakeReviewRepo struct {
	clock     *fakeClock
	nextID    int64
	reviews   map[int64]*model.Review
	favorites map[int64]map[int64]bool // reviewID -> userIDs
	deletions *[]string                // shared cascade log
}

func newFakeReviewRepo(clock *fakeClock, deletions *[]string) *fakeReviewRepo {
	return &fakeReviewRepo{
		clock:     clock,
		nextID:    1,
		reviews:   make(map[int64]*model.Review),
		favorites: make(map[int64]map[int64]bool),
		deletions: deletions,
	}
}

func (r *fakeReviewRepo) WithTx(tx pgx.Tx) repository.ReviewRepository { return r }

func (r *fakeReviewRepo) Save(ctx context.Context, authorID int64, review *model.Review) (int64, error) {
	for _, existing := range r.reviews {
		if existing.Slug == review.Slug {
			return 0, apperror.Conflict(review.Slug, nil, "slug [%s] already exists", review.Slug)
		}
	}
	id := r.nextID
	r.nextID++

	stored := *review
	stored.ID = id
	stored.CreatedAt = r.clock.next()
	stored.UpdatedAt = stored.CreatedAt
	stored.Author = usermodel.Profile{Username: usernameFor(authorID)}
	r.reviews[id] = &stored
	return id, nil
}

func (r *fakeReviewRepo) FindBySlug(ctx context.Context, slug string) (*model.Review, error) {
	for _, rv := range r.reviews {
		if rv.Slug == slug {
			copied := *rv
			return &copied, nil
		}
	}
	return nil, apperror.NotFound(slug, "article [%s] not found", slug)
}

func (r *fakeReviewRepo) FindByID(ctx context.Context, id int64) (*model.Review, error) {
	rv, ok := r.reviews[id]
	if !ok {
		return nil, apperror.NotFound("", "article not found")
	}
	copied := *rv
	return &copied, nil
}

func (r *fakeReviewRepo) FindIDBySlug(ctx context.Context, slug string) (int64, error) {
	rv, err := r.FindBySlug(ctx, slug)
	if err != nil {
		return 0, err
	}
	return rv.ID, nil
}

func (r *fakeReviewRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	_, err := r.FindBySlug(ctx, slug)
	if apperror.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

func (r *fakeReviewRepo) Update(ctx context.Context, review *model.Review) error {
	stored, ok := r.reviews[review.ID]
	if !ok {
		return apperror.NotFound(review.Slug, "article [%s] not found", review.Slug)
	}
	stored.Slug = review.Slug
	stored.Title = review.Title
	stored.Description = review.Description
	stored.Body = review.Body
	stored.UpdatedAt = r.clock.next()
	return nil
}

func (r *fakeReviewRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.reviews[id]; !ok {
		return apperror.NotFound("", "article not found")
	}
	delete(r.reviews, id)
	*r.deletions = append(*r.deletions, "review")
	return nil
}

func (r *fakeReviewRepo) FindReviews(ctx context.Context, filter model.ListFilter, favoritedByID *int64) ([]*model.Review, error) {
	var out []*model.Review
	for _, rv := range r.reviews {
		if favoritedByID != nil && !r.favorites[rv.ID][*favoritedByID] {
			continue
		}
		if filter.Author != nil && rv.Author.Username != *filter.Author {
			continue
		}
		copied := *rv
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeReviewRepo) CountReviews(ctx context.Context, filter model.ListFilter, favoritedByID *int64) (int, error) {
	reviews, err := r.FindReviews(ctx, filter, favoritedByID)
	return len(reviews), err
}

func (r *fakeReviewRepo) FindFeed(ctx context.Context, username string, offset, limit int) ([]*model.Review, error) {
	return nil, nil
}

func (r *fakeReviewRepo) CountFeed(ctx context.Context, username string) (int, error) {
	return 0, nil
}

func (r *fakeReviewRepo) Favorite(ctx context.Context, userID, reviewID int64) (bool, error) {
	if r.favorites[reviewID] == nil {
		r.favorites[reviewID] = make(map[int64]bool)
	}
	if r.favorites[reviewID][userID] {
		return false, nil
	}
	r.favorites[reviewID][userID] = true
	return true, nil
}

func (r *fakeReviewRepo) Unfavorite(ctx context.Context, userID, reviewID int64) (bool, error) {
	if !r.favorites[reviewID][userID] {
		return false, nil
	}
	delete(r.favorites[reviewID], userID)
	return true, nil
}

func (r *fakeReviewRepo) IncrementFavorites(ctx context.Context, reviewID int64) error {
	r.reviews[reviewID].FavoritesCount++
	return nil
}

func (r *fakeReviewRepo) DecrementFavorites(ctx context.Context, reviewID int64) error {
	r.reviews[reviewID].FavoritesCount--
	return nil
}

func (r *fakeReviewRepo) FindFavoritedIDs(ctx context.Context, username string, reviewIDs []int64) ([]int64, error) {
	userID := idFor(username)
	var out []int64
	for _, id := range reviewIDs {
		if r.favorites[id][userID] {
			out = append(out, id)
		}
	}
	return out, nil
}

type fakeTagRepo struct {
	tags      map[string]bool
	links     map[int64][]string
	saves     int // counts Save calls, for idempotence assertions
	deletions *[]string
}

func newFakeTagRepo(deletions *[]string) *fakeTagRepo {
	return &fakeTagRepo{
		tags:      make(map[string]bool),
		links:     make(map[int64][]string),
		deletions: deletions,
	}
}

func (r *fakeTagRepo) WithTx(tx pgx.Tx) repository.TagRepository { return r }

func (r *fakeTagRepo) FindExisting(ctx context.Context, names []string) ([]string, error) {
	var out []string
	for _, name := range names {
		if r.tags[name] {
			out = append(out, name)
		}
	}
	return out, nil
}

func (r *fakeTagRepo) Save(ctx context.Context, names []string) error {
	r.saves++
	for _, name := range names {
		r.tags[name] = true
	}
	return nil
}

func (r *fakeTagRepo) Link(ctx context.Context, reviewID int64, names []string) error {
	for _, name := range names {
		already := false
		for _, linked := range r.links[reviewID] {
			if linked == name {
				already = true
				break
			}
		}
		if !already {
			r.links[reviewID] = append(r.links[reviewID], name)
		}
	}
	return nil
}

func (r *fakeTagRepo) DeleteLinks(ctx context.Context, reviewID int64) error {
	delete(r.links, reviewID)
	*r.deletions = append(*r.deletions, "tag-links")
	return nil
}

func (r *fakeTagRepo) FindReviewTags(ctx context.Context, reviewIDs []int64) ([]repository.ReviewTag, error) {
	var out []repository.ReviewTag
	for _, id := range reviewIDs {
		for _, name := range r.links[id] {
			out = append(out, repository.ReviewTag{ReviewID: id, Name: name})
		}
	}
	return out, nil
}

func (r *fakeTagRepo) FindAllTags(ctx context.Context) ([]string, error) {
	var out []string
	for name := range r.tags {
		out = append(out, name)
	}
	return out, nil
}

type fakeCommentRepo struct {
	deletions *[]string
}

func (r *fakeCommentRepo) WithTx(tx pgx.Tx) commentRepo.CommentRepository { return r }

func (r *fakeCommentRepo) Save(ctx context.Context, authorID, reviewID int64, body string) (int64, error) {
	return 0, nil
}

func (r *fakeCommentRepo) FindByID(ctx context.Context, id int64) (*commentmodel.Comment, error) {
	return nil, apperror.NotFound("", "comment not found")
}

func (r *fakeCommentRepo) FindByReviewSlug(ctx context.Context, slug string) ([]*commentmodel.Comment, error) {
	return nil, nil
}

func (r *fakeCommentRepo) Delete(ctx context.Context, id int64) error { return nil }

func (r *fakeCommentRepo) DeleteByReviewID(ctx context.Context, reviewID int64) error {
	*r.deletions = append(*r.deletions, "comments")
	return nil
}

// The fakes share a fixed username<->id mapping so follow and favorite
// lookups line up without a real users table.
var userIDs = map[string]int64{"alice": 1, "bob": 2, "carol": 3}

func idFor(username string) int64 {
	return userIDs[username]
}

func usernameFor(id int64) string {
	for name, uid := range userIDs {
		if uid == id {
			return name
		}
	}
	return ""
}

type fakeUserRepo struct {
	follows map[string]map[string]bool // follower -> authors
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{follows: make(map[string]map[string]bool)}
}

func (r *fakeUserRepo) Save(ctx context.Context, user *usermodel.User) (int64, error) {
	return 0, nil
}

func (r *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*usermodel.User, error) {
	if _, ok := userIDs[username]; !ok {
		return nil, apperror.NotFound(username, "user [%s] not found", username)
	}
	return &usermodel.User{ID: idFor(username), Username: username}, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*usermodel.User, error) {
	return nil, apperror.NotFound(email, "user not found")
}

func (r *fakeUserRepo) FindIDByUsername(ctx context.Context, username string) (int64, error) {
	id, ok := userIDs[username]
	if !ok {
		return 0, apperror.NotFound(username, "user [%s] not found", username)
	}
	return id, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *usermodel.User) error { return nil }

func (r *fakeUserRepo) FindFollowedAuthors(ctx context.Context, follower string, authors []string) ([]string, error) {
	var out []string
	for _, author := range authors {
		if r.follows[follower][author] {
			out = append(out, author)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Follow(ctx context.Context, followerID, followedID int64) error {
	follower, followed := usernameFor(followerID), usernameFor(followedID)
	if r.follows[follower] == nil {
		r.follows[follower] = make(map[string]bool)
	}
	r.follows[follower][followed] = true
	return nil
}

func (r *fakeUserRepo) Unfollow(ctx context.Context, followerID, followedID int64) error {
	delete(r.follows[usernameFor(followerID)], usernameFor(followedID))
	return nil
}

func (r *fakeUserRepo) IsFollowing(ctx context.Context, followerID, followedID int64) (bool, error) {
	return r.follows[usernameFor(followerID)][usernameFor(followedID)], nil
}

type fixture struct {
	svc     ServiceInterface
	reviews *fakeReviewRepo
	tags    *fakeTagRepo
	users   *fakeUserRepo
	log     []string
}

func newFixture() *fixture {
	f := &fixture{}
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	f.reviews = newFakeReviewRepo(clock, &f.log)
	f.tags = newFakeTagRepo(&f.log)
	f.users = newFakeUserRepo()
	f.svc = NewReviewService(f.reviews, f.tags, &fakeCommentRepo{deletions: &f.log}, f.users, fakeTxManager{})
	return f
}

func strptr(s string) *string { return &s }

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("slugifies the title and links tags", func(t *testing.T) {
		f := newFixture()

		review, err := f.svc.Create(ctx, "alice", 7, model.NewReviewRequest{
			Title:       "Hello, World!",
			Description: "a classic",
			Body:        "great movie",
			TagList:     []string{"drama", "scifi", "drama"},
		})
		require.NoError(t, err)

		assert.Equal(t, "hello-world", review.Slug)
		assert.Equal(t, int64(7), review.MovieID)
		assert.Equal(t, "alice", review.Author.Username)
		assert.ElementsMatch(t, []string{"drama", "scifi"}, review.TagList)
	})

	t.Run("taken slug falls back to a random token", func(t *testing.T) {
		f := newFixture()

		first, err := f.svc.Create(ctx, "alice", 7, model.NewReviewRequest{Title: "Same Title", Description: "d", Body: "x"})
		require.NoError(t, err)
		second, err := f.svc.Create(ctx, "bob", 7, model.NewReviewRequest{Title: "Same Title", Description: "d", Body: "y"})
		require.NoError(t, err)

		assert.Equal(t, "same-title", first.Slug)
		assert.NotEqual(t, first.Slug, second.Slug)
		assert.NotEmpty(t, second.Slug)
	})

	t.Run("missing title is a validation error", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.Create(ctx, "alice", 7, model.NewReviewRequest{Description: "d", Body: "no title"})
		assert.True(t, apperror.IsValidation(err))
	})

	t.Run("nil tag list links nothing", func(t *testing.T) {
		f := newFixture()

		review, err := f.svc.Create(ctx, "alice", 7, model.NewReviewRequest{Title: "Untagged", Description: "d", Body: "x"})
		require.NoError(t, err)
		assert.Equal(t, []string{}, review.TagList)
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	create := func(t *testing.T, f *fixture) *model.Review {
		t.Helper()
		review, err := f.svc.Create(ctx, "alice", 7, model.NewReviewRequest{
			Title:       "Original Title",
			Description: "original description",
			Body:        "original body",
			TagList:     []string{"drama"},
		})
		require.NoError(t, err)
		return review
	}

	t.Run("matching fingerprint applies and refreshes it", func(t *testing.T) {
		f := newFixture()
		review := create(t, f)
		fp := precondition.Fingerprint(review.UpdatedAt)

		updated, err := f.svc.Update(ctx, "alice", review.Slug, fp, model.UpdateReviewRequest{
			Body: strptr("revised body"),
		})
		require.NoError(t, err)

		assert.Equal(t, "revised body", updated.Body)
		assert.Equal(t, "Original Title", updated.Title)
		assert.NotEqual(t, fp, precondition.Fingerprint(updated.UpdatedAt))
	})

	t.Run("stale fingerprint conflicts and leaves the row untouched", func(t *testing.T) {
		f := newFixture()
		review := create(t, f)

		_, err := f.svc.Update(ctx, "alice", review.Slug, "stale-fingerprint", model.UpdateReviewRequest{
			Body: strptr("must not apply"),
		})
		require.True(t, apperror.IsConflict(err))

		var appErr *apperror.Error
		require.ErrorAs(t, err, &appErr)
		current, ok := appErr.Current.(*model.Review)
		require.True(t, ok, "conflict should carry the current article")
		assert.Equal(t, "original body", current.Body)

		unchanged, err := f.svc.GetBySlug(ctx, nil, review.Slug)
		require.NoError(t, err)
		assert.Equal(t, "original body", unchanged.Body)
		assert.Equal(t, review.UpdatedAt, unchanged.UpdatedAt)
	})

	t.Run("missing fingerprint is rejected", func(t *testing.T) {
		f := newFixture()
		review := create(t, f)

		_, err := f.svc.Update(ctx, "alice", review.Slug, "", model.UpdateReviewRequest{
			Body: strptr("blind write"),
		})
		assert.True(t, apperror.IsValidation(err))
	})

	t.Run("only the author may update", func(t *testing.T) {
		f := newFixture()
		review := create(t, f)
		fp := precondition.Fingerprint(review.UpdatedAt)

		_, err := f.svc.Update(ctx, "bob", review.Slug, fp, model.UpdateReviewRequest{
			Body: strptr("not mine"),
		})
		assert.True(t, apperror.IsForbidden(err))
	})

	t.Run("new title regenerates the slug", func(t *testing.T) {
		f := newFixture()
		review := create(t, f)
		fp := precondition.Fingerprint(review.UpdatedAt)

		updated, err := f.svc.Update(ctx, "alice", review.Slug, fp, model.UpdateReviewRequest{
			Title: strptr("Brand New Title"),
		})
		require.NoError(t, err)
		assert.Equal(t, "brand-new-title", updated.Slug)

		_, err = f.svc.GetBySlug(ctx, nil, review.Slug)
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("non-nil tag list replaces all links", func(t *testing.T) {
		f := newFixture()
		review := create(t, f)
		fp := precondition.Fingerprint(review.UpdatedAt)

		updated, err := f.svc.Update(ctx, "alice", review.Slug, fp, model.UpdateReviewRequest{
			TagList: []string{"noir", "thriller"},
		})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"noir", "thriller"}, updated.TagList)
	})
}

func TestSyncTags(t *testing.T) {
	ctx := context.Background()

	t.Run("repeated sync neither re-saves nor re-links", func(t *testing.T) {
		var log []string
		tags := newFakeTagRepo(&log)

		require.NoError(t, syncTags(ctx, tags, 1, []string{"drama", "scifi"}))
		require.NoError(t, syncTags(ctx, tags, 1, []string{"drama", "scifi"}))

		assert.Equal(t, 1, tags.saves, "existing tags must not be saved again")
		assert.ElementsMatch(t, []string{"drama", "scifi"}, tags.links[1])
	})

	t.Run("empty list after dedupe is a no-op", func(t *testing.T) {
		var log []string
		tags := newFakeTagRepo(&log)

		require.NoError(t, syncTags(ctx, tags, 1, nil))
		assert.Zero(t, tags.saves)
		assert.Empty(t, tags.links[1])
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("cascades tag links, comments, then the row", func(t *testing.T) {
		f := newFixture()
		review, err := f.svc.Create(ctx, "alice", 7, model.NewReviewRequest{
			Title: "Doomed", Description: "d", Body: "x", TagList: []string{"drama"},
		})
		require.NoError(t, err)

		f.log = f.log[:0]
		require.NoError(t, f.svc.Delete(ctx, "alice", review.Slug))

		assert.Equal(t, []string{"tag-links", "comments", "review"}, f.log)
		_, err = f.svc.GetBySlug(ctx, nil, review.Slug)
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("only the author may delete", func(t *testing.T) {
		f := newFixture()
		review, err := f.svc.Create(ctx, "alice", 7, model.NewReviewRequest{Title: "Mine", Description: "d", Body: "x"})
		require.NoError(t, err)

		err = f.svc.Delete(ctx, "bob", review.Slug)
		assert.True(t, apperror.IsForbidden(err))

		_, err = f.svc.GetBySlug(ctx, nil, review.Slug)
		assert.NoError(t, err)
	})
}

func TestFavorite(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip moves the counter with the edge", func(t *testing.T) {
		f := newFixture()
		review, err := f.svc.Create(ctx, "alice", 7, model.NewReviewRequest{Title: "Liked", Description: "d", Body: "x"})
		require.NoError(t, err)

		favorited, err := f.svc.Favorite(ctx, "bob", review.Slug)
		require.NoError(t, err)
		assert.Equal(t, int64(1), favorited.FavoritesCount)
		require.NotNil(t, favorited.Favorited)
		assert.True(t, *favorited.Favorited)

		unfavorited, err := f.svc.Unfavorite(ctx, "bob", review.Slug)
		require.NoError(t, err)
		assert.Equal(t, int64(0), unfavorited.FavoritesCount)
		require.NotNil(t, unfavorited.Favorited)
		assert.False(t, *unfavorited.Favorited)
	})

	t.Run("repeated favorite does not inflate the counter", func(t *testing.T) {
		f := newFixture()
		review, err := f.svc.Create(ctx, "alice", 7, model.NewReviewRequest{Title: "Liked", Description: "d", Body: "x"})
		require.NoError(t, err)

		_, err = f.svc.Favorite(ctx, "bob", review.Slug)
		require.NoError(t, err)
		again, err := f.svc.Favorite(ctx, "bob", review.Slug)
		require.NoError(t, err)

		assert.Equal(t, int64(1), again.FavoritesCount)
	})

	t.Run("unfavorite without an edge is a no-op", func(t *testing.T) {
		f := newFixture()
		review, err := f.svc.Create(ctx, "alice", 7, model.NewReviewRequest{Title: "Liked", Description: "d", Body: "x"})
		require.NoError(t, err)

		result, err := f.svc.Unfavorite(ctx, "bob", review.Slug)
		require.NoError(t, err)
		assert.Equal(t, int64(0), result.FavoritesCount)
	})
}

func TestList(t *testing.T) {
	ctx := context.Background()

	t.Run("anonymous viewer gets no transient flags", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Create(ctx, "alice", 7, model.NewReviewRequest{Title: "One", Description: "d", Body: "x", TagList: []string{"drama"}})
		require.NoError(t, err)

		list, err := f.svc.List(ctx, nil, model.ListFilter{Limit: 20})
		require.NoError(t, err)

		require.Len(t, list.Articles, 1)
		assert.Equal(t, 1, list.ReviewsCount)
		assert.Nil(t, list.Articles[0].Favorited)
		assert.Nil(t, list.Articles[0].Author.Following)
		assert.Equal(t, []string{"drama"}, list.Articles[0].TagList)
	})

	t.Run("viewer gets favorited and following flags", func(t *testing.T) {
		f := newFixture()
		review, err := f.svc.Create(ctx, "alice", 7, model.NewReviewRequest{Title: "One", Description: "d", Body: "x"})
		require.NoError(t, err)
		_, err = f.svc.Favorite(ctx, "bob", review.Slug)
		require.NoError(t, err)
		require.NoError(t, f.users.Follow(ctx, idFor("bob"), idFor("alice")))

		list, err := f.svc.List(ctx, strptr("bob"), model.ListFilter{Limit: 20})
		require.NoError(t, err)

		require.Len(t, list.Articles, 1)
		require.NotNil(t, list.Articles[0].Favorited)
		assert.True(t, *list.Articles[0].Favorited)
		require.NotNil(t, list.Articles[0].Author.Following)
		assert.True(t, *list.Articles[0].Author.Following)
	})

	t.Run("favorited filter resolves the username", func(t *testing.T) {
		f := newFixture()
		liked, err := f.svc.Create(ctx, "alice", 7, model.NewReviewRequest{Title: "Liked", Description: "d", Body: "x"})
		require.NoError(t, err)
		_, err = f.svc.Create(ctx, "alice", 7, model.NewReviewRequest{Title: "Ignored", Description: "d", Body: "x"})
		require.NoError(t, err)
		_, err = f.svc.Favorite(ctx, "bob", liked.Slug)
		require.NoError(t, err)

		list, err := f.svc.List(ctx, nil, model.ListFilter{FavoritedBy: strptr("bob"), Limit: 20})
		require.NoError(t, err)

		require.Len(t, list.Articles, 1)
		assert.Equal(t, "Liked", list.Articles[0].Title)
	})

	t.Run("empty result is an empty slice, not null", func(t *testing.T) {
		f := newFixture()

		list, err := f.svc.List(ctx, nil, model.ListFilter{Limit: 20})
		require.NoError(t, err)
		assert.NotNil(t, list.Articles)
		assert.Len(t, list.Articles, 0)
		assert.Equal(t, 0, list.ReviewsCount)
	})
}
