package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moviehub-backend/internal/domains/comment/model"
	"moviehub-backend/internal/domains/comment/repository"
	reviewmodel "moviehub-backend/internal/domains/review/model"
	reviewRepo "moviehub-backend/internal/domains/review/repository"
	usermodel "moviehub-backend/internal/domains/user/model"
	"moviehub-backend/internal/shared/apperror"
)

var userIDs = map[string]int64{"alice": 1, "bob": 2, "carol": 3}

type stubUserRepo struct {
	follows map[string][]string
}

func (r *stubUserRepo) Save(ctx context.Context, user *usermodel.User) (int64, error) {
	return 0, nil
}

func (r *stubUserRepo) FindByUsername(ctx context.Context, username string) (*usermodel.User, error) {
	return nil, apperror.NotFound(username, "user [%s] not found", username)
}

func (r *stubUserRepo) FindByEmail(ctx context.Context, email string) (*usermodel.User, error) {
	return nil, apperror.NotFound(email, "user not found")
}

func (r *stubUserRepo) FindIDByUsername(ctx context.Context, username string) (int64, error) {
	id, ok := userIDs[username]
	if !ok {
		return 0, apperror.NotFound(username, "user [%s] not found", username)
	}
	return id, nil
}

func (r *stubUserRepo) Update(ctx context.Context, user *usermodel.User) error { return nil }

func (r *stubUserRepo) FindFollowedAuthors(ctx context.Context, follower string, authors []string) ([]string, error) {
	var out []string
	for _, author := range authors {
		for _, followed := range r.follows[follower] {
			if followed == author {
				out = append(out, author)
			}
		}
	}
	return out, nil
}

func (r *stubUserRepo) Follow(ctx context.Context, followerID, followedID int64) error   { return nil }
func (r *stubUserRepo) Unfollow(ctx context.Context, followerID, followedID int64) error { return nil }
func (r *stubUserRepo) IsFollowing(ctx context.Context, followerID, followedID int64) (bool, error) {
	return false, nil
}

// stubReviewRepo serves a single fixed review; only the lookup methods
// the comment service uses are live.
type stubReviewRepo struct {
	reviewRepo.ReviewRepository

	review *reviewmodel.Review
}

func (r *stubReviewRepo) FindBySlug(ctx context.Context, slug string) (*reviewmodel.Review, error) {
	if r.review == nil || r.review.Slug != slug {
		return nil, apperror.NotFound(slug, "article [%s] not found", slug)
	}
	copied := *r.review
	return &copied, nil
}

func (r *stubReviewRepo) FindIDBySlug(ctx context.Context, slug string) (int64, error) {
	review, err := r.FindBySlug(ctx, slug)
	if err != nil {
		return 0, err
	}
	return review.ID, nil
}

type memCommentRepo struct {
	nextID   int64
	comments map[int64]*model.Comment
}

func newMemCommentRepo() *memCommentRepo {
	return &memCommentRepo{nextID: 1, comments: make(map[int64]*model.Comment)}
}

func (r *memCommentRepo) WithTx(tx pgx.Tx) repository.CommentRepository { return r }

func (r *memCommentRepo) Save(ctx context.Context, authorID, reviewID int64, body string) (int64, error) {
	id := r.nextID
	r.nextID++
	var author string
	for name, uid := range userIDs {
		if uid == authorID {
			author = name
		}
	}
	r.comments[id] = &model.Comment{
		ID:        id,
		Body:      body,
		ReviewID:  reviewID,
		Author:    usermodel.Profile{Username: author},
		CreatedAt: time.Now(),
	}
	return id, nil
}

func (r *memCommentRepo) FindByID(ctx context.Context, id int64) (*model.Comment, error) {
	comment, ok := r.comments[id]
	if !ok {
		return nil, apperror.NotFound("", "comment not found")
	}
	copied := *comment
	return &copied, nil
}

func (r *memCommentRepo) FindByReviewSlug(ctx context.Context, slug string) ([]*model.Comment, error) {
	var out []*model.Comment
	for _, comment := range r.comments {
		copied := *comment
		out = append(out, &copied)
	}
	return out, nil
}

func (r *memCommentRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.comments[id]; !ok {
		return apperror.NotFound("", "comment not found")
	}
	delete(r.comments, id)
	return nil
}

func (r *memCommentRepo) DeleteByReviewID(ctx context.Context, reviewID int64) error { return nil }

func newTestService(follows map[string][]string) (ServiceInterface, *memCommentRepo) {
	comments := newMemCommentRepo()
	reviews := &stubReviewRepo{review: &reviewmodel.Review{
		ID:     10,
		Slug:   "some-article",
		Author: usermodel.Profile{Username: "alice"},
	}}
	svc := NewCommentService(comments, reviews, &stubUserRepo{follows: follows})
	return svc, comments
}

func TestCreateComment(t *testing.T) {
	ctx := context.Background()

	t.Run("attaches the comment to the article", func(t *testing.T) {
		svc, _ := newTestService(nil)

		comment, err := svc.Create(ctx, "bob", "some-article", model.NewCommentRequest{Body: "loved it"})
		require.NoError(t, err)

		assert.Equal(t, "loved it", comment.Body)
		assert.Equal(t, "bob", comment.Author.Username)
	})

	t.Run("empty body is a validation error", func(t *testing.T) {
		svc, _ := newTestService(nil)

		_, err := svc.Create(ctx, "bob", "some-article", model.NewCommentRequest{})
		assert.True(t, apperror.IsValidation(err))
	})

	t.Run("unknown article is not found", func(t *testing.T) {
		svc, _ := newTestService(nil)

		_, err := svc.Create(ctx, "bob", "no-such-article", model.NewCommentRequest{Body: "x"})
		assert.True(t, apperror.IsNotFound(err))
	})
}

func TestDeleteComment(t *testing.T) {
	ctx := context.Background()

	// The article is authored by alice; the comment by bob.
	seed := func(t *testing.T) (ServiceInterface, *memCommentRepo, int64) {
		t.Helper()
		svc, comments := newTestService(nil)
		comment, err := svc.Create(ctx, "bob", "some-article", model.NewCommentRequest{Body: "x"})
		require.NoError(t, err)
		return svc, comments, comment.ID
	}

	t.Run("comment author may delete", func(t *testing.T) {
		svc, comments, id := seed(t)

		require.NoError(t, svc.Delete(ctx, "bob", "some-article", id))
		_, err := comments.FindByID(ctx, id)
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("article author may delete", func(t *testing.T) {
		svc, comments, id := seed(t)

		require.NoError(t, svc.Delete(ctx, "alice", "some-article", id))
		_, err := comments.FindByID(ctx, id)
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("anyone else is forbidden", func(t *testing.T) {
		svc, comments, id := seed(t)

		err := svc.Delete(ctx, "carol", "some-article", id)
		assert.True(t, apperror.IsForbidden(err))
		_, err = comments.FindByID(ctx, id)
		assert.NoError(t, err)
	})

	t.Run("comment under a different article is not found", func(t *testing.T) {
		svc, comments, _ := seed(t)

		// Simulate a comment that belongs to another review.
		stray, err := comments.Save(ctx, userIDs["bob"], 99, "stray")
		require.NoError(t, err)

		err = svc.Delete(ctx, "bob", "some-article", stray)
		assert.True(t, apperror.IsNotFound(err))
	})
}

func TestListComments(t *testing.T) {
	ctx := context.Background()

	t.Run("fills following flags for an authenticated viewer", func(t *testing.T) {
		svc, _ := newTestService(map[string][]string{"carol": {"bob"}})
		_, err := svc.Create(ctx, "bob", "some-article", model.NewCommentRequest{Body: "x"})
		require.NoError(t, err)

		viewer := "carol"
		comments, err := svc.List(ctx, &viewer, "some-article")
		require.NoError(t, err)

		require.Len(t, comments, 1)
		require.NotNil(t, comments[0].Author.Following)
		assert.True(t, *comments[0].Author.Following)
	})

	t.Run("anonymous viewer gets nil flags", func(t *testing.T) {
		svc, _ := newTestService(nil)
		_, err := svc.Create(ctx, "bob", "some-article", model.NewCommentRequest{Body: "x"})
		require.NoError(t, err)

		comments, err := svc.List(ctx, nil, "some-article")
		require.NoError(t, err)

		require.Len(t, comments, 1)
		assert.Nil(t, comments[0].Author.Following)
	})

	t.Run("no comments is an empty slice", func(t *testing.T) {
		svc, _ := newTestService(nil)

		comments, err := svc.List(ctx, nil, "some-article")
		require.NoError(t, err)
		assert.NotNil(t, comments)
		assert.Empty(t, comments)
	})
}
