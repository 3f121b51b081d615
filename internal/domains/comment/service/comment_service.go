package service

import (
	"context"
	"fmt"

	"moviehub-backend/internal/domains/comment/model"
	"moviehub-backend/internal/domains/comment/repository"
	reviewRepo "moviehub-backend/internal/domains/review/repository"
	userRepo "moviehub-backend/internal/domains/user/repository"
	"moviehub-backend/internal/shared/apperror"
)

type commentService struct {
	commentRepo repository.CommentRepository
	reviewRepo  reviewRepo.ReviewRepository
	userRepo    userRepo.UserRepository
}

func NewCommentService(
	comments repository.CommentRepository,
	reviews reviewRepo.ReviewRepository,
	users userRepo.UserRepository,
) ServiceInterface {
	return &commentService{
		commentRepo: comments,
		reviewRepo:  reviews,
		userRepo:    users,
	}
}

func (s *commentService) Create(ctx context.Context, username, slug string, req model.NewCommentRequest) (*model.Comment, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation(err)
	}

	authorID, err := s.userRepo.FindIDByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	reviewID, err := s.reviewRepo.FindIDBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	id, err := s.commentRepo.Save(ctx, authorID, reviewID, req.Body)
	if err != nil {
		return nil, err
	}

	comment, err := s.commentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.enrich(ctx, []*model.Comment{comment}, &username); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *commentService) List(ctx context.Context, viewer *string, slug string) ([]*model.Comment, error) {
	if _, err := s.reviewRepo.FindIDBySlug(ctx, slug); err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.FindByReviewSlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []*model.Comment{}
	}

	if err := s.enrich(ctx, comments, viewer); err != nil {
		return nil, err
	}
	return comments, nil
}

// Delete is guarded by a disjunctive rule: the comment's author may
// remove their own comment, and the article's author may moderate any
// comment under their article. Everyone else gets Forbidden.
func (s *commentService) Delete(ctx context.Context, username, slug string, commentID int64) error {
	review, err := s.reviewRepo.FindBySlug(ctx, slug)
	if err != nil {
		return err
	}

	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.ReviewID != review.ID {
		return apperror.NotFound(fmt.Sprint(commentID), "comment [%d] not found on article [%s]", commentID, slug)
	}

	if username != comment.Author.Username && username != review.Author.Username {
		return apperror.Forbidden(fmt.Sprint(commentID),
			"user [%s] is not allowed to delete comment [%d]", username, commentID)
	}

	return s.commentRepo.Delete(ctx, commentID)
}

// enrich fills the viewer-dependent following flag on comment authors
// with a single batched lookup. Anonymous viewers leave the flags nil.
func (s *commentService) enrich(ctx context.Context, comments []*model.Comment, viewer *string) error {
	if viewer == nil || len(comments) == 0 {
		return nil
	}

	authorSet := make(map[string]struct{}, len(comments))
	authors := make([]string, 0, len(comments))
	for _, c := range comments {
		if _, ok := authorSet[c.Author.Username]; !ok {
			authorSet[c.Author.Username] = struct{}{}
			authors = append(authors, c.Author.Username)
		}
	}

	followed, err := s.userRepo.FindFollowedAuthors(ctx, *viewer, authors)
	if err != nil {
		return err
	}
	following := make(map[string]bool, len(followed))
	for _, name := range followed {
		following[name] = true
	}
	for _, c := range comments {
		flag := following[c.Author.Username]
		c.Author.Following = &flag
	}
	return nil
}
