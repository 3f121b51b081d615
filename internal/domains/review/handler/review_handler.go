package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"moviehub-backend/internal/domains/review/model"
	"moviehub-backend/internal/domains/review/service"
	"moviehub-backend/internal/shared/apperror"
	"moviehub-backend/internal/shared/middleware"
	"moviehub-backend/internal/shared/precondition"
	"moviehub-backend/internal/shared/response"
	"moviehub-backend/internal/shared/utils"
)

type ReviewHandler struct {
	reviewService service.ServiceInterface
}

func NewReviewHandler(reviewService service.ServiceInterface) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// List returns articles matching the optional filters, newest first.
// GET /api/articles?movieId=&author=&tag=&favorited=&offset=&limit=
func (h *ReviewHandler) List(c *gin.Context) {
	offset, limit := utils.ParsePagination(c)
	filter := model.ListFilter{
		Author:      utils.OptionalQuery(c, "author"),
		Tag:         utils.OptionalQuery(c, "tag"),
		FavoritedBy: utils.OptionalQuery(c, "favorited"),
		Offset:      offset,
		Limit:       limit,
	}
	if raw := utils.OptionalQuery(c, "movieId"); raw != nil {
		movieID, err := strconv.ParseInt(*raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid movieId"})
			return
		}
		filter.MovieID = &movieID
	}

	reviews, err := h.reviewService.List(c.Request.Context(), middleware.Viewer(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, reviews)
}

// Feed returns articles by authors the principal follows.
// GET /api/articles/feed?offset=&limit=
func (h *ReviewHandler) Feed(c *gin.Context) {
	offset, limit := utils.ParsePagination(c)

	reviews, err := h.reviewService.Feed(c.Request.Context(), c.GetString(middleware.ContextUsername), offset, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, reviews)
}

// Get returns one article. The response carries an ETag derived from the
// article's last modification; a matching If-None-Match short-circuits
// to 304 with no body.
// GET /api/articles/:slug
func (h *ReviewHandler) Get(c *gin.Context) {
	review, err := h.reviewService.GetBySlug(c.Request.Context(), middleware.Viewer(c), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}

	fingerprint := precondition.Fingerprint(review.UpdatedAt)
	c.Header("ETag", precondition.ETag(fingerprint))

	supplied := precondition.FromETag(c.GetHeader("If-None-Match"))
	if precondition.EvaluateRead(fingerprint, supplied) == precondition.NotModified {
		c.Status(http.StatusNotModified)
		return
	}

	response.Envelope(c, http.StatusOK, "article", review)
}

// Create publishes a new article about a movie.
// POST /api/movies/:id/articles
func (h *ReviewHandler) Create(c *gin.Context) {
	movieID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid movie id"})
		return
	}

	var envelope struct {
		Article model.NewReviewRequest `json:"article"`
	}
	if err := c.ShouldBindJSON(&envelope); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	review, err := h.reviewService.Create(c.Request.Context(), c.GetString(middleware.ContextUsername), movieID, envelope.Article)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("ETag", precondition.ETag(precondition.Fingerprint(review.UpdatedAt)))
	response.Envelope(c, http.StatusCreated, "article", review)
}

// Update applies a conditional update. The If-Match header is mandatory;
// a stale one yields 412 carrying the current article so the caller can
// rebase.
// PUT /api/articles/:slug
func (h *ReviewHandler) Update(c *gin.Context) {
	ifMatch := c.GetHeader("If-Match")
	if ifMatch == "" {
		c.JSON(http.StatusPreconditionRequired, gin.H{"error": "If-Match header is required"})
		return
	}

	var envelope struct {
		Article model.UpdateReviewRequest `json:"article"`
	}
	if err := c.ShouldBindJSON(&envelope); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	slug := c.Param("slug")
	review, err := h.reviewService.Update(
		c.Request.Context(),
		c.GetString(middleware.ContextUsername),
		slug,
		precondition.FromETag(ifMatch),
		envelope.Article,
	)
	if err != nil {
		// A stale precondition surfaces as Conflict carrying the current
		// article; render it as 412 with a fresh ETag so the caller can
		// rebase. Other conflicts (slug races) fall through to 409.
		var appErr *apperror.Error
		if errors.As(err, &appErr) && appErr.Kind == apperror.KindConflict {
			if current, ok := appErr.Current.(*model.Review); ok {
				etag := precondition.ETag(precondition.Fingerprint(current.UpdatedAt))
				response.PreconditionFailed(c, etag, appErr.Key, current)
				return
			}
		}
		response.Error(c, err)
		return
	}

	c.Header("ETag", precondition.ETag(precondition.Fingerprint(review.UpdatedAt)))
	response.Envelope(c, http.StatusOK, "article", review)
}

// Delete removes an article together with its tag links and comments.
// DELETE /api/articles/:slug
func (h *ReviewHandler) Delete(c *gin.Context) {
	err := h.reviewService.Delete(c.Request.Context(), c.GetString(middleware.ContextUsername), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Favorite marks the article as favorited by the principal.
// POST /api/articles/:slug/favorite
func (h *ReviewHandler) Favorite(c *gin.Context) {
	review, err := h.reviewService.Favorite(c.Request.Context(), c.GetString(middleware.ContextUsername), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Envelope(c, http.StatusOK, "article", review)
}

// Unfavorite removes the principal's favorite.
// DELETE /api/articles/:slug/favorite
func (h *ReviewHandler) Unfavorite(c *gin.Context) {
	review, err := h.reviewService.Unfavorite(c.Request.Context(), c.GetString(middleware.ContextUsername), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Envelope(c, http.StatusOK, "article", review)
}

// ListTags returns every tag in use, sorted by name.
// GET /api/tags
func (h *ReviewHandler) ListTags(c *gin.Context) {
	tags, err := h.reviewService.ListTags(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tags": tags})
}
