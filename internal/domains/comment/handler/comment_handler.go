package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"moviehub-backend/internal/domains/comment/model"
	"moviehub-backend/internal/domains/comment/service"
	"moviehub-backend/internal/shared/middleware"
	"moviehub-backend/internal/shared/response"
)

type CommentHandler struct {
	commentService service.ServiceInterface
}

func NewCommentHandler(commentService service.ServiceInterface) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// Create adds a comment to an article.
// POST /api/articles/:slug/comments
func (h *CommentHandler) Create(c *gin.Context) {
	var envelope struct {
		Comment model.NewCommentRequest `json:"comment"`
	}
	if err := c.ShouldBindJSON(&envelope); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	comment, err := h.commentService.Create(
		c.Request.Context(),
		c.GetString(middleware.ContextUsername),
		c.Param("slug"),
		envelope.Comment,
	)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Envelope(c, http.StatusCreated, "comment", comment)
}

// List returns an article's comments, oldest first.
// GET /api/articles/:slug/comments
func (h *CommentHandler) List(c *gin.Context) {
	comments, err := h.commentService.List(c.Request.Context(), middleware.Viewer(c), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// Delete removes a comment. The comment's author and the article's
// author are both allowed.
// DELETE /api/articles/:slug/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	commentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comment id"})
		return
	}

	err = h.commentService.Delete(
		c.Request.Context(),
		c.GetString(middleware.ContextUsername),
		c.Param("slug"),
		commentID,
	)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
