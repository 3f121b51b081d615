package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"moviehub-backend/internal/domains/movie/model"
	"moviehub-backend/internal/domains/movie/service"
	"moviehub-backend/internal/shared/middleware"
	"moviehub-backend/internal/shared/response"
	"moviehub-backend/internal/shared/utils"
)

type MovieHandler struct {
	movieService service.ServiceInterface
}

func NewMovieHandler(movieService service.ServiceInterface) *MovieHandler {
	return &MovieHandler{movieService: movieService}
}

// Create inserts a new movie.
// POST /api/movies
func (h *MovieHandler) Create(c *gin.Context) {
	var envelope struct {
		Movie model.NewMovieRequest `json:"movie"`
	}
	if err := c.ShouldBindJSON(&envelope); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	movie, err := h.movieService.Create(c.Request.Context(), c.GetString(middleware.ContextUsername), envelope.Movie)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Envelope(c, http.StatusCreated, "movie", movie)
}

// List returns movies matching the optional filters.
// GET /api/movies?actor=&yearReleased=&favorited=&offset=&limit=
func (h *MovieHandler) List(c *gin.Context) {
	offset, limit := utils.ParsePagination(c)
	filter := model.ListFilter{
		Actor:        utils.OptionalQuery(c, "actor"),
		YearReleased: utils.OptionalQuery(c, "yearReleased"),
		FavoritedBy:  utils.OptionalQuery(c, "favorited"),
		Offset:       offset,
		Limit:        limit,
	}

	movies, err := h.movieService.List(c.Request.Context(), middleware.Viewer(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, movies)
}

// Get returns one movie view.
// GET /api/movies/:id
func (h *MovieHandler) Get(c *gin.Context) {
	id, ok := movieID(c)
	if !ok {
		return
	}

	movie, err := h.movieService.GetByID(c.Request.Context(), middleware.Viewer(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Envelope(c, http.StatusOK, "movie", movie)
}

// Like adds the principal's like.
// POST /api/movies/:id/like
func (h *MovieHandler) Like(c *gin.Context) {
	id, ok := movieID(c)
	if !ok {
		return
	}

	movie, err := h.movieService.Like(c.Request.Context(), c.GetString(middleware.ContextUsername), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Envelope(c, http.StatusOK, "movie", movie)
}

// Unlike removes the principal's like.
// DELETE /api/movies/:id/like
func (h *MovieHandler) Unlike(c *gin.Context) {
	id, ok := movieID(c)
	if !ok {
		return
	}

	movie, err := h.movieService.Unlike(c.Request.Context(), c.GetString(middleware.ContextUsername), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Envelope(c, http.StatusOK, "movie", movie)
}

func movieID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid movie id"})
		return 0, false
	}
	return id, true
}
