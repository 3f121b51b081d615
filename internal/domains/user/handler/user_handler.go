package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"moviehub-backend/internal/domains/user/model"
	"moviehub-backend/internal/domains/user/service"
	"moviehub-backend/internal/shared/middleware"
	"moviehub-backend/internal/shared/response"
)

type UserHandler struct {
	userService service.ServiceInterface
}

func NewUserHandler(userService service.ServiceInterface) *UserHandler {
	return &UserHandler{userService: userService}
}

// Register creates an account.
// POST /api/users
func (h *UserHandler) Register(c *gin.Context) {
	var envelope struct {
		User model.RegisterRequest `json:"user"`
	}
	if err := c.ShouldBindJSON(&envelope); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.userService.Register(c.Request.Context(), envelope.User)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Envelope(c, http.StatusCreated, "user", user)
}

// Login verifies credentials and returns a token.
// POST /api/users/login
func (h *UserHandler) Login(c *gin.Context) {
	var envelope struct {
		User model.LoginRequest `json:"user"`
	}
	if err := c.ShouldBindJSON(&envelope); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.userService.Login(c.Request.Context(), envelope.User)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Envelope(c, http.StatusOK, "user", user)
}

// Current returns the authenticated account.
// GET /api/users/current
func (h *UserHandler) Current(c *gin.Context) {
	user, err := h.userService.GetCurrent(c.Request.Context(), c.GetString(middleware.ContextUsername))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Envelope(c, http.StatusOK, "user", user)
}

// Update applies partial changes to the authenticated account.
// PUT /api/users
func (h *UserHandler) Update(c *gin.Context) {
	var envelope struct {
		User model.UpdateUserRequest `json:"user"`
	}
	if err := c.ShouldBindJSON(&envelope); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.userService.Update(c.Request.Context(), c.GetString(middleware.ContextUsername), envelope.User)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Envelope(c, http.StatusOK, "user", user)
}

// GetProfile returns a public profile.
// GET /api/profiles/:username
func (h *UserHandler) GetProfile(c *gin.Context) {
	profile, err := h.userService.GetProfile(c.Request.Context(), middleware.Viewer(c), c.Param("username"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Envelope(c, http.StatusOK, "profile", profile)
}

// Follow adds a follow edge from the principal to :username.
// POST /api/profiles/:username/follow
func (h *UserHandler) Follow(c *gin.Context) {
	profile, err := h.userService.Follow(c.Request.Context(), c.GetString(middleware.ContextUsername), c.Param("username"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Envelope(c, http.StatusOK, "profile", profile)
}

// Unfollow removes the follow edge from the principal to :username.
// DELETE /api/profiles/:username/follow
func (h *UserHandler) Unfollow(c *gin.Context) {
	profile, err := h.userService.Unfollow(c.Request.Context(), c.GetString(middleware.ContextUsername), c.Param("username"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Envelope(c, http.StatusOK, "profile", profile)
}
