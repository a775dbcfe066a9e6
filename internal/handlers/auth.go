package handlers

import (
	"net/http"
	"time"

	"dating-match-server/internal/auth"
	"dating-match-server/internal/models"
	"dating-match-server/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	users  *repository.UserRepository
	tokens *auth.TokenManager
	log    *logrus.Entry
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type AuthResponse struct {
	User   *models.User    `json:"user"`
	Tokens *auth.TokenPair `json:"tokens"`
}

func NewAuthHandler(users *repository.UserRepository, tokens *auth.TokenManager, log *logrus.Entry) *AuthHandler {
	return &AuthHandler{
		users:  users,
		tokens: tokens,
		log:    log,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	now := time.Now()
	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		IsActive:     true,
		LastActive:   &now,
	}
	if err := h.users.Create(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}

	tokens, err := h.tokens.Issue(user)
	if err != nil {
		respondError(c, err)
		return
	}

	h.log.WithField("user_id", user.ID).Info("User registered")
	c.JSON(http.StatusCreated, AuthResponse{User: user, Tokens: tokens})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx := c.Request.Context()
	user, err := h.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			err = models.NewUnauthorizedError("Invalid credentials")
		}
		respondError(c, err)
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		respondError(c, models.NewUnauthorizedError("Invalid credentials"))
		return
	}
	if !user.IsActive {
		respondError(c, models.NewUnauthorizedError("Account is deactivated"))
		return
	}

	now := time.Now()
	if err := h.users.UpdateColumns(ctx, user.ID, map[string]interface{}{"last_active": now}); err != nil {
		respondError(c, err)
		return
	}
	user.LastActive = &now

	tokens, err := h.tokens.Issue(user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{User: user, Tokens: tokens})
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	claims, err := h.tokens.ParseRefresh(req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	user, err := h.users.FindByID(c.Request.Context(), claims.UserID)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			err = models.NewUnauthorizedError("Invalid token")
		}
		respondError(c, err)
		return
	}
	if !user.IsActive {
		respondError(c, models.NewUnauthorizedError("Account is deactivated"))
		return
	}

	tokens, err := h.tokens.Issue(user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tokens": tokens})
}
