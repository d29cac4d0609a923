package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"sweetshop/internal/directory"
	"sweetshop/internal/middleware"
	"sweetshop/internal/models"
	"sweetshop/internal/service"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type authResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
	User      accountResponse `json:"user"`
}

type accountResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func toAccountResponse(a models.Account) accountResponse {
	return accountResponse{
		ID:        a.ID,
		Name:      a.DisplayName,
		Email:     a.Email,
		Role:      string(a.Role),
		CreatedAt: a.CreatedAt,
	}
}

// RegisterAccount leaves field checks to the directory so every rule reports the
// same validation envelope.
func (h HandlerSet) RegisterAccount(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	result, err := h.shop.Register(c.Request.Context(), directory.RegisterInput{
		DisplayName: req.Name,
		Email:       req.Email,
		Password:    req.Password,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	sendAuthResponse(c, http.StatusCreated, result)
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email and password are required")
		return
	}

	result, err := h.shop.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	sendAuthResponse(c, http.StatusOK, result)
}

func sendAuthResponse(c *gin.Context, status int, result service.AuthResult) {
	respond(c, status, authResponse{
		Token:     result.Session.Token,
		ExpiresAt: result.Session.ExpiresAt,
		User:      toAccountResponse(result.Account),
	})
}

func (h HandlerSet) Logout(c *gin.Context) {
	h.shop.Logout(c.Request.Context(), middleware.AccessToken(c))
	respond(c, http.StatusOK, gin.H{"message": "Logged out"})
}

func (h HandlerSet) Me(c *gin.Context) {
	account, err := h.shop.CurrentAccount(c.Request.Context(), middleware.AccessToken(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, toAccountResponse(account))
}
