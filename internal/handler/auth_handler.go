package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"portfoliobuilder/internal/auth"
)

type AuthHandler struct {
	authService *auth.Service
	logger      *zap.Logger
}

func NewAuthHandler(authService *auth.Service, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	h.authenticate(c, auth.ModeLogin, http.StatusOK)
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	h.authenticate(c, auth.ModeRegister, http.StatusCreated)
}

func (h *AuthHandler) authenticate(c *gin.Context, mode auth.Mode, okStatus int) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}

	res := h.authService.Authenticate(c.Request.Context(), req.Email, req.Password, mode)
	if !res.Success {
		writeError(c, h.logger, res.Err)
		return
	}
	c.JSON(okStatus, res)
}
