package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"portfoliobuilder/internal/auth"
	"portfoliobuilder/internal/directory"
	"portfoliobuilder/internal/portfolio"
	"portfoliobuilder/internal/repository"
	"portfoliobuilder/internal/wizard"
	"portfoliobuilder/pkg/logger"
	"portfoliobuilder/pkg/rbac"
)

const genericError = "could not complete action"

// writeError 把领域错误映射为 HTTP 状态码；未知错误只返回通用信息
func writeError(c *gin.Context, log *zap.Logger, err error) {
	var (
		vErr     *portfolio.ValidationError
		authVErr *auth.ValidationError
		denied   *rbac.PermissionDeniedError
	)

	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":    vErr.Error(),
			"field":    vErr.Field,
			"expected": vErr.Expected,
		})
	case errors.As(err, &authVErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": authVErr.Error()})
	case errors.Is(err, auth.ErrInvalidMode):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrProjectNotFound), errors.Is(err, directory.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrSlugTaken), errors.Is(err, auth.ErrEmailExists),
		errors.Is(err, wizard.ErrNotAtFinalStep):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.As(err, &denied):
		c.JSON(http.StatusForbidden, gin.H{"error": denied.Error()})
	default:
		logger.WithTrace(c.Request.Context(), log).Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": genericError})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// currentUserID 由 AuthMiddleware 写入
func currentUserID(c *gin.Context) (int, bool) {
	v, ok := c.Get("user_id")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return 0, false
	}
	id, ok := v.(int)
	if !ok || id <= 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user_id"})
		return 0, false
	}
	return id, true
}
