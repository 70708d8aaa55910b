package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"portfoliobuilder/internal/model"
)

// DirectoryService 由 directory.Service 实现
type DirectoryService interface {
	List(ctx context.Context, limit, offset int) ([]model.Profile, error)
	Get(ctx context.Context, slug string) (*model.Profile, error)
}

type DirectoryHandler struct {
	directory DirectoryService
	logger    *zap.Logger
}

func NewDirectoryHandler(directory DirectoryService, logger *zap.Logger) *DirectoryHandler {
	return &DirectoryHandler{directory: directory, logger: logger}
}

// List handles GET /directory?limit=20&offset=0
func (h *DirectoryHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	profiles, err := h.directory.List(c.Request.Context(), limit, offset)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profiles": profiles})
}

// Get handles GET /directory/:slug
func (h *DirectoryHandler) Get(c *gin.Context) {
	profile, err := h.directory.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
