package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"portfoliobuilder/internal/model"
	"portfoliobuilder/internal/portfolio"
)

// IdempotencyHeader 客户端可以用它防止重复创建
const IdempotencyHeader = "Idempotency-Key"

// ProjectService 由 project.Service 实现
type ProjectService interface {
	GetUserProjects(ctx context.Context, userID int) ([]*model.Project, error)
	GetProject(ctx context.Context, userID int, projectID string) (*model.Project, error)
	SaveProject(ctx context.Context, userID int, draft model.ProjectDraft) (*model.Project, error)
	UpdateProject(ctx context.Context, userID int, projectID string, patch model.ProjectPatch) (*model.Project, error)
	DeleteProject(ctx context.Context, userID int, projectID string) error
	MoveSection(ctx context.Context, userID int, projectID string, from, to int) (*model.Project, error)
	ToggleSection(ctx context.Context, userID int, projectID string, index int) (*model.Project, error)
	UpdateConfig(ctx context.Context, userID int, projectID string, update portfolio.ConfigUpdate) (*model.Project, error)
}

// Deduper 由 util.Deduper 实现
type Deduper interface {
	AcquireOnce(ctx context.Context, scope string, key string) bool
	Release(ctx context.Context, scope string, key string)
	Complete(ctx context.Context, scope string, key string, result string)
	Result(ctx context.Context, scope string, key string) (string, bool)
}

type ProjectHandler struct {
	projects ProjectService
	deduper  Deduper
	logger   *zap.Logger
}

func NewProjectHandler(projects ProjectService, deduper Deduper, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, deduper: deduper, logger: logger}
}

type moveRequest struct {
	From *int `json:"from"`
	To   *int `json:"to"`
}

type configValueRequest struct {
	Value json.RawMessage `json:"value"`
}

// ListProjects handles GET /projects
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projects, err := h.projects.GetUserProjects(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// GetProject handles GET /projects/:id
func (h *ProjectHandler) GetProject(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	p, err := h.projects.GetProject(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// CreateProject handles POST /projects
// 带 Idempotency-Key 的重复请求：首个请求仍在处理时返回 409，已成功时返回 200 和当时创建的作品集。
// 创建失败时释放 key 以便重试。
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var draft model.ProjectDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		badRequest(c, "invalid request")
		return
	}

	ctx := c.Request.Context()
	key := c.GetHeader(IdempotencyHeader)
	scope := "project.create:" + strconv.Itoa(userID)
	if key != "" && h.deduper != nil {
		if !h.deduper.AcquireOnce(ctx, scope, key) {
			h.replayCreate(c, userID, scope, key)
			return
		}
	}

	p, err := h.projects.SaveProject(ctx, userID, draft)
	if err != nil {
		if key != "" && h.deduper != nil {
			h.deduper.Release(ctx, scope, key)
		}
		writeError(c, h.logger, err)
		return
	}
	if key != "" && h.deduper != nil {
		h.deduper.Complete(ctx, scope, key, p.ID)
	}
	c.JSON(http.StatusCreated, p)
}

func (h *ProjectHandler) replayCreate(c *gin.Context, userID int, scope, key string) {
	ctx := c.Request.Context()
	projectID, ok := h.deduper.Result(ctx, scope, key)
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "duplicate request"})
		return
	}
	p, err := h.projects.GetProject(ctx, userID, projectID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// UpdateProject handles PATCH /projects/:id
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var patch model.ProjectPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "invalid request")
		return
	}
	p, err := h.projects.UpdateProject(c.Request.Context(), userID, c.Param("id"), patch)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// DeleteProject handles DELETE /projects/:id
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.projects.DeleteProject(c.Request.Context(), userID, c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleSection handles POST /projects/:id/sections/:index/toggle
func (h *ProjectHandler) ToggleSection(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, "invalid section index")
		return
	}
	p, err := h.projects.ToggleSection(c.Request.Context(), userID, c.Param("id"), index)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p.Config)
}

// MoveSection handles POST /projects/:id/sections/move
func (h *ProjectHandler) MoveSection(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	from, to, ok := bindMove(c)
	if !ok {
		return
	}
	p, err := h.projects.MoveSection(c.Request.Context(), userID, c.Param("id"), from, to)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p.Config)
}

// UpdateConfig handles PUT /projects/:id/config/:field
func (h *ProjectHandler) UpdateConfig(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	update, ok := bindConfigUpdate(c, h.logger)
	if !ok {
		return
	}
	p, err := h.projects.UpdateConfig(c.Request.Context(), userID, c.Param("id"), update)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p.Config)
}

func bindConfigUpdate(c *gin.Context, log *zap.Logger) (portfolio.ConfigUpdate, bool) {
	var req configValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return nil, false
	}
	update, err := portfolio.ParseConfigUpdate(c.Param("field"), req.Value)
	if err != nil {
		writeError(c, log, err)
		return nil, false
	}
	return update, true
}

func bindMove(c *gin.Context) (int, int, bool) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.From == nil || req.To == nil {
		badRequest(c, "from and to are required")
		return 0, 0, false
	}
	return *req.From, *req.To, true
}
