package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"portfoliobuilder/internal/model"
	"portfoliobuilder/internal/wizard"
)

// ProjectSaver 向导最后一步用它创建作品集
type ProjectSaver interface {
	SaveProject(ctx context.Context, userID int, draft model.ProjectDraft) (*model.Project, error)
}

type WizardHandler struct {
	store    wizard.Store
	projects ProjectSaver
	logger   *zap.Logger
}

func NewWizardHandler(store wizard.Store, projects ProjectSaver, logger *zap.Logger) *WizardHandler {
	return &WizardHandler{store: store, projects: projects, logger: logger}
}

type wizardResponse struct {
	Step      wizard.Step         `json:"step"`
	StepName  string              `json:"step_name"`
	Name      string              `json:"name"`
	Config    model.ProjectConfig `json:"config"`
	Cancelled bool                `json:"cancelled,omitempty"`
}

func toWizardResponse(w *wizard.Wizard) wizardResponse {
	return wizardResponse{Step: w.Step, StepName: w.Step.String(), Name: w.Name, Config: w.Config}
}

// edit 加载当前用户的向导，执行 fn，成功后保存
func (h *WizardHandler) edit(c *gin.Context, fn func(w *wizard.Wizard) error) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	w, err := h.store.Load(ctx, userID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if err := fn(w); err != nil {
		writeError(c, h.logger, err)
		return
	}
	if err := h.store.Save(ctx, userID, w); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toWizardResponse(w))
}

// Get handles GET /wizard
func (h *WizardHandler) Get(c *gin.Context) {
	h.edit(c, func(*wizard.Wizard) error { return nil })
}

// Next handles POST /wizard/next
func (h *WizardHandler) Next(c *gin.Context) {
	h.edit(c, func(w *wizard.Wizard) error {
		w.Next()
		return nil
	})
}

// Back handles POST /wizard/back；在第一步时关闭向导
func (h *WizardHandler) Back(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	w, err := h.store.Load(ctx, userID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	if w.Back() == wizard.BackCancel {
		h.cancel(c, userID)
		return
	}
	if err := h.store.Save(ctx, userID, w); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toWizardResponse(w))
}

// Cancel handles POST /wizard/cancel
func (h *WizardHandler) Cancel(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	h.cancel(c, userID)
}

func (h *WizardHandler) cancel(c *gin.Context, userID int) {
	if err := h.store.Delete(c.Request.Context(), userID); err != nil {
		writeError(c, h.logger, err)
		return
	}
	res := toWizardResponse(wizard.New())
	res.Cancelled = true
	c.JSON(http.StatusOK, res)
}

// SetName handles POST /wizard/name
func (h *WizardHandler) SetName(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	h.edit(c, func(w *wizard.Wizard) error {
		w.SetName(req.Name)
		return nil
	})
}

// ToggleSection handles POST /wizard/sections/:index/toggle
func (h *WizardHandler) ToggleSection(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, "invalid section index")
		return
	}
	h.edit(c, func(w *wizard.Wizard) error {
		w.ToggleSection(index)
		return nil
	})
}

// MoveSection handles POST /wizard/sections/move
func (h *WizardHandler) MoveSection(c *gin.Context) {
	from, to, ok := bindMove(c)
	if !ok {
		return
	}
	h.edit(c, func(w *wizard.Wizard) error {
		w.MoveSection(from, to)
		return nil
	})
}

// UpdateConfig handles PUT /wizard/config/:field
func (h *WizardHandler) UpdateConfig(c *gin.Context) {
	update, ok := bindConfigUpdate(c, h.logger)
	if !ok {
		return
	}
	h.edit(c, func(w *wizard.Wizard) error {
		return w.UpdateConfig(update)
	})
}

// Create handles POST /wizard/create；成功后删除会话
func (h *WizardHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	w, err := h.store.Load(ctx, userID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	creator := wizard.CreatorFunc(func(ctx context.Context, draft model.ProjectDraft) (*model.Project, error) {
		return h.projects.SaveProject(ctx, userID, draft)
	})
	p, err := w.Create(ctx, creator)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	if err := h.store.Delete(ctx, userID); err != nil {
		h.logger.Warn("Failed to clear wizard session", zap.Int("user_id", userID), zap.Error(err))
	}
	c.JSON(http.StatusCreated, p)
}
