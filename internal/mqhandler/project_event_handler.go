package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	mqcontracts "portfoliobuilder/contracts/mq"
	"portfoliobuilder/pkg/logger"
)

// CacheInvalidator 由 directory.Service 实现
type CacheInvalidator interface {
	Invalidate(ctx context.Context, slug string) error
}

// ProjectEventHandler 消费 project.* 事件，刷新公共目录缓存
type ProjectEventHandler struct {
	directory CacheInvalidator
	logger    *zap.Logger
}

func NewProjectEventHandler(directory CacheInvalidator, logger *zap.Logger) *ProjectEventHandler {
	return &ProjectEventHandler{
		directory: directory,
		logger:    logger,
	}
}

// Handler 返回绑定到 routingKey 的消费函数
func (h *ProjectEventHandler) Handler(routingKey string) func(ctx context.Context, raw json.RawMessage) error {
	return func(ctx context.Context, raw json.RawMessage) error {
		return h.HandleProjectEvent(ctx, routingKey, raw)
	}
}

// HandleProjectEvent 清掉当前 slug 和改名前 slug 的名片缓存，并刷新列表版本
func (h *ProjectEventHandler) HandleProjectEvent(ctx context.Context, routingKey string, raw json.RawMessage) error {
	log := logger.WithTrace(ctx, h.logger)

	var p mqcontracts.ProjectEventPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		log.Error("Failed to unmarshal project event payload",
			zap.String("routing_key", routingKey),
			zap.Error(err),
		)
		return fmt.Errorf("unmarshal project event: %w", err)
	}

	log.Info("Invalidating directory cache",
		zap.String("routing_key", routingKey),
		zap.String("project_id", p.ProjectID),
		zap.String("slug", p.Slug),
		zap.String("previous_slug", p.PreviousSlug),
		zap.Bool("is_public", p.IsPublic),
	)

	if p.PreviousSlug != "" && p.PreviousSlug != p.Slug {
		if err := h.directory.Invalidate(ctx, p.PreviousSlug); err != nil {
			log.Error("Failed to invalidate previous slug",
				zap.String("project_id", p.ProjectID),
				zap.String("previous_slug", p.PreviousSlug),
				zap.Error(err),
			)
			return err
		}
	}
	if err := h.directory.Invalidate(ctx, p.Slug); err != nil {
		log.Error("Failed to invalidate directory cache",
			zap.String("project_id", p.ProjectID),
			zap.Error(err),
		)
		return err
	}
	return nil
}
