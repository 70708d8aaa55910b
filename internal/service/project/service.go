package project

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"portfoliobuilder/internal/model"
	"portfoliobuilder/internal/portfolio"
	"portfoliobuilder/internal/repository"
	"portfoliobuilder/pkg/logger"
	"portfoliobuilder/pkg/metrics"
)

var (
	ErrProjectNotFound = repository.ErrProjectNotFound
	ErrSlugTaken       = repository.ErrSlugTaken
)

// Store 作品集持久化，由 repository.ProjectRepository 实现
type Store interface {
	ListByUser(ctx context.Context, userID int) ([]*model.Project, error)
	FindByID(ctx context.Context, projectID string) (*model.Project, error)
	Insert(ctx context.Context, p *model.Project) error
	Update(ctx context.Context, p *model.Project) error
	Delete(ctx context.Context, userID int, projectID string) (bool, error)
}

type Service struct {
	store  Store
	logger *zap.Logger
}

func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// GetUserProjects 返回用户拥有的全部作品集
func (s *Service) GetUserProjects(ctx context.Context, userID int) ([]*model.Project, error) {
	projects, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		logger.WithTrace(ctx, s.logger).Error("Failed to list projects", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}
	return projects, nil
}

// GetProject 返回属于 userID 的作品集；别人的作品集同样返回 ErrProjectNotFound
func (s *Service) GetProject(ctx context.Context, userID int, projectID string) (*model.Project, error) {
	p, err := s.store.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, ErrProjectNotFound
	}
	return p, nil
}

// SaveProject 校验草稿、补齐默认值并持久化，返回带 id 和时间戳的作品集
func (s *Service) SaveProject(ctx context.Context, userID int, draft model.ProjectDraft) (*model.Project, error) {
	p := &model.Project{
		UserID:      userID,
		Name:        draft.Name,
		Description: draft.Description,
		Config:      draft.Config,
		Content:     draft.Content,
		Settings:    draft.Settings,
	}
	if err := normalizeProject(p); err != nil {
		return nil, s.rejected(ctx, "create", err)
	}

	if err := s.store.Insert(ctx, p); err != nil {
		return nil, s.failed(ctx, "create", err)
	}

	metrics.IncrementProjectOperation("create", "success")
	logger.WithTrace(ctx, s.logger).Info("Project created",
		zap.String("project_id", p.ID),
		zap.Int("user_id", userID),
	)
	return p, nil
}

// UpdateProject 应用部分更新；空补丁直接返回当前值
func (s *Service) UpdateProject(ctx context.Context, userID int, projectID string, patch model.ProjectPatch) (*model.Project, error) {
	current, err := s.GetProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return current, nil
	}

	updated := patch.Apply(*current)
	if err := normalizeProject(&updated); err != nil {
		return nil, s.rejected(ctx, "update", err)
	}
	return s.save(ctx, "update", &updated)
}

// DeleteProject 删除作品集；不存在或不属于该用户时也视为成功
func (s *Service) DeleteProject(ctx context.Context, userID int, projectID string) error {
	deleted, err := s.store.Delete(ctx, userID, projectID)
	if err != nil {
		return s.failed(ctx, "delete", err)
	}
	metrics.IncrementProjectOperation("delete", "success")
	logger.WithTrace(ctx, s.logger).Info("Project deleted",
		zap.String("project_id", projectID),
		zap.Int("user_id", userID),
		zap.Bool("existed", deleted),
	)
	return nil
}

// MoveSection 持久化一次 section 移动
func (s *Service) MoveSection(ctx context.Context, userID int, projectID string, from, to int) (*model.Project, error) {
	return s.mutate(ctx, "move", userID, projectID, func(cfg model.ProjectConfig) (model.ProjectConfig, error) {
		cfg.Sections = portfolio.MoveSection(cfg.Sections, from, to)
		return cfg, nil
	})
}

// ToggleSection 持久化一次 section 开关
func (s *Service) ToggleSection(ctx context.Context, userID int, projectID string, index int) (*model.Project, error) {
	return s.mutate(ctx, "toggle", userID, projectID, func(cfg model.ProjectConfig) (model.ProjectConfig, error) {
		cfg.Sections = portfolio.ToggleSection(cfg.Sections, index)
		return cfg, nil
	})
}

// UpdateConfig 持久化一次单字段配置修改
func (s *Service) UpdateConfig(ctx context.Context, userID int, projectID string, update portfolio.ConfigUpdate) (*model.Project, error) {
	return s.mutate(ctx, "config", userID, projectID, func(cfg model.ProjectConfig) (model.ProjectConfig, error) {
		return portfolio.UpdateConfig(cfg, update)
	})
}

func (s *Service) mutate(
	ctx context.Context,
	op string,
	userID int,
	projectID string,
	fn func(model.ProjectConfig) (model.ProjectConfig, error),
) (*model.Project, error) {
	p, err := s.GetProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	cfg, err := fn(p.Config.Clone())
	if err != nil {
		return nil, s.rejected(ctx, op, err)
	}
	if cfg.Equal(p.Config) {
		// 越界的 toggle/move 或重复设置同一个值：不写库也不发事件
		metrics.IncrementProjectOperation(op, "unchanged")
		logger.WithTrace(ctx, s.logger).Debug("Project config unchanged",
			zap.String("operation", op),
			zap.String("project_id", projectID),
		)
		return p, nil
	}
	p.Config = cfg
	return s.save(ctx, op, p)
}

func (s *Service) save(ctx context.Context, op string, p *model.Project) (*model.Project, error) {
	if err := s.store.Update(ctx, p); err != nil {
		return nil, s.failed(ctx, op, err)
	}
	metrics.IncrementProjectOperation(op, "success")
	return p, nil
}

func (s *Service) rejected(ctx context.Context, op string, err error) error {
	var vErr *portfolio.ValidationError
	if errors.As(err, &vErr) {
		metrics.IncrementValidationFailure(vErr.Field)
	}
	metrics.IncrementProjectOperation(op, "rejected")
	logger.WithTrace(ctx, s.logger).Debug("Project change rejected", zap.String("operation", op), zap.Error(err))
	return err
}

func (s *Service) failed(ctx context.Context, op string, err error) error {
	if errors.Is(err, ErrProjectNotFound) || errors.Is(err, ErrSlugTaken) {
		metrics.IncrementProjectOperation(op, "rejected")
		return err
	}
	metrics.IncrementProjectOperation(op, "error")
	logger.WithTrace(ctx, s.logger).Error("Project operation failed", zap.String("operation", op), zap.Error(err))
	return err
}
