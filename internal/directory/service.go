package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"portfoliobuilder/internal/model"
	"portfoliobuilder/internal/repository"
	"portfoliobuilder/pkg/logger"
	"portfoliobuilder/pkg/metrics"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	DefaultCacheTTL = 5 * time.Minute

	listVersionKey = "directory:list:version"
)

var ErrProfileNotFound = errors.New("profile not found")

// Source 公开作品集的数据来源，由 repository.ProjectRepository 实现
type Source interface {
	ListPublic(ctx context.Context, limit, offset int) ([]*model.PublicProject, error)
	FindPublicBySlug(ctx context.Context, slug string) (*model.PublicProject, error)
}

// Service 公共目录。读取走 read-through 缓存，缓存出错时直接读库。
type Service struct {
	source   Source
	cache    Cache
	renderer *Renderer
	ttl      time.Duration
	logger   *zap.Logger
}

func NewService(source Source, cache Cache, ttl time.Duration, logger *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Service{
		source:   source,
		cache:    cache,
		renderer: NewRenderer(),
		ttl:      ttl,
		logger:   logger,
	}
}

func profileKey(slug string) string {
	return "directory:profile:" + slug
}

func listKey(version int64, limit, offset int) string {
	return fmt.Sprintf("directory:list:v%d:%d:%d", version, limit, offset)
}

// List 分页列出公开名片（不含 about 正文）
func (s *Service) List(ctx context.Context, limit, offset int) ([]model.Profile, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	limit = min(limit, MaxPageSize)
	offset = max(offset, 0)

	key := listKey(s.listVersion(ctx), limit, offset)
	var cached []model.Profile
	if s.readCache(ctx, key, &cached) {
		return cached, nil
	}

	projects, err := s.source.ListPublic(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list public projects: %w", err)
	}
	profiles := make([]model.Profile, 0, len(projects))
	for _, p := range projects {
		profiles = append(profiles, toProfile(p))
	}

	s.writeCache(ctx, key, profiles)
	return profiles, nil
}

// Get 按 slug 返回一张完整名片，about 渲染为 HTML
func (s *Service) Get(ctx context.Context, slug string) (*model.Profile, error) {
	key := profileKey(slug)
	var cached model.Profile
	if s.readCache(ctx, key, &cached) {
		return &cached, nil
	}

	p, err := s.source.FindPublicBySlug(ctx, slug)
	if errors.Is(err, repository.ErrProjectNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find public project: %w", err)
	}

	profile := toProfile(p)
	html, err := s.renderer.Render(p.Content.About)
	if err != nil {
		logger.WithTrace(ctx, s.logger).Warn("Failed to render about", zap.String("slug", slug), zap.Error(err))
	}
	profile.AboutHTML = html

	s.writeCache(ctx, key, profile)
	return &profile, nil
}

// Invalidate 清除某个 slug 的名片，并让所有列表缓存失效
func (s *Service) Invalidate(ctx context.Context, slug string) error {
	if slug != "" {
		if err := s.cache.Delete(ctx, profileKey(slug)); err != nil {
			return fmt.Errorf("delete profile cache: %w", err)
		}
	}
	if _, err := s.cache.Incr(ctx, listVersionKey); err != nil {
		return fmt.Errorf("bump list version: %w", err)
	}
	return nil
}

func (s *Service) listVersion(ctx context.Context) int64 {
	data, ok, err := s.cache.Get(ctx, listVersionKey)
	if err != nil || !ok {
		return 0
	}
	v, _ := strconv.ParseInt(string(data), 10, 64)
	return v
}

func (s *Service) readCache(ctx context.Context, key string, out any) bool {
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		metrics.IncrementDirectoryCache("error")
		logger.WithTrace(ctx, s.logger).Warn("Directory cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if !ok || json.Unmarshal(data, out) != nil {
		metrics.IncrementDirectoryCache("miss")
		return false
	}
	metrics.IncrementDirectoryCache("hit")
	return true
}

func (s *Service) writeCache(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		logger.WithTrace(ctx, s.logger).Warn("Directory cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func toProfile(p *model.PublicProject) model.Profile {
	title := p.Content.Title
	if title == "" {
		title = p.Name
	}
	var sections []string
	for _, sec := range p.Config.Sections {
		if sec.Enabled {
			sections = append(sections, sec.Name)
		}
	}
	skills := p.Content.Skills
	if skills == nil {
		skills = []string{}
	}
	return model.Profile{
		Slug:        p.Settings.Slug,
		ProjectID:   p.ID,
		DisplayName: p.OwnerName,
		Title:       title,
		Subtitle:    p.Content.Subtitle,
		Skills:      skills,
		Sections:    sections,
		Theme:       p.Settings.Theme,
		UpdatedAt:   p.UpdatedAt,
	}
}
