package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	mqcontracts "portfoliobuilder/contracts/mq"
	"portfoliobuilder/internal/model"
	"portfoliobuilder/pkg/outbox"
	"portfoliobuilder/pkg/trace"
)

const projectAggregate = "project"

// ProjectRepository 作品集持久化。每次写入都和对应的 project.* outbox 事件在同一个事务中提交。
type ProjectRepository struct {
	db         *pgxpool.Pool
	outboxRepo *outbox.Repository
}

func NewProjectRepository(db *pgxpool.Pool, outboxRepo *outbox.Repository) *ProjectRepository {
	return &ProjectRepository{db: db, outboxRepo: outboxRepo}
}

const projectColumns = `p.id::text, p.user_id, p.name, p.description, p.config, p.content, p.settings,
		p.created_at, p.updated_at`

func scanProject(row pgx.Row, extra ...any) (*model.Project, error) {
	var p model.Project
	dest := []any{
		&p.ID, &p.UserID, &p.Name, &p.Description,
		&p.Config, &p.Content, &p.Settings,
		&p.CreatedAt, &p.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("scan project: %w", err)
	}
	return &p, nil
}

// nullableSlug 空 slug 存为 NULL，避免唯一索引冲突
func nullableSlug(slug string) *string {
	if slug == "" {
		return nil
	}
	return &slug
}

// eventPayload previousSlug 与当前 slug 相同时不写入
func eventPayload(ctx context.Context, p *model.Project, previousSlug string) mqcontracts.ProjectEventPayload {
	if previousSlug == p.Settings.Slug {
		previousSlug = ""
	}
	return mqcontracts.ProjectEventPayload{
		ProjectID:    p.ID,
		UserID:       p.UserID,
		Slug:         p.Settings.Slug,
		PreviousSlug: previousSlug,
		IsPublic:     p.Settings.IsPublic,
		TraceID:      trace.FromContext(ctx),
		OccurredAt:   time.Now().UTC(),
	}
}

// withTx 执行 fn 并提交；fn 返回错误时回滚
func (r *ProjectRepository) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Insert 生成 id 并写入作品集，同时写入 project.created 事件
func (r *ProjectRepository) Insert(ctx context.Context, p *model.Project) error {
	id := uuid.New()
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO projects (id, user_id, name, description, config, content, settings, slug, is_public)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING created_at, updated_at
		`, id, p.UserID, p.Name, p.Description, p.Config, p.Content, p.Settings,
			nullableSlug(p.Settings.Slug), p.Settings.IsPublic,
		).Scan(&p.CreatedAt, &p.UpdatedAt)
		if isUniqueViolation(err, "idx_projects_slug") {
			return ErrSlugTaken
		}
		if err != nil {
			return fmt.Errorf("insert project: %w", err)
		}
		p.ID = id.String()

		return outbox.InsertEventInTx(ctx, tx, r.outboxRepo, projectAggregate, p.ID,
			mqcontracts.RoutingKeyProjectCreated, eventPayload(ctx, p, ""))
	})
	if err != nil {
		p.ID = ""
	}
	return err
}

// Update 覆盖写入（last-write-wins），同时写入 project.updated 事件。
// 事件带上旧 slug，消费方据此清掉旧名片缓存。
func (r *ProjectRepository) Update(ctx context.Context, p *model.Project) error {
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return ErrProjectNotFound
	}
	return r.withTx(ctx, func(tx pgx.Tx) error {
		var previousSlug *string
		err := tx.QueryRow(ctx, `
			WITH prev AS (
				SELECT id, slug FROM projects WHERE id = $1 AND user_id = $9 FOR UPDATE
			)
			UPDATE projects
			SET name = $2, description = $3, config = $4, content = $5, settings = $6,
			    slug = $7, is_public = $8, updated_at = NOW()
			FROM prev
			WHERE projects.id = prev.id
			RETURNING projects.created_at, projects.updated_at, prev.slug
		`, id, p.Name, p.Description, p.Config, p.Content, p.Settings,
			nullableSlug(p.Settings.Slug), p.Settings.IsPublic, p.UserID,
		).Scan(&p.CreatedAt, &p.UpdatedAt, &previousSlug)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProjectNotFound
		}
		if isUniqueViolation(err, "idx_projects_slug") {
			return ErrSlugTaken
		}
		if err != nil {
			return fmt.Errorf("update project: %w", err)
		}

		var prev string
		if previousSlug != nil {
			prev = *previousSlug
		}
		return outbox.InsertEventInTx(ctx, tx, r.outboxRepo, projectAggregate, p.ID,
			mqcontracts.RoutingKeyProjectUpdated, eventPayload(ctx, p, prev))
	})
}

// Delete 删除属于 userID 的作品集。不存在时返回 false 且不写事件。
func (r *ProjectRepository) Delete(ctx context.Context, userID int, projectID string) (bool, error) {
	id, err := uuid.Parse(projectID)
	if err != nil {
		return false, nil
	}

	deleted := false
	err = r.withTx(ctx, func(tx pgx.Tx) error {
		p := model.Project{ID: projectID, UserID: userID}
		var slug *string
		err := tx.QueryRow(ctx, `
			DELETE FROM projects WHERE id = $1 AND user_id = $2
			RETURNING slug, is_public
		`, id, userID).Scan(&slug, &p.Settings.IsPublic)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("delete project: %w", err)
		}
		if slug != nil {
			p.Settings.Slug = *slug
		}
		deleted = true

		return outbox.InsertEventInTx(ctx, tx, r.outboxRepo, projectAggregate, p.ID,
			mqcontracts.RoutingKeyProjectDeleted, eventPayload(ctx, &p, ""))
	})
	return deleted, err
}

// FindByID 按 id 查询，id 不是合法 uuid 时也视为不存在
func (r *ProjectRepository) FindByID(ctx context.Context, projectID string) (*model.Project, error) {
	id, err := uuid.Parse(projectID)
	if err != nil {
		return nil, ErrProjectNotFound
	}
	return scanProject(r.db.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects p WHERE p.id = $1`, id))
}

// ListByUser 返回用户的所有作品集，最近更新的在前
func (r *ProjectRepository) ListByUser(ctx context.Context, userID int) ([]*model.Project, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+projectColumns+`
		FROM projects p
		WHERE p.user_id = $1
		ORDER BY p.updated_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	projects := []*model.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

const publicColumns = projectColumns + `, COALESCE(NULLIF(u.display_name, ''), split_part(u.email, '@', 1))`

// ListPublic 返回公开且有 slug 的作品集
func (r *ProjectRepository) ListPublic(ctx context.Context, limit, offset int) ([]*model.PublicProject, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+publicColumns+`
		FROM projects p
		JOIN users u ON u.id = p.user_id
		WHERE p.is_public AND p.slug IS NOT NULL AND p.slug <> ''
		ORDER BY p.updated_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query public projects: %w", err)
	}
	defer rows.Close()

	out := []*model.PublicProject{}
	for rows.Next() {
		var owner string
		p, err := scanProject(rows, &owner)
		if err != nil {
			return nil, err
		}
		out = append(out, &model.PublicProject{Project: *p, OwnerName: owner})
	}
	return out, rows.Err()
}

// FindPublicBySlug 按 slug 查询公开作品集
func (r *ProjectRepository) FindPublicBySlug(ctx context.Context, slug string) (*model.PublicProject, error) {
	var owner string
	p, err := scanProject(r.db.QueryRow(ctx, `
		SELECT `+publicColumns+`
		FROM projects p
		JOIN users u ON u.id = p.user_id
		WHERE p.slug = $1 AND p.is_public
	`, slug), &owner)
	if err != nil {
		return nil, err
	}
	return &model.PublicProject{Project: *p, OwnerName: owner}, nil
}
