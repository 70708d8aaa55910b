package mq

import "time"

// 作品集生命周期事件的 routing key
const (
	RoutingKeyProjectCreated = "project.created"
	RoutingKeyProjectUpdated = "project.updated"
	RoutingKeyProjectDeleted = "project.deleted"
)

// ProjectRoutingKeys 所有作品集事件
var ProjectRoutingKeys = []string{
	RoutingKeyProjectCreated,
	RoutingKeyProjectUpdated,
	RoutingKeyProjectDeleted,
}

// ProjectEventPayload project.* 事件的 payload
type ProjectEventPayload struct {
	ProjectID    string    `json:"project_id"`
	UserID       int       `json:"user_id"`
	Slug         string    `json:"slug,omitempty"`
	PreviousSlug string    `json:"previous_slug,omitempty"` // 仅 project.updated 改了 slug 时有值
	IsPublic     bool      `json:"is_public"`
	TraceID      string    `json:"trace_id,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}
