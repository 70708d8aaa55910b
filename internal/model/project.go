package model

import "time"

// PortfolioItem 作品集中展示的一个作品
type PortfolioItem struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	URL         string   `json:"url,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// ContactInfo 联系方式
type ContactInfo struct {
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Website  string `json:"website,omitempty"`
	Github   string `json:"github,omitempty"`
	Linkedin string `json:"linkedin,omitempty"`
}

// PortfolioContent 作品集内容，About 为 markdown
type PortfolioContent struct {
	Title    string          `json:"title"`
	Subtitle string          `json:"subtitle"`
	About    string          `json:"about"`
	Skills   []string        `json:"skills"`
	Items    []PortfolioItem `json:"items"`
	Contact  ContactInfo     `json:"contact"`
}

// PortfolioSettings 发布设置
type PortfolioSettings struct {
	Theme        string `json:"theme"` // light / dark
	PrimaryColor string `json:"primary_color"`
	IsPublic     bool   `json:"is_public"`
	Slug         string `json:"slug"`
}

// Project 聚合根：一个用户拥有的作品集
type Project struct {
	ID          string            `json:"id"`
	UserID      int               `json:"user_id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Config      ProjectConfig     `json:"config"`
	Content     PortfolioContent  `json:"content"`
	Settings    PortfolioSettings `json:"settings"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ProjectDraft 保存前的作品集（没有 id 和时间戳）
type ProjectDraft struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Config      ProjectConfig     `json:"config"`
	Content     PortfolioContent  `json:"content"`
	Settings    PortfolioSettings `json:"settings"`
}

// ProjectPatch 部分更新，nil 字段保持不变
type ProjectPatch struct {
	Name        *string            `json:"name,omitempty"`
	Description *string            `json:"description,omitempty"`
	Config      *ProjectConfig     `json:"config,omitempty"`
	Content     *PortfolioContent  `json:"content,omitempty"`
	Settings    *PortfolioSettings `json:"settings,omitempty"`
}

// IsEmpty 没有任何字段需要更新
func (p ProjectPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Config == nil && p.Content == nil && p.Settings == nil
}

// Apply 返回应用补丁后的新 Project
func (p ProjectPatch) Apply(project Project) Project {
	out := project
	out.Config = project.Config.Clone()
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Config != nil {
		out.Config = p.Config.Clone()
	}
	if p.Content != nil {
		out.Content = *p.Content
	}
	if p.Settings != nil {
		out.Settings = *p.Settings
	}
	return out
}

// PublicProject 公开作品集及其作者名，用于公共目录
type PublicProject struct {
	Project
	OwnerName string `json:"owner_name"`
}
