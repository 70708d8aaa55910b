package model

import "time"

type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	Bio          string    `json:"bio"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile 公共目录中的一张名片
type Profile struct {
	Slug        string    `json:"slug"`
	ProjectID   string    `json:"project_id"`
	DisplayName string    `json:"display_name"`
	Title       string    `json:"title"`
	Subtitle    string    `json:"subtitle"`
	Skills      []string  `json:"skills"`
	Sections    []string  `json:"sections,omitempty"`
	Theme       string    `json:"theme,omitempty"`
	AboutHTML   string    `json:"about_html,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}
