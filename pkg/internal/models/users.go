package models

import "time"

type User struct {
	ID        string         `json:"id"`
	Name      string         `json:"name,omitempty"`
	Image     string         `json:"image,omitempty"`
	Role      string         `json:"role,omitempty"`
	Custom    map[string]any `json:"custom,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// UserQuery filters the directory. An empty ID lists every user.
type UserQuery struct {
	ID     string
	Limit  int
	Offset int
}
