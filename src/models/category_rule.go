package models

import "time"

// CategoryRule maps keyword substrings to a category name. Rules are
// evaluated in id order; the first keyword hit wins.
type CategoryRule struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Keywords  []string  `json:"keywords"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
