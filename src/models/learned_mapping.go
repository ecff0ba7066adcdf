package models

import "time"

// LearnedMapping is a memo-to-category association derived from a user
// correction.
// MemoPrefix is the lowercased first ~60 chars of the memo the user
// corrected. Mappings outrank keyword rules and never decay.
type LearnedMapping struct {
	ID         int       `json:"id"`
	UserID     int       `json:"user_id"`
	MemoPrefix string    `json:"memo_prefix"`
	Category   string    `json:"category"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
