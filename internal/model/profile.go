package model

import "time"

// DefaultAvatarID is used when a profile is saved without an avatar choice.
const DefaultAvatarID = 1

// Profile stores per-user display settings. At most one row per user;
// a missing row routes the user through the setup flow and is not an error.
type Profile struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"uniqueIndex" json:"user_id"`
	FullName  string    `json:"full_name"`
	AvatarID  int       `gorm:"default:1" json:"avatar_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
