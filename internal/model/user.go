package model

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleModerator:
		return true
	}
	return false
}

// User points are only changed through compare-and-set writes.
type User struct {
	ID           string    `gorm:"column:id;primaryKey;size:36"`
	Username     string    `gorm:"column:username;size:64;not null"`
	Email        string    `gorm:"column:email;size:255;not null;uniqueIndex:uk_users_email"`
	PasswordHash string    `gorm:"column:password_hash;size:255;not null"`
	Role         Role      `gorm:"column:role;size:16;not null;default:user"`
	Points       int64     `gorm:"column:points;not null;default:0"`
	AvatarURL    *string   `gorm:"column:avatar_url;size:512"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
