package model

import "time"

type Reward struct {
	ID             string    `gorm:"column:id;primaryKey;size:36"`
	Name           string    `gorm:"column:name;size:120;not null"`
	Description    string    `gorm:"column:description;type:text"`
	ImageURL       *string   `gorm:"column:image_url;size:512"`
	PointsRequired int64     `gorm:"column:points_required;not null"`
	Stock          int64     `gorm:"column:stock;not null;default:0"`
	IsActive       bool      `gorm:"column:is_active;not null;index"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (Reward) TableName() string {
	return "rewards"
}
