package model

import "time"

// Claim records one redemption of a reward. Rows are never updated.
type Claim struct {
	ID          string    `gorm:"column:id;primaryKey;size:36"`
	UserID      string    `gorm:"column:user_id;size:36;index;not null"`
	RewardID    string    `gorm:"column:reward_id;size:36;index;not null"`
	PointsSpent int64     `gorm:"column:points_spent;not null"`
	ClaimedAt   time.Time `gorm:"column:claimed_at;not null"`
}

func (Claim) TableName() string {
	return "reward_claims"
}
