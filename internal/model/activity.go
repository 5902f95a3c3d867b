package model

import "time"

type ActivityKind string

const (
	ActivityRegistration   ActivityKind = "registration"
	ActivityLogin          ActivityKind = "login"
	ActivityTournamentJoin ActivityKind = "tournament_join"
	ActivityRewardClaim    ActivityKind = "reward_claim"
	ActivityProfileUpdate  ActivityKind = "profile_update"
	ActivityPointsEarned   ActivityKind = "points_earned"
)

// Activity is an append-only audit entry for account and points events.
type Activity struct {
	ID           string       `gorm:"column:id;primaryKey;size:36"`
	UserID       string       `gorm:"column:user_id;size:36;index;not null"`
	TournamentID *string      `gorm:"column:tournament_id;size:36;index"`
	RewardID     *string      `gorm:"column:reward_id;size:36;index"`
	Kind         ActivityKind `gorm:"column:kind;size:32;not null"`
	Description  string       `gorm:"column:description;size:255"`
	PointsDelta  int64        `gorm:"column:points_delta;not null;default:0"`
	CreatedAt    time.Time    `gorm:"column:created_at;index"`
}

func (Activity) TableName() string {
	return "activities"
}
