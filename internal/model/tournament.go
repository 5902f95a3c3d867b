package model

import "time"

type TournamentStatus string

const (
	TournamentStatusUpcoming  TournamentStatus = "upcoming"
	TournamentStatusOngoing   TournamentStatus = "ongoing"
	TournamentStatusCompleted TournamentStatus = "completed"
)

func (s TournamentStatus) Valid() bool {
	switch s {
	case TournamentStatusUpcoming, TournamentStatusOngoing, TournamentStatusCompleted:
		return true
	}
	return false
}

type Tournament struct {
	ID              string           `gorm:"column:id;primaryKey;size:36"`
	Slug            string           `gorm:"column:slug;size:160;not null;uniqueIndex:uk_tournaments_slug"`
	Title           string           `gorm:"column:title;size:120;not null"`
	Game            string           `gorm:"column:game;size:120;not null"`
	Description     string           `gorm:"column:description;type:text"`
	Status          TournamentStatus `gorm:"column:status;size:16;not null;index"`
	StartsAt        time.Time        `gorm:"column:starts_at;not null;index"`
	EndsAt          time.Time        `gorm:"column:ends_at;not null"`
	MaxParticipants int64            `gorm:"column:max_participants;not null;default:0"`
	Participants    int64            `gorm:"column:participants;not null;default:0"`
	PrizePool       int64            `gorm:"column:prize_pool;not null;default:0"`
	CreatedAt       time.Time        `gorm:"autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"autoUpdateTime"`
}

func (Tournament) TableName() string {
	return "tournaments"
}

// Full reports whether the participant cap is reached. Zero means unlimited.
func (t *Tournament) Full() bool {
	return t.MaxParticipants > 0 && t.Participants >= t.MaxParticipants
}

type TournamentParticipant struct {
	ID           string    `gorm:"column:id;primaryKey;size:36"`
	TournamentID string    `gorm:"column:tournament_id;size:36;not null;uniqueIndex:uk_participant"`
	UserID       string    `gorm:"column:user_id;size:36;not null;uniqueIndex:uk_participant;index"`
	JoinedAt     time.Time `gorm:"column:joined_at;not null"`
}

func (TournamentParticipant) TableName() string {
	return "tournament_participants"
}
