package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shinyyama/arena-backend/internal/logging"
	"github.com/shinyyama/arena-backend/internal/metrics"
	"github.com/shinyyama/arena-backend/internal/model"
	"github.com/shinyyama/arena-backend/internal/repository"
)

const activityAppendTimeout = 2 * time.Second

type ActivityLog interface {
	// Record appends entry and never fails the caller. A failed append is
	// logged and counted instead.
	Record(ctx context.Context, entry *model.Activity)
	List(ctx context.Context, userID string, limit int) ([]model.Activity, error)
}

type activityLog struct {
	repo repository.ActivityRepository
	now  func() time.Time
}

func NewActivityLog(repo repository.ActivityRepository) ActivityLog {
	return &activityLog{repo: repo, now: time.Now}
}

func (l *activityLog) Record(ctx context.Context, entry *model.Activity) {
	if entry == nil || entry.UserID == "" || entry.Kind == "" {
		return
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = l.now().UTC()
	}
	// The entry outlives the request: the caller may already be gone.
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), activityAppendTimeout)
	defer cancel()
	if err := l.repo.Append(actx, entry); err != nil {
		metrics.ActivityAppendFailuresTotal.WithLabelValues(string(entry.Kind)).Inc()
		logging.FromContext(ctx).Error().
			Err(err).
			Str("user_id", entry.UserID).
			Str("kind", string(entry.Kind)).
			Int64("points_delta", entry.PointsDelta).
			Msg("activity append failed")
	}
}

func (l *activityLog) List(ctx context.Context, userID string, limit int) ([]model.Activity, error) {
	if userID == "" {
		return nil, ErrValidation
	}
	return l.repo.ListByUser(ctx, userID, limit)
}
