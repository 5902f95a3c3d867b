// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

const jobTimeout = 30 * time.Second

// StatusAdvancer moves tournaments through their lifecycle.
type StatusAdvancer interface {
	AdvanceStatuses(ctx context.Context) (int64, error)
}

type Scheduler struct {
	sched gocron.Scheduler
}

// New registers the tournament status job to run every interval, starting
// immediately. Runs never overlap.
func New(interval time.Duration, tournaments StatusAdvancer) (*Scheduler, error) {
	sched, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("new scheduler: %w", err)
	}
	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { advance(tournaments) }),
		gocron.WithName("tournament-status"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("register tournament job: %w", err)
	}
	return &Scheduler{sched: sched}, nil
}

func advance(tournaments StatusAdvancer) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	if _, err := tournaments.AdvanceStatuses(ctx); err != nil {
		log.Error().Err(err).Str("job", "tournament-status").Msg("scheduled job failed")
	}
}

func (s *Scheduler) Start() {
	s.sched.Start()
}

func (s *Scheduler) Shutdown() error {
	return s.sched.Shutdown()
}
