package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shinyyama/arena-backend/internal/logging"
	"github.com/shinyyama/arena-backend/internal/metrics"
	"github.com/shinyyama/arena-backend/internal/model"
	"github.com/shinyyama/arena-backend/internal/repository"
)

const maxSlugAttempts = 5

type TournamentInput struct {
	Title           string
	Game            string
	Description     string
	StartsAt        time.Time
	EndsAt          time.Time
	MaxParticipants int64
	PrizePool       int64
}

type TournamentPage struct {
	Items  []model.Tournament
	Total  int64
	Limit  int
	Offset int
}

type TournamentService interface {
	List(ctx context.Context, status model.TournamentStatus, limit, offset int) (*TournamentPage, error)
	// Get resolves either a tournament id or its slug.
	Get(ctx context.Context, idOrSlug string) (*model.Tournament, error)
	Create(ctx context.Context, in TournamentInput) (*model.Tournament, error)
	Join(ctx context.Context, userID, tournamentID string) (*model.Tournament, error)
	ListJoined(ctx context.Context, userID string) ([]model.Tournament, error)
	AdvanceStatuses(ctx context.Context) (int64, error)
}

type tournamentService struct {
	store       repository.Store
	activity    ActivityLog
	maxAttempts int
	now         func() time.Time
}

func NewTournamentService(store repository.Store, activity ActivityLog, maxAttempts int) TournamentService {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return &tournamentService{store: store, activity: activity, maxAttempts: maxAttempts, now: time.Now}
}

func (s *tournamentService) List(ctx context.Context, status model.TournamentStatus, limit, offset int) (*TournamentPage, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", status, ErrValidation)
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	items, total, err := s.store.Tournaments().List(ctx, status, limit, offset)
	if err != nil {
		return nil, err
	}
	return &TournamentPage{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *tournamentService) Get(ctx context.Context, idOrSlug string) (*model.Tournament, error) {
	idOrSlug = strings.TrimSpace(idOrSlug)
	if idOrSlug == "" {
		return nil, ErrTournamentNotFound
	}
	repo := s.store.Tournaments()
	t, err := repo.GetByID(ctx, idOrSlug)
	if errors.Is(err, repository.ErrNotFound) {
		t, err = repo.GetBySlug(ctx, idOrSlug)
	}
	if err != nil {
		return nil, notFoundAs(err, ErrTournamentNotFound)
	}
	return t, nil
}

func (s *tournamentService) Create(ctx context.Context, in TournamentInput) (*model.Tournament, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Game = strings.TrimSpace(in.Game)
	switch {
	case in.Title == "" || in.Game == "":
		return nil, fmt.Errorf("title and game are required: %w", ErrValidation)
	case in.StartsAt.IsZero() || in.EndsAt.IsZero():
		return nil, fmt.Errorf("schedule is required: %w", ErrValidation)
	case !in.EndsAt.After(in.StartsAt):
		return nil, fmt.Errorf("ends_at must be after starts_at: %w", ErrValidation)
	case in.MaxParticipants < 0 || in.PrizePool < 0:
		return nil, fmt.Errorf("limits must not be negative: %w", ErrValidation)
	}

	base := slug.Make(in.Title)
	if base == "" {
		base = "tournament"
	}
	t := &model.Tournament{
		ID:              uuid.NewString(),
		Title:           in.Title,
		Game:            in.Game,
		Description:     strings.TrimSpace(in.Description),
		Status:          initialStatus(in.StartsAt, in.EndsAt, s.now()),
		StartsAt:        in.StartsAt.UTC(),
		EndsAt:          in.EndsAt.UTC(),
		MaxParticipants: in.MaxParticipants,
		PrizePool:       in.PrizePool,
	}
	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		t.Slug = base
		if attempt > 1 {
			t.Slug = fmt.Sprintf("%s-%d", base, attempt)
		}
		if attempt == maxSlugAttempts {
			t.Slug = fmt.Sprintf("%s-%s", base, uuid.NewString()[:8])
		}
		err := s.store.Tournaments().Create(ctx, t)
		if err == nil {
			logging.FromContext(ctx).Info().Str("tournament_id", t.ID).Str("slug", t.Slug).Msg("tournament created")
			return t, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("slug %q is taken: %w", base, ErrConflict)
}

func initialStatus(startsAt, endsAt, now time.Time) model.TournamentStatus {
	switch {
	case !endsAt.After(now):
		return model.TournamentStatusCompleted
	case !startsAt.After(now):
		return model.TournamentStatusOngoing
	default:
		return model.TournamentStatusUpcoming
	}
}

func (s *tournamentService) Join(ctx context.Context, userID, tournamentID string) (*model.Tournament, error) {
	if userID == "" || tournamentID == "" {
		return nil, fmt.Errorf("user and tournament are required: %w", ErrValidation)
	}
	if _, err := s.store.Users().GetByID(ctx, userID); err != nil {
		return nil, notFoundAs(err, ErrUserNotFound)
	}

	var joined *model.Tournament
	err := retryStale(ctx, "join", s.maxAttempts, func(int) error {
		t, err := s.Get(ctx, tournamentID)
		if err != nil {
			return err
		}
		if t.Status != model.TournamentStatusUpcoming {
			return ErrTournamentClosed
		}
		if t.Full() {
			return ErrTournamentFull
		}
		err = s.store.Transaction(ctx, func(tx repository.Store) error {
			if err := tx.Tournaments().IncrementParticipants(ctx, t.ID, t.Participants); err != nil {
				return err
			}
			return tx.Tournaments().AddParticipant(ctx, &model.TournamentParticipant{
				ID:           uuid.NewString(),
				TournamentID: t.ID,
				UserID:       userID,
				JoinedAt:     s.now().UTC(),
			})
		})
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrAlreadyJoined
		}
		if err != nil {
			return err
		}
		t.Participants++
		joined = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, &model.Activity{
		UserID:       userID,
		TournamentID: &joined.ID,
		Kind:         model.ActivityTournamentJoin,
		Description:  fmt.Sprintf("Joined tournament: %s", joined.Title),
	})
	return joined, nil
}

func (s *tournamentService) ListJoined(ctx context.Context, userID string) ([]model.Tournament, error) {
	if userID == "" {
		return nil, fmt.Errorf("user is required: %w", ErrValidation)
	}
	return s.store.Tournaments().ListByParticipant(ctx, userID)
}

func (s *tournamentService) AdvanceStatuses(ctx context.Context) (int64, error) {
	n, err := s.store.Tournaments().AdvanceStatuses(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.TournamentTransitionsTotal.Add(float64(n))
		logging.FromContext(ctx).Info().Int64("changed", n).Msg("tournament statuses advanced")
	}
	return n, nil
}
