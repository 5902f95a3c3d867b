package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shinyyama/arena-backend/internal/model"
	"github.com/shinyyama/arena-backend/internal/repository"
)

type tournaments struct{ s *Store }

func (r tournaments) List(ctx context.Context, status model.TournamentStatus, limit, offset int) ([]model.Tournament, int64, error) {
	var all []model.Tournament
	err := r.s.do(ctx, func(d *dataset) error {
		for _, t := range d.tournaments {
			if status != "" && t.Status != status {
				continue
			}
			all = append(all, t)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].StartsAt.Before(all[j].StartsAt) })
	total := int64(len(all))
	if offset >= len(all) {
		return []model.Tournament{}, total, nil
	}
	all = all[offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}

func (r tournaments) GetByID(ctx context.Context, id string) (*model.Tournament, error) {
	var out *model.Tournament
	err := r.s.do(ctx, func(d *dataset) error {
		t, ok := d.tournaments[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &t
		return nil
	})
	return out, err
}

func (r tournaments) GetBySlug(ctx context.Context, slug string) (*model.Tournament, error) {
	var out *model.Tournament
	err := r.s.do(ctx, func(d *dataset) error {
		id, ok := d.slugs[slug]
		if !ok {
			return repository.ErrNotFound
		}
		t := d.tournaments[id]
		out = &t
		return nil
	})
	return out, err
}

func (r tournaments) Create(ctx context.Context, t *model.Tournament) error {
	return r.s.do(ctx, func(d *dataset) error {
		if _, ok := d.slugs[t.Slug]; ok {
			return repository.ErrDuplicate
		}
		if _, ok := d.tournaments[t.ID]; ok {
			return repository.ErrDuplicate
		}
		now := r.s.stamp()
		t.CreatedAt, t.UpdatedAt = now, now
		d.tournaments[t.ID] = *t
		d.slugs[t.Slug] = t.ID
		return nil
	})
}

func (r tournaments) IncrementParticipants(ctx context.Context, id string, expected int64) error {
	return r.s.do(ctx, func(d *dataset) error {
		t, ok := d.tournaments[id]
		if !ok || t.Participants != expected {
			return repository.ErrStaleState
		}
		t.Participants++
		t.UpdatedAt = r.s.stamp()
		d.tournaments[id] = t
		return nil
	})
}

func (r tournaments) AddParticipant(ctx context.Context, p *model.TournamentParticipant) error {
	return r.s.do(ctx, func(d *dataset) error {
		members, ok := d.participants[p.TournamentID]
		if !ok {
			members = map[string]model.TournamentParticipant{}
			d.participants[p.TournamentID] = members
		}
		if _, dup := members[p.UserID]; dup {
			return repository.ErrDuplicate
		}
		members[p.UserID] = *p
		return nil
	})
}

func (r tournaments) ListByParticipant(ctx context.Context, userID string) ([]model.Tournament, error) {
	var out []model.Tournament
	err := r.s.do(ctx, func(d *dataset) error {
		for tid, members := range d.participants {
			if _, ok := members[userID]; ok {
				out = append(out, d.tournaments[tid])
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.After(out[j].StartsAt) })
	return out, err
}

func (r tournaments) AdvanceStatuses(ctx context.Context, now time.Time) (int64, error) {
	var changed int64
	err := r.s.do(ctx, func(d *dataset) error {
		for id, t := range d.tournaments {
			next := t.Status
			switch {
			case t.Status != model.TournamentStatusCompleted && !t.EndsAt.After(now):
				next = model.TournamentStatusCompleted
			case t.Status == model.TournamentStatusUpcoming && !t.StartsAt.After(now):
				next = model.TournamentStatusOngoing
			}
			if next != t.Status {
				t.Status = next
				t.UpdatedAt = r.s.stamp()
				d.tournaments[id] = t
				changed++
			}
		}
		return nil
	})
	return changed, err
}
