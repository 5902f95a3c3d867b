// Package memory is an in-process implementation of repository.Store for
// local development and tests. Transactions are serialised and run against a
// copy of the dataset that is swapped in only when fn succeeds.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shinyyama/arena-backend/internal/model"
	"github.com/shinyyama/arena-backend/internal/repository"
)

type dataset struct {
	users        map[string]model.User
	emails       map[string]string
	rewards      map[string]model.Reward
	claims       []model.Claim
	activities   []model.Activity
	tournaments  map[string]model.Tournament
	slugs        map[string]string
	participants map[string]map[string]model.TournamentParticipant
}

func newDataset() *dataset {
	return &dataset{
		users:        map[string]model.User{},
		emails:       map[string]string{},
		rewards:      map[string]model.Reward{},
		tournaments:  map[string]model.Tournament{},
		slugs:        map[string]string{},
		participants: map[string]map[string]model.TournamentParticipant{},
	}
}

func (d *dataset) clone() *dataset {
	c := newDataset()
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.emails {
		c.emails[k] = v
	}
	for k, v := range d.rewards {
		c.rewards[k] = v
	}
	c.claims = append([]model.Claim(nil), d.claims...)
	c.activities = append([]model.Activity(nil), d.activities...)
	for k, v := range d.tournaments {
		c.tournaments[k] = v
	}
	for k, v := range d.slugs {
		c.slugs[k] = v
	}
	for tid, members := range d.participants {
		m := make(map[string]model.TournamentParticipant, len(members))
		for uid, p := range members {
			m[uid] = p
		}
		c.participants[tid] = m
	}
	return c
}

type state struct {
	mu   sync.Mutex
	data *dataset
}

// Store implements repository.Store in memory.
type Store struct {
	st  *state
	tx  *dataset
	now func() time.Time
}

func New() *Store {
	return &Store{st: &state{data: newDataset()}, now: time.Now}
}

func (s *Store) Users() repository.UserRepository             { return users{s} }
func (s *Store) Rewards() repository.RewardRepository         { return rewards{s} }
func (s *Store) Claims() repository.ClaimRepository           { return claims{s} }
func (s *Store) Activities() repository.ActivityRepository    { return activities{s} }
func (s *Store) Tournaments() repository.TournamentRepository { return tournaments{s} }

func (s *Store) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	work := s.st.data.clone()
	if err := fn(&Store{st: s.st, tx: work, now: s.now}); err != nil {
		return err
	}
	s.st.data = work
	return nil
}

// do runs fn against the transaction copy, or against the live dataset under
// the store lock when called outside a transaction.
func (s *Store) do(ctx context.Context, fn func(d *dataset) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	if s.tx != nil {
		return fn(s.tx)
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	return fn(s.st.data)
}

func (s *Store) stamp() time.Time {
	return s.now().UTC()
}

type users struct{ s *Store }

func (r users) GetByID(ctx context.Context, id string) (*model.User, error) {
	var out *model.User
	err := r.s.do(ctx, func(d *dataset) error {
		u, ok := d.users[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

func (r users) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var out *model.User
	err := r.s.do(ctx, func(d *dataset) error {
		id, ok := d.emails[strings.ToLower(email)]
		if !ok {
			return repository.ErrNotFound
		}
		u := d.users[id]
		out = &u
		return nil
	})
	return out, err
}

func (r users) Create(ctx context.Context, u *model.User) error {
	return r.s.do(ctx, func(d *dataset) error {
		key := strings.ToLower(u.Email)
		if _, ok := d.emails[key]; ok {
			return repository.ErrDuplicate
		}
		if _, ok := d.users[u.ID]; ok {
			return repository.ErrDuplicate
		}
		now := r.s.stamp()
		u.CreatedAt, u.UpdatedAt = now, now
		d.users[u.ID] = *u
		d.emails[key] = u.ID
		return nil
	})
}

func (r users) CompareAndSetPoints(ctx context.Context, id string, expected, next int64) error {
	if next < 0 {
		return fmt.Errorf("user %s points %d: %w", id, next, repository.ErrConstraint)
	}
	return r.s.do(ctx, func(d *dataset) error {
		u, ok := d.users[id]
		if !ok || u.Points != expected {
			return repository.ErrStaleState
		}
		u.Points = next
		u.UpdatedAt = r.s.stamp()
		d.users[id] = u
		return nil
	})
}

type rewards struct{ s *Store }

func (r rewards) GetByID(ctx context.Context, id string) (*model.Reward, error) {
	var out *model.Reward
	err := r.s.do(ctx, func(d *dataset) error {
		rw, ok := d.rewards[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &rw
		return nil
	})
	return out, err
}

func (r rewards) List(ctx context.Context, activeOnly bool) ([]model.Reward, error) {
	var out []model.Reward
	err := r.s.do(ctx, func(d *dataset) error {
		for _, rw := range d.rewards {
			if activeOnly && !rw.IsActive {
				continue
			}
			out = append(out, rw)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].PointsRequired != out[j].PointsRequired {
			return out[i].PointsRequired < out[j].PointsRequired
		}
		return out[i].Name < out[j].Name
	})
	return out, err
}

func (r rewards) Create(ctx context.Context, rw *model.Reward) error {
	return r.s.do(ctx, func(d *dataset) error {
		if _, ok := d.rewards[rw.ID]; ok {
			return repository.ErrDuplicate
		}
		now := r.s.stamp()
		rw.CreatedAt, rw.UpdatedAt = now, now
		d.rewards[rw.ID] = *rw
		return nil
	})
}

func (r rewards) Update(ctx context.Context, rw *model.Reward, columns ...string) error {
	for _, c := range columns {
		switch c {
		case repository.RewardColumnName, repository.RewardColumnDescription,
			repository.RewardColumnPointsRequired, repository.RewardColumnIsActive:
		default:
			return fmt.Errorf("reward column %q: %w", c, repository.ErrConstraint)
		}
	}
	if len(columns) == 0 {
		return nil
	}
	return r.s.do(ctx, func(d *dataset) error {
		cur, ok := d.rewards[rw.ID]
		if !ok {
			return repository.ErrNotFound
		}
		for _, c := range columns {
			switch c {
			case repository.RewardColumnName:
				cur.Name = rw.Name
			case repository.RewardColumnDescription:
				cur.Description = rw.Description
			case repository.RewardColumnPointsRequired:
				cur.PointsRequired = rw.PointsRequired
			case repository.RewardColumnIsActive:
				cur.IsActive = rw.IsActive
			}
		}
		cur.UpdatedAt = r.s.stamp()
		d.rewards[rw.ID] = cur
		return nil
	})
}

func (r rewards) SetImageURL(ctx context.Context, id, url string) error {
	return r.s.do(ctx, func(d *dataset) error {
		cur, ok := d.rewards[id]
		if !ok {
			return repository.ErrNotFound
		}
		cur.ImageURL = &url
		cur.UpdatedAt = r.s.stamp()
		d.rewards[id] = cur
		return nil
	})
}

func (r rewards) CompareAndSetStock(ctx context.Context, id string, expected, next int64) error {
	if next < 0 {
		return fmt.Errorf("reward %s stock %d: %w", id, next, repository.ErrConstraint)
	}
	return r.s.do(ctx, func(d *dataset) error {
		cur, ok := d.rewards[id]
		if !ok || cur.Stock != expected {
			return repository.ErrStaleState
		}
		cur.Stock = next
		cur.UpdatedAt = r.s.stamp()
		d.rewards[id] = cur
		return nil
	})
}

func (r rewards) DecrementStock(ctx context.Context, id string, expectedStock int64) error {
	return r.s.do(ctx, func(d *dataset) error {
		rw, ok := d.rewards[id]
		if !ok || !rw.IsActive || rw.Stock != expectedStock || rw.Stock <= 0 {
			return repository.ErrStaleState
		}
		rw.Stock--
		rw.UpdatedAt = r.s.stamp()
		d.rewards[id] = rw
		return nil
	})
}

type claims struct{ s *Store }

func (r claims) Create(ctx context.Context, c *model.Claim) error {
	return r.s.do(ctx, func(d *dataset) error {
		d.claims = append(d.claims, *c)
		return nil
	})
}

func (r claims) ListByUser(ctx context.Context, userID string, limit int) ([]model.Claim, error) {
	var out []model.Claim
	err := r.s.do(ctx, func(d *dataset) error {
		for i := len(d.claims) - 1; i >= 0; i-- {
			if d.claims[i].UserID == userID {
				out = append(out, d.claims[i])
			}
		}
		return nil
	})
	return truncate(out, limit), err
}

type activities struct{ s *Store }

func (r activities) Append(ctx context.Context, a *model.Activity) error {
	return r.s.do(ctx, func(d *dataset) error {
		if a.CreatedAt.IsZero() {
			a.CreatedAt = r.s.stamp()
		}
		d.activities = append(d.activities, *a)
		return nil
	})
}

func (r activities) ListByUser(ctx context.Context, userID string, limit int) ([]model.Activity, error) {
	var out []model.Activity
	err := r.s.do(ctx, func(d *dataset) error {
		for i := len(d.activities) - 1; i >= 0; i-- {
			if d.activities[i].UserID == userID {
				out = append(out, d.activities[i])
			}
		}
		return nil
	})
	return truncate(out, limit), err
}

func truncate[T any](list []T, limit int) []T {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if len(list) > limit {
		return list[:limit]
	}
	return list
}
