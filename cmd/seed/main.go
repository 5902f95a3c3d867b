package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/shinyyama/arena-backend/internal/auth"
	"github.com/shinyyama/arena-backend/internal/config"
	"github.com/shinyyama/arena-backend/internal/db"
	"github.com/shinyyama/arena-backend/internal/logging"
	"github.com/shinyyama/arena-backend/internal/model"
	"github.com/shinyyama/arena-backend/internal/repository"
	"github.com/shinyyama/arena-backend/internal/service"
)

type seedTournament struct {
	Title           string
	Game            string
	Description     string
	StartsIn        time.Duration
	Length          time.Duration
	MaxParticipants int64
	PrizePool       int64
}

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
}

func run() error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	if cfg.Store != config.StoreSQL {
		return errors.New("seed requires STORE=sql")
	}

	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := db.Migrate(gdb); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return fmt.Errorf("sql db: %w", err)
	}
	defer sqlDB.Close()

	store := repository.NewStore(gdb, cfg.DBQueryTimeout)
	if err := seedAdmin(ctx, store, os.Getenv("ADMIN_EMAIL"), os.Getenv("ADMIN_PASSWORD")); err != nil {
		return err
	}

	canSeed, err := shouldSeed(ctx, store)
	if err != nil {
		return err
	}
	if !canSeed {
		log.Info().Msg("rewards already exist; skipping seed (set FORCE_SEED=true to override)")
		return nil
	}

	activity := service.NewActivityLog(store.Activities())
	rewards := service.NewRewardService(store, nil)
	tournaments := service.NewTournamentService(store, activity, cfg.ClaimMaxAttempts)

	for _, in := range seedRewards() {
		if _, err := rewards.Create(ctx, in); err != nil {
			return fmt.Errorf("create reward %q: %w", in.Name, err)
		}
	}
	now := time.Now().UTC().Truncate(time.Hour)
	for _, st := range seedTournaments() {
		start := now.Add(st.StartsIn)
		if _, err := tournaments.Create(ctx, service.TournamentInput{
			Title:           st.Title,
			Game:            st.Game,
			Description:     st.Description,
			StartsAt:        start,
			EndsAt:          start.Add(st.Length),
			MaxParticipants: st.MaxParticipants,
			PrizePool:       st.PrizePool,
		}); err != nil {
			return fmt.Errorf("create tournament %q: %w", st.Title, err)
		}
	}

	log.Info().Int("rewards", len(seedRewards())).Int("tournaments", len(seedTournaments())).Msg("seed completed")
	return nil
}

func shouldSeed(ctx context.Context, store repository.Store) (bool, error) {
	if strings.EqualFold(os.Getenv("FORCE_SEED"), "true") {
		return true, nil
	}
	existing, err := store.Rewards().List(ctx, false)
	if err != nil {
		return false, fmt.Errorf("count rewards: %w", err)
	}
	return len(existing) == 0, nil
}

// seedAdmin creates an admin account once. Existing accounts are left alone.
func seedAdmin(ctx context.Context, store repository.Store, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}
	if _, err := store.Users().GetByEmail(ctx, email); err == nil {
		log.Info().Str("email", email).Msg("admin already exists")
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	hash, err := auth.NewBcryptHasher(0).Hash(password)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	admin := &model.User{
		ID:           uuid.NewString(),
		Username:     "admin",
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := store.Users().Create(ctx, admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	log.Info().Str("email", email).Msg("admin created")
	return nil
}

func seedRewards() []service.RewardInput {
	return []service.RewardInput{
		{Name: "Sticker Pack", Description: "Five vinyl stickers with arena artwork.", PointsRequired: 50, Stock: 500, IsActive: true},
		{Name: "Profile Frame", Description: "Animated frame for your profile avatar.", PointsRequired: 80, Stock: 1000, IsActive: true},
		{Name: "Arena T-Shirt", Description: "Cotton tee, unisex sizes.", PointsRequired: 300, Stock: 100, IsActive: true},
		{Name: "Gaming Mouse Pad", Description: "Extended 900x400 desk mat.", PointsRequired: 450, Stock: 60, IsActive: true},
		{Name: "Mechanical Keyboard", Description: "Hot-swappable 75% keyboard.", PointsRequired: 2500, Stock: 10, IsActive: true},
		{Name: "Pro Headset", Description: "Wireless headset with low-latency dongle.", PointsRequired: 3200, Stock: 5, IsActive: true},
		{Name: "Season Pass", Description: "Priority registration for every tournament this season.", PointsRequired: 5000, Stock: 3, IsActive: false},
	}
}

func seedTournaments() []seedTournament {
	return []seedTournament{
		{Title: "Weekly Rapid Cup", Game: "Chess", Description: "10+0 swiss, seven rounds.", StartsIn: 48 * time.Hour, Length: 4 * time.Hour, MaxParticipants: 64, PrizePool: 500},
		{Title: "Spring Showdown", Game: "Street Fighter 6", Description: "Double elimination bracket.", StartsIn: 7 * 24 * time.Hour, Length: 8 * time.Hour, MaxParticipants: 128, PrizePool: 2000},
		{Title: "Open Scrims", Game: "Valorant", Description: "Casual 5v5 scrims, all ranks welcome.", StartsIn: 24 * time.Hour, Length: 3 * time.Hour},
		{Title: "Community Kickoff", Game: "Rocket League", Description: "3v3 single elimination.", StartsIn: -72 * time.Hour, Length: 6 * time.Hour, MaxParticipants: 32, PrizePool: 300},
	}
}
