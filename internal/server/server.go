package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shinyyama/arena-backend/internal/auth"
	"github.com/shinyyama/arena-backend/internal/config"
	"github.com/shinyyama/arena-backend/internal/handler"
	appmw "github.com/shinyyama/arena-backend/internal/middleware"
	"github.com/shinyyama/arena-backend/internal/model"
	"github.com/shinyyama/arena-backend/internal/repository"
	"github.com/shinyyama/arena-backend/internal/service"
	"github.com/shinyyama/arena-backend/internal/storage"
)

type Server struct {
	e           *echo.Echo
	tournaments service.TournamentService
}

func New(cfg *config.Config, store repository.Store, images storage.ImageStore) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewRequestValidator()
	e.Use(middleware.Recover())
	e.Use(appmw.RequestLogger)
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization", appmw.TraceIDHeader},
		ExposeHeaders:    []string{appmw.TraceIDHeader},
		AllowCredentials: true,
		AllowOriginFunc:  allowOrigin(cfg.AllowedOrigins),
	}))

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
	activity := service.NewActivityLog(store.Activities())

	authSvc := service.NewAuthService(store.Users(), activity, tokens, auth.NewBcryptHasher(0), cfg.WelcomeBonus)
	claimSvc := service.NewClaimService(store, activity, cfg.ClaimMaxAttempts)
	pointsSvc := service.NewPointsService(store.Users(), activity, cfg.ClaimMaxAttempts)
	rewardSvc := service.NewRewardService(store, images)
	tournamentSvc := service.NewTournamentService(store, activity, cfg.ClaimMaxAttempts)

	authHandler := handler.NewAuthHandler(authSvc)
	rewardHandler := handler.NewRewardHandler(rewardSvc, claimSvc)
	tournamentHandler := handler.NewTournamentHandler(tournamentSvc)
	accountHandler := handler.NewAccountHandler(claimSvc, activity, pointsSvc, tournamentSvc)

	authMw := appmw.NewAuthMiddleware(tokens)
	adminOnly := appmw.RequireRole(model.RoleAdmin)
	staff := appmw.RequireRole(model.RoleAdmin, model.RoleModerator)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"ok":         "true",
			"git_sha":    cfg.GitSHA,
			"build_time": cfg.BuildTime,
		})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/auth/me", authHandler.Me, authMw.RequireAuth)

	api.GET("/rewards", rewardHandler.List)
	api.GET("/rewards/:id", rewardHandler.Get)
	api.POST("/rewards/:id/claim", rewardHandler.Claim, authMw.RequireAuth)

	api.GET("/tournaments", tournamentHandler.List)
	api.GET("/tournaments/:id", tournamentHandler.Get)
	api.POST("/tournaments/:id/join", tournamentHandler.Join, authMw.RequireAuth)

	me := api.Group("/me", authMw.RequireAuth)
	me.GET("/claims", accountHandler.Claims)
	me.GET("/activity", accountHandler.Activity)
	me.GET("/points", accountHandler.Points)
	me.GET("/tournaments", accountHandler.Tournaments)

	admin := api.Group("/admin", authMw.RequireAuth)
	admin.POST("/rewards", rewardHandler.Create, adminOnly)
	admin.PATCH("/rewards/:id", rewardHandler.Update, adminOnly)
	admin.POST("/rewards/:id/image", rewardHandler.UploadImage, adminOnly)
	admin.POST("/tournaments", tournamentHandler.Create, adminOnly)
	admin.POST("/users/:id/points", accountHandler.Award, staff)

	return &Server{e: e, tournaments: tournamentSvc}
}

// allowOrigin admits local development origins, *.vercel.app and the
// configured list.
func allowOrigin(allowed []string) func(origin string) (bool, error) {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o = strings.TrimRight(strings.ToLower(strings.TrimSpace(o)), "/"); o != "" {
			set[o] = struct{}{}
		}
	}
	return func(origin string) (bool, error) {
		low := strings.ToLower(origin)
		if _, ok := set[low]; ok {
			return true, nil
		}
		if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
			strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
			return true, nil
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false, nil
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return false, nil
		}
		if strings.HasSuffix(u.Hostname(), ".vercel.app") {
			return true, nil
		}
		return false, nil
	}
}

// Tournaments exposes the tournament service for the status scheduler.
func (s *Server) Tournaments() service.TournamentService {
	return s.tournaments
}

func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}
