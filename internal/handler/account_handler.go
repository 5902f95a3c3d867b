package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/arena-backend/internal/middleware"
	"github.com/shinyyama/arena-backend/internal/service"
)

// AccountHandler serves the /api/me endpoints and the admin points award.
type AccountHandler struct {
	claims      service.ClaimService
	activity    service.ActivityLog
	points      service.PointsService
	tournaments service.TournamentService
}

func NewAccountHandler(claims service.ClaimService, activity service.ActivityLog, points service.PointsService, tournaments service.TournamentService) *AccountHandler {
	return &AccountHandler{claims: claims, activity: activity, points: points, tournaments: tournaments}
}

func (h *AccountHandler) Claims(c echo.Context) error {
	uid := middleware.UserID(c)
	if uid == "" {
		return unauthorized(c)
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return badRequest(c, "invalid limit")
	}
	list, err := h.claims.ListClaims(c.Request().Context(), uid, limit)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]ClaimResponse, 0, len(list))
	for _, cl := range list {
		out = append(out, toClaimResponse(cl.Claim, cl.Reward))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"items": out})
}

func (h *AccountHandler) Activity(c echo.Context) error {
	uid := middleware.UserID(c)
	if uid == "" {
		return unauthorized(c)
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return badRequest(c, "invalid limit")
	}
	list, err := h.activity.List(c.Request().Context(), uid, limit)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]ActivityResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toActivityResponse(a))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"items": out})
}

func (h *AccountHandler) Points(c echo.Context) error {
	uid := middleware.UserID(c)
	if uid == "" {
		return unauthorized(c)
	}
	balance, err := h.points.Balance(c.Request().Context(), uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"points": balance})
}

func (h *AccountHandler) Tournaments(c echo.Context) error {
	uid := middleware.UserID(c)
	if uid == "" {
		return unauthorized(c)
	}
	list, err := h.tournaments.ListJoined(c.Request().Context(), uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"items": toTournamentList(list)})
}

type awardRequest struct {
	Amount int64  `json:"amount" validate:"gt=0"`
	Reason string `json:"reason" validate:"max=200"`
}

func (h *AccountHandler) Award(c echo.Context) error {
	var req awardRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	balance, err := h.points.Award(c.Request().Context(), c.Param("id"), req.Amount, req.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"userId": c.Param("id"), "points": balance})
}
