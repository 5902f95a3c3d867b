package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/arena-backend/internal/middleware"
	"github.com/shinyyama/arena-backend/internal/model"
	"github.com/shinyyama/arena-backend/internal/service"
)

type TournamentHandler struct {
	svc service.TournamentService
}

func NewTournamentHandler(svc service.TournamentService) *TournamentHandler {
	return &TournamentHandler{svc: svc}
}

func queryInt(c echo.Context, name string) (int, bool) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

func (h *TournamentHandler) List(c echo.Context) error {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return badRequest(c, "invalid limit")
	}
	offset, ok := queryInt(c, "offset")
	if !ok {
		return badRequest(c, "invalid offset")
	}
	page, err := h.svc.List(c.Request().Context(), model.TournamentStatus(c.QueryParam("status")), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"items":  toTournamentList(page.Items),
		"total":  page.Total,
		"limit":  page.Limit,
		"offset": page.Offset,
	})
}

func (h *TournamentHandler) Get(c echo.Context) error {
	t, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toTournamentResponse(t))
}

func (h *TournamentHandler) Join(c echo.Context) error {
	uid := middleware.UserID(c)
	if uid == "" {
		return unauthorized(c)
	}
	t, err := h.svc.Join(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toTournamentResponse(t))
}

type createTournamentRequest struct {
	Title           string    `json:"title" validate:"required,max=120"`
	Game            string    `json:"game" validate:"required,max=120"`
	Description     string    `json:"description"`
	StartsAt        time.Time `json:"startsAt" validate:"required"`
	EndsAt          time.Time `json:"endsAt" validate:"required,gtfield=StartsAt"`
	MaxParticipants int64     `json:"maxParticipants" validate:"gte=0"`
	PrizePool       int64     `json:"prizePool" validate:"gte=0"`
}

func (h *TournamentHandler) Create(c echo.Context) error {
	var req createTournamentRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	t, err := h.svc.Create(c.Request().Context(), service.TournamentInput{
		Title:           req.Title,
		Game:            req.Game,
		Description:     req.Description,
		StartsAt:        req.StartsAt,
		EndsAt:          req.EndsAt,
		MaxParticipants: req.MaxParticipants,
		PrizePool:       req.PrizePool,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toTournamentResponse(t))
}
