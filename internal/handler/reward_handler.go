package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/arena-backend/internal/middleware"
	"github.com/shinyyama/arena-backend/internal/service"
)

const maxImageBytes = 5 << 20

type RewardHandler struct {
	rewards service.RewardService
	claims  service.ClaimService
}

func NewRewardHandler(rewards service.RewardService, claims service.ClaimService) *RewardHandler {
	return &RewardHandler{rewards: rewards, claims: claims}
}

func (h *RewardHandler) List(c echo.Context) error {
	list, err := h.rewards.List(c.Request().Context(), true)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]RewardResponse, 0, len(list))
	for i := range list {
		out = append(out, toRewardResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"items": out})
}

func (h *RewardHandler) Get(c echo.Context) error {
	r, err := h.rewards.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	if !r.IsActive {
		return respondError(c, service.ErrRewardNotFound)
	}
	return c.JSON(http.StatusOK, toRewardResponse(r))
}

type claimResponse struct {
	Claim           ClaimResponse `json:"claim"`
	RemainingPoints int64         `json:"remainingPoints"`
}

func (h *RewardHandler) Claim(c echo.Context) error {
	uid := middleware.UserID(c)
	if uid == "" {
		return unauthorized(c)
	}
	res, err := h.claims.ClaimReward(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, claimResponse{
		Claim:           toClaimResponse(res.Claim, res.Reward),
		RemainingPoints: res.RemainingPoints,
	})
}

type createRewardRequest struct {
	Name           string `json:"name" validate:"required,max=120"`
	Description    string `json:"description"`
	PointsRequired int64  `json:"pointsRequired" validate:"gt=0"`
	Stock          int64  `json:"stock" validate:"gte=0"`
	IsActive       *bool  `json:"isActive"`
}

func (h *RewardHandler) Create(c echo.Context) error {
	var req createRewardRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	r, err := h.rewards.Create(c.Request().Context(), service.RewardInput{
		Name:           req.Name,
		Description:    req.Description,
		PointsRequired: req.PointsRequired,
		Stock:          req.Stock,
		IsActive:       active,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toRewardResponse(r))
}

type updateRewardRequest struct {
	Name           *string `json:"name" validate:"omitempty,max=120"`
	Description    *string `json:"description"`
	PointsRequired *int64  `json:"pointsRequired" validate:"omitempty,gt=0"`
	Stock          *int64  `json:"stock" validate:"omitempty,gte=0"`
	IsActive       *bool   `json:"isActive"`
}

func (h *RewardHandler) Update(c echo.Context) error {
	var req updateRewardRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	r, err := h.rewards.Update(c.Request().Context(), c.Param("id"), service.RewardPatch{
		Name:           req.Name,
		Description:    req.Description,
		PointsRequired: req.PointsRequired,
		Stock:          req.Stock,
		IsActive:       req.IsActive,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toRewardResponse(r))
}

func (h *RewardHandler) UploadImage(c echo.Context) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return badRequest(c, "image file is required")
	}
	if fh.Size > maxImageBytes {
		return badRequest(c, "image exceeds 5MB")
	}
	f, err := fh.Open()
	if err != nil {
		return badRequest(c, "cannot read image")
	}
	defer f.Close()

	r, err := h.rewards.AttachImage(c.Request().Context(), c.Param("id"), fh.Filename, fh.Header.Get("Content-Type"), f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toRewardResponse(r))
}
