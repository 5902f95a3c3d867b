package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/arena-backend/internal/logging"
	"github.com/shinyyama/arena-backend/internal/service"
	"github.com/shinyyama/arena-backend/internal/storage"
)

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

// Order matters: narrower sentinels come before the ones they wrap.
var errorMappings = []errorMapping{
	{service.ErrValidation, http.StatusBadRequest, "validation_error", "Invalid request"},
	{service.ErrAlreadyJoined, http.StatusConflict, "conflict", "Already joined this tournament"},
	{service.ErrConflict, http.StatusConflict, "conflict", "The request conflicts with current state, please retry"},
	{service.ErrAuthentication, http.StatusUnauthorized, "invalid_credentials", "Invalid credentials"},
	{service.ErrExpiredToken, http.StatusUnauthorized, "token_expired", "Token has expired"},
	{service.ErrInvalidToken, http.StatusUnauthorized, "invalid_token", "Invalid token"},
	{service.ErrForbidden, http.StatusForbidden, "forbidden", "Insufficient permissions"},
	{service.ErrUserNotFound, http.StatusNotFound, "not_found", "User not found"},
	{service.ErrRewardNotFound, http.StatusNotFound, "not_found", "Reward not found"},
	{service.ErrTournamentNotFound, http.StatusNotFound, "not_found", "Tournament not found"},
	{service.ErrNotFound, http.StatusNotFound, "not_found", "Not found"},
	{service.ErrInsufficientBalance, http.StatusUnprocessableEntity, "insufficient_balance", "Not enough points for this reward"},
	{service.ErrOutOfStock, http.StatusUnprocessableEntity, "out_of_stock", "Reward is out of stock"},
	{service.ErrTournamentClosed, http.StatusUnprocessableEntity, "tournament_closed", "Tournament is not open for registration"},
	{service.ErrTournamentFull, http.StatusUnprocessableEntity, "tournament_full", "Tournament is full"},
	{service.ErrRepositoryUnavailable, http.StatusServiceUnavailable, "service_unavailable", "Service temporarily unavailable"},
	{storage.ErrDisabled, http.StatusServiceUnavailable, "service_unavailable", "Image storage is not configured"},
}

// respondError writes the JSON error body for err. Validation failures
// carry their detail; every other code uses a fixed message.
func respondError(c echo.Context, err error) error {
	for _, m := range errorMappings {
		if !errors.Is(err, m.err) {
			continue
		}
		msg := m.message
		if m.code == "validation_error" {
			msg = err.Error()
		}
		if m.status >= http.StatusInternalServerError {
			logging.FromContext(c.Request().Context()).Error().Err(err).Msg("request failed")
		}
		return writeError(c, m.status, m.code, msg)
	}
	logging.FromContext(c.Request().Context()).Error().Err(err).Msg("unhandled error")
	return writeError(c, http.StatusInternalServerError, "internal_error", "Internal server error")
}

func badRequest(c echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "validation_error", msg)
}

func unauthorized(c echo.Context) error {
	return writeError(c, http.StatusUnauthorized, "invalid_token", "Missing bearer token")
}
