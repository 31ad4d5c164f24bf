package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type handlers struct {
	store   Pinger
	tracker OpenRecorder
	log     zerolog.Logger
	now     func() time.Time
}

type trackRequest struct {
	UserID int64 `json:"user_id"`
}

func (h *handlers) Register(e *echo.Echo) {
	e.GET("/", h.Home)
	e.GET("/healthz", h.Health)
	e.POST("/api/track", h.Track)
}

func (h *handlers) Home(c echo.Context) error {
	return c.String(http.StatusOK, "Bot is Online")
}

func (h *handlers) Health(c echo.Context) error {
	if err := h.store.Ping(c.Request().Context()); err != nil {
		h.log.Warn().Err(err).Msg("health check")
		return echo.NewHTTPError(http.StatusServiceUnavailable, "store unavailable")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Track records a mini-app open for the user id given in the JSON body or
// the user_id query parameter. Repeated opens inside the dedup window are
// acknowledged the same way as new ones.
func (h *handlers) Track(c echo.Context) error {
	var req trackRequest
	if q := c.QueryParam("user_id"); q != "" {
		id, err := strconv.ParseInt(q, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid user_id")
		}
		req.UserID = id
	} else if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.UserID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	if _, err := h.tracker.RecordOpen(c.Request().Context(), req.UserID, h.now()); err != nil {
		h.log.Error().Err(err).Int64("user_id", req.UserID).Msg("record app open")
		return echo.NewHTTPError(http.StatusInternalServerError, "could not record open")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "success"})
}
