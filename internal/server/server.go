// Package server exposes the keep-alive page and the mini-app usage beacon.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

// Server is the HTTP server (Echo) the hosting platform pings to keep the
// bot alive.
type Server struct {
	echo *echo.Echo
	addr string
	log  zerolog.Logger
}

// Pinger checks that the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// OpenRecorder records a deduplicated app open.
type OpenRecorder interface {
	RecordOpen(ctx context.Context, userID int64, now time.Time) (bool, error)
}

func New(log zerolog.Logger, addr string, store Pinger, tracker OpenRecorder) *Server {
	if addr == "" {
		addr = ":8080"
	}
	log = log.With().Str("comp", "server").Logger()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Debug().Str("method", v.Method).Str("uri", v.URI).Int("status", v.Status).
				Dur("latency", v.Latency).Str("remote_ip", c.RealIP()).Msg("request")
			return nil
		},
	}))

	h := &handlers{store: store, tracker: tracker, log: log, now: time.Now}
	h.Register(e)

	return &Server{echo: e, addr: addr, log: log}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until Stop is called.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.addr).Msg("http server listening")
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server using the given context.
func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
