// Package server assembles the HTTP surface and background runners.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/voxsense/voxsense/internal/profile"
	"github.com/voxsense/voxsense/plugin/ai/voicectx"
	apiv1 "github.com/voxsense/voxsense/server/router/api/v1"
	"github.com/voxsense/voxsense/server/runner/staleness"
	"github.com/voxsense/voxsense/server/stats"
	"github.com/voxsense/voxsense/server/timezone"
	"github.com/voxsense/voxsense/store"
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer      *echo.Echo
	contextService  *voicectx.Service
	statsCollector  *stats.Collector
	stalenessRunner *staleness.Runner
}

func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	loc, err := timezone.ParseTimezone(profile.Timezone)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse profile timezone")
	}

	config := voicectx.DefaultConfig()
	config.Location = loc
	contextService := voicectx.NewService(store, store, config)

	echoServer := echo.New()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.Use(echomw.Recover())

	s := &Server{
		Profile:        profile,
		Store:          store,
		echoServer:     echoServer,
		contextService: contextService,
		statsCollector: stats.NewCollector(store),
	}
	if profile.StalenessSweepHours > 0 {
		s.stalenessRunner = staleness.NewRunner(store, contextService,
			time.Duration(profile.StalenessSweepHours)*time.Hour)
	}

	echoServer.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})

	apiV1Service := apiv1.NewAPIV1Service(profile, store, contextService, s.statsCollector)
	apiV1Service.RegisterRoutes(echoServer)

	return s, nil
}

// Start launches the HTTP listener and the staleness sweep. Both stop
// when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.statsCollector.Start(ctx)
	if s.stalenessRunner != nil {
		go s.stalenessRunner.Run(ctx)
	}

	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	slog.Info("server listening", "address", address, "version", s.Profile.Version)
	if err := s.echoServer.Start(address); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "failed to start echo server")
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shut down echo server", "error", err)
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}
	slog.Info("server shut down")
}
