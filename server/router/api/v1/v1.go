package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/voxsense/voxsense/internal/profile"
	"github.com/voxsense/voxsense/plugin/ai/voicectx"
	"github.com/voxsense/voxsense/server/middleware"
	"github.com/voxsense/voxsense/server/stats"
	"github.com/voxsense/voxsense/store"
)

// APIV1Service exposes the voice context engine over HTTP.
type APIV1Service struct {
	Profile        *profile.Profile
	Store          *store.Store
	ContextService *voicectx.Service
	Stats          *stats.Collector

	rateLimiter *middleware.RateLimiter
}

func NewAPIV1Service(profile *profile.Profile, store *store.Store, contextService *voicectx.Service, collector *stats.Collector) *APIV1Service {
	return &APIV1Service{
		Profile:        profile,
		Store:          store,
		ContextService: contextService,
		Stats:          collector,
		rateLimiter:    middleware.NewRateLimiter(10, 20),
	}
}

// RegisterRoutes wires the v1 routes onto the given echo instance.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo) {
	apiGroup := echoServer.Group("/api/v1")
	apiGroup.Use(echomw.CORS())
	apiGroup.Use(s.rateLimiter.Echo())

	ownerGroup := apiGroup.Group("/owners/:owner")
	ownerGroup.GET("/context", s.GetCombinedContext)
	ownerGroup.GET("/context/today", s.GetTodayContext)
	ownerGroup.GET("/context/relevant", s.GetRelevantContext)
	ownerGroup.GET("/context/staleness", s.GetStaleness)

	apiGroup.POST("/summaries", s.UpsertSummary)
	apiGroup.GET("/stats", s.GetStats)
}

// GetStats returns local usage statistics.
// GET /api/v1/stats
func (s *APIV1Service) GetStats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Stats.GetStats())
}
