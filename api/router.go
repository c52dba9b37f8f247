package api

import (
	"github.com/Domenick1991/skydispatch/internal/service/audit"
	"github.com/Domenick1991/skydispatch/internal/service/auth"
	"github.com/Domenick1991/skydispatch/internal/service/flights"
	"github.com/Domenick1991/skydispatch/internal/service/transfer"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Deps struct {
	Auth      auth.AuthUseCase
	Flights   flights.FlightUseCase
	Transfers transfer.TransferUseCase
	Audit     audit.AuditUseCase
	Zones     ZoneLister
	Airports  AirportSearcher
	// Hub is optional; without it /ws is not mounted.
	Hub     Streamer
	Swagger bool
	Log     *zap.Logger
}

func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(d.Log.Named("http")))

	authn := requireAuth(d.Auth)
	root := router.Group("")

	NewDirectoryHandler(d.Zones, d.Airports).Register(root)
	NewAuthHandler(d.Auth).Register(router.Group("/auth"), authn)

	fh := NewFlightHandler(d.Flights, d.Transfers)
	fh.Register(router.Group("/flights"), authn)
	fh.RegisterTransfers(router.Group("/transfers"), authn)

	NewDispatcherHandler(d.Auth).Register(router.Group("/dispatchers"), authn)
	NewLogHandler(d.Audit).Register(router.Group("/logs"), authn)

	if d.Hub != nil {
		router.GET("/ws", serveWS(d.Auth, d.Hub))
	}
	if d.Swagger {
		registerDocs(router)
	}
	return router
}
