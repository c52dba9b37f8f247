package api

import (
	"net/http"
	"strings"

	"github.com/Domenick1991/skydispatch/internal/domain"
	"github.com/Domenick1991/skydispatch/internal/zones"
	"github.com/gin-gonic/gin"
)

type ZoneLister interface {
	Overview() []zones.ZoneStatus
}

type AirportSearcher interface {
	Search(query string) []domain.Airport
}

// DirectoryHandler serves the read-only reference data.
type DirectoryHandler struct {
	zones    ZoneLister
	airports AirportSearcher
}

func NewDirectoryHandler(zones ZoneLister, airports AirportSearcher) *DirectoryHandler {
	return &DirectoryHandler{zones: zones, airports: airports}
}

func (h *DirectoryHandler) Register(router *gin.RouterGroup) {
	router.GET("/health", func(c *gin.Context) { ok(c) })
	router.GET("/zones", h.listZones)
	router.GET("/airports/search", h.searchAirports)
}

func (h *DirectoryHandler) listZones(c *gin.Context) {
	c.JSON(http.StatusOK, h.zones.Overview())
}

func (h *DirectoryHandler) searchAirports(c *gin.Context) {
	c.JSON(http.StatusOK, h.airports.Search(strings.TrimSpace(c.Query("q"))))
}
