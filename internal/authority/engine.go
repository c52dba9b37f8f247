// Package authority decides whether a user may act on a flight right now.
package authority

import (
	"time"

	"github.com/Domenick1991/skydispatch/internal/airports"
	"github.com/Domenick1991/skydispatch/internal/domain"
	"github.com/Domenick1991/skydispatch/internal/geo"
	"github.com/Domenick1991/skydispatch/internal/zones"
)

// Occupancy reports whether a zone currently has a dispatcher.
type Occupancy interface {
	IsOccupied(zoneID string) bool
}

type Engine struct {
	registry *zones.Registry
	occupied Occupancy
	airports airports.Lookup
}

func NewEngine(registry *zones.Registry, occupied Occupancy, lookup airports.Lookup) *Engine {
	return &Engine{registry: registry, occupied: occupied, airports: lookup}
}

// Position derives where the flight is at now: the origin before departure,
// the destination after arrival, and the great-circle point in between.
// It fails when either airport is unknown.
func Position(f domain.Flight, lookup airports.Lookup, now time.Time) (geo.Point, bool) {
	origin, ok := lookup.Get(f.FromICAO)
	if !ok {
		return geo.Point{}, false
	}
	destination, ok := lookup.Get(f.ToICAO)
	if !ok {
		return geo.Point{}, false
	}
	switch f.Status(now) {
	case domain.FlightStatusScheduled:
		return airports.Point(origin), true
	case domain.FlightStatusCompleted:
		return airports.Point(destination), true
	}
	return geo.Interpolate(airports.Point(origin), airports.Point(destination), f.Progress(now)), true
}

// CanManage grants admins everything. A dispatcher needs a zone whose circle
// contains the flight's live position and no occupied sub-zone covering the
// same position.
func (e *Engine) CanManage(actor domain.Session, f domain.Flight, now time.Time) bool {
	if actor.IsAdmin() {
		return true
	}
	zoneID := actor.Zone()
	if zoneID == "" {
		return false
	}
	zone, ok := e.registry.Get(zoneID)
	if !ok {
		return false
	}
	pos, ok := Position(f, e.airports, now)
	if !ok || !zones.Contains(zone, pos) {
		return false
	}
	_, shadowed := e.registry.ShadowedBy(zone.ID, pos, e.occupied.IsOccupied)
	return !shadowed
}
