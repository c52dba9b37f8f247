package zones

import (
	"github.com/Domenick1991/skydispatch/internal/airports"
	"github.com/Domenick1991/skydispatch/internal/domain"
	"github.com/Domenick1991/skydispatch/internal/geo"
)

// Registry is the static zone topology. It is built once and never mutated.
type Registry struct {
	zones    []domain.Zone
	byID     map[string]domain.Zone
	children map[string][]string
}

// Build anchors definitions to airport coordinates. Definitions whose
// airports are missing from the dataset are dropped, and a zone whose parent
// was dropped becomes a root. A parent cycle is cut at its first zone in
// definition order, which becomes a root.
func Build(defs []Definition, lookup airports.Lookup, defaultRadiusKm float64) *Registry {
	if defaultRadiusKm <= 0 {
		defaultRadiusKm = DefaultRadiusKm
	}

	r := &Registry{byID: make(map[string]domain.Zone), children: make(map[string][]string)}
	for _, def := range defs {
		zone, ok := anchor(def, lookup, defaultRadiusKm)
		if !ok {
			continue
		}
		if _, dup := r.byID[zone.ID]; dup {
			continue
		}
		r.zones = append(r.zones, zone)
		r.byID[zone.ID] = zone
	}

	for i, zone := range r.zones {
		if zone.ParentID == nil {
			continue
		}
		if _, ok := r.byID[*zone.ParentID]; !ok || r.leadsBackTo(zone.ID) {
			r.makeRoot(i)
		}
	}

	for _, zone := range r.zones {
		if zone.ParentID != nil {
			r.children[*zone.ParentID] = append(r.children[*zone.ParentID], zone.ID)
		}
	}
	return r
}

// leadsBackTo reports whether the parent chain above id returns to id.
// Chains entering a cycle elsewhere stop at the first repeated zone.
func (r *Registry) leadsBackTo(id string) bool {
	seen := map[string]bool{id: true}
	parent := r.byID[id].ParentID
	for parent != nil {
		if *parent == id {
			return true
		}
		if seen[*parent] {
			return false
		}
		seen[*parent] = true
		next, ok := r.byID[*parent]
		if !ok {
			return false
		}
		parent = next.ParentID
	}
	return false
}

func (r *Registry) makeRoot(i int) {
	zone := r.zones[i]
	zone.ParentID = nil
	r.zones[i] = zone
	r.byID[zone.ID] = zone
}

func anchor(def Definition, lookup airports.Lookup, defaultRadiusKm float64) (domain.Zone, bool) {
	zone := domain.Zone{
		ID:       def.ID,
		Name:     def.Name,
		Type:     def.Type,
		Level:    def.Level,
		RadiusKm: def.RadiusKm,
	}
	if zone.ID == "" {
		return domain.Zone{}, false
	}
	if zone.Type == "" {
		zone.Type = domain.ZoneTypeCity
	}
	if zone.Level == "" {
		zone.Level = domain.ZoneLevelCity
	}
	if zone.RadiusKm <= 0 {
		zone.RadiusKm = defaultRadiusKm
	}
	if def.ParentID != "" {
		parent := def.ParentID
		zone.ParentID = &parent
	}

	if len(def.ICAOs) > 0 {
		points := make([]geo.Point, 0, len(def.ICAOs))
		for _, icao := range def.ICAOs {
			if a, ok := lookup.Get(icao); ok {
				points = append(points, airports.Point(a))
			}
		}
		center, ok := geo.Centroid(points)
		if !ok {
			return domain.Zone{}, false
		}
		zone.Lat, zone.Lon = center.Lat, center.Lon
		return zone, true
	}

	a, ok := lookup.Get(def.ICAO)
	if !ok {
		return domain.Zone{}, false
	}
	zone.Lat, zone.Lon = a.Lat, a.Lon
	zone.ICAO = a.ICAO
	return zone, true
}

// List returns the zones in definition order.
func (r *Registry) List() []domain.Zone {
	out := make([]domain.Zone, len(r.zones))
	copy(out, r.zones)
	return out
}

func (r *Registry) Get(id string) (domain.Zone, bool) {
	z, ok := r.byID[id]
	return z, ok
}

// Children returns the direct sub-zones of id.
func (r *Registry) Children(id string) []domain.Zone {
	ids := r.children[id]
	out := make([]domain.Zone, 0, len(ids))
	for _, cid := range ids {
		out = append(out, r.byID[cid])
	}
	return out
}

// Contains reports whether p lies inside the zone circle.
func Contains(z domain.Zone, p geo.Point) bool {
	return geo.InCircle(p, geo.Point{Lat: z.Lat, Lon: z.Lon}, z.RadiusKm)
}

// ShadowedBy returns the most specific occupied descendant of zoneID that
// contains p. A zone is shadowed when any of its sub-zones containing p is
// held by a dispatcher.
func (r *Registry) ShadowedBy(zoneID string, p geo.Point, occupied func(zoneID string) bool) (domain.Zone, bool) {
	var best domain.Zone
	found := false
	var walk func(id string)
	walk = func(id string) {
		for _, child := range r.Children(id) {
			if !Contains(child, p) {
				continue
			}
			if occupied(child.ID) {
				best, found = child, true
			}
			walk(child.ID)
		}
	}
	walk(zoneID)
	return best, found
}
