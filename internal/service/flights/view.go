package flights

import (
	"time"

	"github.com/Domenick1991/skydispatch/internal/airports"
	"github.com/Domenick1991/skydispatch/internal/domain"
)

// View is the flight as returned to clients: stored fields plus values
// derived at response time.
type View struct {
	domain.Flight
	Status       domain.FlightStatus `json:"status"`
	Progress     float64             `json:"progress"`
	DepartureMsk string              `json:"departureMsk"`
	ArrivalMsk   string              `json:"arrivalMsk"`
	Origin       *domain.Airport     `json:"origin"`
	Destination  *domain.Airport     `json:"destination"`
}

func NewView(f domain.Flight, lookup airports.Lookup, now time.Time) View {
	if f.Phase == "" {
		f.Phase = domain.Phases[0]
	}
	f.Priority = domain.NormalizePriority(string(f.Priority))

	v := View{
		Flight:       f,
		Status:       f.Status(now),
		Progress:     f.Progress(now),
		DepartureMsk: domain.FormatMSK(f.DepartureUTC),
		ArrivalMsk:   domain.FormatMSK(f.ArrivalUTC),
	}
	if a, ok := lookup.Get(f.FromICAO); ok {
		v.Origin = &a
	}
	if a, ok := lookup.Get(f.ToICAO); ok {
		v.Destination = &a
	}
	return v
}

func NewViews(list []domain.Flight, lookup airports.Lookup, now time.Time) []View {
	out := make([]View, 0, len(list))
	for _, f := range list {
		out = append(out, NewView(f, lookup, now))
	}
	return out
}
