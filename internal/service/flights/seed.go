package flights

import (
	"context"
	"time"

	"github.com/Domenick1991/skydispatch/internal/domain"
	"github.com/google/uuid"
)

type seedFlight struct {
	callsign string
	from, to string
	offset   time.Duration
	duration time.Duration
	phase    string
}

var demoFlights = []seedFlight{
	{"AAL102", "KJFK", "KLAX", -120 * time.Minute, 360 * time.Minute, "Cruise"},
	{"BAW35", "EGLL", "KJFK", -90 * time.Minute, 420 * time.Minute, "Cruise"},
	{"DLH401", "EDDF", "KJFK", -45 * time.Minute, 480 * time.Minute, "Climb"},
	{"AFR22", "LFPG", "VHHH", -30 * time.Minute, 720 * time.Minute, "Cruise"},
	{"UAE202", "OMDB", "RJTT", 30 * time.Minute, 540 * time.Minute, "Preparation"},
	{"QTR17", "OTHH", "EGLL", 60 * time.Minute, 420 * time.Minute, "Preparation"},
	{"SIA25", "WSSS", "KLAX", 15 * time.Minute, 900 * time.Minute, "Climb"},
	{"JAL44", "RJAA", "KLAX", -10 * time.Minute, 600 * time.Minute, "Cruise"},
	{"ANA215", "RJTT", "RJAA", 5 * time.Minute, 75 * time.Minute, "Preparation"},
	{"KLM605", "EHAM", "LFPG", -20 * time.Minute, 80 * time.Minute, "Descent"},
}

// conflictFlights cross the same airspace to exercise zone authority.
var conflictFlights = []seedFlight{
	{"CNF101", "EGLL", "EDDF", -20 * time.Minute, 90 * time.Minute, "Cruise"},
	{"CNF202", "EHAM", "LFPG", -18 * time.Minute, 95 * time.Minute, "Cruise"},
	{"CNF303", "EDDF", "EGLL", -15 * time.Minute, 85 * time.Minute, "Cruise"},
}

// Seed fills an empty flight list with demo traffic and then adds the
// conflict flights that are missing. Seeds whose airports are unknown are
// skipped. It returns the number of flights added.
func (s *FlightService) Seed(ctx context.Context) (int, error) {
	now := s.now().UTC()
	added := 0

	_, err := s.store.Mutate(ctx, now, func(flights []domain.Flight) ([]domain.Flight, error) {
		if len(flights) == 0 {
			for _, sf := range demoFlights {
				f, ok := s.seedToFlight(sf, now)
				if !ok {
					continue
				}
				if sf.phase == domain.Phases[0] {
					zero := 0.0
					f.Speed, f.Altitude = &zero, &zero
					f.AwaitingATC = true
				} else {
					speed, altitude := 420.0, 33000.0
					f.Speed, f.Altitude = &speed, &altitude
				}
				flights = append(flights, f)
				added++
			}
		}

		for _, sf := range conflictFlights {
			if hasCallsign(flights, sf.callsign) {
				continue
			}
			f, ok := s.seedToFlight(sf, now)
			if !ok {
				continue
			}
			speed, altitude := 430.0, 35000.0
			f.Speed, f.Altitude = &speed, &altitude
			flights = append(flights, f)
			added++
		}
		return flights, nil
	})
	return added, err
}

func (s *FlightService) seedToFlight(sf seedFlight, now time.Time) (domain.Flight, bool) {
	if _, ok := s.airports.Get(sf.from); !ok {
		return domain.Flight{}, false
	}
	if _, ok := s.airports.Get(sf.to); !ok {
		return domain.Flight{}, false
	}
	departure := now.Add(sf.offset)
	return domain.Flight{
		ID:           uuid.NewString(),
		Callsign:     sf.callsign,
		FromICAO:     sf.from,
		ToICAO:       sf.to,
		DepartureUTC: departure,
		ArrivalUTC:   departure.Add(sf.duration),
		Phase:        sf.phase,
		Priority:     domain.PriorityNormal,
		CreatedAt:    now,
	}, true
}

func hasCallsign(flights []domain.Flight, callsign string) bool {
	for _, f := range flights {
		if f.Callsign == callsign {
			return true
		}
	}
	return false
}
