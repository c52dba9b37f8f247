package flights

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/skydispatch/internal/airports"
	"github.com/Domenick1991/skydispatch/internal/domain"
	"github.com/Domenick1991/skydispatch/internal/service/audit"
	"github.com/google/uuid"
)

type FlightUseCase interface {
	List(ctx context.Context) ([]View, error)
	Create(ctx context.Context, actor domain.Session, input Input) (View, error)
	Update(ctx context.Context, actor domain.Session, id string, input Input) (View, error)
	Delete(ctx context.Context, actor domain.Session, id string) error
	SetLock(ctx context.Context, actor domain.Session, id string, locked bool) (View, error)
}

// Authority decides whether actor may change f at now.
type Authority interface {
	CanManage(actor domain.Session, f domain.Flight, now time.Time) bool
}

// Input is the editable part of a flight. Pointer fields keep their current
// value on update when omitted.
type Input struct {
	Callsign     string   `json:"callsign"`
	FromICAO     string   `json:"fromIcao"`
	ToICAO       string   `json:"toIcao"`
	DepartureMsk string   `json:"departureMsk"`
	ArrivalMsk   string   `json:"arrivalMsk"`
	Phase        string   `json:"phase"`
	Speed        *float64 `json:"speed"`
	Altitude     *float64 `json:"altitude"`
	AwaitingATC  *bool    `json:"awaitingAtc"`
	Priority     *string  `json:"priority"`
}

type FlightService struct {
	store     *Store
	airports  airports.Lookup
	authority Authority
	audit     audit.Recorder
	now       func() time.Time
}

type FlightServiceOption func(*FlightService)

func WithClock(now func() time.Time) FlightServiceOption {
	return func(s *FlightService) {
		s.now = now
	}
}

func NewFlightService(store *Store, lookup airports.Lookup, authority Authority, recorder audit.Recorder, opts ...FlightServiceOption) *FlightService {
	s := &FlightService{
		store:     store,
		airports:  lookup,
		authority: authority,
		audit:     recorder,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FlightService) List(ctx context.Context) ([]View, error) {
	now := s.now().UTC()
	list, err := s.store.Snapshot(ctx, now)
	if err != nil {
		return nil, err
	}
	return NewViews(list, s.airports, now), nil
}

func (s *FlightService) Create(ctx context.Context, actor domain.Session, input Input) (View, error) {
	now := s.now().UTC()

	route, err := s.validate(input)
	if err != nil {
		return View{}, err
	}

	phase := input.Phase
	if domain.PhaseIndex(phase) < 0 {
		phase = domain.Phases[0]
	}
	priority := domain.PriorityNormal
	if input.Priority != nil {
		priority = domain.NormalizePriority(*input.Priority)
	}
	ownerID, ownerName := actor.UserID, actor.Username

	flight := domain.Flight{
		ID:           uuid.NewString(),
		Callsign:     route.callsign,
		FromICAO:     route.from,
		ToICAO:       route.to,
		DepartureUTC: route.departure,
		ArrivalUTC:   route.arrival,
		Phase:        phase,
		Speed:        input.Speed,
		Altitude:     input.Altitude,
		AwaitingATC:  input.AwaitingATC != nil && *input.AwaitingATC,
		Priority:     priority,
		OwnerID:      &ownerID,
		OwnerName:    &ownerName,
		CreatedAt:    now,
	}

	_, err = s.store.Mutate(ctx, now, func(flights []domain.Flight) ([]domain.Flight, error) {
		if domain.IsCallsignTaken(flight.Callsign, flights, now, "") {
			return nil, domain.ErrCallsignTaken
		}
		return append(flights, flight), nil
	})
	if err != nil {
		return View{}, err
	}

	s.audit.Record(ctx, domain.ActorEntry(actor, now, "flight_create", "flight", flight.ID,
		fmt.Sprintf("Created flight %s (%s → %s)", flight.Callsign, flight.FromICAO, flight.ToICAO)))
	return NewView(flight, s.airports, now), nil
}

func (s *FlightService) Update(ctx context.Context, actor domain.Session, id string, input Input) (View, error) {
	now := s.now().UTC()

	var updated domain.Flight
	_, err := s.store.Mutate(ctx, now, func(flights []domain.Flight) ([]domain.Flight, error) {
		idx := Find(flights, id)
		if idx < 0 {
			return nil, domain.ErrNotFound
		}
		current := flights[idx]
		if err := s.checkEditable(actor, current, now); err != nil {
			return nil, err
		}

		route, err := s.validate(input)
		if err != nil {
			return nil, err
		}
		if domain.IsCallsignTaken(route.callsign, flights, now, id) {
			return nil, domain.ErrCallsignTaken
		}

		updated = current
		updated.Callsign = route.callsign
		updated.FromICAO = route.from
		updated.ToICAO = route.to
		updated.DepartureUTC = route.departure
		updated.ArrivalUTC = route.arrival
		if domain.PhaseIndex(input.Phase) >= 0 {
			updated.Phase = input.Phase
		}
		if input.Speed != nil {
			updated.Speed = input.Speed
		}
		if input.Altitude != nil {
			updated.Altitude = input.Altitude
		}
		if input.AwaitingATC != nil {
			updated.AwaitingATC = *input.AwaitingATC
		}
		if input.Priority != nil {
			updated.Priority = domain.NormalizePriority(*input.Priority)
		} else {
			updated.Priority = domain.NormalizePriority(string(current.Priority))
		}
		// неназначенный рейс забирает диспетчер, который его правит
		if updated.OwnerID == nil && !actor.IsAdmin() {
			ownerID, ownerName := actor.UserID, actor.Username
			updated.OwnerID, updated.OwnerName = &ownerID, &ownerName
		}

		flights[idx] = updated
		return flights, nil
	})
	if err != nil {
		return View{}, err
	}

	entry := domain.ActorEntry(actor, now, "flight_update", "flight", updated.ID, "Updated flight "+updated.Callsign)
	entry.Diff = map[string]any{
		"fromIcao":     updated.FromICAO,
		"toIcao":       updated.ToICAO,
		"departureUtc": updated.DepartureUTC,
		"arrivalUtc":   updated.ArrivalUTC,
		"phase":        updated.Phase,
		"speed":        updated.Speed,
		"altitude":     updated.Altitude,
		"priority":     updated.Priority,
		"awaitingAtc":  updated.AwaitingATC,
	}
	s.audit.Record(ctx, entry)
	return NewView(updated, s.airports, now), nil
}

func (s *FlightService) Delete(ctx context.Context, actor domain.Session, id string) error {
	now := s.now().UTC()

	var removed domain.Flight
	_, err := s.store.Mutate(ctx, now, func(flights []domain.Flight) ([]domain.Flight, error) {
		idx := Find(flights, id)
		if idx < 0 {
			return nil, domain.ErrNotFound
		}
		removed = flights[idx]
		if err := s.checkEditable(actor, removed, now); err != nil {
			return nil, err
		}
		return append(flights[:idx:idx], flights[idx+1:]...), nil
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, domain.ActorEntry(actor, now, "flight_delete", "flight", removed.ID, "Deleted flight "+removed.Callsign))
	return nil
}

// SetLock toggles the admin lock. Callers must ensure actor is an admin.
func (s *FlightService) SetLock(ctx context.Context, actor domain.Session, id string, locked bool) (View, error) {
	if !actor.IsAdmin() {
		return View{}, domain.ErrForbidden
	}
	now := s.now().UTC()

	var updated domain.Flight
	_, err := s.store.Mutate(ctx, now, func(flights []domain.Flight) ([]domain.Flight, error) {
		idx := Find(flights, id)
		if idx < 0 {
			return nil, domain.ErrNotFound
		}
		updated = flights[idx]
		updated.IsLocked = locked
		updated.LockedBy = nil
		if locked {
			by := actor.Username
			updated.LockedBy = &by
		}
		flights[idx] = updated
		return flights, nil
	})
	if err != nil {
		return View{}, err
	}

	action, verb := "flight_unlock", "Unlocked"
	if locked {
		action, verb = "flight_lock", "Locked"
	}
	s.audit.Record(ctx, domain.ActorEntry(actor, now, action, "flight", updated.ID, verb+" flight "+updated.Callsign))
	return NewView(updated, s.airports, now), nil
}

// ReleaseOwner makes every flight owned by userID unowned.
func (s *FlightService) ReleaseOwner(ctx context.Context, userID string) (int, error) {
	released := 0
	_, err := s.store.Mutate(ctx, s.now().UTC(), func(flights []domain.Flight) ([]domain.Flight, error) {
		for i := range flights {
			if flights[i].OwnedBy(userID) {
				flights[i].OwnerID = nil
				flights[i].OwnerName = nil
				released++
			}
		}
		return flights, nil
	})
	return released, err
}

// CountByOwner returns the number of owned flights per user id.
func (s *FlightService) CountByOwner(ctx context.Context) (map[string]int, error) {
	list, err := s.store.Snapshot(ctx, s.now().UTC())
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, f := range list {
		if f.OwnerID != nil {
			counts[*f.OwnerID]++
		}
	}
	return counts, nil
}

// checkEditable applies the shared gate for update and delete.
func (s *FlightService) checkEditable(actor domain.Session, f domain.Flight, now time.Time) error {
	if !actor.IsAdmin() {
		if f.TransferPending {
			return domain.ErrTransferPending
		}
		if f.IsLocked {
			return domain.ErrLocked
		}
	}
	if !s.authority.CanManage(actor, f, now) {
		return domain.ErrZoneForbidden
	}
	return nil
}

type route struct {
	callsign  string
	from, to  string
	departure time.Time
	arrival   time.Time
}

func (s *FlightService) validate(input Input) (route, error) {
	r := route{
		callsign: domain.NormalizeCode(input.Callsign),
		from:     domain.NormalizeCode(input.FromICAO),
		to:       domain.NormalizeCode(input.ToICAO),
	}
	if len(r.callsign) < 3 {
		return r, domain.ErrInvalidCallsign
	}
	if r.from == "" || r.to == "" || r.from == r.to {
		return r, domain.ErrInvalidRoute
	}
	if _, ok := s.airports.Get(r.from); !ok {
		return r, domain.ErrUnknownAirport
	}
	if _, ok := s.airports.Get(r.to); !ok {
		return r, domain.ErrUnknownAirport
	}

	var depOK, arrOK bool
	r.departure, depOK = domain.ParseMSK(strings.TrimSpace(input.DepartureMsk))
	r.arrival, arrOK = domain.ParseMSK(strings.TrimSpace(input.ArrivalMsk))
	if !depOK || !arrOK || !r.arrival.After(r.departure) {
		return r, domain.ErrInvalidSchedule
	}
	return r, nil
}

var _ FlightUseCase = (*FlightService)(nil)
