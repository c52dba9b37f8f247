package domain

import (
	"strings"
	"time"
)

type FlightStatus string

const (
	FlightStatusScheduled FlightStatus = "scheduled"
	FlightStatusActive    FlightStatus = "active"
	FlightStatusCompleted FlightStatus = "completed"
)

type Priority string

const (
	PriorityNormal    Priority = "NORMAL"
	PriorityHigh      Priority = "HIGH"
	PriorityEmergency Priority = "EMERGENCY"
)

// Phases lists the flight phases in the order a flight goes through them.
var Phases = []string{
	"Preparation",
	"Engine start",
	"Pushback",
	"Taxi",
	"Holding at runway",
	"Takeoff",
	"Climb",
	"Cruise",
	"Descent",
	"Approach",
	"Landing",
	"Taxi to gate",
	"Parked / Completed",
}

// PhaseIndex returns the position of phase in Phases or -1.
func PhaseIndex(phase string) int {
	for i, p := range Phases {
		if p == phase {
			return i
		}
	}
	return -1
}

// NormalizePriority upper-cases the value and falls back to NORMAL.
func NormalizePriority(value string) Priority {
	switch p := Priority(strings.ToUpper(strings.TrimSpace(value))); p {
	case PriorityNormal, PriorityHigh, PriorityEmergency:
		return p
	default:
		return PriorityNormal
	}
}

// NormalizeCode trims and upper-cases callsigns and ICAO codes.
func NormalizeCode(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

type Flight struct {
	ID                  string     `json:"id"`
	Callsign            string     `json:"callsign"`
	FromICAO            string     `json:"fromIcao"`
	ToICAO              string     `json:"toIcao"`
	DepartureUTC        time.Time  `json:"departureUtc"`
	ArrivalUTC          time.Time  `json:"arrivalUtc"`
	Phase               string     `json:"phase"`
	Speed               *float64   `json:"speed"`
	Altitude            *float64   `json:"altitude"`
	AwaitingATC         bool       `json:"awaitingAtc"`
	Priority            Priority   `json:"priority"`
	OwnerID             *string    `json:"ownerId"`
	OwnerName           *string    `json:"ownerName"`
	IsLocked            bool       `json:"isLocked"`
	LockedBy            *string    `json:"lockedBy"`
	TransferPending     bool       `json:"transferPending"`
	TransferToUserID    *string    `json:"transferToUserId"`
	TransferRequestedAt *time.Time `json:"transferRequestedAt"`
	TransferExpiresAt   *time.Time `json:"transferExpiresAt"`
	CreatedAt           time.Time  `json:"createdAt"`
}

// Status derives the schedule state of the flight at now.
func (f Flight) Status(now time.Time) FlightStatus {
	if now.Before(f.DepartureUTC) {
		return FlightStatusScheduled
	}
	if !now.Before(f.ArrivalUTC) {
		return FlightStatusCompleted
	}
	return FlightStatusActive
}

// Progress is the elapsed fraction of the schedule window clamped to [0, 1].
func (f Flight) Progress(now time.Time) float64 {
	total := f.ArrivalUTC.Sub(f.DepartureUTC)
	if total <= 0 {
		if now.Before(f.DepartureUTC) {
			return 0
		}
		return 1
	}
	p := float64(now.Sub(f.DepartureUTC)) / float64(total)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// OwnedBy reports whether userID is the current owner.
func (f Flight) OwnedBy(userID string) bool {
	return f.OwnerID != nil && *f.OwnerID == userID
}

// TransferTargets reports whether a live transfer is addressed to userID.
func (f Flight) TransferTargets(userID string) bool {
	return f.TransferPending && f.TransferToUserID != nil && *f.TransferToUserID == userID
}

// ClearTransfer returns a copy with every transfer field reset.
func (f Flight) ClearTransfer() Flight {
	f.TransferPending = false
	f.TransferToUserID = nil
	f.TransferRequestedAt = nil
	f.TransferExpiresAt = nil
	return f
}

// ClearExpiredTransfer drops a pending transfer whose deadline has passed.
// The second result reports whether anything changed.
func (f Flight) ClearExpiredTransfer(now time.Time) (Flight, bool) {
	if !f.TransferPending || f.TransferExpiresAt == nil || now.Before(*f.TransferExpiresAt) {
		return f, false
	}
	return f.ClearTransfer(), true
}

// IsCallsignTaken reports whether a non-completed flight other than ignoreID
// already uses callsign.
func IsCallsignTaken(callsign string, flights []Flight, now time.Time, ignoreID string) bool {
	for _, f := range flights {
		if ignoreID != "" && f.ID == ignoreID {
			continue
		}
		if f.Status(now) == FlightStatusCompleted {
			continue
		}
		if f.Callsign == callsign {
			return true
		}
	}
	return false
}
