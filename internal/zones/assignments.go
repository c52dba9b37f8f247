package zones

import (
	"sync"

	"github.com/Domenick1991/skydispatch/internal/domain"
)

// Assignments tracks which dispatcher occupies which zone. At most one user
// holds a zone and a user holds at most one zone.
type Assignments struct {
	mu     sync.RWMutex
	byZone map[string]domain.ZoneAssignment
}

func NewAssignments() *Assignments {
	return &Assignments{byZone: make(map[string]domain.ZoneAssignment)}
}

func (a *Assignments) Get(zoneID string) (domain.ZoneAssignment, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	as, ok := a.byZone[zoneID]
	return as, ok
}

func (a *Assignments) IsOccupied(zoneID string) bool {
	_, ok := a.Get(zoneID)
	return ok
}

// HeldBy reports whether userID currently holds zoneID.
func (a *Assignments) HeldBy(zoneID, userID string) bool {
	as, ok := a.Get(zoneID)
	return ok && as.UserID == userID
}

// ZoneOf returns the zone held by userID, if any.
func (a *Assignments) ZoneOf(userID string) (string, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.zoneOfLocked(userID)
}

func (a *Assignments) zoneOfLocked(userID string) (string, bool) {
	for zoneID, as := range a.byZone {
		if as.UserID == userID {
			return zoneID, true
		}
	}
	return "", false
}

// Check returns ErrZoneBusy when zoneID is held by someone other than userID
// or userID already holds a different zone. An empty userID only checks the
// zone itself.
func (a *Assignments) Check(zoneID, userID string) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.checkLocked(zoneID, userID)
}

func (a *Assignments) checkLocked(zoneID, userID string) error {
	if existing, ok := a.byZone[zoneID]; ok && existing.UserID != userID {
		return domain.ErrZoneBusy
	}
	if userID == "" {
		return nil
	}
	if current, ok := a.zoneOfLocked(userID); ok && current != zoneID {
		return domain.ErrZoneBusy
	}
	return nil
}

// Claim checks and records the assignment atomically.
func (a *Assignments) Claim(zoneID string, as domain.ZoneAssignment) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.checkLocked(zoneID, as.UserID); err != nil {
		return err
	}
	a.byZone[zoneID] = as
	return nil
}

// Release frees zoneID only if userID holds it.
func (a *Assignments) Release(zoneID, userID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if existing, ok := a.byZone[zoneID]; ok && existing.UserID == userID {
		delete(a.byZone, zoneID)
		return true
	}
	return false
}

// ReleaseAll frees every zone held by userID.
func (a *Assignments) ReleaseAll(userID string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for zoneID, as := range a.byZone {
		if as.UserID == userID {
			delete(a.byZone, zoneID)
			n++
		}
	}
	return n
}

// ZoneDispatcher is the public view of a zone holder.
type ZoneDispatcher struct {
	ID       string      `json:"id"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

// ZoneStatus is a zone enriched with live occupancy.
type ZoneStatus struct {
	domain.Zone
	Occupied   bool            `json:"occupied"`
	Dispatcher *ZoneDispatcher `json:"dispatcher"`
}

// Overview lists every zone of r with its current holder.
func Overview(r *Registry, a *Assignments) []ZoneStatus {
	zones := r.List()
	out := make([]ZoneStatus, 0, len(zones))
	for _, z := range zones {
		st := ZoneStatus{Zone: z}
		if as, ok := a.Get(z.ID); ok {
			st.Occupied = true
			st.Dispatcher = &ZoneDispatcher{ID: as.UserID, Username: as.Username, Role: as.Role}
		}
		out = append(out, st)
	}
	return out
}

// Board pairs the static topology with the live assignments.
type Board struct {
	Registry    *Registry
	Assignments *Assignments
}

func (b Board) Overview() []ZoneStatus {
	return Overview(b.Registry, b.Assignments)
}
