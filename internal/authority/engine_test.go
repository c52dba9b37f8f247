package authority

import (
	"testing"
	"time"

	"github.com/Domenick1991/skydispatch/internal/airports/airportstest"
	"github.com/Domenick1991/skydispatch/internal/domain"
	"github.com/Domenick1991/skydispatch/internal/zones"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dispatcher(id, zoneID string) domain.Session {
	s := domain.Session{UserID: id, Username: id, Role: domain.RoleDispatcher}
	if zoneID != "" {
		s.ZoneID = &zoneID
	}
	return s
}

func newEngine(t *testing.T) (*Engine, *zones.Assignments) {
	idx := airportstest.Index(t)
	reg := zones.Build(zones.DefaultDefinitions(), idx, 0)
	asg := zones.NewAssignments()
	return NewEngine(reg, asg, idx), asg
}

func flightFrom(from, to string, dep time.Time, dur time.Duration) domain.Flight {
	return domain.Flight{ID: "f", Callsign: "AFL1", FromICAO: from, ToICAO: to, DepartureUTC: dep, ArrivalUTC: dep.Add(dur)}
}

func TestPosition(t *testing.T) {
	idx := airportstest.Index(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	scheduled := flightFrom("UUDD", "ULLI", now.Add(time.Hour), time.Hour)
	p, ok := Position(scheduled, idx, now)
	require.True(t, ok)
	assert.InDelta(t, 55.4088, p.Lat, 1e-9)

	completed := flightFrom("UUDD", "ULLI", now.Add(-3*time.Hour), time.Hour)
	p, ok = Position(completed, idx, now)
	require.True(t, ok)
	assert.InDelta(t, 59.8003, p.Lat, 1e-9)

	active := flightFrom("UUDD", "ULLI", now.Add(-30*time.Minute), time.Hour)
	p, ok = Position(active, idx, now)
	require.True(t, ok)
	assert.Greater(t, p.Lat, 55.4088)
	assert.Less(t, p.Lat, 59.8003)

	_, ok = Position(flightFrom("ZZZZ", "ULLI", now, time.Hour), idx, now)
	assert.False(t, ok)
}

func TestCanManage_AdminAlways(t *testing.T) {
	e, _ := newEngine(t)
	now := time.Now()
	admin := domain.Session{UserID: "a", Role: domain.RoleAdmin}
	assert.True(t, e.CanManage(admin, flightFrom("ZZZZ", "YYYY", now, time.Hour), now))
}

func TestCanManage_ZoneContainment(t *testing.T) {
	e, _ := newEngine(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	atDME := flightFrom("UUDD", "ULLI", now.Add(time.Hour), time.Hour)

	assert.False(t, e.CanManage(dispatcher("u", ""), atDME, now), "no zone, no authority")
	assert.False(t, e.CanManage(dispatcher("u", "unknown"), atDME, now))
	assert.True(t, e.CanManage(dispatcher("u", "moscow_uudd"), atDME, now))
	assert.False(t, e.CanManage(dispatcher("u", "pulkovo"), atDME, now))

	// once it has landed the flight belongs to the destination zone
	landed := flightFrom("UUDD", "ULLI", now.Add(-3*time.Hour), time.Hour)
	assert.True(t, e.CanManage(dispatcher("u", "pulkovo"), landed, now))
	assert.False(t, e.CanManage(dispatcher("u", "moscow_uudd"), landed, now))

	// halfway there it is outside both
	enroute := flightFrom("UUDD", "ULLI", now.Add(-30*time.Minute), time.Hour)
	assert.False(t, e.CanManage(dispatcher("u", "moscow_region"), enroute, now))
	assert.False(t, e.CanManage(dispatcher("u", "pulkovo"), enroute, now))
}

func TestCanManage_OccupiedChildShadowsRegion(t *testing.T) {
	e, asg := newEngine(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	atDME := flightFrom("UUDD", "ULLI", now.Add(time.Hour), time.Hour)
	region := dispatcher("r", zones.MoscowRegionID)
	airport := dispatcher("d", "moscow_uudd")

	assert.True(t, e.CanManage(region, atDME, now), "unoccupied child leaves the region in charge")

	require.NoError(t, asg.Claim("moscow_uudd", domain.ZoneAssignment{UserID: "d"}))
	assert.False(t, e.CanManage(region, atDME, now))
	assert.True(t, e.CanManage(airport, atDME, now))

	atSVO := flightFrom("UUEE", "ULLI", now.Add(time.Hour), time.Hour)
	assert.True(t, e.CanManage(region, atSVO, now), "other child is unoccupied")

	asg.Release("moscow_uudd", "d")
	assert.True(t, e.CanManage(region, atDME, now))
}
