package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFlight(dep time.Time, dur time.Duration) Flight {
	return Flight{
		ID:           "f1",
		Callsign:     "AAL1",
		FromICAO:     "KJFK",
		ToICAO:       "KLAX",
		DepartureUTC: dep,
		ArrivalUTC:   dep.Add(dur),
	}
}

func TestFlight_StatusIsMonotonic(t *testing.T) {
	dep := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	f := testFlight(dep, 2*time.Hour)

	order := map[FlightStatus]int{FlightStatusScheduled: 0, FlightStatusActive: 1, FlightStatusCompleted: 2}
	prev := -1
	for now := dep.Add(-time.Hour); now.Before(dep.Add(4 * time.Hour)); now = now.Add(7 * time.Minute) {
		cur := order[f.Status(now)]
		assert.GreaterOrEqual(t, cur, prev, "status regressed at %s", now)
		prev = cur
	}

	assert.Equal(t, FlightStatusScheduled, f.Status(dep.Add(-time.Nanosecond)))
	assert.Equal(t, FlightStatusActive, f.Status(dep))
	assert.Equal(t, FlightStatusCompleted, f.Status(dep.Add(2*time.Hour)))
}

func TestFlight_ProgressClamps(t *testing.T) {
	dep := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	f := testFlight(dep, 2*time.Hour)

	assert.Equal(t, 0.0, f.Progress(dep.Add(-time.Hour)))
	assert.InDelta(t, 0.5, f.Progress(dep.Add(time.Hour)), 1e-9)
	assert.Equal(t, 1.0, f.Progress(dep.Add(5*time.Hour)))
}

func TestFlight_ClearExpiredTransfer(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	target := "u2"
	requested := now.Add(-20 * time.Second)
	expires := now.Add(-5 * time.Second)
	f := Flight{ID: "f1", TransferPending: true, TransferToUserID: &target, TransferRequestedAt: &requested, TransferExpiresAt: &expires}

	cleared, changed := f.ClearExpiredTransfer(now)
	require.True(t, changed)
	assert.False(t, cleared.TransferPending)
	assert.Nil(t, cleared.TransferToUserID)
	assert.Nil(t, cleared.TransferRequestedAt)
	assert.Nil(t, cleared.TransferExpiresAt)
	assert.True(t, f.TransferPending, "original must not be modified")

	live := now.Add(10 * time.Second)
	f.TransferExpiresAt = &live
	same, changed := f.ClearExpiredTransfer(now)
	assert.False(t, changed)
	assert.True(t, same.TransferPending)
}

func TestIsCallsignTaken(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	completed := testFlight(now.Add(-3*time.Hour), time.Hour)
	completed.ID = "old"
	completed.Callsign = "AFL100"
	active := testFlight(now.Add(-time.Hour), 2*time.Hour)
	active.ID = "live"
	active.Callsign = "AFL200"
	flights := []Flight{completed, active}

	assert.False(t, IsCallsignTaken("AFL100", flights, now, ""), "completed flights free their callsign")
	assert.True(t, IsCallsignTaken("AFL200", flights, now, ""))
	assert.False(t, IsCallsignTaken("AFL200", flights, now, "live"))
	assert.False(t, IsCallsignTaken("AFL300", flights, now, ""))
}

func TestNormalizePriority(t *testing.T) {
	assert.Equal(t, PriorityHigh, NormalizePriority(" high "))
	assert.Equal(t, PriorityEmergency, NormalizePriority("EMERGENCY"))
	assert.Equal(t, PriorityNormal, NormalizePriority("urgent"))
	assert.Equal(t, PriorityNormal, NormalizePriority(""))
}

func TestParseMSK(t *testing.T) {
	want := time.Date(2025, 3, 1, 7, 30, 0, 0, time.UTC)

	for _, in := range []string{"2025-03-01 10:30", "2025-03-01T10:30", "01.03.2025 10:30", " 2025-03-01 10:30 "} {
		got, ok := ParseMSK(in)
		require.True(t, ok, in)
		assert.True(t, want.Equal(got), in)
	}

	for _, in := range []string{"", "tomorrow", "2025-3-1 10:30", "2025-03-01"} {
		_, ok := ParseMSK(in)
		assert.False(t, ok, in)
	}

	assert.Equal(t, "2025-03-01 10:30", FormatMSK(want))
}
