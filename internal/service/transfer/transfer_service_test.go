package transfer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/skydispatch/internal/airports/airportstest"
	"github.com/Domenick1991/skydispatch/internal/domain"
	"github.com/Domenick1991/skydispatch/internal/kafka"
	"github.com/Domenick1991/skydispatch/internal/realtime"
	"github.com/Domenick1991/skydispatch/internal/repository"
	"github.com/Domenick1991/skydispatch/internal/service/flights"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockAuthority struct {
	mock.Mock
}

func (m *MockAuthority) CanManage(actor domain.Session, f domain.Flight, now time.Time) bool {
	args := m.Called(actor, f, now)
	return args.Bool(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendTo(userID, msgType string, data any) {
	m.Called(userID, msgType, data)
}

type onlineSet map[string]bool

func (o onlineSet) IsOnline(userID string) bool { return o[userID] }

type recorderSpy struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

func (r *recorderSpy) Record(_ context.Context, entry domain.AuditEntry) {
	r.mu.Lock()
	r.entries = append(r.entries, entry)
	r.mu.Unlock()
}

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

var (
	alice = domain.Session{UserID: "u1", Username: "alice", Role: domain.RoleDispatcher, ZoneID: strPtr("los_angeles")}
	bob   = domain.Session{UserID: "u2", Username: "bob", Role: domain.RoleDispatcher, ZoneID: strPtr("san_francisco")}
	admin = domain.Session{UserID: "a1", Username: "admin", Role: domain.RoleAdmin}
)

type fixture struct {
	svc       *TransferService
	flights   repository.FlightRepository
	authority *MockAuthority
	audit     *recorderSpy
	now       time.Time
}

func newFixture(t *testing.T, opts ...TransferServiceOption) *fixture {
	t.Helper()
	ctx := context.Background()
	docs := repository.NewMemoryStore()

	users := repository.NewUserRepository(docs, zap.NewNop())
	require.NoError(t, users.Save(ctx, []domain.User{
		{ID: "u1", Username: "alice", Role: domain.RoleDispatcher},
		{ID: "u2", Username: "bob", Role: domain.RoleDispatcher},
		{ID: "u3", Username: "carol", Role: domain.RoleDispatcher},
		{ID: "a1", Username: "admin", Role: domain.RoleAdmin},
	}))

	flightRepo := repository.NewFlightRepository(docs, zap.NewNop())
	owned := domain.Flight{
		ID:           "f1",
		Callsign:     "AAL1",
		FromICAO:     "KJFK",
		ToICAO:       "KLAX",
		DepartureUTC: fixedNow.Add(-time.Hour),
		ArrivalUTC:   fixedNow.Add(5 * time.Hour),
		Phase:        "Cruise",
		Priority:     domain.PriorityNormal,
		OwnerID:      strPtr("u1"),
		OwnerName:    strPtr("alice"),
	}
	locked := owned
	locked.ID, locked.Callsign = "f2", "LCK1"
	locked.IsLocked = true
	require.NoError(t, flightRepo.Save(ctx, []domain.Flight{owned, locked}))

	f := &fixture{flights: flightRepo, authority: &MockAuthority{}, audit: &recorderSpy{}, now: fixedNow}
	opts = append([]TransferServiceOption{WithClock(func() time.Time { return f.now })}, opts...)
	f.svc = NewTransferService(
		flights.NewStore(flightRepo, nil, zap.NewNop()),
		users,
		onlineSet{"u1": true, "u2": true, "a1": true},
		f.authority,
		airportstest.Index(t),
		f.audit,
		zap.NewNop(),
		opts...,
	)
	return f
}

func (f *fixture) stored(t *testing.T, id string) domain.Flight {
	t.Helper()
	list, err := f.flights.Load(context.Background())
	require.NoError(t, err)
	idx := flights.Find(list, id)
	require.GreaterOrEqual(t, idx, 0)
	return list[idx]
}

func TestTransferService_Request_CheckOrder(t *testing.T) {
	testCases := []struct {
		name        string
		actor       domain.Session
		flightID    string
		to          string
		canManage   bool
		expectedErr error
	}{
		{"empty target", alice, "f1", "  ", true, domain.ErrInvalidTarget},
		{"unknown target", alice, "f1", "u9", true, domain.ErrUserNotFound},
		{"self", alice, "f1", "u1", true, domain.ErrInvalidTarget},
		{"offline target", alice, "f1", "u3", true, domain.ErrUserOffline},
		{"missing flight", alice, "nope", "u2", true, domain.ErrNotFound},
		{"locked for dispatcher", alice, "f2", "u2", true, domain.ErrLocked},
		{"outside zone", alice, "f1", "u2", false, domain.ErrZoneForbidden},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.authority.On("CanManage", tc.actor, mock.Anything, fixedNow).Return(tc.canManage)

			_, err := f.svc.Request(context.Background(), tc.actor, tc.flightID, tc.to)
			assert.ErrorIs(t, err, tc.expectedErr)
			assert.False(t, f.stored(t, "f1").TransferPending)
		})
	}
}

func TestTransferService_Request_AdminIgnoresLock(t *testing.T) {
	f := newFixture(t)
	f.authority.On("CanManage", admin, mock.Anything, fixedNow).Return(true)

	view, err := f.svc.Request(context.Background(), admin, "f2", "u2")
	require.NoError(t, err)
	assert.True(t, view.TransferPending)
}

func TestTransferService_Request_Success(t *testing.T) {
	producer := &MockProducer{}
	notifier := &MockNotifier{}
	f := newFixture(t,
		WithTimeout(15*time.Second),
		WithNotificationsTopic(producer, "notifications"),
		WithNotifier(notifier),
	)
	ctx := context.Background()
	f.authority.On("CanManage", alice, mock.Anything, fixedNow).Return(true)
	producer.On("Publish", ctx, "notifications", "u2", mock.MatchedBy(func(e kafka.Event) bool {
		return e.Type == "transfer_request" && e.TargetID == "u2" && e.EntityID == "f1"
	})).Return(nil).Once()
	notifier.On("SendTo", "u2", realtime.MessageTypeTransferRequest, mock.AnythingOfType("flights.View")).Once()

	view, err := f.svc.Request(ctx, alice, "f1", "u2")
	require.NoError(t, err)

	assert.True(t, view.TransferPending)
	require.NotNil(t, view.TransferToUserID)
	assert.Equal(t, "u2", *view.TransferToUserID)
	require.NotNil(t, view.TransferExpiresAt)
	assert.Equal(t, fixedNow.Add(15*time.Second), *view.TransferExpiresAt)

	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, "transfer_request", f.audit.entries[0].ActionType)
	assert.Equal(t, "bob", f.audit.entries[0].Diff["toUserName"])

	_, err = f.svc.Request(ctx, alice, "f1", "u2")
	assert.ErrorIs(t, err, domain.ErrTransferPending)

	producer.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestTransferService_Decline_KeepsOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.authority.On("CanManage", alice, mock.Anything, fixedNow).Return(true)

	_, err := f.svc.Request(ctx, alice, "f1", "u2")
	require.NoError(t, err)

	pending, err := f.svc.Pending(ctx, bob)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "f1", pending[0].ID)

	_, err = f.svc.Decline(ctx, alice, "f1")
	assert.ErrorIs(t, err, domain.ErrTransferNotFound, "only the target may answer")

	view, err := f.svc.Decline(ctx, bob, "f1")
	require.NoError(t, err)
	assert.False(t, view.TransferPending)
	assert.Equal(t, "u1", *view.OwnerID)

	stored := f.stored(t, "f1")
	assert.False(t, stored.TransferPending)
	assert.Nil(t, stored.TransferExpiresAt)
	assert.Equal(t, "u1", *stored.OwnerID)

	_, err = f.svc.Decline(ctx, bob, "f1")
	assert.ErrorIs(t, err, domain.ErrTransferNotFound)
}

func TestTransferService_Accept_ChangesOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.authority.On("CanManage", alice, mock.Anything, fixedNow).Return(true)

	_, err := f.svc.Request(ctx, alice, "f1", "u2")
	require.NoError(t, err)

	view, err := f.svc.Accept(ctx, bob, "f1")
	require.NoError(t, err)
	assert.Equal(t, "u2", *view.OwnerID)
	assert.Equal(t, "bob", *view.OwnerName)
	assert.False(t, view.TransferPending)

	_, err = f.svc.Accept(ctx, bob, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransferService_ExpiredTransferIsAbsent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.authority.On("CanManage", alice, mock.Anything, mock.Anything).Return(true)

	_, err := f.svc.Request(ctx, alice, "f1", "u2")
	require.NoError(t, err)

	f.now = fixedNow.Add(DefaultTimeout)

	pending, err := f.svc.Pending(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = f.svc.Accept(ctx, bob, "f1")
	assert.ErrorIs(t, err, domain.ErrTransferNotFound)

	_, err = f.svc.Request(ctx, alice, "f1", "u2")
	assert.NoError(t, err, "a new request is possible once the old one expired")
}

func TestTransferService_ExpirePendingTransfers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.authority.On("CanManage", alice, mock.Anything, fixedNow).Return(true)

	_, err := f.svc.Request(ctx, alice, "f1", "u2")
	require.NoError(t, err)

	expired, err := f.svc.ExpirePendingTransfers(ctx)
	require.NoError(t, err)
	assert.Empty(t, expired, "deadline not reached yet")

	f.now = fixedNow.Add(time.Minute)
	expired, err = f.svc.ExpirePendingTransfers(ctx)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "f1", expired[0].ID)
	assert.False(t, f.stored(t, "f1").TransferPending)

	last := f.audit.entries[len(f.audit.entries)-1]
	assert.Equal(t, "transfer_expire", last.ActionType)
	assert.Equal(t, "system", last.ActorName)
	assert.Nil(t, last.ActorID)
}
