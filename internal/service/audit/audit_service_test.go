package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/skydispatch/internal/domain"
	"github.com/Domenick1991/skydispatch/internal/kafka"
	"github.com/Domenick1991/skydispatch/internal/realtime"
	"github.com/Domenick1991/skydispatch/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) BroadcastAdmins(msgType string, data any) {
	m.Called(msgType, data)
}

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func dispatcher() domain.Session {
	zone := "moscow_uudd"
	return domain.Session{UserID: "u1", Username: "alice", Role: domain.RoleDispatcher, ZoneID: &zone}
}

func TestAuditService_Record_FansOut(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewAuditLogRepository(repository.NewMemoryStore(), zap.NewNop())
	producer := &MockProducer{}
	hub := &MockBroadcaster{}

	svc := NewAuditService(repo, zap.NewNop(),
		WithProducer(producer, "audit"),
		WithBroadcaster(hub),
		WithClock(func() time.Time { return fixedNow }),
	)

	entry := domain.ActorEntry(dispatcher(), fixedNow, "flight_create", "flight", "f1", "Created flight AAL1")

	producer.On("Publish", ctx, "audit", "f1", mock.MatchedBy(func(e kafka.Event) bool {
		return e.Type == "flight_create" && e.ActorID == "u1"
	})).Return(nil).Once()
	hub.On("BroadcastAdmins", realtime.MessageTypeAudit, entry).Once()

	svc.Record(ctx, entry)

	logs, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "Created flight AAL1", logs[0].Summary)

	producer.AssertExpectations(t)
	hub.AssertExpectations(t)
}

func TestAuditService_Record_PublishFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewAuditLogRepository(repository.NewMemoryStore(), zap.NewNop())
	producer := &MockProducer{}
	producer.On("Publish", ctx, "audit", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	svc := NewAuditService(repo, zap.NewNop(), WithProducer(producer, "audit"))
	svc.Record(ctx, SystemEntry(fixedNow, "admin_create", "user", "u0", "Created admin admin"))

	logs, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Nil(t, logs[0].ActorID)
	assert.Equal(t, "system", logs[0].ActorName)
}

func TestAuditService_RecordClientEvent_Defaults(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewAuditLogRepository(repository.NewMemoryStore(), zap.NewNop())
	svc := NewAuditService(repo, zap.NewNop(), WithClock(func() time.Time { return fixedNow }))

	svc.RecordClientEvent(ctx, dispatcher(), ClientEventInput{})
	id := "f9"
	svc.RecordClientEvent(ctx, dispatcher(), ClientEventInput{ActionType: "map_focus", EntityType: "flight", EntityID: &id, Summary: "Focused"})

	logs, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 2)

	assert.Equal(t, "event", logs[0].ActionType)
	assert.Equal(t, "system", logs[0].EntityType)
	assert.Equal(t, "Event", logs[0].Summary)
	assert.Nil(t, logs[0].EntityID)
	assert.Equal(t, "dispatcher", logs[0].ActorRole)
	assert.True(t, fixedNow.Equal(logs[0].Timestamp))

	assert.Equal(t, "map_focus", logs[1].ActionType)
	require.NotNil(t, logs[1].EntityID)
	assert.Equal(t, "f9", *logs[1].EntityID)
}
