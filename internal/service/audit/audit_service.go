package audit

import (
	"context"
	"strings"
	"time"

	"github.com/Domenick1991/skydispatch/internal/domain"
	"github.com/Domenick1991/skydispatch/internal/kafka"
	"github.com/Domenick1991/skydispatch/internal/realtime"
	"github.com/Domenick1991/skydispatch/internal/repository"
	"go.uber.org/zap"
)

// Recorder is what other services need to leave an audit trail.
type Recorder interface {
	Record(ctx context.Context, entry domain.AuditEntry)
}

type AuditUseCase interface {
	Recorder
	List(ctx context.Context) ([]domain.AuditEntry, error)
	RecordClientEvent(ctx context.Context, actor domain.Session, input ClientEventInput)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// Broadcaster delivers to admin websocket connections; the log is admin-only.
type Broadcaster interface {
	BroadcastAdmins(msgType string, data any)
}

// ClientEventInput is a free-form event reported by a UI client.
type ClientEventInput struct {
	ActionType string  `json:"actionType"`
	EntityType string  `json:"entityType"`
	EntityID   *string `json:"entityId"`
	Summary    string  `json:"summary"`
}

type AuditService struct {
	repo     repository.AuditLogRepository
	producer Producer
	topic    string
	hub      Broadcaster
	now      func() time.Time
	log      *zap.Logger
}

type AuditServiceOption func(*AuditService)

// WithProducer publishes every entry to topic.
func WithProducer(p Producer, topic string) AuditServiceOption {
	return func(s *AuditService) {
		s.producer = p
		s.topic = topic
	}
}

// WithBroadcaster pushes every entry to connected admins.
func WithBroadcaster(b Broadcaster) AuditServiceOption {
	return func(s *AuditService) {
		s.hub = b
	}
}

func WithClock(now func() time.Time) AuditServiceOption {
	return func(s *AuditService) {
		s.now = now
	}
}

func NewAuditService(repo repository.AuditLogRepository, log *zap.Logger, opts ...AuditServiceOption) *AuditService {
	s := &AuditService{repo: repo, now: time.Now, log: log.Named("audit")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record appends entry and fans it out. Failures are logged; the action that
// produced the entry has already happened.
func (s *AuditService) Record(ctx context.Context, entry domain.AuditEntry) {
	if err := s.repo.Append(ctx, entry); err != nil {
		s.log.Error("append audit entry", zap.String("action", entry.ActionType), zap.Error(err))
	}

	if s.producer != nil && s.topic != "" {
		event := EventFromEntry(entry)
		if err := s.producer.Publish(ctx, s.topic, event.EntityID, event); err != nil {
			s.log.Warn("publish audit event", zap.String("action", entry.ActionType), zap.Error(err))
		}
	}

	if s.hub != nil {
		s.hub.BroadcastAdmins(realtime.MessageTypeAudit, entry)
	}
}

func (s *AuditService) List(ctx context.Context) ([]domain.AuditEntry, error) {
	return s.repo.List(ctx)
}

func (s *AuditService) RecordClientEvent(ctx context.Context, actor domain.Session, input ClientEventInput) {
	action := strings.TrimSpace(input.ActionType)
	if action == "" {
		action = "event"
	}
	entityType := strings.TrimSpace(input.EntityType)
	if entityType == "" {
		entityType = "system"
	}
	summary := input.Summary
	if summary == "" {
		summary = "Event"
	}

	entityID := ""
	if input.EntityID != nil {
		entityID = *input.EntityID
	}
	s.Record(ctx, domain.ActorEntry(actor, s.now().UTC(), action, entityType, entityID, summary))
}

// SystemEntry is an entry not attributed to any user.
func SystemEntry(at time.Time, action, entityType, entityID, summary string) domain.AuditEntry {
	entry := domain.AuditEntry{
		Timestamp:  at,
		ActorName:  "system",
		ActorRole:  "system",
		ActionType: action,
		EntityType: entityType,
		Summary:    summary,
	}
	if entityID != "" {
		entry.EntityID = &entityID
	}
	return entry
}

// EventFromEntry converts an audit entry to its stream representation.
func EventFromEntry(entry domain.AuditEntry) kafka.Event {
	event := kafka.Event{
		Type:       entry.ActionType,
		ActorName:  entry.ActorName,
		EntityType: entry.EntityType,
		Summary:    entry.Summary,
		Data:       entry.Diff,
		OccurredAt: entry.Timestamp,
	}
	if entry.ActorID != nil {
		event.ActorID = *entry.ActorID
	}
	if entry.EntityID != nil {
		event.EntityID = *entry.EntityID
	}
	return event
}

var _ AuditUseCase = (*AuditService)(nil)
