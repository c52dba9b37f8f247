package transfer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/skydispatch/internal/airports"
	"github.com/Domenick1991/skydispatch/internal/domain"
	"github.com/Domenick1991/skydispatch/internal/kafka"
	"github.com/Domenick1991/skydispatch/internal/realtime"
	"github.com/Domenick1991/skydispatch/internal/repository"
	"github.com/Domenick1991/skydispatch/internal/service/audit"
	"github.com/Domenick1991/skydispatch/internal/service/flights"
	"go.uber.org/zap"
)

const DefaultTimeout = 15 * time.Second

type TransferUseCase interface {
	Request(ctx context.Context, actor domain.Session, flightID, toUserID string) (flights.View, error)
	Pending(ctx context.Context, actor domain.Session) ([]flights.View, error)
	Accept(ctx context.Context, actor domain.Session, flightID string) (flights.View, error)
	Decline(ctx context.Context, actor domain.Session, flightID string) (flights.View, error)
	ExpirePendingTransfers(ctx context.Context) ([]domain.Flight, error)
}

// Presence reports whether a user has at least one live session.
type Presence interface {
	IsOnline(userID string) bool
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// Notifier pushes a message to the connections of one user.
type Notifier interface {
	SendTo(userID, msgType string, data any)
}

type TransferService struct {
	store              *flights.Store
	users              repository.UserRepository
	presence           Presence
	authority          flights.Authority
	airports           airports.Lookup
	audit              audit.Recorder
	timeout            time.Duration
	producer           Producer
	notificationsTopic string
	notifier           Notifier
	now                func() time.Time
	log                *zap.Logger
}

type TransferServiceOption func(*TransferService)

func WithTimeout(d time.Duration) TransferServiceOption {
	return func(s *TransferService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithNotificationsTopic(p Producer, topic string) TransferServiceOption {
	return func(s *TransferService) {
		s.producer = p
		s.notificationsTopic = topic
	}
}

func WithNotifier(n Notifier) TransferServiceOption {
	return func(s *TransferService) {
		s.notifier = n
	}
}

func WithClock(now func() time.Time) TransferServiceOption {
	return func(s *TransferService) {
		s.now = now
	}
}

func NewTransferService(
	store *flights.Store,
	users repository.UserRepository,
	presence Presence,
	authority flights.Authority,
	lookup airports.Lookup,
	recorder audit.Recorder,
	log *zap.Logger,
	opts ...TransferServiceOption,
) *TransferService {
	s := &TransferService{
		store:     store,
		users:     users,
		presence:  presence,
		authority: authority,
		airports:  lookup,
		audit:     recorder,
		timeout:   DefaultTimeout,
		now:       time.Now,
		log:       log.Named("transfer"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Request proposes handing flightID over to toUserID. The proposal expires
// after the configured timeout unless the target answers.
func (s *TransferService) Request(ctx context.Context, actor domain.Session, flightID, toUserID string) (flights.View, error) {
	now := s.now().UTC()

	toUserID = strings.TrimSpace(toUserID)
	if toUserID == "" {
		return flights.View{}, domain.ErrInvalidTarget
	}
	target, err := s.findUser(ctx, toUserID)
	if err != nil {
		return flights.View{}, err
	}
	if toUserID == actor.UserID {
		return flights.View{}, domain.ErrInvalidTarget
	}
	if !s.presence.IsOnline(toUserID) {
		return flights.View{}, domain.ErrUserOffline
	}

	var updated domain.Flight
	_, err = s.store.Mutate(ctx, now, func(list []domain.Flight) ([]domain.Flight, error) {
		idx := flights.Find(list, flightID)
		if idx < 0 {
			return nil, domain.ErrNotFound
		}
		current := list[idx]
		if current.TransferPending {
			return nil, domain.ErrTransferPending
		}
		if current.IsLocked && !actor.IsAdmin() {
			return nil, domain.ErrLocked
		}
		if !s.authority.CanManage(actor, current, now) {
			return nil, domain.ErrZoneForbidden
		}

		expires := now.Add(s.timeout)
		requested := now
		to := toUserID
		updated = current
		updated.TransferPending = true
		updated.TransferToUserID = &to
		updated.TransferRequestedAt = &requested
		updated.TransferExpiresAt = &expires
		list[idx] = updated
		return list, nil
	})
	if err != nil {
		return flights.View{}, err
	}

	entry := domain.ActorEntry(actor, now, "transfer_request", "flight", updated.ID,
		fmt.Sprintf("Transfer request %s → %s", updated.Callsign, target.Username))
	entry.Diff = map[string]any{"toUserId": target.ID, "toUserName": target.Username}
	s.audit.Record(ctx, entry)

	view := flights.NewView(updated, s.airports, now)
	s.notify(ctx, actor, target, view)
	return view, nil
}

// Pending lists live transfers addressed to actor.
func (s *TransferService) Pending(ctx context.Context, actor domain.Session) ([]flights.View, error) {
	now := s.now().UTC()
	list, err := s.store.Snapshot(ctx, now)
	if err != nil {
		return nil, err
	}
	out := make([]flights.View, 0)
	for _, f := range list {
		if f.TransferTargets(actor.UserID) {
			out = append(out, flights.NewView(f, s.airports, now))
		}
	}
	return out, nil
}

// Accept hands ownership to actor.
func (s *TransferService) Accept(ctx context.Context, actor domain.Session, flightID string) (flights.View, error) {
	return s.resolve(ctx, actor, flightID, true)
}

// Decline drops the proposal and leaves the owner unchanged.
func (s *TransferService) Decline(ctx context.Context, actor domain.Session, flightID string) (flights.View, error) {
	return s.resolve(ctx, actor, flightID, false)
}

func (s *TransferService) resolve(ctx context.Context, actor domain.Session, flightID string, accept bool) (flights.View, error) {
	now := s.now().UTC()

	var updated domain.Flight
	_, err := s.store.Mutate(ctx, now, func(list []domain.Flight) ([]domain.Flight, error) {
		idx := flights.Find(list, flightID)
		if idx < 0 {
			return nil, domain.ErrNotFound
		}
		if !list[idx].TransferTargets(actor.UserID) {
			return nil, domain.ErrTransferNotFound
		}
		updated = list[idx].ClearTransfer()
		if accept {
			ownerID, ownerName := actor.UserID, actor.Username
			updated.OwnerID, updated.OwnerName = &ownerID, &ownerName
		}
		list[idx] = updated
		return list, nil
	})
	if err != nil {
		return flights.View{}, err
	}

	action, summary := "transfer_decline", "Declined flight "+updated.Callsign
	if accept {
		action, summary = "transfer_accept", "Accepted flight "+updated.Callsign
	}
	s.audit.Record(ctx, domain.ActorEntry(actor, now, action, "flight", updated.ID, summary))
	return flights.NewView(updated, s.airports, now), nil
}

// ExpirePendingTransfers clears every transfer whose deadline has passed.
// Read and write paths clear them lazily too; the sweep keeps the stored
// list and the audit trail current when nobody touches the flight.
func (s *TransferService) ExpirePendingTransfers(ctx context.Context) ([]domain.Flight, error) {
	now := s.now().UTC()
	expired, err := s.store.ExpireTransfers(ctx, now)
	if err != nil {
		return nil, err
	}
	for _, f := range expired {
		s.audit.Record(ctx, audit.SystemEntry(now, "transfer_expire", "flight", f.ID, "Transfer of "+f.Callsign+" expired"))
	}
	return expired, nil
}

func (s *TransferService) findUser(ctx context.Context, id string) (domain.User, error) {
	users, err := s.users.Load(ctx)
	if err != nil {
		return domain.User{}, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (s *TransferService) notify(ctx context.Context, actor domain.Session, target domain.User, view flights.View) {
	if s.notifier != nil {
		s.notifier.SendTo(target.ID, realtime.MessageTypeTransferRequest, view)
	}
	if s.producer == nil || s.notificationsTopic == "" {
		return
	}
	event := kafka.Event{
		Type:       "transfer_request",
		ActorID:    actor.UserID,
		ActorName:  actor.Username,
		EntityType: "flight",
		EntityID:   view.ID,
		TargetID:   target.ID,
		Summary:    fmt.Sprintf("%s offers flight %s", actor.Username, view.Callsign),
		Data:       map[string]any{"expiresAt": view.TransferExpiresAt},
		OccurredAt: s.now().UTC(),
	}
	if err := s.producer.Publish(ctx, s.notificationsTopic, target.ID, event); err != nil {
		s.log.Warn("publish transfer notification", zap.String("flight_id", view.ID), zap.Error(err))
	}
}

var _ TransferUseCase = (*TransferService)(nil)
