package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Domenick1991/skydispatch/internal/domain"
	"github.com/Domenick1991/skydispatch/internal/repository"
	"github.com/Domenick1991/skydispatch/internal/service/audit"
	"github.com/Domenick1991/skydispatch/internal/session"
	"github.com/Domenick1991/skydispatch/internal/zones"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	minUsernameLen = 3
	minPINLen      = 4
)

type AuthUseCase interface {
	Register(ctx context.Context, input Credentials) error
	Login(ctx context.Context, input Credentials) (LoginResult, error)
	Logout(ctx context.Context, token string, actor domain.Session)
	Authenticate(token string) (domain.Session, error)
	ListDispatchers(ctx context.Context) ([]Dispatcher, error)
	OnlineDispatchers(ctx context.Context, actor domain.Session) ([]DispatcherRef, error)
	DeleteDispatcher(ctx context.Context, actor domain.Session, id string) error
}

// FlightOwners is the part of the flight service that tracks ownership.
type FlightOwners interface {
	ReleaseOwner(ctx context.Context, userID string) (int, error)
	CountByOwner(ctx context.Context) (map[string]int, error)
}

// Disconnector drops the live connections of a user whose sessions ended.
type Disconnector interface {
	Disconnect(userID string)
}

type Credentials struct {
	Username string `json:"username"`
	PIN      string `json:"pin"`
	ZoneID   string `json:"zoneId"`
}

type LoginResult struct {
	Token string `json:"token"`
	domain.Session
}

type DispatcherRef struct {
	ID       string      `json:"id"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

type Dispatcher struct {
	DispatcherRef
	Online        bool `json:"online"`
	ActiveFlights int  `json:"activeFlights"`
}

type AuthService struct {
	mu          sync.Mutex
	users       repository.UserRepository
	sessions    *session.Store
	assignments *zones.Assignments
	registry    *zones.Registry
	owners      FlightOwners
	audit       audit.Recorder
	streams     Disconnector
	pinCost     int
	now         func() time.Time
	log         *zap.Logger
}

type AuthServiceOption func(*AuthService)

// WithPINCost sets the bcrypt cost used for new PIN hashes.
func WithPINCost(cost int) AuthServiceOption {
	return func(s *AuthService) {
		s.pinCost = cost
	}
}

// WithDisconnector closes websocket connections on logout and account removal.
func WithDisconnector(d Disconnector) AuthServiceOption {
	return func(s *AuthService) {
		s.streams = d
	}
}

func WithClock(now func() time.Time) AuthServiceOption {
	return func(s *AuthService) {
		s.now = now
	}
}

func NewAuthService(
	users repository.UserRepository,
	sessions *session.Store,
	assignments *zones.Assignments,
	registry *zones.Registry,
	owners FlightOwners,
	recorder audit.Recorder,
	log *zap.Logger,
	opts ...AuthServiceOption,
) *AuthService {
	s := &AuthService{
		users:       users,
		sessions:    sessions,
		assignments: assignments,
		registry:    registry,
		owners:      owners,
		audit:       recorder,
		pinCost:     bcrypt.DefaultCost,
		now:         time.Now,
		log:         log.Named("auth"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a dispatcher account. The zone is only checked, the
// assignment happens at login.
func (s *AuthService) Register(ctx context.Context, input Credentials) error {
	username := strings.TrimSpace(input.Username)
	pin := strings.TrimSpace(input.PIN)
	zoneID := strings.TrimSpace(input.ZoneID)

	if len(username) < minUsernameLen || len(pin) < minPINLen {
		return domain.ErrInvalidCredentials
	}
	if zoneID == "" {
		return domain.ErrZoneRequired
	}
	if _, ok := s.registry.Get(zoneID); !ok {
		return domain.ErrInvalidZone
	}
	if err := s.assignments.Check(zoneID, ""); err != nil {
		return err
	}

	hash, err := s.hashPIN(pin)
	if err != nil {
		return err
	}

	s.mu.Lock()
	users, err := s.users.Load(ctx)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if _, ok := findByUsername(users, username); ok {
		s.mu.Unlock()
		return domain.ErrUserExists
	}
	user := domain.User{
		ID:        uuid.NewString(),
		Username:  username,
		PinHash:   hash,
		Role:      domain.RoleDispatcher,
		CreatedAt: s.now().UTC(),
	}
	err = s.users.Save(ctx, append(users, user))
	s.mu.Unlock()
	if err != nil {
		return err
	}

	entry := domain.AuditEntry{
		Timestamp:  user.CreatedAt,
		ActorName:  username,
		ActorRole:  string(domain.RoleDispatcher),
		ActionType: "register",
		EntityType: "user",
		EntityID:   &user.ID,
		Summary:    "Created account " + username,
	}
	s.audit.Record(ctx, entry)
	return nil
}

// Login verifies the PIN and, for dispatchers, claims the requested zone.
func (s *AuthService) Login(ctx context.Context, input Credentials) (LoginResult, error) {
	username := strings.TrimSpace(input.Username)
	pin := strings.TrimSpace(input.PIN)
	zoneID := strings.TrimSpace(input.ZoneID)

	users, err := s.users.Load(ctx)
	if err != nil {
		return LoginResult{}, err
	}
	user, ok := findByUsername(users, username)
	if !ok || bcrypt.CompareHashAndPassword([]byte(user.PinHash), []byte(pin)) != nil {
		return LoginResult{}, domain.ErrInvalidLogin
	}

	now := s.now().UTC()
	zone, zoneOK := s.registry.Get(zoneID)
	if !user.IsAdmin() {
		if zoneID == "" {
			return LoginResult{}, domain.ErrZoneRequired
		}
		if !zoneOK {
			return LoginResult{}, domain.ErrInvalidZone
		}
		err := s.assignments.Claim(zone.ID, domain.ZoneAssignment{
			UserID:     user.ID,
			Username:   user.Username,
			Role:       user.Role,
			AssignedAt: now,
		})
		if err != nil {
			return LoginResult{}, err
		}
	}

	sess := domain.Session{UserID: user.ID, Username: user.Username, Role: user.Role, CreatedAt: now}
	if zoneOK {
		id, name, typ := zone.ID, zone.Name, zone.Type
		sess.ZoneID, sess.ZoneName, sess.ZoneType = &id, &name, &typ
	}
	token := s.sessions.Issue(sess)

	s.audit.Record(ctx, domain.ActorEntry(sess, now, "login", "user", user.ID, user.Username+" signed in"))
	s.log.Info("login", zap.String("user", user.Username), zap.String("zone", sess.Zone()))
	return LoginResult{Token: token, Session: sess}, nil
}

// Logout ends the session and frees the zone if actor still holds it.
func (s *AuthService) Logout(ctx context.Context, token string, actor domain.Session) {
	s.sessions.Delete(token)
	if zoneID := actor.Zone(); zoneID != "" {
		s.assignments.Release(zoneID, actor.UserID)
	}
	// other tabs of the same user keep their sockets
	if s.streams != nil && !s.sessions.IsOnline(actor.UserID) {
		s.streams.Disconnect(actor.UserID)
	}
	s.audit.Record(ctx, domain.ActorEntry(actor, s.now().UTC(), "logout", "user", actor.UserID, actor.Username+" signed out"))
}

// Authenticate resolves a bearer token. A dispatcher whose zone has been
// released or taken over is rejected even though the token exists.
func (s *AuthService) Authenticate(token string) (domain.Session, error) {
	if token == "" {
		return domain.Session{}, domain.ErrUnauthorized
	}
	sess, ok := s.sessions.Get(token)
	if !ok {
		return domain.Session{}, domain.ErrUnauthorized
	}
	if !sess.IsAdmin() && sess.Zone() != "" && !s.assignments.HeldBy(sess.Zone(), sess.UserID) {
		return domain.Session{}, domain.ErrZoneForbidden
	}
	return sess, nil
}

func (s *AuthService) ListDispatchers(ctx context.Context) ([]Dispatcher, error) {
	users, err := s.users.Load(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.owners.CountByOwner(ctx)
	if err != nil {
		return nil, err
	}
	online := s.sessions.OnlineUserIDs()

	out := make([]Dispatcher, 0, len(users))
	for _, u := range users {
		if u.IsAdmin() {
			continue
		}
		out = append(out, Dispatcher{
			DispatcherRef: DispatcherRef{ID: u.ID, Username: u.Username, Role: u.Role},
			Online:        online[u.ID],
			ActiveFlights: counts[u.ID],
		})
	}
	return out, nil
}

// OnlineDispatchers lists possible transfer targets for actor.
func (s *AuthService) OnlineDispatchers(ctx context.Context, actor domain.Session) ([]DispatcherRef, error) {
	users, err := s.users.Load(ctx)
	if err != nil {
		return nil, err
	}
	online := s.sessions.OnlineUserIDs()

	out := make([]DispatcherRef, 0)
	for _, u := range users {
		if u.IsAdmin() || !online[u.ID] || u.ID == actor.UserID {
			continue
		}
		out = append(out, DispatcherRef{ID: u.ID, Username: u.Username, Role: u.Role})
	}
	return out, nil
}

// DeleteDispatcher removes the account, ends its sessions, frees its zones
// and leaves its flights without an owner.
func (s *AuthService) DeleteDispatcher(ctx context.Context, actor domain.Session, id string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}

	s.mu.Lock()
	users, err := s.users.Load(ctx)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	idx := -1
	for i, u := range users {
		if u.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return domain.ErrUserNotFound
	}
	removed := users[idx]
	err = s.users.Save(ctx, append(users[:idx:idx], users[idx+1:]...))
	s.mu.Unlock()
	if err != nil {
		return err
	}

	sessions := s.sessions.DeleteUser(id)
	if s.streams != nil {
		s.streams.Disconnect(id)
	}
	zonesFreed := s.assignments.ReleaseAll(id)
	released, err := s.owners.ReleaseOwner(ctx, id)
	if err != nil {
		return err
	}
	s.log.Info("dispatcher removed",
		zap.String("user", removed.Username),
		zap.Int("sessions", sessions),
		zap.Int("zones", zonesFreed),
		zap.Int("flights", released),
	)

	s.audit.Record(ctx, domain.ActorEntry(actor, s.now().UTC(), "dispatcher_delete", "user", removed.ID, "Deleted account "+removed.Username))
	return nil
}

// EnsureAdmin makes sure an admin account exists. A user already named
// username is promoted, otherwise a new admin is created with pin.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, pin string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.users.Load(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.IsAdmin() {
			return nil
		}
	}

	now := s.now().UTC()
	for i, u := range users {
		if domain.SameUsername(u.Username, username) {
			users[i].Role = domain.RoleAdmin
			if err := s.users.Save(ctx, users); err != nil {
				return err
			}
			s.audit.Record(ctx, audit.SystemEntry(now, "admin_promote", "user", u.ID, "User "+u.Username+" promoted to admin"))
			return nil
		}
	}

	hash, err := s.hashPIN(pin)
	if err != nil {
		return err
	}
	admin := domain.User{ID: uuid.NewString(), Username: username, PinHash: hash, Role: domain.RoleAdmin, CreatedAt: now}
	if err := s.users.Save(ctx, append(users, admin)); err != nil {
		return err
	}
	s.audit.Record(ctx, audit.SystemEntry(now, "admin_create", "user", admin.ID, "Created admin "+admin.Username))
	return nil
}

func (s *AuthService) hashPIN(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), s.pinCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func findByUsername(users []domain.User, username string) (domain.User, bool) {
	for _, u := range users {
		if domain.SameUsername(u.Username, username) {
			return u, true
		}
	}
	return domain.User{}, false
}

var _ AuthUseCase = (*AuthService)(nil)
