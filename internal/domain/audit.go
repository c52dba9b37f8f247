package domain

import "time"

// AuditEntry is one append-only record of who did what to which entity.
type AuditEntry struct {
	Timestamp  time.Time      `json:"timestamp"`
	ActorID    *string        `json:"actorId"`
	ActorName  string         `json:"actorName"`
	ActorRole  string         `json:"actorRole"`
	ActionType string         `json:"actionType"`
	EntityType string         `json:"entityType"`
	EntityID   *string        `json:"entityId"`
	Summary    string         `json:"summary"`
	Diff       map[string]any `json:"diff,omitempty"`
}

// ActorEntry starts an entry attributed to the session's user.
func ActorEntry(actor Session, at time.Time, action, entityType, entityID, summary string) AuditEntry {
	id := actor.UserID
	entry := AuditEntry{
		Timestamp:  at,
		ActorID:    &id,
		ActorName:  actor.Username,
		ActorRole:  string(actor.Role),
		ActionType: action,
		EntityType: entityType,
		Summary:    summary,
	}
	if entityID != "" {
		entry.EntityID = &entityID
	}
	return entry
}
