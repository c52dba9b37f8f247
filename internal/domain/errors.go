package domain

// ErrorKind classifies a domain error so transports can pick a status code.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindLocked
)

// Error is a client-correctable condition identified by a stable code.
type Error struct {
	Kind ErrorKind
	Code string
}

func (e *Error) Error() string {
	return e.Code
}

func newError(kind ErrorKind, code string) *Error {
	return &Error{Kind: kind, Code: code}
}

var (
	ErrInvalidCredentials = newError(KindValidation, "invalid_credentials")
	ErrZoneRequired       = newError(KindValidation, "zone_required")
	ErrInvalidZone        = newError(KindValidation, "invalid_zone")
	ErrInvalidCallsign    = newError(KindValidation, "invalid_callsign")
	ErrInvalidRoute       = newError(KindValidation, "invalid_route")
	ErrUnknownAirport     = newError(KindValidation, "unknown_airport")
	ErrInvalidSchedule    = newError(KindValidation, "invalid_schedule")
	ErrInvalidTarget      = newError(KindValidation, "invalid_target")

	ErrInvalidLogin = newError(KindUnauthorized, "invalid_login")
	ErrUnauthorized = newError(KindUnauthorized, "unauthorized")

	ErrForbidden     = newError(KindForbidden, "forbidden")
	ErrZoneForbidden = newError(KindForbidden, "zone_forbidden")

	ErrNotFound     = newError(KindNotFound, "not_found")
	ErrUserNotFound = newError(KindNotFound, "user_not_found")

	ErrUserExists       = newError(KindConflict, "user_exists")
	ErrZoneBusy         = newError(KindConflict, "zone_busy")
	ErrCallsignTaken    = newError(KindConflict, "callsign_taken")
	ErrTransferPending  = newError(KindConflict, "transfer_pending")
	ErrUserOffline      = newError(KindConflict, "user_offline")
	ErrTransferNotFound = newError(KindConflict, "transfer_not_found")

	ErrLocked = newError(KindLocked, "locked")
)
