package domain

import "time"

// Session is the identity bound to a bearer token.
type Session struct {
	UserID    string    `json:"id"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	ZoneID    *string   `json:"zoneId"`
	ZoneName  *string   `json:"zoneName"`
	ZoneType  *ZoneType `json:"zoneType"`
	CreatedAt time.Time `json:"-"`
}

func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// Zone returns the bound zone id or "" when the session has none.
func (s Session) Zone() string {
	if s.ZoneID == nil {
		return ""
	}
	return *s.ZoneID
}
