package domain

import "time"

type ZoneType string

const (
	ZoneTypeRegion  ZoneType = "moscow_region"
	ZoneTypeAirport ZoneType = "moscow_airport"
	ZoneTypeCity    ZoneType = "city"
)

type ZoneLevel string

const (
	ZoneLevelRegion  ZoneLevel = "region"
	ZoneLevelAirport ZoneLevel = "airport"
	ZoneLevelCity    ZoneLevel = "city"
)

// Zone is a circular authority area. ParentID links airport zones to their region.
type Zone struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Type     ZoneType  `json:"type"`
	Level    ZoneLevel `json:"level"`
	RadiusKm float64   `json:"radiusKm"`
	Lat      float64   `json:"lat"`
	Lon      float64   `json:"lon"`
	ICAO     string    `json:"icao,omitempty"`
	ParentID *string   `json:"parentId"`
}

// ZoneAssignment records which user currently holds a zone.
type ZoneAssignment struct {
	UserID     string    `json:"userId"`
	Username   string    `json:"username"`
	Role       Role      `json:"role"`
	AssignedAt time.Time `json:"assignedAt"`
}
