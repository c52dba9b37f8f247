// Package airportstest provides a small airports index for tests.
package airportstest

import (
	"testing"

	"github.com/Domenick1991/skydispatch/internal/airports"
	"github.com/Domenick1991/skydispatch/internal/domain"
)

// Airports is a subset of the real dataset covering the Moscow zones, a few
// city zones and the seeded routes.
var Airports = []domain.Airport{
	{ICAO: "UUDD", IATA: "DME", Name: "Domodedovo International Airport", City: "Moscow", Country: "RU", Lat: 55.4088, Lon: 37.9063},
	{ICAO: "UUEE", IATA: "SVO", Name: "Sheremetyevo International Airport", City: "Moscow", Country: "RU", Lat: 55.9726, Lon: 37.4146},
	{ICAO: "UUWW", IATA: "VKO", Name: "Vnukovo International Airport", City: "Moscow", Country: "RU", Lat: 55.5915, Lon: 37.2615},
	{ICAO: "ULLI", IATA: "LED", Name: "Pulkovo Airport", City: "St. Petersburg", Country: "RU", Lat: 59.8003, Lon: 30.2625},
	{ICAO: "URSS", IATA: "AER", Name: "Sochi International Airport", City: "Sochi", Country: "RU", Lat: 43.4499, Lon: 39.9566},
	{ICAO: "KJFK", IATA: "JFK", Name: "John F Kennedy International Airport", City: "New York", Country: "US", Lat: 40.6398, Lon: -73.7789},
	{ICAO: "KLAX", IATA: "LAX", Name: "Los Angeles International Airport", City: "Los Angeles", Country: "US", Lat: 33.9425, Lon: -118.408},
	{ICAO: "KSFO", IATA: "SFO", Name: "San Francisco International Airport", City: "San Francisco", Country: "US", Lat: 37.619, Lon: -122.375},
	{ICAO: "EGLL", IATA: "LHR", Name: "London Heathrow Airport", City: "London", Country: "GB", Lat: 51.4706, Lon: -0.461941},
	{ICAO: "EDDF", IATA: "FRA", Name: "Frankfurt am Main Airport", City: "Frankfurt", Country: "DE", Lat: 50.0333, Lon: 8.57056},
	{ICAO: "EHAM", IATA: "AMS", Name: "Amsterdam Airport Schiphol", City: "Amsterdam", Country: "NL", Lat: 52.3086, Lon: 4.76389},
	{ICAO: "LFPG", IATA: "CDG", Name: "Charles de Gaulle International Airport", City: "Paris", Country: "FR", Lat: 49.0128, Lon: 2.55},
}

// Index returns an index over Airports.
func Index(t testing.TB) *airports.Index {
	t.Helper()
	idx, err := airports.NewIndex(Airports, 16)
	if err != nil {
		t.Fatalf("build airports index: %v", err)
	}
	return idx
}
