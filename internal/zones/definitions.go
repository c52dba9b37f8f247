package zones

import "github.com/Domenick1991/skydispatch/internal/domain"

const (
	MoscowRegionID = "moscow_region"

	DefaultRadiusKm       = 50
	moscowAirportRadiusKm = 35
	moscowRegionRadiusKm  = 220
)

// Definition describes a zone before it is anchored to airport coordinates.
// A definition with ICAOs is centred on the mean of those airports, otherwise
// on the single ICAO airport.
type Definition struct {
	ID       string           `yaml:"id" toml:"id"`
	Name     string           `yaml:"name" toml:"name"`
	Type     domain.ZoneType  `yaml:"type" toml:"type"`
	Level    domain.ZoneLevel `yaml:"level" toml:"level"`
	ParentID string           `yaml:"parent_id" toml:"parent_id"`
	ICAO     string           `yaml:"icao" toml:"icao"`
	ICAOs    []string         `yaml:"icaos" toml:"icaos"`
	RadiusKm float64          `yaml:"radius_km" toml:"radius_km"`
}

func city(id, name, icao string) Definition {
	return Definition{ID: id, Name: name, ICAO: icao}
}

// DefaultDefinitions is the built-in zone layout: the Moscow region with its
// two airport sub-zones plus standalone city zones.
func DefaultDefinitions() []Definition {
	return []Definition{
		{
			ID:       MoscowRegionID,
			Name:     "Moscow (region)",
			Type:     domain.ZoneTypeRegion,
			Level:    domain.ZoneLevelRegion,
			ICAOs:    []string{"UUDD", "UUEE"},
			RadiusKm: moscowRegionRadiusKm,
		},
		{
			ID:       "moscow_uudd",
			Name:     "Domodedovo",
			Type:     domain.ZoneTypeAirport,
			Level:    domain.ZoneLevelAirport,
			ParentID: MoscowRegionID,
			ICAO:     "UUDD",
			RadiusKm: moscowAirportRadiusKm,
		},
		{
			ID:       "moscow_uuee",
			Name:     "Sheremetyevo",
			Type:     domain.ZoneTypeAirport,
			Level:    domain.ZoneLevelAirport,
			ParentID: MoscowRegionID,
			ICAO:     "UUEE",
			RadiusKm: moscowAirportRadiusKm,
		},
		city("pulkovo", "Pulkovo", "ULLI"),
		city("sochi", "Sochi", "URSS"),
		city("vladikavkaz", "Vladikavkaz", "URMO"),
		city("simferopol", "Simferopol", "UKFF"),
		city("nizhny_novgorod", "Nizhny Novgorod", "UWGG"),
		city("minsk", "Minsk", "UMMS"),
		city("samara", "Samara", "UWWW"),
		city("platov", "Platov", "URRR"),
		city("ufa", "Ufa", "UWUU"),
		city("yekaterinburg", "Yekaterinburg", "USSS"),
		city("chelyabinsk", "Chelyabinsk", "USCC"),
		city("perm", "Perm", "USPP"),
		city("tyumen", "Tyumen", "USTR"),
		city("omsk", "Omsk", "UNOO"),
		city("nizhnevartovsk", "Nizhnevartovsk", "USNN"),
		city("novosibirsk", "Novosibirsk", "UNNT"),
		city("kemerovo", "Kemerovo", "UNKM"),
		city("krasnoyarsk", "Krasnoyarsk", "UNKL"),
		city("murmansk", "Murmansk", "ULMM"),
		city("arkhangelsk", "Arkhangelsk", "ULAA"),
		city("kaliningrad", "Kaliningrad", "UMKK"),
		city("helsinki", "Helsinki", "EFHK"),
		city("vilnius", "Vilnius", "EYVI"),
		city("riga", "Riga", "EVRA"),
		city("tallinn", "Tallinn", "EETN"),
		city("istanbul", "Istanbul", "LTFM"),
		city("sacramento", "Sacramento", "KSMF"),
		city("san_francisco", "San Francisco", "KSFO"),
		city("monterey", "Monterey", "KMRY"),
		city("san_diego", "San Diego", "KSAN"),
		city("los_angeles", "Los Angeles", "KLAX"),
		city("palm_springs", "Palm Springs", "KPSP"),
		city("las_vegas", "Las Vegas", "KLAS"),
		city("salt_lake_city", "Salt Lake City", "KSLC"),
		city("denver", "Denver", "KDEN"),
	}
}
