package airports

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/Domenick1991/skydispatch/internal/domain"
	"github.com/Domenick1991/skydispatch/internal/geo"
	lru "github.com/hashicorp/golang-lru/v2"
)

const maxSearchResults = 8

// Lookup resolves ICAO codes against the airports dataset.
type Lookup interface {
	Get(icao string) (domain.Airport, bool)
}

// Index is the immutable airports dataset keyed by ICAO.
type Index struct {
	all    []domain.Airport
	byICAO map[string]domain.Airport
	search *lru.Cache[string, []domain.Airport]
}

type rawAirport struct {
	ICAO    string  `json:"icao"`
	IATA    string  `json:"iata"`
	Name    string  `json:"name"`
	City    string  `json:"city"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Load reads a dataset shaped either as an object keyed by ICAO or as a list.
func Load(path string, searchCacheSize int) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read airports dataset: %w", err)
	}

	var keyed map[string]rawAirport
	if err := json.Unmarshal(data, &keyed); err == nil {
		list := make([]rawAirport, 0, len(keyed))
		for _, a := range keyed {
			list = append(list, a)
		}
		return newIndex(list, searchCacheSize)
	}

	var list []rawAirport
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse airports dataset: %w", err)
	}
	return newIndex(list, searchCacheSize)
}

// NewIndex builds an index from already decoded airports.
func NewIndex(list []domain.Airport, searchCacheSize int) (*Index, error) {
	raw := make([]rawAirport, 0, len(list))
	for _, a := range list {
		raw = append(raw, rawAirport(a))
	}
	return newIndex(raw, searchCacheSize)
}

func newIndex(list []rawAirport, searchCacheSize int) (*Index, error) {
	if searchCacheSize <= 0 {
		searchCacheSize = 256
	}
	cache, err := lru.New[string, []domain.Airport](searchCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create search cache: %w", err)
	}

	idx := &Index{byICAO: make(map[string]domain.Airport, len(list)), search: cache}
	for _, r := range list {
		a := domain.Airport{
			ICAO:    domain.NormalizeCode(r.ICAO),
			IATA:    domain.NormalizeCode(r.IATA),
			Name:    r.Name,
			City:    r.City,
			Country: r.Country,
			Lat:     r.Lat,
			Lon:     r.Lon,
		}
		if a.ICAO == "" || math.IsNaN(a.Lat) || math.IsNaN(a.Lon) {
			continue
		}
		idx.byICAO[a.ICAO] = a
	}
	for _, a := range idx.byICAO {
		idx.all = append(idx.all, a)
	}
	sort.Slice(idx.all, func(i, j int) bool { return idx.all[i].ICAO < idx.all[j].ICAO })
	return idx, nil
}

func (i *Index) Get(icao string) (domain.Airport, bool) {
	a, ok := i.byICAO[domain.NormalizeCode(icao)]
	return a, ok
}

func (i *Index) Len() int {
	return len(i.all)
}

// Point returns the coordinates of an airport.
func Point(a domain.Airport) geo.Point {
	return geo.Point{Lat: a.Lat, Lon: a.Lon}
}

// Search ranks airports by how well ICAO/IATA, name or city match query.
func (i *Index) Search(query string) []domain.Airport {
	q := strings.ToLower(strings.TrimSpace(query))
	if len(q) < 2 {
		return []domain.Airport{}
	}
	if cached, ok := i.search.Get(q); ok {
		return cached
	}

	type match struct {
		airport domain.Airport
		score   int
	}
	var matches []match
	for _, a := range i.all {
		if score, ok := searchScore(a, q); ok {
			matches = append(matches, match{airport: a, score: score})
		}
	}
	sort.SliceStable(matches, func(x, y int) bool {
		if matches[x].score != matches[y].score {
			return matches[x].score < matches[y].score
		}
		return matches[x].airport.ICAO < matches[y].airport.ICAO
	})

	result := make([]domain.Airport, 0, maxSearchResults)
	for _, m := range matches {
		if len(result) == maxSearchResults {
			break
		}
		result = append(result, m.airport)
	}
	i.search.Add(q, result)
	return result
}

func searchScore(a domain.Airport, q string) (int, bool) {
	icao := strings.ToLower(a.ICAO)
	iata := strings.ToLower(a.IATA)
	name := strings.ToLower(a.Name)
	city := strings.ToLower(a.City)

	switch {
	case icao == q || (iata != "" && iata == q):
		return 0, true
	case strings.HasPrefix(icao, q) || (iata != "" && strings.HasPrefix(iata, q)):
		return 1, true
	case strings.HasPrefix(name, q) || strings.HasPrefix(city, q):
		return 2, true
	case strings.Contains(icao, q) || (iata != "" && strings.Contains(iata, q)):
		return 3, true
	case strings.Contains(name, q) || strings.Contains(city, q):
		return 4, true
	}
	return 0, false
}

var _ Lookup = (*Index)(nil)
