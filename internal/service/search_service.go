package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/parkfinder/backend/internal/domain"
	"golang.org/x/sync/errgroup"
)

// OverpassQuerier runs structured tag queries
type OverpassQuerier interface {
	Query(ctx context.Context, query string) ([]OverpassElement, error)
}

// PlaceSearcher runs free-text place searches near a point
type PlaceSearcher interface {
	Search(ctx context.Context, query string, near domain.Coordinate, radiusKm float64, limit int) ([]Place, error)
}

// SearchConfig tunes provider calls
type SearchConfig struct {
	RadiusMeters    int
	ProviderTimeout time.Duration
	Concurrency     int
	PlaceLimit      int
}

// SearchRequest is one nearby search; zero RadiusMeters means the configured default
type SearchRequest struct {
	Origin       domain.Coordinate
	RadiusMeters int
}

// SearchResult is always non-nil and sorted by distance.
// Degraded means a provider failed, as opposed to answering with nothing.
type SearchResult[T any] struct {
	Category  domain.Category   `json:"category"`
	Origin    domain.Coordinate `json:"origin"`
	Items     []T               `json:"items"`
	Live      int               `json:"live"`
	Synthetic int               `json:"synthetic"`
	Dropped   int               `json:"dropped"`
	Degraded  bool              `json:"degraded"`
}

// descriptor is everything that differs between categories
type descriptor[T record] struct {
	category      domain.Category
	filters       []string
	searchTerms   []string
	dedupKm       float64
	maxResults    int
	minResults    int
	fallbackCount int
	fromElement   func(el OverpassElement, origin domain.Coordinate) (T, bool)
	fromPlace     func(p Place, origin domain.Coordinate) (T, bool)
	synthesize    func(origin domain.Coordinate, count int) []T
}

// SearchService finds nearby parking, fuel, charging and transit records
type SearchService struct {
	overpass   OverpassQuerier
	places     PlaceSearcher
	normalizer *Normalizer
	synth      *Synthesizer
	repo       ParkingRepository
	cfg        SearchConfig

	wgBg sync.WaitGroup // tracks background search-log writes for graceful shutdown
}

// NewSearchService creates a new search service. places and repo may be nil.
func NewSearchService(
	overpass OverpassQuerier,
	places PlaceSearcher,
	rng Rand,
	repo ParkingRepository,
	cfg SearchConfig,
) *SearchService {
	if cfg.RadiusMeters <= 0 {
		cfg.RadiusMeters = 2000
	}
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = 8 * time.Second
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 3
	}
	if cfg.PlaceLimit <= 0 {
		cfg.PlaceLimit = 10
	}
	return &SearchService{
		overpass:   overpass,
		places:     places,
		normalizer: NewNormalizer(rng),
		synth:      NewSynthesizer(rng),
		repo:       repo,
		cfg:        cfg,
	}
}

// WaitBackground blocks until all background log writes complete.
// Call during graceful shutdown to avoid dropped writes.
func (s *SearchService) WaitBackground() {
	s.wgBg.Wait()
}

// Search dispatches by category and returns a SearchResult of the matching record type
func (s *SearchService) Search(ctx context.Context, category domain.Category, req SearchRequest) (any, error) {
	switch category {
	case domain.CategoryFreeParking:
		return s.FreeParking(ctx, req), nil
	case domain.CategoryPaidParking:
		return s.PaidParking(ctx, req), nil
	case domain.CategoryGasStations:
		return s.GasStations(ctx, req), nil
	case domain.CategoryEVChargers:
		return s.EVChargers(ctx, req), nil
	case domain.CategoryBusStations:
		return s.BusStations(ctx, req), nil
	case domain.CategoryBicycleRoads:
		return s.BicycleRoads(ctx, req), nil
	default:
		return nil, fmt.Errorf("search: %w: %q", ErrUnknownCategory, category)
	}
}

// FreeParking finds parking without a fee tag
func (s *SearchService) FreeParking(ctx context.Context, req SearchRequest) SearchResult[domain.Spot] {
	return runSearch(ctx, s, descriptor[domain.Spot]{
		category:      domain.CategoryFreeParking,
		filters:       []string{`nwr["amenity"="parking"]["fee"!="yes"]`},
		dedupKm:       0.05,
		maxResults:    25,
		minResults:    5,
		fallbackCount: 25,
		fromElement: func(el OverpassElement, origin domain.Coordinate) (domain.Spot, bool) {
			return s.normalizer.Parking(el, origin, false)
		},
		synthesize: s.synth.FreeParking,
	}, req)
}

// PaidParking merges tagged paid parking with free-text garage searches
func (s *SearchService) PaidParking(ctx context.Context, req SearchRequest) SearchResult[domain.Spot] {
	return runSearch(ctx, s, descriptor[domain.Spot]{
		category:      domain.CategoryPaidParking,
		filters:       []string{`nwr["amenity"="parking"]["fee"="yes"]`},
		searchTerms:   []string{"parking garage", "car park", "paid parking", "parking lot"},
		dedupKm:       0.05,
		maxResults:    15,
		minResults:    5,
		fallbackCount: 10,
		fromElement: func(el OverpassElement, origin domain.Coordinate) (domain.Spot, bool) {
			return s.normalizer.Parking(el, origin, true)
		},
		fromPlace:  s.normalizer.ParkingPlace,
		synthesize: s.synth.PaidParking,
	}, req)
}

// GasStations finds fuel stations
func (s *SearchService) GasStations(ctx context.Context, req SearchRequest) SearchResult[domain.GasStation] {
	return runSearch(ctx, s, descriptor[domain.GasStation]{
		category:      domain.CategoryGasStations,
		filters:       []string{`nwr["amenity"="fuel"]`},
		dedupKm:       0.05,
		maxResults:    20,
		minResults:    3,
		fallbackCount: 10,
		fromElement:   s.normalizer.GasStation,
		synthesize:    s.synth.GasStations,
	}, req)
}

// EVChargers finds charging stations
func (s *SearchService) EVChargers(ctx context.Context, req SearchRequest) SearchResult[domain.Spot] {
	return runSearch(ctx, s, descriptor[domain.Spot]{
		category:      domain.CategoryEVChargers,
		filters:       []string{`nwr["amenity"="charging_station"]`},
		dedupKm:       0.1,
		maxResults:    12,
		minResults:    3,
		fallbackCount: 8,
		fromElement:   s.normalizer.Charger,
		synthesize:    s.synth.Chargers,
	}, req)
}

// BusStations finds bus stops and platforms
func (s *SearchService) BusStations(ctx context.Context, req SearchRequest) SearchResult[domain.BusStation] {
	return runSearch(ctx, s, descriptor[domain.BusStation]{
		category: domain.CategoryBusStations,
		filters: []string{
			`node["highway"="bus_stop"]`,
			`nwr["public_transport"="platform"]["bus"="yes"]`,
		},
		dedupKm:       0.03,
		maxResults:    20,
		minResults:    3,
		fallbackCount: 10,
		fromElement:   s.normalizer.BusStation,
		synthesize:    s.synth.BusStations,
	}, req)
}

// BicycleRoads finds cycleways and roads with bike lanes
func (s *SearchService) BicycleRoads(ctx context.Context, req SearchRequest) SearchResult[domain.BicycleRoad] {
	return runSearch(ctx, s, descriptor[domain.BicycleRoad]{
		category: domain.CategoryBicycleRoads,
		filters: []string{
			`way["highway"="cycleway"]`,
			`way["cycleway"~"lane|track"]`,
		},
		dedupKm:       0.05,
		maxResults:    15,
		minResults:    2,
		fallbackCount: 8,
		fromElement:   s.normalizer.BicycleRoad,
		synthesize:    s.synth.BicycleRoads,
	}, req)
}

// batch is the raw answer of one provider sub-query.
// Normalization happens after all sub-queries return, because it draws from the shared Rand.
type batch struct {
	elements []OverpassElement
	places   []Place
	failed   bool
}

// synthRedraws bounds how often a top-up record is redrawn for landing on top of another
const synthRedraws = 8

// runSearch queries providers, normalizes, dedupes, caps and tops up with synthetic records.
// It never fails: provider errors are logged and compensated for.
func runSearch[T record](ctx context.Context, s *SearchService, d descriptor[T], req SearchRequest) SearchResult[T] {
	result := SearchResult[T]{Category: d.category, Origin: req.Origin, Items: []T{}}
	if err := req.Origin.Validate(); err != nil {
		log.Printf("search: %s: rejected origin: %v", d.category, err)
		return result
	}
	radius := req.RadiusMeters
	if radius <= 0 {
		radius = s.cfg.RadiusMeters
	}

	terms := d.searchTerms
	if s.places == nil || d.fromPlace == nil {
		terms = nil
	}
	batches := make([]batch, 1+len(terms))

	// each goroutine owns one slot, so merge order is fixed regardless of completion order
	var g errgroup.Group
	g.SetLimit(s.cfg.Concurrency)
	g.Go(func() error {
		batches[0] = s.queryOverpass(ctx, d.category, d.filters, req.Origin, radius)
		return nil
	})
	for i, term := range terms {
		i, term := i, term
		g.Go(func() error {
			batches[i+1] = s.searchPlaces(ctx, d.category, term, req.Origin, radius)
			return nil
		})
	}
	_ = g.Wait()

	var merged []T
	for _, b := range batches {
		result.Degraded = result.Degraded || b.failed
		for _, el := range b.elements {
			item, ok := d.fromElement(el, req.Origin)
			if !ok {
				result.Dropped++
				continue
			}
			merged = append(merged, item)
		}
		for _, p := range b.places {
			item, ok := d.fromPlace(p, req.Origin)
			if !ok {
				result.Dropped++
				continue
			}
			merged = append(merged, item)
		}
	}
	if result.Dropped > 0 {
		log.Printf("search: %s: dropped %d malformed elements", d.category, result.Dropped)
	}

	sortByDistance(merged)
	merged = dedupeNearby(merged, d.dedupKm)
	if len(merged) > d.maxResults {
		merged = merged[:d.maxResults]
	}
	result.Live = len(merged)

	need := 0
	switch {
	case len(merged) == 0:
		need = d.fallbackCount
	case len(merged) < d.minResults:
		need = d.minResults - len(merged)
	}
	if room := d.maxResults - len(merged); need > room {
		need = room
	}
	if need > 0 {
		merged = append(merged, synthesizeApart(d, req.Origin, merged, need)...)
		sortByDistance(merged)
		result.Synthetic = need
	}

	if merged != nil {
		result.Items = merged
	}
	s.logSearch(result.Category, req.Origin, result.Live, result.Synthetic, result.Degraded)
	return result
}

// synthesizeApart draws exactly need synthetic records, redrawing any that land
// within dedupKm of a kept record or of each other. After synthRedraws rounds
// the remainder is kept as drawn.
func synthesizeApart[T record](d descriptor[T], origin domain.Coordinate, kept []T, need int) []T {
	out := make([]T, 0, need)
	for round := 0; len(out) < need; round++ {
		last := round >= synthRedraws
		for _, item := range d.synthesize(origin, need-len(out)) {
			if last || (!nearAny(item, kept, d.dedupKm) && !nearAny(item, out, d.dedupKm)) {
				out = append(out, item)
			}
		}
	}
	return out
}

func (s *SearchService) queryOverpass(ctx context.Context, category domain.Category, filters []string, origin domain.Coordinate, radius int) batch {
	if s.overpass == nil {
		return batch{failed: true}
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ProviderTimeout)
	defer cancel()

	elements, err := s.overpass.Query(ctx, BuildOverpassQuery(filters, origin, radius))
	if err != nil {
		log.Printf("search: %s: overpass query failed, falling back: %v", category, err)
		return batch{failed: true}
	}
	return batch{elements: elements}
}

func (s *SearchService) searchPlaces(ctx context.Context, category domain.Category, term string, origin domain.Coordinate, radius int) batch {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ProviderTimeout)
	defer cancel()

	places, err := s.places.Search(ctx, term, origin, float64(radius)/1000, s.cfg.PlaceLimit)
	if err != nil {
		log.Printf("search: %s: place search %q failed: %v", category, term, err)
		return batch{failed: true}
	}
	return batch{places: places}
}

// logSearch persists an audit entry in the background
func (s *SearchService) logSearch(category domain.Category, origin domain.Coordinate, live, synthetic int, degraded bool) {
	if s.repo == nil {
		return
	}
	entry := domain.SearchLog{
		Category:  category,
		Latitude:  origin.Latitude,
		Longitude: origin.Longitude,
		Live:      live,
		Synthetic: synthetic,
		Degraded:  degraded,
		CreatedAt: time.Now(),
	}

	s.wgBg.Add(1)
	go func() {
		defer s.wgBg.Done()
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.repo.SaveSearchLog(bgCtx, entry); err != nil {
			log.Printf("Failed to save search log: %v", err)
		}
	}()
}
