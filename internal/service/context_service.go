package service

import (
	"context"
	"log"

	"github.com/parkfinder/backend/internal/domain"
	"golang.org/x/sync/errgroup"
)

// ContextService aggregates pricing, currency and weather for a map location
type ContextService struct {
	currency   *CurrencyDetector
	weatherSvc *WeatherService
}

// NewContextService creates a new context service; weatherSvc may be nil
func NewContextService(currency *CurrencyDetector, weatherSvc *WeatherService) *ContextService {
	return &ContextService{
		currency:   currency,
		weatherSvc: weatherSvc,
	}
}

// GetContext resolves currency and weather concurrently.
// Failures degrade single fields; only an invalid coordinate is an error.
func (s *ContextService) GetContext(ctx context.Context, c domain.Coordinate) (domain.LocationContext, error) {
	if err := c.Validate(); err != nil {
		return domain.LocationContext{}, err
	}

	out := domain.LocationContext{
		Location: c,
		Pricing:  ClassifyRegion(c),
		Currency: DefaultCurrency,
	}

	// each goroutine writes a distinct field
	var g errgroup.Group
	g.Go(func() error {
		out.Currency = s.currency.DetectFromCoordinate(ctx, c)
		return nil
	})
	if s.weatherSvc != nil {
		g.Go(func() error {
			w, err := s.weatherSvc.GetWeather(ctx, c)
			if err != nil {
				log.Printf("Location context weather error: %v", err)
				return nil
			}
			out.Weather = &w
			return nil
		})
	}
	_ = g.Wait()

	return out, nil
}
