package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/parkfinder/backend/internal/domain"
)

// WeatherService handles weather data fetching
type WeatherService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

// NewWeatherService creates a new weather service
func NewWeatherService(apiKey string) *WeatherService {
	return &WeatherService{
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org",
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		now: time.Now,
	}
}

// WithBaseURL points the service at another OpenWeather-compatible host
func (s *WeatherService) WithBaseURL(baseURL string) *WeatherService {
	s.baseURL = strings.TrimRight(baseURL, "/")
	return s
}

// OpenWeatherResponse represents the OpenWeatherMap API response
type OpenWeatherResponse struct {
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
		Pressure  int     `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Visibility int    `json:"visibility"`
	Name       string `json:"name"`
	Sys        struct {
		Country string `json:"country"`
	} `json:"sys"`
}

// GetWeather fetches current weather at c.
// Without an API key, or when the provider fails, a seasonal estimate is returned.
func (s *WeatherService) GetWeather(ctx context.Context, c domain.Coordinate) (domain.Weather, error) {
	if err := c.Validate(); err != nil {
		return domain.Weather{}, fmt.Errorf("weather: %w", err)
	}
	if s.apiKey == "" {
		return s.getMockWeather(c), nil
	}

	params := url.Values{
		"lat":   {fmt.Sprintf("%f", c.Latitude)},
		"lon":   {fmt.Sprintf("%f", c.Longitude)},
		"appid": {s.apiKey},
		"units": {"metric"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/data/2.5/weather?"+params.Encode(), nil)
	if err != nil {
		return domain.Weather{}, fmt.Errorf("weather: failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		// Fallback to mock on network error
		return s.getMockWeather(c), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return s.getMockWeather(c), nil
	}

	var owResp OpenWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&owResp); err != nil {
		log.Printf("weather: failed to decode response, using seasonal estimate: %v", err)
		return s.getMockWeather(c), nil
	}

	weather := domain.Weather{
		Temperature: owResp.Main.Temp,
		FeelsLike:   owResp.Main.FeelsLike,
		Humidity:    owResp.Main.Humidity,
		Pressure:    owResp.Main.Pressure,
		WindSpeed:   owResp.Wind.Speed,
		Visibility:  owResp.Visibility,
		City:        owResp.Name,
		Country:     owResp.Sys.Country,
		Timestamp:   s.now(),
	}
	if len(owResp.Weather) > 0 {
		weather.Description = owResp.Weather[0].Description
		weather.Icon = owResp.Weather[0].Icon
	}

	return weather, nil
}

// getMockWeather returns a seasonal estimate; seasons flip south of the equator
func (s *WeatherService) getMockWeather(c domain.Coordinate) domain.Weather {
	month := s.now().Month()
	if c.Latitude < 0 {
		month = (month+5)%12 + 1
	}

	var temp, feelsLike float64
	var description, icon string
	switch {
	case month == 12 || month <= 2: // Winter
		temp, feelsLike, description, icon = 2.0, -2.0, "Light snow", "13d"
	case month <= 5: // Spring
		temp, feelsLike, description, icon = 14.0, 12.0, "Partly cloudy", "02d"
	case month <= 8: // Summer
		temp, feelsLike, description, icon = 27.0, 29.0, "Clear sky", "01d"
	default: // Autumn
		temp, feelsLike, description, icon = 10.0, 8.0, "Overcast clouds", "04d"
	}

	return domain.Weather{
		Temperature: temp,
		FeelsLike:   feelsLike,
		Humidity:    65,
		Description: description,
		Icon:        icon,
		WindSpeed:   3.5,
		Visibility:  8000,
		Pressure:    1015,
		Timestamp:   s.now(),
		IsMock:      true,
	}
}
