package http

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/parkfinder/backend/internal/domain"
	"github.com/parkfinder/backend/internal/service"
	"github.com/parkfinder/backend/pkg/utils"
)

// Handler contains all HTTP handlers
type Handler struct {
	searchSvc  *service.SearchService
	parkingSvc *service.ParkingService
	contextSvc *service.ContextService
	currency   *service.CurrencyDetector
	weatherSvc *service.WeatherService
	repo       service.ParkingRepository
}

// Services bundles the dependencies of the HTTP layer
type Services struct {
	Search   *service.SearchService
	Parking  *service.ParkingService
	Context  *service.ContextService
	Currency *service.CurrencyDetector
	Weather  *service.WeatherService
	Repo     service.ParkingRepository
}

// NewHandler creates a new handler
func NewHandler(svc Services) *Handler {
	return &Handler{
		searchSvc:  svc.Search,
		parkingSvc: svc.Parking,
		contextSvc: svc.Context,
		currency:   svc.Currency,
		weatherSvc: svc.Weather,
		repo:       svc.Repo,
	}
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	database := "ok"
	if err := h.repo.Health(c.UserContext()); err != nil {
		database = "unavailable"
	}
	return c.JSON(fiber.Map{
		"status":   "ok",
		"service":  "parkfinder-backend",
		"version":  "1.0.0",
		"database": database,
	})
}

// queryCoordinate reads a coordinate from two query parameters
func queryCoordinate(c *fiber.Ctx, latKey, lngKey string) (domain.Coordinate, error) {
	latRaw, lngRaw := c.Query(latKey), c.Query(lngKey)
	if latRaw == "" || lngRaw == "" {
		return domain.Coordinate{}, fiber.NewError(fiber.StatusBadRequest, "Missing "+latKey+"/"+lngKey+" query parameters")
	}
	lat, errLat := strconv.ParseFloat(latRaw, 64)
	lng, errLng := strconv.ParseFloat(lngRaw, 64)
	if errLat != nil || errLng != nil {
		return domain.Coordinate{}, fiber.NewError(fiber.StatusBadRequest, "Coordinates must be numbers")
	}
	coord := domain.Coordinate{Latitude: lat, Longitude: lng}
	if err := coord.Validate(); err != nil {
		return domain.Coordinate{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return coord, nil
}

// Search runs a nearby search for the category in the path
func (h *Handler) Search(c *fiber.Ctx) error {
	origin, err := queryCoordinate(c, "lat", "lng")
	if err != nil {
		return err
	}

	radius := c.QueryInt("radius", 0)
	if radius < 0 || radius > 50000 { // max 50 km
		radius = 0
	}

	result, err := h.searchSvc.Search(c.UserContext(), domain.Category(c.Params("category")), service.SearchRequest{
		Origin:       origin,
		RadiusMeters: radius,
	})
	if errors.Is(err, service.ErrUnknownCategory) {
		return fiber.NewError(fiber.StatusNotFound, "Unknown search category")
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to search")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}

// GetDistance returns the great-circle distance between two points
func (h *Handler) GetDistance(c *fiber.Ctx) error {
	from, err := queryCoordinate(c, "lat1", "lng1")
	if err != nil {
		return err
	}
	to, err := queryCoordinate(c, "lat2", "lng2")
	if err != nil {
		return err
	}

	km, err := domain.Distance(from, to)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"km": utils.RoundTo(km, 3),
		},
	})
}

// GetPricing returns the regional pricing profile
func (h *Handler) GetPricing(c *fiber.Ctx) error {
	coord, err := queryCoordinate(c, "lat", "lng")
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    service.ClassifyRegion(coord),
	})
}

// GetCurrency detects a currency from ?q= text or from ?lat&lng.
// An optional ?amount= is echoed back formatted in that currency.
func (h *Handler) GetCurrency(c *fiber.Ctx) error {
	var currency, source string
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		currency, source = h.currency.DetectFromText(q), "text"
	} else {
		coord, err := queryCoordinate(c, "lat", "lng")
		if err != nil {
			return err
		}
		currency, source = h.currency.DetectFromCoordinate(c.UserContext(), coord), "reverse_geocode"
	}

	data := fiber.Map{"currency": currency, "source": source}
	if raw := c.Query("amount"); raw != "" {
		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "amount must be a number")
		}
		data["formatted"] = service.FormatPrice(amount, currency)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// GetWeather returns current weather at a coordinate
func (h *Handler) GetWeather(c *fiber.Ctx) error {
	coord, err := queryCoordinate(c, "lat", "lng")
	if err != nil {
		return err
	}

	weather, err := h.weatherSvc.GetWeather(c.UserContext(), coord)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch weather data")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    weather,
	})
}

// GetContext returns pricing, currency and weather for a coordinate
func (h *Handler) GetContext(c *fiber.Ctx) error {
	coord, err := queryCoordinate(c, "lat", "lng")
	if err != nil {
		return err
	}

	data, err := h.contextSvc.GetContext(c.UserContext(), coord)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

type parkingRequest struct {
	Latitude  *float64 `json:"lat"`
	Longitude *float64 `json:"lng"`
	Note      string   `json:"note"`
}

func (r parkingRequest) coordinate() (domain.Coordinate, error) {
	if r.Latitude == nil || r.Longitude == nil {
		return domain.Coordinate{}, fiber.NewError(fiber.StatusBadRequest, "lat and lng are required")
	}
	coord := domain.Coordinate{Latitude: *r.Latitude, Longitude: *r.Longitude}
	if err := coord.Validate(); err != nil {
		return domain.Coordinate{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return coord, nil
}

// storageError maps repository errors to HTTP errors
func storageError(err error, action string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Not found")
	}
	if errors.Is(err, domain.ErrInvalidCoordinate) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, "Failed to "+action)
}

// GetParking returns the saved parking location
func (h *Handler) GetParking(c *fiber.Ctx) error {
	loc, err := h.parkingSvc.Current(c.UserContext())
	if err != nil {
		return storageError(err, "load parking location")
	}
	return c.JSON(fiber.Map{"success": true, "data": loc})
}

// SaveParking stores a new parking location
func (h *Handler) SaveParking(c *fiber.Ctx) error {
	var req parkingRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	coord, err := req.coordinate()
	if err != nil {
		return err
	}

	loc, err := h.parkingSvc.Save(c.UserContext(), coord, req.Note)
	if err != nil {
		return storageError(err, "save parking location")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": loc})
}

// UpdateParking moves the saved pin, keeping its note
func (h *Handler) UpdateParking(c *fiber.Ctx) error {
	var req parkingRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	coord, err := req.coordinate()
	if err != nil {
		return err
	}

	loc, err := h.parkingSvc.UpdatePosition(c.UserContext(), coord)
	if err != nil {
		return storageError(err, "update parking location")
	}
	return c.JSON(fiber.Map{"success": true, "data": loc})
}

// UpdateParkingNote edits the note of the saved location
func (h *Handler) UpdateParkingNote(c *fiber.Ctx) error {
	var req parkingRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	loc, err := h.parkingSvc.UpdateNote(c.UserContext(), req.Note)
	if err != nil {
		return storageError(err, "update note")
	}
	return c.JSON(fiber.Map{"success": true, "data": loc})
}

// ClearParking forgets the saved location
func (h *Handler) ClearParking(c *fiber.Ctx) error {
	if err := h.parkingSvc.Clear(c.UserContext()); err != nil {
		return storageError(err, "clear parking location")
	}
	return c.JSON(fiber.Map{"success": true})
}

// GetParkingHistory returns the last saved locations
func (h *Handler) GetParkingHistory(c *fiber.Ctx) error {
	history, err := h.parkingSvc.History(c.UserContext())
	if err != nil {
		return storageError(err, "load parking history")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    history,
		"count":   len(history),
	})
}

// GetFavorites lists favorite spots
func (h *Handler) GetFavorites(c *fiber.Ctx) error {
	favorites, err := h.parkingSvc.Favorites(c.UserContext())
	if err != nil {
		return storageError(err, "load favorites")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    favorites,
		"count":   len(favorites),
	})
}

// AddFavorite stars a spot
func (h *Handler) AddFavorite(c *fiber.Ctx) error {
	var spot domain.Spot
	if err := c.BodyParser(&spot); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	fav, err := h.parkingSvc.AddFavorite(c.UserContext(), spot)
	if errors.Is(err, service.ErrMissingSpotID) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err != nil {
		return storageError(err, "save favorite")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": fav})
}

// RemoveFavorite un-stars a spot. IDs like "way/123" arrive escaped.
func (h *Handler) RemoveFavorite(c *fiber.Ctx) error {
	id, err := url.PathUnescape(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid favorite id")
	}
	if err := h.parkingSvc.RemoveFavorite(c.UserContext(), id); err != nil {
		return storageError(err, "remove favorite")
	}
	return c.JSON(fiber.Map{"success": true})
}
