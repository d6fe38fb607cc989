package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/SainandaG/badmintion-stringing/internal/types"
)

// Location is a resolved address.
type Location struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	City        string  `json:"city"`
	DisplayName string  `json:"display_name"`
}

// Point returns the location's coordinate pair.
func (l Location) Point() Point {
	return Point{Lat: l.Lat, Lon: l.Lon}
}

// Geocoder resolves free-form addresses to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (Location, error)
}

// Config contains the Nominatim client settings.
type Config struct {
	BaseURL        string
	UserAgent      string
	Timeout        time.Duration
	RequestsPerSec float64
}

// DefaultConfig returns settings appropriate for the public Nominatim
// instance, which requires a descriptive User-Agent and at most one request
// per second.
func DefaultConfig() Config {
	return Config{
		BaseURL:        "https://nominatim.openstreetmap.org",
		UserAgent:      "badminton-stringing-service/1.0",
		Timeout:        10 * time.Second,
		RequestsPerSec: 1,
	}
}

// NominatimClient geocodes addresses against a Nominatim instance. Requests
// are rate limited client-side and a timed-out request is retried exactly
// once.
type NominatimClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewNominatimClient creates a geocoding client from config.
func NewNominatimClient(cfg Config, logger *slog.Logger) *NominatimClient {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfig().BaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultConfig().UserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = DefaultConfig().RequestsPerSec
	}

	return &NominatimClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), 1),
		logger:     logger.With("component", "geo.nominatim"),
	}
}

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode resolves a free-form address via the /search endpoint.
func (c *NominatimClient) Geocode(ctx context.Context, address string) (Location, error) {
	if strings.TrimSpace(address) == "" {
		return Location{}, types.NewError(types.GEOCODE_FAILED, "address is required")
	}

	query := url.Values{}
	query.Set("q", address)
	query.Set("format", "json")
	query.Set("limit", "1")

	body, err := c.get(ctx, "/search", query)
	if err != nil {
		return Location{}, err
	}

	var results []searchResult
	if err := json.Unmarshal(body, &results); err != nil {
		return Location{}, types.WrapError(types.GEOCODE_FAILED, "malformed geocoding response", err)
	}
	if len(results) == 0 {
		return Location{}, types.NewError(types.GEOCODE_NOT_FOUND, fmt.Sprintf("no results for address %q", address))
	}

	return locationFromResult(results[0])
}

type reverseResult struct {
	DisplayName string `json:"display_name"`
}

// Reverse resolves coordinates to a display address via /reverse.
func (c *NominatimClient) Reverse(ctx context.Context, p Point) (string, error) {
	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(p.Lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(p.Lon, 'f', -1, 64))
	query.Set("format", "json")

	body, err := c.get(ctx, "/reverse", query)
	if err != nil {
		return "", err
	}

	var result reverseResult
	if err := json.Unmarshal(body, &result); err != nil {
		return "", types.WrapError(types.GEOCODE_FAILED, "malformed reverse geocoding response", err)
	}
	if result.DisplayName == "" {
		return "", types.NewError(types.GEOCODE_NOT_FOUND, fmt.Sprintf("no address at %.5f,%.5f", p.Lat, p.Lon))
	}

	return result.DisplayName, nil
}

// get performs a rate-limited GET, retrying once when the request times out.
func (c *NominatimClient) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, types.WrapError(types.GEOCODE_FAILED, "rate limiter interrupted", err)
	}

	body, err := c.doGet(ctx, path, query)
	if err == nil {
		return body, nil
	}
	if !isTimeout(err) {
		return nil, types.WrapError(types.GEOCODE_FAILED, "geocoding request failed", err)
	}

	c.logger.Warn("geocoding request timed out, retrying once", "path", path)
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, types.WrapError(types.GEOCODE_FAILED, "rate limiter interrupted", err)
	}

	body, err = c.doGet(ctx, path, query)
	if err != nil {
		if isTimeout(err) {
			return nil, types.WrapError(types.GEOCODE_TIMEOUT, "geocoding request timed out after retry", err)
		}
		return nil, types.WrapError(types.GEOCODE_FAILED, "geocoding request failed", err)
	}
	return body, nil
}

func (c *NominatimClient) doGet(ctx context.Context, path string, query url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// locationFromResult parses a search hit, extracting the city as the
// third-from-last comma-separated component of the display address.
func locationFromResult(r searchResult) (Location, error) {
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return Location{}, types.WrapError(types.GEOCODE_FAILED, "malformed latitude in response", err)
	}
	lon, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return Location{}, types.WrapError(types.GEOCODE_FAILED, "malformed longitude in response", err)
	}

	return Location{
		Lat:         lat,
		Lon:         lon,
		City:        cityFromDisplayName(r.DisplayName),
		DisplayName: r.DisplayName,
	}, nil
}

func cityFromDisplayName(displayName string) string {
	parts := strings.Split(displayName, ",")
	if len(parts) < 3 {
		return ""
	}
	return strings.TrimSpace(parts[len(parts)-3])
}
