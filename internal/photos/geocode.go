package photos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const UnknownCity = "Unknown"

const geocodeCacheTTL = 30 * 24 * time.Hour

// Location is a reverse-geocoded place.
type Location struct {
	City   string   `json:"city"`
	Region string   `json:"region"`
	Zip    string   `json:"zip"`
	Lat    *float64 `json:"lat"`
	Lng    *float64 `json:"lng"`
}

func (l Location) Known() bool {
	return l.City != "" && l.City != UnknownCity
}

// GeocodeKey rounds a position to five decimals (about a meter).
func GeocodeKey(c Coord) string {
	return fmt.Sprintf("%.5f,%.5f", c.Lat, c.Lng)
}

// Geocoder resolves GPS positions through the Nominatim reverse endpoint.
// Results are cached in memory and, when Redis is set, shared across runs.
type Geocoder struct {
	BaseURL   string
	UserAgent string
	HTTP      *http.Client
	Redis     *redis.Client
	Log       *zap.Logger

	mu    sync.Mutex
	cache map[string]Location
}

func NewGeocoder(baseURL, userAgent string, rdb *redis.Client, log *zap.Logger) *Geocoder {
	return &Geocoder{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		UserAgent: userAgent,
		HTTP:      &http.Client{Timeout: 10 * time.Second},
		Redis:     rdb,
		Log:       log,
	}
}

type nominatimResponse struct {
	Address struct {
		City     string `json:"city"`
		Town     string `json:"town"`
		Village  string `json:"village"`
		State    string `json:"state"`
		Country  string `json:"country"`
		Postcode string `json:"postcode"`
	} `json:"address"`
	Error string `json:"error"`
}

// Reverse returns the place at c, or nil when none is found.
func (g *Geocoder) Reverse(ctx context.Context, c Coord) (*Location, error) {
	key := GeocodeKey(c)
	if loc, ok := g.cached(ctx, key); ok {
		return &loc, nil
	}

	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(c.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(c.Lng, 'f', -1, 64))
	q.Set("addressdetails", "1")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.BaseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", g.UserAgent)
	req.Header.Set("Accept", "application/json")

	client := g.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reverse geocode: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reverse geocode: status %d", resp.StatusCode)
	}
	var body nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("reverse geocode: %w", err)
	}
	if body.Error != "" {
		return nil, nil
	}

	lat, lng := c.Lat, c.Lng
	loc := Location{
		City:   firstNonEmpty(body.Address.City, body.Address.Town, body.Address.Village, UnknownCity),
		Region: firstNonEmpty(body.Address.State, body.Address.Country),
		Zip:    body.Address.Postcode,
		Lat:    &lat,
		Lng:    &lng,
	}
	g.store(ctx, key, loc)
	return &loc, nil
}

func (g *Geocoder) cached(ctx context.Context, key string) (Location, bool) {
	g.mu.Lock()
	loc, ok := g.cache[key]
	g.mu.Unlock()
	if ok || g.Redis == nil {
		return loc, ok
	}

	raw, err := g.Redis.Get(ctx, "geocode:"+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			g.logger().Warn("geocode cache read failed", zap.String("key", key), zap.Error(err))
		}
		return Location{}, false
	}
	if err := json.Unmarshal(raw, &loc); err != nil {
		return Location{}, false
	}
	g.remember(key, loc)
	return loc, true
}

func (g *Geocoder) store(ctx context.Context, key string, loc Location) {
	g.remember(key, loc)
	if g.Redis == nil {
		return
	}
	raw, err := json.Marshal(loc)
	if err != nil {
		return
	}
	if err := g.Redis.Set(ctx, "geocode:"+key, raw, geocodeCacheTTL).Err(); err != nil {
		g.logger().Warn("geocode cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (g *Geocoder) remember(key string, loc Location) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cache == nil {
		g.cache = make(map[string]Location)
	}
	g.cache[key] = loc
}

func (g *Geocoder) logger() *zap.Logger {
	if g.Log == nil {
		return zap.NewNop()
	}
	return g.Log
}
