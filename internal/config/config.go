package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	AirNowAPIKey  string
	AirNowBaseURL string

	// Monitoring site coordinates for the sensor query.
	Latitude      float64
	Longitude     float64
	DistanceMiles int

	// Base origin of the campus notice feed; article links resolve against it.
	NoticesBaseURL string

	// Redis address. Empty means the in-memory cache is used instead.
	RedisAddr string
	CacheTTL  time.Duration

	// Poller settings. PollTargetURL defaults to this process's own
	// snapshot endpoint.
	PollInterval  time.Duration
	PollTargetURL string

	HTTPTimeout time.Duration
	Port        string

	LogLevel  string
	LogFormat string

	// MapLayers is served as-is; names and defaults are not interpreted.
	MapLayers map[string]bool
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.AirNowAPIKey = os.Getenv("AIRNOW_API_KEY")
	cfg.AirNowBaseURL = getenvDefault("AIRNOW_BASE_URL", "https://www.airnowapi.org/aq/observation/latLong/current/")
	cfg.NoticesBaseURL = getenvDefault("NOTICES_BASE_URL", "https://www.sandiego.edu")

	lat, err := getenvFloat("LATITUDE", 32.7157)
	if err != nil {
		return nil, err
	}
	cfg.Latitude = lat

	lon, err := getenvFloat("LONGITUDE", -117.1611)
	if err != nil {
		return nil, err
	}
	cfg.Longitude = lon

	cfg.DistanceMiles = getenvInt("DISTANCE_MILES", 25)

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")

	ttlStr := getenvDefault("CACHE_TTL", "15m")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}
	cfg.CacheTTL = ttl

	// Poll interval: default 5 minutes.
	intervalStr := getenvDefault("POLL_INTERVAL", "5m")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid POLL_INTERVAL: %w", err)
	}
	cfg.PollInterval = interval

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "30s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.PollTargetURL = getenvDefault("POLL_TARGET_URL", "http://localhost:"+cfg.Port+"/api/v1/snapshot")

	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.LogFormat = getenvDefault("LOG_FORMAT", "text")

	layers, err := loadMapLayers()
	if err != nil {
		return nil, err
	}
	cfg.MapLayers = layers

	return cfg, nil
}

// loadMapLayers parses MAP_LAYERS as "name=bool" pairs, e.g.
// "activeFires=true,firePerimeters=false". Unset keeps the defaults.
func loadMapLayers() (map[string]bool, error) {
	layers := map[string]bool{
		"activeFires":      true,
		"firePerimeters":   true,
		"redFlagWarnings":  true,
		"currentEvacAreas": true,
	}
	raw := os.Getenv("MAP_LAYERS")
	if raw == "" {
		return layers, nil
	}
	layers = map[string]bool{}
	for _, pair := range strings.Split(raw, ",") {
		name, val, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			return nil, fmt.Errorf("invalid MAP_LAYERS entry %q", pair)
		}
		enabled, err := strconv.ParseBool(val)
		if err != nil {
			return nil, fmt.Errorf("invalid MAP_LAYERS entry %q: %w", pair, err)
		}
		layers[name] = enabled
	}
	return layers, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
