package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/omarioz/BiyoKaab/pkg/config"
)

// Tank geometry defaults applied when a device has no explicit entry.
const (
	DefaultTankHeightCm  = 100.0
	DefaultTankCapacityL = 200.0
)

// TankConfig describes one device's tank geometry.
type TankConfig struct {
	TankHeightCm  float64 `json:"tank_height_cm"`
	TankCapacityL float64 `json:"tank_capacity_l"`
}

// Config is the full service configuration.
type Config struct {
	Database config.DatabaseConfig
	Redis    config.RedisConfig
	MQTT     config.MQTTConfig
	OpenAI   config.OpenAIConfig
	Climate  config.ClimateConfig

	HTTP struct {
		Addr string
	}

	// Per-device tank geometry, keyed by device_id. Devices absent from the
	// map use the defaults above.
	Tanks map[string]TankConfig

	// How often the climate refresher sweeps all locations. Only used when
	// Climate.BaseURL is set.
	ClimateRefreshInterval time.Duration

	Planner struct {
		DefaultHorizonDays int
		Timeout            time.Duration
	}

	Dashboard struct {
		CacheKeyPrefix string
		CacheTTL       time.Duration
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load builds configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Database = config.DatabaseConfig{
		Host:        "localhost",
		Port:        5432,
		User:        "postgres",
		Password:    "postgres",
		Database:    "biyokaab",
		SSLMode:     "disable",
		MaxConns:    getEnvInt("DB_MAX_CONNS", 20),
		MaxIdle:     getEnvInt("DB_MAX_IDLE", 5),
		MaxIdleTime: 5 * time.Minute,
	}
	cfg.Database.LoadFromEnv("DB")

	cfg.Redis = config.RedisConfig{Addr: "localhost:6379"}
	cfg.Redis.LoadFromEnv("REDIS")

	cfg.MQTT = config.MQTTConfig{
		Broker:   "tcp://localhost:1883",
		ClientID: "biyokaab-ingest",
		Topic:    "biyokaab/+/telemetry",
		QoS:      1,
	}
	cfg.MQTT.LoadFromEnv("MQTT")

	cfg.OpenAI.APIKey = getEnv("OPENAI_API_KEY", "")
	cfg.OpenAI.Model = getEnv("OPENAI_MODEL", "gpt-4o-mini")

	cfg.Climate.BaseURL = getEnv("SWALIM_BASE_URL", "")
	cfg.Climate.APIKey = getEnv("SWALIM_API_KEY", "")
	cfg.ClimateRefreshInterval = time.Duration(getEnvInt("CLIMATE_REFRESH_HOURS", 6)) * time.Hour

	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	tanks, err := loadTanks(os.Getenv("TANK_CONFIG"))
	if err != nil {
		return nil, err
	}
	cfg.Tanks = tanks

	cfg.Planner.DefaultHorizonDays = getEnvInt("PLANNER_DEFAULT_HORIZON_DAYS", 7)
	cfg.Planner.Timeout = time.Duration(getEnvInt("PLANNER_TIMEOUT_SECONDS", 60)) * time.Second

	cfg.Dashboard.CacheKeyPrefix = getEnv("CACHE_DASHBOARD_PREFIX", "biyokaab:dashboard:")
	cfg.Dashboard.CacheTTL = time.Duration(getEnvInt("CACHE_DASHBOARD_TTL", 30)) * time.Second

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

// TankFor returns the geometry for a device, falling back to defaults.
func (c *Config) TankFor(deviceID string) TankConfig {
	if t, ok := c.Tanks[deviceID]; ok {
		return t
	}
	return TankConfig{
		TankHeightCm:  DefaultTankHeightCm,
		TankCapacityL: DefaultTankCapacityL,
	}
}

// loadTanks parses the TANK_CONFIG env value, a JSON object keyed by
// device_id, e.g. {"tank-01":{"tank_height_cm":150,"tank_capacity_l":500}}.
func loadTanks(raw string) (map[string]TankConfig, error) {
	tanks := map[string]TankConfig{}
	if raw == "" {
		return tanks, nil
	}
	if err := json.Unmarshal([]byte(raw), &tanks); err != nil {
		return nil, fmt.Errorf("invalid TANK_CONFIG: %w", err)
	}
	return tanks, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
