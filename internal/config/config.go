package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Env          string
	HTTPAddr     string
	APIBaseURL   string
	RestaurantID string
	JWTSecret    string

	RedisAddr       string
	CartTTL         time.Duration
	CatalogCacheTTL time.Duration

	KafkaBrokers []string
	OrderTopic   string
	MenuTopic    string
	MenuGroupID  string

	DBShards []string
}

// Load reads an optional .env file and then the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("Error loading .env file")
	}

	return Config{
		Env:          getEnv("ENV", "development"),
		HTTPAddr:     getEnv("HTTP_ADDR", ":8084"),
		APIBaseURL:   strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:3000"), "/"),
		RestaurantID: getEnv("RESTAURANT_ID", "3"),
		JWTSecret:    getEnv("JWT_SECRET", "secret"),

		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		CartTTL:         getDuration("CART_TTL", 7*24*time.Hour),
		CatalogCacheTTL: getDuration("CATALOG_CACHE_TTL", 5*time.Minute),

		KafkaBrokers: getList("KAFKA_BROKERS", "localhost:9092,localhost:9093,localhost:9094"),
		OrderTopic:   getEnv("ORDER_TOPIC", "order-topic"),
		MenuTopic:    getEnv("MENU_TOPIC", "menu-item-topic"),
		MenuGroupID:  getEnv("MENU_GROUP_ID", "cart-service-group"),

		DBShards: getList("DB_SHARDS", "root:@tcp(127.0.0.1:3306)/cart-db?parseTime=true"),
	}
}

// Validate reports settings the service cannot start with.
func (c Config) Validate() error {
	if len(c.DBShards) == 0 {
		return errors.New("DB_SHARDS must name at least one database")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getList(key, fallback string) []string {
	var out []string
	for _, s := range strings.Split(getEnv(key, fallback), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// getDuration accepts Go durations ("30m") or a plain number of seconds.
func getDuration(key string, fallback time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Warn().Msgf("Invalid duration %q for %s, using %s", v, key, fallback)
	return fallback
}
