package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string `yaml:"port"`
	DatabaseURL string `yaml:"database_url"`
	RedisAddr   string `yaml:"redis_addr"`
	CardsDir    string `yaml:"cards_dir"`
	AdminKey    string `yaml:"admin_key"`

	RoomIDFormat     string `yaml:"room_id_format"` // "code" or "numeric"
	MaxPlayers       int    `yaml:"max_players"`
	WinningScore     int    `yaml:"winning_score"`
	DefaultRounds    int    `yaml:"default_rounds"`
	HandSize         int    `yaml:"hand_size"`
	MinPlayers       int    `yaml:"min_players"`
	AllowMidGameJoin bool   `yaml:"allow_mid_game_join"`

	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	IdleWarning   time.Duration `yaml:"idle_warning"` // 0 means a minute before the timeout
	SweepInterval time.Duration `yaml:"sweep_interval"`

	RateLimit float64 `yaml:"rate_limit"` // client messages per second
	RateBurst int     `yaml:"rate_burst"`

	LogLevel  string `yaml:"log_level"`
	LogPretty bool   `yaml:"log_pretty"`
}

func Default() Config {
	return Config{
		Port:             "8080",
		CardsDir:         "data",
		RoomIDFormat:     "code",
		MaxPlayers:       10,
		WinningScore:     7,
		DefaultRounds:    7,
		HandSize:         10,
		MinPlayers:       3,
		AllowMidGameJoin: false,
		IdleTimeout:      60 * time.Minute,
		SweepInterval:    60 * time.Second,
		RateLimit:        10,
		RateBurst:        20,
		LogLevel:         "info",
	}
}

// Load applies defaults, then the YAML file named by CONFIG_FILE if set,
// then environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.CardsDir = getEnv("CARDS_DIR", cfg.CardsDir)
	cfg.AdminKey = getEnv("ADMIN_KEY", cfg.AdminKey)
	cfg.RoomIDFormat = strings.ToLower(getEnv("ROOM_ID_FORMAT", cfg.RoomIDFormat))
	cfg.MaxPlayers = getEnvInt("MAX_PLAYERS", cfg.MaxPlayers)
	cfg.WinningScore = getEnvInt("WINNING_SCORE", cfg.WinningScore)
	cfg.DefaultRounds = getEnvInt("DEFAULT_ROUNDS", cfg.DefaultRounds)
	cfg.HandSize = getEnvInt("HAND_SIZE", cfg.HandSize)
	cfg.MinPlayers = getEnvInt("MIN_PLAYERS", cfg.MinPlayers)
	cfg.AllowMidGameJoin = getEnvBool("ALLOW_MID_GAME_JOIN", cfg.AllowMidGameJoin)
	cfg.IdleTimeout = getEnvDuration("IDLE_TIMEOUT", cfg.IdleTimeout)
	cfg.IdleWarning = getEnvDuration("IDLE_WARNING", cfg.IdleWarning)
	cfg.SweepInterval = getEnvDuration("SWEEP_INTERVAL", cfg.SweepInterval)
	cfg.RateLimit = getEnvFloat("RATE_LIMIT", cfg.RateLimit)
	cfg.RateBurst = getEnvInt("RATE_BURST", cfg.RateBurst)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogPretty = getEnvBool("LOG_PRETTY", cfg.LogPretty)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.RoomIDFormat {
	case "code", "numeric":
	default:
		return fmt.Errorf("invalid ROOM_ID_FORMAT %q: want code or numeric", c.RoomIDFormat)
	}
	if c.MaxPlayers < 1 || c.WinningScore < 1 || c.DefaultRounds < 1 || c.HandSize < 1 || c.MinPlayers < 1 {
		return fmt.Errorf("player, score, round and hand settings must be positive")
	}
	if c.MinPlayers > c.MaxPlayers {
		return fmt.Errorf("MIN_PLAYERS (%d) exceeds MAX_PLAYERS (%d)", c.MinPlayers, c.MaxPlayers)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("90s") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
