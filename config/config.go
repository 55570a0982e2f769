package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// RelevanceWindow names the date-window policy applied by the ranker.
type RelevanceWindow string

const (
	// WindowSliding keeps records whose close date falls within
	// [yesterday, today+5d], or whose open date is strictly in the future.
	WindowSliding RelevanceWindow = "SLIDING_WINDOW"
	// WindowNotYetClosed keeps records whose close date is today or later,
	// with no upper bound.
	WindowNotYetClosed RelevanceWindow = "NOT_YET_CLOSED"
)

// RankPolicy carries the tunable filter/rank parameters. Observed source
// variants differ only in these values, so a variant is a config value
// here, not a code fork.
type RankPolicy struct {
	RelevanceWindow RelevanceWindow
	MinSizeCr       float64
	MinPremium      float64
	PartitionByDate bool
}

// DefaultRankPolicy mirrors the production digest: mainline issues above
// 400 Cr with premium above 8.5, every not-yet-closed issue, one list.
func DefaultRankPolicy() RankPolicy {
	return RankPolicy{
		RelevanceWindow: WindowNotYetClosed,
		MinSizeCr:       400,
		MinPremium:      8.5,
		PartitionByDate: false,
	}
}

type Config struct {
	SourceURL    string
	FetchMode    string // "http" or "browser"
	FetchTimeout time.Duration

	BotToken string
	ChatID   string

	ServerPort  string
	RunInterval time.Duration
	LogLevel    string

	Policy RankPolicy
}

// LoadConfig reads .env plus system environment with sane defaults.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("Error loading .env file, using system environment variables")
	}

	cfg := &Config{
		SourceURL:    getEnv("SOURCE_URL", "https://www.investorgain.com/report/live-ipo-gmp/331/"),
		FetchMode:    getEnv("FETCH_MODE", "browser"),
		FetchTimeout: getDurationSeconds("FETCH_TIMEOUT_SECONDS", 60),
		BotToken:     getEnv("BOT_TOKEN", ""),
		ChatID:       getEnv("CHAT_ID", ""),
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		RunInterval:  getDurationHours("RUN_INTERVAL_HOURS", 24),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		Policy:       DefaultRankPolicy(),
	}

	if window := strings.ToUpper(getEnv("RELEVANCE_WINDOW", "")); window != "" {
		switch RelevanceWindow(window) {
		case WindowSliding, WindowNotYetClosed:
			cfg.Policy.RelevanceWindow = RelevanceWindow(window)
		default:
			logrus.Warnf("Invalid RELEVANCE_WINDOW value: %s, keeping %s", window, cfg.Policy.RelevanceWindow)
		}
	}
	cfg.Policy.MinSizeCr = getFloat("MIN_SIZE_CR", cfg.Policy.MinSizeCr)
	cfg.Policy.MinPremium = getFloat("MIN_PREMIUM", cfg.Policy.MinPremium)
	cfg.Policy.PartitionByDate = getBool("PARTITION_BY_DATE", cfg.Policy.PartitionByDate)

	return cfg
}

// ApplyLogLevel configures the global logrus level from config.
func (c *Config) ApplyLogLevel() {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logrus.Warnf("Invalid LOG_LEVEL value: %s, using info", c.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		logrus.Warnf("Invalid %s value: %s, using default %.2f", key, raw, fallback)
		return fallback
	}
	return value
}

func getBool(key string, fallback bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		logrus.Warnf("Invalid %s value: %s, using default %v", key, raw, fallback)
		return fallback
	}
	return value
}

func getDurationSeconds(key string, fallbackSeconds int) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return time.Duration(fallbackSeconds) * time.Second
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		logrus.Warnf("Invalid %s value: %s, using default %ds", key, raw, fallbackSeconds)
		return time.Duration(fallbackSeconds) * time.Second
	}
	return time.Duration(seconds) * time.Second
}

func getDurationHours(key string, fallbackHours int) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return time.Duration(fallbackHours) * time.Hour
	}
	hours, err := strconv.Atoi(raw)
	if err != nil || hours <= 0 {
		logrus.Warnf("Invalid %s value: %s, using default %dh", key, raw, fallbackHours)
		return time.Duration(fallbackHours) * time.Hour
	}
	return time.Duration(hours) * time.Hour
}
