package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/wolfpen/backend/internal/game"
)

// Config is the runtime configuration, sourced from the environment with a
// .env file as a local-dev convenience.
type Config struct {
	Addr          string
	PublicBaseURL string
	LogFile       string

	DayLength    time.Duration
	TotalDays    int
	TickRate     int
	StartTimeout time.Duration
	GrassCount   int
	PenCount     int
}

// Load reads the environment. A missing .env file is fine; real deployments
// set variables directly.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:          envString("WOLFPEN_ADDR", ":8080"),
		PublicBaseURL: envString("WOLFPEN_PUBLIC_URL", "http://localhost:8080"),
		LogFile:       envString("WOLFPEN_LOG_FILE", "wolfpen.log"),
		DayLength:     envDurationMs("WOLFPEN_DAY_LENGTH_MS", game.DefaultDayLength),
		TotalDays:     envInt("WOLFPEN_TOTAL_DAYS", game.DefaultTotalDays),
		TickRate:      envInt("WOLFPEN_TICK_RATE_HZ", game.TickRateHz),
		StartTimeout:  envDurationMs("WOLFPEN_START_TIMEOUT_MS", game.StartAckTimeout),
		GrassCount:    envInt("WOLFPEN_GRASS_COUNT", game.DefaultGrassCount),
		PenCount:      envInt("WOLFPEN_PEN_COUNT", game.DefaultPenCount),
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envDurationMs(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms <= 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}
