package config

import (
	"os"
	"strconv"

	"mastery-scheduler/internal/models"
)

// Config holds the service configuration, read from the environment.
type Config struct {
	Port string

	// The root directory of the course library.
	LibraryRoot string

	// The directory holding saved unit filters.
	FiltersDir string

	// Paths of the SQLite databases for trial history and the blacklist.
	TrialsPath    string
	BlacklistPath string

	// Optional Postgres URL for the trial history. When set it takes
	// precedence over the SQLite path.
	DatabaseURL string

	Scheduler models.SchedulerOptions
}

// Load reads the configuration from the environment, falling back to the
// defaults for anything unset.
func Load() *Config {
	options := models.DefaultSchedulerOptions()
	options.BatchSize = getEnvInt("BATCH_SIZE", options.BatchSize)
	options.PassingScore = getEnvFloat("PASSING_SCORE", options.PassingScore)
	options.NumScores = getEnvInt("NUM_SCORES", options.NumScores)
	options.TargetWindow.Percentage = getEnvFloat(
		"TARGET_WINDOW_PERCENTAGE", options.TargetWindow.Percentage)
	options.CurrentWindow.Percentage = getEnvFloat(
		"CURRENT_WINDOW_PERCENTAGE", options.CurrentWindow.Percentage)
	options.EasyWindow.Percentage = getEnvFloat(
		"EASY_WINDOW_PERCENTAGE", options.EasyWindow.Percentage)

	return &Config{
		Port:          getEnv("PORT", "9100"),
		LibraryRoot:   getEnv("LIBRARY_ROOT", "./library"),
		FiltersDir:    getEnv("FILTERS_DIR", "./library/.filters"),
		TrialsPath:    getEnv("TRIALS_PATH", "./library/.state/trials.db"),
		BlacklistPath: getEnv("BLACKLIST_PATH", "./library/.state/blacklist.db"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		Scheduler:     options,
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return fallback
}
