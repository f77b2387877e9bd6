package config

import (
	"crypto/rand"
	"encoding/base64"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort    string
	DBPath        string
	SessionSecret string
	AdminUsers    []string
	TMDBAPIKey    string
	TMDBBaseURL   string
	TMDBLanguage  string
}

func Load() *Config {
	// .env is optional; deployments may pass environment variables directly
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Skipping .env file: %v", err)
	}

	return &Config{
		ServerPort:    getEnv("WAVEWATCH_PORT", ":8080"),
		DBPath:        getEnv("WAVEWATCH_DB_PATH", "./wavewatch.db"),
		SessionSecret: generateSessionSecret(),
		AdminUsers:    splitList(os.Getenv("WAVEWATCH_ADMIN_USERS")),
		TMDBAPIKey:    os.Getenv("TMDB_API_KEY"),
		TMDBBaseURL:   getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
		TMDBLanguage:  getEnv("TMDB_LANGUAGE", "en-US"),
	}
}

// splitList parses a comma-separated env value, dropping empty entries.
func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func generateSessionSecret() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		log.Fatal("Failed to generate session secret:", err)
	}
	return base64.StdEncoding.EncodeToString(bytes)
}
