package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Store backends
const (
	BackendCouchbase = "couchbase"
	BackendMemory    = "memory"
)

// Config holds everything the services read from the environment
type Config struct {
	APIPort          string
	LogLevel         string
	ElasticsearchURL string

	StoreBackend        string
	CouchbaseURL        string
	CouchbaseUsername   string
	CouchbasePassword   string
	CouchbaseBucket     string
	CouchbaseScope      string
	CouchbaseCollection string

	GroqAPIKey  string
	GroqBaseURL string
	GroqModel   string

	CORSOrigins []string
	SeedSource  string
}

// LoadDotEnv loads ../.env and then .env; a missing file is not an error
func LoadDotEnv() {
	err := godotenv.Load("../.env")
	if err != nil {
		log.Info().Msg("Not found .env file in parent directory, trying current directory")
		err = godotenv.Load(".env")
		if err != nil {
			log.Info().Msg("Not found .env file in current directory, assuming environment variables are set")
		}
	}
}

// Load reads the configuration from the process environment
func Load() *Config {
	cfg := &Config{
		APIPort:          getEnvOrDefault("API_PORT", "8000"),
		LogLevel:         getEnvOrDefault("LOG_LEVEL", "info"),
		ElasticsearchURL: os.Getenv("ELASTICSEARCH_URL"),

		StoreBackend:        strings.ToLower(getEnvOrDefault("STORE_BACKEND", BackendCouchbase)),
		CouchbaseURL:        getEnvOrDefault("COUCHBASE_URL", "couchbase://localhost"),
		CouchbaseUsername:   getEnvOrDefault("COUCHBASE_USERNAME", "Administrator"),
		CouchbasePassword:   getEnvOrDefault("COUCHBASE_PASSWORD", "password"),
		CouchbaseBucket:     getEnvOrDefault("COUCHBASE_BUCKET", "onco_db"),
		CouchbaseScope:      getEnvOrDefault("COUCHBASE_SCOPE", "_default"),
		CouchbaseCollection: getEnvOrDefault("COUCHBASE_COLLECTION", "patients"),

		GroqAPIKey:  os.Getenv("GROQ_API_KEY"),
		GroqBaseURL: getEnvOrDefault("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		GroqModel:   getEnvOrDefault("GROQ_MODEL", "deepseek-r1-distill-llama-70b"),

		CORSOrigins: splitList(getEnvOrDefault("CORS_ORIGINS", "*")),
		SeedSource:  getEnvOrDefault("SEED_SOURCE", "data/patient.json"),
	}

	if cfg.GroqAPIKey == "" {
		log.Warn().Msg("GROQ_API_KEY is not set, /query requests that reach the model will fail")
	}

	return cfg
}

// getEnvOrDefault retrieves environment variable with fallback default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
