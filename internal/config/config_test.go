package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"API_PORT", "LOG_LEVEL", "STORE_BACKEND", "COUCHBASE_URL", "COUCHBASE_BUCKET",
		"GROQ_API_KEY", "GROQ_MODEL", "CORS_ORIGINS", "SEED_SOURCE",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8000", cfg.APIPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, BackendCouchbase, cfg.StoreBackend)
	assert.Equal(t, "couchbase://localhost", cfg.CouchbaseURL)
	assert.Equal(t, "onco_db", cfg.CouchbaseBucket)
	assert.Equal(t, "patients", cfg.CouchbaseCollection)
	assert.Equal(t, "deepseek-r1-distill-llama-70b", cfg.GroqModel)
	assert.Empty(t, cfg.GroqAPIKey)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "data/patient.json", cfg.SeedSource)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("API_PORT", "9090")
	t.Setenv("STORE_BACKEND", "Memory")
	t.Setenv("GROQ_API_KEY", "gsk_test")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000, https://onco.example.org,")

	cfg := Load()

	assert.Equal(t, "9090", cfg.APIPort)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, "gsk_test", cfg.GroqAPIKey)
	assert.Equal(t, []string{"http://localhost:3000", "https://onco.example.org"}, cfg.CORSOrigins)
}
