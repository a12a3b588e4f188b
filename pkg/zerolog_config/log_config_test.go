package zerolog_config

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in       string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{" WARN ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.in))
		})
	}
}

func TestNewLoggerConsoleOnly(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "", "logs")

	logger.Info().Str("patient_id", "P001").Msg("Patient fetched")

	assert.Contains(t, buf.String(), "Patient fetched")
	assert.Contains(t, buf.String(), "P001")
}

func TestElasticsearchWriter(t *testing.T) {
	var gotPath string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	w := ElasticsearchWriter{URL: srv.URL + "/logs"}
	n, err := w.Write([]byte(`{"message":"hi"}`))
	require.NoError(t, err)
	assert.Equal(t, 16, n)
	assert.Equal(t, "/logs/_doc", gotPath)
	assert.JSONEq(t, `{"message":"hi"}`, string(gotBody))
}

func TestElasticsearchWriterRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := ElasticsearchWriter{URL: srv.URL}.Write([]byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}
