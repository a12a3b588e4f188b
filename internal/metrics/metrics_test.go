package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareRecordsRouteTemplate(t *testing.T) {
	t.Setenv("ENABLE_BUSINESS_METRICS", "true")

	r := mux.NewRouter()
	r.Use(MetricsMiddleware)
	r.HandleFunc("/patients/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods("GET")

	before := testutil.ToFloat64(counterFor("GET", "/patients/{id}", "404"))
	for _, id := range []string{"P001", "P002"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest("GET", "/patients/"+id, nil))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	}

	assert.Equal(t, before+2, testutil.ToFloat64(counterFor("GET", "/patients/{id}", "404")))
}

func TestRecordersAreNoopsWhenDisabled(t *testing.T) {
	t.Setenv("ENABLE_BUSINESS_METRICS", "")

	assert.NotPanics(t, func() {
		RecordQueryIntent("none", false)
		RecordLLMRequest("m", "success", time.Second)
		RecordUpload("json", "success", 3)
		RecordSeedRun("success", 1)
	})
}

func TestRecordUploadCountsInsertedRecords(t *testing.T) {
	t.Setenv("ENABLE_BUSINESS_METRICS", "true")
	initializeBusinessMetrics()

	before := testutil.ToFloat64(RecordsInserted.WithLabelValues("upload"))
	RecordUpload("json", "success", 3)
	assert.Equal(t, before+3, testutil.ToFloat64(RecordsInserted.WithLabelValues("upload")))
}

func counterFor(method, endpoint, status string) prometheus.Counter {
	initializeBusinessMetrics()
	return HTTPRequestsTotal.WithLabelValues(method, endpoint, status)
}
