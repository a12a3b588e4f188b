package api

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"stealthcompany.com/oncoaide/internal/metrics"
)

// SetupRoutes configures the router and wraps it with CORS
func SetupRoutes(h *Handler, corsOrigins []string) http.Handler {
	r := mux.NewRouter()

	r.Use(metrics.MetricsMiddleware)

	r.HandleFunc("/", h.HomeHandler).Methods("GET")
	r.HandleFunc("/patients", h.ListPatientsHandler).Methods("GET")
	r.HandleFunc("/patients/{id}", h.GetPatientHandler).Methods("GET")
	r.HandleFunc("/query", h.QueryHandler).Methods("POST")
	r.HandleFunc("/upload-patient", h.UploadPatientHandler).Methods("POST")

	r.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})).Methods("GET")

	cors := handlers.CORS(
		handlers.AllowedOrigins(corsOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Requested-With"}),
		handlers.AllowCredentials(),
	)
	return cors(r)
}
