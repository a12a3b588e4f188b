package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"stealthcompany.com/oncoaide/internal/assistant"
	"stealthcompany.com/oncoaide/internal/metrics"
	"stealthcompany.com/oncoaide/internal/records"
)

// Handler serves the HTTP API over a record store and the assistant pipeline
type Handler struct {
	store     records.Store
	assistant *assistant.Service
}

// NewHandler creates a Handler
func NewHandler(store records.Store, svc *assistant.Service) *Handler {
	return &Handler{store: store, assistant: svc}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// HomeHandler is the liveness endpoint
func (h *Handler) HomeHandler(w http.ResponseWriter, r *http.Request) {
	log.Debug().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("remote_addr", r.RemoteAddr).
		Msg("Home endpoint called")

	writeJSON(w, http.StatusOK, MessageResponse{Message: "OncoAide API is running!"})
}

// ListPatientsHandler handles GET /patients
func (h *Handler) ListPatientsHandler(w http.ResponseWriter, r *http.Request) {
	all, err := h.store.FindAll(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list patients")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if len(all) == 0 {
		log.Warn().Msg("No patients found")
		writeError(w, http.StatusNotFound, "No patients found")
		return
	}

	log.Info().Int("count", len(all)).Msg("Listed patients")
	writeJSON(w, http.StatusOK, PatientsResponse{Patients: all})
}

// GetPatientHandler handles GET /patients/{id}
func (h *Handler) GetPatientHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	rec, err := h.store.FindByID(r.Context(), id)
	if errors.Is(err, records.ErrNotFound) {
		log.Warn().Str("patient_id", id).Msg("Patient not found")
		writeError(w, http.StatusNotFound, "Patient not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("patient_id", id).Msg("Failed to fetch patient")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// QueryHandler handles POST /query
func (h *Handler) QueryHandler(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error().Err(err).Msg("Failed to decode query request")
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	if req.Query == nil {
		log.Warn().Msg("Query request without a query field")
		writeError(w, http.StatusBadRequest, "Field 'query' is required")
		return
	}

	ans, err := h.assistant.Answer(r.Context(), *req.Query)
	if err != nil {
		if errors.Is(err, assistant.ErrUpstream) {
			log.Error().Err(err).Msg("Provider failure while answering query")
		} else {
			log.Error().Err(err).Msg("Failed to answer query")
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Info().Str("intent", string(ans.Intent)).Msg("Query answered")
	writeJSON(w, http.StatusOK, QueryResponse{Response: ans.Body})
}

// UploadPatientHandler handles POST /upload-patient with a multipart "file" part
func (h *Handler) UploadPatientHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		log.Warn().Err(err).Msg("Invalid multipart upload")
		metrics.RecordUpload("unknown", "invalid_form", 0)
		writeError(w, http.StatusBadRequest, "Error processing file: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		log.Warn().Err(err).Msg("Upload without a file part")
		metrics.RecordUpload("unknown", "missing_file", 0)
		writeError(w, http.StatusBadRequest, "Missing file part 'file'")
		return
	}
	defer file.Close()

	kind := strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), ".")

	content, err := io.ReadAll(file)
	if err != nil {
		log.Error().Err(err).Str("filename", header.Filename).Msg("Failed to read upload")
		metrics.RecordUpload(kind, "read_failed", 0)
		writeError(w, http.StatusBadRequest, "Error processing file: "+err.Error())
		return
	}

	upload, err := records.ParseUpload(header.Filename, content)
	if errors.Is(err, records.ErrUnsupportedFileType) {
		log.Warn().Str("filename", header.Filename).Msg("Unsupported upload type")
		metrics.RecordUpload(kind, "unsupported", 0)
		writeError(w, http.StatusBadRequest, "Unsupported file type. Use JSON or TXT.")
		return
	}
	if err != nil {
		log.Warn().Err(err).Str("filename", header.Filename).Msg("Malformed upload")
		metrics.RecordUpload(kind, "malformed", 0)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	n, err := h.store.Insert(r.Context(), upload.Records...)
	if err != nil {
		log.Error().Err(err).Int("inserted", n).Str("filename", header.Filename).Msg("Failed to store upload")
		metrics.RecordUpload(kind, "store_failed", n)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Info().
		Str("filename", header.Filename).
		Int("inserted", n).
		Msg("Inserted uploaded patients")
	metrics.RecordUpload(kind, "success", n)
	writeJSON(w, http.StatusOK, MessageResponse{Message: upload.Acknowledgement()})
}
