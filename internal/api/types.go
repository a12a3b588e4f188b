package api

// QueryRequest is the body of POST /query
type QueryRequest struct {
	Query *string `json:"query"`
}

// QueryResponse carries the HTML reply, or a record for id lookups
type QueryResponse struct {
	Response interface{} `json:"response"`
}

// PatientsResponse is the body of GET /patients
type PatientsResponse struct {
	Patients interface{} `json:"patients"`
}

// MessageResponse is used for liveness and upload acknowledgements
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is every non-2xx body
type ErrorResponse struct {
	Error string `json:"error"`
}

// maxUploadBytes bounds the in-memory part of multipart parsing
const maxUploadBytes = 32 << 20
