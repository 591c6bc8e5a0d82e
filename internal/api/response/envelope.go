package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Meta identifies the request a response belongs to.
type Meta struct {
	RequestID string `json:"requestId"`
	Timestamp string `json:"timestamp"`
}

// Error is the error half of the envelope. Registration failures carry the
// workflow's per-field messages in Details.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Envelope wraps every JSON body the dashboard API returns.
type Envelope struct {
	Data  any    `json:"data"`
	Error *Error `json:"error"`
	Meta  Meta   `json:"meta"`
}

// NewMeta stamps the current time. An empty requestID gets a fresh UUID.
func NewMeta(requestID string) Meta {
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return Meta{RequestID: requestID, Timestamp: time.Now().UTC().Format(time.RFC3339)}
}

// JSON encodes env with the given status.
func JSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.Error("encoding response envelope", "error", err, "requestId", env.Meta.RequestID)
	}
}

// Success writes data in a success envelope.
func Success(w http.ResponseWriter, status int, data any, requestID string) {
	JSON(w, status, Envelope{Data: data, Meta: NewMeta(requestID)})
}

// Cached writes a success envelope around data that was already encoded,
// such as a listing served from cache. Meta is always fresh.
func Cached(w http.ResponseWriter, status int, data []byte, requestID string) {
	Success(w, status, json.RawMessage(data), requestID)
}

// NoContent writes a bare 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Err writes an error envelope without details.
func Err(w http.ResponseWriter, status int, code, message, requestID string) {
	ErrWithDetails(w, status, code, message, nil, requestID)
}

// ErrWithDetails writes an error envelope. Data is always null.
func ErrWithDetails(w http.ResponseWriter, status int, code, message string, details any, requestID string) {
	JSON(w, status, Envelope{
		Error: &Error{Code: code, Message: message, Details: details},
		Meta:  NewMeta(requestID),
	})
}
