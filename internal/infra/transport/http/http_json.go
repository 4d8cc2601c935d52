package http

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorResponse is the body shape of every non-2xx response. The message is
// always short and generic; detail stays in the server logs.
type ErrorResponse struct {
	Error string `json:"error"`
}

// maxRequestBody bounds request bodies; every request the relay accepts is a
// small JSON document.
const maxRequestBody = 1 << 20

// ReadJSON decodes the request body into dst.
func ReadJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBody)).Decode(dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}

	return nil
}

// WriteJSON writes payload as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}

// WriteError writes a JSON error response with the given status code.
func WriteError(w http.ResponseWriter, status int, message string) {
	_ = WriteJSON(w, status, ErrorResponse{Error: message})
}
