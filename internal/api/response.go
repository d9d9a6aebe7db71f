package api

import (
	"encoding/json"
	"io"
	"net/http"
)

// WriteJSON writes data as JSON without HTML escaping
func WriteJSON(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	return encoder.Encode(data)
}

// WriteSuccess sends data with HTTP 200
func WriteSuccess(w http.ResponseWriter, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	return WriteJSON(w, data)
}

// WriteError sends an error response with the specified status code
func WriteError(w http.ResponseWriter, statusCode int, errorCode ErrorCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = WriteJSON(w, ErrorResponse{Error: string(errorCode), Message: message})
}

// WriteAPIError sends err as its status code and JSON body
func WriteAPIError(w http.ResponseWriter, err *APIError) {
	WriteError(w, err.StatusCode, err.Code, err.Message)
}
