package utils

import (
	"encoding/json"
	"net/http"

	"github.com/pratik-mahalle/linkboost/internal/pkg/errors"
)

// SuccessResponse represents a successful API response
type SuccessResponse struct {
	Success  bool        `json:"success"`
	Data     interface{} `json:"data,omitempty"`
	Metadata interface{} `json:"metadata,omitempty"`
}

// ErrorResponse represents an error API response
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// MessageData is the payload of write endpoints that only confirm the action.
type MessageData struct {
	Message string `json:"message"`
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response
func WriteSuccess(w http.ResponseWriter, status int, data interface{}) error {
	return WriteJSON(w, status, SuccessResponse{
		Success: true,
		Data:    data,
	})
}

// WriteSuccessWithMetadata writes a successful read response with its metadata block
func WriteSuccessWithMetadata(w http.ResponseWriter, status int, data, metadata interface{}) error {
	return WriteJSON(w, status, SuccessResponse{
		Success:  true,
		Data:     data,
		Metadata: metadata,
	})
}

// WriteMessage writes a successful response whose data is a confirmation message
func WriteMessage(w http.ResponseWriter, status int, message string) error {
	return WriteSuccess(w, status, MessageData{Message: message})
}

// WriteError writes an error JSON response from AppError
func WriteError(w http.ResponseWriter, err *errors.AppError) error {
	return WriteJSON(w, err.StatusCode, ErrorResponse{
		Success: false,
		Error:   err.Message,
		Code:    err.Code,
		Details: err.Details,
	})
}
