package response

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/futig/explainer-backend/internal/entity"
)

// JSON writes a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Can't change response at this point, just log
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// Error writes an error response
func Error(w http.ResponseWriter, status int, message string) {
	ErrorDetail(w, status, message, "")
}

// ErrorDetail writes an error response with an extra human-readable detail
func ErrorDetail(w http.ResponseWriter, status int, message, detail string) {
	JSON(w, status, entity.ErrorResponse{
		Error:     message,
		Detail:    detail,
		Timestamp: time.Now().UTC(),
	})
}

// TooManyRequests writes a 429 with the Retry-After header set
func TooManyRequests(w http.ResponseWriter, message, detail string, retryAfter time.Duration) {
	seconds := int(retryAfter / time.Second)
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	JSON(w, http.StatusTooManyRequests, entity.ErrorResponse{
		Error:      message,
		Detail:     detail,
		RetryAfter: seconds,
		Timestamp:  time.Now().UTC(),
	})
}

// Success writes a success response
func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Created writes a 201 Created response
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, data)
}

// NoContent writes a 204 No Content response
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
