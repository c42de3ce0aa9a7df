// Package httputil holds the JSON response helpers shared by the read and
// webhook endpoints.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
)

// ErrorResponse is the error envelope for non-form endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}

// JSON writes data with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// OK writes a 200 response.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Error writes {"error": message}.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// CachePublic marks a response as cacheable by shared caches.
func CachePublic(w http.ResponseWriter, sMaxAge, staleWhileRevalidate int) {
	w.Header().Set("Cache-Control",
		"public, s-maxage="+strconv.Itoa(sMaxAge)+", stale-while-revalidate="+strconv.Itoa(staleWhileRevalidate))
}

// QueryLimit reads ?limit=. Missing or non-numeric values yield def; numbers
// are clamped to [1, max]. A leading integer prefix is accepted.
func QueryLimit(r *http.Request, def, max int) int {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	end := 0
	for end < len(raw) && (raw[end] >= '0' && raw[end] <= '9' || end == 0 && (raw[end] == '-' || raw[end] == '+')) {
		end++
	}
	value, err := strconv.Atoi(raw[:end])
	if errors.Is(err, strconv.ErrRange) {
		if raw[0] == '-' {
			return 1
		}
		return max
	}
	if err != nil {
		return def
	}
	if value < 1 {
		return 1
	}
	if value > max {
		return max
	}
	return value
}
