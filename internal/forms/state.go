package forms

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Status is the outcome reported back to the form.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// HoneypotField is the hidden input humans never fill in.
const HoneypotField = "website"

// FieldErrors maps a form field to a single message.
type FieldErrors map[string]string

// Add records msg for field unless the field already has a message.
func (f FieldErrors) Add(field, msg string) {
	if _, exists := f[field]; !exists {
		f[field] = msg
	}
}

// State is the response body for a form submission.
type State struct {
	Status      Status      `json:"status"`
	Message     string      `json:"message,omitempty"`
	FieldErrors FieldErrors `json:"fieldErrors,omitempty"`
	Reference   string      `json:"reference,omitempty"`
}

// Success builds a success state.
func Success(message string) State {
	return State{Status: StatusSuccess, Message: message}
}

// Invalid builds the validation failure state.
func Invalid(errs FieldErrors) State {
	return State{Status: StatusError, Message: "Please check the form.", FieldErrors: errs}
}

// Support is the contact information offered when a submission fails.
type Support struct {
	Email string
	Phone string
}

// Failure builds the opaque failure state. Only the reference is exposed.
func (s Support) Failure(ref string) State {
	return State{
		Status:    StatusError,
		Message:   fmt.Sprintf("Something went wrong (ref %s). Please email %s or call %s.", ref, s.Email, s.Phone),
		Reference: ref,
	}
}

// RequestMeta carries request attributes stored alongside a submission.
type RequestMeta struct {
	Referer   string
	UserAgent string
}

// MetaFromRequest extracts referer and user agent headers.
func MetaFromRequest(r *http.Request) RequestMeta {
	return RequestMeta{
		Referer:   r.Header.Get("Referer"),
		UserAgent: r.Header.Get("User-Agent"),
	}
}

// NewReference returns a correlation reference for logs and user-facing
// failures. It falls back to a time-derived value when no UUID can be drawn.
func NewReference() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return "ref-" + strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return id.String()
}

// Timestamp formats t as ISO-8601 UTC with millisecond precision.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// BoolCell renders a flag the way the spreadsheet expects it.
func BoolCell(v bool) string {
	if v {
		return "TRUE"
	}
	return "FALSE"
}

// HTTPStatus maps a state to the response code used by the form endpoints.
func (s State) HTTPStatus() int {
	switch {
	case s.Status != StatusError:
		return http.StatusOK
	case len(s.FieldErrors) > 0:
		return http.StatusUnprocessableEntity
	case s.Reference != "":
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// WriteState writes s as JSON with its HTTP status.
func WriteState(w http.ResponseWriter, s State) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(s.HTTPStatus())
	_ = json.NewEncoder(w).Encode(s)
}

// BadRequest is the state returned for unreadable bodies.
func BadRequest() State {
	return State{Status: StatusError, Message: "We could not read your submission. Please try again."}
}
