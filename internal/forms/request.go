package forms

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
)

// maxBodyBytes bounds form bodies; the forms carry a handful of short fields.
const maxBodyBytes = 64 << 10

// ParseRequest reads submitted fields from a urlencoded, multipart or JSON body.
// JSON scalars are rendered as strings so both encodings validate identically.
func ParseRequest(w http.ResponseWriter, r *http.Request) (url.Values, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		return parseJSON(r)
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return nil, fmt.Errorf("forms: parse multipart: %w", err)
		}
		return r.PostForm, nil
	default:
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("forms: parse form: %w", err)
		}
		return r.PostForm, nil
	}
}

func parseJSON(r *http.Request) (url.Values, error) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("forms: decode json: %w", err)
	}
	if raw == nil {
		return nil, errors.New("forms: empty json body")
	}

	values := url.Values{}
	for key, v := range raw {
		switch typed := v.(type) {
		case string:
			values.Set(key, typed)
		case bool:
			values.Set(key, strconv.FormatBool(typed))
		case float64:
			values.Set(key, strconv.FormatFloat(typed, 'f', -1, 64))
		}
	}
	return values, nil
}
