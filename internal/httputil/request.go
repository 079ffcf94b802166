package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxJSONBody bounds JSON request bodies; uploads use multipart instead
const maxJSONBody = 1 << 20

// ParseJSON decodes exactly one JSON value from the request body into dest.
// Unknown fields and trailing data are rejected. An oversized body yields an
// *http.MaxBytesError in the chain.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("invalid JSON: empty body")
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if decoder.More() {
		return errors.New("invalid JSON: trailing data after object")
	}
	return nil
}

// ParseBoolField parses a JSON body of the form {"<field>": true|false}. A missing
// field is an error.
func ParseBoolField(w http.ResponseWriter, r *http.Request, field string) (bool, error) {
	var body map[string]*bool
	if err := ParseJSON(w, r, &body); err != nil {
		return false, err
	}
	v, ok := body[field]
	if !ok || v == nil {
		return false, fmt.Errorf("%s is required", field)
	}
	return *v, nil
}
