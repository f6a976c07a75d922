// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// ErrInvalidBody is returned by Decode for any body that is not a single JSON
// object matching the target.
var ErrInvalidBody = errors.New("invalid request body")

// MessageResponse is the body of every non-entity response.
type MessageResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Decode reads a JSON object into dst. Unknown fields, wrong types and
// trailing data are rejected. An empty body decodes as {}.
func Decode(r io.Reader, dst any) error {
	body, err := io.ReadAll(r)
	if err != nil {
		return errors.Join(ErrInvalidBody, err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.Join(ErrInvalidBody, err)
	}
	if dec.More() {
		return ErrInvalidBody
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return ErrInvalidBody
	}
	return nil
}
