package server

import (
	"encoding/json"
	"mime"
	"net/http"

	"github.com/jrsteele09/billing-admin/internal/errors"
	"github.com/rs/zerolog/log"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
	maxBodyBytes    = 1 << 20
)

// envelope mirrors the remote API so the browser code sees a single shape
type envelope struct {
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("Failed to write JSON response")
	}
}

func writeData(w http.ResponseWriter, statusCode int, data any, message string) {
	writeJSON(w, statusCode, envelope{Data: data, Message: message})
}

func writeJSONError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	writeJSON(w, statusCode, map[string]string{
		"error":             errorCode,
		"error_description": description,
	})
}

// writeServiceError maps the error taxonomy onto console responses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var authErr *errors.AuthenticationError
	var rejection *errors.RemoteRejection

	switch {
	case errors.Is(err, errors.ErrAuthenticationFailed), errors.Is(err, errors.ErrNoCredentials):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"redirect": RouteLogin})
	case errors.As(err, &authErr):
		writeJSONError(w, "invalid_credentials", authErr.Message, http.StatusUnauthorized)
	case errors.Is(err, errors.ErrUnsupportedMediaType):
		writeJSONError(w, "unsupported_media_type", err.Error(), http.StatusUnsupportedMediaType)
	case errors.Is(err, errors.ErrInvalidRequest):
		writeJSONError(w, "invalid_request", err.Error(), http.StatusBadRequest)
	case errors.As(err, &rejection):
		status := rejection.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		writeJSONError(w, "remote_rejected", rejection.Message, status)
	case errors.IsTransport(err):
		log.Err(err).Str("path", r.URL.Path).Msg("Billing API unreachable")
		writeJSONError(w, "upstream_unavailable", "billing API is unreachable", http.StatusBadGateway)
	default:
		log.Err(err).Str("path", r.URL.Path).Msg("Request failed")
		writeJSONError(w, "internal_error", "unexpected server error", http.StatusInternalServerError)
	}
}

// decodeBody reads a JSON request body into v. Other content types and unknown fields are rejected.
func decodeBody(r *http.Request, v any) error {
	contentType := r.Header.Get("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(contentType); err != nil || mediaType != "application/json" {
		return errors.Wrapf(errors.ErrUnsupportedMediaType, "content type %q", contentType)
	}
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrapf(errors.ErrInvalidRequest, "malformed body: %v", err)
	}
	return nil
}
