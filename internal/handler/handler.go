// Package handler implements the HTTP boundary. Every endpoint
// returns the same envelope and maps domain errors to status codes by
// kind.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"storefront/internal/model"

	"github.com/rs/zerolog"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// writeJSON writes the envelope with the given status code.
func writeJSON(w http.ResponseWriter, status int, resp model.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		// Headers are already sent; nothing left to do.
		return
	}
}

// writeSuccess writes a success envelope.
func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, model.OK(message, data))
}

// writeError maps a service error to a status code and writes the
// failure envelope. Unclassified errors become an opaque 500.
func writeError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if !errors.As(err, &domainErr) {
		logger.Error().Err(err).Msg("internal error")
		writeJSON(w, http.StatusInternalServerError, model.Fail("Internal server error", nil))
		return
	}

	status := http.StatusBadRequest
	switch domainErr.Kind {
	case model.KindNotFound:
		status = http.StatusNotFound
	case model.KindDuplicate:
		status = http.StatusConflict
	case model.KindAccessDenied:
		status = http.StatusForbidden
	case model.KindInsufficientStock, model.KindIllegalState,
		model.KindValidation, model.KindInvalidPromoCode:
		status = http.StatusBadRequest
	}

	var data any
	if domainErr.Kind == model.KindValidation && len(domainErr.Fields) > 0 {
		data = domainErr.Fields
	}

	logger.Debug().
		Str("kind", string(domainErr.Kind)).
		Int("status", status).
		Msg(domainErr.Message)

	writeJSON(w, status, model.Fail(domainErr.Message, data))
}

// writeBadRequest writes a 400 failure envelope for malformed input.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, model.Fail(message, nil))
}

// decodeBody decodes the request body into v.
func decodeBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// pathID parses the named path wildcard as an int64 id.
func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}

// pageParams reads limit/offset query parameters with sane bounds.
func pageParams(r *http.Request) (limit, offset int) {
	limit = defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
