package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"package-tracking-service/internal/api/dto"
	"package-tracking-service/internal/domain"
	"package-tracking-service/internal/platform/obs"
	"package-tracking-service/internal/validation"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).
			Str("req_id", obs.RequestID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("encode failed")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, dto.ErrorResponse{Error: msg})
}

func writeValidationError(w http.ResponseWriter, r *http.Request, verr *validation.ValidationError) {
	writeJSON(w, r, http.StatusUnprocessableEntity, dto.ErrorResponse{
		Error:  "validation failed",
		Fields: verr.Fields,
	})
}

// writeServiceError maps service failures to status codes.
// Unexpected errors are logged and hidden from the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, r, http.StatusNotFound, domain.ErrNotFound.Error())
	case errors.Is(err, domain.ErrDuplicateTrackingNumber):
		writeError(w, r, http.StatusBadRequest, domain.ErrDuplicateTrackingNumber.Error())
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).
			Str("req_id", obs.RequestID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
