package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"package-tracking-service/internal/api/dto"
	"package-tracking-service/internal/domain"
	"package-tracking-service/internal/services"
	"package-tracking-service/internal/validation"
	"strconv"
)

const maxBodyBytes = 1 << 20

// PackageHandler exposes the JSON package endpoints.
type PackageHandler struct {
	Service *services.PackageService
}

func (h *PackageHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := decodePackageInput(w, r)
	if !ok {
		return
	}

	p, err := h.Service.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.NewPackageResponse(p))
}

func (h *PackageHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, err := queryInt(r, "skip")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "skip must be an integer")
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "limit must be an integer")
		return
	}

	pkgs, err := h.Service.List(r.Context(), skip, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewPackageListResponse(pkgs))
}

func (h *PackageHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "id must be an integer")
		return
	}

	p, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewPackageResponse(p))
}

func (h *PackageHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "id must be an integer")
		return
	}

	in, ok := decodePackageInput(w, r)
	if !ok {
		return
	}

	p, err := h.Service.Update(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewPackageResponse(p))
}

// Delete soft-deletes; the record stays readable by id.
func (h *PackageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "id must be an integer")
		return
	}

	if err := h.Service.SoftDelete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.MessageResponse{Message: "package deleted"})
}

// decodePackageInput writes the error response itself and reports false on failure.
func decodePackageInput(w http.ResponseWriter, r *http.Request) (domain.PackageInput, bool) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	var req dto.PackageRequest
	if err := dec.Decode(&req); err != nil {
		if verr := validation.FromDecodeError(err); verr != nil {
			writeValidationError(w, r, verr)
			return domain.PackageInput{}, false
		}
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return domain.PackageInput{}, false
	}
	// The body holds exactly one JSON value.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return domain.PackageInput{}, false
	}

	in, err := req.Validate()
	if err != nil {
		var verr *validation.ValidationError
		if errors.As(err, &verr) {
			writeValidationError(w, r, verr)
			return domain.PackageInput{}, false
		}
		writeError(w, r, http.StatusBadRequest, "invalid request")
		return domain.PackageInput{}, false
	}

	return in, true
}

// queryInt returns 0 when the parameter is absent.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
