package handlers

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"package-tracking-service/internal/api/dto"
	"package-tracking-service/internal/domain"
	"package-tracking-service/internal/platform/obs"
	"package-tracking-service/internal/services"
	"package-tracking-service/internal/validation"
	"strconv"

	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
)

const (
	flashSession = "package-flash"
	webHome      = "/web"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.New("pages").ParseFS(templateFS, "templates/*.html"))

// WebHandler serves the server-rendered package pages.
// Form submissions always end in a 303 redirect; failures travel as flash messages.
type WebHandler struct {
	Service  *services.PackageService
	Sessions sessions.Store
}

type listPage struct {
	Packages []dto.PackageResponse
	Active   int
	Skip     int
	PrevSkip int
	NextSkip int
	HasPrev  bool
	HasNext  bool
	Flashes  []string
}

type editPage struct {
	Package dto.PackageResponse
	Flashes []string
}

func (h *WebHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, err := queryInt(r, "skip")
	if err != nil || skip < 0 {
		skip = 0
	}
	limit := h.Service.MaxListLimit

	pkgs, err := h.Service.List(r.Context(), skip, limit)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	active, err := h.Service.CountActive(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	page := listPage{
		Packages: dto.NewPackageListResponse(pkgs),
		Active:   active,
		Skip:     skip,
		PrevSkip: max(skip-limit, 0),
		NextSkip: skip + limit,
		HasPrev:  skip > 0,
		HasNext:  skip+limit < active,
		Flashes:  h.popFlashes(w, r),
	}
	h.render(w, r, http.StatusOK, "list", page)
}

func (h *WebHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, err := parsePackageForm(r)
	if err != nil {
		h.redirectWithFlash(w, r, webHome, formErrorMessage(err))
		return
	}

	p, err := h.Service.Create(r.Context(), in)
	if err != nil {
		h.redirectWithServiceError(w, r, webHome, err)
		return
	}

	h.redirectWithFlash(w, r, webHome, "Package "+p.TrackingNumber+" created")
}

func (h *WebHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.render(w, r, http.StatusNotFound, "not_found", nil)
		return
	}

	p, err := h.Service.Get(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		h.render(w, r, http.StatusNotFound, "not_found", nil)
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "edit", editPage{
		Package: dto.NewPackageResponse(p),
		Flashes: h.popFlashes(w, r),
	})
}

func (h *WebHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.render(w, r, http.StatusNotFound, "not_found", nil)
		return
	}
	editURL := "/edit/" + strconv.FormatInt(id, 10)

	in, err := parsePackageForm(r)
	if err != nil {
		h.redirectWithFlash(w, r, editURL, formErrorMessage(err))
		return
	}

	p, err := h.Service.Update(r.Context(), id, in)
	if errors.Is(err, domain.ErrDuplicateTrackingNumber) {
		h.redirectWithFlash(w, r, editURL, err.Error())
		return
	}
	if err != nil {
		h.redirectWithServiceError(w, r, webHome, err)
		return
	}

	h.redirectWithFlash(w, r, webHome, "Package "+p.TrackingNumber+" updated")
}

// Delete removes the package permanently, unlike the JSON endpoint.
func (h *WebHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Redirect(w, r, webHome, http.StatusSeeOther)
		return
	}

	if err := h.Service.HardDelete(r.Context(), id); err != nil {
		h.redirectWithServiceError(w, r, webHome, err)
		return
	}

	http.Redirect(w, r, webHome, http.StatusSeeOther)
}

func parsePackageForm(r *http.Request) (domain.PackageInput, error) {
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return domain.PackageInput{}, err
	}

	req, err := dto.PackageRequestFromForm(r.PostForm)
	if err != nil {
		return domain.PackageInput{}, err
	}
	return req.Validate()
}

func formErrorMessage(err error) string {
	var verr *validation.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	return "could not read the submitted form"
}

func (h *WebHandler) redirectWithServiceError(w http.ResponseWriter, r *http.Request, to string, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrDuplicateTrackingNumber):
		h.redirectWithFlash(w, r, to, err.Error())
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).
			Str("req_id", obs.RequestID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("web request failed")
		h.redirectWithFlash(w, r, to, "internal server error")
	}
}

func (h *WebHandler) redirectWithFlash(w http.ResponseWriter, r *http.Request, to, msg string) {
	// A tampered or stale cookie yields a fresh session along with the error.
	session, _ := h.Sessions.Get(r, flashSession)
	session.AddFlash(msg)
	if err := session.Save(r, w); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("save flash session failed")
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}

func (h *WebHandler) popFlashes(w http.ResponseWriter, r *http.Request) []string {
	session, _ := h.Sessions.Get(r, flashSession)
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := session.Save(r, w); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("clear flash session failed")
	}

	out := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (h *WebHandler) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplates.ExecuteTemplate(w, name, data); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("req_id", obs.RequestID(r.Context())).Str("template", name).Msg("render failed")
	}
}

func (h *WebHandler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	zerolog.Ctx(r.Context()).Error().Err(err).
		Str("req_id", obs.RequestID(r.Context())).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("web request failed")
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
