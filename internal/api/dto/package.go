package dto

import (
	"net/url"
	"package-tracking-service/internal/domain"
	"package-tracking-service/internal/validation"
	"strconv"
	"strings"
	"time"
)

// PackageRequest is the accepted shape of create and update bodies.
// Pointer fields distinguish a missing value from a zero value.
// id and created_at are rejected whenever present, zero values included.
// weight is bounded by the INTEGER column shared by both SQL stores.
type PackageRequest struct {
	ID             *int64  `json:"id" validate:"omitnil,absent"`
	CreatedAt      *string `json:"created_at" validate:"omitnil,absent"`
	TrackingNumber *string `json:"tracking_number" validate:"required,min=3,max=50"`
	Recipient      *string `json:"recipient" validate:"required,min=2,max=100"`
	Weight         *int    `json:"weight" validate:"required,gt=0,max=2147483647"`
	ShipDate       *string `json:"ship_date" validate:"required,datetime=2006-01-02"`
	Delivered      *bool   `json:"delivered" validate:"required"`
}

// Validate checks the request and converts it to domain input.
// Failures are returned as *validation.ValidationError.
func (r PackageRequest) Validate() (domain.PackageInput, error) {
	if err := validation.Struct(r); err != nil {
		return domain.PackageInput{}, err
	}

	shipDate, err := domain.ParseDate(*r.ShipDate)
	if err != nil {
		return domain.PackageInput{}, validation.TypeMismatch("ship_date", "date")
	}

	return domain.PackageInput{
		TrackingNumber: *r.TrackingNumber,
		Recipient:      *r.Recipient,
		Weight:         *r.Weight,
		ShipDate:       shipDate,
		Delivered:      *r.Delivered,
	}, nil
}

// PackageRequestFromForm reads the web form fields into a PackageRequest.
// An absent delivered checkbox means false; server-owned fields are never read.
func PackageRequestFromForm(form url.Values) (PackageRequest, error) {
	var req PackageRequest

	if form.Has("tracking_number") {
		v := form.Get("tracking_number")
		req.TrackingNumber = &v
	}
	if form.Has("recipient") {
		v := form.Get("recipient")
		req.Recipient = &v
	}
	if form.Has("ship_date") {
		v := strings.TrimSpace(form.Get("ship_date"))
		req.ShipDate = &v
	}
	if form.Has("weight") {
		w, err := strconv.Atoi(strings.TrimSpace(form.Get("weight")))
		if err != nil {
			return req, validation.TypeMismatch("weight", "int")
		}
		req.Weight = &w
	}

	delivered := checkboxChecked(form.Get("delivered"))
	req.Delivered = &delivered

	return req, nil
}

func checkboxChecked(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	default:
		return false
	}
}

type PackageResponse struct {
	ID             int64       `json:"id"`
	TrackingNumber string      `json:"tracking_number"`
	Recipient      string      `json:"recipient"`
	Weight         int         `json:"weight"`
	ShipDate       domain.Date `json:"ship_date"`
	CreatedAt      time.Time   `json:"created_at"`
	Delivered      bool        `json:"delivered"`
	Active         bool        `json:"active"`
}

func NewPackageResponse(p *domain.Package) PackageResponse {
	return PackageResponse{
		ID:             p.ID,
		TrackingNumber: p.TrackingNumber,
		Recipient:      p.Recipient,
		Weight:         p.Weight,
		ShipDate:       p.ShipDate,
		CreatedAt:      p.CreatedAt,
		Delivered:      p.Delivered,
		Active:         p.Active,
	}
}

func NewPackageListResponse(pkgs []*domain.Package) []PackageResponse {
	out := make([]PackageResponse, 0, len(pkgs))
	for _, p := range pkgs {
		out = append(out, NewPackageResponse(p))
	}
	return out
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error  string                   `json:"error"`
	Fields []validation.FieldError `json:"fields,omitempty"`
}
