package dto

import (
	"errors"
	"net/url"
	"package-tracking-service/internal/domain"
	"package-tracking-service/internal/validation"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func validRequest() PackageRequest {
	return PackageRequest{
		TrackingNumber: ptr("ABC123"),
		Recipient:      ptr("Jane Doe"),
		Weight:         ptr(5),
		ShipDate:       ptr("2024-01-10"),
		Delivered:      ptr(false),
	}
}

func TestPackageRequestValidate(t *testing.T) {
	in, err := validRequest().Validate()
	require.NoError(t, err)

	assert.Equal(t, domain.PackageInput{
		TrackingNumber: "ABC123",
		Recipient:      "Jane Doe",
		Weight:         5,
		ShipDate:       domain.NewDate(2024, time.January, 10),
		Delivered:      false,
	}, in)
}

func TestPackageRequestBoundaries(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(r *PackageRequest)
		field      string
		constraint string
	}{
		{name: "zero weight", mutate: func(r *PackageRequest) { r.Weight = ptr(0) }, field: "weight", constraint: "gt"},
		{name: "negative weight", mutate: func(r *PackageRequest) { r.Weight = ptr(-3) }, field: "weight", constraint: "gt"},
		{name: "tracking number too short", mutate: func(r *PackageRequest) { r.TrackingNumber = ptr("AB") }, field: "tracking_number", constraint: "min"},
		{name: "tracking number too long", mutate: func(r *PackageRequest) { r.TrackingNumber = ptr(strings.Repeat("A", 51)) }, field: "tracking_number", constraint: "max"},
		{name: "recipient too short", mutate: func(r *PackageRequest) { r.Recipient = ptr("J") }, field: "recipient", constraint: "min"},
		{name: "recipient too long", mutate: func(r *PackageRequest) { r.Recipient = ptr(strings.Repeat("J", 101)) }, field: "recipient", constraint: "max"},
		{name: "bad date", mutate: func(r *PackageRequest) { r.ShipDate = ptr("2024-13-40") }, field: "ship_date", constraint: "date"},
		{name: "missing delivered", mutate: func(r *PackageRequest) { r.Delivered = nil }, field: "delivered", constraint: "required"},
		{name: "weight above integer column", mutate: func(r *PackageRequest) { r.Weight = ptr(2147483648) }, field: "weight", constraint: "max"},
		{name: "client zero id", mutate: func(r *PackageRequest) { r.ID = ptr(int64(0)) }, field: "id", constraint: "server_assigned"},
		{name: "client empty created_at", mutate: func(r *PackageRequest) { r.CreatedAt = ptr("") }, field: "created_at", constraint: "server_assigned"},
		{name: "client id", mutate: func(r *PackageRequest) { r.ID = ptr(int64(9)) }, field: "id", constraint: "server_assigned"},
		{name: "client created_at", mutate: func(r *PackageRequest) { r.CreatedAt = ptr("2024-01-01T00:00:00Z") }, field: "created_at", constraint: "server_assigned"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			_, err := req.Validate()

			var verr *validation.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.True(t, verr.Has(tt.field, tt.constraint), "fields: %+v", verr.Fields)
		})
	}
}

func TestTrackingNumberOfFiftyCharactersIsAccepted(t *testing.T) {
	req := validRequest()
	req.TrackingNumber = ptr(strings.Repeat("A", 50))

	_, err := req.Validate()
	assert.NoError(t, err)
}

func TestLargestStorableWeightIsAccepted(t *testing.T) {
	req := validRequest()
	req.Weight = ptr(2147483647)

	_, err := req.Validate()
	assert.NoError(t, err)
}

func TestPackageRequestFromForm(t *testing.T) {
	form := url.Values{
		"tracking_number": {"WEB001"},
		"recipient":       {"John Roe"},
		"weight":          {"12"},
		"ship_date":       {"2024-02-01"},
	}

	req, err := PackageRequestFromForm(form)
	require.NoError(t, err)

	in, err := req.Validate()
	require.NoError(t, err)
	assert.Equal(t, 12, in.Weight)
	assert.False(t, in.Delivered)

	form.Set("delivered", "on")
	req, err = PackageRequestFromForm(form)
	require.NoError(t, err)
	assert.True(t, *req.Delivered)
}

func TestPackageRequestFromFormRejectsNonNumericWeight(t *testing.T) {
	_, err := PackageRequestFromForm(url.Values{"weight": {"heavy"}})

	var verr *validation.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has("weight", "type"))
}
