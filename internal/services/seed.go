package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"package-tracking-service/internal/domain"
	"package-tracking-service/internal/validation"

	"github.com/rs/zerolog"
)

type PackageSeed struct {
	TrackingNumber string      `json:"tracking_number" validate:"min=3,max=50"`
	Recipient      string      `json:"recipient" validate:"min=2,max=100"`
	Weight         int         `json:"weight" validate:"gt=0,max=2147483647"`
	ShipDate       domain.Date `json:"ship_date"`
	Delivered      bool        `json:"delivered"`
}

// SeedResult counts what SeedFromJSON did.
type SeedResult struct {
	Created int
	Skipped int
}

// Populate the store with packages from a JSON file.
// Entries whose tracking number already exists are skipped.
func SeedFromJSON(ctx context.Context, svc *PackageService, jsonPath string) (SeedResult, error) {
	var res SeedResult

	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return res, fmt.Errorf("seed packages: read %q: %w", jsonPath, err)
	}

	var data []PackageSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return res, fmt.Errorf("seed packages: parse json: %w", err)
	}

	// Validate everything before writing anything.
	for i, item := range data {
		if err := validation.Struct(item); err != nil {
			return res, fmt.Errorf("seed packages: item at index %d: %w", i+1, err)
		}
		if item.ShipDate.IsZero() {
			return res, fmt.Errorf("seed packages: item at index %d: ship_date is required", i+1)
		}
	}

	for _, item := range data {
		_, err := svc.Create(ctx, domain.PackageInput{
			TrackingNumber: item.TrackingNumber,
			Recipient:      item.Recipient,
			Weight:         item.Weight,
			ShipDate:       item.ShipDate,
			Delivered:      item.Delivered,
		})
		if errors.Is(err, domain.ErrDuplicateTrackingNumber) {
			zerolog.Ctx(ctx).Info().Str("tracking_number", item.TrackingNumber).Msg("seed: package exists, skipping")
			res.Skipped++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("seed packages: tracking_number=%q: %w", item.TrackingNumber, err)
		}
		res.Created++
	}

	return res, nil
}
