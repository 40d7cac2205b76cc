package domain

import "time"

// Represents a single shipment tracked by the system.
// A Package is identified by a server-assigned ID and a caller-chosen
// tracking number that stays reserved even after the package is soft-deleted.
type Package struct {
	ID             int64
	TrackingNumber string
	Recipient      string
	Weight         int
	ShipDate       Date
	CreatedAt      time.Time
	Delivered      bool
	Active         bool
}

// Business fields accepted from callers on create and update.
// ID, CreatedAt and Active are owned by the server and never appear here.
type PackageInput struct {
	TrackingNumber string
	Recipient      string
	Weight         int
	ShipDate       Date
	Delivered      bool
}

// Build a new active package from validated input.
func NewPackage(in PackageInput, createdAt time.Time) *Package {
	p := &Package{
		CreatedAt: createdAt,
		Active:    true,
	}
	p.Apply(in)
	return p
}

// Replace every business field with the values from in.
// ID, CreatedAt and Active are left untouched.
func (p *Package) Apply(in PackageInput) {
	p.TrackingNumber = in.TrackingNumber
	p.Recipient = in.Recipient
	p.Weight = in.Weight
	p.ShipDate = in.ShipDate
	p.Delivered = in.Delivered
}

// Input returns the business fields of p.
func (p *Package) Input() PackageInput {
	return PackageInput{
		TrackingNumber: p.TrackingNumber,
		Recipient:      p.Recipient,
		Weight:         p.Weight,
		ShipDate:       p.ShipDate,
		Delivered:      p.Delivered,
	}
}
