// Package contractor holds the availability view of a field contractor used for dispatch.
package contractor

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

const (
	MinRating = 0.0
	MaxRating = 5.0
)

// ErrContractorIsNotConstructed is returned by Validate for a zero-value Contractor.
var ErrContractorIsNotConstructed = errors.New("Contractor must be created via NewContractor constructor")

// Contractor is the dispatch-relevant part of a contractor profile.
//
// Contractor follows these invariants:
//   - Name is not blank
//   - Tier is Bronze, Silver or Gold
//   - ServiceRadiusMiles is greater than 0
//   - Rating, when known, lies in MinRating..MaxRating
//   - Can only be created through NewContractor or RestoreContractor
type Contractor struct {
	id                 kernel.UUID
	name               string
	tier               Tier
	isAvailable        bool
	serviceRadiusMiles float64
	location           *kernel.GeoPoint
	lastAssignedAt     *time.Time
	rating             *float64

	isConstructed bool
}

// NewContractor creates an available contractor without a known location or rating.
//
// Example:
//
//	c, err := contractor.NewContractor(kernel.NewUUID(), "Ada Plumbing", contractor.Gold, 25)
//	if err != nil {
//	    return err
//	}
//	_ = c.MoveTo(&depot)
func NewContractor(id kernel.UUID, name string, tier Tier, serviceRadiusMiles float64) (*Contractor, error) {
	c := &Contractor{
		isAvailable:   true,
		isConstructed: true,
	}

	if err := errors.Join(
		c.setID(id),
		c.setName(name),
		c.setTier(tier),
		c.setServiceRadius(serviceRadiusMiles),
	); err != nil {
		return nil, err
	}
	return c, nil
}

// RestoreContractor rebuilds a contractor loaded from storage.
func RestoreContractor(
	id kernel.UUID,
	name string,
	tier Tier,
	isAvailable bool,
	serviceRadiusMiles float64,
	location *kernel.GeoPoint,
	lastAssignedAt *time.Time,
	rating *float64,
) (*Contractor, error) {
	c, err := NewContractor(id, name, tier, serviceRadiusMiles)
	if err != nil {
		return nil, err
	}
	if err := errors.Join(c.MoveTo(location), c.setRating(rating)); err != nil {
		return nil, err
	}
	c.isAvailable = isAvailable
	c.lastAssignedAt = lastAssignedAt
	return c, nil
}

// Validate returns ErrContractorIsNotConstructed for a contractor built without a constructor.
func (c *Contractor) Validate() error {
	if c == nil || !c.isConstructed {
		return ErrContractorIsNotConstructed
	}
	return nil
}

// ID returns the contractor's unique identifier.
func (c *Contractor) ID() kernel.UUID {
	return c.id
}

// Name returns the contractor's display name.
func (c *Contractor) Name() string {
	return c.name
}

// Tier returns the contractor's tier. Higher tiers are preferred by the selector.
func (c *Contractor) Tier() Tier {
	return c.tier
}

// IsAvailable reports whether the contractor takes new work at all. Calendar time off
// is checked separately.
func (c *Contractor) IsAvailable() bool {
	return c.isAvailable
}

// ServiceRadiusMiles returns how far from its location the contractor travels for work.
func (c *Contractor) ServiceRadiusMiles() float64 {
	return c.serviceRadiusMiles
}

// Location returns the contractor's last known position, or nil when it is unknown.
// A contractor without a location only matches jobs that have none.
func (c *Contractor) Location() *kernel.GeoPoint {
	return c.location
}

// LastAssignedAt returns when the contractor was last given a job, or nil if never.
// The selector prefers the contractor that has waited longest.
func (c *Contractor) LastAssignedAt() *time.Time {
	return c.lastAssignedAt
}

// Rating returns the customer rating in 0..5, or nil when the contractor is unrated.
func (c *Contractor) Rating() *float64 {
	return c.rating
}

// SetAvailable toggles whether the selector may consider the contractor at all.
func (c *Contractor) SetAvailable(available bool) {
	c.isAvailable = available
}

// MoveTo updates the last known position. A nil location clears it.
//
// Returns a validation error for an unconstructed GeoPoint, keeping the old position.
func (c *Contractor) MoveTo(location *kernel.GeoPoint) error {
	if location != nil {
		if err := location.Validate(); err != nil {
			return err
		}
	}
	c.location = location
	return nil
}

// MarkAssigned stamps the moment the contractor last received a job.
//
// Both a current assignment and a reservation count, so a contractor with a full queue
// drops to the back of the least-recently-assigned order.
func (c *Contractor) MarkAssigned(at time.Time) {
	c.lastAssignedAt = &at
}

// Serves reports whether the job location is inside the service radius. A job without
// a location is served by everyone; a contractor without a known position serves only
// such jobs.
//
// Example:
//
//	home, _ := kernel.NewGeoPoint(51.5074, -0.1278)
//	site, _ := kernel.NewGeoPoint(51.4545, -2.5879)
//	_ = c.MoveTo(&home)
//	ok, _ := c.Serves(&site) // false for a 50 mile radius, the sites are ~106 miles apart
func (c *Contractor) Serves(jobLocation *kernel.GeoPoint) (bool, error) {
	if jobLocation == nil {
		return true, nil
	}
	if c.location == nil {
		return false, nil
	}
	return c.location.WithinRadius(*jobLocation, c.serviceRadiusMiles)
}

func (c *Contractor) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.id = id
	return nil
}

func (c *Contractor) setName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errs.NewValueIsRequiredError("name")
	}
	c.name = name
	return nil
}

func (c *Contractor) setTier(tier Tier) error {
	if err := tier.Validate(); err != nil {
		return err
	}
	c.tier = tier
	return nil
}

func (c *Contractor) setServiceRadius(miles float64) error {
	if math.IsNaN(miles) || miles <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("serviceRadius", fmt.Errorf("%v is not greater than 0", miles))
	}
	c.serviceRadiusMiles = miles
	return nil
}

func (c *Contractor) setRating(rating *float64) error {
	if rating == nil {
		c.rating = nil
		return nil
	}
	if math.IsNaN(*rating) || *rating < MinRating || *rating > MaxRating {
		return errs.NewValueIsOutOfRangeError("rating", *rating, MinRating, MaxRating)
	}
	r := *rating
	c.rating = &r
	return nil
}
