package kernel

import (
	"errors"
	"fmt"
	"math"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0

	// EarthRadiusMiles is the mean radius used by the flat-earth distance estimate.
	EarthRadiusMiles = 3958.8
)

var ErrGeoPointIsNotConstructed = errs.NewValueIsRequiredError("geo point must be created via NewGeoPoint")

// GeoPoint is a latitude/longitude pair in decimal degrees. It is used for a job's
// service address and a contractor's current location.
type GeoPoint struct { //nolint:recvcheck //using for validation
	lat   float64
	lng   float64
	guard guard.ConstructorGuard
}

// NewGeoPoint validates both coordinates and returns the point.
func NewGeoPoint(lat, lng float64) (GeoPoint, error) {
	p := GeoPoint{guard: guard.NewConstructorGuard()}

	if err := errors.Join(p.setLat(lat), p.setLng(lng)); err != nil {
		return GeoPoint{}, err
	}

	return p, nil
}

// Validate returns ErrGeoPointIsNotConstructed for the zero value.
func (p GeoPoint) Validate() error {
	return p.guard.Validate(ErrGeoPointIsNotConstructed)
}

// Lat returns the latitude in degrees, within -90..90.
func (p GeoPoint) Lat() float64 {
	return p.lat
}

// Lng returns the longitude in degrees, within -180..180.
func (p GeoPoint) Lng() float64 {
	return p.lng
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("GeoPoint(%.6f,%.6f)", p.lat, p.lng)
}

// DistanceMiles estimates the straight-line distance using an equirectangular
// (flat-earth) projection around the mean latitude of both points. It drifts from
// the great-circle distance over long spans and near the poles; service radii are
// short enough that dispatch has always relied on this estimate. The longitude
// difference is taken the short way round, so the antimeridian is not a wall.
//
// Example:
//
//	a, _ := kernel.NewGeoPoint(51.5072, -0.1276)
//	b, _ := kernel.NewGeoPoint(51.4545, -2.5879)
//	d, _ := a.DistanceMiles(b) // about 106 miles
func (p GeoPoint) DistanceMiles(other GeoPoint) (float64, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	lat1 := p.lat * math.Pi / 180
	lat2 := other.lat * math.Pi / 180
	dLat := lat2 - lat1
	dLng := (other.lng - p.lng) * math.Pi / 180
	// shortest way round: points either side of the antimeridian are close
	if dLng > math.Pi {
		dLng -= 2 * math.Pi
	} else if dLng < -math.Pi {
		dLng += 2 * math.Pi
	}

	x := dLng * math.Cos((lat1+lat2)/2)
	return EarthRadiusMiles * math.Sqrt(x*x+dLat*dLat), nil
}

// WithinRadius reports whether other lies within radiusMiles of p.
func (p GeoPoint) WithinRadius(other GeoPoint, radiusMiles float64) (bool, error) {
	d, err := p.DistanceMiles(other)
	if err != nil {
		return false, err
	}
	return d <= radiusMiles, nil
}

func (p *GeoPoint) setLat(lat float64) error {
	if math.IsNaN(lat) || lat < MinLatitude || lat > MaxLatitude {
		return errs.NewValueIsOutOfRangeError("latitude", lat, MinLatitude, MaxLatitude)
	}
	p.lat = lat
	return nil
}

func (p *GeoPoint) setLng(lng float64) error {
	if math.IsNaN(lng) || lng < MinLongitude || lng > MaxLongitude {
		return errs.NewValueIsOutOfRangeError("longitude", lng, MinLongitude, MaxLongitude)
	}
	p.lng = lng
	return nil
}
