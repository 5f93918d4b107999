// Package location provides best-effort acquisition of the user's
// coordinates. Absence of a location is an expected outcome, never an
// error the user sees.
package location

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/serenelabs/serene/internal/models"
)

// Provider acquires the user's coordinates once. Implementations must be
// best-effort: denial or timeout returns ErrLocationUnavailable and the
// caller proceeds without a location.
type Provider interface {
	Acquire(ctx context.Context) (models.Location, error)
}

// Static is a Provider that always returns a fixed location. Used for the
// SERENE_COORDS override and as a test fixture.
type Static struct {
	Location models.Location
}

// Acquire returns the fixed location.
func (s Static) Acquire(_ context.Context) (models.Location, error) {
	return s.Location, nil
}

// ParseCoords parses a "lat,lon" pair, the format the SERENE_COORDS
// environment variable accepts.
func ParseCoords(s string) (models.Location, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return models.Location{}, fmt.Errorf("coordinates must be \"lat,lon\", got %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return models.Location{}, fmt.Errorf("invalid latitude %q", parts[0])
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return models.Location{}, fmt.Errorf("invalid longitude %q", parts[1])
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return models.Location{}, fmt.Errorf("coordinates %s out of range", s)
	}
	return models.Location{Latitude: lat, Longitude: lon, Known: true}, nil
}
