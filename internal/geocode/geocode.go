// Package geocode resolves free-text postal addresses into coordinates.
package geocode

import (
	"context"
	"errors"

	"github.com/placeshare/placeshare/internal/model"
)

// Resolution errors.
var (
	// ErrUnresolvableAddress means the lookup service found no match.
	// It is a client input problem, not a system fault.
	ErrUnresolvableAddress = errors.New("could not find location for the specified address")

	// ErrGeocodingUnavailable means the lookup service could not be reached
	// or returned a payload that could not be used.
	ErrGeocodingUnavailable = errors.New("geocoding service unavailable")
)

// Outcome labels reported to the metrics recorder.
const (
	OutcomeSuccess      = "success"
	OutcomeUnresolvable = "unresolvable"
	OutcomeUnavailable  = "unavailable"
)

// Resolver translates an address into coordinates.
type Resolver interface {
	// Resolve returns the coordinates of the first candidate for address.
	// Errors wrap ErrUnresolvableAddress or ErrGeocodingUnavailable.
	Resolve(ctx context.Context, address string) (model.Coordinates, error)
}

// OutcomeOf classifies a Resolve error into an outcome label.
func OutcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrUnresolvableAddress):
		return OutcomeUnresolvable
	default:
		return OutcomeUnavailable
	}
}
