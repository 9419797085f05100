package geo

import "errors"

var (
	ErrNotFound             = errors.New("address could not be geocoded")
	ErrOutOfBounds          = errors.New("location is outside the service area")
	ErrUnresolvableLocation = errors.New("location could not be resolved to an address")
	ErrUpstream             = errors.New("geocoding provider unavailable")
)
