package domain

import "errors"

// Sentinel errors classifying every failure that crosses out of the geo,
// repo, and service layers. Each maps 1:1 to an HTTP status in the handler
// package. No error is ever retried; failures surface immediately.
var (
	// ErrValidation is returned when input fails business rule validation
	// (missing field, value out of the 1–100 character range).
	// Handlers map this to HTTP 404, the service's long-standing
	// convention, deliberately not 400/422.
	ErrValidation = errors.New("validation error")

	// ErrNotFound is returned when the requested store does not exist.
	// Handlers map this to HTTP 404.
	ErrNotFound = errors.New("not found")

	// ErrAddressNotFound is returned when the geocoder resolves an address
	// to nothing. Handlers map this to HTTP 404.
	ErrAddressNotFound = errors.New("address not found")

	// ErrGeocoderUnreachable is returned when the geocoding request cannot
	// complete (connection or timeout failure) or the upstream answers with
	// a non-2xx status. Handlers map this to HTTP 400: an unreachable
	// upstream is treated as a caller-facing degraded condition here,
	// not a server fault.
	ErrGeocoderUnreachable = errors.New("geocoder unreachable")

	// ErrGeocoderFault is returned for any other failure issuing or parsing
	// the geocoding request. Handlers map this to HTTP 500.
	ErrGeocoderFault = errors.New("geocoder fault")

	// ErrDataIntegrity is returned when the storage layer rejects a write
	// with a uniqueness or constraint violation. Handlers map this to
	// HTTP 400.
	ErrDataIntegrity = errors.New("data integrity violation")

	// ErrStorageUnavailable is returned for connection-level storage
	// failures. Handlers map this to HTTP 503.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrStorageSchema is returned when a query is rejected because it does
	// not match the schema. Handlers map this to HTTP 500.
	ErrStorageSchema = errors.New("storage schema fault")
)
