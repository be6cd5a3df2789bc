// Package engineerr defines the error taxonomy shared by every layer of the
// routing and deconfliction engine, and the single place that taxonomy is
// translated into gRPC status codes and HTTP status codes.
package engineerr

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/aerosync/vertiport-routing/geo"
)

// Sentinel errors for the taxonomy. Wrap with fmt.Errorf("...: %w", sentinel)
// at the point of detection so callers can match with errors.Is while still
// carrying a descriptive message.
var (
	// ErrBadGeometry covers malformed polygons/lines: unclosed rings, too
	// few vertices, non-finite coordinates. It is the same sentinel value as
	// geo.ErrBadGeometry, so validation errors from package geo match it.
	ErrBadGeometry = geo.ErrBadGeometry

	// ErrBadTelemetry covers missing callsigns, non-finite numeric fields,
	// or timestamps unreasonably far in the future.
	ErrBadTelemetry = errors.New("bad telemetry")

	// ErrUnknownEndpoint means a start/end id was not present in the store.
	ErrUnknownEndpoint = errors.New("unknown endpoint")

	// ErrStoreUnavailable means the backend rejected the connection, timed
	// out, or reported a transient error. Callers may retry.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrConflict signals a monotonic-update rejection (a stale telemetry
	// sample). At the API level this is usually not surfaced as an error at
	// all -- it is reported as applied=false.
	ErrConflict = errors.New("conflict")

	// ErrInternal marks an invariant violation that should never reach a
	// caller. Log with detail before returning it.
	ErrInternal = errors.New("internal error")
)

// ToStatusError maps a taxonomy error to a gRPC status error. Errors already
// carrying a gRPC status are passed through unchanged so wrapping never
// happens twice.
func ToStatusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, ErrBadGeometry), errors.Is(err, ErrBadTelemetry):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrUnknownEndpoint):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrStoreUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, ErrConflict):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// HTTPStatus maps a taxonomy error to an HTTP status code for the REST
// transport, mirroring ToStatusError's gRPC mapping.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return 200
	case errors.Is(err, ErrBadGeometry), errors.Is(err, ErrBadTelemetry):
		return 400
	case errors.Is(err, ErrUnknownEndpoint):
		return 404
	case errors.Is(err, ErrStoreUnavailable):
		return 503
	case errors.Is(err, ErrConflict):
		return 409
	default:
		return 500
	}
}
