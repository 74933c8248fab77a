// Package errs provides standardized error types for the dispatch core.
// It implements a consistent pattern for error creation, formatting, and
// unwrapping used throughout the application.
//
// Each error type follows the same shape:
//   - a sentinel error variable (e.g. ErrObjectNotFound)
//   - a struct carrying the error details
//   - constructors with and without a cause
//   - Error() for formatting and Unwrap() for errors.Is support
//
// Domain packages define their own sentinels (illegal transitions, courier
// availability) and use these types for the cross-cutting cases: missing
// values, invalid values, out-of-range coordinates, and lookup misses.
package errs
