// Package repository implements the persistence layer over MySQL.  Shared
// sentinel errors live here so handlers and services can map failure
// scenarios to HTTP codes without inspecting driver errors.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource owned by someone else.  Translates to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrDeskNotFound is returned when a desk id does not resolve to a row.
var ErrDeskNotFound = errors.New("desk not found")

// ErrBookingNotFound is returned when a booking id does not resolve to a row.
var ErrBookingNotFound = errors.New("booking not found")

// ErrStaleStatus is returned by the guarded booking status transition
// when the row's current status no longer matches the expected one.
// Exactly one of any set of concurrent transitions can succeed; the
// rest observe this error.  Translates to HTTP 409.
var ErrStaleStatus = errors.New("booking status changed concurrently")
