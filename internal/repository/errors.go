// Package repository holds the data access layer: hand-written SQL
// over database/sql against MySQL. Every read path that feeds an
// availability computation filters soft-deleted rows itself, so
// callers can never forget the filter. Sentinel errors defined here
// let handlers distinguish failure scenarios without string matching.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource owned by a different organization or user. Handlers should
// translate this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an operation cannot proceed because of
// existing dependent state, such as cancelling a reservation that has
// already been paid. Handlers should translate this into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned by user creation when the normalized
// email is already registered.
var ErrEmailExists = errors.New("email already exists")
