// Package services defines the business logic for accounts, friendships,
// surveys, entry ordering, and response visibility. This file centralizes
// common service-level error values so that they can be consistently
// returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer; the
// handler layer translates them into HTTP statuses and stable error codes.
// Note that visibility denials are deliberately reported as ErrNotFound so
// callers cannot distinguish "hidden from you" from "does not exist".
package services

import "errors"

var (
	// ErrNotFound indicates that the requested user, survey, question, or
	// response does not exist — or that the viewer is not allowed to know
	// whether it exists.
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied is returned when the acting user does not own the
	// resource they are trying to mutate.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrUnauthorized is returned on bad login credentials.
	ErrUnauthorized = errors.New("bad credentials")

	// ErrNameTaken is returned when a username is already in use, compared
	// case-insensitively.
	ErrNameTaken = errors.New("username already taken")

	// ErrPasswordMismatch is returned when a password and its confirmation
	// differ.
	ErrPasswordMismatch = errors.New("passwords do not match")

	// ErrTokenMismatch is returned when a profile edit carries the wrong
	// csrf-style token.
	ErrTokenMismatch = errors.New("token error")

	// ErrWrongPassword is returned when the current password supplied with a
	// profile edit does not verify.
	ErrWrongPassword = errors.New("current password incorrect")

	// ErrInvalidInput is returned for structurally invalid requests that
	// survive transport-level validation (unknown privacy level, answer
	// values off the scale, empty question text).
	ErrInvalidInput = errors.New("invalid input")
)
