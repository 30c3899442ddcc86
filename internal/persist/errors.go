// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package persist

import (
	"errors"
	"fmt"
)

var (
	// ErrPermissionDenied means the backend refused access. It needs
	// operator action (credentials, access rules), not a retry.
	ErrPermissionDenied = errors.New("permission denied by backing store")

	// ErrMalformed marks a stored document that failed schema validation.
	ErrMalformed = errors.New("malformed document")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("adapter closed")

	// ErrUnknownCollection is returned for names outside the portal's collections.
	ErrUnknownCollection = errors.New("unknown collection")
)

// Error wraps a backend failure with the operation that caused it.
type Error struct {
	Op         string
	Collection Collection
	Key        string
	Err        error
}

func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %s/%s: %v", e.Op, e.Collection, e.Key, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap returns nil for a nil err, otherwise an *Error.
func Wrap(op string, c Collection, key string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Collection: c, Key: key, Err: err}
}

// Denied wraps a backend error so that it matches ErrPermissionDenied while
// keeping the original message.
func Denied(err error) error {
	return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
}

// IsPermissionDenied reports whether err is a configuration/permission problem.
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// CheckCollection rejects names outside the portal's collections.
func CheckCollection(op string, c Collection) error {
	if !c.Valid() {
		return Wrap(op, c, "", ErrUnknownCollection)
	}
	return nil
}
