// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
)

// ErrInvalidCredentials is returned for any username or password mismatch.
// Callers must not reveal which of the two was wrong.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Scheme names.
const (
	SchemePlain  = "plain"
	SchemeArgon2 = "argon2"
)

// Verifier turns passwords into stored credentials and checks them.
type Verifier interface {
	// Scheme returns the scheme name.
	Scheme() string
	// Hash returns the value to store for password.
	Hash(password string) (string, error)
	// Verify reports whether password matches stored.
	Verify(password, stored string) bool
	// NeedsUpgrade reports whether stored should be re-hashed after a
	// successful login.
	NeedsUpgrade(stored string) bool
}

// NewVerifier returns the verifier for scheme.
func NewVerifier(scheme string) (Verifier, error) {
	switch scheme {
	case SchemePlain, "":
		return Plain{}, nil
	case SchemeArgon2:
		return Argon2{}, nil
	}
	return nil, fmt.Errorf("unknown password scheme %q", scheme)
}

// Plain stores passwords as given. Records written by the portal's
// earlier deployments use this form.
type Plain struct{}

func (Plain) Scheme() string { return SchemePlain }

func (Plain) Hash(password string) (string, error) { return password, nil }

func (Plain) Verify(password, stored string) bool {
	return subtle.ConstantTimeCompare([]byte(password), []byte(stored)) == 1
}

func (Plain) NeedsUpgrade(string) bool { return false }

// Argon2 stores argon2id hashes. Plaintext records are still accepted and
// reported as needing an upgrade, so an existing user store can be
// migrated one login at a time.
type Argon2 struct{}

func (Argon2) Scheme() string { return SchemeArgon2 }

func (Argon2) Hash(password string) (string, error) { return HashArgon2(password) }

func (Argon2) Verify(password, stored string) bool {
	if !IsArgon2Hash(stored) {
		return Plain{}.Verify(password, stored)
	}
	ok, err := VerifyArgon2(password, stored)
	if err != nil {
		slog.Warn("stored password hash is unreadable", "error", err)
		return false
	}
	return ok
}

func (Argon2) NeedsUpgrade(stored string) bool {
	return !IsArgon2Hash(stored) || NeedsRehash(stored)
}
