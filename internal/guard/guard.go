// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package guard tracks who is signed in to the admin console and what
// their role allows.
//
// Enforcement happens at every mutation entry point of the domain store,
// not only in the HTTP layer. With the plaintext credential scheme the
// stored passwords themselves are not protected.
package guard

import (
	"context"
	"errors"

	"github.com/olegiv/newsdesk-go/internal/model"
)

var (
	// ErrUnauthenticated is returned when an anonymous session calls a
	// guarded operation.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden is returned when the session's role lacks a capability.
	ErrForbidden = errors.New("not permitted for this role")
)

// Capability is a named permission granted to a role.
type Capability string

// Capabilities.
const (
	CapEditNews       Capability = "news.edit"
	CapDeleteNews     Capability = "news.delete"
	CapManageTicker   Capability = "ticker.manage"
	CapManageAds      Capability = "ads.manage"
	CapManageRequests Capability = "requests.manage"
	CapManageUsers    Capability = "users.manage"
)

var roleCapabilities = map[model.Role]map[Capability]bool{
	model.RoleAdmin: {
		CapEditNews:       true,
		CapDeleteNews:     true,
		CapManageTicker:   true,
		CapManageAds:      true,
		CapManageRequests: true,
		CapManageUsers:    true,
	},
	model.RoleModerator: {
		CapEditNews: true,
	},
}

// RoleCan reports whether role holds capability c.
func RoleCan(role model.Role, c Capability) bool {
	return roleCapabilities[role][c]
}

// Authenticator checks a username/password pair against the user store.
// It is the only place credentials are compared.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (model.User, error)
}

// Session is the sign-in state of one admin console client: Anonymous or
// Authenticated(user). The zero value is Anonymous. A Session is not safe
// for concurrent use; each request builds its own.
type Session struct {
	user          model.User
	authenticated bool
}

// Anonymous returns a signed-out session.
func Anonymous() Session {
	return Session{}
}

// AuthenticatedAs returns a session for a user already verified, e.g. one
// restored from an HTTP session cookie.
func AuthenticatedAs(u model.User) Session {
	return Session{user: u, authenticated: true}
}

// Login moves the session to Authenticated when the credentials match.
// On any mismatch the session stays (or becomes) Anonymous and the
// authenticator's error is returned.
func (s *Session) Login(ctx context.Context, a Authenticator, username, password string) error {
	u, err := a.Authenticate(ctx, username, password)
	if err != nil {
		s.Logout()
		return err
	}
	s.user = u
	s.authenticated = true
	return nil
}

// Logout moves the session to Anonymous.
func (s *Session) Logout() {
	*s = Session{}
}

// User returns the signed-in user.
func (s Session) User() (model.User, bool) {
	return s.user, s.authenticated
}

// Authenticated reports whether someone is signed in.
func (s Session) Authenticated() bool {
	return s.authenticated
}

// Role returns the signed-in user's role, or "" when anonymous.
func (s Session) Role() model.Role {
	if !s.authenticated {
		return ""
	}
	return s.user.Role
}

// Can reports whether the session holds capability c.
func (s Session) Can(c Capability) bool {
	return s.authenticated && RoleCan(s.user.Role, c)
}

// Require returns ErrUnauthenticated or ErrForbidden when the session lacks c.
func (s Session) Require(c Capability) error {
	if !s.authenticated {
		return ErrUnauthenticated
	}
	if !RoleCan(s.user.Role, c) {
		return ErrForbidden
	}
	return nil
}
