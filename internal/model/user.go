// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Role is an admin console role.
type Role string

// Roles.
const (
	RoleAdmin     Role = "Admin"
	RoleModerator Role = "Moderator"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleModerator
}

// User is an admin console account.
// Password holds whatever the configured credential verifier stores:
// plaintext in the baseline scheme, an argon2id hash otherwise.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// IsAdmin returns true if the user has the Admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Validate checks a user record.
func (u User) Validate() error {
	v := newValidator("user")
	v.required("id", u.ID)
	v.required("name", u.Name)
	v.required("username", u.Username)
	v.required("password", u.Password)
	if !u.Role.Valid() {
		v.add("role", "must be Admin or Moderator")
	}
	return v.err()
}

// Key returns the record's persistence key.
func (u User) Key() string { return u.ID }

// PublicUser is the user as shown in the admin console, without credentials.
type PublicUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Public strips the credential.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Username: u.Username, Role: u.Role}
}
