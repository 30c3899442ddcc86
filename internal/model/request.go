// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"strings"
)

// RequestStatus is the review state of a contact request.
type RequestStatus string

// Request statuses.
const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusIgnored  RequestStatus = "ignored"
)

// Valid reports whether s is a declared status.
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusIgnored:
		return true
	}
	return false
}

// ContactRequest is an advertising or contact inquiry from a visitor.
type ContactRequest struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Email   string        `json:"email"`
	Phone   string        `json:"phone"`
	Message string        `json:"message"`
	Date    string        `json:"date"`
	Status  RequestStatus `json:"status"`
}

// Validate checks a stored request.
func (r ContactRequest) Validate() error {
	v := newValidator("contact request")
	v.required("id", r.ID)
	validateContact(v, r.Name, r.Email, r.Phone, r.Message)
	if !r.Status.Valid() {
		v.add("status", "must be pending, approved or ignored")
	}
	return v.err()
}

// Key returns the record's persistence key.
func (r ContactRequest) Key() string { return r.ID }

// ValidateContactFields checks a visitor submission before it becomes a request.
func ValidateContactFields(name, email, phone, message string) error {
	v := newValidator("contact request")
	validateContact(v, name, email, phone, message)
	return v.err()
}

func validateContact(v *validator, name, email, phone, message string) {
	v.required("name", name)
	v.required("email", email)
	v.required("phone", phone)
	v.required("message", message)
	if strings.TrimSpace(email) != "" && !strings.Contains(email, "@") {
		v.add("email", "must be an email address")
	}
}
