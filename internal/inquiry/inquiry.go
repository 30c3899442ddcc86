// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package inquiry models visitor contact and advertising requests:
// how a submission becomes a pending request and which status changes
// an admin may make afterwards.
package inquiry

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/newsdesk-go/internal/model"
)

// ErrInvalidTransition is returned for any status change other than
// pending to approved or pending to ignored.
var ErrInvalidTransition = errors.New("invalid request status transition")

// Confirmation is shown to the visitor after a successful submission.
const Confirmation = "Kërkesa u dërgua! Faleminderit që zgjodhët Skenderaj Live. " +
	"Kërkesa juaj do të shqyrtohet nga Redaksia jonë së shpejti."

// Submission is what a visitor fills in.
type Submission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

func (s Submission) trimmed() Submission {
	return Submission{
		Name:    strings.TrimSpace(s.Name),
		Email:   strings.TrimSpace(s.Email),
		Phone:   strings.TrimSpace(s.Phone),
		Message: strings.TrimSpace(s.Message),
	}
}

// Stamper formats the submission instant for display.
type Stamper interface {
	Stamp(t time.Time) string
}

// New turns a well-formed submission into a pending request with a fresh
// id and a display date. Any empty field yields a *model.ValidationError.
func New(sub Submission, now time.Time, stamper Stamper) (model.ContactRequest, error) {
	sub = sub.trimmed()
	if err := model.ValidateContactFields(sub.Name, sub.Email, sub.Phone, sub.Message); err != nil {
		return model.ContactRequest{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.ContactRequest{}, fmt.Errorf("generating request id: %w", err)
	}

	return model.ContactRequest{
		ID:      id.String(),
		Name:    sub.Name,
		Email:   sub.Email,
		Phone:   sub.Phone,
		Message: sub.Message,
		Date:    stamper.Stamp(now),
		Status:  model.StatusPending,
	}, nil
}

// Transition checks a status change. Setting the current status again is
// allowed and changes nothing.
func Transition(from, to model.RequestStatus) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}
	if from == to {
		return nil
	}
	if from == model.StatusPending && (to == model.StatusApproved || to == model.StatusIgnored) {
		return nil
	}
	return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, to)
}

// Apply returns req with its status moved to to.
func Apply(req model.ContactRequest, to model.RequestStatus) (model.ContactRequest, error) {
	if err := Transition(req.Status, to); err != nil {
		return req, err
	}
	req.Status = to
	return req, nil
}
