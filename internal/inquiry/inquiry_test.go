// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package inquiry

import (
	"errors"
	"testing"
	"time"

	"github.com/olegiv/newsdesk-go/internal/locale"
	"github.com/olegiv/newsdesk-go/internal/model"
)

func TestNew(t *testing.T) {
	now := time.Date(2025, time.October, 15, 12, 30, 0, 0, time.UTC)
	f := locale.MustNew("sq-AL", "Europe/Belgrade")

	req, err := New(Submission{
		Name:    "  Biznesi ABC ",
		Email:   "info@abc.al",
		Phone:   "+383 44 123 456",
		Message: "Dëshirojmë një banner.",
	}, now, f)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if req.Status != model.StatusPending {
		t.Errorf("Status = %q, want pending", req.Status)
	}
	if req.ID == "" {
		t.Error("ID not assigned")
	}
	if req.Name != "Biznesi ABC" {
		t.Errorf("Name = %q, want trimmed", req.Name)
	}
	if req.Date != "15 tetor, 14:30" {
		t.Errorf("Date = %q", req.Date)
	}
	if err := req.Validate(); err != nil {
		t.Errorf("new request does not validate: %v", err)
	}

	other, _ := New(Submission{Name: "a", Email: "a@b", Phone: "1", Message: "m"}, now, f)
	if other.ID == req.ID {
		t.Error("ids collide")
	}
}

func TestNewRejectsMissingFields(t *testing.T) {
	valid := Submission{Name: "n", Email: "e@x.al", Phone: "1", Message: "m"}
	tests := []struct {
		name  string
		mod   func(*Submission)
		field string
	}{
		{"name", func(s *Submission) { s.Name = "" }, "name"},
		{"email", func(s *Submission) { s.Email = "  " }, "email"},
		{"email without at", func(s *Submission) { s.Email = "email.al" }, "email"},
		{"phone", func(s *Submission) { s.Phone = "" }, "phone"},
		{"message", func(s *Submission) { s.Message = "\n" }, "message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := valid
			tt.mod(&sub)
			_, err := New(sub, time.Now(), locale.MustNew("sq-AL", "UTC"))
			var verr *model.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error = %v, want ValidationError", err)
			}
			if !verr.Has(tt.field) {
				t.Errorf("field %q not reported: %v", tt.field, verr)
			}
		})
	}
}

func TestTransition(t *testing.T) {
	tests := []struct {
		from, to model.RequestStatus
		ok       bool
	}{
		{model.StatusPending, model.StatusApproved, true},
		{model.StatusPending, model.StatusIgnored, true},
		{model.StatusPending, model.StatusPending, true},
		{model.StatusApproved, model.StatusApproved, true},
		{model.StatusApproved, model.StatusPending, false},
		{model.StatusApproved, model.StatusIgnored, false},
		{model.StatusIgnored, model.StatusApproved, false},
		{model.StatusIgnored, model.StatusPending, false},
		{model.StatusPending, "archived", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			err := Transition(tt.from, tt.to)
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("error = %v, want ErrInvalidTransition", err)
			}
		})
	}
}

func TestApply(t *testing.T) {
	req := model.ContactRequest{ID: "r1", Status: model.StatusPending}

	approved, err := Apply(req, model.StatusApproved)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if approved.Status != model.StatusApproved {
		t.Errorf("Status = %q", approved.Status)
	}
	if req.Status != model.StatusPending {
		t.Error("Apply modified its input")
	}

	back, err := Apply(approved, model.StatusPending)
	if err == nil {
		t.Error("approved request moved back to pending")
	}
	if back.Status != model.StatusApproved {
		t.Errorf("rejected transition changed status to %q", back.Status)
	}
}
