// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package domain

import (
	"context"

	"github.com/olegiv/newsdesk-go/internal/guard"
	"github.com/olegiv/newsdesk-go/internal/inquiry"
	"github.com/olegiv/newsdesk-go/internal/model"
	"github.com/olegiv/newsdesk-go/internal/persist"
)

// SubmitRequest stores a visitor's contact request as pending. It needs
// no session.
func (s *Store) SubmitRequest(ctx context.Context, sub inquiry.Submission) (model.ContactRequest, error) {
	ctx, cancel := s.detach(ctx)
	defer cancel()

	anon := guard.Anonymous()

	s.mu.Lock()
	defer s.mu.Unlock()

	req, err := inquiry.New(sub, s.now(), s.fmt)
	if err != nil {
		return model.ContactRequest{}, s.finish("request.submit", anon, err)
	}
	if err := s.requests.Put(ctx, req); err != nil {
		return model.ContactRequest{}, s.finish("request.submit", anon, err, "id", req.ID)
	}
	s.update(func(next *Snapshot) {
		next.Requests, _ = replaceOrPrepend(next.Requests, req)
	})
	s.announce(ctx, persist.Requests)
	return req, s.finish("request.submit", anon, nil, "id", req.ID)
}

// SetRequestStatus moves a request from pending to approved or ignored.
func (s *Store) SetRequestStatus(ctx context.Context, actor guard.Session, id string, status model.RequestStatus) (model.ContactRequest, error) {
	ctx, cancel := s.detach(ctx)
	defer cancel()

	if err := actor.Require(guard.CapManageRequests); err != nil {
		return model.ContactRequest{}, s.finish("request.status", actor, err, "id", id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.RequestByID(id)
	if !ok {
		return model.ContactRequest{}, s.finish("request.status", actor, ErrNotFound, "id", id)
	}
	req, err := inquiry.Apply(current, status)
	if err != nil {
		return current, s.finish("request.status", actor, err, "id", id)
	}
	if req == current {
		return req, nil
	}
	if err := s.requests.Put(ctx, req); err != nil {
		return current, s.finish("request.status", actor, err, "id", id)
	}
	s.update(func(next *Snapshot) {
		next.Requests, _ = replaceOrPrepend(next.Requests, req)
	})
	s.announce(ctx, persist.Requests)
	return req, s.finish("request.status", actor, nil, "id", id, "status", status)
}

// DeleteRequest removes a request. Deleting an unknown id does nothing.
func (s *Store) DeleteRequest(ctx context.Context, actor guard.Session, id string) error {
	ctx, cancel := s.detach(ctx)
	defer cancel()

	if err := actor.Require(guard.CapManageRequests); err != nil {
		return s.finish("request.delete", actor, err, "id", id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if indexOf(s.snap.Load().Requests, id) < 0 {
		return nil
	}
	if err := s.requests.Remove(ctx, id); err != nil {
		return s.finish("request.delete", actor, err, "id", id)
	}
	s.update(func(next *Snapshot) {
		next.Requests = without(next.Requests, id)
	})
	s.announce(ctx, persist.Requests)
	return s.finish("request.delete", actor, nil, "id", id)
}
