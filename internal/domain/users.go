// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/olegiv/newsdesk-go/internal/auth"
	"github.com/olegiv/newsdesk-go/internal/guard"
	"github.com/olegiv/newsdesk-go/internal/locale"
	"github.com/olegiv/newsdesk-go/internal/metrics"
	"github.com/olegiv/newsdesk-go/internal/model"
	"github.com/olegiv/newsdesk-go/internal/persist"
)

// AddUser creates an account. The id is generated and the password is
// stored through the configured verifier.
func (s *Store) AddUser(ctx context.Context, actor guard.Session, u model.User) (model.User, error) {
	ctx, cancel := s.detach(ctx)
	defer cancel()

	if err := actor.Require(guard.CapManageUsers); err != nil {
		return model.User{}, s.finish("user.add", actor, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := uuid.NewV7()
	if err != nil {
		return model.User{}, s.finish("user.add", actor, fmt.Errorf("generating user id: %w", err))
	}
	u.ID = id.String()
	u.Name = s.render.Text(u.Name)
	u.Username = strings.TrimSpace(u.Username)
	if err := u.Validate(); err != nil {
		return model.User{}, s.finish("user.add", actor, err)
	}
	if _, taken := s.userByUsername(u.Username); taken {
		return model.User{}, s.finish("user.add", actor, ErrDuplicateUsername, "username", u.Username)
	}

	if u.Password, err = s.verifier.Hash(u.Password); err != nil {
		return model.User{}, s.finish("user.add", actor, fmt.Errorf("hashing password: %w", err))
	}
	if err := s.users.Put(ctx, u); err != nil {
		return model.User{}, s.finish("user.add", actor, err, "username", u.Username)
	}
	s.update(func(next *Snapshot) {
		next.Users = append(cloneUsers(next.Users), u)
	})
	s.announce(ctx, persist.Users)
	return u, s.finish("user.add", actor, nil, "username", u.Username, "role", u.Role)
}

// DeleteUser removes an account. A session cannot delete itself and the
// last Admin cannot be deleted. Deleting an unknown id does nothing.
func (s *Store) DeleteUser(ctx context.Context, actor guard.Session, id string) error {
	ctx, cancel := s.detach(ctx)
	defer cancel()

	if err := actor.Require(guard.CapManageUsers); err != nil {
		return s.finish("user.delete", actor, err, "id", id)
	}
	if me, ok := actor.User(); ok && me.ID == id {
		return s.finish("user.delete", actor, ErrSelfDelete, "id", id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users := s.snap.Load().Users
	i := indexOf(users, id)
	if i < 0 {
		return nil
	}
	if users[i].IsAdmin() && countAdmins(users) <= 1 {
		return s.finish("user.delete", actor, ErrLastAdmin, "id", id)
	}
	if err := s.users.Remove(ctx, id); err != nil {
		return s.finish("user.delete", actor, err, "id", id)
	}
	s.update(func(next *Snapshot) {
		next.Users = without(next.Users, id)
	})
	s.announce(ctx, persist.Users)
	return s.finish("user.delete", actor, nil, "id", id, "username", users[i].Username)
}

// Authenticate checks a login. The username matches case-insensitively
// and the password must match exactly. Any mismatch yields
// auth.ErrInvalidCredentials. When the verifier asks for it, the stored
// credential is upgraded after a successful check.
func (s *Store) Authenticate(ctx context.Context, username, password string) (model.User, error) {
	u, ok := s.userByUsername(strings.TrimSpace(username))
	if !ok || !s.verifier.Verify(password, u.Password) {
		metrics.LoginsTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		s.logger.Warn("login failed", "username", username)
		return model.User{}, auth.ErrInvalidCredentials
	}

	metrics.LoginsTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	s.logger.Info("login succeeded", "username", u.Username, "role", u.Role)

	if s.verifier.NeedsUpgrade(u.Password) {
		s.upgradePassword(ctx, u.ID, password)
	}
	return u, nil
}

// upgradePassword re-stores a credential with the current scheme. Failure
// is logged; the login itself already succeeded.
func (s *Store) upgradePassword(ctx context.Context, id, password string) {
	ctx, cancel := s.detach(ctx)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.UserByID(id)
	if !ok {
		return
	}
	stored, err := s.verifier.Hash(password)
	if err != nil {
		s.logger.Error("password upgrade failed", "username", u.Username, "error", err)
		return
	}
	u.Password = stored
	if err := s.users.Put(ctx, u); err != nil {
		s.logger.Error("password upgrade failed", "username", u.Username, "error", err)
		return
	}
	s.update(func(next *Snapshot) {
		next.Users, _ = replaceOrPrepend(next.Users, u)
	})
	s.announce(ctx, persist.Users)
	s.logger.Info("password upgraded", "username", u.Username, "scheme", s.verifier.Scheme())
}

func (s *Store) userByUsername(username string) (model.User, bool) {
	want := locale.Fold(username)
	for _, u := range s.snap.Load().Users {
		if locale.Fold(u.Username) == want {
			return u, true
		}
	}
	return model.User{}, false
}

func countAdmins(users []model.User) int {
	n := 0
	for _, u := range users {
		if u.IsAdmin() {
			n++
		}
	}
	return n
}

func cloneUsers(users []model.User) []model.User {
	out := make([]model.User, len(users), len(users)+1)
	copy(out, users)
	return out
}
