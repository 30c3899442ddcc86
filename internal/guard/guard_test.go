// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package guard

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/olegiv/newsdesk-go/internal/model"
)

var errBadCreds = errors.New("invalid username or password")

type fakeAuth struct {
	users []model.User
}

func (f fakeAuth) Authenticate(_ context.Context, username, password string) (model.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Username, username) && u.Password == password {
			return u, nil
		}
	}
	return model.User{}, errBadCreds
}

var (
	admin = model.User{ID: "1", Name: "Administratori", Username: "Admin", Password: "Dd1.1", Role: model.RoleAdmin}
	mod   = model.User{ID: "2", Name: "Moderatori", Username: "mod", Password: "m0d", Role: model.RoleModerator}
	auth  = fakeAuth{users: []model.User{admin, mod}}
)

func TestLogin(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		wantRole model.Role
		wantErr  bool
	}{
		{"exact", "Admin", "Dd1.1", model.RoleAdmin, false},
		{"username any case", "aDMIN", "Dd1.1", model.RoleAdmin, false},
		{"moderator", "MOD", "m0d", model.RoleModerator, false},
		{"wrong password", "Admin", "dd1.1", "", true},
		{"unknown user", "nobody", "Dd1.1", "", true},
		{"empty", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Session
			err := s.Login(context.Background(), auth, tt.username, tt.password)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if s.Authenticated() {
					t.Error("session authenticated after failed login")
				}
				return
			}
			if err != nil {
				t.Fatalf("Login: %v", err)
			}
			if s.Role() != tt.wantRole {
				t.Errorf("Role() = %q, want %q", s.Role(), tt.wantRole)
			}
		})
	}
}

func TestFailedLoginSignsOut(t *testing.T) {
	s := AuthenticatedAs(admin)
	if err := s.Login(context.Background(), auth, "Admin", "wrong"); err == nil {
		t.Fatal("expected error")
	}
	if s.Authenticated() {
		t.Error("failed login should leave session anonymous")
	}
}

func TestLogout(t *testing.T) {
	s := AuthenticatedAs(admin)
	s.Logout()
	if _, ok := s.User(); ok {
		t.Error("User() after Logout reports signed in")
	}
	if s.Can(CapEditNews) {
		t.Error("anonymous session holds a capability")
	}
}

func TestRequire(t *testing.T) {
	all := []Capability{CapEditNews, CapDeleteNews, CapManageTicker, CapManageAds, CapManageRequests, CapManageUsers}

	for _, c := range all {
		if err := Anonymous().Require(c); !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("anonymous Require(%s) = %v", c, err)
		}
		if err := AuthenticatedAs(admin).Require(c); err != nil {
			t.Errorf("admin Require(%s) = %v", c, err)
		}

		err := AuthenticatedAs(mod).Require(c)
		if c == CapEditNews {
			if err != nil {
				t.Errorf("moderator Require(%s) = %v", c, err)
			}
		} else if !errors.Is(err, ErrForbidden) {
			t.Errorf("moderator Require(%s) = %v, want ErrForbidden", c, err)
		}
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		session Session
		view    View
		want    View
	}{
		{"admin users", AuthenticatedAs(admin), ViewUsers, ViewUsers},
		{"admin requests", AuthenticatedAs(admin), ViewRequests, ViewRequests},
		{"moderator news", AuthenticatedAs(mod), ViewNews, ViewNews},
		{"moderator users redirected", AuthenticatedAs(mod), ViewUsers, ViewNews},
		{"moderator ads redirected", AuthenticatedAs(mod), ViewAds, ViewNews},
		{"moderator requests redirected", AuthenticatedAs(mod), ViewRequests, ViewNews},
		{"unknown view", AuthenticatedAs(admin), View("settings"), ViewNews},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.session.Resolve(tt.view); got != tt.want {
				t.Errorf("Resolve(%s) = %s, want %s", tt.view, got, tt.want)
			}
		})
	}
}

func TestVisibleViews(t *testing.T) {
	if got := AuthenticatedAs(admin).VisibleViews(); len(got) != 4 {
		t.Errorf("admin views = %v", got)
	}
	if got := AuthenticatedAs(mod).VisibleViews(); len(got) != 1 || got[0] != ViewNews {
		t.Errorf("moderator views = %v", got)
	}
	if got := Anonymous().VisibleViews(); len(got) != 0 {
		t.Errorf("anonymous views = %v", got)
	}
}
