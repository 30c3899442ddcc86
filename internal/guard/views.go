// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package guard

import "github.com/olegiv/newsdesk-go/internal/model"

// View is an admin console screen.
type View string

// Admin views.
const (
	ViewNews     View = "news"
	ViewAds      View = "ads"
	ViewRequests View = "requests"
	ViewUsers    View = "users"
)

// Views lists every admin view in menu order.
func Views() []View {
	return []View{ViewNews, ViewAds, ViewRequests, ViewUsers}
}

// DefaultView is where every signed-in role lands.
const DefaultView = ViewNews

var roleViews = map[model.Role]map[View]bool{
	model.RoleAdmin:     {ViewNews: true, ViewAds: true, ViewRequests: true, ViewUsers: true},
	model.RoleModerator: {ViewNews: true},
}

// CanView reports whether the session may open v.
func (s Session) CanView(v View) bool {
	return s.authenticated && roleViews[s.user.Role][v]
}

// Resolve returns the view the session should see when it asks for v:
// v itself when permitted, otherwise DefaultView. Callers redirect when the
// result differs from v.
func (s Session) Resolve(v View) View {
	if s.CanView(v) {
		return v
	}
	return DefaultView
}

// VisibleViews returns the views shown in the session's navigation.
func (s Session) VisibleViews() []View {
	var out []View
	for _, v := range Views() {
		if s.CanView(v) {
			out = append(out, v)
		}
	}
	return out
}
