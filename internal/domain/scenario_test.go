// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/newsdesk-go/internal/guard"
	"github.com/olegiv/newsdesk-go/internal/inquiry"
	"github.com/olegiv/newsdesk-go/internal/model"
	"github.com/olegiv/newsdesk-go/internal/persist/memstore"
	"github.com/olegiv/newsdesk-go/internal/query"
)

func TestFirstStartCreatesBootstrapAdmin(t *testing.T) {
	backend := memstore.New()
	defer func() { _ = backend.Close() }()
	ctx := context.Background()

	s := New(backend, Options{})
	require.NoError(t, s.Load(ctx))

	users := s.Users()
	require.Len(t, users, 1)
	assert.Equal(t, "Admin", users[0].Username)
	assert.Equal(t, "Administratori", users[0].Name)
	assert.Equal(t, model.RoleAdmin, users[0].Role)

	var sess guard.Session
	require.NoError(t, sess.Login(ctx, s, "Admin", "Dd1.1"))
	assert.Equal(t, model.RoleAdmin, sess.Role())

	// A restart over the same data does not create a second admin.
	again := New(backend, Options{})
	require.NoError(t, again.Load(ctx))
	assert.Len(t, again.Users(), 1)
}

func TestBootstrapCredentialsAreConfigurable(t *testing.T) {
	backend := memstore.New()
	defer func() { _ = backend.Close() }()
	ctx := context.Background()

	s := New(backend, Options{Bootstrap: Bootstrap{Username: "redaktori", Name: "Kryeredaktori", Password: "n3w-S3cret"}})
	require.NoError(t, s.Load(ctx))

	var sess guard.Session
	assert.Error(t, sess.Login(ctx, s, "Admin", "Dd1.1"))
	assert.False(t, sess.Authenticated())
	require.NoError(t, sess.Login(ctx, s, "REDAKTORI", "n3w-S3cret"))
}

func TestCategoryFilterFindsNewItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.SaveNews(ctx, f.admin, model.NewsItem{
		ID: "n1", Title: "Test", Excerpt: "Ndeshja e djeshme.", Category: model.CategorySport, Author: "Sport News",
	})
	require.NoError(t, err)

	sport := query.Run(f.store.News(), query.Params{Category: model.CategorySport, PageSize: query.DefaultPageSize})
	require.Len(t, sport.Items, 1)
	assert.Equal(t, "n1", sport.Items[0].ID)

	politics := query.Run(f.store.News(), query.Params{Category: model.CategoryPolitics, PageSize: query.DefaultPageSize})
	assert.Empty(t, politics.Items)
}

func TestApprovedRequestSurvivesReload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.store.SubmitRequest(ctx, inquiry.Submission{
		Name: "Drita", Email: "drita@example.com", Phone: "049 000 111", Message: "Reklamë për dyqanin.",
	})
	require.NoError(t, err)
	got, ok := f.store.RequestByID(req.ID)
	require.True(t, ok)
	assert.Equal(t, model.StatusPending, got.Status)

	_, err = f.store.SetRequestStatus(ctx, f.admin, req.ID, model.StatusApproved)
	require.NoError(t, err)

	reloaded := New(f.backend, Options{})
	require.NoError(t, reloaded.Load(ctx))
	got, ok = reloaded.RequestByID(req.ID)
	require.True(t, ok)
	assert.Equal(t, model.StatusApproved, got.Status)
}

func TestEditKeepsPosition(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.SeedNews = true })
	ctx := context.Background()

	item, ok := f.store.NewsByID("3")
	require.True(t, ok)
	item.Title = "Sport: Drenica fiton derbin"
	_, err := f.store.SaveNews(ctx, f.admin, item)
	require.NoError(t, err)

	check := func(news []model.NewsItem) {
		t.Helper()
		count := 0
		for _, n := range news {
			if n.ID == "3" {
				count++
			}
		}
		assert.Equal(t, 1, count)
		assert.Equal(t, []string{"1", "2", "3", "4", "5", "6"}, newsIDs(news))
		assert.Equal(t, "Sport: Drenica fiton derbin", news[2].Title)
	}
	check(f.store.News())

	reloaded := New(f.backend, Options{})
	require.NoError(t, reloaded.Load(ctx))
	check(reloaded.News())
}
