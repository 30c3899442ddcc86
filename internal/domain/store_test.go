// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package domain

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/newsdesk-go/internal/auth"
	"github.com/olegiv/newsdesk-go/internal/guard"
	"github.com/olegiv/newsdesk-go/internal/inquiry"
	"github.com/olegiv/newsdesk-go/internal/locale"
	"github.com/olegiv/newsdesk-go/internal/model"
	"github.com/olegiv/newsdesk-go/internal/persist"
	"github.com/olegiv/newsdesk-go/internal/persist/memstore"
)

var testNow = time.Date(2025, 10, 15, 14, 30, 0, 0, time.UTC)

// flakyAdapter fails writes on demand.
type flakyAdapter struct {
	persist.Adapter
	mu  sync.Mutex
	err error
}

func (f *flakyAdapter) fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *flakyAdapter) current() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *flakyAdapter) Save(ctx context.Context, c persist.Collection, key string, data []byte) error {
	if err := f.current(); err != nil {
		return persist.Wrap("save", c, key, err)
	}
	return f.Adapter.Save(ctx, c, key, data)
}

func (f *flakyAdapter) Delete(ctx context.Context, c persist.Collection, key string) error {
	if err := f.current(); err != nil {
		return persist.Wrap("delete", c, key, err)
	}
	return f.Adapter.Delete(ctx, c, key)
}

type announcer struct {
	mu   sync.Mutex
	seen []persist.Collection
}

func (a *announcer) Announce(_ context.Context, c persist.Collection) {
	a.mu.Lock()
	a.seen = append(a.seen, c)
	a.mu.Unlock()
}

func (a *announcer) collections() []persist.Collection {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]persist.Collection(nil), a.seen...)
}

type fixture struct {
	store    *Store
	backend  *memstore.Store
	adapter  *flakyAdapter
	notifier *announcer
	admin    guard.Session
}

func newFixture(t *testing.T, mutate ...func(*Options)) *fixture {
	t.Helper()
	backend := memstore.New()
	t.Cleanup(func() { _ = backend.Close() })

	f := &fixture{
		backend:  backend,
		adapter:  &flakyAdapter{Adapter: backend},
		notifier: &announcer{},
	}
	opts := Options{
		Formatter: locale.MustNew("sq-AL", "UTC"),
		Notifier:  f.notifier,
		Now:       func() time.Time { return testNow },
	}
	for _, m := range mutate {
		m(&opts)
	}
	f.store = New(f.adapter, opts)
	require.NoError(t, f.store.Load(context.Background()))

	admin, ok := f.store.UserByID(BootstrapUserID)
	require.True(t, ok)
	f.admin = guard.AuthenticatedAs(admin)
	return f
}

func (f *fixture) moderator(t *testing.T) guard.Session {
	t.Helper()
	u, err := f.store.AddUser(context.Background(), f.admin, model.User{
		Name: "Moderatori", Username: "mod", Password: "secret", Role: model.RoleModerator,
	})
	require.NoError(t, err)
	return guard.AuthenticatedAs(u)
}

func newsItem(id, title string, c model.Category) model.NewsItem {
	return model.NewsItem{ID: id, Title: title, Excerpt: "Teksti i lajmit.", Category: c, Author: "Redaksia"}
}

func TestLoadDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Equal(t, model.DefaultTicker(), f.store.Ticker())
	assert.Equal(t, model.DefaultAd(), f.store.Ad())
	assert.Empty(t, f.store.News())

	// Defaults are persisted, not only held in memory.
	_, ok, err := f.backend.LoadOne(ctx, persist.Ticker, model.SingletonKey)
	require.NoError(t, err)
	assert.True(t, ok)
	_, ok, err = f.backend.LoadOne(ctx, persist.Ads, model.SingletonKey)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoadSeedsSampleNewsInOrder(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.SeedNews = true })

	ids := func(items []model.NewsItem) []string {
		out := make([]string, 0, len(items))
		for _, n := range items {
			out = append(out, n.ID)
		}
		return out
	}
	want := []string{"1", "2", "3", "4", "5", "6"}
	assert.Equal(t, want, ids(f.store.News()))

	// A second store over the same backend sees the same order and does
	// not seed again.
	again := New(f.backend, Options{SeedNews: true})
	require.NoError(t, again.Load(context.Background()))
	assert.Equal(t, want, ids(again.News()))
	assert.Len(t, again.Users(), 1)
}

func TestLoadSurfacesPermissionDenied(t *testing.T) {
	backend := memstore.New()
	denied := &deniedAdapter{Adapter: backend}
	s := New(denied, Options{})

	err := s.Load(context.Background())
	require.Error(t, err)
	assert.True(t, persist.IsPermissionDenied(err))
	assert.Empty(t, s.Users(), "a refused read must not look like an empty store")
}

type deniedAdapter struct{ persist.Adapter }

func (d *deniedAdapter) LoadAll(_ context.Context, c persist.Collection) ([]persist.Record, error) {
	return nil, persist.Wrap("load all", c, "", persist.Denied(errors.New("rules reject read")))
}

func TestSaveNewsAddAndUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		_, err := f.store.SaveNews(ctx, f.admin, newsItem(id, "Lajmi "+id, model.CategorySport))
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"c", "b", "a"}, newsIDs(f.store.News()))

	updated := newsItem("b", "Titull i ri", model.CategorySport)
	_, err := f.store.SaveNews(ctx, f.admin, updated)
	require.NoError(t, err)

	news := f.store.News()
	assert.Equal(t, []string{"c", "b", "a"}, newsIDs(news))
	assert.Equal(t, "Titull i ri", news[1].Title)

	rec, ok, err := f.backend.LoadOne(ctx, persist.News, "b")
	require.NoError(t, err)
	require.True(t, ok)
	stored, err := persist.Decode[model.NewsItem](rec)
	require.NoError(t, err)
	assert.Equal(t, news[1], stored)

	assert.Equal(t, persist.News, f.notifier.collections()[0])
}

func TestSaveNewsDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item, err := f.store.SaveNews(ctx, f.admin, model.NewsItem{
		Title:    "<b>Lajm</b> i ri",
		Excerpt:  "Përmbajtja <script>alert(1)</script>",
		Category: model.CategoryKomuna,
		Image:    "javascript:alert(1)",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "Lajm i ri", item.Title)
	assert.Equal(t, "Përmbajtja", item.Excerpt)
	assert.Equal(t, "Sapo u publikua", item.Date)
	assert.Equal(t, DefaultAuthor, item.Author)
	assert.Empty(t, item.Image)

	item.Date = ""
	edited, err := f.store.SaveNews(ctx, f.admin, item)
	require.NoError(t, err)
	assert.Equal(t, "Përditësuar: 15 tetor, 14:30", edited.Date)
}

func TestSaveNewsValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.SaveNews(context.Background(), f.admin, model.NewsItem{ID: "x", Category: "Moda"})
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("title"))
	assert.True(t, verr.Has("category"))

	_, ok, _ := f.backend.LoadOne(context.Background(), persist.News, "x")
	assert.False(t, ok, "invalid items must never reach the adapter")
}

func TestFailedWriteLeavesSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.store.SaveNews(ctx, f.admin, newsItem("n1", "Origjinali", model.CategorySport))
	require.NoError(t, err)

	f.adapter.fail(errors.New("network down"))

	_, err = f.store.SaveNews(ctx, f.admin, newsItem("n1", "Ndryshuar", model.CategorySport))
	require.Error(t, err)
	assert.False(t, persist.IsPermissionDenied(err))
	n, _ := f.store.NewsByID("n1")
	assert.Equal(t, "Origjinali", n.Title)

	require.Error(t, f.store.DeleteNews(ctx, f.admin, "n1"))
	_, ok := f.store.NewsByID("n1")
	assert.True(t, ok)

	f.adapter.fail(persist.Denied(errors.New("PERMISSION_DENIED")))
	_, err = f.store.SetTicker(ctx, f.admin, "Lajm i fundit")
	require.Error(t, err)
	assert.True(t, persist.IsPermissionDenied(err))
	assert.Equal(t, model.DefaultTicker(), f.store.Ticker())
}

func TestDeleteNews(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.store.SaveNews(ctx, f.admin, newsItem("n1", "Test", model.CategorySport))
	require.NoError(t, err)

	require.NoError(t, f.store.DeleteNews(ctx, f.admin, "n1"))
	_, ok := f.store.NewsByID("n1")
	assert.False(t, ok)

	records, err := f.backend.LoadAll(ctx, persist.News)
	require.NoError(t, err)
	assert.Empty(t, records)

	// Unknown ids are a no-op, even when the backend is failing.
	f.adapter.fail(errors.New("down"))
	assert.NoError(t, f.store.DeleteNews(ctx, f.admin, "missing"))
}

func TestCapabilitiesAtEntryPoints(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mod := f.moderator(t)
	anon := guard.Anonymous()

	_, err := f.store.SaveNews(ctx, mod, newsItem("m1", "Nga moderatori", model.CategoryDrenica))
	require.NoError(t, err, "moderators may add news")

	tests := []struct {
		name string
		call func(s guard.Session) error
	}{
		{"delete news", func(s guard.Session) error { return f.store.DeleteNews(ctx, s, "m1") }},
		{"set ticker", func(s guard.Session) error { _, err := f.store.SetTicker(ctx, s, "x"); return err }},
		{"set ad", func(s guard.Session) error {
			_, err := f.store.SetAd(ctx, s, model.AdConfig{Title: "x"})
			return err
		}},
		{"add user", func(s guard.Session) error {
			_, err := f.store.AddUser(ctx, s, model.User{Name: "x", Username: "x", Password: "x", Role: model.RoleAdmin})
			return err
		}},
		{"delete user", func(s guard.Session) error { return f.store.DeleteUser(ctx, s, BootstrapUserID) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := f.store.Snapshot()
			assert.ErrorIs(t, tt.call(mod), guard.ErrForbidden)
			assert.ErrorIs(t, tt.call(anon), guard.ErrUnauthenticated)
			assert.Same(t, before, f.store.Snapshot(), "rejected calls must not touch state")
		})
	}

	_, err = f.store.SaveNews(ctx, anon, newsItem("x", "x", model.CategorySport))
	assert.ErrorIs(t, err, guard.ErrUnauthenticated)
}

func TestSetTickerAndAd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tk, err := f.store.SetTicker(ctx, f.admin, "  Lajm i fundit nga Drenica  ")
	require.NoError(t, err)
	assert.Equal(t, "Lajm i fundit nga Drenica", tk.Text)
	assert.Equal(t, tk, f.store.Ticker())

	_, err = f.store.SetTicker(ctx, f.admin, "   ")
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, tk, f.store.Ticker())

	ad, err := f.store.SetAd(ctx, f.admin, model.AdConfig{
		ImageURL: "https://cdn.example.com/banner.jpg",
		LinkURL:  "javascript:void(0)",
		Title:    "Biznesi Juaj",
	})
	require.NoError(t, err)
	assert.Equal(t, model.AdConfig{ImageURL: "https://cdn.example.com/banner.jpg", Title: "Biznesi Juaj"}, ad)
	assert.Equal(t, ad, f.store.Ad())
}

func TestRequests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mod := f.moderator(t)

	_, err := f.store.SubmitRequest(ctx, inquiry.Submission{Name: "Arben"})
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, f.store.Requests())

	req, err := f.store.SubmitRequest(ctx, inquiry.Submission{
		Name: "Arben", Email: "arben@example.com", Phone: "044 123 456", Message: "Dua të reklamoj.",
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, req.Status)
	assert.Equal(t, "15 tetor, 14:30", req.Date)

	_, err = f.store.SetRequestStatus(ctx, mod, req.ID, model.StatusApproved)
	assert.ErrorIs(t, err, guard.ErrForbidden)
	assert.ErrorIs(t, f.store.DeleteRequest(ctx, mod, req.ID), guard.ErrForbidden)
	got, _ := f.store.RequestByID(req.ID)
	assert.Equal(t, model.StatusPending, got.Status)

	_, err = f.store.SetRequestStatus(ctx, f.admin, "missing", model.StatusApproved)
	assert.ErrorIs(t, err, ErrNotFound)

	ignored, err := f.store.SetRequestStatus(ctx, f.admin, req.ID, model.StatusIgnored)
	require.NoError(t, err)
	assert.Equal(t, model.StatusIgnored, ignored.Status)

	_, err = f.store.SetRequestStatus(ctx, f.admin, req.ID, model.StatusApproved)
	assert.ErrorIs(t, err, inquiry.ErrInvalidTransition)

	require.NoError(t, f.store.DeleteRequest(ctx, f.admin, req.ID))
	assert.Empty(t, f.store.Requests())
	assert.NoError(t, f.store.DeleteRequest(ctx, f.admin, req.ID))
}

func TestUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.AddUser(ctx, f.admin, model.User{Name: "Tjetri", Username: "ADMIN", Password: "x", Role: model.RoleModerator})
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	second, err := f.store.AddUser(ctx, f.admin, model.User{Name: "Editor", Username: "editor", Password: "pw", Role: model.RoleAdmin})
	require.NoError(t, err)
	assert.Len(t, f.store.Users(), 2)
	assert.Equal(t, BootstrapUserID, f.store.Users()[0].ID, "users keep insertion order")

	assert.ErrorIs(t, f.store.DeleteUser(ctx, f.admin, BootstrapUserID), ErrSelfDelete)

	secondSession := guard.AuthenticatedAs(second)
	require.NoError(t, f.store.DeleteUser(ctx, secondSession, BootstrapUserID))
	assert.Len(t, f.store.Users(), 1)

	mod, err := f.store.AddUser(ctx, secondSession, model.User{Name: "M", Username: "m", Password: "pw", Role: model.RoleModerator})
	require.NoError(t, err)

	// The only remaining Admin cannot be removed by anyone.
	other := guard.AuthenticatedAs(model.User{ID: "ghost", Username: "ghost", Role: model.RoleAdmin})
	assert.ErrorIs(t, f.store.DeleteUser(ctx, other, second.ID), ErrLastAdmin)
	require.NoError(t, f.store.DeleteUser(ctx, secondSession, mod.ID))
	assert.NoError(t, f.store.DeleteUser(ctx, secondSession, "missing"))
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, name := range []string{"Admin", "admin", "ADMIN", " admin "} {
		u, err := f.store.Authenticate(ctx, name, "Dd1.1")
		require.NoError(t, err, name)
		assert.Equal(t, model.RoleAdmin, u.Role)
	}

	for _, tc := range [][2]string{{"Admin", "dd1.1"}, {"nobody", "Dd1.1"}, {"", ""}} {
		_, err := f.store.Authenticate(ctx, tc[0], tc[1])
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	}
}

func TestAuthenticateUpgradesToArgon2(t *testing.T) {
	backend := memstore.New()
	ctx := context.Background()

	// Written by a deployment using plaintext credentials.
	plain := New(backend, Options{})
	require.NoError(t, plain.Load(ctx))
	assert.Equal(t, "Dd1.1", plain.Users()[0].Password)

	hashed := New(backend, Options{Verifier: auth.Argon2{}})
	require.NoError(t, hashed.Load(ctx))
	_, err := hashed.Authenticate(ctx, "admin", "Dd1.1")
	require.NoError(t, err)

	u, _ := hashed.UserByID(BootstrapUserID)
	assert.True(t, auth.IsArgon2Hash(u.Password))

	_, err = hashed.Authenticate(ctx, "admin", "Dd1.1")
	assert.NoError(t, err)
	_, err = hashed.Authenticate(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestSnapshotIsImmutable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.store.SaveNews(ctx, f.admin, newsItem("a", "A", model.CategorySport))
	require.NoError(t, err)

	before := f.store.Snapshot()
	_, err = f.store.SaveNews(ctx, f.admin, newsItem("a", "A2", model.CategorySport))
	require.NoError(t, err)

	assert.Equal(t, "A", before.News[0].Title, "old snapshots are never modified")
	assert.Equal(t, "A2", f.store.Snapshot().News[0].Title)

	copyOfNews := f.store.News()
	copyOfNews[0].Title = "changed"
	n, _ := f.store.NewsByID("a")
	assert.Equal(t, "A2", n.Title)
}

func TestWatchAppliesExternalWrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	stop, err := f.store.Watch(ctx, f.backend)
	require.NoError(t, err)

	// Another instance writes straight to the shared backend.
	other := New(f.backend, Options{})
	require.NoError(t, other.Load(ctx))
	admin, _ := other.UserByID(BootstrapUserID)
	_, err = other.SaveNews(ctx, guard.AuthenticatedAs(admin), newsItem("remote", "Nga larg", model.CategoryWorld))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, ok := f.store.NewsByID("remote")
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	stop()
	stop()

	_, err = other.SetTicker(ctx, guard.AuthenticatedAs(admin), "Pas ndalimit")
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, model.DefaultTicker(), f.store.Ticker(), "notifications after stop are dropped")
}

func newsIDs(items []model.NewsItem) []string {
	out := make([]string, 0, len(items))
	for _, n := range items {
		out = append(out, n.ID)
	}
	return out
}

// captureSubscriber hands notifications to the test instead of a backend.
type captureSubscriber struct {
	mu  sync.Mutex
	fns map[persist.Collection]func([]persist.Record)
}

func (c *captureSubscriber) Subscribe(_ context.Context, coll persist.Collection, fn func([]persist.Record)) (persist.Unsubscribe, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fns == nil {
		c.fns = make(map[persist.Collection]func([]persist.Record))
	}
	c.fns[coll] = fn
	return func() {}, nil
}

func (c *captureSubscriber) deliver(coll persist.Collection, records []persist.Record) {
	c.mu.Lock()
	fn := c.fns[coll]
	c.mu.Unlock()
	fn(records)
}

func TestLateNotificationKeepsConfirmedWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sub := &captureSubscriber{}
	stop, err := f.store.Watch(ctx, sub)
	require.NoError(t, err)
	defer stop()

	// Contents read before the write, delivered after it.
	stale, err := f.backend.LoadAll(ctx, persist.News)
	require.NoError(t, err)
	_, err = f.store.SaveNews(ctx, f.admin, newsItem("n1", "Lajm i ri", model.CategorySport))
	require.NoError(t, err)

	sub.deliver(persist.News, stale)

	_, stored, err := f.backend.LoadOne(ctx, persist.News, "n1")
	require.NoError(t, err)
	require.True(t, stored)
	_, ok := f.store.NewsByID("n1")
	assert.True(t, ok, "confirmed write dropped by a late notification")
}

func TestNotificationKeepsSnapshotWhenReadFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.store.SaveNews(ctx, f.admin, newsItem("n1", "Lajm", model.CategorySport))
	require.NoError(t, err)

	denied := New(&deniedAdapter{Adapter: f.backend}, Options{})
	denied.mu.Lock()
	denied.update(func(next *Snapshot) { *next = *f.store.Snapshot() })
	denied.mu.Unlock()

	sub := &captureSubscriber{}
	stop, err := denied.Watch(ctx, sub)
	require.NoError(t, err)
	defer stop()

	sub.deliver(persist.News, nil)
	assert.Equal(t, []string{"n1"}, newsIDs(denied.News()))
}
