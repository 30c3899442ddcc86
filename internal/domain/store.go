// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package domain holds the portal's state: news, ticker, ad banner,
// contact requests and users. The Store is the only component that
// mutates them, and only after the backing store has confirmed the write.
package domain

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/olegiv/newsdesk-go/internal/auth"
	"github.com/olegiv/newsdesk-go/internal/guard"
	"github.com/olegiv/newsdesk-go/internal/inquiry"
	"github.com/olegiv/newsdesk-go/internal/locale"
	"github.com/olegiv/newsdesk-go/internal/metrics"
	"github.com/olegiv/newsdesk-go/internal/model"
	"github.com/olegiv/newsdesk-go/internal/persist"
	"github.com/olegiv/newsdesk-go/internal/render"
)

var (
	// ErrNotFound is returned when an update targets an unknown id.
	ErrNotFound = errors.New("not found")

	// ErrSelfDelete is returned when a session tries to delete its own account.
	ErrSelfDelete = errors.New("cannot delete the signed-in account")

	// ErrLastAdmin is returned when deleting a user would leave no Admin.
	ErrLastAdmin = errors.New("cannot delete the last admin")

	// ErrDuplicateUsername is returned when a username is already taken,
	// compared case-insensitively.
	ErrDuplicateUsername = errors.New("username already exists")
)

// DefaultAuthor is used for news items submitted without an author.
const DefaultAuthor = "Redaksia"

// DefaultWriteTimeout bounds one backing store write.
const DefaultWriteTimeout = 15 * time.Second

// Snapshot is an immutable view of every collection. Slices must not be
// modified by readers.
type Snapshot struct {
	News     []model.NewsItem
	Ticker   model.Ticker
	Ad       model.AdConfig
	Requests []model.ContactRequest
	Users    []model.User
}

// Notifier is told about every confirmed write, e.g. to tell other
// instances to refresh.
type Notifier interface {
	Announce(ctx context.Context, c persist.Collection)
}

// Bootstrap describes the Admin account created when no user exists.
type Bootstrap struct {
	Username string
	Name     string
	Password string
}

// Options configures a Store. Zero values get sensible defaults.
type Options struct {
	Verifier  auth.Verifier
	Formatter *locale.Formatter
	Renderer  *render.Renderer
	Bootstrap Bootstrap
	SeedNews  bool
	Notifier  Notifier
	Logger    *slog.Logger
	Now       func() time.Time

	// WriteTimeout bounds each adapter write. Writes are detached from the
	// caller's context, so a disconnected client cannot abort them.
	WriteTimeout time.Duration
}

// Store owns the portal collections.
type Store struct {
	news     *persist.Typed[model.NewsItem]
	ticker   *persist.Typed[model.Ticker]
	ads      *persist.Typed[model.AdConfig]
	requests *persist.Typed[model.ContactRequest]
	users    *persist.Typed[model.User]

	verifier  auth.Verifier
	fmt       *locale.Formatter
	render    *render.Renderer
	bootstrap Bootstrap
	seedNews  bool
	notifier  Notifier
	logger    *slog.Logger
	now       func() time.Time
	writeTTL  time.Duration

	// mu serializes mutations; readers use snap without locking.
	mu   sync.Mutex
	snap atomic.Pointer[Snapshot]
}

// New creates a Store over adapter a. The snapshot starts with the default
// ticker and ad and no documents; call Load to read the backing store.
func New(a persist.Adapter, opts Options) *Store {
	s := &Store{
		news:      persist.NewTyped[model.NewsItem](a, persist.News),
		ticker:    persist.NewTyped[model.Ticker](a, persist.Ticker),
		ads:       persist.NewTyped[model.AdConfig](a, persist.Ads),
		requests:  persist.NewTyped[model.ContactRequest](a, persist.Requests),
		users:     persist.NewTyped[model.User](a, persist.Users),
		verifier:  opts.Verifier,
		fmt:       opts.Formatter,
		render:    opts.Renderer,
		bootstrap: opts.Bootstrap,
		seedNews:  opts.SeedNews,
		notifier:  opts.Notifier,
		logger:    opts.Logger,
		now:       opts.Now,
		writeTTL:  opts.WriteTimeout,
	}
	if s.verifier == nil {
		s.verifier = auth.Plain{}
	}
	if s.fmt == nil {
		s.fmt = locale.MustNew(locale.DefaultTag, "UTC")
	}
	if s.render == nil {
		s.render = render.New()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.writeTTL <= 0 {
		s.writeTTL = DefaultWriteTimeout
	}
	if s.bootstrap.Username == "" {
		s.bootstrap.Username = "Admin"
	}
	if s.bootstrap.Name == "" {
		s.bootstrap.Name = "Administratori"
	}
	if s.bootstrap.Password == "" {
		s.bootstrap.Password = "Dd1.1"
	}

	s.snap.Store(&Snapshot{Ticker: model.DefaultTicker(), Ad: model.DefaultAd()})
	return s
}

// Snapshot returns the current state. It is never nil.
func (s *Store) Snapshot() *Snapshot {
	return s.snap.Load()
}

// News returns a copy of the news collection, newest first.
func (s *Store) News() []model.NewsItem {
	return slices.Clone(s.snap.Load().News)
}

// NewsByID looks up one news item.
func (s *Store) NewsByID(id string) (model.NewsItem, bool) {
	for _, n := range s.snap.Load().News {
		if n.ID == id {
			return n, true
		}
	}
	return model.NewsItem{}, false
}

// Ticker returns the banner text.
func (s *Store) Ticker() model.Ticker {
	return s.snap.Load().Ticker
}

// Ad returns the ad banner configuration.
func (s *Store) Ad() model.AdConfig {
	return s.snap.Load().Ad
}

// Requests returns a copy of the contact requests, newest first.
func (s *Store) Requests() []model.ContactRequest {
	return slices.Clone(s.snap.Load().Requests)
}

// RequestByID looks up one contact request.
func (s *Store) RequestByID(id string) (model.ContactRequest, bool) {
	for _, r := range s.snap.Load().Requests {
		if r.ID == id {
			return r, true
		}
	}
	return model.ContactRequest{}, false
}

// Users returns a copy of the user collection in insertion order.
func (s *Store) Users() []model.User {
	return slices.Clone(s.snap.Load().Users)
}

// UserByID looks up one user.
func (s *Store) UserByID(id string) (model.User, bool) {
	for _, u := range s.snap.Load().Users {
		if u.ID == id {
			return u, true
		}
	}
	return model.User{}, false
}

// Formatter returns the date formatter used for labels.
func (s *Store) Formatter() *locale.Formatter {
	return s.fmt
}

// update installs a modified copy of the snapshot. Must be called with
// s.mu held, or from Load/Watch callbacks that take it.
func (s *Store) update(fn func(next *Snapshot)) {
	next := *s.snap.Load()
	fn(&next)
	s.snap.Store(&next)
	s.recordSizes(&next)
}

func (s *Store) recordSizes(snap *Snapshot) {
	metrics.CollectionSize.WithLabelValues(string(persist.News)).Set(float64(len(snap.News)))
	metrics.CollectionSize.WithLabelValues(string(persist.Requests)).Set(float64(len(snap.Requests)))
	metrics.CollectionSize.WithLabelValues(string(persist.Users)).Set(float64(len(snap.Users)))
}

// detach returns a context for a mutation that keeps ctx's values but not
// its cancellation, bounded by the store's write timeout.
func (s *Store) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.writeTTL)
}

// announce tells the notifier about a confirmed write.
func (s *Store) announce(ctx context.Context, c persist.Collection) {
	if s.notifier != nil {
		s.notifier.Announce(context.WithoutCancel(ctx), c)
	}
}

// finish records the outcome of a mutation and logs failures.
func (s *Store) finish(op string, actor guard.Session, err error, attrs ...any) error {
	outcome := classify(err)
	metrics.MutationsTotal.WithLabelValues(op, outcome).Inc()

	username := ""
	if u, ok := actor.User(); ok {
		username = u.Username
	}
	args := append([]any{"op", op, "actor", username}, attrs...)

	switch outcome {
	case metrics.OutcomeOK:
		s.logger.Info("mutation applied", args...)
	case metrics.OutcomeFailed, metrics.OutcomeUnavailable:
		var perr *persist.Error
		collection := ""
		if errors.As(err, &perr) {
			collection = string(perr.Collection)
		}
		metrics.PersistenceErrorsTotal.WithLabelValues(collection, outcome).Inc()
		s.logger.Error("mutation failed", append(args, "error", err)...)
	default:
		s.logger.Warn("mutation rejected", append(args, "error", err)...)
	}
	return err
}

func classify(err error) string {
	var verr *model.ValidationError
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.As(err, &verr),
		errors.Is(err, ErrDuplicateUsername),
		errors.Is(err, ErrNotFound),
		errors.Is(err, inquiry.ErrInvalidTransition):
		return metrics.OutcomeInvalid
	case errors.Is(err, guard.ErrUnauthenticated),
		errors.Is(err, guard.ErrForbidden),
		errors.Is(err, ErrSelfDelete),
		errors.Is(err, ErrLastAdmin):
		return metrics.OutcomeDenied
	case persist.IsPermissionDenied(err):
		return metrics.OutcomeUnavailable
	}
	return metrics.OutcomeFailed
}

// replaceOrPrepend returns a new slice with item replacing the element
// matching its key, or prepended when none matches. The bool reports
// whether an element was replaced.
func replaceOrPrepend[T persist.Document](list []T, item T) ([]T, bool) {
	i := slices.IndexFunc(list, func(x T) bool { return x.Key() == item.Key() })
	if i < 0 {
		out := make([]T, 0, len(list)+1)
		out = append(out, item)
		return append(out, list...), false
	}
	out := slices.Clone(list)
	out[i] = item
	return out, true
}

// without returns a new slice lacking the element with key.
func without[T persist.Document](list []T, key string) []T {
	return slices.DeleteFunc(slices.Clone(list), func(x T) bool { return x.Key() == key })
}

func indexOf[T persist.Document](list []T, key string) int {
	return slices.IndexFunc(list, func(x T) bool { return x.Key() == key })
}
