// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package domain

import (
	"context"
	"fmt"

	"github.com/olegiv/newsdesk-go/internal/model"
	"github.com/olegiv/newsdesk-go/internal/persist"
)

// BootstrapUserID is the id of the Admin created on first start.
const BootstrapUserID = "1"

// Load reads every collection into a fresh snapshot and fills in what a
// first start needs: the bootstrap Admin, the default ticker and ad, and
// optionally the sample articles. A read failure, including a permission
// error, aborts the load and leaves the snapshot untouched.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	news, err := s.news.All(ctx)
	if err != nil {
		return fmt.Errorf("loading news: %w", err)
	}
	requests, err := s.requests.All(ctx)
	if err != nil {
		return fmt.Errorf("loading requests: %w", err)
	}
	users, err := s.users.All(ctx)
	if err != nil {
		return fmt.Errorf("loading users: %w", err)
	}
	ticker, haveTicker, err := s.ticker.One(ctx, model.SingletonKey)
	if err != nil {
		return fmt.Errorf("loading ticker: %w", err)
	}
	ad, haveAd, err := s.ads.One(ctx, model.SingletonKey)
	if err != nil {
		return fmt.Errorf("loading ad: %w", err)
	}

	if len(users) == 0 {
		admin, err := s.bootstrapAdmin(ctx)
		if err != nil {
			return err
		}
		users = []model.User{admin}
	}
	if !haveTicker {
		ticker = model.DefaultTicker()
		if err := s.ticker.Put(ctx, ticker); err != nil {
			return fmt.Errorf("storing default ticker: %w", err)
		}
	}
	if !haveAd {
		ad = model.DefaultAd()
		if err := s.ads.Put(ctx, ad); err != nil {
			return fmt.Errorf("storing default ad: %w", err)
		}
	}
	if len(news) == 0 && s.seedNews {
		seeded, err := s.seedSampleNews(ctx)
		if err != nil {
			return err
		}
		news = seeded
	}

	s.update(func(next *Snapshot) {
		*next = Snapshot{News: news, Ticker: ticker, Ad: ad, Requests: requests, Users: users}
	})
	s.logger.Info("domain store loaded",
		"news", len(news), "requests", len(requests), "users", len(users))
	return nil
}

func (s *Store) bootstrapAdmin(ctx context.Context) (model.User, error) {
	stored, err := s.verifier.Hash(s.bootstrap.Password)
	if err != nil {
		return model.User{}, fmt.Errorf("hashing bootstrap password: %w", err)
	}
	admin := model.User{
		ID:       BootstrapUserID,
		Name:     s.bootstrap.Name,
		Username: s.bootstrap.Username,
		Password: stored,
		Role:     model.RoleAdmin,
	}
	if err := s.users.Put(ctx, admin); err != nil {
		return model.User{}, fmt.Errorf("storing bootstrap admin: %w", err)
	}
	s.logger.Info("bootstrap admin created", "username", admin.Username)
	return admin, nil
}

// seedSampleNews writes the sample articles oldest first so that backends
// ordering by insertion return them in display order.
func (s *Store) seedSampleNews(ctx context.Context) ([]model.NewsItem, error) {
	items := SampleNews()
	for i := len(items) - 1; i >= 0; i-- {
		if err := s.news.Put(ctx, items[i]); err != nil {
			return nil, fmt.Errorf("seeding news: %w", err)
		}
	}
	s.logger.Info("sample news seeded", "count", len(items))
	return items, nil
}

// reload re-reads collection c and installs it. The read runs under s.mu,
// so a write this store has confirmed is never replaced by contents read
// before it. A failed read keeps the current snapshot.
func (s *Store) reload(ctx context.Context, c persist.Collection) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	switch c {
	case persist.News:
		err = reloadAll(ctx, s.news, func(items []model.NewsItem) {
			s.update(func(next *Snapshot) { next.News = items })
		})
	case persist.Requests:
		err = reloadAll(ctx, s.requests, func(items []model.ContactRequest) {
			s.update(func(next *Snapshot) { next.Requests = items })
		})
	case persist.Users:
		err = reloadAll(ctx, s.users, func(items []model.User) {
			// The bootstrap account is only created by Load.
			if len(items) > 0 {
				s.update(func(next *Snapshot) { next.Users = items })
			}
		})
	case persist.Ticker:
		err = reloadOne(ctx, s.ticker, func(t model.Ticker) {
			s.update(func(next *Snapshot) { next.Ticker = t })
		})
	case persist.Ads:
		err = reloadOne(ctx, s.ads, func(a model.AdConfig) {
			s.update(func(next *Snapshot) { next.Ad = a })
		})
	}
	if err != nil {
		s.logger.Warn("refresh failed; keeping current snapshot", "collection", c, "error", err)
	}
}

func reloadAll[T persist.Document](ctx context.Context, t *persist.Typed[T], install func([]T)) error {
	items, err := t.All(ctx)
	if err != nil {
		return fmt.Errorf("reloading %s: %w", t.Collection(), err)
	}
	install(items)
	return nil
}

func reloadOne[T persist.Document](ctx context.Context, t *persist.Typed[T], install func(T)) error {
	doc, ok, err := t.One(ctx, model.SingletonKey)
	if err != nil {
		return fmt.Errorf("reloading %s: %w", t.Collection(), err)
	}
	if ok {
		install(doc)
	}
	return nil
}
