// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package domain

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/olegiv/newsdesk-go/internal/guard"
	"github.com/olegiv/newsdesk-go/internal/model"
	"github.com/olegiv/newsdesk-go/internal/persist"
)

// SaveNews adds or updates a news item. An item whose id is already
// present replaces it in place; any other item is prepended as the newest.
// A missing id is generated and a missing date label is filled in.
func (s *Store) SaveNews(ctx context.Context, actor guard.Session, item model.NewsItem) (model.NewsItem, error) {
	ctx, cancel := s.detach(ctx)
	defer cancel()

	if err := actor.Require(guard.CapEditNews); err != nil {
		return model.NewsItem{}, s.finish("news.save", actor, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.prepareNews(item)
	if err != nil {
		return model.NewsItem{}, s.finish("news.save", actor, err)
	}
	if err := item.Validate(); err != nil {
		return model.NewsItem{}, s.finish("news.save", actor, err)
	}
	if err := s.news.Put(ctx, item); err != nil {
		return model.NewsItem{}, s.finish("news.save", actor, err, "id", item.ID)
	}

	var replaced bool
	s.update(func(next *Snapshot) {
		next.News, replaced = replaceOrPrepend(next.News, item)
	})
	s.announce(ctx, persist.News)
	return item, s.finish("news.save", actor, nil, "id", item.ID, "updated", replaced)
}

// prepareNews cleans submitted fields and fills defaults. Must be called
// with s.mu held.
func (s *Store) prepareNews(item model.NewsItem) (model.NewsItem, error) {
	item.Title = s.render.Text(item.Title)
	item.Excerpt = s.render.Text(item.Excerpt)
	item.Author = s.render.Text(item.Author)
	item.Date = s.render.Text(item.Date)
	item.Image = s.render.URL(item.Image)

	if item.Author == "" {
		item.Author = DefaultAuthor
	}

	existing := indexOf(s.snap.Load().News, item.ID)
	if item.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return item, fmt.Errorf("generating news id: %w", err)
		}
		item.ID = id.String()
	}
	if item.Date == "" {
		if existing >= 0 {
			item.Date = s.fmt.Updated(s.now())
		} else {
			item.Date = s.fmt.JustPublished()
		}
	}
	return item, nil
}

// DeleteNews removes a news item. Deleting an unknown id does nothing.
func (s *Store) DeleteNews(ctx context.Context, actor guard.Session, id string) error {
	ctx, cancel := s.detach(ctx)
	defer cancel()

	if err := actor.Require(guard.CapDeleteNews); err != nil {
		return s.finish("news.delete", actor, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if indexOf(s.snap.Load().News, id) < 0 {
		return nil
	}
	if err := s.news.Remove(ctx, id); err != nil {
		return s.finish("news.delete", actor, err, "id", id)
	}
	s.update(func(next *Snapshot) {
		next.News = without(next.News, id)
	})
	s.announce(ctx, persist.News)
	return s.finish("news.delete", actor, nil, "id", id)
}

// SetTicker replaces the banner text.
func (s *Store) SetTicker(ctx context.Context, actor guard.Session, text string) (model.Ticker, error) {
	ctx, cancel := s.detach(ctx)
	defer cancel()

	if err := actor.Require(guard.CapManageTicker); err != nil {
		return model.Ticker{}, s.finish("ticker.set", actor, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := model.Ticker{Text: s.render.Text(text)}
	if err := s.ticker.Put(ctx, t); err != nil {
		return model.Ticker{}, s.finish("ticker.set", actor, err)
	}
	s.update(func(next *Snapshot) { next.Ticker = t })
	s.announce(ctx, persist.Ticker)
	return t, s.finish("ticker.set", actor, nil)
}

// SetAd replaces the ad banner configuration. URLs other than http(s) are
// dropped.
func (s *Store) SetAd(ctx context.Context, actor guard.Session, ad model.AdConfig) (model.AdConfig, error) {
	ctx, cancel := s.detach(ctx)
	defer cancel()

	if err := actor.Require(guard.CapManageAds); err != nil {
		return model.AdConfig{}, s.finish("ad.set", actor, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ad = model.AdConfig{
		ImageURL: s.render.URL(ad.ImageURL),
		LinkURL:  s.render.URL(ad.LinkURL),
		Title:    s.render.Text(ad.Title),
	}
	if err := s.ads.Put(ctx, ad); err != nil {
		return model.AdConfig{}, s.finish("ad.set", actor, err)
	}
	s.update(func(next *Snapshot) { next.Ad = ad })
	s.announce(ctx, persist.Ads)
	return ad, s.finish("ad.set", actor, nil)
}
