// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package memstore

import (
	"context"
	"sync"

	"github.com/olegiv/newsdesk-go/internal/persist"
)

// subscription delivers the latest collection contents on its own goroutine.
// Signals coalesce: a slow consumer sees the newest state, not every step.
type subscription struct {
	signal chan struct{}
	done   chan struct{}
	once   sync.Once
}

func (sub *subscription) notify() {
	select {
	case sub.signal <- struct{}{}:
	default:
	}
}

func (sub *subscription) stop() {
	sub.once.Do(func() { close(sub.done) })
}

// Subscribe calls fn with the collection contents after every change, and
// once immediately with the current contents.
func (s *Store) Subscribe(ctx context.Context, c persist.Collection, fn func([]persist.Record)) (persist.Unsubscribe, error) {
	if err := persist.CheckCollection("subscribe", c); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, persist.Wrap("subscribe", c, "", persist.ErrClosed)
	}
	sub := &subscription{
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	id := s.nextSub
	s.nextSub++
	if s.subs[c] == nil {
		s.subs[c] = make(map[int]*subscription)
	}
	s.subs[c][id] = sub
	s.mu.Unlock()

	sub.notify()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-sub.done:
				return
			case <-sub.signal:
			}
			s.mu.RLock()
			records := s.records(c)
			s.mu.RUnlock()

			select {
			case <-sub.done:
				return
			default:
			}
			fn(records)
		}
	}()

	return func() {
		s.mu.Lock()
		delete(s.subs[c], id)
		s.mu.Unlock()
		sub.stop()
	}, nil
}

// notifyLocked must be called with s.mu held for writing.
func (s *Store) notifyLocked(c persist.Collection) {
	for _, sub := range s.subs[c] {
		sub.notify()
	}
}
