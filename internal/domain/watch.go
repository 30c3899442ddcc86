// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package domain

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/olegiv/newsdesk-go/internal/persist"
)

// Watch keeps the snapshot in step with writes made elsewhere. src may be
// a backend with native change notification or a polling/broadcast
// implementation; the store does not know which. The returned function
// tears down every subscription; notifications arriving after it are
// dropped.
func (s *Store) Watch(ctx context.Context, src persist.Subscriber) (stop func(), err error) {
	var stopped atomic.Bool
	var unsubs []persist.Unsubscribe

	stop = func() {
		if stopped.Swap(true) {
			return
		}
		for _, u := range unsubs {
			u()
		}
	}

	for _, c := range persist.Collections() {
		// A notification only says that c changed; reload reads it again.
		u, err := src.Subscribe(ctx, c, func([]persist.Record) {
			if stopped.Load() {
				return
			}
			s.reload(ctx, c)
		})
		if err != nil {
			stop()
			return nil, fmt.Errorf("watching %s: %w", c, err)
		}
		unsubs = append(unsubs, u)
	}
	return stop, nil
}
