package services

import (
	"context"

	"github.com/adrijadey5/Smart-Home-Inventory/models"
)

// Snapshot is one published view of a user's inventory. IsLoaded
// distinguishes "subscription pending" from "loaded, empty".
type Snapshot struct {
	Items    []models.InventoryItem `json:"items"`
	IsLoaded bool                   `json:"isLoaded"`
}

// Subscription is a handle to a live inventory feed. Close stops the feed
// and waits for the delivery goroutine to finish; no callbacks run after
// Close returns.
type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Close terminates the subscription.
func (s *Subscription) Close() {
	s.cancel()
	<-s.done
}

// Subscribe opens a live feed over the user's items. The current sorted
// list is delivered immediately, then re-loaded and re-delivered after every
// remote change notification. Each delivery replaces the previous snapshot
// wholesale; re-delivery of an unchanged snapshot is harmless. onError, if
// non-nil, receives feed or load failures; the subscription ends after an
// error.
func (s *InventoryService) Subscribe(ctx context.Context, userID string, onSnapshot func([]models.InventoryItem), onError func(error)) (*Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)

	feed, err := s.repo.Watch(ctx, userID)
	if err != nil {
		cancel()
		return nil, err
	}

	sub := &Subscription{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(sub.done)
		defer feed.Close(context.Background())

		publish := func() bool {
			items, err := s.List(ctx, userID)
			if err != nil {
				if ctx.Err() == nil && onError != nil {
					onError(err)
				}
				return false
			}
			onSnapshot(items)
			return true
		}

		if !publish() {
			return
		}
		for feed.Next(ctx) {
			if !publish() {
				return
			}
		}
		if err := feed.Err(); err != nil && ctx.Err() == nil && onError != nil {
			onError(err)
		}
	}()

	return sub, nil
}
