package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adrijadey5/Smart-Home-Inventory/models"
)

func nextSnapshot(t *testing.T, ch <-chan []models.InventoryItem) []models.InventoryItem {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(time.Second):
		t.Fatal("expected a snapshot, got none")
		return nil
	}
}

func TestSubscribe_DeliversInitialSnapshot(t *testing.T) {
	repo := newMockRepo()
	repo.seed(models.InventoryItem{ID: "a", Name: "Milk"})
	repo.seed(models.InventoryItem{ID: "b", Name: "Bread"})
	svc, _, _ := newTestService(repo)

	snaps := make(chan []models.InventoryItem, 8)
	sub, err := svc.Subscribe(context.Background(), testUser, func(items []models.InventoryItem) {
		snaps <- items
	}, nil)
	require.NoError(t, err)
	defer sub.Close()

	first := nextSnapshot(t, snaps)
	require.Len(t, first, 2)
	assert.Equal(t, "Bread", first[0].Name)
	assert.Equal(t, "Milk", first[1].Name)
}

func TestSubscribe_RedeliversOnChange(t *testing.T) {
	repo := newMockRepo()
	repo.seed(models.InventoryItem{ID: "a", Name: "Milk"})
	svc, _, _ := newTestService(repo)

	snaps := make(chan []models.InventoryItem, 8)
	sub, err := svc.Subscribe(context.Background(), testUser, func(items []models.InventoryItem) {
		snaps <- items
	}, nil)
	require.NoError(t, err)
	defer sub.Close()

	require.Len(t, nextSnapshot(t, snaps), 1)

	repo.seed(models.InventoryItem{ID: "b", Name: "Eggs"})
	repo.feed.changes <- struct{}{}

	second := nextSnapshot(t, snaps)
	require.Len(t, second, 2, "each delivery replaces the previous snapshot wholesale")
	assert.Equal(t, "Eggs", second[0].Name)
}

func TestSubscribe_RedeliveryOfUnchangedSnapshot(t *testing.T) {
	repo := newMockRepo()
	repo.seed(models.InventoryItem{ID: "a", Name: "Milk"})
	svc, _, _ := newTestService(repo)

	snaps := make(chan []models.InventoryItem, 8)
	sub, err := svc.Subscribe(context.Background(), testUser, func(items []models.InventoryItem) {
		snaps <- items
	}, nil)
	require.NoError(t, err)
	defer sub.Close()

	first := nextSnapshot(t, snaps)

	// A notification with no underlying change re-delivers the same list.
	repo.feed.changes <- struct{}{}
	second := nextSnapshot(t, snaps)
	assert.Equal(t, first, second)
}

func TestSubscribe_CloseStopsCallbacks(t *testing.T) {
	repo := newMockRepo()
	svc, _, _ := newTestService(repo)

	snaps := make(chan []models.InventoryItem, 8)
	sub, err := svc.Subscribe(context.Background(), testUser, func(items []models.InventoryItem) {
		snaps <- items
	}, nil)
	require.NoError(t, err)

	nextSnapshot(t, snaps)
	sub.Close()

	select {
	case <-snaps:
		t.Fatal("snapshot delivered after Close")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribe_FeedErrorReported(t *testing.T) {
	repo := newMockRepo()
	repo.feed.err = errors.New("stream torn down")
	svc, _, _ := newTestService(repo)

	snaps := make(chan []models.InventoryItem, 8)
	errs := make(chan error, 1)
	sub, err := svc.Subscribe(context.Background(), testUser, func(items []models.InventoryItem) {
		snaps <- items
	}, func(err error) {
		errs <- err
	})
	require.NoError(t, err)
	defer sub.Close()

	nextSnapshot(t, snaps)
	close(repo.feed.changes) // feed terminates

	select {
	case err := <-errs:
		assert.ErrorContains(t, err, "stream torn down")
	case <-time.After(time.Second):
		t.Fatal("feed error was not reported")
	}
}
