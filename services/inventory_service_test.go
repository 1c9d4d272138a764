package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/adrijadey5/Smart-Home-Inventory/events"
	"github.com/adrijadey5/Smart-Home-Inventory/models"
	"github.com/adrijadey5/Smart-Home-Inventory/repository"
	"github.com/adrijadey5/Smart-Home-Inventory/services"
)

// --- Mock repository ---

type fakeFeed struct {
	changes chan struct{}
	err     error
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{changes: make(chan struct{}, 8)}
}

func (f *fakeFeed) Next(ctx context.Context) bool {
	select {
	case _, ok := <-f.changes:
		return ok
	case <-ctx.Done():
		return false
	}
}

func (f *fakeFeed) Err() error                    { return f.err }
func (f *fakeFeed) Close(_ context.Context) error { return nil }

type mockInventoryRepo struct {
	mu          sync.Mutex
	items       map[string]models.InventoryItem
	history     []models.ItemHistory
	nextID      int
	failErr     error // when set, every batch write fails
	updateCalls int
	feed        *fakeFeed
}

func newMockRepo() *mockInventoryRepo {
	return &mockInventoryRepo{
		items: make(map[string]models.InventoryItem),
		feed:  newFakeFeed(),
	}
}

func (m *mockInventoryRepo) NextID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	return fmt.Sprintf("item-%d", m.nextID)
}

func (m *mockInventoryRepo) List(_ context.Context, _ string) ([]models.InventoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.InventoryItem, 0, len(m.items))
	for _, it := range m.items {
		out = append(out, *it.Clone())
	}
	return out, nil
}

func (m *mockInventoryRepo) FindByID(_ context.Context, _ string, itemID string) (*models.InventoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[itemID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return it.Clone(), nil
}

func (m *mockInventoryRepo) InsertWithHistory(_ context.Context, _ string, item *models.InventoryItem, h *models.ItemHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.items[item.ID] = *item.Clone()
	m.appendHistory(h)
	return nil
}

func (m *mockInventoryRepo) UpdateWithHistory(_ context.Context, _ string, item *models.InventoryItem, h *models.ItemHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.items[item.ID] = *item.Clone()
	m.updateCalls++
	if h != nil {
		m.appendHistory(h)
	}
	return nil
}

func (m *mockInventoryRepo) DeleteWithHistory(_ context.Context, _ string, itemID string, h *models.ItemHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	delete(m.items, itemID)
	m.appendHistory(h)
	return nil
}

func (m *mockInventoryRepo) History(_ context.Context, _ string, itemID string) ([]models.ItemHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ItemHistory
	for i := len(m.history) - 1; i >= 0; i-- {
		if m.history[i].ItemID == itemID {
			out = append(out, m.history[i])
		}
	}
	return out, nil
}

func (m *mockInventoryRepo) Watch(_ context.Context, _ string) (repository.ChangeFeed, error) {
	return m.feed, nil
}

func (m *mockInventoryRepo) appendHistory(h *models.ItemHistory) {
	entry := *h
	entry.ID = fmt.Sprintf("hist-%d", len(m.history)+1)
	entry.Timestamp = time.Now().UTC()
	m.history = append(m.history, entry)
}

func (m *mockInventoryRepo) historyFor(itemID string) []models.ItemHistory {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ItemHistory
	for _, h := range m.history {
		if h.ItemID == itemID {
			out = append(out, h)
		}
	}
	return out
}

func (m *mockInventoryRepo) seed(item models.InventoryItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = item
}

// --- Recording diagnostic sink ---

type recordingSink struct {
	mu    sync.Mutex
	diags []services.Diagnostic
}

func (r *recordingSink) Emit(d services.Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diags = append(r.diags, d)
}

func (r *recordingSink) all() []services.Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]services.Diagnostic(nil), r.diags...)
}

// --- Helpers ---

const testUser = "user-1"

func newTestService(repo *mockInventoryRepo) (*services.InventoryService, *events.Bus, *recordingSink) {
	logger, _ := zap.NewDevelopment()
	bus := events.NewBus()
	sink := &recordingSink{}
	svc := services.NewInventoryService(repo, bus, sink, nil, logger)
	return svc, bus, sink
}

func intPtr(v int) *int { return &v }

func cyclePtr(c models.RecurringCycle) *models.RecurringCycle { return &c }

func milkInput() *models.ItemInput {
	return &models.ItemInput{
		Name:              "Milk",
		Quantity:          intPtr(1),
		LowStockThreshold: intPtr(2),
	}
}

func nextEvent(t *testing.T, ch <-chan events.Event) events.Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(time.Second):
		t.Fatal("expected an event, got none")
		return events.Event{}
	}
}

func assertNoEvent(t *testing.T, ch <-chan events.Event) {
	t.Helper()
	select {
	case e := <-ch:
		t.Fatalf("unexpected event %q", e.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

// --- Add ---

func TestAdd_Success(t *testing.T) {
	repo := newMockRepo()
	svc, bus, _ := newTestService(repo)
	ch, cancel := bus.Subscribe()
	defer cancel()

	item, err := svc.Add(context.Background(), testUser, milkInput())
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "Milk", item.Name)

	e := nextEvent(t, ch)
	assert.Equal(t, events.ItemAdded, e.Type)
	assert.Equal(t, "Milk", e.ItemName)

	hist := repo.historyFor(item.ID)
	require.Len(t, hist, 1)
	assert.Equal(t, models.ChangeCreated, hist[0].ChangeType)
	assert.Len(t, hist[0].ChangedFields, 7)
	assert.Equal(t, models.Snapshot(item), hist[0].NewData)
}

func TestAdd_RoundTripNormalization(t *testing.T) {
	repo := newMockRepo()
	svc, _, _ := newTestService(repo)

	in := milkInput()
	in.IsRecurring = false
	in.RecurringCycle = cyclePtr(models.CycleDaily) // must be discarded

	item, err := svc.Add(context.Background(), testUser, in)
	require.NoError(t, err)

	stored, err := repo.FindByID(context.Background(), testUser, item.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ExpiryDate, "absent expiry stays nil")
	assert.Nil(t, stored.RecurringCycle, "cycle cleared for non-recurring items")
	assert.Equal(t, item.Name, stored.Name)
	assert.Equal(t, item.Quantity, stored.Quantity)
	assert.Equal(t, item.LowStockThreshold, stored.LowStockThreshold)
}

func TestAdd_ValidationRejected(t *testing.T) {
	repo := newMockRepo()
	svc, bus, sink := newTestService(repo)
	ch, cancel := bus.Subscribe()
	defer cancel()

	in := milkInput()
	in.Name = "other" // no custom name

	_, err := svc.Add(context.Background(), testUser, in)
	var verr *services.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "customName")

	items, _ := repo.List(context.Background(), testUser)
	assert.Empty(t, items, "validation errors never reach the store")
	assert.Empty(t, sink.all())
	assertNoEvent(t, ch)
}

// --- Edit ---

func seededMilk() models.InventoryItem {
	return models.InventoryItem{
		ID:                "item-milk",
		Name:              "Milk",
		Quantity:          1,
		LowStockThreshold: 2,
	}
}

func TestEdit_QuantityOnlyDiff(t *testing.T) {
	repo := newMockRepo()
	repo.seed(seededMilk())
	svc, bus, _ := newTestService(repo)
	ch, cancel := bus.Subscribe()
	defer cancel()

	in := milkInput()
	in.Quantity = intPtr(6)

	item, err := svc.Edit(context.Background(), testUser, "item-milk", in)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, 6, item.Quantity)

	hist := repo.historyFor("item-milk")
	require.Len(t, hist, 1)
	assert.Equal(t, models.ChangeUpdated, hist[0].ChangeType)
	assert.Equal(t, []string{"quantity"}, hist[0].ChangedFields)
	assert.Equal(t, map[string]any{"quantity": 1}, hist[0].OldData)
	assert.Equal(t, map[string]any{"quantity": 6}, hist[0].NewData)

	assert.Equal(t, events.ItemUpdated, nextEvent(t, ch).Type)
}

func TestEdit_NoChangesWritesNoHistory(t *testing.T) {
	repo := newMockRepo()
	repo.seed(seededMilk())
	svc, _, _ := newTestService(repo)

	item, err := svc.Edit(context.Background(), testUser, "item-milk", milkInput())
	require.NoError(t, err)
	require.NotNil(t, item)

	assert.Equal(t, 1, repo.updateCalls, "primary document is still overwritten")
	assert.Empty(t, repo.historyFor("item-milk"), "empty diff writes no history")
}

func TestEdit_UnknownItemIsSilentNoop(t *testing.T) {
	repo := newMockRepo()
	svc, bus, sink := newTestService(repo)
	ch, cancel := bus.Subscribe()
	defer cancel()

	item, err := svc.Edit(context.Background(), testUser, "ghost", milkInput())
	assert.NoError(t, err)
	assert.Nil(t, item)
	assert.Zero(t, repo.updateCalls)
	assert.Empty(t, sink.all())
	assertNoEvent(t, ch)
}

// --- Delete ---

func TestDelete_WritesFullSnapshotHistory(t *testing.T) {
	repo := newMockRepo()
	seeded := seededMilk()
	repo.seed(seeded)
	svc, bus, _ := newTestService(repo)
	ch, cancel := bus.Subscribe()
	defer cancel()

	err := svc.Delete(context.Background(), testUser, "item-milk")
	require.NoError(t, err)

	_, err = repo.FindByID(context.Background(), testUser, "item-milk")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	hist := repo.historyFor("item-milk")
	require.Len(t, hist, 1, "history outlives the item")
	assert.Equal(t, models.ChangeDeleted, hist[0].ChangeType)
	assert.Equal(t, models.Snapshot(&seeded), hist[0].OldData)

	e := nextEvent(t, ch)
	assert.Equal(t, events.ItemDeleted, e.Type)
	assert.Equal(t, "Milk", e.ItemName)
}

func TestDelete_UnknownItemIsSilentNoop(t *testing.T) {
	repo := newMockRepo()
	svc, bus, sink := newTestService(repo)
	ch, cancel := bus.Subscribe()
	defer cancel()

	err := svc.Delete(context.Background(), testUser, "ghost")
	assert.NoError(t, err)
	assert.Empty(t, sink.all())
	assertNoEvent(t, ch)
}

// --- Batch failure ---

func TestAdd_BatchFailure(t *testing.T) {
	repo := newMockRepo()
	repo.failErr = errors.New("permission denied")
	svc, bus, sink := newTestService(repo)
	ch, cancel := bus.Subscribe()
	defer cancel()

	_, err := svc.Add(context.Background(), testUser, milkInput())
	require.Error(t, err)

	items, _ := repo.List(context.Background(), testUser)
	assert.Empty(t, items, "failed batch leaves the store untouched")
	assert.Empty(t, repo.history)

	e := nextEvent(t, ch)
	assert.Equal(t, events.MutationFailed, e.Type)
	assert.NotEmpty(t, e.Reason)
	assertNoEvent(t, ch) // exactly one notification

	diags := sink.all()
	require.Len(t, diags, 1, "exactly one diagnostic per failed batch")
	assert.Equal(t, "create", diags[0].Operation)
	assert.Equal(t, "users/user-1/inventory_items", diags[0].Path)
	assert.NotNil(t, diags[0].Payload)
	assert.ErrorContains(t, diags[0].Err, "permission denied")
}

func TestDelete_BatchFailure(t *testing.T) {
	repo := newMockRepo()
	repo.seed(seededMilk())
	repo.failErr = errors.New("network unreachable")
	svc, bus, sink := newTestService(repo)
	ch, cancel := bus.Subscribe()
	defer cancel()

	err := svc.Delete(context.Background(), testUser, "item-milk")
	require.Error(t, err)

	_, findErr := repo.FindByID(context.Background(), testUser, "item-milk")
	assert.NoError(t, findErr, "item survives a failed delete batch")
	assert.Empty(t, repo.historyFor("item-milk"))

	assert.Equal(t, events.MutationFailed, nextEvent(t, ch).Type)
	require.Len(t, sink.all(), 1)
	assert.Equal(t, "delete", sink.all()[0].Operation)
	assert.Equal(t, "users/user-1/inventory_items/item-milk", sink.all()[0].Path)
}

// --- List ---

func TestList_SortedByName(t *testing.T) {
	repo := newMockRepo()
	repo.seed(models.InventoryItem{ID: "a", Name: "Toothpaste"})
	repo.seed(models.InventoryItem{ID: "b", Name: "Bread"})
	repo.seed(models.InventoryItem{ID: "c", Name: "Milk"})
	svc, _, _ := newTestService(repo)

	items, err := svc.List(context.Background(), testUser)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Bread", items[0].Name)
	assert.Equal(t, "Milk", items[1].Name)
	assert.Equal(t, "Toothpaste", items[2].Name)
}

// --- Alerts through the service ---

func TestAlerts_Membership(t *testing.T) {
	repo := newMockRepo()
	soon := time.Now().UTC().Add(3 * 24 * time.Hour)
	far := time.Now().UTC().Add(10 * 24 * time.Hour)
	repo.seed(models.InventoryItem{ID: "a", Name: "Milk", Quantity: 1, LowStockThreshold: 2, ExpiryDate: &soon})
	repo.seed(models.InventoryItem{ID: "b", Name: "Eggs", Quantity: 12, LowStockThreshold: 6, ExpiryDate: &far})
	svc, _, _ := newTestService(repo)

	summary, err := svc.Alerts(context.Background(), testUser)
	require.NoError(t, err)

	require.Len(t, summary.LowStock, 1)
	assert.Equal(t, "Milk", summary.LowStock[0].Name)

	require.Len(t, summary.ExpiringSoon, 1)
	assert.Equal(t, "Milk", summary.ExpiringSoon[0].Name)
}

// --- Cache interaction ---

type mockCache struct {
	mu          sync.Mutex
	summary     *services.AlertSummary
	sets        int
	invalidated int
}

func (c *mockCache) Get(_ context.Context, _ string) (*services.AlertSummary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.summary == nil {
		return nil, false
	}
	return c.summary, true
}

func (c *mockCache) Set(_ context.Context, _ string, s *services.AlertSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summary = s
	c.sets++
}

func (c *mockCache) Invalidate(_ context.Context, _ string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summary = nil
	c.invalidated++
}

func TestAlerts_CacheReadThrough(t *testing.T) {
	repo := newMockRepo()
	repo.seed(models.InventoryItem{ID: "a", Name: "Milk", Quantity: 1, LowStockThreshold: 2})
	logger, _ := zap.NewDevelopment()
	cache := &mockCache{}
	svc := services.NewInventoryService(repo, events.NewBus(), &recordingSink{}, cache, logger)

	first, err := svc.Alerts(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets, "miss populates the cache")

	second, err := svc.Alerts(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets, "hit skips recomputation")
	assert.Equal(t, first, second)
}

func TestMutation_InvalidatesCache(t *testing.T) {
	repo := newMockRepo()
	logger, _ := zap.NewDevelopment()
	cache := &mockCache{}
	svc := services.NewInventoryService(repo, events.NewBus(), &recordingSink{}, cache, logger)

	_, err := svc.Add(context.Background(), testUser, milkInput())
	require.NoError(t, err)
	assert.Equal(t, 1, cache.invalidated)
}
