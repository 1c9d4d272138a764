package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/adrijadey5/Smart-Home-Inventory/catalog"
	"github.com/adrijadey5/Smart-Home-Inventory/events"
	"github.com/adrijadey5/Smart-Home-Inventory/models"
	"github.com/adrijadey5/Smart-Home-Inventory/repository"
)

// ValidationError carries the field-scoped messages of a rejected submission.
// It is raised before any persistence attempt.
type ValidationError struct {
	Fields models.FieldErrors
}

func (e *ValidationError) Error() string {
	return "invalid item submission"
}

// Diagnostic is the structured record of a failed batch: where the write was
// aimed, what operation was attempted and with which payload. It exists so
// authorization or schema rejections can be debugged out of band; the user
// only ever sees a generic failure notification.
type Diagnostic struct {
	Path      string
	Operation string
	Payload   any
	Err       error
}

// DiagnosticSink receives batch-failure diagnostics.
type DiagnosticSink interface {
	Emit(d Diagnostic)
}

// ZapDiagnosticSink logs diagnostics through zap.
type ZapDiagnosticSink struct {
	Logger *zap.Logger
}

func (s *ZapDiagnosticSink) Emit(d Diagnostic) {
	s.Logger.Error("inventory batch failed",
		zap.String("path", d.Path),
		zap.String("operation", d.Operation),
		zap.Any("payload", d.Payload),
		zap.Error(d.Err),
	)
}

// InventoryService mediates between callers and the remote item collection:
// it validates and normalizes submissions, maintains the audit trail as a
// side effect of every mutation, derives the published sorted list, and
// signals outcomes on the event bus. Mutations return an explicit error to
// the caller; the bus stays the notification side channel.
type InventoryService struct {
	repo   repository.InventoryRepository
	bus    *events.Bus
	diag   DiagnosticSink
	cache  AlertCache
	logger *zap.Logger
}

// NewInventoryService wires the inventory service. cache may be nil.
func NewInventoryService(repo repository.InventoryRepository, bus *events.Bus, diag DiagnosticSink, cache AlertCache, logger *zap.Logger) *InventoryService {
	return &InventoryService{repo: repo, bus: bus, diag: diag, cache: cache, logger: logger}
}

func collectionPath(userID string) string {
	return fmt.Sprintf("users/%s/inventory_items", userID)
}

func documentPath(userID, itemID string) string {
	return fmt.Sprintf("users/%s/inventory_items/%s", userID, itemID)
}

// List loads the user's items and sorts them ascending by name. This is the
// published list shape: every snapshot replaces the previous one wholesale.
func (s *InventoryService) List(ctx context.Context, userID string) ([]models.InventoryItem, error) {
	items, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

// Add validates and normalizes a submission, assigns a document id, and
// writes the item plus its "created" history record as one atomic batch.
func (s *InventoryService) Add(ctx context.Context, userID string, in *models.ItemInput) (*models.InventoryItem, error) {
	if errs := in.Validate(); errs != nil {
		return nil, &ValidationError{Fields: errs}
	}

	item := in.Normalize(catalog.LabelFor)
	item.ID = s.repo.NextID()
	h := models.NewCreatedHistory(item)

	if err := s.repo.InsertWithHistory(ctx, userID, item, h); err != nil {
		s.failBatch(userID, "create", collectionPath(userID), item, err)
		return nil, err
	}

	s.afterMutation(ctx, userID, events.Event{Type: events.ItemAdded, UserID: userID, ItemID: item.ID, ItemName: item.Name})
	return item, nil
}

// Edit overwrites an existing item. The currently stored record is the diff
// baseline; when the item no longer exists the call is a silent no-op. An
// empty diff still overwrites the primary document (idempotent) but writes
// no history record.
func (s *InventoryService) Edit(ctx context.Context, userID, itemID string, in *models.ItemInput) (*models.InventoryItem, error) {
	if errs := in.Validate(); errs != nil {
		return nil, &ValidationError{Fields: errs}
	}

	baseline, err := s.repo.FindByID(ctx, userID, itemID)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn("edit of unknown item ignored", zap.String("user_id", userID), zap.String("item_id", itemID))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	updated := in.Normalize(catalog.LabelFor)
	updated.ID = itemID

	var h *models.ItemHistory
	changed, oldData, newData := models.DiffItems(baseline, updated)
	if len(changed) > 0 {
		h = models.NewUpdatedHistory(itemID, changed, oldData, newData)
	}

	if err := s.repo.UpdateWithHistory(ctx, userID, updated, h); err != nil {
		s.failBatch(userID, "update", documentPath(userID, itemID), updated, err)
		return nil, err
	}

	s.afterMutation(ctx, userID, events.Event{Type: events.ItemUpdated, UserID: userID, ItemID: itemID, ItemName: updated.Name})
	return updated, nil
}

// Delete removes an item and writes its "deleted" history record, carrying
// the full prior record, as one atomic batch. Unknown ids are a silent
// no-op. The audit trail outlives the item.
func (s *InventoryService) Delete(ctx context.Context, userID, itemID string) error {
	baseline, err := s.repo.FindByID(ctx, userID, itemID)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn("delete of unknown item ignored", zap.String("user_id", userID), zap.String("item_id", itemID))
		return nil
	}
	if err != nil {
		return err
	}

	h := models.NewDeletedHistory(baseline)
	if err := s.repo.DeleteWithHistory(ctx, userID, itemID, h); err != nil {
		s.failBatch(userID, "delete", documentPath(userID, itemID), baseline, err)
		return err
	}

	s.afterMutation(ctx, userID, events.Event{Type: events.ItemDeleted, UserID: userID, ItemID: itemID, ItemName: baseline.Name})
	return nil
}

// History returns an item's audit trail, newest first.
func (s *InventoryService) History(ctx context.Context, userID, itemID string) ([]models.ItemHistory, error) {
	return s.repo.History(ctx, userID, itemID)
}

// Alerts returns the derived low-stock and expiring-soon sets, read through
// the cache when one is configured.
func (s *InventoryService) Alerts(ctx context.Context, userID string) (*AlertSummary, error) {
	if s.cache != nil {
		if summary, ok := s.cache.Get(ctx, userID); ok {
			return summary, nil
		}
	}

	items, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary := DeriveAlerts(items, timeNow())

	if s.cache != nil {
		s.cache.Set(ctx, userID, &summary)
	}
	return &summary, nil
}

// failBatch reports a failed batch exactly once on each channel: one
// structured diagnostic and one user-facing failure notification. The batch
// is never retried.
func (s *InventoryService) failBatch(userID, op, path string, payload any, err error) {
	s.diag.Emit(Diagnostic{Path: path, Operation: op, Payload: payload, Err: err})
	s.bus.Publish(events.Event{
		Type:   events.MutationFailed,
		UserID: userID,
		Reason: fmt.Sprintf("failed to %s item", op),
	})
}

func (s *InventoryService) afterMutation(ctx context.Context, userID string, e events.Event) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
	s.bus.Publish(e)
}
