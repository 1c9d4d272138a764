package models

import (
	"time"
)

// ChangeType classifies a history record.
type ChangeType string

const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// ItemHistory is an immutable audit record for one inventory mutation.
// For updates, OldData/NewData are restricted to the changed fields; for
// creates NewData holds the full record and for deletes OldData holds the
// full prior record. History records are never mutated and outlive the item
// they reference.
type ItemHistory struct {
	ID            string         `json:"id"`
	ItemID        string         `json:"itemId"`
	ChangeType    ChangeType     `json:"changeType"`
	ChangedFields []string       `json:"changedFields,omitempty"`
	OldData       map[string]any `json:"oldData,omitempty"`
	NewData       map[string]any `json:"newData,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
}

// itemFields lists every persisted item field, in the order used for
// ChangedFields. The diff below compares exactly these, one by one.
var itemFields = []string{
	"name",
	"quantity",
	"expiryDate",
	"lowStockThreshold",
	"isRecurring",
	"recurringCycle",
	"barcode",
}

// fieldValue returns the persisted value of a single named field.
func fieldValue(item *InventoryItem, field string) any {
	switch field {
	case "name":
		return item.Name
	case "quantity":
		return item.Quantity
	case "expiryDate":
		if item.ExpiryDate == nil {
			return nil
		}
		return *item.ExpiryDate
	case "lowStockThreshold":
		return item.LowStockThreshold
	case "isRecurring":
		return item.IsRecurring
	case "recurringCycle":
		if item.RecurringCycle == nil {
			return nil
		}
		return *item.RecurringCycle
	case "barcode":
		return item.Barcode
	}
	return nil
}

// fieldEqual compares one named field across two items.
func fieldEqual(a, b *InventoryItem, field string) bool {
	if field == "expiryDate" {
		if a.ExpiryDate == nil || b.ExpiryDate == nil {
			return a.ExpiryDate == nil && b.ExpiryDate == nil
		}
		return a.ExpiryDate.Equal(*b.ExpiryDate)
	}
	return fieldValue(a, field) == fieldValue(b, field)
}

// DiffItems computes the field-level difference between two item records.
// It returns the names of the fields that differ plus old/new snapshots
// restricted to those fields. An empty result means the records are equal.
func DiffItems(oldItem, newItem *InventoryItem) (changed []string, oldData, newData map[string]any) {
	oldData = make(map[string]any)
	newData = make(map[string]any)
	for _, f := range itemFields {
		if fieldEqual(oldItem, newItem, f) {
			continue
		}
		changed = append(changed, f)
		oldData[f] = fieldValue(oldItem, f)
		newData[f] = fieldValue(newItem, f)
	}
	return changed, oldData, newData
}

// Snapshot returns the full persisted field set of an item, keyed by field
// name, as recorded in created/deleted history entries.
func Snapshot(item *InventoryItem) map[string]any {
	out := make(map[string]any, len(itemFields))
	for _, f := range itemFields {
		out[f] = fieldValue(item, f)
	}
	return out
}

// NewCreatedHistory builds the audit record written alongside an insert.
func NewCreatedHistory(item *InventoryItem) *ItemHistory {
	return &ItemHistory{
		ItemID:        item.ID,
		ChangeType:    ChangeCreated,
		ChangedFields: append([]string(nil), itemFields...),
		NewData:       Snapshot(item),
	}
}

// NewUpdatedHistory builds the audit record for a non-empty diff.
func NewUpdatedHistory(itemID string, changed []string, oldData, newData map[string]any) *ItemHistory {
	return &ItemHistory{
		ItemID:        itemID,
		ChangeType:    ChangeUpdated,
		ChangedFields: changed,
		OldData:       oldData,
		NewData:       newData,
	}
}

// NewDeletedHistory builds the audit record written alongside a delete,
// carrying the full prior record.
func NewDeletedHistory(item *InventoryItem) *ItemHistory {
	return &ItemHistory{
		ItemID:     item.ID,
		ChangeType: ChangeDeleted,
		OldData:    Snapshot(item),
	}
}
