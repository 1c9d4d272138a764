package models

import (
	"strings"
	"time"
)

// DefaultLowStockThreshold applies when a submission leaves the threshold unset.
const DefaultLowStockThreshold = 5

// CatalogSentinelOther is the catalog selection that requires a custom name.
const CatalogSentinelOther = "other"

// FieldErrors maps a field name to its validation message.
type FieldErrors map[string]string

// ItemInput is the form-submission shape of an item. Name carries either a
// catalog value or the sentinel "other"; CustomName is transient and is
// resolved into the final name before persistence, never stored itself.
// Pointer fields distinguish "unset" from zero values so defaults can apply.
type ItemInput struct {
	Name              string          `json:"name"`
	CustomName        string          `json:"customName,omitempty"`
	Quantity          *int            `json:"quantity"`
	ExpiryDate        *time.Time      `json:"expiryDate"`
	LowStockThreshold *int            `json:"lowStockThreshold"`
	IsRecurring       bool            `json:"isRecurring"`
	RecurringCycle    *RecurringCycle `json:"recurringCycle"`
	Barcode           string          `json:"barcode,omitempty"`
}

// Validate checks every submission rule and returns field-scoped messages.
// It is deterministic and has no side effects; an empty result means valid.
func (in *ItemInput) Validate() FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(in.Name) == "" {
		errs["name"] = "Item name is required."
	}
	if in.Quantity == nil || *in.Quantity < 0 {
		errs["quantity"] = "Quantity must be a non-negative number."
	}
	if in.LowStockThreshold != nil && *in.LowStockThreshold < 0 {
		errs["lowStockThreshold"] = "Threshold must be a non-negative number."
	}
	if in.Name == CatalogSentinelOther && strings.TrimSpace(in.CustomName) == "" {
		errs["customName"] = `Custom item name is required when "Other" is selected.`
	}
	if in.IsRecurring {
		if in.RecurringCycle == nil {
			errs["recurringCycle"] = "Recurring cycle is required for recurring items."
		} else if !ValidCycle(*in.RecurringCycle) {
			errs["recurringCycle"] = "Recurring cycle must be daily, weekly or monthly."
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Normalize converts a validated submission into the record to persist:
// the display name is resolved (custom name for "other", catalog label for a
// known catalog value, the raw name otherwise), the threshold defaults to 5,
// and the recurring cycle is forced to nil whenever the item is not
// recurring, regardless of what was submitted.
//
// resolveLabel maps a catalog value to its display label; it returns false
// when the value is not a catalog entry.
func (in *ItemInput) Normalize(resolveLabel func(value string) (string, bool)) *InventoryItem {
	name := in.Name
	if in.Name == CatalogSentinelOther {
		name = strings.TrimSpace(in.CustomName)
	} else if resolveLabel != nil {
		if label, ok := resolveLabel(in.Name); ok {
			name = label
		}
	}

	threshold := DefaultLowStockThreshold
	if in.LowStockThreshold != nil {
		threshold = *in.LowStockThreshold
	}

	quantity := 0
	if in.Quantity != nil {
		quantity = *in.Quantity
	}

	var cycle *RecurringCycle
	if in.IsRecurring && in.RecurringCycle != nil {
		c := *in.RecurringCycle
		cycle = &c
	}

	var expiry *time.Time
	if in.ExpiryDate != nil {
		d := in.ExpiryDate.UTC()
		expiry = &d
	}

	return &InventoryItem{
		Name:              name,
		Quantity:          quantity,
		ExpiryDate:        expiry,
		LowStockThreshold: threshold,
		IsRecurring:       in.IsRecurring,
		RecurringCycle:    cycle,
		Barcode:           in.Barcode,
	}
}
