package models

import (
	"time"
)

// RecurringCycle is the repurchase cadence of a recurring item.
type RecurringCycle string

const (
	CycleDaily   RecurringCycle = "daily"
	CycleWeekly  RecurringCycle = "weekly"
	CycleMonthly RecurringCycle = "monthly"
)

// ValidCycle reports whether c is one of the supported cycles.
func ValidCycle(c RecurringCycle) bool {
	switch c {
	case CycleDaily, CycleWeekly, CycleMonthly:
		return true
	}
	return false
}

// InventoryItem is a single tracked household item.
// ExpiryDate is nil when the item does not expire (stored as an explicit null).
// RecurringCycle is non-nil if and only if IsRecurring is true.
type InventoryItem struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Quantity          int             `json:"quantity"`
	ExpiryDate        *time.Time      `json:"expiryDate"`
	LowStockThreshold int             `json:"lowStockThreshold"`
	IsRecurring       bool            `json:"isRecurring"`
	RecurringCycle    *RecurringCycle `json:"recurringCycle"`
	Barcode           string          `json:"barcode,omitempty"`
}

// IsLowStock reports whether the item quantity is at or below its threshold.
func (i *InventoryItem) IsLowStock() bool {
	return i.Quantity <= i.LowStockThreshold
}

// ExpiresBefore reports whether the item has an expiry date strictly before t.
// Items without an expiry date never expire.
func (i *InventoryItem) ExpiresBefore(t time.Time) bool {
	return i.ExpiryDate != nil && i.ExpiryDate.Before(t)
}

// Clone returns a deep copy of the item.
func (i *InventoryItem) Clone() *InventoryItem {
	out := *i
	if i.ExpiryDate != nil {
		d := *i.ExpiryDate
		out.ExpiryDate = &d
	}
	if i.RecurringCycle != nil {
		c := *i.RecurringCycle
		out.RecurringCycle = &c
	}
	return &out
}
