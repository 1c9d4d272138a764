package services

import (
	"time"

	"github.com/adrijadey5/Smart-Home-Inventory/models"
)

// ExpiringSoonWindow is how far ahead the expiring-soon alert looks.
const ExpiringSoonWindow = 7 * 24 * time.Hour

// timeNow is swapped in tests.
var timeNow = func() time.Time { return time.Now().UTC() }

// AlertSummary is the derived alert state consumed by the dashboard.
type AlertSummary struct {
	LowStock     []models.InventoryItem `json:"lowStock"`
	ExpiringSoon []models.InventoryItem `json:"expiringSoon"`
}

// LowStockItems returns the items whose quantity is at or below their
// threshold, preserving the incoming order.
func LowStockItems(items []models.InventoryItem) []models.InventoryItem {
	out := make([]models.InventoryItem, 0)
	for _, it := range items {
		if it.IsLowStock() {
			out = append(out, it)
		}
	}
	return out
}

// ExpiringSoonItems returns the items whose expiry date falls strictly
// before now plus the alert window. Already-expired items are included;
// items without an expiry date never appear.
func ExpiringSoonItems(items []models.InventoryItem, now time.Time) []models.InventoryItem {
	cutoff := now.Add(ExpiringSoonWindow)
	out := make([]models.InventoryItem, 0)
	for _, it := range items {
		if it.ExpiresBefore(cutoff) {
			out = append(out, it)
		}
	}
	return out
}

// DeriveAlerts computes both alert sets from the published item list.
func DeriveAlerts(items []models.InventoryItem, now time.Time) AlertSummary {
	return AlertSummary{
		LowStock:     LowStockItems(items),
		ExpiringSoon: ExpiringSoonItems(items, now),
	}
}
