// Package catalog holds the static list of predefined household items used
// to auto-fill the add-item form from a catalog selection or a barcode scan.
package catalog

// Item is one predefined catalog entry. Value is the stable catalog id,
// Label the display name. LowStockThreshold of zero means "no suggestion".
type Item struct {
	Value             string `json:"value"`
	Label             string `json:"label"`
	Barcode           string `json:"barcode,omitempty"`
	LowStockThreshold int    `json:"lowStockThreshold,omitempty"`
}

// PredefinedItems is the built-in catalog. The trailing "other" entry is the
// sentinel that requires a custom name at submission time.
var PredefinedItems = []Item{
	{Value: "milk", Label: "Milk", Barcode: "101", LowStockThreshold: 2},
	{Value: "eggs", Label: "Eggs", Barcode: "102", LowStockThreshold: 6},
	{Value: "bread", Label: "Bread", Barcode: "103", LowStockThreshold: 1},
	{Value: "butter", Label: "Butter", Barcode: "104", LowStockThreshold: 1},
	{Value: "cheese", Label: "Cheese", Barcode: "105"},
	{Value: "sugar", Label: "Sugar", Barcode: "201"},
	{Value: "flour", Label: "Flour", Barcode: "202"},
	{Value: "coffee", Label: "Coffee", Barcode: "203"},
	{Value: "tea", Label: "Tea", Barcode: "204"},
	{Value: "toothpaste", Label: "Toothpaste", Barcode: "301", LowStockThreshold: 1},
	{Value: "soap", Label: "Soap", Barcode: "302", LowStockThreshold: 1},
	{Value: "shampoo", Label: "Shampoo", Barcode: "303", LowStockThreshold: 1},
	{Value: "other", Label: "Other..."},
}

// FindByValue returns the catalog entry with the given id.
func FindByValue(value string) (Item, bool) {
	for _, it := range PredefinedItems {
		if it.Value == value {
			return it, true
		}
	}
	return Item{}, false
}

// FindByBarcode returns the catalog entry matching a scanned barcode.
func FindByBarcode(barcode string) (Item, bool) {
	if barcode == "" {
		return Item{}, false
	}
	for _, it := range PredefinedItems {
		if it.Barcode == barcode {
			return it, true
		}
	}
	return Item{}, false
}

// LabelFor resolves a catalog value to its display label.
func LabelFor(value string) (string, bool) {
	it, ok := FindByValue(value)
	if !ok {
		return "", false
	}
	return it.Label, true
}
