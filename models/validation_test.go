package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adrijadey5/Smart-Home-Inventory/models"
)

func intPtr(v int) *int { return &v }

func cyclePtr(c models.RecurringCycle) *models.RecurringCycle { return &c }

func validInput() *models.ItemInput {
	return &models.ItemInput{
		Name:     "milk",
		Quantity: intPtr(2),
	}
}

func TestValidate_ValidRecord(t *testing.T) {
	errs := validInput().Validate()
	assert.Nil(t, errs)
}

func TestValidate_NameRequired(t *testing.T) {
	in := validInput()
	in.Name = "  "

	errs := in.Validate()
	require.NotNil(t, errs)
	assert.Contains(t, errs, "name")
}

func TestValidate_NegativeQuantity(t *testing.T) {
	in := validInput()
	in.Quantity = intPtr(-1)

	errs := in.Validate()
	require.NotNil(t, errs)
	assert.Contains(t, errs, "quantity")
}

func TestValidate_MissingQuantity(t *testing.T) {
	in := validInput()
	in.Quantity = nil

	errs := in.Validate()
	require.NotNil(t, errs)
	assert.Contains(t, errs, "quantity")
}

func TestValidate_NegativeThreshold(t *testing.T) {
	in := validInput()
	in.LowStockThreshold = intPtr(-5)

	errs := in.Validate()
	require.NotNil(t, errs)
	assert.Contains(t, errs, "lowStockThreshold")
}

func TestValidate_OtherRequiresCustomName(t *testing.T) {
	in := validInput()
	in.Name = "other"
	in.CustomName = "   "

	errs := in.Validate()
	require.NotNil(t, errs)
	assert.Contains(t, errs, "customName")
}

func TestValidate_OtherWithCustomName(t *testing.T) {
	in := validInput()
	in.Name = "other"
	in.CustomName = "Oat Milk"

	assert.Nil(t, in.Validate())
}

func TestValidate_RecurringRequiresCycle(t *testing.T) {
	in := validInput()
	in.IsRecurring = true

	errs := in.Validate()
	require.NotNil(t, errs)
	assert.Contains(t, errs, "recurringCycle")
}

func TestValidate_RecurringRejectsUnknownCycle(t *testing.T) {
	in := validInput()
	in.IsRecurring = true
	in.RecurringCycle = cyclePtr(models.RecurringCycle("yearly"))

	errs := in.Validate()
	require.NotNil(t, errs)
	assert.Contains(t, errs, "recurringCycle")
}

func TestValidate_Deterministic(t *testing.T) {
	in := validInput()
	in.Name = "other"

	first := in.Validate()
	second := in.Validate()
	assert.Equal(t, first, second)
}

func noCatalog(string) (string, bool) { return "", false }

func TestNormalize_DefaultThreshold(t *testing.T) {
	item := validInput().Normalize(noCatalog)
	assert.Equal(t, models.DefaultLowStockThreshold, item.LowStockThreshold)
}

func TestNormalize_ExplicitThresholdKept(t *testing.T) {
	in := validInput()
	in.LowStockThreshold = intPtr(0)

	item := in.Normalize(noCatalog)
	assert.Equal(t, 0, item.LowStockThreshold)
}

func TestNormalize_CustomNameResolved(t *testing.T) {
	in := validInput()
	in.Name = "other"
	in.CustomName = "  Oat Milk  "

	item := in.Normalize(noCatalog)
	assert.Equal(t, "Oat Milk", item.Name)
}

func TestNormalize_CatalogLabelResolved(t *testing.T) {
	in := validInput()
	in.Name = "milk"

	item := in.Normalize(func(value string) (string, bool) {
		if value == "milk" {
			return "Milk", true
		}
		return "", false
	})
	assert.Equal(t, "Milk", item.Name)
}

func TestNormalize_CycleClearedWhenNotRecurring(t *testing.T) {
	in := validInput()
	in.IsRecurring = false
	in.RecurringCycle = cyclePtr(models.CycleWeekly)

	item := in.Normalize(noCatalog)
	assert.Nil(t, item.RecurringCycle)
}

func TestNormalize_CycleKeptWhenRecurring(t *testing.T) {
	in := validInput()
	in.IsRecurring = true
	in.RecurringCycle = cyclePtr(models.CycleMonthly)

	item := in.Normalize(noCatalog)
	require.NotNil(t, item.RecurringCycle)
	assert.Equal(t, models.CycleMonthly, *item.RecurringCycle)
}

func TestNormalize_AbsentExpiryStaysNil(t *testing.T) {
	item := validInput().Normalize(noCatalog)
	assert.Nil(t, item.ExpiryDate)
}

func TestNormalize_ExpiryConvertedToUTC(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	expiry := time.Date(2026, 9, 10, 12, 0, 0, 0, loc)

	in := validInput()
	in.ExpiryDate = &expiry

	item := in.Normalize(noCatalog)
	require.NotNil(t, item.ExpiryDate)
	assert.Equal(t, time.UTC, item.ExpiryDate.Location())
	assert.True(t, item.ExpiryDate.Equal(expiry))
}
