package repository

import (
	"context"
	"errors"

	"github.com/adrijadey5/Smart-Home-Inventory/models"
)

var (
	// ErrNotFound is returned when an item or user does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrEmailTaken is returned when registering an already-used email.
	ErrEmailTaken = errors.New("email already registered")
)

// ChangeFeed is a live notification stream over a user's inventory
// collection. Next blocks until a change arrives or the context ends.
// *mongo.ChangeStream satisfies this directly; tests substitute fakes.
type ChangeFeed interface {
	Next(ctx context.Context) bool
	Err() error
	Close(ctx context.Context) error
}

// InventoryRepository defines the persistence operations of the inventory
// store. The three mutating operations commit the primary write and its
// history record as one atomic batch: either both land or neither does.
// This interface uses plain Go types (no mongo-driver types) to make
// swapping adapters easier.
type InventoryRepository interface {
	// NextID generates a new document identifier prior to write.
	NextID() string

	List(ctx context.Context, userID string) ([]models.InventoryItem, error)
	FindByID(ctx context.Context, userID, itemID string) (*models.InventoryItem, error)

	// InsertWithHistory writes a new item plus its "created" audit record.
	InsertWithHistory(ctx context.Context, userID string, item *models.InventoryItem, h *models.ItemHistory) error
	// UpdateWithHistory overwrites an item; when h is nil (empty diff) only
	// the primary document is written and no history record is created.
	UpdateWithHistory(ctx context.Context, userID string, item *models.InventoryItem, h *models.ItemHistory) error
	// DeleteWithHistory removes an item plus writes its "deleted" audit record.
	DeleteWithHistory(ctx context.Context, userID, itemID string, h *models.ItemHistory) error

	// History lists an item's audit trail, newest first. History records
	// survive deletion of the item they reference.
	History(ctx context.Context, userID, itemID string) ([]models.ItemHistory, error)

	// Watch opens a change feed scoped to the user's items.
	Watch(ctx context.Context, userID string) (ChangeFeed, error)
}

// UserRepository defines the persistence operations of the identity provider.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}
