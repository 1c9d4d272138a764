package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/adrijadey5/Smart-Home-Inventory/events"
	"github.com/adrijadey5/Smart-Home-Inventory/middleware"
	"github.com/adrijadey5/Smart-Home-Inventory/models"
	"github.com/adrijadey5/Smart-Home-Inventory/services"
)

// InventoryController handles the HTTP surface of the inventory store.
type InventoryController struct {
	service *services.InventoryService
	bus     *events.Bus
	logger  *zap.Logger
}

// NewInventoryController creates a new InventoryController.
func NewInventoryController(service *services.InventoryService, bus *events.Bus, logger *zap.Logger) *InventoryController {
	return &InventoryController{service: service, bus: bus, logger: logger}
}

// ListItems returns the user's full sorted inventory.
// GET /inventory
func (ic *InventoryController) ListItems(c *gin.Context) {
	items, err := ic.service.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load inventory"})
		return
	}
	c.JSON(http.StatusOK, services.Snapshot{Items: items, IsLoaded: true})
}

// AddItem validates a submission and creates a new item.
// POST /inventory
func (ic *InventoryController) AddItem(c *gin.Context) {
	var in models.ItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	item, err := ic.service.Add(c.Request.Context(), middleware.UserID(c), &in)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "fields": verr.Fields})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to add item"})
		return
	}

	c.JSON(http.StatusCreated, item)
}

// EditItem overwrites an existing item. An unknown id is a silent no-op.
// PUT /inventory/:itemId
func (ic *InventoryController) EditItem(c *gin.Context) {
	var in models.ItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	item, err := ic.service.Edit(c.Request.Context(), middleware.UserID(c), c.Param("itemId"), &in)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "fields": verr.Fields})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to update item"})
		return
	}
	if item == nil {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, item)
}

// DeleteItem removes an item. An unknown id is a silent no-op.
// DELETE /inventory/:itemId
func (ic *InventoryController) DeleteItem(c *gin.Context) {
	if err := ic.service.Delete(c.Request.Context(), middleware.UserID(c), c.Param("itemId")); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to delete item"})
		return
	}
	c.Status(http.StatusNoContent)
}

// ItemHistory returns an item's audit trail, newest first.
// GET /inventory/:itemId/history
func (ic *InventoryController) ItemHistory(c *gin.Context) {
	entries, err := ic.service.History(c.Request.Context(), middleware.UserID(c), c.Param("itemId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": entries})
}

// Alerts returns the derived low-stock and expiring-soon sets.
// GET /inventory/alerts
func (ic *InventoryController) Alerts(c *gin.Context) {
	summary, err := ic.service.Alerts(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to derive alerts"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// StreamInventory pushes the full sorted snapshot over SSE whenever the
// user's collection changes. The first event arrives as soon as the initial
// load completes.
// GET /inventory/stream
func (ic *InventoryController) StreamInventory(c *gin.Context) {
	userID := middleware.UserID(c)

	snapshots := make(chan []models.InventoryItem, 1)
	errs := make(chan error, 1)

	sub, err := ic.service.Subscribe(c.Request.Context(), userID,
		func(items []models.InventoryItem) {
			// Keep only the latest snapshot; each delivery replaces the last.
			select {
			case <-snapshots:
			default:
			}
			snapshots <- items
		},
		func(err error) {
			select {
			case errs <- err:
			default:
			}
		},
	)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to open inventory stream"})
		return
	}
	defer sub.Close()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case items := <-snapshots:
			c.SSEvent("snapshot", services.Snapshot{Items: items, IsLoaded: true})
			return true
		case err := <-errs:
			ic.logger.Warn("inventory stream ended", zap.String("user_id", userID), zap.Error(err))
			c.SSEvent("error", gin.H{"error": "stream interrupted"})
			return false
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// StreamEvents pushes mutation notifications (added/updated/deleted/failed)
// for the authenticated user over SSE.
// GET /inventory/events
func (ic *InventoryController) StreamEvents(c *gin.Context) {
	userID := middleware.UserID(c)

	ch, cancel := ic.bus.Subscribe()
	defer cancel()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case e, ok := <-ch:
			if !ok {
				return false
			}
			if e.UserID == userID {
				c.SSEvent(string(e.Type), e)
			}
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
