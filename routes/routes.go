package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/adrijadey5/Smart-Home-Inventory/controllers"
	"github.com/adrijadey5/Smart-Home-Inventory/middleware"
	"github.com/adrijadey5/Smart-Home-Inventory/services"
)

// RegisterRoutes registers all HTTP routes.
func RegisterRoutes(
	r *gin.Engine,
	authService *services.AuthService,
	authCtrl *controllers.AuthController,
	inventoryCtrl *controllers.InventoryController,
	catalogCtrl *controllers.CatalogController,
) {
	auth := r.Group("/auth")
	auth.Use(middleware.RateLimit("20-M"))
	{
		auth.POST("/anonymous", authCtrl.Anonymous)
		auth.POST("/register", authCtrl.Register)
		auth.POST("/login", authCtrl.Login)
	}

	inventory := r.Group("/inventory")
	inventory.Use(middleware.RequireAuth(authService))
	{
		inventory.GET("", inventoryCtrl.ListItems)
		inventory.POST("", inventoryCtrl.AddItem)
		inventory.GET("/alerts", inventoryCtrl.Alerts)
		inventory.GET("/stream", inventoryCtrl.StreamInventory)
		inventory.GET("/events", inventoryCtrl.StreamEvents)
		inventory.PUT("/:itemId", inventoryCtrl.EditItem)
		inventory.DELETE("/:itemId", inventoryCtrl.DeleteItem)
		inventory.GET("/:itemId/history", inventoryCtrl.ItemHistory)
	}

	cat := r.Group("/catalog")
	{
		cat.GET("", catalogCtrl.ListCatalog)
		cat.GET("/barcode/:barcode", catalogCtrl.LookupBarcode)
	}
}
