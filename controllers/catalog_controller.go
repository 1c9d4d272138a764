package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adrijadey5/Smart-Home-Inventory/catalog"
)

// CatalogController serves the predefined item catalog.
type CatalogController struct{}

// NewCatalogController creates a new CatalogController.
func NewCatalogController() *CatalogController {
	return &CatalogController{}
}

// ListCatalog returns every predefined catalog entry.
// GET /catalog
func (cc *CatalogController) ListCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": catalog.PredefinedItems})
}

// LookupBarcode returns the catalog entry for a scanned barcode.
// GET /catalog/barcode/:barcode
func (cc *CatalogController) LookupBarcode(c *gin.Context) {
	item, ok := catalog.FindByBarcode(c.Param("barcode"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No catalog entry for barcode"})
		return
	}
	c.JSON(http.StatusOK, item)
}
