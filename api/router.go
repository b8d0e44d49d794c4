package api

import (
	"net/http"

	"api_pos/internal/auth"
	"api_pos/internal/inventory"
	"api_pos/internal/invoice"
	"api_pos/internal/sales"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies are the services the routes are served from.
type Dependencies struct {
	Sales     *sales.Service
	Inventory *inventory.Service
	Invoices  *invoice.Service
	Tokens    *auth.Tokens
	Logger    *zap.Logger
}

// InitRoutes registers the sales, inventory and invoice endpoints on the
// given Gin engine behind authentication and per-operation permission checks.
func InitRoutes(e *gin.Engine, deps Dependencies) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	h := NewSalesHandler(deps.Sales, deps.Inventory, deps.Invoices, logger)

	e.Use(RequestLogger(logger))

	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	authorized := e.Group("/api")
	authorized.Use(RequireAuth(deps.Tokens))
	{
		authorized.POST("/sales", Require(auth.OpPostSale), h.handleCreateSale)
		authorized.GET("/sales", Require(auth.OpViewSales), h.handleListSales)
		authorized.GET("/sales/:id", Require(auth.OpViewSales), h.handleGetSale)
		authorized.GET("/sales/:id/items", Require(auth.OpViewSales), h.handleGetSaleItems)
		authorized.GET("/sales/:id/invoice", Require(auth.OpViewInvoice), h.handleInvoice)
		authorized.GET("/inventory/low-stock", Require(auth.OpViewInventory), h.handleLowStock)
		authorized.GET("/products/:id/quantity", Require(auth.OpViewInventory), h.handleProductQuantity)
	}
}
