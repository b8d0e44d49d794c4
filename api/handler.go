package api

import (
	"errors"
	"net/http"
	"strconv"

	"api_pos/internal/inventory"
	"api_pos/internal/invoice"
	"api_pos/internal/sales"
	"api_pos/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// salesHandler holds the services behind the sales, inventory and invoice routes.
type salesHandler struct {
	salesService     *sales.Service
	inventoryService *inventory.Service
	invoiceService   *invoice.Service
	logger           *zap.Logger
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(salesService *sales.Service, inventoryService *inventory.Service, invoiceService *invoice.Service, logger *zap.Logger) *salesHandler {
	return &salesHandler{
		salesService:     salesService,
		inventoryService: inventoryService,
		invoiceService:   invoiceService,
		logger:           logger,
	}
}

// handleCreateSale handles the POST /api/sales endpoint.
func (h *salesHandler) handleCreateSale(ctx *gin.Context) {
	var req sales.PostSaleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("failed to bind JSON request", zap.Error(err))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	actor, _ := actorFrom(ctx)
	req.EmployeeID = actor.EmployeeID

	saleID, err := h.salesService.PostSale(ctx.Request.Context(), req)
	if err != nil {
		h.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"success": true, "sale_id": saleID})
}

// handleListSales handles GET /api/sales?start_date=&end_date=.
func (h *salesHandler) handleListSales(ctx *gin.Context) {
	dateRange, err := sales.ParseDateRange(ctx.Query("start_date"), ctx.Query("end_date"))
	if err != nil {
		h.writeError(ctx, err)
		return
	}

	results, metadata, err := h.salesService.List(ctx.Request.Context(), dateRange)
	if err != nil {
		h.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"results": results, "metadata": metadata})
}

func (h *salesHandler) handleGetSale(ctx *gin.Context) {
	saleID, ok := h.idParam(ctx)
	if !ok {
		return
	}
	detail, err := h.salesService.Get(ctx.Request.Context(), saleID)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, detail)
}

func (h *salesHandler) handleGetSaleItems(ctx *gin.Context) {
	saleID, ok := h.idParam(ctx)
	if !ok {
		return
	}
	items, err := h.salesService.Items(ctx.Request.Context(), saleID)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, items)
}

// handleInvoice streams the PDF invoice as an attachment.
func (h *salesHandler) handleInvoice(ctx *gin.Context) {
	saleID, ok := h.idParam(ctx)
	if !ok {
		return
	}
	doc, err := h.invoiceService.Invoice(ctx.Request.Context(), saleID)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	ctx.Header("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	ctx.Data(http.StatusOK, doc.MimeType, doc.Bytes)
}

func (h *salesHandler) handleLowStock(ctx *gin.Context) {
	products, err := h.inventoryService.ListBelowThreshold(ctx.Request.Context())
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, products)
}

func (h *salesHandler) handleProductQuantity(ctx *gin.Context) {
	productID, ok := h.idParam(ctx)
	if !ok {
		return
	}
	qty, err := h.inventoryService.CurrentQuantity(ctx.Request.Context(), productID)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"product_id": productID, "quantity": qty})
}

func (h *salesHandler) idParam(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// writeError maps service errors to responses. Storage details never leave the process.
func (h *salesHandler) writeError(ctx *gin.Context, err error) {
	var stockErr *inventory.InsufficientStockError
	switch {
	case errors.Is(err, sales.ErrInvalidRequest):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &stockErr):
		ctx.JSON(http.StatusConflict, gin.H{
			"error":      "insufficient stock",
			"product_id": stockErr.ProductID,
			"requested":  stockErr.Requested,
			"available":  stockErr.Available,
		})
	case errors.Is(err, inventory.ErrNotFound):
		if ctx.Request.Method == http.MethodPost {
			ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
	case errors.Is(err, sales.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "sale not found"})
	case errors.Is(err, invoice.ErrRender):
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render invoice"})
	case errors.Is(err, storage.ErrFailure):
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable, please retry"})
	default:
		h.logger.Error("unhandled error", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
