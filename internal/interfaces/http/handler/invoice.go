package handler

import (
	"context"
	"io"

	"github.com/gatetrack/backend/internal/application/ingest"
	"github.com/gatetrack/backend/internal/application/invoiceview"
	"github.com/gatetrack/backend/internal/domain/invoice"
	"github.com/gatetrack/backend/internal/domain/shared"
	"github.com/gatetrack/backend/internal/infrastructure/tabular"
	"github.com/gatetrack/backend/internal/interfaces/http/dto"
	"github.com/gatetrack/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvoiceHandler handles invoice upload and query endpoints
type InvoiceHandler struct {
	BaseHandler
	ingest  *ingest.Service
	views   *invoiceview.Service
	archive ingest.FileArchive
	logger  *zap.Logger
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(ingestService *ingest.Service, views *invoiceview.Service, archive ingest.FileArchive, logger *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		ingest:  ingestService,
		views:   views,
		archive: archive,
		logger:  logger,
	}
}

// RegisterRoutes registers invoice routes
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	{
		invoices.POST("/upload", middleware.RequireActor(), h.Upload)
		invoices.POST("/upload/file", middleware.RequireActor(), h.UploadFile)
		invoices.GET("", h.List)
		invoices.GET("/views/uploaded", h.Uploaded)
		invoices.GET("/views/audited", h.Audited)
		invoices.GET("/views/dispatchable", h.Dispatchable)
		invoices.GET("/views/today", h.Today)
		invoices.GET("/views/scheduled", h.Scheduled)
		invoices.GET("/views/counts", h.Counts)
		invoices.GET("/:number", h.Get)
	}
}

// InvoiceRowRequest is one pre-parsed upload row
type InvoiceRowRequest struct {
	Invoice     string          `json:"invoice" binding:"required"`
	Customer    string          `json:"customer" binding:"required"`
	BillTo      string          `json:"bill_to"`
	Part        string          `json:"part" binding:"required"`
	Quantity    decimal.Decimal `json:"qty" binding:"required"`
	BinCapacity int             `json:"bin_capacity"`
}

// UploadInvoicesRequest is the body of POST /invoices/upload
type UploadInvoicesRequest struct {
	Rows []InvoiceRowRequest `json:"rows" binding:"required,min=1,dive"`
}

// Upload ingests pre-parsed invoice rows
func (h *InvoiceHandler) Upload(c *gin.Context) {
	var req UploadInvoicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	rows := make([]ingest.InvoiceRow, 0, len(req.Rows))
	for _, r := range req.Rows {
		rows = append(rows, ingest.InvoiceRow{
			Invoice:     r.Invoice,
			Customer:    r.Customer,
			BillTo:      r.BillTo,
			Part:        r.Part,
			Quantity:    r.Quantity,
			BinCapacity: r.BinCapacity,
		})
	}

	result, err := h.ingest.UploadInvoices(c.Request.Context(), rows, middleware.GetActorName(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// UploadFile ingests a raw .xlsx or .csv invoice file
func (h *InvoiceHandler) UploadFile(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "Multipart field 'file' is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.BadRequest(c, "Failed to read uploaded file")
		return
	}

	rows, err := tabular.ExtractInvoiceRows(header.Filename, data)
	if err != nil {
		h.Error(c, 400, dto.ErrCodeValidation, err.Error())
		return
	}

	// Archival is best effort; the upload proceeds even if it fails.
	if h.archive != nil {
		if key, archiveErr := h.archive.Archive(c.Request.Context(), header.Filename, data); archiveErr != nil {
			h.logger.Warn("failed to archive upload",
				zap.String("filename", header.Filename),
				zap.Error(archiveErr),
			)
		} else if key != "" {
			h.logger.Info("archived upload", zap.String("key", key))
		}
	}

	result, err := h.ingest.UploadInvoices(c.Request.Context(), rows, middleware.GetActorName(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// List returns invoices with filtering and pagination
func (h *InvoiceHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}
	req = req.WithDefaults()

	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
		Filters:  map[string]interface{}{},
	}
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}
	if customer := c.Query("customer"); customer != "" {
		filter.Filters["customer"] = customer
	}

	invoices, err := h.views.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, ToInvoiceResponses(invoices), req.Page, req.PageSize, len(invoices))
}

// Get returns one invoice by number
func (h *InvoiceHandler) Get(c *gin.Context) {
	inv, err := h.views.Get(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ToInvoiceResponse(inv))
}

// Uploaded returns invoices still in the document-audit stage
func (h *InvoiceHandler) Uploaded(c *gin.Context) {
	h.view(c, h.views.Uploaded)
}

// Audited returns invoices whose document audit is complete
func (h *InvoiceHandler) Audited(c *gin.Context) {
	h.view(c, h.views.Audited)
}

// Dispatchable returns audit-complete, unblocked invoices
func (h *InvoiceHandler) Dispatchable(c *gin.Context) {
	h.view(c, h.views.Dispatchable)
}

// Today returns today's active invoices
func (h *InvoiceHandler) Today(c *gin.Context) {
	h.view(c, h.views.Today)
}

// Scheduled returns undispatched invoices matching the active schedule
func (h *InvoiceHandler) Scheduled(c *gin.Context) {
	h.view(c, h.views.Scheduled)
}

// Counts returns invoice counts per lifecycle status
func (h *InvoiceHandler) Counts(c *gin.Context) {
	counts, err := h.views.Counts(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, counts)
}

func (h *InvoiceHandler) view(c *gin.Context, load func(ctx context.Context) ([]invoice.Invoice, error)) {
	invoices, err := load(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ToInvoiceResponses(invoices))
}
