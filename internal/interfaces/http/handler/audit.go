package handler

import (
	"github.com/gatetrack/backend/internal/application/audit"
	"github.com/gatetrack/backend/internal/domain/invoice"
	"github.com/gatetrack/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// AuditHandler handles document-audit scan endpoints
type AuditHandler struct {
	BaseHandler
	audit *audit.Service
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(auditService *audit.Service) *AuditHandler {
	return &AuditHandler{audit: auditService}
}

// RegisterRoutes registers audit routes
func (h *AuditHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/audit/scan", middleware.RequireActor(), h.SubmitScan)
}

// ScanRequest is one decoded barcode label
type ScanRequest struct {
	PartCode  string `json:"part_code"`
	Quantity  string `json:"quantity"`
	BinNumber string `json:"bin_number"`
	RawValue  string `json:"raw_value" binding:"required"`
}

// SubmitScanRequest is the body of POST /audit/scan
type SubmitScanRequest struct {
	InvoiceNumber string      `json:"invoice_number" binding:"required"`
	CustomerScan  ScanRequest `json:"customer_scan" binding:"required"`
	PlantScan     ScanRequest `json:"plant_scan" binding:"required"`
}

// SubmitScan reconciles one customer-label/plant-label scan pair against the
// invoice
func (h *AuditHandler) SubmitScan(c *gin.Context) {
	var req SubmitScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	result, err := h.audit.SubmitScanPair(
		c.Request.Context(),
		req.InvoiceNumber,
		toScanResult(req.CustomerScan),
		toScanResult(req.PlantScan),
		middleware.GetActorName(c),
	)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

func toScanResult(req ScanRequest) invoice.ScanResult {
	return invoice.ScanResult{
		PartCode:  req.PartCode,
		Quantity:  req.Quantity,
		BinNumber: req.BinNumber,
		RawValue:  req.RawValue,
	}
}
