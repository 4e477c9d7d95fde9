package handler

import (
	"time"

	mismatchapp "github.com/gatetrack/backend/internal/application/mismatch"
	"github.com/gatetrack/backend/internal/domain/invoice"
	"github.com/gatetrack/backend/internal/domain/mismatch"
	"github.com/gatetrack/backend/internal/interfaces/http/dto"
	"github.com/gatetrack/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MismatchHandler handles mismatch alert endpoints
type MismatchHandler struct {
	BaseHandler
	mismatches *mismatchapp.Service
}

// NewMismatchHandler creates a new MismatchHandler
func NewMismatchHandler(mismatchService *mismatchapp.Service) *MismatchHandler {
	return &MismatchHandler{mismatches: mismatchService}
}

// RegisterRoutes registers mismatch routes. Resolution is restricted to
// admins.
func (h *MismatchHandler) RegisterRoutes(rg *gin.RouterGroup) {
	mismatches := rg.Group("/mismatches")
	{
		mismatches.GET("/pending", h.Pending)
		mismatches.GET("/invoice/:number", h.ByInvoice)
		mismatches.POST("/:id/resolve",
			middleware.RequireActor(),
			middleware.RequireRole(middleware.RoleAdmin),
			h.Resolve,
		)
	}
}

// AlertResponse is the transport shape of a mismatch alert
type AlertResponse struct {
	ID            uuid.UUID          `json:"id"`
	User          string             `json:"user"`
	Customer      string             `json:"customer"`
	InvoiceNumber string             `json:"invoice_number"`
	Step          string             `json:"step"`
	CustomerScan  invoice.ScanResult `json:"customer_scan"`
	PlantScan     invoice.ScanResult `json:"plant_scan"`
	Status        string             `json:"status"`
	ReviewedBy    string             `json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time         `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

func toAlertResponse(alert *mismatch.Alert) AlertResponse {
	return AlertResponse{
		ID:            alert.ID,
		User:          alert.User,
		Customer:      alert.Customer,
		InvoiceNumber: alert.InvoiceNumber,
		Step:          string(alert.Step),
		CustomerScan:  alert.CustomerScan,
		PlantScan:     alert.PlantScan,
		Status:        string(alert.Status),
		ReviewedBy:    alert.ReviewedBy,
		ReviewedAt:    alert.ReviewedAt,
		CreatedAt:     alert.CreatedAt,
	}
}

func toAlertResponses(alerts []mismatch.Alert) []AlertResponse {
	responses := make([]AlertResponse, 0, len(alerts))
	for i := range alerts {
		responses = append(responses, toAlertResponse(&alerts[i]))
	}
	return responses
}

// Pending returns unresolved alerts, oldest first
func (h *MismatchHandler) Pending(c *gin.Context) {
	alerts, err := h.mismatches.Pending(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toAlertResponses(alerts))
}

// ByInvoice returns all alerts raised against one invoice
func (h *MismatchHandler) ByInvoice(c *gin.Context) {
	alerts, err := h.mismatches.ByInvoice(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toAlertResponses(alerts))
}

// ResolveRequest is the body of POST /mismatches/:id/resolve
type ResolveRequest struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
}

// Resolve transitions a pending alert to approved or rejected and unblocks
// the invoice
func (h *MismatchHandler) Resolve(c *gin.Context) {
	alertID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidInput, "Alert id must be a UUID")
		return
	}

	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	alert, err := h.mismatches.Resolve(
		c.Request.Context(),
		alertID,
		mismatch.AlertStatus(req.Status),
		middleware.GetActorName(c),
	)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toAlertResponse(alert))
}
