package handler

import (
	"time"

	dispatchapp "github.com/gatetrack/backend/internal/application/dispatch"
	"github.com/gatetrack/backend/internal/domain/dispatch"
	"github.com/gatetrack/backend/internal/interfaces/http/dto"
	"github.com/gatetrack/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DispatchHandler handles loading session and gatepass endpoints
type DispatchHandler struct {
	BaseHandler
	dispatch *dispatchapp.Service
}

// NewDispatchHandler creates a new DispatchHandler
func NewDispatchHandler(dispatchService *dispatchapp.Service) *DispatchHandler {
	return &DispatchHandler{dispatch: dispatchService}
}

// RegisterRoutes registers dispatch routes
func (h *DispatchHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sessions := rg.Group("/dispatch/sessions")
	sessions.Use(middleware.RequireActor())
	{
		sessions.POST("", h.StartSession)
		sessions.GET("/:id", h.GetSession)
		sessions.POST("/:id/invoices", h.SelectInvoice)
		sessions.DELETE("/:id/invoices/:number", h.DeselectInvoice)
		sessions.POST("/:id/scan", h.SubmitScan)
		sessions.POST("/:id/gatepass", h.GenerateGatepass)
	}
}

// SelectedInvoiceResponse is one invoice selected into a session
type SelectedInvoiceResponse struct {
	Number       string `json:"number"`
	Customer     string `json:"customer"`
	ExpectedBins int    `json:"expected_bins"`
}

// SessionResponse is the transport shape of a loading session
type SessionResponse struct {
	ID            uuid.UUID                 `json:"id"`
	State         string                    `json:"state"`
	Customer      string                    `json:"customer,omitempty"`
	StartedBy     string                    `json:"started_by"`
	Selected      []SelectedInvoiceResponse `json:"selected"`
	Loaded        []dispatch.LoadedBin      `json:"loaded"`
	LoadedCount   int                       `json:"loaded_count"`
	ExpectedCount int                       `json:"expected_count"`
	Gatepass      *dispatch.Gatepass        `json:"gatepass,omitempty"`
	CreatedAt     time.Time                 `json:"created_at"`
	UpdatedAt     time.Time                 `json:"updated_at"`
}

func toSessionResponse(session *dispatch.LoadingSession) SessionResponse {
	resp := SessionResponse{
		ID:            session.ID,
		State:         session.State.String(),
		Customer:      session.Customer,
		StartedBy:     session.StartedBy,
		Selected:      make([]SelectedInvoiceResponse, 0, len(session.Selected)),
		Loaded:        session.Loaded,
		LoadedCount:   session.LoadedCount(),
		ExpectedCount: session.ExpectedCount(),
		Gatepass:      session.Gatepass,
		CreatedAt:     session.CreatedAt,
		UpdatedAt:     session.UpdatedAt,
	}
	for _, sel := range session.Selected {
		resp.Selected = append(resp.Selected, SelectedInvoiceResponse{
			Number:       sel.Number,
			Customer:     sel.Customer,
			ExpectedBins: sel.ExpectedBins,
		})
	}
	return resp
}

// StartSession starts a fresh loading session
func (h *DispatchHandler) StartSession(c *gin.Context) {
	session, err := h.dispatch.StartSession(c.Request.Context(), middleware.GetActorName(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toSessionResponse(session))
}

// GetSession returns one session by id
func (h *DispatchHandler) GetSession(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	session, err := h.dispatch.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSessionResponse(session))
}

// SelectInvoiceRequest is the body of POST /dispatch/sessions/:id/invoices
type SelectInvoiceRequest struct {
	InvoiceNumber string `json:"invoice_number" binding:"required"`
}

// SelectInvoice adds an audited invoice to the session
func (h *DispatchHandler) SelectInvoice(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req SelectInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	session, err := h.dispatch.SelectInvoice(c.Request.Context(), sessionID, req.InvoiceNumber)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSessionResponse(session))
}

// DeselectInvoice removes an invoice from the session
func (h *DispatchHandler) DeselectInvoice(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	session, err := h.dispatch.DeselectInvoice(c.Request.Context(), sessionID, c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSessionResponse(session))
}

// SubmitLoadScanRequest is the body of POST /dispatch/sessions/:id/scan
type SubmitLoadScanRequest struct {
	CustomerScan ScanRequest `json:"customer_scan" binding:"required"`
	MatchedScan  ScanRequest `json:"matched_scan" binding:"required"`
}

// SubmitScan reconciles one loading-stage scan pair against the session's
// expected set
func (h *DispatchHandler) SubmitScan(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req SubmitLoadScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	result, err := h.dispatch.SubmitLoadScan(
		c.Request.Context(),
		sessionID,
		toScanResult(req.CustomerScan),
		toScanResult(req.MatchedScan),
		middleware.GetActorName(c),
	)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GenerateGatepassRequest is the body of POST /dispatch/sessions/:id/gatepass
type GenerateGatepassRequest struct {
	VehicleNumber string `json:"vehicle_number" binding:"required,vehicle"`
}

// GenerateGatepass dispatches every selected invoice and returns the gatepass
func (h *DispatchHandler) GenerateGatepass(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req GenerateGatepassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	gatepass, err := h.dispatch.GenerateGatepass(
		c.Request.Context(),
		sessionID,
		req.VehicleNumber,
		middleware.GetActorName(c),
	)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, gatepass)
}

func (h *DispatchHandler) sessionID(c *gin.Context) (uuid.UUID, bool) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidInput, "Session id must be a UUID")
		return uuid.Nil, false
	}
	return sessionID, true
}
