package handler

import (
	"time"

	activityapp "github.com/gatetrack/backend/internal/application/activity"
	"github.com/gatetrack/backend/internal/domain/activity"
	"github.com/gatetrack/backend/internal/domain/shared"
	"github.com/gatetrack/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ActivityHandler handles activity log endpoints
type ActivityHandler struct {
	BaseHandler
	activity *activityapp.Service
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(activityService *activityapp.Service) *ActivityHandler {
	return &ActivityHandler{activity: activityService}
}

// RegisterRoutes registers activity routes
func (h *ActivityHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/activity", h.List)
}

// LogEntryResponse is the transport shape of an activity entry
type LogEntryResponse struct {
	ID        uuid.UUID `json:"id"`
	User      string    `json:"user"`
	Action    string    `json:"action"`
	Details   string    `json:"details,omitempty"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// List returns activity entries, newest first, optionally filtered by type
func (h *ActivityHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}
	req = req.WithDefaults()

	filter := shared.Filter{Page: req.Page, PageSize: req.PageSize}

	var entries []activity.LogEntry
	var err error
	if typ := c.Query("type"); typ != "" {
		entries, err = h.activity.ByType(c.Request.Context(), activity.Type(typ), filter)
	} else {
		entries, err = h.activity.All(c.Request.Context(), filter)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]LogEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, LogEntryResponse{
			ID:        entry.ID,
			User:      entry.User,
			Action:    entry.Action,
			Details:   entry.Details,
			Type:      entry.Type.String(),
			CreatedAt: entry.CreatedAt,
		})
	}
	h.SuccessWithMeta(c, responses, req.Page, req.PageSize, len(responses))
}
