package handler

import (
	"io"
	"strings"

	"github.com/gatetrack/backend/internal/application/ingest"
	"github.com/gatetrack/backend/internal/domain/schedule"
	"github.com/gatetrack/backend/internal/infrastructure/tabular"
	"github.com/gatetrack/backend/internal/interfaces/http/dto"
	"github.com/gatetrack/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// ScheduleHandler handles delivery schedule endpoints
type ScheduleHandler struct {
	BaseHandler
	ingest *ingest.Service
}

// NewScheduleHandler creates a new ScheduleHandler
func NewScheduleHandler(ingestService *ingest.Service) *ScheduleHandler {
	return &ScheduleHandler{ingest: ingestService}
}

// RegisterRoutes registers schedule routes
func (h *ScheduleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sched := rg.Group("/schedule")
	{
		sched.POST("/upload", middleware.RequireActor(), h.Upload)
		sched.GET("", h.Get)
	}
}

// UploadScheduleRequest is the JSON body of POST /schedule/upload
type UploadScheduleRequest struct {
	Rows []ingest.ScheduleRow `json:"rows" binding:"required,min=1"`
}

// Upload replaces the active schedule. Accepts either a multipart file
// (.xlsx or .csv) or a JSON body of pre-parsed rows.
func (h *ScheduleHandler) Upload(c *gin.Context) {
	var rows []ingest.ScheduleRow

	if strings.HasPrefix(c.ContentType(), "multipart/") {
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
		rows, err = tabular.ExtractScheduleRows(header.Filename, data)
		if err != nil {
			h.Error(c, 400, dto.ErrCodeValidation, err.Error())
			return
		}
	} else {
		var req UploadScheduleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.HandleBindingError(c, err)
			return
		}
		rows = req.Rows
	}

	count, err := h.ingest.UploadSchedule(c.Request.Context(), rows)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, gin.H{"items": count})
}

// ScheduleItemResponse is the transport shape of a schedule row
type ScheduleItemResponse struct {
	CustomerCode string `json:"customer_code"`
	PartNumber   string `json:"part_number"`
	SNP          int    `json:"snp"`
	BinCapacity  int    `json:"bin_capacity"`
	SheetName    string `json:"sheet_name,omitempty"`
	DeliveryDate string `json:"delivery_date,omitempty"`
	DeliveryTime string `json:"delivery_time,omitempty"`
	Plant        string `json:"plant,omitempty"`
}

// Get returns the active schedule
func (h *ScheduleHandler) Get(c *gin.Context) {
	items, err := h.ingest.ActiveSchedule(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toScheduleResponses(items))
}

func toScheduleResponses(items []schedule.Item) []ScheduleItemResponse {
	responses := make([]ScheduleItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, ScheduleItemResponse{
			CustomerCode: item.CustomerCode,
			PartNumber:   item.PartNumber,
			SNP:          item.SNP,
			BinCapacity:  item.BinCapacity,
			SheetName:    item.SheetName,
			DeliveryDate: item.DeliveryDate,
			DeliveryTime: item.DeliveryTime,
			Plant:        item.Plant,
		})
	}
	return responses
}
