package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-scheduler/internal/engine"
	"github.com/noah-isme/course-scheduler/internal/service"
	appErrors "github.com/noah-isme/course-scheduler/pkg/errors"
	"github.com/noah-isme/course-scheduler/pkg/response"
)

// ScheduleHandler exposes the scheduling engine over HTTP.
type ScheduleHandler struct {
	scheduling *service.SchedulingService
	export     *service.ExportService
}

// NewScheduleHandler constructs a ScheduleHandler.
func NewScheduleHandler(scheduling *service.SchedulingService, export *service.ExportService) *ScheduleHandler {
	return &ScheduleHandler{scheduling: scheduling, export: export}
}

// Generate godoc
// @Summary Generate a weekly schedule for a student
// @Tags Scheduling
// @Accept json
// @Produce json
// @Param payload body service.GenerateScheduleRequest true "Generation request"
// @Success 200 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Router /schedules/generate [post]
func (h *ScheduleHandler) Generate(c *gin.Context) {
	if h.scheduling == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "scheduling service not configured"))
		return
	}
	var req service.GenerateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid schedule request"))
		return
	}

	if req.Async || req.OptimizationLevel == string(engine.LevelHigh) {
		jobID, err := h.scheduling.GenerateAsync(c.Request.Context(), req)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusAccepted, gin.H{"job_id": jobID, "status": "pending"}, nil)
		return
	}

	result, err := h.scheduling.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// JobStatus godoc
// @Summary Get the status of an asynchronous schedule generation job
// @Tags Scheduling
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/jobs/{id} [get]
func (h *ScheduleHandler) JobStatus(c *gin.Context) {
	if h.scheduling == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "scheduling service not configured"))
		return
	}
	state, err := h.scheduling.JobStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state, nil)
}

// ExportRequest captures the export format for a previously generated
// schedule job.
type ExportRequest struct {
	JobID  string `json:"job_id" validate:"required"`
	Format string `json:"format" validate:"required,oneof=csv pdf"`
}

// Export godoc
// @Summary Render a completed schedule job as a downloadable file
// @Tags Scheduling
// @Accept json
// @Produce json
// @Param payload body ExportRequest true "Export request"
// @Success 200 {object} response.Envelope
// @Router /schedules/export [post]
func (h *ScheduleHandler) Export(c *gin.Context) {
	if h.scheduling == nil || h.export == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "export is not configured"))
		return
	}
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export request"))
		return
	}

	state, err := h.scheduling.JobStatus(c.Request.Context(), req.JobID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if state.Status != "completed" || state.Result == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrPreconditionFailed, "schedule job has not completed"))
		return
	}

	exported, err := h.export.Generate(req.JobID, state.Result, service.ExportFormat(req.Format))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render schedule export"))
		return
	}
	response.JSON(c, http.StatusOK, exported, nil)
}

// Download godoc
// @Summary Download a rendered schedule export via its signed token
// @Tags Scheduling
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Router /schedules/export/{token} [get]
func (h *ScheduleHandler) Download(c *gin.Context) {
	if h.export == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "export is not configured"))
		return
	}
	token := c.Param("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token required"))
		return
	}

	_, relPath, _, err := h.export.ParseToken(token, false)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token"))
		return
	}

	file, err := h.export.Open(relPath)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "export file not found"))
		return
	}
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read export metadata"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", relPath))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), mimeForExportPath(relPath), file, nil)
}

func mimeForExportPath(relPath string) string {
	if strings.HasSuffix(relPath, ".pdf") {
		return "application/pdf"
	}
	return "text/csv"
}
