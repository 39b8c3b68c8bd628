package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-scheduler/internal/models"
	"github.com/noah-isme/course-scheduler/internal/service"
	appErrors "github.com/noah-isme/course-scheduler/pkg/errors"
	"github.com/noah-isme/course-scheduler/pkg/response"
)

// AcademicPeriodHandler handles academic period catalog endpoints.
type AcademicPeriodHandler struct {
	service *service.AcademicPeriodService
}

// NewAcademicPeriodHandler constructs an academic period handler.
func NewAcademicPeriodHandler(svc *service.AcademicPeriodService) *AcademicPeriodHandler {
	return &AcademicPeriodHandler{service: svc}
}

// List godoc
// @Summary List academic periods
// @Tags AcademicPeriods
// @Produce json
// @Param year query string false "Filter by academic year"
// @Param type query string false "Filter by period type"
// @Param active query bool false "Filter by active status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /academic-periods [get]
func (h *AcademicPeriodHandler) List(c *gin.Context) {
	filter := models.AcademicPeriodFilter{
		AcademicYear: c.Query("year"),
		Type:         models.AcademicPeriodType(c.Query("type")),
		SortBy:       c.Query("sort"),
		SortOrder:    c.Query("order"),
	}
	if active := c.Query("active"); active != "" {
		if val, err := strconv.ParseBool(active); err == nil {
			filter.IsActive = &val
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}

	periods, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, periods, pagination)
}

// Get godoc
// @Summary Get academic period by id
// @Tags AcademicPeriods
// @Produce json
// @Param id path string true "Academic period ID"
// @Success 200 {object} response.Envelope
// @Router /academic-periods/{id} [get]
func (h *AcademicPeriodHandler) Get(c *gin.Context) {
	period, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, period, nil)
}

// Active godoc
// @Summary Get the currently active academic period
// @Tags AcademicPeriods
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /academic-periods/active [get]
func (h *AcademicPeriodHandler) Active(c *gin.Context) {
	period, err := h.service.Active(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, period, nil)
}

// Create godoc
// @Summary Create academic period
// @Tags AcademicPeriods
// @Accept json
// @Produce json
// @Param payload body service.CreateAcademicPeriodRequest true "Academic period payload"
// @Success 201 {object} response.Envelope
// @Router /academic-periods [post]
func (h *AcademicPeriodHandler) Create(c *gin.Context) {
	var req service.CreateAcademicPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	period, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, period)
}

// Update godoc
// @Summary Update academic period
// @Tags AcademicPeriods
// @Accept json
// @Produce json
// @Param id path string true "Academic period ID"
// @Param payload body service.UpdateAcademicPeriodRequest true "Academic period payload"
// @Success 200 {object} response.Envelope
// @Router /academic-periods/{id} [put]
func (h *AcademicPeriodHandler) Update(c *gin.Context) {
	var req service.UpdateAcademicPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	period, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, period, nil)
}

// Activate godoc
// @Summary Activate an academic period
// @Tags AcademicPeriods
// @Param id path string true "Academic period ID"
// @Success 204
// @Router /academic-periods/{id}/activate [post]
func (h *AcademicPeriodHandler) Activate(c *gin.Context) {
	if err := h.service.Activate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete godoc
// @Summary Delete academic period
// @Tags AcademicPeriods
// @Param id path string true "Academic period ID"
// @Success 204
// @Router /academic-periods/{id} [delete]
func (h *AcademicPeriodHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
