package controller

import (
	"errors"

	"exam_portal_backend/internal/service"
	"exam_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	AnalyticsService *service.AnalyticsService
}

func NewAnalyticsController(as *service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{AnalyticsService: as}
}

// ExamAnalytics godoc
// @Summary Score statistics and distribution for one exam
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param id path string true "exam id"
// @Success 200 {object} util.Response{data=service.ExamAnalytics}
// @Failure 404 {object} util.Response
// @Router /api/teacher/analytics/exams/{id} [get]
func (c *AnalyticsController) ExamAnalytics(ctx *gin.Context) {
	report, err := c.AnalyticsService.ExamAnalytics(util.GetUserFromContext(ctx), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrExamNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, report)
}

// Overview godoc
// @Summary Institution-wide dashboard numbers
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.InstitutionOverview}
// @Router /api/teacher/analytics/overview [get]
func (c *AnalyticsController) Overview(ctx *gin.Context) {
	overview, err := c.AnalyticsService.InstitutionOverview(util.GetUserFromContext(ctx))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, overview)
}
