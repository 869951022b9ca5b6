package controller

import (
	"errors"

	"exam_portal_backend/internal/service"
	"exam_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// AdminController holds the destructive operations kept off the teacher
// surface.
type AdminController struct {
	GradingService   *service.GradingService
	AnalyticsService *service.AnalyticsService
}

func NewAdminController(gs *service.GradingService, as *service.AnalyticsService) *AdminController {
	return &AdminController{GradingService: gs, AnalyticsService: as}
}

// PurgeExamSessions godoc
// @Summary Delete every attempt at an exam
// @Tags admin
// @Security BearerAuth
// @Param id path string true "exam id"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/admin/exams/{id}/sessions [delete]
func (c *AdminController) PurgeExamSessions(ctx *gin.Context) {
	err := c.GradingService.PurgeExamSessions(util.GetUserFromContext(ctx), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrExamNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

// Overview godoc
// @Summary Institution dashboard for admins
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.InstitutionOverview}
// @Router /api/admin/analytics/overview [get]
func (c *AdminController) Overview(ctx *gin.Context) {
	overview, err := c.AnalyticsService.InstitutionOverview(util.GetUserFromContext(ctx))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, overview)
}
