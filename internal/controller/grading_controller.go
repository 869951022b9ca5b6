package controller

import (
	"errors"
	"strconv"

	"exam_portal_backend/internal/service"
	"exam_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GradingController struct {
	GradingService *service.GradingService
	ProctorService *service.ProctorService
}

func NewGradingController(gs *service.GradingService, ps *service.ProctorService) *GradingController {
	return &GradingController{GradingService: gs, ProctorService: ps}
}

func handleGradingErr(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrExamNotFound), errors.Is(err, util.ErrSessionNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrSessionNotInProgress):
		util.Conflict(ctx, "session not submitted yet")
	default:
		util.LogInternalError(ctx, err)
	}
}

// ListPending godoc
// @Summary List submissions awaiting manual grading
// @Tags grading
// @Produce json
// @Security BearerAuth
// @Param page query int false "page"
// @Param limit query int false "page size"
// @Success 200 {object} util.Response
// @Router /api/teacher/grading/pending [get]
func (c *GradingController) ListPending(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	rows, total, err := c.GradingService.ListPending(util.GetUserFromContext(ctx), page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: rows, Total: total, Page: page, Limit: limit})
}

// ListExamSessions godoc
// @Summary List submissions of one exam
// @Tags grading
// @Produce json
// @Security BearerAuth
// @Param id path string true "exam id"
// @Param page query int false "page"
// @Param limit query int false "page size"
// @Param studentName query string false "student name substring"
// @Param gradingStatus query string false "pending, partial or completed"
// @Success 200 {object} util.Response
// @Router /api/teacher/exams/{id}/sessions [get]
func (c *GradingController) ListExamSessions(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	rows, total, err := c.GradingService.ListByExam(
		util.GetUserFromContext(ctx),
		ctx.Param("id"),
		page, limit,
		ctx.Query("studentName"),
		ctx.Query("gradingStatus"),
	)
	if err != nil {
		handleGradingErr(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: rows, Total: total, Page: page, Limit: limit})
}

// GetDetail godoc
// @Summary Review one submission with question context
// @Tags grading
// @Produce json
// @Security BearerAuth
// @Param id path string true "session id"
// @Success 200 {object} util.Response{data=service.GradingDetail}
// @Failure 404 {object} util.Response
// @Router /api/teacher/grading/sessions/{id} [get]
func (c *GradingController) GetDetail(ctx *gin.Context) {
	detail, err := c.GradingService.GetDetail(util.GetUserFromContext(ctx), ctx.Param("id"))
	if err != nil {
		handleGradingErr(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// ApplyGrades godoc
// @Summary Merge manual grades into a submission
// @Tags grading
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "session id"
// @Param body body service.GradeReq true "marks and feedback per question"
// @Success 200 {object} util.Response{data=model.ExamSession}
// @Failure 409 {object} util.Response
// @Router /api/teacher/grading/sessions/{id} [patch]
func (c *GradingController) ApplyGrades(ctx *gin.Context) {
	var req service.GradeReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	session, err := c.GradingService.ApplyGrades(util.GetUserFromContext(ctx), ctx.Param("id"), req)
	if err != nil {
		handleGradingErr(ctx, err)
		return
	}
	util.Success(ctx, session)
}

// ListExamFlags godoc
// @Summary Flag counts per session for one exam
// @Tags grading
// @Produce json
// @Security BearerAuth
// @Param id path string true "exam id"
// @Success 200 {object} util.Response
// @Router /api/teacher/exams/{id}/proctor-flags [get]
func (c *GradingController) ListExamFlags(ctx *gin.Context) {
	rows, err := c.ProctorService.ExamFlagSummary(util.GetUserFromContext(ctx), ctx.Param("id"))
	if err != nil {
		handleGradingErr(ctx, err)
		return
	}
	util.Success(ctx, rows)
}

// ListSessionFlags godoc
// @Summary Integrity event log of one session
// @Tags grading
// @Produce json
// @Security BearerAuth
// @Param id path string true "session id"
// @Success 200 {object} util.Response
// @Router /api/teacher/grading/sessions/{id}/proctor-flags [get]
func (c *GradingController) ListSessionFlags(ctx *gin.Context) {
	flags, err := c.ProctorService.ListSessionFlags(util.GetUserFromContext(ctx), ctx.Param("id"))
	if err != nil {
		handleGradingErr(ctx, err)
		return
	}
	util.Success(ctx, flags)
}
