package controller

import (
	"errors"

	"exam_portal_backend/internal/service"
	"exam_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// StudentExamController is the exam-taking surface: catalogue, attempt
// lifecycle, autosave, proctor events and results.
type StudentExamController struct {
	SessionService *service.ExamSessionService
	ProctorService *service.ProctorService
}

func NewStudentExamController(ss *service.ExamSessionService, ps *service.ProctorService) *StudentExamController {
	return &StudentExamController{SessionService: ss, ProctorService: ps}
}

func handleSessionErr(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrExamNotFound), errors.Is(err, util.ErrSessionNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrExamNotPublished), errors.Is(err, util.ErrExamNotOpen):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrAlreadySubmitted):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrSessionNotInProgress):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, service.ErrInvalidFlagKind):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// ListAvailable godoc
// @Summary List exams the student can take
// @Tags student
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/student/exams [get]
func (c *StudentExamController) ListAvailable(ctx *gin.Context) {
	rows, err := c.SessionService.ListAvailableExams(util.GetUserFromContext(ctx))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, rows)
}

// GetExam godoc
// @Summary Get one available exam
// @Tags student
// @Produce json
// @Security BearerAuth
// @Param id path string true "exam id"
// @Success 200 {object} util.Response{data=service.AvailableExamRow}
// @Failure 404 {object} util.Response
// @Router /api/student/exams/{id} [get]
func (c *StudentExamController) GetExam(ctx *gin.Context) {
	row, err := c.SessionService.GetAvailableExam(util.GetUserFromContext(ctx), ctx.Param("id"))
	if err != nil {
		handleSessionErr(ctx, err)
		return
	}
	util.Success(ctx, row)
}

// StartExam godoc
// @Summary Start or resume the attempt
// @Tags student
// @Produce json
// @Security BearerAuth
// @Param id path string true "exam id"
// @Success 200 {object} util.Response{data=service.StartedSession}
// @Failure 403 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/student/exams/{id}/start [post]
func (c *StudentExamController) StartExam(ctx *gin.Context) {
	started, err := c.SessionService.StartExam(ctx.Request.Context(), util.GetUserFromContext(ctx), ctx.Param("id"))
	if err != nil {
		handleSessionErr(ctx, err)
		return
	}
	util.Success(ctx, started)
}

// SaveAnswers godoc
// @Summary Autosave in-progress answers
// @Tags student
// @Accept json
// @Security BearerAuth
// @Param id path string true "session id"
// @Param body body service.SaveAnswersReq true "answer map keyed by question id"
// @Success 200 {object} util.Response
// @Router /api/student/sessions/{id}/answers [put]
func (c *StudentExamController) SaveAnswers(ctx *gin.Context) {
	var req service.SaveAnswersReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	err := c.SessionService.SaveAnswers(ctx.Request.Context(), util.GetUserFromContext(ctx), ctx.Param("id"), req)
	if err != nil {
		handleSessionErr(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// SubmitExam godoc
// @Summary Submit the attempt for grading
// @Tags student
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "exam id"
// @Param body body service.SubmitReq true "final answers"
// @Success 200 {object} util.Response{data=model.ExamSession}
// @Failure 409 {object} util.Response
// @Router /api/student/exams/{id}/submit [post]
func (c *StudentExamController) SubmitExam(ctx *gin.Context) {
	var req service.SubmitReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	session, err := c.SessionService.SubmitByExam(ctx.Request.Context(), util.GetUserFromContext(ctx), ctx.Param("id"), req)
	if err != nil {
		handleSessionErr(ctx, err)
		return
	}
	util.Success(ctx, session)
}

// RecordProctorFlag godoc
// @Summary Report an integrity event on the own attempt
// @Tags student
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "session id"
// @Param body body service.FlagReq true "event"
// @Success 201 {object} util.Response{data=model.ProctorFlag}
// @Router /api/student/sessions/{id}/proctor-flags [post]
func (c *StudentExamController) RecordProctorFlag(ctx *gin.Context) {
	var req service.FlagReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	flag, err := c.ProctorService.RecordFlag(ctx.Request.Context(), util.GetUserFromContext(ctx), ctx.Param("id"), req)
	if err != nil {
		handleSessionErr(ctx, err)
		return
	}
	util.Created(ctx, flag)
}

// ListResults godoc
// @Summary List the student's submitted attempts
// @Tags student
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/student/results [get]
func (c *StudentExamController) ListResults(ctx *gin.Context) {
	sessions, err := c.SessionService.ListMyResults(util.GetUserFromContext(ctx))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, sessions)
}

// GetResult godoc
// @Summary Get one attempt's result
// @Tags student
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "session id"
// @Success 200 {object} util.Response{data=service.SessionResult}
// @Failure 404 {object} util.Response
// @Router /api/student/results/{sessionId} [get]
func (c *StudentExamController) GetResult(ctx *gin.Context) {
	result, err := c.SessionService.GetResult(util.GetUserFromContext(ctx), ctx.Param("sessionId"))
	if err != nil {
		handleSessionErr(ctx, err)
		return
	}
	util.Success(ctx, result)
}
