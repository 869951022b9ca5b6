package controller

import (
	"errors"
	"strconv"

	"exam_portal_backend/internal/service"
	"exam_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ExamController is the teacher-facing authoring surface.
type ExamController struct {
	ExamService    *service.ExamService
	StorageService *service.StorageService
}

func NewExamController(es *service.ExamService, ss *service.StorageService) *ExamController {
	return &ExamController{ExamService: es, StorageService: ss}
}

func handleExamErr(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrExamNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, service.ErrInvalidQuestion):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// CreateExam godoc
// @Summary Create an exam draft
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.ExamCreateReq true "exam"
// @Success 201 {object} util.Response{data=model.Exam}
// @Router /api/teacher/exams [post]
func (c *ExamController) CreateExam(ctx *gin.Context) {
	var req service.ExamCreateReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	exam, err := c.ExamService.CreateExam(util.GetUserFromContext(ctx), req)
	if err != nil {
		handleExamErr(ctx, err)
		return
	}
	util.Created(ctx, exam)
}

// ListExams godoc
// @Summary List exams the caller manages
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param page query int false "page"
// @Param limit query int false "page size"
// @Success 200 {object} util.Response
// @Router /api/teacher/exams [get]
func (c *ExamController) ListExams(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	exams, total, err := c.ExamService.ListExams(util.GetUserFromContext(ctx), page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: exams, Total: total, Page: page, Limit: limit})
}

// GetExam godoc
// @Summary Get an exam with its questions
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param id path string true "exam id"
// @Success 200 {object} util.Response{data=service.ExamDetail}
// @Failure 404 {object} util.Response
// @Router /api/teacher/exams/{id} [get]
func (c *ExamController) GetExam(ctx *gin.Context) {
	detail, err := c.ExamService.GetExam(util.GetUserFromContext(ctx), ctx.Param("id"))
	if err != nil {
		handleExamErr(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// UpdateExam godoc
// @Summary Update exam metadata
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "exam id"
// @Param body body service.ExamUpdateReq true "fields to change"
// @Success 200 {object} util.Response{data=model.Exam}
// @Router /api/teacher/exams/{id} [put]
func (c *ExamController) UpdateExam(ctx *gin.Context) {
	var req service.ExamUpdateReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	exam, err := c.ExamService.UpdateExam(util.GetUserFromContext(ctx), ctx.Param("id"), req)
	if err != nil {
		handleExamErr(ctx, err)
		return
	}
	util.Success(ctx, exam)
}

// DeleteExam godoc
// @Summary Delete an exam and everything under it
// @Tags exams
// @Security BearerAuth
// @Param id path string true "exam id"
// @Success 200 {object} util.Response
// @Router /api/teacher/exams/{id} [delete]
func (c *ExamController) DeleteExam(ctx *gin.Context) {
	if err := c.ExamService.DeleteExam(util.GetUserFromContext(ctx), ctx.Param("id")); err != nil {
		handleExamErr(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

type publishRequest struct {
	Published bool `json:"published"`
}

// SetPublished godoc
// @Summary Publish or unpublish an exam
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "exam id"
// @Param body body publishRequest true "publish flag"
// @Success 200 {object} util.Response{data=model.Exam}
// @Router /api/teacher/exams/{id}/publish [patch]
func (c *ExamController) SetPublished(ctx *gin.Context) {
	var req publishRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	exam, err := c.ExamService.SetPublished(util.GetUserFromContext(ctx), ctx.Param("id"), req.Published)
	if err != nil {
		handleExamErr(ctx, err)
		return
	}
	util.Success(ctx, exam)
}

// AddQuestion godoc
// @Summary Append a question to an exam
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "exam id"
// @Param body body service.QuestionReq true "question"
// @Success 201 {object} util.Response{data=model.ExamQuestion}
// @Router /api/teacher/exams/{id}/questions [post]
func (c *ExamController) AddQuestion(ctx *gin.Context) {
	var req service.QuestionReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	q, err := c.ExamService.AddQuestion(util.GetUserFromContext(ctx), ctx.Param("id"), req)
	if err != nil {
		handleExamErr(ctx, err)
		return
	}
	util.Created(ctx, q)
}

// ReplaceQuestions godoc
// @Summary Replace the full question list of an exam
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "exam id"
// @Param body body []service.QuestionReq true "ordered question list"
// @Success 200 {object} util.Response
// @Router /api/teacher/exams/{id}/questions [put]
func (c *ExamController) ReplaceQuestions(ctx *gin.Context) {
	var reqs []service.QuestionReq
	if err := ctx.ShouldBindJSON(&reqs); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	questions, err := c.ExamService.ReplaceQuestions(util.GetUserFromContext(ctx), ctx.Param("id"), reqs)
	if err != nil {
		handleExamErr(ctx, err)
		return
	}
	util.Success(ctx, questions)
}

// DeleteQuestion godoc
// @Summary Delete one question
// @Tags exams
// @Security BearerAuth
// @Param id path string true "exam id"
// @Param questionId path string true "question id"
// @Success 200 {object} util.Response
// @Router /api/teacher/exams/{id}/questions/{questionId} [delete]
func (c *ExamController) DeleteQuestion(ctx *gin.Context) {
	err := c.ExamService.DeleteQuestion(util.GetUserFromContext(ctx), ctx.Param("id"), ctx.Param("questionId"))
	if err != nil {
		handleExamErr(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// UploadAttachment godoc
// @Summary Upload a question attachment
// @Tags exams
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "attachment"
// @Success 201 {object} util.Response
// @Router /api/teacher/attachments [post]
func (c *ExamController) UploadAttachment(ctx *gin.Context) {
	header, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "missing file")
		return
	}
	file, err := header.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	url, err := c.StorageService.UploadAttachment(
		ctx.Request.Context(),
		header.Filename,
		file,
		header.Size,
		header.Header.Get("Content-Type"),
	)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"url": url})
}
