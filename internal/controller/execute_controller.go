package controller

import (
	"errors"

	"exam_portal_backend/internal/service"
	"exam_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ExecuteController proxies code runs to the judge backend.
type ExecuteController struct {
	JudgeService *service.JudgeService
}

func NewExecuteController(js *service.JudgeService) *ExecuteController {
	return &ExecuteController{JudgeService: js}
}

// Execute godoc
// @Summary Run code against stdin
// @Tags execute
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.ExecuteReq true "language, source and stdin"
// @Success 200 {object} util.Response{data=service.ExecuteResult}
// @Failure 400 {object} util.Response
// @Failure 502 {object} util.Response
// @Router /api/execute [post]
func (c *ExecuteController) Execute(ctx *gin.Context) {
	var req service.ExecuteReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.JudgeService.Execute(ctx.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedLanguage):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, service.ErrJudgeUnavailable):
			util.Error(ctx, 502, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, result)
}

// Languages godoc
// @Summary List runnable languages
// @Tags execute
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/execute/languages [get]
func (c *ExecuteController) Languages(ctx *gin.Context) {
	util.Success(ctx, service.SupportedLanguages())
}
