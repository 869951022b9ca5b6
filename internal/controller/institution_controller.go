package controller

import (
	"errors"
	"strconv"

	"exam_portal_backend/internal/service"
	"exam_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type InstitutionController struct {
	InstitutionService *service.InstitutionService
}

func NewInstitutionController(s *service.InstitutionService) *InstitutionController {
	return &InstitutionController{InstitutionService: s}
}

// CreateInstitution godoc
// @Summary Create an institution
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.InstitutionCreateReq true "institution"
// @Success 201 {object} util.Response{data=model.Institution}
// @Failure 409 {object} util.Response
// @Router /api/admin/institutions [post]
func (c *InstitutionController) CreateInstitution(ctx *gin.Context) {
	var req service.InstitutionCreateReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	inst, err := c.InstitutionService.CreateInstitution(req)
	if err != nil {
		if errors.Is(err, util.ErrInstitutionCodeTaken) {
			util.Conflict(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, inst)
}

// ListInstitutions godoc
// @Summary List institutions
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/admin/institutions [get]
func (c *InstitutionController) ListInstitutions(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "50"))

	insts, total, err := c.InstitutionService.ListInstitutions(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: insts, Total: total, Page: page, Limit: limit})
}

// GetInstitution godoc
// @Summary Get one institution
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "institution id"
// @Success 200 {object} util.Response{data=model.Institution}
// @Failure 404 {object} util.Response
// @Router /api/admin/institutions/{id} [get]
func (c *InstitutionController) GetInstitution(ctx *gin.Context) {
	inst, err := c.InstitutionService.GetInstitution(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		if errors.Is(err, util.ErrInstitutionNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, inst)
}

// UpdateInstitution godoc
// @Summary Update an institution
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "institution id"
// @Param body body service.InstitutionUpdateReq true "fields to change"
// @Success 200 {object} util.Response{data=model.Institution}
// @Router /api/admin/institutions/{id} [put]
func (c *InstitutionController) UpdateInstitution(ctx *gin.Context) {
	var req service.InstitutionUpdateReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	inst, err := c.InstitutionService.UpdateInstitution(util.MustParseUint(ctx.Param("id")), req)
	if err != nil {
		if errors.Is(err, util.ErrInstitutionNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, inst)
}

// CreateDepartment godoc
// @Summary Create a department
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "institution id"
// @Param body body service.DepartmentCreateReq true "department"
// @Success 201 {object} util.Response{data=model.Department}
// @Router /api/admin/institutions/{id}/departments [post]
func (c *InstitutionController) CreateDepartment(ctx *gin.Context) {
	var req service.DepartmentCreateReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	dept, err := c.InstitutionService.CreateDepartment(util.MustParseUint(ctx.Param("id")), req)
	if err != nil {
		if errors.Is(err, util.ErrInstitutionNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, dept)
}

// ListDepartments godoc
// @Summary List departments of an institution
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "institution id"
// @Success 200 {object} util.Response
// @Router /api/admin/institutions/{id}/departments [get]
func (c *InstitutionController) ListDepartments(ctx *gin.Context) {
	depts, err := c.InstitutionService.ListDepartments(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, depts)
}

// DeleteDepartment godoc
// @Summary Delete a department
// @Tags admin
// @Security BearerAuth
// @Param id path int true "institution id"
// @Param deptId path int true "department id"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/admin/institutions/{id}/departments/{deptId} [delete]
func (c *InstitutionController) DeleteDepartment(ctx *gin.Context) {
	err := c.InstitutionService.DeleteDepartment(
		util.MustParseUint(ctx.Param("id")),
		util.MustParseUint(ctx.Param("deptId")),
	)
	if err != nil {
		if errors.Is(err, util.ErrDepartmentNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}
