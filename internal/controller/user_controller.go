package controller

import (
	"errors"
	"strconv"

	"exam_portal_backend/internal/model"
	"exam_portal_backend/internal/repository"
	"exam_portal_backend/internal/service"
	"exam_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UserController is the admin-facing account management surface.
type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// ListUsers godoc
// @Summary List accounts
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param role query string false "filter by role"
// @Param departmentId query int false "filter by department"
// @Param name query string false "name substring"
// @Param page query int false "page"
// @Param limit query int false "page size"
// @Success 200 {object} util.Response
// @Router /api/admin/users [get]
func (c *UserController) ListUsers(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	f := repository.UserFilter{
		InstitutionID: claims.InstitutionID,
		Role:          model.UserRole(ctx.Query("role")),
		Name:          ctx.Query("name"),
	}
	if v := ctx.Query("departmentId"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			deptID := uint(id)
			f.DepartmentID = &deptID
		}
	}
	f.Page, _ = strconv.Atoi(ctx.DefaultQuery("page", "1"))
	f.Limit, _ = strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	users, total, err := c.UserService.ListUsers(f)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	for i := range users {
		users[i].Password = ""
	}
	util.Success(ctx, util.PageResponse{List: users, Total: total, Page: f.Page, Limit: f.Limit})
}

// GetUser godoc
// @Summary Get one account
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "user id"
// @Success 200 {object} util.Response{data=model.User}
// @Failure 404 {object} util.Response
// @Router /api/admin/users/{id} [get]
func (c *UserController) GetUser(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	user, err := c.UserService.GetUser(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	if user.InstitutionID != claims.InstitutionID {
		util.NotFound(ctx)
		return
	}
	user.Password = ""
	util.Success(ctx, user)
}

// UpdateUser godoc
// @Summary Update an account
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "user id"
// @Param body body service.UserUpdateReq true "fields to change"
// @Success 200 {object} util.Response{data=model.User}
// @Failure 404 {object} util.Response
// @Router /api/admin/users/{id} [put]
func (c *UserController) UpdateUser(ctx *gin.Context) {
	var req service.UserUpdateReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if req.Role != nil {
		switch *req.Role {
		case model.Student, model.Teacher, model.Admin:
		default:
			util.BadRequest(ctx, "invalid role")
			return
		}
	}

	user, err := c.UserService.UpdateUser(util.MustParseUint(ctx.Param("id")), req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	user.Password = ""
	util.Success(ctx, user)
}

// DeleteUser godoc
// @Summary Delete an account
// @Tags admin
// @Security BearerAuth
// @Param id path int true "user id"
// @Success 200 {object} util.Response
// @Router /api/admin/users/{id} [delete]
func (c *UserController) DeleteUser(ctx *gin.Context) {
	if err := c.UserService.DeleteUser(util.MustParseUint(ctx.Param("id"))); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

type disableRequest struct {
	Disabled bool `json:"disabled"`
}

// SetDisabled godoc
// @Summary Disable or re-enable an account
// @Tags admin
// @Accept json
// @Security BearerAuth
// @Param id path int true "user id"
// @Param body body disableRequest true "disabled flag"
// @Success 200 {object} util.Response
// @Router /api/admin/users/{id}/disable [patch]
func (c *UserController) SetDisabled(ctx *gin.Context) {
	var req disableRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.UserService.SetDisabled(util.MustParseUint(ctx.Param("id")), req.Disabled); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

type resetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=8"`
}

// ResetPassword godoc
// @Summary Reset an account password
// @Tags admin
// @Accept json
// @Security BearerAuth
// @Param id path int true "user id"
// @Param body body resetPasswordRequest true "new password"
// @Success 200 {object} util.Response
// @Router /api/admin/users/{id}/reset-password [patch]
func (c *UserController) ResetPassword(ctx *gin.Context) {
	var req resetPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.UserService.ResetPassword(util.MustParseUint(ctx.Param("id")), req.Password); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
