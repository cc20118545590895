package controller

import (
	"errors"

	"speech_therapy_backend/internal/service"
	"speech_therapy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ChildController struct {
	childService *service.ChildService
}

func NewChildController(childService *service.ChildService) *ChildController {
	return &ChildController{childService: childService}
}

type ChildRequest struct {
	Name      string `json:"name" binding:"required"`
	Age       int    `json:"age" binding:"required,min=1,max=18"`
	Diagnosis string `json:"diagnosis"`
	Notes     string `json:"notes"`
}

// Create 新建孩子档案
// @Summary 新建孩子
// @Tags children
// @Accept json
// @Produce json
// @Param request body ChildRequest true "孩子信息"
// @Success 201 {object} util.Response
// @Router /api/children [post]
// @Security ApiKeyAuth
func (ctl *ChildController) Create(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req ChildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	child, err := ctl.childService.CreateChild(claims.UserID, req.Name, req.Age, req.Diagnosis, req.Notes)
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	util.Created(c, child)
}

// List 当前陪护人名下的孩子列表
// @Summary 孩子列表
// @Tags children
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/children [get]
// @Security ApiKeyAuth
func (ctl *ChildController) List(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	children, err := ctl.childService.ListChildren(claims.UserID)
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, children)
}

// Get 孩子详情
// @Summary 孩子详情
// @Tags children
// @Produce json
// @Param id path string true "孩子ID"
// @Success 200 {object} util.Response
// @Router /api/children/{id} [get]
// @Security ApiKeyAuth
func (ctl *ChildController) Get(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	child, err := ctl.childService.GetChild(claims, c.Param("id"))
	if err != nil {
		respondChildError(c, err)
		return
	}
	util.Success(c, child)
}

// Update 更新孩子档案
// @Summary 更新孩子
// @Tags children
// @Accept json
// @Produce json
// @Param id path string true "孩子ID"
// @Param request body ChildRequest true "孩子信息"
// @Success 200 {object} util.Response
// @Router /api/children/{id} [put]
// @Security ApiKeyAuth
func (ctl *ChildController) Update(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req ChildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	child, err := ctl.childService.UpdateChild(claims, c.Param("id"), req.Name, req.Age, req.Diagnosis, req.Notes)
	if err != nil {
		respondChildError(c, err)
		return
	}
	util.Success(c, child)
}

// Delete 删除孩子档案
// @Summary 删除孩子
// @Tags children
// @Produce json
// @Param id path string true "孩子ID"
// @Success 200 {object} util.Response
// @Router /api/children/{id} [delete]
// @Security ApiKeyAuth
func (ctl *ChildController) Delete(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	if err := ctl.childService.DeleteChild(claims, c.Param("id")); err != nil {
		respondChildError(c, err)
		return
	}
	util.Success(c, nil)
}

func respondChildError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrChildNotFound):
		util.NotFound(c, err.Error())
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(c)
	default:
		util.LogInternalError(c, err)
	}
}
