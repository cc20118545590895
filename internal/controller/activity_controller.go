package controller

import (
	"errors"

	"speech_therapy_backend/internal/model"
	"speech_therapy_backend/internal/service"
	"speech_therapy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ActivityController struct {
	activityService *service.ActivityService
}

func NewActivityController(activityService *service.ActivityService) *ActivityController {
	return &ActivityController{activityService: activityService}
}

type CategoryRequest struct {
	Name            string `json:"name" binding:"required"`
	Description     string `json:"description"`
	DifficultyLevel string `json:"difficultyLevel" binding:"omitempty,oneof=easy medium hard"`
	SortOrder       int    `json:"sortOrder"`
}

type ItemRequest struct {
	Name            string `json:"name" binding:"required"`
	DifficultyLevel string `json:"difficultyLevel" binding:"omitempty,oneof=easy medium hard"`
	ImageURL        string `json:"imageUrl"`
	AudioURL        string `json:"audioUrl"`
	SortOrder       int    `json:"sortOrder"`
}

// ListCategories 练习分类目录
// @Summary 分类列表
// @Tags activities
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/activities/categories [get]
// @Security ApiKeyAuth
func (ctl *ActivityController) ListCategories(c *gin.Context) {
	categories, err := ctl.activityService.ListCategories(c.Request.Context())
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, categories)
}

// CreateCategory 新建练习分类，仅治疗师和管理员可用
// @Summary 新建分类
// @Tags activities
// @Accept json
// @Produce json
// @Param request body CategoryRequest true "分类信息"
// @Success 201 {object} util.Response
// @Router /api/activities/categories [post]
// @Security ApiKeyAuth
func (ctl *ActivityController) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	category := &model.ActivityCategory{
		Name:            req.Name,
		Description:     req.Description,
		DifficultyLevel: req.DifficultyLevel,
		SortOrder:       req.SortOrder,
	}
	if err := ctl.activityService.CreateCategory(c.Request.Context(), category); err != nil {
		util.LogInternalError(c, err)
		return
	}
	util.Created(c, category)
}

// ListItems 分类下的练习条目
// @Summary 条目列表
// @Tags activities
// @Produce json
// @Param id path string true "分类ID"
// @Success 200 {object} util.Response
// @Router /api/activities/categories/{id}/items [get]
// @Security ApiKeyAuth
func (ctl *ActivityController) ListItems(c *gin.Context) {
	items, err := ctl.activityService.ListItems(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrCategoryNotFound) {
			util.NotFound(c, err.Error())
			return
		}
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, items)
}

// CreateItem 在分类下新建练习条目，仅治疗师和管理员可用
// @Summary 新建条目
// @Tags activities
// @Accept json
// @Produce json
// @Param id path string true "分类ID"
// @Param request body ItemRequest true "条目信息"
// @Success 201 {object} util.Response
// @Router /api/activities/categories/{id}/items [post]
// @Security ApiKeyAuth
func (ctl *ActivityController) CreateItem(c *gin.Context) {
	var req ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	item := &model.ActivityItem{
		CategoryID:      c.Param("id"),
		Name:            req.Name,
		DifficultyLevel: req.DifficultyLevel,
		ImageURL:        req.ImageURL,
		AudioURL:        req.AudioURL,
		SortOrder:       req.SortOrder,
	}
	if err := ctl.activityService.CreateItem(c.Request.Context(), item); err != nil {
		if errors.Is(err, util.ErrCategoryNotFound) {
			util.NotFound(c, err.Error())
			return
		}
		util.LogInternalError(c, err)
		return
	}
	util.Created(c, item)
}
