package controller

import (
	"errors"

	"speech_therapy_backend/internal/service"
	"speech_therapy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type PersonalizationController struct {
	personalization *service.PersonalizationService
}

func NewPersonalizationController(personalization *service.PersonalizationService) *PersonalizationController {
	return &PersonalizationController{personalization: personalization}
}

// Profile 孩子能力画像
// @Summary 孩子画像
// @Tags personalization
// @Produce json
// @Param id path string true "孩子ID"
// @Success 200 {object} util.Response
// @Router /api/children/{id}/profile [get]
// @Security ApiKeyAuth
func (ctl *PersonalizationController) Profile(c *gin.Context) {
	profile, err := ctl.personalization.AnalyzeChildProfile(c.Param("id"))
	if err != nil {
		respondPersonalizationError(c, err)
		return
	}
	util.Success(c, profile)
}

// GetLearningPath 当前学习路径，不存在时自动生成
// @Summary 学习路径
// @Tags personalization
// @Produce json
// @Param id path string true "孩子ID"
// @Success 200 {object} util.Response
// @Router /api/children/{id}/learning-path [get]
// @Security ApiKeyAuth
func (ctl *PersonalizationController) GetLearningPath(c *gin.Context) {
	view, err := ctl.personalization.GetCurrentLearningPath(c.Param("id"))
	if err != nil {
		respondPersonalizationError(c, err)
		return
	}
	util.Success(c, view)
}

// RegeneratePath 按最新画像重建学习路径
// @Summary 重建学习路径
// @Tags personalization
// @Produce json
// @Param id path string true "孩子ID"
// @Success 200 {object} util.Response
// @Router /api/children/{id}/learning-path/regenerate [post]
// @Security ApiKeyAuth
func (ctl *PersonalizationController) RegeneratePath(c *gin.Context) {
	view, err := ctl.personalization.GenerateLearningPath(c.Param("id"))
	if err != nil {
		respondPersonalizationError(c, err)
		return
	}
	util.Success(c, view)
}

// UpdatePath 按最新表现推进路径状态与目标分
// @Summary 更新学习路径
// @Tags personalization
// @Produce json
// @Param id path string true "孩子ID"
// @Success 200 {object} util.Response
// @Router /api/children/{id}/learning-path/update [post]
// @Security ApiKeyAuth
func (ctl *PersonalizationController) UpdatePath(c *gin.Context) {
	view, err := ctl.personalization.UpdateLearningPath(c.Param("id"))
	if err != nil {
		respondPersonalizationError(c, err)
		return
	}
	util.Success(c, view)
}

// NextActivity 会话内下一个练习条目
// @Summary 下一个条目
// @Tags personalization
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Router /api/speech/sessions/{id}/next-activity [get]
// @Security ApiKeyAuth
func (ctl *PersonalizationController) NextActivity(c *gin.Context) {
	item, level, err := ctl.personalization.SelectNextActivity(c.Param("id"))
	if err != nil {
		respondPersonalizationError(c, err)
		return
	}
	util.Success(c, gin.H{"item": item, "difficultyLevel": level})
}

// Adapt 基于最近作答的会话内调整建议
// @Summary 会话调整建议
// @Tags personalization
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Router /api/speech/sessions/{id}/adapt [get]
// @Security ApiKeyAuth
func (ctl *PersonalizationController) Adapt(c *gin.Context) {
	report, err := ctl.personalization.AdaptSession(c.Param("id"))
	if err != nil {
		respondPersonalizationError(c, err)
		return
	}
	util.Success(c, report)
}

func respondPersonalizationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrChildNotFound),
		errors.Is(err, util.ErrSessionNotFound),
		errors.Is(err, util.ErrCategoryNotFound),
		errors.Is(err, util.ErrItemNotFound):
		util.NotFound(c, err.Error())
	default:
		util.LogInternalError(c, err)
	}
}
