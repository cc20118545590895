package controller

import (
	"errors"

	"speech_therapy_backend/internal/service"
	"speech_therapy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	recommendationService *service.RecommendationService
	progressService       *service.ProgressService
}

func NewAnalyticsController(recommendationService *service.RecommendationService, progressService *service.ProgressService) *AnalyticsController {
	return &AnalyticsController{
		recommendationService: recommendationService,
		progressService:       progressService,
	}
}

// Recommendations 规则与模型合并的练习推荐
// @Summary 练习推荐
// @Tags analytics
// @Produce json
// @Param id path string true "孩子ID"
// @Success 200 {object} util.Response
// @Router /api/children/{id}/recommendations [get]
// @Security ApiKeyAuth
func (ctl *AnalyticsController) Recommendations(c *gin.Context) {
	rec, err := ctl.recommendationService.GetRecommendations(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrChildNotFound) {
			util.NotFound(c, err.Error())
			return
		}
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, rec)
}

// Trends 近 7 天与近 30 天的进步趋势
// @Summary 进步趋势
// @Tags analytics
// @Produce json
// @Param id path string true "孩子ID"
// @Success 200 {object} util.Response
// @Router /api/children/{id}/trends [get]
// @Security ApiKeyAuth
func (ctl *AnalyticsController) Trends(c *gin.Context) {
	report, err := ctl.progressService.GetProgressTrends(c.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrChildNotFound) {
			util.NotFound(c, err.Error())
			return
		}
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, report)
}
