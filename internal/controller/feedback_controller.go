package controller

import (
	"errors"
	"strconv"

	"speech_therapy_backend/internal/model"
	"speech_therapy_backend/internal/service"
	"speech_therapy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type FeedbackController struct {
	feedbackService *service.FeedbackService
}

func NewFeedbackController(feedbackService *service.FeedbackService) *FeedbackController {
	return &FeedbackController{feedbackService: feedbackService}
}

type FeedbackRequest struct {
	ChildID              string `json:"childId" binding:"required"`
	SessionID            string `json:"sessionId"`
	Rating               int    `json:"rating" binding:"required,min=1,max=5"`
	Comments             string `json:"comments"`
	ProgressAchievements string `json:"progressAchievements"`
	AreasForImprovement  string `json:"areasForImprovement"`
	BehavioralNotes      string `json:"behavioralNotes"`
	FeedbackType         string `json:"feedbackType"`
}

// Submit 提交陪护人反馈
// @Summary 提交反馈
// @Tags feedback
// @Accept json
// @Produce json
// @Param request body FeedbackRequest true "反馈内容"
// @Success 201 {object} util.Response
// @Router /api/feedback [post]
// @Security ApiKeyAuth
func (ctl *FeedbackController) Submit(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	feedback := &model.CaregiverFeedback{
		ChildID:              req.ChildID,
		SessionID:            req.SessionID,
		Rating:               req.Rating,
		Comments:             req.Comments,
		ProgressAchievements: req.ProgressAchievements,
		AreasForImprovement:  req.AreasForImprovement,
		BehavioralNotes:      req.BehavioralNotes,
		FeedbackType:         req.FeedbackType,
	}
	saved, err := ctl.feedbackService.SubmitFeedback(claims.UserID, feedback)
	if err != nil {
		if errors.Is(err, util.ErrChildNotFound) {
			util.NotFound(c, err.Error())
			return
		}
		util.LogInternalError(c, err)
		return
	}
	util.Created(c, saved)
}

// ListByChild 孩子的历史反馈
// @Summary 反馈列表
// @Tags feedback
// @Produce json
// @Param id path string true "孩子ID"
// @Param limit query int false "数量上限"
// @Success 200 {object} util.Response
// @Router /api/children/{id}/feedback [get]
// @Security ApiKeyAuth
func (ctl *FeedbackController) ListByChild(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	feedbacks, err := ctl.feedbackService.ListChildFeedback(c.Param("id"), limit)
	if err != nil {
		if errors.Is(err, util.ErrChildNotFound) {
			util.NotFound(c, err.Error())
			return
		}
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, feedbacks)
}
