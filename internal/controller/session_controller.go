package controller

import (
	"errors"
	"strconv"

	"speech_therapy_backend/internal/service"
	"speech_therapy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SessionController struct {
	sessionService   *service.SessionService
	analyticsService *service.SessionAnalyticsService
}

func NewSessionController(sessionService *service.SessionService, analyticsService *service.SessionAnalyticsService) *SessionController {
	return &SessionController{
		sessionService:   sessionService,
		analyticsService: analyticsService,
	}
}

type StartSessionRequest struct {
	ChildID    string `json:"childId" binding:"required"`
	CategoryID string `json:"categoryId" binding:"required"`
}

// Start 开始一次练习会话
// @Summary 开始会话
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body StartSessionRequest true "会话信息"
// @Success 201 {object} util.Response
// @Router /api/speech/sessions [post]
// @Security ApiKeyAuth
func (ctl *SessionController) Start(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	session, err := ctl.sessionService.StartSession(claims.UserID, req.ChildID, req.CategoryID)
	if err != nil {
		respondSessionError(c, err)
		return
	}
	util.Created(c, session)
}

// Complete 结束会话并触发表现聚合与路径推进
// @Summary 结束会话
// @Tags sessions
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Router /api/speech/sessions/{id}/complete [post]
// @Security ApiKeyAuth
func (ctl *SessionController) Complete(c *gin.Context) {
	session, err := ctl.sessionService.CompleteSession(c.Param("id"))
	if err != nil {
		respondSessionError(c, err)
		return
	}
	util.Success(c, session)
}

// Get 会话详情
// @Summary 会话详情
// @Tags sessions
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Router /api/speech/sessions/{id} [get]
// @Security ApiKeyAuth
func (ctl *SessionController) Get(c *gin.Context) {
	session, err := ctl.sessionService.GetSession(c.Param("id"))
	if err != nil {
		respondSessionError(c, err)
		return
	}
	util.Success(c, session)
}

// ListByChild 孩子的历史会话
// @Summary 会话列表
// @Tags sessions
// @Produce json
// @Param id path string true "孩子ID"
// @Param limit query int false "数量上限"
// @Success 200 {object} util.Response
// @Router /api/children/{id}/sessions [get]
// @Security ApiKeyAuth
func (ctl *SessionController) ListByChild(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	sessions, err := ctl.sessionService.ListChildSessions(c.Param("id"), limit)
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, sessions)
}

// Overview 会话汇总报告
// @Summary 会话汇总
// @Tags sessions
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Router /api/speech/sessions/{id}/overview [get]
// @Security ApiKeyAuth
func (ctl *SessionController) Overview(c *gin.Context) {
	overview, err := ctl.analyticsService.GetSessionOverview(c.Param("id"))
	if err != nil {
		respondSessionError(c, err)
		return
	}
	util.Success(c, overview)
}

func respondSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrSessionNotFound),
		errors.Is(err, util.ErrChildNotFound),
		errors.Is(err, util.ErrCategoryNotFound):
		util.NotFound(c, err.Error())
	default:
		util.LogInternalError(c, err)
	}
}
