package controller

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"speech_therapy_backend/internal/model"
	"speech_therapy_backend/internal/service"
	"speech_therapy_backend/internal/util"
	"speech_therapy_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SpeechController struct {
	speechService *service.SpeechService
	storage       service.StorageProvider
}

func NewSpeechController(speechService *service.SpeechService, storage service.StorageProvider) *SpeechController {
	return &SpeechController{
		speechService: speechService,
		storage:       storage,
	}
}

type SelectionRequest struct {
	ItemID              string  `json:"itemId" binding:"required"`
	SelectedItemID      string  `json:"selectedItemId" binding:"required"`
	AttemptNumber       int     `json:"attemptNumber"`
	ResponseTimeSeconds float64 `json:"responseTimeSeconds"`
}

// ProcessAudio 上传口头作答音频：转写、评分、记录并更新表现
// @Summary 处理口头作答
// @Tags speech
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "会话ID"
// @Param audio formData file true "音频文件"
// @Param item_id formData string true "条目ID"
// @Param attempt_number formData int false "第几次尝试"
// @Param response_time_seconds formData number false "响应时长（秒）"
// @Success 200 {object} util.Response
// @Router /api/speech/sessions/{id}/process-audio [post]
// @Security ApiKeyAuth
func (ctl *SpeechController) ProcessAudio(c *gin.Context) {
	sessionID := c.Param("id")
	itemID := c.PostForm("item_id")
	if itemID == "" {
		util.BadRequest(c, "item_id is required")
		return
	}

	file, err := c.FormFile("audio")
	if err != nil {
		util.BadRequest(c, "audio file is required")
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedAudioExt(ext) {
		util.BadRequest(c, fmt.Sprintf("unsupported audio format: %s", ext))
		return
	}

	attempt, _ := strconv.Atoi(c.DefaultPostForm("attempt_number", "1"))
	responseTime, _ := strconv.ParseFloat(c.DefaultPostForm("response_time_seconds", "0"), 64)

	// 1. 先落临时文件供转码与转写
	tmpPath := filepath.Join(os.TempDir(), model.GenerateUUID()+ext)
	if err := c.SaveUploadedFile(file, tmpPath); err != nil {
		util.LogInternalError(c, err)
		return
	}
	defer os.Remove(tmpPath)

	// 2. 原始音频归档，失败不阻塞评分
	if src, err := file.Open(); err == nil {
		objectName := fmt.Sprintf("sessions/%s/%s%s", sessionID, model.GenerateUUID(), ext)
		if _, err := ctl.storage.SaveAudio(c.Request.Context(), src, file.Size, objectName, file.Header.Get("Content-Type")); err != nil {
			logger.Log.Warn("audio archive failed", zap.String("session_id", sessionID), zap.Error(err))
		}
		src.Close()
	}

	// 3. 转写评分
	result, err := ctl.speechService.ProcessAudioResponse(c.Request.Context(), sessionID, itemID, tmpPath, attempt, responseTime)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrSessionNotFound), errors.Is(err, util.ErrItemNotFound):
			util.NotFound(c, err.Error())
		case errors.Is(err, util.ErrSpeechUnavailable):
			util.Error(c, http.StatusServiceUnavailable, err.Error())
		default:
			util.LogInternalError(c, err)
		}
		return
	}
	util.Success(c, result)
}

// RecordSelection 记录一次点选作答
// @Summary 处理点选作答
// @Tags speech
// @Accept json
// @Produce json
// @Param id path string true "会话ID"
// @Param request body SelectionRequest true "点选信息"
// @Success 200 {object} util.Response
// @Router /api/speech/sessions/{id}/selection [post]
// @Security ApiKeyAuth
func (ctl *SpeechController) RecordSelection(c *gin.Context) {
	var req SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	activity, err := ctl.speechService.RecordSelectionResponse(
		c.Param("id"), req.ItemID, req.SelectedItemID, req.AttemptNumber, req.ResponseTimeSeconds)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrSessionNotFound), errors.Is(err, util.ErrItemNotFound):
			util.NotFound(c, err.Error())
		default:
			util.LogInternalError(c, err)
		}
		return
	}
	util.Success(c, activity)
}

func allowedAudioExt(ext string) bool {
	for _, allowed := range util.AllowedAudioExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
