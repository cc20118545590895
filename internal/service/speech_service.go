package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"speech_therapy_backend/internal/config"
	"speech_therapy_backend/internal/model"
	"speech_therapy_backend/internal/phonetic"
	"speech_therapy_backend/internal/repository"
	"speech_therapy_backend/internal/util"
	"speech_therapy_backend/pkg/logger"
	"speech_therapy_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SpeechToText 语音转写接口，便于测试替换
type SpeechToText interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// WhisperClient 调用 OpenAI 兼容的 /audio/transcriptions 接口
type WhisperClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

func NewWhisperClient(cfg config.SpeechConfig) *WhisperClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &WhisperClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *WhisperClient) Transcribe(ctx context.Context, audioPath string) (string, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("打开音频文件失败: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", err
	}
	if err := writer.WriteField("model", c.model); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.client.Do(req)
	monitoring.TranscriptionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("%w: %v", util.ErrSpeechUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("%w: status %d: %s", util.ErrSpeechUnavailable, resp.StatusCode, string(raw))
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: %v", util.ErrSpeechUnavailable, err)
	}
	return strings.TrimSpace(out.Text), nil
}

type SpeechService struct {
	speech             SpeechToText
	engine             *phonetic.Engine
	sessionRepo        *repository.SessionRepository
	activityRepo       *repository.ActivityRepository
	performanceService *PerformanceService
}

func NewSpeechService(
	speech SpeechToText,
	engine *phonetic.Engine,
	sessionRepo *repository.SessionRepository,
	activityRepo *repository.ActivityRepository,
	performanceService *PerformanceService,
) *SpeechService {
	return &SpeechService{
		speech:             speech,
		engine:             engine,
		sessionRepo:        sessionRepo,
		activityRepo:       activityRepo,
		performanceService: performanceService,
	}
}

// AudioResponseResult 一次口头作答的处理结果
type AudioResponseResult struct {
	Activity   *model.SessionActivity `json:"activity"`
	Transcript string                 `json:"transcript"`
	Phonetic   phonetic.Result        `json:"phonetic"`
}

// ProcessAudioResponse 转写上传的音频、评分并记录作答，随后触发表现聚合。
// 聚合失败只记日志，不回滚已落库的作答。
func (s *SpeechService) ProcessAudioResponse(ctx context.Context, sessionID, itemID, audioPath string, attemptNumber int, responseTime float64) (*AudioResponseResult, error) {
	// 1. 定位会话与条目
	session, err := s.sessionRepo.FindByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}
	item, err := s.activityRepo.FindItemByID(itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrItemNotFound
		}
		return nil, err
	}

	// 2. 转写服务只接受 16kHz 单声道 WAV
	path := audioPath
	if ext := strings.ToLower(filepath.Ext(audioPath)); ext != ".wav" {
		wavPath := strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + ".wav"
		if err := util.ConvertToWav(audioPath, wavPath); err != nil {
			return nil, fmt.Errorf("音频转码失败: %w", err)
		}
		defer os.Remove(wavPath)
		path = wavPath
	}

	// 3. 客户端没报响应时长时退而用音频时长
	if responseTime <= 0 {
		if info, err := util.GetAudioInfo(path); err == nil {
			responseTime = info.Duration
		}
	}

	// 4. 转写并评分
	transcript, err := s.speech.Transcribe(ctx, path)
	if err != nil {
		return nil, err
	}
	result := s.engine.Analyze(item.Name, transcript)
	monitoring.ObservePronunciation(result.Similarity, result.IsCorrect)

	// 5. 记录作答
	if attemptNumber < 1 {
		attemptNumber = 1
	}
	similarity := result.Similarity
	activity := &model.SessionActivity{
		SessionID:           sessionID,
		ItemID:              itemID,
		AttemptNumber:       attemptNumber,
		ResponseType:        model.ResponseVerbal,
		ResponseText:        transcript,
		IsCorrect:           result.IsCorrect,
		PronunciationScore:  &similarity,
		ResponseTimeSeconds: responseTime,
		Feedback:            result.Feedback,
	}
	if err := s.sessionRepo.CreateActivity(activity); err != nil {
		return nil, err
	}

	// 6. 触发表现重算
	if _, err := s.performanceService.UpdateCategoryPerformance(session.ChildID, session.CategoryID); err != nil {
		logger.Log.Warn("performance aggregation failed after audio response",
			zap.String("session_id", sessionID),
			zap.String("child_id", session.ChildID),
			zap.Error(err))
	}

	return &AudioResponseResult{
		Activity:   activity,
		Transcript: transcript,
		Phonetic:   result,
	}, nil
}

// RecordSelectionResponse 记录一次非口头（点选）作答并触发表现聚合
func (s *SpeechService) RecordSelectionResponse(sessionID, itemID, selectedItemID string, attemptNumber int, responseTime float64) (*model.SessionActivity, error) {
	session, err := s.sessionRepo.FindByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}
	if _, err := s.activityRepo.FindItemByID(itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrItemNotFound
		}
		return nil, err
	}

	isCorrect := selectedItemID == itemID
	feedback := "Great choice! That's the right one!"
	if !isCorrect {
		feedback = "Good try! Let's look again together."
	}

	if attemptNumber < 1 {
		attemptNumber = 1
	}
	activity := &model.SessionActivity{
		SessionID:           sessionID,
		ItemID:              itemID,
		AttemptNumber:       attemptNumber,
		ResponseType:        model.ResponseNonverbal,
		ResponseText:        selectedItemID,
		IsCorrect:           isCorrect,
		ResponseTimeSeconds: responseTime,
		Feedback:            feedback,
	}
	if err := s.sessionRepo.CreateActivity(activity); err != nil {
		return nil, err
	}

	if _, err := s.performanceService.UpdateCategoryPerformance(session.ChildID, session.CategoryID); err != nil {
		logger.Log.Warn("performance aggregation failed after selection response",
			zap.String("session_id", sessionID),
			zap.String("child_id", session.ChildID),
			zap.Error(err))
	}
	return activity, nil
}
