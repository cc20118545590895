package service

import (
	"errors"
	"time"

	"speech_therapy_backend/internal/model"
	"speech_therapy_backend/internal/repository"
	"speech_therapy_backend/internal/util"
	"speech_therapy_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SessionService struct {
	sessionRepo        *repository.SessionRepository
	childRepo          *repository.ChildRepository
	activityRepo       *repository.ActivityRepository
	performanceService *PerformanceService
	personalization    *PersonalizationService
}

func NewSessionService(
	sessionRepo *repository.SessionRepository,
	childRepo *repository.ChildRepository,
	activityRepo *repository.ActivityRepository,
	performanceService *PerformanceService,
	personalization *PersonalizationService,
) *SessionService {
	return &SessionService{
		sessionRepo:        sessionRepo,
		childRepo:          childRepo,
		activityRepo:       activityRepo,
		performanceService: performanceService,
		personalization:    personalization,
	}
}

// StartSession 开始一次练习会话，初始难度取分类难度
func (s *SessionService) StartSession(caregiverID uint, childID, categoryID string) (*model.TherapySession, error) {
	// 1. 校验孩子与分类
	if _, err := s.childRepo.FindByID(childID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrChildNotFound
		}
		return nil, err
	}
	category, err := s.activityRepo.FindCategoryByID(categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCategoryNotFound
		}
		return nil, err
	}

	level := category.DifficultyLevel
	if level == "" {
		level = model.DifficultyEasy
	}
	session := &model.TherapySession{
		ChildID:      childID,
		CaregiverID:  caregiverID,
		CategoryID:   categoryID,
		StartTime:    time.Now(),
		CurrentLevel: level,
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

// CompleteSession 结束会话并触发表现聚合与路径推进。
// 聚合或路径更新失败只记日志，会话结束状态已落库。
func (s *SessionService) CompleteSession(sessionID string) (*model.TherapySession, error) {
	session, err := s.sessionRepo.FindByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}
	if session.EndTime != nil {
		return session, nil
	}

	now := time.Now()
	session.EndTime = &now
	session.IsCompleted = true
	if err := s.sessionRepo.Update(session); err != nil {
		return nil, err
	}

	if _, err := s.performanceService.UpdateCategoryPerformance(session.ChildID, session.CategoryID); err != nil {
		logger.Log.Warn("performance aggregation failed on session completion",
			zap.String("session_id", sessionID), zap.Error(err))
	}
	if _, err := s.personalization.UpdateLearningPath(session.ChildID); err != nil {
		logger.Log.Warn("learning path update failed on session completion",
			zap.String("child_id", session.ChildID), zap.Error(err))
	}
	return session, nil
}

func (s *SessionService) GetSession(sessionID string) (*model.TherapySession, error) {
	session, err := s.sessionRepo.FindByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

func (s *SessionService) ListChildSessions(childID string, limit int) ([]model.TherapySession, error) {
	return s.sessionRepo.ListByChild(childID, limit)
}
