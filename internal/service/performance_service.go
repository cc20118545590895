package service

import (
	"sync"

	"speech_therapy_backend/internal/config"
	"speech_therapy_backend/internal/model"
	"speech_therapy_backend/internal/repository"
)

type PerformanceService struct {
	performanceRepo *repository.PerformanceRepository
	sessionRepo     *repository.SessionRepository

	mu      sync.RWMutex
	scoring config.ScoringConfig
}

func NewPerformanceService(performanceRepo *repository.PerformanceRepository, sessionRepo *repository.SessionRepository, scoring config.ScoringConfig) *PerformanceService {
	return &PerformanceService{
		performanceRepo: performanceRepo,
		sessionRepo:     sessionRepo,
		scoring:         scoring,
	}
}

// SetScoring 配置热更新入口
func (s *PerformanceService) SetScoring(scoring config.ScoringConfig) {
	s.mu.Lock()
	s.scoring = scoring
	s.mu.Unlock()
}

func (s *PerformanceService) Scoring() config.ScoringConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scoring
}

// UpdateCategoryPerformance 全量重算某孩子在某分类下的表现并落库。
// 重算覆盖历史全部作答，重复调用结果一致。
func (s *PerformanceService) UpdateCategoryPerformance(childID, categoryID string) (*model.ChildPerformance, error) {
	// 1. 取全部作答记录
	activities, err := s.sessionRepo.ListActivitiesByChildAndCategory(childID, categoryID)
	if err != nil {
		return nil, err
	}

	// 2. 重算统计
	stats := AggregateAttempts(activities, s.Scoring())

	// 3. 幂等落库
	perf := &model.ChildPerformance{
		ChildID:           childID,
		CategoryID:        categoryID,
		OverallScore:      stats.OverallScore,
		VerbalAttempts:    stats.VerbalAttempts,
		VerbalSuccess:     stats.VerbalSuccess,
		SelectionAttempts: stats.SelectionAttempts,
		SelectionSuccess:  stats.SelectionSuccess,
	}
	if err := s.performanceRepo.Upsert(perf); err != nil {
		return nil, err
	}
	return perf, nil
}

// AttemptStats 单个 (child, category) 的聚合统计
type AttemptStats struct {
	OverallScore      float64
	VerbalAttempts    int
	VerbalSuccess     int
	SelectionAttempts int
	SelectionSuccess  int
}

// AggregateAttempts 从作答序列重算统计值。
// 总分为按方式权重折算后的成功数除以同样折算的作答数，
// 只有一种作答方式时退化为该方式的正确率。
func AggregateAttempts(activities []model.SessionActivity, weights config.ScoringConfig) AttemptStats {
	var st AttemptStats
	for _, a := range activities {
		switch a.ResponseType {
		case model.ResponseVerbal:
			st.VerbalAttempts++
			if a.IsCorrect {
				st.VerbalSuccess++
			}
		case model.ResponseNonverbal:
			st.SelectionAttempts++
			if a.IsCorrect {
				st.SelectionSuccess++
			}
		}
	}
	st.OverallScore = weightedScore(st, weights)
	return st
}

func weightedScore(st AttemptStats, weights config.ScoringConfig) float64 {
	weightedAttempts := weights.VerbalWeight*float64(st.VerbalAttempts) + weights.SelectionWeight*float64(st.SelectionAttempts)
	if weightedAttempts == 0 {
		return 0
	}
	weightedSuccess := weights.VerbalWeight*float64(st.VerbalSuccess) + weights.SelectionWeight*float64(st.SelectionSuccess)
	return weightedSuccess / weightedAttempts
}

func successRate(success, attempts int) float64 {
	if attempts == 0 {
		return 0
	}
	return float64(success) / float64(attempts)
}
