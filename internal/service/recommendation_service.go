package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"speech_therapy_backend/internal/ml"
	"speech_therapy_backend/internal/model"
	"speech_therapy_backend/internal/repository"
	"speech_therapy_backend/internal/util"
	"speech_therapy_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	practiceMoreCutoff = 0.6
	practiceMoreLimit  = 3
	encouragementLimit = 2
	starterCategories  = 2
	itemsPerGroup      = 3

	MLSourceModel    = "model"
	MLSourceFallback = "fallback"
)

type RecommendationService struct {
	childRepo       *repository.ChildRepository
	activityRepo    *repository.ActivityRepository
	sessionRepo     *repository.SessionRepository
	performanceRepo *repository.PerformanceRepository

	classifier ml.Classifier
	mlTimeout  time.Duration
}

func NewRecommendationService(
	childRepo *repository.ChildRepository,
	activityRepo *repository.ActivityRepository,
	sessionRepo *repository.SessionRepository,
	performanceRepo *repository.PerformanceRepository,
	classifier ml.Classifier,
	mlTimeout time.Duration,
) *RecommendationService {
	return &RecommendationService{
		childRepo:       childRepo,
		activityRepo:    activityRepo,
		sessionRepo:     sessionRepo,
		performanceRepo: performanceRepo,
		classifier:      classifier,
		mlTimeout:       mlTimeout,
	}
}

// GetRecommendations 合并规则推荐与模型推荐。模型不可用或超时不阻塞接口，
// 自动降级为按平均分的规则档位。
func (s *RecommendationService) GetRecommendations(ctx context.Context, childID string) (*model.Recommendations, error) {
	// 1. 校验孩子存在
	if _, err := s.childRepo.FindByID(childID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrChildNotFound
		}
		return nil, err
	}

	perfs, err := s.performanceRepo.ListByChild(childID)
	if err != nil {
		return nil, err
	}
	categories, err := s.activityRepo.ListCategories()
	if err != nil {
		return nil, err
	}
	names := categoryNames(categories)

	// 2. 无任何表现数据时走新手推荐
	if len(perfs) == 0 {
		return s.newChildRecommendations(categories)
	}

	// 3. 规则部分
	weakest := WeakestCategories(perfs, practiceMoreLimit)
	rec := &model.Recommendations{
		PracticeMore:     []string{},
		NextActivities:   []model.NextActivityGroup{},
		ProgressTracking: BuildProgressTracking(perfs),
		Encouragement:    EncouragementMessage(perfs, names),
	}
	for _, p := range weakest {
		rec.PracticeMore = append(rec.PracticeMore, names[p.CategoryID])
	}
	for _, p := range weakest {
		group, err := s.activityGroup(p.CategoryID, names[p.CategoryID])
		if err != nil {
			return nil, err
		}
		if group != nil {
			rec.NextActivities = append(rec.NextActivities, *group)
		}
	}

	// 4. 模型部分
	verbalRate, selectionRate := modalityRates(perfs)
	rec.Confidence = RecommendationConfidence(verbalRate, selectionRate)

	features := s.buildFeatures(childID, perfs, categories, verbalRate, selectionRate)
	label, err := s.predictWithTimeout(ctx, features)
	if err != nil {
		logger.Log.Warn("ml prediction unavailable, using rule fallback",
			zap.String("child_id", childID), zap.Error(err))
		rec.MLRecommendation = FallbackDifficulty(averageScore(perfs))
		rec.MLSource = MLSourceFallback
	} else {
		rec.MLRecommendation = label
		rec.MLSource = MLSourceModel
	}

	return rec, nil
}

func (s *RecommendationService) newChildRecommendations(categories []model.ActivityCategory) (*model.Recommendations, error) {
	rec := &model.Recommendations{
		PracticeMore:     []string{},
		NextActivities:   []model.NextActivityGroup{},
		Encouragement:    "Welcome! Let's start with some fun easy words.",
		MLRecommendation: model.DifficultyEasy,
		MLSource:         MLSourceFallback,
		IsNewChild:       true,
	}

	count := 0
	for _, c := range categories {
		if c.DifficultyLevel != model.DifficultyEasy {
			continue
		}
		group, err := s.activityGroup(c.ID, c.Name)
		if err != nil {
			return nil, err
		}
		if group != nil {
			rec.NextActivities = append(rec.NextActivities, *group)
			count++
		}
		if count >= starterCategories {
			break
		}
	}
	return rec, nil
}

func (s *RecommendationService) activityGroup(categoryID, categoryName string) (*model.NextActivityGroup, error) {
	items, err := s.activityRepo.ListItemsByCategory(categoryID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	if len(items) > itemsPerGroup {
		items = items[:itemsPerGroup]
	}
	return &model.NextActivityGroup{
		CategoryID:   categoryID,
		CategoryName: categoryName,
		Items:        items,
	}, nil
}

func (s *RecommendationService) buildFeatures(childID string, perfs []model.ChildPerformance, categories []model.ActivityCategory, verbalRate, selectionRate float64) ml.Features {
	totalAttempts := 0
	for _, p := range perfs {
		totalAttempts += p.VerbalAttempts + p.SelectionAttempts
	}

	// 分类难度取已练分类的平均档位
	rankByCategory := make(map[string]int, len(categories))
	for _, c := range categories {
		rankByCategory[c.ID] = model.DifficultyRank(c.DifficultyLevel)
	}
	rankSum := 0
	for _, p := range perfs {
		rankSum += rankByCategory[p.CategoryID]
	}
	avgRank := 0.0
	if len(perfs) > 0 {
		avgRank = float64(rankSum) / float64(len(perfs))
	}

	// 会话平均时长
	minutes := 0.0
	if sessions, err := s.sessionRepo.ListCompletedByChild(childID); err == nil && len(sessions) > 0 {
		for _, sess := range sessions {
			minutes += sess.DurationMinutes()
		}
		minutes /= float64(len(sessions))
	}

	return ml.Features{
		VerbalAccuracy:     verbalRate,
		SelectionAccuracy:  selectionRate,
		CategoryDifficulty: avgRank,
		TimeSpentMinutes:   minutes,
		SuccessRate:        averageScore(perfs),
		PreviousAttempts:   float64(totalAttempts),
	}
}

// predictWithTimeout 在限定时间内取模型结果，超时按模型不可用处理
func (s *RecommendationService) predictWithTimeout(ctx context.Context, features ml.Features) (string, error) {
	if s.classifier == nil {
		return "", errors.New("classifier not loaded")
	}

	ctx, cancel := context.WithTimeout(ctx, s.mlTimeout)
	defer cancel()

	type prediction struct {
		label string
		err   error
	}
	ch := make(chan prediction, 1)
	go func() {
		label, err := s.classifier.Predict(ctx, features)
		ch <- prediction{label, err}
	}()

	select {
	case p := <-ch:
		return p.label, p.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// WeakestCategories 得分低于练习线的分类，按得分升序，最多 max 个
func WeakestCategories(perfs []model.ChildPerformance, max int) []model.ChildPerformance {
	var weak []model.ChildPerformance
	for _, p := range perfs {
		if p.OverallScore < practiceMoreCutoff {
			weak = append(weak, p)
		}
	}
	sort.SliceStable(weak, func(i, j int) bool { return weak[i].OverallScore < weak[j].OverallScore })
	if len(weak) > max {
		weak = weak[:max]
	}
	return weak
}

// EncouragementMessage 有高分分类时点名表扬，最多两个
func EncouragementMessage(perfs []model.ChildPerformance, names map[string]string) string {
	var strong []model.ChildPerformance
	for _, p := range perfs {
		if p.OverallScore >= masteredScore {
			strong = append(strong, p)
		}
	}
	if len(strong) == 0 {
		return "Keep practicing - every attempt counts!"
	}
	sort.SliceStable(strong, func(i, j int) bool { return strong[i].OverallScore > strong[j].OverallScore })
	if len(strong) > encouragementLimit {
		strong = strong[:encouragementLimit]
	}

	parts := make([]string, 0, len(strong))
	for _, p := range strong {
		name := names[p.CategoryID]
		if name == "" {
			name = p.CategoryID
		}
		parts = append(parts, name)
	}
	return fmt.Sprintf("Amazing work with %s! Keep it up!", strings.Join(parts, " and "))
}

// FallbackDifficulty 模型不可用时按平均分给难度档位
func FallbackDifficulty(avg float64) string {
	switch {
	case avg > 0.8:
		return model.DifficultyHard
	case avg > 0.6:
		return model.DifficultyMedium
	default:
		return model.DifficultyEasy
	}
}

// RecommendationConfidence 口头正确率权重 0.6，选择正确率权重 0.4
func RecommendationConfidence(verbalRate, selectionRate float64) float64 {
	return 0.6*verbalRate + 0.4*selectionRate
}

func BuildProgressTracking(perfs []model.ChildPerformance) model.ProgressTracking {
	pt := model.ProgressTracking{TotalCategories: len(perfs)}
	for _, p := range perfs {
		if p.OverallScore >= masteredScore {
			pt.MasteredCategories++
		}
		pt.AverageScore += p.OverallScore
		pt.TotalAttempts += p.VerbalAttempts + p.SelectionAttempts
	}
	if len(perfs) > 0 {
		pt.AverageScore /= float64(len(perfs))
	}
	return pt
}

func modalityRates(perfs []model.ChildPerformance) (verbal, selection float64) {
	var va, vs, sa, ss int
	for _, p := range perfs {
		va += p.VerbalAttempts
		vs += p.VerbalSuccess
		sa += p.SelectionAttempts
		ss += p.SelectionSuccess
	}
	return successRate(vs, va), successRate(ss, sa)
}

func averageScore(perfs []model.ChildPerformance) float64 {
	if len(perfs) == 0 {
		return 0
	}
	total := 0.0
	for _, p := range perfs {
		total += p.OverallScore
	}
	return total / float64(len(perfs))
}
