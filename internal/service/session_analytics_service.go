package service

import (
	"errors"
	"fmt"
	"strings"

	"speech_therapy_backend/internal/model"
	"speech_therapy_backend/internal/repository"
	"speech_therapy_backend/internal/util"

	"gorm.io/gorm"
)

type SessionAnalyticsService struct {
	sessionRepo  *repository.SessionRepository
	childRepo    *repository.ChildRepository
	activityRepo *repository.ActivityRepository
}

func NewSessionAnalyticsService(sessionRepo *repository.SessionRepository, childRepo *repository.ChildRepository, activityRepo *repository.ActivityRepository) *SessionAnalyticsService {
	return &SessionAnalyticsService{
		sessionRepo:  sessionRepo,
		childRepo:    childRepo,
		activityRepo: activityRepo,
	}
}

// GetSessionOverview 单次会话的汇总与逐条作答明细
func (s *SessionAnalyticsService) GetSessionOverview(sessionID string) (*model.SessionOverview, error) {
	// 1. 会话与关联信息
	session, err := s.sessionRepo.FindByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}

	childName := ""
	if child, err := s.childRepo.FindByID(session.ChildID); err == nil {
		childName = child.Name
	}
	categoryName := ""
	if category, err := s.activityRepo.FindCategoryByID(session.CategoryID); err == nil {
		categoryName = category.Name
	}

	// 2. 作答明细
	activities, err := s.sessionRepo.ListActivities(sessionID)
	if err != nil {
		return nil, err
	}
	items, err := s.activityRepo.ListItemsByCategory(session.CategoryID)
	if err != nil {
		return nil, err
	}
	nameByItem := make(map[string]string, len(items))
	for _, it := range items {
		nameByItem[it.ID] = it.Name
	}

	overview := SummarizeSession(session, activities, nameByItem)
	overview.ChildName = childName
	overview.CategoryName = categoryName
	return &overview, nil
}

// SummarizeSession 汇总一次会话：总量、正确率、平均响应时长，
// 答对/答错的条目名分别作为亮点与待加强项，并据此生成练习建议。
func SummarizeSession(session *model.TherapySession, activities []model.SessionActivity, nameByItem map[string]string) model.SessionOverview {
	overview := model.SessionOverview{
		SessionID:           session.ID,
		StartTime:           session.StartTime,
		DurationMinutes:     session.DurationMinutes(),
		TotalActivities:     len(activities),
		Activities:          []model.ActivityDetail{},
		Strengths:           []string{},
		AreasForImprovement: []string{},
		Recommendations:     []string{},
	}
	if len(activities) == 0 {
		overview.Recommendations = append(overview.Recommendations, "Start with a few easy items to warm up.")
		return overview
	}

	var (
		correct           int
		totalResponseTime float64
		seenStrength      = make(map[string]bool)
		seenWeakness      = make(map[string]bool)
	)
	for _, a := range activities {
		totalResponseTime += a.ResponseTimeSeconds

		itemName := nameByItem[a.ItemID]
		if itemName == "" {
			itemName = a.ItemID
		}
		if a.IsCorrect {
			correct++
			if !seenStrength[itemName] {
				seenStrength[itemName] = true
				overview.Strengths = append(overview.Strengths, itemName)
			}
		} else if !seenWeakness[itemName] {
			seenWeakness[itemName] = true
			overview.AreasForImprovement = append(overview.AreasForImprovement, itemName)
		}

		overview.Activities = append(overview.Activities, model.ActivityDetail{
			ItemName:            itemName,
			ResponseType:        a.ResponseType,
			IsCorrect:           a.IsCorrect,
			PronunciationScore:  a.PronunciationScore,
			ResponseTimeSeconds: a.ResponseTimeSeconds,
			Feedback:            a.Feedback,
		})
	}

	overview.CorrectAnswers = correct
	overview.AccuracyPercentage = float64(correct) / float64(len(activities)) * 100
	overview.AverageResponseTime = totalResponseTime / float64(len(activities))
	overview.Recommendations = buildSessionRecommendations(overview.AccuracyPercentage, overview.Strengths, overview.AreasForImprovement)
	return overview
}

// buildSessionRecommendations 按正确率定基调，再点名表现好与需要练习的条目
func buildSessionRecommendations(accuracyPct float64, strengths, weaknesses []string) []string {
	var recs []string
	switch {
	case accuracyPct < 50:
		recs = append(recs, "Consider revisiting basic concepts before advancing")
	case accuracyPct < 75:
		recs = append(recs, "More practice would help solidify these concepts")
	default:
		recs = append(recs, "Excellent progress! Ready for more challenging activities")
	}

	if len(strengths) > 0 {
		recs = append(recs, fmt.Sprintf("Strong performance on: %s", strings.Join(firstNames(strengths, 3), ", ")))
	}
	if len(weaknesses) > 0 {
		recs = append(recs, fmt.Sprintf("Practice needed on: %s", strings.Join(firstNames(weaknesses, 3), ", ")))
		if len(weaknesses) > 3 {
			recs = append(recs, "Focus on 2-3 items at a time for better retention")
		}
	}
	return recs
}

func firstNames(names []string, max int) []string {
	if len(names) > max {
		return names[:max]
	}
	return names
}
