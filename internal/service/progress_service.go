package service

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"speech_therapy_backend/internal/model"
	"speech_therapy_backend/internal/repository"
	"speech_therapy_backend/internal/util"

	"gorm.io/gorm"
)

const (
	TrendImproving        = "improving"
	TrendDeclining        = "declining"
	TrendStable           = "stable"
	TrendInsufficientData = "insufficient data"
	TrendNoData           = "no data"

	improvementCutoff    = 0.6
	improvementAreaLimit = 3
)

type ProgressService struct {
	childRepo    *repository.ChildRepository
	sessionRepo  *repository.SessionRepository
	activityRepo *repository.ActivityRepository
}

func NewProgressService(childRepo *repository.ChildRepository, sessionRepo *repository.SessionRepository, activityRepo *repository.ActivityRepository) *ProgressService {
	return &ProgressService{
		childRepo:    childRepo,
		sessionRepo:  sessionRepo,
		activityRepo: activityRepo,
	}
}

// TrendPoint 一个会话一个点，得分为该会话全部作答的均分；
// 口头作答优先用发音得分，否则按对错取 1/0
type TrendPoint struct {
	At         time.Time
	Score      float64
	CategoryID string
}

// GetProgressTrends 近 7 天按天分桶，近 30 天按 ISO 周分桶
func (s *ProgressService) GetProgressTrends(childID string) (*model.TrendReport, error) {
	if _, err := s.childRepo.FindByID(childID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrChildNotFound
		}
		return nil, err
	}

	now := time.Now()
	monthPoints, err := s.collectPoints(childID, now.AddDate(0, 0, -30), now)
	if err != nil {
		return nil, err
	}
	weekStart := now.AddDate(0, 0, -7)
	var weekPoints []TrendPoint
	for _, p := range monthPoints {
		if !p.At.Before(weekStart) {
			weekPoints = append(weekPoints, p)
		}
	}

	categories, err := s.activityRepo.ListCategories()
	if err != nil {
		return nil, err
	}

	return &model.TrendReport{
		WeeklyTrend:      CalculateTrend(weekPoints, dayBucket),
		MonthlyTrend:     CalculateTrend(monthPoints, isoWeekBucket),
		ImprovementAreas: ImprovementAreas(weekPoints, monthPoints, categoryNames(categories), improvementAreaLimit),
	}, nil
}

func (s *ProgressService) collectPoints(childID string, start, end time.Time) ([]TrendPoint, error) {
	sessions, err := s.sessionRepo.ListByChildBetween(childID, start, end)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, nil
	}

	sessionIDs := make([]string, 0, len(sessions))
	categoryBySession := make(map[string]string, len(sessions))
	for _, sess := range sessions {
		sessionIDs = append(sessionIDs, sess.ID)
		categoryBySession[sess.ID] = sess.CategoryID
	}

	activities, err := s.sessionRepo.ListActivitiesForSessions(sessionIDs)
	if err != nil {
		return nil, err
	}

	sums := make(map[string]float64, len(sessions))
	counts := make(map[string]int, len(sessions))
	for _, a := range activities {
		sums[a.SessionID] += activityScore(a)
		counts[a.SessionID]++
	}

	points := make([]TrendPoint, 0, len(sessions))
	for _, sess := range sessions {
		n := counts[sess.ID]
		if n == 0 {
			continue
		}
		points = append(points, TrendPoint{
			At:         sess.StartTime,
			Score:      sums[sess.ID] / float64(n),
			CategoryID: categoryBySession[sess.ID],
		})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].At.Before(points[j].At) })
	return points, nil
}

func activityScore(a model.SessionActivity) float64 {
	if a.ResponseType == model.ResponseVerbal && a.PronunciationScore != nil {
		return *a.PronunciationScore
	}
	if a.IsCorrect {
		return 1
	}
	return 0
}

// CalculateTrend 按桶均值的首尾差除以桶数估计趋势斜率，按斜率正负定性。
// 无数据点返回 no data，只有一个桶返回 insufficient data。
func CalculateTrend(points []TrendPoint, bucket func(time.Time) string) model.TrendWindow {
	if len(points) == 0 {
		return model.TrendWindow{Trend: TrendNoData}
	}

	type bucketStat struct {
		key   string
		sum   float64
		count int
	}
	var buckets []*bucketStat
	index := make(map[string]*bucketStat)
	for _, p := range points {
		key := bucket(p.At)
		b, ok := index[key]
		if !ok {
			b = &bucketStat{key: key}
			index[key] = b
			buckets = append(buckets, b)
		}
		b.sum += p.Score
		b.count++
	}

	means := make([]float64, len(buckets))
	for i, b := range buckets {
		means[i] = b.sum / float64(b.count)
	}

	current := means[len(means)-1]
	if len(means) < 2 {
		return model.TrendWindow{
			Trend:         TrendInsufficientData,
			CurrentScore:  current,
			StartingScore: current,
		}
	}

	rate := (means[len(means)-1] - means[0]) / float64(len(means))
	trend := TrendStable
	if rate > 0 {
		trend = TrendImproving
	} else if rate < 0 {
		trend = TrendDeclining
	}

	return model.TrendWindow{
		Trend:         trend,
		Rate:          rate,
		CurrentScore:  current,
		StartingScore: means[0],
	}
}

type catStat struct {
	id    string
	sum   float64
	count int
}

func (c catStat) mean() float64 {
	return c.sum / float64(c.count)
}

// ImprovementAreas 周窗口内均分低于练习线的分类按练习次数降序最多 max 个，
// 外加月窗口内均分最低的分类
func ImprovementAreas(weekPoints, monthPoints []TrendPoint, names map[string]string, max int) []string {
	weekly := statsByCategory(weekPoints)
	var weak []*catStat
	for _, c := range weekly {
		if c.mean() < improvementCutoff {
			weak = append(weak, c)
		}
	}
	sort.SliceStable(weak, func(i, j int) bool {
		if weak[i].count != weak[j].count {
			return weak[i].count > weak[j].count
		}
		return weak[i].mean() < weak[j].mean()
	})
	if len(weak) > max {
		weak = weak[:max]
	}

	seen := make(map[string]bool, len(weak)+1)
	areas := make([]string, 0, len(weak)+1)
	for _, c := range weak {
		seen[c.id] = true
		areas = append(areas, categoryName(names, c.id))
	}

	var weakest *catStat
	for _, c := range statsByCategory(monthPoints) {
		if weakest == nil || c.mean() < weakest.mean() {
			weakest = c
		}
	}
	if weakest != nil && !seen[weakest.id] {
		areas = append(areas, categoryName(names, weakest.id))
	}
	return areas
}

func statsByCategory(points []TrendPoint) []*catStat {
	var stats []*catStat
	index := make(map[string]*catStat)
	for _, p := range points {
		if p.CategoryID == "" {
			continue
		}
		c, ok := index[p.CategoryID]
		if !ok {
			c = &catStat{id: p.CategoryID}
			index[p.CategoryID] = c
			stats = append(stats, c)
		}
		c.sum += p.Score
		c.count++
	}
	return stats
}

func categoryName(names map[string]string, id string) string {
	if name := names[id]; name != "" {
		return name
	}
	return id
}

func dayBucket(t time.Time) string {
	return t.Format("2006-01-02")
}

func isoWeekBucket(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}
