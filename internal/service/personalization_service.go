package service

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"speech_therapy_backend/internal/config"
	"speech_therapy_backend/internal/model"
	"speech_therapy_backend/internal/phonetic"
	"speech_therapy_backend/internal/repository"
	"speech_therapy_backend/internal/util"

	"gorm.io/gorm"
)

const (
	masteredScore       = 0.8
	strengthTarget      = 0.9
	defaultTargetScore  = 0.7
	challengeTarget     = 0.5
	minTargetScore      = 0.3
	maxTargetScore      = 1.0
	recentActivityCount = 5
)

type PersonalizationService struct {
	childRepo       *repository.ChildRepository
	activityRepo    *repository.ActivityRepository
	sessionRepo     *repository.SessionRepository
	performanceRepo *repository.PerformanceRepository
	pathRepo        *repository.LearningPathRepository

	mu      sync.RWMutex
	scoring config.ScoringConfig
}

func NewPersonalizationService(
	childRepo *repository.ChildRepository,
	activityRepo *repository.ActivityRepository,
	sessionRepo *repository.SessionRepository,
	performanceRepo *repository.PerformanceRepository,
	pathRepo *repository.LearningPathRepository,
	scoring config.ScoringConfig,
) *PersonalizationService {
	return &PersonalizationService{
		childRepo:       childRepo,
		activityRepo:    activityRepo,
		sessionRepo:     sessionRepo,
		performanceRepo: performanceRepo,
		pathRepo:        pathRepo,
		scoring:         scoring,
	}
}

// SetScoring 配置热更新入口
func (s *PersonalizationService) SetScoring(scoring config.ScoringConfig) {
	s.mu.Lock()
	s.scoring = scoring
	s.mu.Unlock()
}

func (s *PersonalizationService) Scoring() config.ScoringConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scoring
}

// AnalyzeChildProfile 从当前表现数据即时推导画像，不落库
func (s *PersonalizationService) AnalyzeChildProfile(childID string) (*model.ChildProfile, error) {
	// 1. 校验孩子存在
	if _, err := s.childRepo.FindByID(childID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrChildNotFound
		}
		return nil, err
	}

	// 2. 取表现数据、作答流与分类目录
	perfs, err := s.performanceRepo.ListByChild(childID)
	if err != nil {
		return nil, err
	}
	attempts, err := s.sessionRepo.ListActivitiesByChild(childID)
	if err != nil {
		return nil, err
	}
	categories, err := s.activityRepo.ListCategories()
	if err != nil {
		return nil, err
	}

	profile := BuildProfile(childID, perfs, attempts, categoryNames(categories), s.Scoring())
	return &profile, nil
}

// GenerateLearningPath 重新生成学习路径并整体替换旧路径
func (s *PersonalizationService) GenerateLearningPath(childID string) (*model.LearningPathView, error) {
	profile, err := s.AnalyzeChildProfile(childID)
	if err != nil {
		return nil, err
	}

	categories, err := s.activityRepo.ListCategories()
	if err != nil {
		return nil, err
	}
	perfs, err := s.performanceRepo.ListByChild(childID)
	if err != nil {
		return nil, err
	}

	items := OrderLearningPath(*profile, categories)
	if err := s.pathRepo.ReplaceForChild(childID, items); err != nil {
		return nil, err
	}

	return s.buildPathView(childID, items, categories, perfs), nil
}

// GetCurrentLearningPath 读取当前路径，不存在时生成一条
func (s *PersonalizationService) GetCurrentLearningPath(childID string) (*model.LearningPathView, error) {
	if _, err := s.childRepo.FindByID(childID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrChildNotFound
		}
		return nil, err
	}

	items, err := s.pathRepo.ListByChild(childID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return s.GenerateLearningPath(childID)
	}

	categories, err := s.activityRepo.ListCategories()
	if err != nil {
		return nil, err
	}
	perfs, err := s.performanceRepo.ListByChild(childID)
	if err != nil {
		return nil, err
	}
	return s.buildPathView(childID, items, categories, perfs), nil
}

// UpdateLearningPath 按最新表现推进路径状态并微调目标分
func (s *PersonalizationService) UpdateLearningPath(childID string) (*model.LearningPathView, error) {
	items, err := s.pathRepo.ListByChild(childID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return s.GenerateLearningPath(childID)
	}

	perfs, err := s.performanceRepo.ListByChild(childID)
	if err != nil {
		return nil, err
	}

	adjusted := AdjustPathTargets(items, scoresByCategory(perfs), time.Now())
	for i := range adjusted {
		if err := s.pathRepo.UpdateItem(&adjusted[i]); err != nil {
			return nil, err
		}
	}

	categories, err := s.activityRepo.ListCategories()
	if err != nil {
		return nil, err
	}
	return s.buildPathView(childID, adjusted, categories, perfs), nil
}

// SelectNextActivity 按当前分数选择会话内下一个练习条目
func (s *PersonalizationService) SelectNextActivity(sessionID string) (*model.ActivityItem, string, error) {
	// 1. 定位会话与分类
	session, err := s.sessionRepo.FindByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", util.ErrSessionNotFound
		}
		return nil, "", err
	}
	category, err := s.activityRepo.FindCategoryByID(session.CategoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", util.ErrCategoryNotFound
		}
		return nil, "", err
	}
	items, err := s.activityRepo.ListItemsByCategory(session.CategoryID)
	if err != nil {
		return nil, "", err
	}

	// 2. 当前分类得分与作答方式偏好，无记录按 0 处理
	perfs, err := s.performanceRepo.ListByChild(session.ChildID)
	if err != nil {
		return nil, "", err
	}
	attempts, err := s.sessionRepo.ListActivitiesByChild(session.ChildID)
	if err != nil {
		return nil, "", err
	}
	score := scoresByCategory(perfs)[session.CategoryID]
	profile := BuildProfile(session.ChildID, perfs, attempts, nil, s.Scoring())

	// 3. 本会话已练过的条目优先排除
	attempted, err := s.sessionRepo.AttemptedItemIDs(sessionID)
	if err != nil {
		return nil, "", err
	}

	item := PickNextItem(items, category, score, attempted, profile.PreferredModality)
	if item == nil {
		return nil, "", util.ErrItemNotFound
	}
	return item, item.EffectiveDifficulty(category), nil
}

// AdaptSession 基于最近作答给出会话内调整建议
func (s *PersonalizationService) AdaptSession(sessionID string) (*model.AdaptationReport, error) {
	session, err := s.sessionRepo.FindByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}

	recent, err := s.sessionRepo.ListRecentActivities(sessionID, recentActivityCount)
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

	patterns := AnalyzeErrorPatterns(recent, nameByItem)
	return &model.AdaptationReport{
		SessionID:       sessionID,
		Recommendations: BuildAdaptation(recent, patterns),
		GeneratedAt:     time.Now(),
	}, nil
}

func (s *PersonalizationService) buildPathView(childID string, items []model.LearningPathItem, categories []model.ActivityCategory, perfs []model.ChildPerformance) *model.LearningPathView {
	names := categoryNames(categories)
	scores := scoresByCategory(perfs)

	view := &model.LearningPathView{ChildID: childID, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	for _, item := range items {
		view.Entries = append(view.Entries, model.LearningPathEntry{
			CategoryID:   item.CategoryID,
			CategoryName: names[item.CategoryID],
			TargetScore:  item.TargetScore,
			CurrentScore: scores[item.CategoryID],
			Priority:     item.Priority,
			Status:       item.Status,
			Reason:       item.Reason,
		})
	}
	return view
}

// BuildProfile 从表现数据与作答流推导画像。
// 强项为得分不低于强项阈值的分类，弱项为不高于弱项阈值的分类；
// 作答方式偏好直接看原始作答流，不依赖已聚合的统计。
func BuildProfile(childID string, perfs []model.ChildPerformance, attempts []model.SessionActivity, nameByCategory map[string]string, scoring config.ScoringConfig) model.ChildProfile {
	profile := model.ChildProfile{
		ChildID:          childID,
		Strengths:        []string{},
		Challenges:       []string{},
		RecommendedLevel: model.DifficultyEasy,
	}

	var total float64
	for _, p := range perfs {
		total += p.OverallScore

		name := nameByCategory[p.CategoryID]
		if name == "" {
			name = p.CategoryID
		}
		if p.OverallScore >= scoring.StrengthThreshold {
			profile.Strengths = append(profile.Strengths, name)
		}
		if p.OverallScore <= scoring.ChallengeThreshold {
			profile.Challenges = append(profile.Challenges, name)
		}
	}
	sort.Strings(profile.Strengths)
	sort.Strings(profile.Challenges)

	// 作答方式偏好：两种方式都有作答时才判定，口头正确率更高才偏 verbal
	var verbalAttempts, verbalSuccess, selectionAttempts, selectionSuccess int
	for _, a := range attempts {
		switch a.ResponseType {
		case model.ResponseVerbal:
			verbalAttempts++
			if a.IsCorrect {
				verbalSuccess++
			}
		case model.ResponseNonverbal:
			selectionAttempts++
			if a.IsCorrect {
				selectionSuccess++
			}
		}
	}
	if verbalAttempts > 0 && selectionAttempts > 0 {
		if successRate(verbalSuccess, verbalAttempts) > successRate(selectionSuccess, selectionAttempts) {
			profile.PreferredModality = model.ResponseVerbal
		} else {
			profile.PreferredModality = model.ResponseNonverbal
		}
	}

	if len(perfs) == 0 {
		return profile
	}
	avg := total / float64(len(perfs))
	switch {
	case avg > 0.75:
		profile.RecommendedLevel = model.DifficultyHard
	case avg > 0.5:
		profile.RecommendedLevel = model.DifficultyMedium
	default:
		profile.RecommendedLevel = model.DifficultyEasy
	}
	return profile
}

// OrderLearningPath 生成路径条目：先巩固强项建立信心，再引入推荐难度下
// 既非强项也非弱项的分类，弱项放最后且目标分降低。priority 从 1 连续递增。
func OrderLearningPath(profile model.ChildProfile, categories []model.ActivityCategory) []model.LearningPathItem {
	ordered := make([]model.ActivityCategory, len(categories))
	copy(ordered, categories)
	sort.SliceStable(ordered, func(i, j int) bool {
		ri, rj := model.DifficultyRank(ordered[i].DifficultyLevel), model.DifficultyRank(ordered[j].DifficultyLevel)
		if ri != rj {
			return ri < rj
		}
		if ordered[i].SortOrder != ordered[j].SortOrder {
			return ordered[i].SortOrder < ordered[j].SortOrder
		}
		return ordered[i].Name < ordered[j].Name
	})

	strengths := make(map[string]bool, len(profile.Strengths))
	for _, name := range profile.Strengths {
		strengths[name] = true
	}
	challenges := make(map[string]bool, len(profile.Challenges))
	for _, name := range profile.Challenges {
		challenges[name] = true
	}

	var strong, fresh, weak []model.LearningPathItem
	for _, c := range ordered {
		switch {
		case strengths[c.Name]:
			strong = append(strong, model.LearningPathItem{
				CategoryID:  c.ID,
				TargetScore: strengthTarget,
				Status:      model.PathStatusPending,
				Reason:      model.PathReasonStrength,
			})
		case challenges[c.Name]:
			weak = append(weak, model.LearningPathItem{
				CategoryID:  c.ID,
				TargetScore: challengeTarget,
				Status:      model.PathStatusPending,
				Reason:      model.PathReasonChallenge,
			})
		case c.DifficultyLevel == profile.RecommendedLevel:
			fresh = append(fresh, model.LearningPathItem{
				CategoryID:  c.ID,
				TargetScore: defaultTargetScore,
				Status:      model.PathStatusPending,
				Reason:      model.PathReasonNewAtLevel,
			})
		}
	}

	items := append(append(strong, fresh...), weak...)
	for i := range items {
		items[i].Priority = i + 1
	}
	return items
}

// AdjustPathTargets 得分到目标九成即上调目标，不足一半则下调，达标标记掌握。
// 目标分始终落在 [0.3, 1.0]。
func AdjustPathTargets(items []model.LearningPathItem, scoreByCategory map[string]float64, now time.Time) []model.LearningPathItem {
	adjusted := make([]model.LearningPathItem, len(items))
	copy(adjusted, items)

	for i := range adjusted {
		item := &adjusted[i]
		score, hasScore := scoreByCategory[item.CategoryID]
		if !hasScore {
			continue
		}

		if item.Status == model.PathStatusPending && score > 0 {
			item.Status = model.PathStatusInProgress
			startedAt := now
			item.StartedAt = &startedAt
		}
		if score >= item.TargetScore && item.Status != model.PathStatusMastered {
			item.Status = model.PathStatusMastered
			masteredAt := now
			item.MasteredAt = &masteredAt
		}

		switch {
		case score >= 0.9*item.TargetScore:
			item.TargetScore = capTarget(item.TargetScore + 0.1)
		case score < 0.5*item.TargetScore:
			item.TargetScore = floorTarget(item.TargetScore - 0.1)
		}
	}
	return adjusted
}

// PickNextItem 按分数档位选条目，排除本会话练过的；全练过时放开排除从头再练。
// 档位：<0.1 取最简单一个，<0.4 取简单条目，>0.8 取困难条目，其余取中档。
// 有作答方式偏好时优先带对应素材的条目（verbal 配音频，nonverbal 配图片）。
func PickNextItem(items []model.ActivityItem, category *model.ActivityCategory, score float64, attempted map[string]bool, preferredModality string) *model.ActivityItem {
	if len(items) == 0 {
		return nil
	}

	pool := bandPool(items, category, score)
	candidates := make([]model.ActivityItem, 0, len(pool))
	for _, it := range pool {
		if !attempted[it.ID] {
			candidates = append(candidates, it)
		}
	}
	if len(candidates) == 0 {
		candidates = append(candidates, pool...)
	}

	orderByModality(candidates, category, preferredModality)
	return &candidates[0]
}

func bandPool(items []model.ActivityItem, category *model.ActivityCategory, score float64) []model.ActivityItem {
	switch {
	case score < 0.1:
		best := 0
		bestRank := model.DifficultyRank(items[0].EffectiveDifficulty(category))
		for i := 1; i < len(items); i++ {
			if r := model.DifficultyRank(items[i].EffectiveDifficulty(category)); r < bestRank {
				best, bestRank = i, r
			}
		}
		return items[best : best+1]
	case score < 0.4:
		if easy := filterByDifficulty(items, category, model.DifficultyEasy); len(easy) > 0 {
			return easy
		}
		return items[:minInt(3, len(items))]
	case score > 0.8:
		if hard := filterByDifficulty(items, category, model.DifficultyHard); len(hard) > 0 {
			return hard
		}
		return items[len(items)-minInt(3, len(items)):]
	default:
		if medium := filterByDifficulty(items, category, model.DifficultyMedium); len(medium) > 0 {
			return medium
		}
		if len(items) > 6 {
			return items[3 : len(items)-3]
		}
		return items
	}
}

func orderByModality(items []model.ActivityItem, category *model.ActivityCategory, modality string) {
	if modality == "" {
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		hi, hj := hasModalityAsset(items[i], modality), hasModalityAsset(items[j], modality)
		if hi != hj {
			return hi
		}
		ri := model.DifficultyRank(items[i].EffectiveDifficulty(category))
		rj := model.DifficultyRank(items[j].EffectiveDifficulty(category))
		return ri < rj
	})
}

func hasModalityAsset(item model.ActivityItem, modality string) bool {
	if modality == model.ResponseVerbal {
		return item.AudioURL != ""
	}
	return item.ImageURL != ""
}

func filterByDifficulty(items []model.ActivityItem, category *model.ActivityCategory, level string) []model.ActivityItem {
	var out []model.ActivityItem
	for _, it := range items {
		if it.EffectiveDifficulty(category) == level {
			out = append(out, it)
		}
	}
	return out
}

// AnalyzeErrorPatterns 从错误的口头作答中提取发音问题模式
func AnalyzeErrorPatterns(activities []model.SessionActivity, nameByItem map[string]string) map[string]string {
	patterns := make(map[string]string)
	for _, a := range activities {
		if a.IsCorrect || a.ResponseType != model.ResponseVerbal || a.ResponseText == "" {
			continue
		}
		switch {
		case phonetic.IsEcholalic(a.ResponseText):
			patterns["echolalia"] = "Echoed responses - model the word once, then wait before prompting."
		case phonetic.DetectStuttering(a.ResponseText):
			patterns["stuttering"] = "Repeated word starts - encourage a slow, easy onset."
		default:
			expected := nameByItem[a.ItemID]
			if expected == "" {
				continue
			}
			diff := phonetic.MostDifferentSound(
				phonetic.NormalizeDisfluencies(expected),
				phonetic.NormalizeDisfluencies(a.ResponseText),
			)
			patterns["substitution"] = fmt.Sprintf("Practice the '%s' sound with slow repetition.", diff)
		}
	}
	return patterns
}

// BuildAdaptation 最近作答正确率高则加难，偏低则降难，否则保持
func BuildAdaptation(recent []model.SessionActivity, errorPatterns map[string]string) []model.AdaptationRecommendation {
	if len(recent) == 0 {
		return []model.AdaptationRecommendation{{
			Action:   "continue",
			Feedback: "Not enough responses yet - keep going!",
		}}
	}

	correct := 0
	for _, a := range recent {
		if a.IsCorrect {
			correct++
		}
	}
	accuracy := float64(correct) / float64(len(recent))

	var recs []model.AdaptationRecommendation
	switch {
	case accuracy > 0.8:
		recs = append(recs, model.AdaptationRecommendation{
			Action:               "challenge",
			DifficultyAdjustment: 1,
			Feedback:             "Doing great! Let's try something a little harder.",
		})
	case accuracy < 0.3:
		recs = append(recs, model.AdaptationRecommendation{
			Action:               "simplify",
			DifficultyAdjustment: -1,
			Feedback:             "Let's slow down and practice something easier.",
		})
	default:
		recs = append(recs, model.AdaptationRecommendation{
			Action:   "continue",
			Feedback: "Nice steady progress - keep practicing!",
		})
	}

	if len(errorPatterns) > 0 {
		recs = append(recs, model.AdaptationRecommendation{
			Action:        "focus",
			Feedback:      "Focus on the sound patterns below during the next attempts.",
			ErrorPatterns: errorPatterns,
		})
	}
	return recs
}

func categoryNames(categories []model.ActivityCategory) map[string]string {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names
}

func scoresByCategory(perfs []model.ChildPerformance) map[string]float64 {
	scores := make(map[string]float64, len(perfs))
	for _, p := range perfs {
		scores[p.CategoryID] = p.OverallScore
	}
	return scores
}

func capTarget(v float64) float64 {
	if v > maxTargetScore {
		return maxTargetScore
	}
	return v
}

func floorTarget(v float64) float64 {
	if v < minTargetScore {
		return minTargetScore
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
