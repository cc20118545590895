package model

import "time"

// ChildProfile 由当前表现数据即时推导，不落库、不跨调用缓存
// swagger:model ChildProfile
type ChildProfile struct {
	ChildID           string   `json:"childId"`
	Strengths         []string `json:"strengths"`  // overall_score >= 强项阈值 的分类
	Challenges        []string `json:"challenges"` // overall_score <= 弱项阈值 的分类
	PreferredModality string   `json:"preferredModality"` // verbal / nonverbal，数据不足时为空
	RecommendedLevel  string   `json:"recommendedLevel"`  // easy / medium / hard
}

// swagger:model LearningPathEntry
type LearningPathEntry struct {
	CategoryID   string  `json:"categoryId"`
	CategoryName string  `json:"categoryName"`
	TargetScore  float64 `json:"targetScore"`
	CurrentScore float64 `json:"currentScore"`
	Priority     int     `json:"priority"`
	Status       string  `json:"status"`
	Reason       string  `json:"reason"`
}

// swagger:model LearningPathView
type LearningPathView struct {
	ChildID   string              `json:"childId"`
	Entries   []LearningPathEntry `json:"entries"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

// NextActivityGroup 推荐的分类及其待练条目
// swagger:model NextActivityGroup
type NextActivityGroup struct {
	CategoryID   string         `json:"categoryId"`
	CategoryName string         `json:"categoryName"`
	Items        []ActivityItem `json:"items"`
}

// swagger:model ProgressTracking
type ProgressTracking struct {
	TotalCategories    int     `json:"totalCategories"`
	MasteredCategories int     `json:"masteredCategories"` // overall_score >= 0.8
	AverageScore       float64 `json:"averageScore"`
	TotalAttempts      int     `json:"totalAttempts"`
}

// Recommendations 规则推荐与模型推荐的合并结果
// swagger:model Recommendations
type Recommendations struct {
	PracticeMore     []string            `json:"practiceMore"`
	NextActivities   []NextActivityGroup `json:"nextActivities"`
	ProgressTracking ProgressTracking    `json:"progressTracking"`
	Encouragement    string              `json:"encouragement"`
	MLRecommendation string              `json:"mlRecommendation"`
	MLSource         string              `json:"mlSource"` // model / fallback
	Confidence       float64             `json:"confidence"`
	IsNewChild       bool                `json:"isNewChild"`
}

// swagger:model TrendWindow
type TrendWindow struct {
	Trend         string  `json:"trend"` // improving / declining / stable / insufficient data / no data
	Rate          float64 `json:"rate"`
	CurrentScore  float64 `json:"currentScore"`
	StartingScore float64 `json:"startingScore"`
}

// swagger:model TrendReport
type TrendReport struct {
	WeeklyTrend      TrendWindow `json:"weeklyTrend"`
	MonthlyTrend     TrendWindow `json:"monthlyTrend"`
	ImprovementAreas []string    `json:"improvementAreas"`
}

// swagger:model ActivityDetail
type ActivityDetail struct {
	ItemName            string   `json:"itemName"`
	ResponseType        string   `json:"responseType"`
	IsCorrect           bool     `json:"isCorrect"`
	PronunciationScore  *float64 `json:"pronunciationScore"`
	ResponseTimeSeconds float64  `json:"responseTimeSeconds"`
	Feedback            string   `json:"feedback"`
}

// swagger:model SessionOverview
type SessionOverview struct {
	SessionID           string           `json:"sessionId"`
	ChildName           string           `json:"childName"`
	CategoryName        string           `json:"categoryName"`
	StartTime           time.Time        `json:"startTime"`
	DurationMinutes     float64          `json:"durationMinutes"`
	TotalActivities     int              `json:"totalActivities"`
	CorrectAnswers      int              `json:"correctAnswers"`
	AccuracyPercentage  float64          `json:"accuracyPercentage"`
	AverageResponseTime float64          `json:"averageResponseTime"`
	Activities          []ActivityDetail `json:"activities"`
	Strengths           []string         `json:"strengths"`
	AreasForImprovement []string         `json:"areasForImprovement"`
	Recommendations     []string         `json:"recommendations"`
}

// swagger:model AdaptationRecommendation
type AdaptationRecommendation struct {
	Action               string            `json:"action"` // simplify / challenge / continue / focus
	DifficultyAdjustment int               `json:"difficultyAdjustment"`
	Feedback             string            `json:"feedback"`
	ErrorPatterns        map[string]string `json:"errorPatterns,omitempty"`
}

// swagger:model AdaptationReport
type AdaptationReport struct {
	SessionID       string                     `json:"sessionId"`
	Recommendations []AdaptationRecommendation `json:"recommendations"`
	GeneratedAt     time.Time                  `json:"generatedAt"`
}
