package model

import "time"

const (
	ResponseVerbal    = "verbal"
	ResponseNonverbal = "nonverbal"
)

// swagger:model TherapySession
type TherapySession struct {
	UUIDBase
	ChildID      string     `gorm:"index;type:varchar(36);not null" json:"childId"`
	CaregiverID  uint       `gorm:"index;type:bigint unsigned" json:"caregiverId"`
	CategoryID   string     `gorm:"index;type:varchar(36);not null" json:"categoryId"`
	StartTime    time.Time  `json:"startTime"`
	EndTime      *time.Time `json:"endTime"`
	CurrentLevel string     `gorm:"size:20" json:"currentLevel"`
	IsCompleted  bool       `gorm:"default:false" json:"isCompleted"`
}

func (TherapySession) TableName() string {
	return "therapy_sessions"
}

// DurationMinutes 会话时长（分钟），未结束返回 0
func (s TherapySession) DurationMinutes() float64 {
	if s.EndTime == nil {
		return 0
	}
	return s.EndTime.Sub(s.StartTime).Minutes()
}

// SessionActivity 一次作答记录，写入后不再修改
// swagger:model SessionActivity
type SessionActivity struct {
	UUIDBase
	SessionID           string   `gorm:"index;type:varchar(36);not null" json:"sessionId"`
	ItemID              string   `gorm:"index;type:varchar(36);not null" json:"itemId"`
	AttemptNumber       int      `gorm:"default:1" json:"attemptNumber"`
	ResponseType        string   `gorm:"size:10" json:"responseType"` // verbal / nonverbal
	ResponseText        string   `gorm:"size:512" json:"responseText"`
	IsCorrect           bool     `json:"isCorrect"`
	PronunciationScore  *float64 `json:"pronunciationScore"`
	ResponseTimeSeconds float64  `gorm:"default:0" json:"responseTimeSeconds"`
	Feedback            string   `gorm:"size:512" json:"feedback"`
}

func (SessionActivity) TableName() string {
	return "session_activities"
}
