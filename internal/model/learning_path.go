package model

import "time"

const (
	PathStatusPending    = "pending"
	PathStatusInProgress = "in-progress"
	PathStatusMastered   = "mastered"
)

const (
	PathReasonStrength   = "strength"
	PathReasonNewAtLevel = "new_at_level"
	PathReasonChallenge  = "challenge"
)

// LearningPathItem 学习路径条目，整条路径属于一个孩子，重新生成时整体删除重建
// swagger:model LearningPathItem
type LearningPathItem struct {
	UUIDBase
	ChildID     string     `gorm:"index;type:varchar(36);not null" json:"childId"`
	CategoryID  string     `gorm:"type:varchar(36);not null" json:"categoryId"`
	TargetScore float64    `gorm:"default:0.7" json:"targetScore"`
	Priority    int        `gorm:"not null" json:"priority"` // 1 为最高优先级
	Status      string     `gorm:"size:20;default:'pending'" json:"status"`
	Reason      string     `gorm:"size:20" json:"reason"`
	StartedAt   *time.Time `json:"startedAt"`
	MasteredAt  *time.Time `json:"masteredAt"`
}

func (LearningPathItem) TableName() string {
	return "learning_path_items"
}
