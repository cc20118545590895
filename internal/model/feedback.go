package model

// swagger:model CaregiverFeedback
type CaregiverFeedback struct {
	UUIDBase
	SessionID            string `gorm:"index;type:varchar(36)" json:"sessionId"`
	ChildID              string `gorm:"index;type:varchar(36);not null" json:"childId"`
	CaregiverID          uint   `gorm:"index;type:bigint unsigned" json:"caregiverId"`
	Rating               int    `gorm:"default:0" json:"rating"` // 1-5
	Comments             string `gorm:"type:text" json:"comments"`
	ProgressAchievements string `gorm:"type:text" json:"progressAchievements"`
	AreasForImprovement  string `gorm:"type:text" json:"areasForImprovement"`
	BehavioralNotes      string `gorm:"type:text" json:"behavioralNotes"`
	FeedbackType         string `gorm:"size:20" json:"feedbackType"`
}

func (CaregiverFeedback) TableName() string {
	return "caregiver_feedback"
}
