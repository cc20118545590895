package model

import "time"

// ChildPerformance 每个 (child, category) 一行，由聚合整体重算，不做增量修补
// swagger:model ChildPerformance
type ChildPerformance struct {
	UUIDBase
	ChildID           string    `gorm:"uniqueIndex:idx_child_category;type:varchar(36);not null" json:"childId"`
	CategoryID        string    `gorm:"uniqueIndex:idx_child_category;type:varchar(36);not null" json:"categoryId"`
	OverallScore      float64   `gorm:"default:0" json:"overallScore"`
	VerbalAttempts    int       `gorm:"default:0" json:"verbalAttempts"`
	VerbalSuccess     int       `gorm:"default:0" json:"verbalSuccess"`
	SelectionAttempts int       `gorm:"default:0" json:"selectionAttempts"`
	SelectionSuccess  int       `gorm:"default:0" json:"selectionSuccess"`
	LastUpdated       time.Time `json:"lastUpdated"`
}

func (ChildPerformance) TableName() string {
	return "child_performance"
}
