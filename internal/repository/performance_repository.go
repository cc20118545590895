package repository

import (
	"errors"
	"speech_therapy_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type PerformanceRepository struct {
	DB *gorm.DB
}

func NewPerformanceRepository(db *gorm.DB) *PerformanceRepository {
	return &PerformanceRepository{DB: db}
}

func (r *PerformanceRepository) ListByChild(childID string) ([]model.ChildPerformance, error) {
	var ps []model.ChildPerformance
	err := r.DB.Where("child_id = ?", childID).Find(&ps).Error
	return ps, err
}

// Upsert 不存在则插入，存在则整体覆盖统计字段。
// 并发写采用后写覆盖：聚合是全量重算，结果幂等。
func (r *PerformanceRepository) Upsert(perf *model.ChildPerformance) error {
	var existing model.ChildPerformance
	err := r.DB.Where("child_id = ? AND category_id = ?", perf.ChildID, perf.CategoryID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		perf.LastUpdated = time.Now()
		return r.DB.Create(perf).Error
	}
	if err != nil {
		return err
	}

	existing.OverallScore = perf.OverallScore
	existing.VerbalAttempts = perf.VerbalAttempts
	existing.VerbalSuccess = perf.VerbalSuccess
	existing.SelectionAttempts = perf.SelectionAttempts
	existing.SelectionSuccess = perf.SelectionSuccess
	existing.LastUpdated = time.Now()
	if err := r.DB.Save(&existing).Error; err != nil {
		return err
	}
	*perf = existing
	return nil
}
