package repository

import (
	"speech_therapy_backend/internal/model"

	"gorm.io/gorm"
)

type FeedbackRepository struct {
	DB *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{DB: db}
}

func (r *FeedbackRepository) Create(feedback *model.CaregiverFeedback) error {
	return r.DB.Create(feedback).Error
}

func (r *FeedbackRepository) ListByChild(childID string, limit int) ([]model.CaregiverFeedback, error) {
	var fs []model.CaregiverFeedback
	query := r.DB.Where("child_id = ?", childID).Order("created_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&fs).Error
	return fs, err
}
