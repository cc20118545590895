package repository

import (
	"speech_therapy_backend/internal/model"

	"gorm.io/gorm"
)

type LearningPathRepository struct {
	DB *gorm.DB
}

func NewLearningPathRepository(db *gorm.DB) *LearningPathRepository {
	return &LearningPathRepository{DB: db}
}

func (r *LearningPathRepository) ListByChild(childID string) ([]model.LearningPathItem, error) {
	var items []model.LearningPathItem
	err := r.DB.Where("child_id = ?", childID).Order("priority asc").Find(&items).Error
	return items, err
}

// ReplaceForChild 删旧插新放在同一事务里，外部观察不到空路径的中间态
func (r *LearningPathRepository) ReplaceForChild(childID string, items []model.LearningPathItem) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("child_id = ?", childID).Delete(&model.LearningPathItem{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].ChildID = childID
			if err := tx.Create(&items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *LearningPathRepository) UpdateItem(item *model.LearningPathItem) error {
	return r.DB.Save(item).Error
}
