package repository

import (
	"speech_therapy_backend/internal/model"

	"gorm.io/gorm"
)

type ActivityRepository struct {
	DB *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{DB: db}
}

func (r *ActivityRepository) CreateCategory(category *model.ActivityCategory) error {
	return r.DB.Create(category).Error
}

func (r *ActivityRepository) FindCategoryByID(id string) (*model.ActivityCategory, error) {
	var c model.ActivityCategory
	err := r.DB.Where("id = ?", id).First(&c).Error
	return &c, err
}

// ListCategories 目录序：sort_order 为主，创建时间为辅
func (r *ActivityRepository) ListCategories() ([]model.ActivityCategory, error) {
	var cs []model.ActivityCategory
	err := r.DB.Order("sort_order asc, created_at asc").Find(&cs).Error
	return cs, err
}

func (r *ActivityRepository) CreateItem(item *model.ActivityItem) error {
	return r.DB.Create(item).Error
}

func (r *ActivityRepository) FindItemByID(id string) (*model.ActivityItem, error) {
	var i model.ActivityItem
	err := r.DB.Where("id = ?", id).First(&i).Error
	return &i, err
}

func (r *ActivityRepository) ListItemsByCategory(categoryID string) ([]model.ActivityItem, error) {
	var is []model.ActivityItem
	err := r.DB.Where("category_id = ?", categoryID).Order("sort_order asc, created_at asc").Find(&is).Error
	return is, err
}
