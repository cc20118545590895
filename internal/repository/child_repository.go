package repository

import (
	"speech_therapy_backend/internal/model"

	"gorm.io/gorm"
)

type ChildRepository struct {
	DB *gorm.DB
}

func NewChildRepository(db *gorm.DB) *ChildRepository {
	return &ChildRepository{DB: db}
}

func (r *ChildRepository) Create(child *model.Child) error {
	return r.DB.Create(child).Error
}

func (r *ChildRepository) FindByID(id string) (*model.Child, error) {
	var c model.Child
	err := r.DB.Where("id = ?", id).First(&c).Error
	return &c, err
}

func (r *ChildRepository) ListByCaregiver(caregiverID uint) ([]model.Child, error) {
	var cs []model.Child
	err := r.DB.Where("caregiver_id = ?", caregiverID).Order("created_at asc").Find(&cs).Error
	return cs, err
}

func (r *ChildRepository) Update(child *model.Child) error {
	return r.DB.Save(child).Error
}

func (r *ChildRepository) Delete(id string) error {
	return r.DB.Where("id = ?", id).Delete(&model.Child{}).Error
}
