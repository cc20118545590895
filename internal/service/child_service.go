package service

import (
	"errors"

	"speech_therapy_backend/internal/model"
	"speech_therapy_backend/internal/repository"
	"speech_therapy_backend/internal/util"

	"gorm.io/gorm"
)

type ChildService struct {
	childRepo *repository.ChildRepository
}

func NewChildService(childRepo *repository.ChildRepository) *ChildService {
	return &ChildService{childRepo: childRepo}
}

func (s *ChildService) CreateChild(caregiverID uint, name string, age int, diagnosis, notes string) (*model.Child, error) {
	child := &model.Child{
		CaregiverID: caregiverID,
		Name:        name,
		Age:         age,
		Diagnosis:   diagnosis,
		Notes:       notes,
	}
	if err := s.childRepo.Create(child); err != nil {
		return nil, err
	}
	return child, nil
}

func (s *ChildService) ListChildren(caregiverID uint) ([]model.Child, error) {
	return s.childRepo.ListByCaregiver(caregiverID)
}

// GetChild 陪护人只能访问自己名下的孩子，治疗师和管理员不受限
func (s *ChildService) GetChild(claims *util.Claims, childID string) (*model.Child, error) {
	child, err := s.childRepo.FindByID(childID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrChildNotFound
		}
		return nil, err
	}
	if claims.Role == model.Caregiver && child.CaregiverID != claims.UserID {
		return nil, util.ErrPermissionDenied
	}
	return child, nil
}

func (s *ChildService) UpdateChild(claims *util.Claims, childID string, name string, age int, diagnosis, notes string) (*model.Child, error) {
	child, err := s.GetChild(claims, childID)
	if err != nil {
		return nil, err
	}

	if name != "" {
		child.Name = name
	}
	if age > 0 {
		child.Age = age
	}
	child.Diagnosis = diagnosis
	child.Notes = notes
	if err := s.childRepo.Update(child); err != nil {
		return nil, err
	}
	return child, nil
}

func (s *ChildService) DeleteChild(claims *util.Claims, childID string) error {
	if _, err := s.GetChild(claims, childID); err != nil {
		return err
	}
	return s.childRepo.Delete(childID)
}
