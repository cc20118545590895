package service

import (
	"errors"

	"speech_therapy_backend/internal/model"
	"speech_therapy_backend/internal/repository"
	"speech_therapy_backend/internal/util"

	"gorm.io/gorm"
)

type FeedbackService struct {
	feedbackRepo *repository.FeedbackRepository
	childRepo    *repository.ChildRepository
}

func NewFeedbackService(feedbackRepo *repository.FeedbackRepository, childRepo *repository.ChildRepository) *FeedbackService {
	return &FeedbackService{
		feedbackRepo: feedbackRepo,
		childRepo:    childRepo,
	}
}

func (s *FeedbackService) SubmitFeedback(caregiverID uint, feedback *model.CaregiverFeedback) (*model.CaregiverFeedback, error) {
	if _, err := s.childRepo.FindByID(feedback.ChildID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrChildNotFound
		}
		return nil, err
	}

	feedback.CaregiverID = caregiverID
	if feedback.Rating < 1 {
		feedback.Rating = 1
	}
	if feedback.Rating > 5 {
		feedback.Rating = 5
	}
	if err := s.feedbackRepo.Create(feedback); err != nil {
		return nil, err
	}
	return feedback, nil
}

func (s *FeedbackService) ListChildFeedback(childID string, limit int) ([]model.CaregiverFeedback, error) {
	if _, err := s.childRepo.FindByID(childID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrChildNotFound
		}
		return nil, err
	}
	return s.feedbackRepo.ListByChild(childID, limit)
}
