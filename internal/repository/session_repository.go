package repository

import (
	"speech_therapy_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

func (r *SessionRepository) Create(session *model.TherapySession) error {
	return r.DB.Create(session).Error
}

func (r *SessionRepository) FindByID(id string) (*model.TherapySession, error) {
	var s model.TherapySession
	err := r.DB.Where("id = ?", id).First(&s).Error
	return &s, err
}

func (r *SessionRepository) Update(session *model.TherapySession) error {
	return r.DB.Save(session).Error
}

func (r *SessionRepository) ListByChild(childID string, limit int) ([]model.TherapySession, error) {
	var ss []model.TherapySession
	query := r.DB.Where("child_id = ?", childID).Order("start_time desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&ss).Error
	return ss, err
}

func (r *SessionRepository) ListByChildBetween(childID string, start, end time.Time) ([]model.TherapySession, error) {
	var ss []model.TherapySession
	err := r.DB.Where("child_id = ? AND start_time >= ? AND start_time <= ?", childID, start, end).
		Order("start_time asc").Find(&ss).Error
	return ss, err
}

func (r *SessionRepository) ListCompletedByChild(childID string) ([]model.TherapySession, error) {
	var ss []model.TherapySession
	err := r.DB.Where("child_id = ? AND end_time IS NOT NULL", childID).Find(&ss).Error
	return ss, err
}

func (r *SessionRepository) CreateActivity(activity *model.SessionActivity) error {
	return r.DB.Create(activity).Error
}

func (r *SessionRepository) ListActivities(sessionID string) ([]model.SessionActivity, error) {
	var as []model.SessionActivity
	err := r.DB.Where("session_id = ?", sessionID).Order("created_at asc").Find(&as).Error
	return as, err
}

// ListRecentActivities 倒序取最近 limit 条作答
func (r *SessionRepository) ListRecentActivities(sessionID string, limit int) ([]model.SessionActivity, error) {
	var as []model.SessionActivity
	err := r.DB.Where("session_id = ?", sessionID).Order("created_at desc").Limit(limit).Find(&as).Error
	return as, err
}

// ListActivitiesByChild 跨会话取某孩子的全部作答
func (r *SessionRepository) ListActivitiesByChild(childID string) ([]model.SessionActivity, error) {
	var as []model.SessionActivity
	err := r.DB.
		Joins("JOIN therapy_sessions ON therapy_sessions.id = session_activities.session_id").
		Where("therapy_sessions.child_id = ?", childID).
		Find(&as).Error
	return as, err
}

// ListActivitiesByChildAndCategory 跨会话取某孩子在某分类下的全部作答
func (r *SessionRepository) ListActivitiesByChildAndCategory(childID, categoryID string) ([]model.SessionActivity, error) {
	var as []model.SessionActivity
	err := r.DB.
		Joins("JOIN therapy_sessions ON therapy_sessions.id = session_activities.session_id").
		Where("therapy_sessions.child_id = ? AND therapy_sessions.category_id = ?", childID, categoryID).
		Find(&as).Error
	return as, err
}

func (r *SessionRepository) ListActivitiesForSessions(sessionIDs []string) ([]model.SessionActivity, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	var as []model.SessionActivity
	err := r.DB.Where("session_id IN ?", sessionIDs).Find(&as).Error
	return as, err
}

// AttemptedItemIDs 当前会话已作答过的条目ID集合
func (r *SessionRepository) AttemptedItemIDs(sessionID string) (map[string]bool, error) {
	var ids []string
	err := r.DB.Model(&model.SessionActivity{}).
		Where("session_id = ?", sessionID).
		Pluck("item_id", &ids).Error
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}
