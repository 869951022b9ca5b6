package repository

import (
	"exam_portal_backend/internal/model"

	"gorm.io/gorm"
)

// AnalyticsRepository serves the dashboard queries. Each method is one
// straightforward query; grouping and derived numbers happen in the
// analytics service.
type AnalyticsRepository struct {
	DB *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{DB: db}
}

type ScoreRow struct {
	SessionID        string  `json:"sessionId"`
	StudentID        uint    `json:"studentId"`
	DepartmentID     *uint   `json:"departmentId"`
	TotalScore       float64 `json:"totalScore"`
	MaxPossibleScore float64 `json:"maxPossibleScore"`
	GradingStatus    string  `json:"gradingStatus"`
	IsTimeout        bool    `json:"isTimeout"`
}

func (r *AnalyticsRepository) ScoresByExam(examID string) ([]ScoreRow, error) {
	var rows []ScoreRow
	err := r.DB.Table("exam_sessions s").
		Select("s.id as session_id, s.student_id, u.department_id, s.total_score, s.max_possible_score, s.grading_status, s.is_timeout").
		Joins("JOIN users u ON s.student_id = u.id").
		Where("s.exam_id = ? AND s.status = ? AND s.deleted_at IS NULL", examID, model.SessionSubmitted).
		Scan(&rows).Error
	return rows, err
}

func (r *AnalyticsRepository) CountUsersByRole(institutionID uint) (map[string]int64, error) {
	type row struct {
		Role  string
		Count int64
	}
	var rows []row
	err := r.DB.Model(&model.User{}).
		Select("role, COUNT(*) as count").
		Where("institution_id = ?", institutionID).
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, rw := range rows {
		out[rw.Role] = rw.Count
	}
	return out, nil
}

func (r *AnalyticsRepository) CountExams(institutionID uint) (total, published int64, err error) {
	if err = r.DB.Model(&model.Exam{}).Where("institution_id = ?", institutionID).Count(&total).Error; err != nil {
		return
	}
	err = r.DB.Model(&model.Exam{}).Where("institution_id = ? AND is_published = ?", institutionID, true).Count(&published).Error
	return
}

func (r *AnalyticsRepository) CountSessionsByGradingStatus(institutionID uint) (map[string]int64, error) {
	type row struct {
		GradingStatus string
		Count         int64
	}
	var rows []row
	err := r.DB.Table("exam_sessions s").
		Select("s.grading_status, COUNT(*) as count").
		Joins("JOIN exams e ON s.exam_id = e.id").
		Where("s.status = ? AND s.deleted_at IS NULL AND e.institution_id = ?", model.SessionSubmitted, institutionID).
		Group("s.grading_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, rw := range rows {
		out[rw.GradingStatus] = rw.Count
	}
	return out, nil
}

func (r *AnalyticsRepository) CountFlaggedSessions(institutionID uint) (int64, error) {
	var count int64
	err := r.DB.Table("exam_sessions s").
		Joins("JOIN exams e ON s.exam_id = e.id").
		Where("e.institution_id = ? AND s.deleted_at IS NULL", institutionID).
		Where("EXISTS (SELECT 1 FROM proctor_flags f WHERE f.session_id = s.id AND f.deleted_at IS NULL)").
		Count(&count).Error
	return count, err
}
