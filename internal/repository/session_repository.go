package repository

import (
	"exam_portal_backend/internal/model"

	"gorm.io/gorm"
)

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

func (r *SessionRepository) Create(session *model.ExamSession) error {
	return r.DB.Create(session).Error
}

func (r *SessionRepository) FindByID(id string) (*model.ExamSession, error) {
	var s model.ExamSession
	err := r.DB.First(&s, "id = ?", id).Error
	return &s, err
}

func (r *SessionRepository) FindByStudentAndExam(studentID uint, examID string) (*model.ExamSession, error) {
	var s model.ExamSession
	err := r.DB.Where("student_id = ? AND exam_id = ?", studentID, examID).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Update persists the whole session row, including the answers JSON and the
// aggregate score columns, as a single record write.
func (r *SessionRepository) Update(session *model.ExamSession) error {
	return r.DB.Save(session).Error
}

type SessionListRow struct {
	model.ExamSession
	StudentName  string `json:"studentName"`
	StudentEmail string `json:"studentEmail"`
	FlagCount    int    `json:"flagCount"`
}

func (r *SessionRepository) ListByExam(examID string, page, limit int, studentName string, gradingStatus string) ([]SessionListRow, int64, error) {
	query := r.DB.Table("exam_sessions s").
		Select("s.*, u.name as student_name, u.email as student_email, "+
			"(SELECT COUNT(*) FROM proctor_flags f WHERE f.session_id = s.id AND f.deleted_at IS NULL) as flag_count").
		Joins("JOIN users u ON s.student_id = u.id").
		Where("s.exam_id = ? AND s.deleted_at IS NULL", examID)

	if studentName != "" {
		query = query.Where("u.name LIKE ?", "%"+studentName+"%")
	}
	if gradingStatus != "" {
		query = query.Where("s.grading_status = ?", gradingStatus)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []SessionListRow
	offset := (page - 1) * limit
	err := query.Order("s.created_at desc").Offset(offset).Limit(limit).Scan(&rows).Error
	return rows, total, err
}

// ListPendingGrading returns submitted sessions that still have manual
// grading outstanding, across all exams owned by the institution.
func (r *SessionRepository) ListPendingGrading(institutionID uint, page, limit int) ([]SessionListRow, int64, error) {
	query := r.DB.Table("exam_sessions s").
		Select("s.*, u.name as student_name, u.email as student_email, "+
			"(SELECT COUNT(*) FROM proctor_flags f WHERE f.session_id = s.id AND f.deleted_at IS NULL) as flag_count").
		Joins("JOIN users u ON s.student_id = u.id").
		Joins("JOIN exams e ON s.exam_id = e.id").
		Where("s.deleted_at IS NULL AND s.status = ? AND s.grading_status IN ? AND e.institution_id = ?",
			model.SessionSubmitted, []string{"pending", "partial"}, institutionID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []SessionListRow
	offset := (page - 1) * limit
	err := query.Order("s.submitted_at asc").Offset(offset).Limit(limit).Scan(&rows).Error
	return rows, total, err
}

func (r *SessionRepository) ListByStudent(studentID uint) ([]model.ExamSession, error) {
	var sessions []model.ExamSession
	err := r.DB.Where("student_id = ?", studentID).Order("created_at desc").Find(&sessions).Error
	return sessions, err
}

// PurgeByExam removes every session of an exam together with its proctor
// flags. Used by the administrative bulk purge.
func (r *SessionRepository) PurgeByExam(examID string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var sessionIDs []string
		if err := tx.Model(&model.ExamSession{}).Where("exam_id = ?", examID).Pluck("id", &sessionIDs).Error; err != nil {
			return err
		}
		if len(sessionIDs) > 0 {
			if err := tx.Where("session_id IN ?", sessionIDs).Delete(&model.ProctorFlag{}).Error; err != nil {
				return err
			}
		}
		return tx.Where("exam_id = ?", examID).Delete(&model.ExamSession{}).Error
	})
}

func (r *SessionRepository) CreateProctorFlag(flag *model.ProctorFlag) error {
	return r.DB.Create(flag).Error
}

func (r *SessionRepository) ListProctorFlags(sessionID string) ([]model.ProctorFlag, error) {
	var flags []model.ProctorFlag
	err := r.DB.Where("session_id = ?", sessionID).Order("flagged_at asc").Find(&flags).Error
	return flags, err
}

type ExamFlagRow struct {
	SessionID   string `json:"sessionId"`
	StudentID   uint   `json:"studentId"`
	StudentName string `json:"studentName"`
	Kind        string `json:"kind"`
	Count       int    `json:"count"`
}

func (r *SessionRepository) CountFlagsByExam(examID string) ([]ExamFlagRow, error) {
	var rows []ExamFlagRow
	err := r.DB.Table("proctor_flags f").
		Select("f.session_id, s.student_id, u.name as student_name, f.kind, COUNT(*) as count").
		Joins("JOIN exam_sessions s ON f.session_id = s.id").
		Joins("JOIN users u ON s.student_id = u.id").
		Where("s.exam_id = ? AND f.deleted_at IS NULL", examID).
		Group("f.session_id, s.student_id, u.name, f.kind").
		Scan(&rows).Error
	return rows, err
}
