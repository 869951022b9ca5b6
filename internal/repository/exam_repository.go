package repository

import (
	"exam_portal_backend/internal/model"

	"gorm.io/gorm"
)

type ExamRepository struct {
	DB *gorm.DB
}

func NewExamRepository(db *gorm.DB) *ExamRepository {
	return &ExamRepository{DB: db}
}

func (r *ExamRepository) Create(exam *model.Exam) error {
	return r.DB.Create(exam).Error
}

func (r *ExamRepository) FindByID(id string) (*model.Exam, error) {
	var exam model.Exam
	err := r.DB.First(&exam, "id = ?", id).Error
	return &exam, err
}

func (r *ExamRepository) Update(exam *model.Exam) error {
	return r.DB.Save(exam).Error
}

// Delete removes the exam with its questions, sessions and proctor flags in
// one transaction.
func (r *ExamRepository) Delete(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("exam_id = ?", id).Delete(&model.ExamQuestion{}).Error; err != nil {
			return err
		}
		var sessionIDs []string
		if err := tx.Model(&model.ExamSession{}).Where("exam_id = ?", id).Pluck("id", &sessionIDs).Error; err != nil {
			return err
		}
		if len(sessionIDs) > 0 {
			if err := tx.Where("session_id IN ?", sessionIDs).Delete(&model.ProctorFlag{}).Error; err != nil {
				return err
			}
			if err := tx.Where("exam_id = ?", id).Delete(&model.ExamSession{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&model.Exam{}, "id = ?", id).Error
	})
}

type ExamListRow struct {
	model.Exam
	QuestionCount  int `json:"questionCount"`
	SubmittedCount int `json:"submittedCount"`
}

type ExamFilter struct {
	InstitutionID uint
	DepartmentID  *uint
	CreatorID     uint
	PublishedOnly bool
	Page          int
	Limit         int
}

func (r *ExamRepository) List(f ExamFilter) ([]ExamListRow, int64, error) {
	countQuery := r.DB.Model(&model.Exam{}).Where("institution_id = ?", f.InstitutionID)
	if f.DepartmentID != nil {
		countQuery = countQuery.Where("department_id = ?", *f.DepartmentID)
	}
	if f.CreatorID != 0 {
		countQuery = countQuery.Where("creator_id = ?", f.CreatorID)
	}
	if f.PublishedOnly {
		countQuery = countQuery.Where("is_published = ?", true)
	}

	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.DB.Table("exams e").
		Select("e.*, " +
			"(SELECT COUNT(*) FROM exam_questions q WHERE q.exam_id = e.id AND q.deleted_at IS NULL) as question_count, " +
			"(SELECT COUNT(*) FROM exam_sessions s WHERE s.exam_id = e.id AND s.deleted_at IS NULL AND s.status = 'submitted') as submitted_count").
		Where("e.deleted_at IS NULL AND e.institution_id = ?", f.InstitutionID)

	if f.DepartmentID != nil {
		query = query.Where("e.department_id = ?", *f.DepartmentID)
	}
	if f.CreatorID != 0 {
		query = query.Where("e.creator_id = ?", f.CreatorID)
	}
	if f.PublishedOnly {
		query = query.Where("e.is_published = ?", true)
	}

	if f.Limit > 0 {
		offset := (f.Page - 1) * f.Limit
		query = query.Offset(offset).Limit(f.Limit)
	}

	var exams []ExamListRow
	err := query.Order("e.created_at desc").Scan(&exams).Error
	return exams, total, err
}

func (r *ExamRepository) CreateQuestion(q *model.ExamQuestion) error {
	return r.DB.Create(q).Error
}

func (r *ExamRepository) FindQuestionByID(id string) (*model.ExamQuestion, error) {
	var q model.ExamQuestion
	err := r.DB.First(&q, "id = ?", id).Error
	return &q, err
}

func (r *ExamRepository) UpdateQuestion(q *model.ExamQuestion) error {
	return r.DB.Save(q).Error
}

func (r *ExamRepository) DeleteQuestion(id string) error {
	return r.DB.Delete(&model.ExamQuestion{}, "id = ?", id).Error
}

func (r *ExamRepository) ListQuestions(examID string) ([]model.ExamQuestion, error) {
	var qs []model.ExamQuestion
	err := r.DB.Where("exam_id = ?", examID).Order("`order` asc, created_at asc").Find(&qs).Error
	return qs, err
}
