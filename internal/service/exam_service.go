package service

import (
	"encoding/json"
	"errors"
	"time"

	"exam_portal_backend/internal/model"
	"exam_portal_backend/internal/repository"
	"exam_portal_backend/internal/util"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ExamService struct {
	ExamRepo *repository.ExamRepository
}

func NewExamService(er *repository.ExamRepository) *ExamService {
	return &ExamService{ExamRepo: er}
}

type ExamCreateReq struct {
	Title            string     `json:"title" binding:"required"`
	Description      string     `json:"description"`
	DepartmentID     *uint      `json:"departmentId"`
	DurationMinutes  int        `json:"durationMinutes" binding:"min=0"`
	StartsAt         *time.Time `json:"startsAt"`
	EndsAt           *time.Time `json:"endsAt"`
	ShuffleQuestions bool       `json:"shuffleQuestions"`
}

func (s *ExamService) CreateExam(claims *util.Claims, req ExamCreateReq) (*model.Exam, error) {
	exam := &model.Exam{
		InstitutionID:    claims.InstitutionID,
		DepartmentID:     req.DepartmentID,
		CreatorID:        claims.UserID,
		Title:            req.Title,
		Description:      req.Description,
		DurationMinutes:  req.DurationMinutes,
		StartsAt:         req.StartsAt,
		EndsAt:           req.EndsAt,
		ShuffleQuestions: req.ShuffleQuestions,
	}
	if err := s.ExamRepo.Create(exam); err != nil {
		return nil, err
	}
	return exam, nil
}

// getOwnedExam loads an exam and checks the caller may manage it. Teachers can
// only touch their own exams; admins can manage any exam in their institution.
func (s *ExamService) getOwnedExam(claims *util.Claims, examID string) (*model.Exam, error) {
	exam, err := s.ExamRepo.FindByID(examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrExamNotFound
		}
		return nil, err
	}
	if exam.InstitutionID != claims.InstitutionID {
		return nil, util.ErrExamNotFound
	}
	if claims.Role != model.Admin && exam.CreatorID != claims.UserID {
		return nil, util.ErrPermissionDenied
	}
	return exam, nil
}

type ExamUpdateReq struct {
	Title            *string    `json:"title"`
	Description      *string    `json:"description"`
	DepartmentID     *uint      `json:"departmentId"`
	DurationMinutes  *int       `json:"durationMinutes"`
	StartsAt         *time.Time `json:"startsAt"`
	EndsAt           *time.Time `json:"endsAt"`
	ShuffleQuestions *bool      `json:"shuffleQuestions"`
}

func (s *ExamService) UpdateExam(claims *util.Claims, examID string, req ExamUpdateReq) (*model.Exam, error) {
	exam, err := s.getOwnedExam(claims, examID)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		exam.Title = *req.Title
	}
	if req.Description != nil {
		exam.Description = *req.Description
	}
	if req.DepartmentID != nil {
		exam.DepartmentID = req.DepartmentID
	}
	if req.DurationMinutes != nil {
		exam.DurationMinutes = *req.DurationMinutes
	}
	if req.StartsAt != nil {
		exam.StartsAt = req.StartsAt
	}
	if req.EndsAt != nil {
		exam.EndsAt = req.EndsAt
	}
	if req.ShuffleQuestions != nil {
		exam.ShuffleQuestions = *req.ShuffleQuestions
	}
	if err := s.ExamRepo.Update(exam); err != nil {
		return nil, err
	}
	return exam, nil
}

func (s *ExamService) DeleteExam(claims *util.Claims, examID string) error {
	if _, err := s.getOwnedExam(claims, examID); err != nil {
		return err
	}
	return s.ExamRepo.Delete(examID)
}

// SetPublished flips the publish state. Publishing stamps PublishedAt once;
// unpublishing keeps the stamp so republish history is visible.
func (s *ExamService) SetPublished(claims *util.Claims, examID string, published bool) (*model.Exam, error) {
	exam, err := s.getOwnedExam(claims, examID)
	if err != nil {
		return nil, err
	}
	exam.IsPublished = published
	if published && exam.PublishedAt == nil {
		now := time.Now()
		exam.PublishedAt = &now
	}
	if err := s.ExamRepo.Update(exam); err != nil {
		return nil, err
	}
	return exam, nil
}

func (s *ExamService) ListExams(claims *util.Claims, page, limit int) ([]repository.ExamListRow, int64, error) {
	f := repository.ExamFilter{
		InstitutionID: claims.InstitutionID,
		Page:          page,
		Limit:         limit,
	}
	if claims.Role != model.Admin {
		f.CreatorID = claims.UserID
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	return s.ExamRepo.List(f)
}

type ExamDetail struct {
	Exam      *model.Exam          `json:"exam"`
	Questions []model.ExamQuestion `json:"questions"`
}

func (s *ExamService) GetExam(claims *util.Claims, examID string) (*ExamDetail, error) {
	exam, err := s.getOwnedExam(claims, examID)
	if err != nil {
		return nil, err
	}
	questions, err := s.ExamRepo.ListQuestions(examID)
	if err != nil {
		return nil, err
	}
	return &ExamDetail{Exam: exam, Questions: questions}, nil
}

type QuestionReq struct {
	ID                string             `json:"id"`
	Type              model.QuestionType `json:"type" binding:"required,oneof=mcq saq coding"`
	Text              string             `json:"text" binding:"required"`
	Options           []string           `json:"options"`
	CorrectOption     *int               `json:"correctOption"`
	Marks             float64            `json:"marks" binding:"min=0"`
	GradingGuidelines string             `json:"gradingGuidelines"`
	TestCases         json.RawMessage    `json:"testCases"`
	Language          string             `json:"language"`
	AttachmentURL     string             `json:"attachmentUrl"`
}

var ErrInvalidQuestion = errors.New("invalid question payload")

func (r QuestionReq) toModel(examID string, order int) (*model.ExamQuestion, error) {
	q := &model.ExamQuestion{
		ExamID:            examID,
		Type:              r.Type,
		Text:              r.Text,
		Marks:             r.Marks,
		GradingGuidelines: r.GradingGuidelines,
		Language:          r.Language,
		AttachmentURL:     r.AttachmentURL,
		Order:             order,
	}
	q.ID = r.ID

	switch r.Type {
	case model.QuestionMCQ:
		if len(r.Options) < 2 || r.CorrectOption == nil ||
			*r.CorrectOption < 0 || *r.CorrectOption >= len(r.Options) {
			return nil, ErrInvalidQuestion
		}
		opts, err := json.Marshal(r.Options)
		if err != nil {
			return nil, err
		}
		q.Options = datatypes.JSON(opts)
		q.CorrectOption = r.CorrectOption
	case model.QuestionCoding:
		if len(r.TestCases) > 0 {
			q.TestCases = datatypes.JSON(r.TestCases)
		}
	}
	return q, nil
}

func (s *ExamService) AddQuestion(claims *util.Claims, examID string, req QuestionReq) (*model.ExamQuestion, error) {
	if _, err := s.getOwnedExam(claims, examID); err != nil {
		return nil, err
	}
	existing, err := s.ExamRepo.ListQuestions(examID)
	if err != nil {
		return nil, err
	}
	q, err := req.toModel(examID, len(existing))
	if err != nil {
		return nil, err
	}
	q.ID = ""
	if err := s.ExamRepo.CreateQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}

// ReplaceQuestions reconciles the stored question list with the submitted
// one. Questions carrying a known id are updated in place, new ones are
// created, and stored questions missing from the payload are deleted. Order
// follows payload position.
func (s *ExamService) ReplaceQuestions(claims *util.Claims, examID string, reqs []QuestionReq) ([]model.ExamQuestion, error) {
	if _, err := s.getOwnedExam(claims, examID); err != nil {
		return nil, err
	}
	existing, err := s.ExamRepo.ListQuestions(examID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]struct{}, len(existing))
	for _, q := range existing {
		byID[q.ID] = struct{}{}
	}

	kept := make(map[string]struct{}, len(reqs))
	for i, req := range reqs {
		q, err := req.toModel(examID, i)
		if err != nil {
			return nil, err
		}
		if _, ok := byID[req.ID]; req.ID != "" && ok {
			if err := s.ExamRepo.UpdateQuestion(q); err != nil {
				return nil, err
			}
			kept[req.ID] = struct{}{}
		} else {
			q.ID = ""
			if err := s.ExamRepo.CreateQuestion(q); err != nil {
				return nil, err
			}
		}
	}

	for _, q := range existing {
		if _, ok := kept[q.ID]; !ok {
			if err := s.ExamRepo.DeleteQuestion(q.ID); err != nil {
				return nil, err
			}
		}
	}
	return s.ExamRepo.ListQuestions(examID)
}

func (s *ExamService) DeleteQuestion(claims *util.Claims, examID, questionID string) error {
	if _, err := s.getOwnedExam(claims, examID); err != nil {
		return err
	}
	q, err := s.ExamRepo.FindQuestionByID(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrExamNotFound
		}
		return err
	}
	if q.ExamID != examID {
		return util.ErrExamNotFound
	}
	return s.ExamRepo.DeleteQuestion(questionID)
}
