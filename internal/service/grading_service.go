package service

import (
	"encoding/json"
	"errors"
	"time"

	"exam_portal_backend/internal/model"
	"exam_portal_backend/internal/repository"
	"exam_portal_backend/internal/scoring"
	"exam_portal_backend/internal/util"
	"exam_portal_backend/pkg/logger"
	"exam_portal_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GradingService is the teacher side of scoring: reviewing submitted
// sessions and merging manual marks into the answer set produced at submit
// time.
type GradingService struct {
	ExamRepo    *repository.ExamRepository
	SessionRepo *repository.SessionRepository
}

func NewGradingService(er *repository.ExamRepository, sr *repository.SessionRepository) *GradingService {
	return &GradingService{ExamRepo: er, SessionRepo: sr}
}

func (s *GradingService) ListPending(claims *util.Claims, page, limit int) ([]repository.SessionListRow, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.SessionRepo.ListPendingGrading(claims.InstitutionID, page, limit)
}

func (s *GradingService) ListByExam(claims *util.Claims, examID string, page, limit int, studentName, gradingStatus string) ([]repository.SessionListRow, int64, error) {
	if _, err := s.examInInstitution(claims, examID); err != nil {
		return nil, 0, err
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.SessionRepo.ListByExam(examID, page, limit, studentName, gradingStatus)
}

func (s *GradingService) examInInstitution(claims *util.Claims, examID string) (*model.Exam, error) {
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
	return exam, nil
}

// PurgeExamSessions drops every attempt at the exam, flags included. Admin
// bulk cleanup for re-running a botched exam.
func (s *GradingService) PurgeExamSessions(claims *util.Claims, examID string) error {
	if _, err := s.examInInstitution(claims, examID); err != nil {
		return err
	}
	logger.Log.Warn("purging exam sessions",
		zap.String("exam_id", examID),
		zap.Uint("admin_id", claims.UserID))
	return s.SessionRepo.PurgeByExam(examID)
}

// GradingAnswer pairs the stored answer record with the question metadata a
// grader needs to judge it.
type GradingAnswer struct {
	scoring.Answer
	QuestionText      string          `json:"questionText"`
	Options           json.RawMessage `json:"options,omitempty"`
	CorrectOption     *int            `json:"correctOption,omitempty"`
	GradingGuidelines string          `json:"gradingGuidelines,omitempty"`
	TestCases         json.RawMessage `json:"testCases,omitempty"`
	Language          string          `json:"language,omitempty"`
	Order             int             `json:"order"`
}

type GradingDetail struct {
	Session *model.ExamSession `json:"session"`
	Exam    *model.Exam        `json:"exam"`
	Answers []GradingAnswer    `json:"answers"`
}

func (s *GradingService) getSubmittedSession(claims *util.Claims, sessionID string) (*model.ExamSession, *model.Exam, error) {
	session, err := s.SessionRepo.FindByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, util.ErrSessionNotFound
		}
		return nil, nil, err
	}
	exam, err := s.examInInstitution(claims, session.ExamID)
	if err != nil {
		return nil, nil, util.ErrSessionNotFound
	}
	if session.Status != model.SessionSubmitted {
		return nil, nil, util.ErrSessionNotInProgress
	}
	return session, exam, nil
}

// GetDetail returns the submitted session with every answer annotated by its
// question, ordered the way the exam presents them.
func (s *GradingService) GetDetail(claims *util.Claims, sessionID string) (*GradingDetail, error) {
	session, exam, err := s.getSubmittedSession(claims, sessionID)
	if err != nil {
		return nil, err
	}

	answers := scoring.AnswerSet{}
	if len(session.Answers) > 0 {
		if err := json.Unmarshal(session.Answers, &answers); err != nil {
			return nil, err
		}
	}

	questions, err := s.ExamRepo.ListQuestions(session.ExamID)
	if err != nil {
		return nil, err
	}

	rows := make([]GradingAnswer, 0, len(questions))
	for _, q := range questions {
		ans, ok := answers[q.ID]
		if !ok {
			continue
		}
		rows = append(rows, GradingAnswer{
			Answer:            *ans,
			QuestionText:      q.Text,
			Options:           json.RawMessage(q.Options),
			CorrectOption:     q.CorrectOption,
			GradingGuidelines: q.GradingGuidelines,
			TestCases:         json.RawMessage(q.TestCases),
			Language:          q.Language,
			Order:             q.Order,
		})
	}
	return &GradingDetail{Session: session, Exam: exam, Answers: rows}, nil
}

type GradeReq struct {
	Grades []scoring.GradeUpdate `json:"grades" binding:"required,min=1"`
}

// ApplyGrades merges manual marks into the stored answer set, recomputes the
// totals and the grading status, and persists the session in one write.
// Repeating the same call is safe; grades for question ids not present in
// the submission are ignored.
func (s *GradingService) ApplyGrades(claims *util.Claims, sessionID string, req GradeReq) (*model.ExamSession, error) {
	session, _, err := s.getSubmittedSession(claims, sessionID)
	if err != nil {
		return nil, err
	}

	answers := scoring.AnswerSet{}
	if len(session.Answers) > 0 {
		if err := json.Unmarshal(session.Answers, &answers); err != nil {
			return nil, err
		}
	}

	applied := scoring.ApplyManualGrades(answers, req.Grades, claims.UserID, time.Now())

	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return nil, err
	}
	session.Answers = datatypes.JSON(answersJSON)
	session.TotalScore = scoring.TotalScore(answers)
	session.MaxPossibleScore = scoring.MaxScore(answers)
	session.GradingStatus = string(scoring.AggregateStatus(answers))

	if err := s.SessionRepo.Update(session); err != nil {
		return nil, err
	}

	monitoring.GradedAnswerCounter.Add(float64(applied))
	logger.Log.Info("manual grades applied",
		zap.String("session_id", session.ID),
		zap.Uint("grader_id", claims.UserID),
		zap.Int("applied", applied),
		zap.Float64("total_score", session.TotalScore),
		zap.String("grading_status", session.GradingStatus))
	return session, nil
}
