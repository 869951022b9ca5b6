package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"exam_portal_backend/internal/model"
	"exam_portal_backend/internal/repository"
	"exam_portal_backend/internal/scoring"
	"exam_portal_backend/internal/util"
	"exam_portal_backend/pkg/logger"
	"exam_portal_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ExamSessionService drives the student side of an exam: starting an
// attempt, autosaving answers, submitting, and reading results. Live
// sessions are mirrored into redis so autosaves survive restarts of the
// student's browser without hammering mysql.
type ExamSessionService struct {
	ExamRepo    *repository.ExamRepository
	SessionRepo *repository.SessionRepository
	Redis       *redis.Client
}

func NewExamSessionService(er *repository.ExamRepository, sr *repository.SessionRepository, rdb *redis.Client) *ExamSessionService {
	return &ExamSessionService{ExamRepo: er, SessionRepo: sr, Redis: rdb}
}

func liveSessionKey(sessionID string) string {
	return "exam:session:" + sessionID
}

// getOpenExam loads an exam visible to a student: published, same
// institution, and inside its scheduled window when one is set.
func (s *ExamSessionService) getOpenExam(claims *util.Claims, examID string) (*model.Exam, error) {
	exam, err := s.ExamRepo.FindByID(examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrExamNotFound
		}
		return nil, err
	}
	if exam.InstitutionID != claims.InstitutionID || !exam.IsPublished {
		return nil, util.ErrExamNotPublished
	}
	now := time.Now()
	if exam.StartsAt != nil && now.Before(*exam.StartsAt) {
		return nil, util.ErrExamNotOpen
	}
	if exam.EndsAt != nil && now.After(*exam.EndsAt) {
		return nil, util.ErrExamNotOpen
	}
	return exam, nil
}

// AvailableExamRow is the student's catalogue entry for one exam, with the
// state of their own attempt if any.
type AvailableExamRow struct {
	Exam          model.Exam           `json:"exam"`
	QuestionCount int                  `json:"questionCount"`
	Attempted     bool                 `json:"attempted"`
	SessionStatus *model.SessionStatus `json:"sessionStatus,omitempty"`
	SessionID     string               `json:"sessionId,omitempty"`
}

func (s *ExamSessionService) ListAvailableExams(claims *util.Claims) ([]AvailableExamRow, error) {
	exams, _, err := s.ExamRepo.List(repository.ExamFilter{
		InstitutionID: claims.InstitutionID,
		PublishedOnly: true,
	})
	if err != nil {
		return nil, err
	}

	sessions, err := s.SessionRepo.ListByStudent(claims.UserID)
	if err != nil {
		return nil, err
	}
	byExam := make(map[string]*model.ExamSession, len(sessions))
	for i := range sessions {
		byExam[sessions[i].ExamID] = &sessions[i]
	}

	rows := make([]AvailableExamRow, 0, len(exams))
	for _, e := range exams {
		row := AvailableExamRow{Exam: e.Exam, QuestionCount: e.QuestionCount}
		if sess, ok := byExam[e.Exam.ID]; ok {
			row.Attempted = true
			row.SessionStatus = &sess.Status
			row.SessionID = sess.ID
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// GetAvailableExam returns one exam's catalogue entry, checking visibility
// and the schedule window.
func (s *ExamSessionService) GetAvailableExam(claims *util.Claims, examID string) (*AvailableExamRow, error) {
	exam, err := s.getOpenExam(claims, examID)
	if err != nil {
		return nil, err
	}
	questions, err := s.ExamRepo.ListQuestions(examID)
	if err != nil {
		return nil, err
	}
	row := &AvailableExamRow{Exam: *exam, QuestionCount: len(questions)}
	if sess, err := s.SessionRepo.FindByStudentAndExam(claims.UserID, examID); err == nil {
		row.Attempted = true
		row.SessionStatus = &sess.Status
		row.SessionID = sess.ID
	}
	return row, nil
}

// StudentQuestion is a question as the student sees it while taking the
// exam: no correct option, no grading guidelines, no test case expectations.
type StudentQuestion struct {
	ID            string             `json:"id"`
	Type          model.QuestionType `json:"type"`
	Text          string             `json:"text"`
	Options       json.RawMessage    `json:"options,omitempty"`
	Marks         float64            `json:"marks"`
	Language      string             `json:"language,omitempty"`
	AttachmentURL string             `json:"attachmentUrl,omitempty"`
	Order         int                `json:"order"`
}

func toStudentQuestions(questions []model.ExamQuestion) []StudentQuestion {
	out := make([]StudentQuestion, 0, len(questions))
	for _, q := range questions {
		out = append(out, StudentQuestion{
			ID:            q.ID,
			Type:          q.Type,
			Text:          q.Text,
			Options:       json.RawMessage(q.Options),
			Marks:         q.Marks,
			Language:      q.Language,
			AttachmentURL: q.AttachmentURL,
			Order:         q.Order,
		})
	}
	return out
}

type StartedSession struct {
	Session   *model.ExamSession `json:"session"`
	Exam      *model.Exam        `json:"exam"`
	Questions []StudentQuestion  `json:"questions"`
	// DeadlineAt is when the attempt auto-expires, nil for untimed exams.
	DeadlineAt *time.Time `json:"deadlineAt,omitempty"`
}

// StartExam opens (or resumes) the student's single attempt. A second call
// while the attempt is in progress returns the same session; after submit it
// fails with ErrAlreadySubmitted.
func (s *ExamSessionService) StartExam(ctx context.Context, claims *util.Claims, examID string) (*StartedSession, error) {
	exam, err := s.getOpenExam(claims, examID)
	if err != nil {
		return nil, err
	}

	session, err := s.SessionRepo.FindByStudentAndExam(claims.UserID, examID)
	switch {
	case err == nil:
		if session.Status == model.SessionSubmitted {
			return nil, util.ErrAlreadySubmitted
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		session = &model.ExamSession{
			ExamID:        examID,
			StudentID:     claims.UserID,
			Status:        model.SessionInProgress,
			StartedAt:     time.Now(),
			GradingStatus: string(scoring.StatusPending),
		}
		if err := s.SessionRepo.Create(session); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	questions, err := s.ExamRepo.ListQuestions(examID)
	if err != nil {
		return nil, err
	}
	studentQs := toStudentQuestions(questions)
	if exam.ShuffleQuestions {
		// Seed on student+exam so the order is stable across resumes.
		rng := rand.New(rand.NewSource(int64(claims.UserID)<<31 ^ seedFromID(examID)))
		rng.Shuffle(len(studentQs), func(i, j int) {
			studentQs[i], studentQs[j] = studentQs[j], studentQs[i]
		})
	}

	started := &StartedSession{Session: session, Exam: exam, Questions: studentQs}
	if exam.DurationMinutes > 0 {
		deadline := session.StartedAt.Add(time.Duration(exam.DurationMinutes) * time.Minute)
		started.DeadlineAt = &deadline
		s.cacheLiveSession(ctx, session, deadline)
	}
	return started, nil
}

func seedFromID(id string) int64 {
	var seed int64
	for _, c := range id {
		seed = seed*31 + int64(c)
	}
	return seed
}

// cacheLiveSession mirrors the running attempt into redis with a TTL just
// past the deadline, so a crashed browser can resume without a db read.
func (s *ExamSessionService) cacheLiveSession(ctx context.Context, session *model.ExamSession, deadline time.Time) {
	if s.Redis == nil {
		return
	}
	ttl := time.Until(deadline) + 5*time.Minute
	if ttl <= 0 {
		return
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return
	}
	if err := s.Redis.Set(ctx, liveSessionKey(session.ID), payload, ttl).Err(); err != nil {
		logger.Log.Warn("failed to cache live session", zap.String("session_id", session.ID), zap.Error(err))
	}
}

// getActiveSession loads the caller's own in-progress session.
func (s *ExamSessionService) getActiveSession(claims *util.Claims, sessionID string) (*model.ExamSession, error) {
	session, err := s.SessionRepo.FindByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}
	if session.StudentID != claims.UserID {
		return nil, util.ErrSessionNotFound
	}
	if session.Status != model.SessionInProgress {
		if session.Status == model.SessionSubmitted {
			return nil, util.ErrAlreadySubmitted
		}
		return nil, util.ErrSessionNotInProgress
	}
	return session, nil
}

// RawAnswerDTO accepts the wire forms an answer value can take: a JSON
// string, a number, or null. Numbers are normalized to their decimal string.
type RawAnswerDTO struct {
	Value  *string
	Output json.RawMessage
}

func (d *RawAnswerDTO) UnmarshalJSON(data []byte) error {
	var wire struct {
		Answer json.RawMessage `json:"answer"`
		Output json.RawMessage `json:"output"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	d.Output = wire.Output

	if len(wire.Answer) == 0 || string(wire.Answer) == "null" {
		d.Value = nil
		return nil
	}
	var str string
	if err := json.Unmarshal(wire.Answer, &str); err == nil {
		d.Value = &str
		return nil
	}
	var num float64
	if err := json.Unmarshal(wire.Answer, &num); err == nil {
		v := strconv.FormatFloat(num, 'f', -1, 64)
		d.Value = &v
		return nil
	}
	return fmt.Errorf("answer must be a string, number or null")
}

func (d RawAnswerDTO) toRaw() scoring.RawAnswer {
	return scoring.RawAnswer{Value: d.Value, Output: d.Output}
}

type SaveAnswersReq struct {
	Answers map[string]RawAnswerDTO `json:"answers" binding:"required"`
}

// SaveAnswers autosaves the in-progress answer map. Saved values are merged
// over previous saves, so partial autosaves accumulate.
func (s *ExamSessionService) SaveAnswers(ctx context.Context, claims *util.Claims, sessionID string, req SaveAnswersReq) error {
	session, err := s.getActiveSession(claims, sessionID)
	if err != nil {
		return err
	}

	saved := make(map[string]RawAnswerDTO)
	if len(session.Answers) > 0 {
		if err := json.Unmarshal(session.Answers, &saved); err != nil {
			saved = make(map[string]RawAnswerDTO)
		}
	}
	for id, ans := range req.Answers {
		saved[id] = ans
	}

	payload, err := json.Marshal(rawAnswersWire(saved))
	if err != nil {
		return err
	}
	session.Answers = datatypes.JSON(payload)
	if err := s.SessionRepo.Update(session); err != nil {
		return err
	}
	if s.Redis != nil {
		if blob, err := json.Marshal(session); err == nil {
			s.Redis.Set(ctx, liveSessionKey(session.ID), blob, redis.KeepTTL)
		}
	}
	return nil
}

type rawAnswerWire struct {
	Answer *string         `json:"answer"`
	Output json.RawMessage `json:"output,omitempty"`
}

func rawAnswersWire(in map[string]RawAnswerDTO) map[string]rawAnswerWire {
	out := make(map[string]rawAnswerWire, len(in))
	for id, a := range in {
		out[id] = rawAnswerWire{Answer: a.Value, Output: a.Output}
	}
	return out
}

type SubmitReq struct {
	Answers   map[string]RawAnswerDTO `json:"answers"`
	IsTimeout bool                    `json:"isTimeout"`
}

// SubmitExam freezes the attempt and runs the initial auto-grade. Answers in
// the request win over autosaved ones. Submissions after the per-attempt
// deadline are still accepted and flagged as timeouts.
func (s *ExamSessionService) SubmitExam(ctx context.Context, claims *util.Claims, sessionID string, req SubmitReq) (*model.ExamSession, error) {
	session, err := s.getActiveSession(claims, sessionID)
	if err != nil {
		return nil, err
	}

	exam, err := s.ExamRepo.FindByID(session.ExamID)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]RawAnswerDTO)
	if len(session.Answers) > 0 {
		if err := json.Unmarshal(session.Answers, &merged); err != nil {
			merged = make(map[string]RawAnswerDTO)
		}
	}
	for id, a := range req.Answers {
		merged[id] = a
	}

	questions, err := s.ExamRepo.ListQuestions(session.ExamID)
	if err != nil {
		return nil, err
	}
	raw := make(map[string]scoring.RawAnswer, len(merged))
	for id, a := range merged {
		raw[id] = a.toRaw()
	}
	result := scoring.AutoGrade(scoringQuestions(questions), raw)

	answersJSON, err := json.Marshal(result.Answers)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session.Status = model.SessionSubmitted
	session.SubmittedAt = &now
	session.Answers = datatypes.JSON(answersJSON)
	session.TotalScore = result.TotalScore
	session.MaxPossibleScore = result.MaxPossibleScore
	session.GradingStatus = string(result.Status)
	session.IsTimeout = req.IsTimeout || pastDeadline(exam, session, now)

	if err := s.SessionRepo.Update(session); err != nil {
		return nil, err
	}

	if s.Redis != nil {
		s.Redis.Del(ctx, liveSessionKey(session.ID))
	}
	monitoring.SubmissionCounter.WithLabelValues(string(result.Status)).Inc()
	logger.Log.Info("exam submitted",
		zap.String("session_id", session.ID),
		zap.String("exam_id", session.ExamID),
		zap.Uint("student_id", session.StudentID),
		zap.Float64("total_score", session.TotalScore),
		zap.String("grading_status", session.GradingStatus),
		zap.Bool("timeout", session.IsTimeout))
	return session, nil
}

// SubmitByExam resolves the caller's attempt at the exam and submits it.
func (s *ExamSessionService) SubmitByExam(ctx context.Context, claims *util.Claims, examID string, req SubmitReq) (*model.ExamSession, error) {
	session, err := s.SessionRepo.FindByStudentAndExam(claims.UserID, examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}
	return s.SubmitExam(ctx, claims, session.ID, req)
}

func pastDeadline(exam *model.Exam, session *model.ExamSession, now time.Time) bool {
	if exam.DurationMinutes <= 0 {
		return false
	}
	deadline := session.StartedAt.Add(time.Duration(exam.DurationMinutes) * time.Minute)
	return now.After(deadline)
}

func scoringQuestions(questions []model.ExamQuestion) []scoring.Question {
	out := make([]scoring.Question, 0, len(questions))
	for _, q := range questions {
		out = append(out, scoring.Question{
			ID:            q.ID,
			Type:          q.Type,
			Marks:         q.Marks,
			CorrectOption: q.CorrectOption,
		})
	}
	return out
}

// SessionResult is a submitted attempt as shown back to the student.
type SessionResult struct {
	Session   *model.ExamSession `json:"session"`
	ExamTitle string             `json:"examTitle"`
}

func (s *ExamSessionService) GetResult(claims *util.Claims, sessionID string) (*SessionResult, error) {
	session, err := s.SessionRepo.FindByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}
	if session.StudentID != claims.UserID {
		return nil, util.ErrSessionNotFound
	}
	if session.Status != model.SessionSubmitted {
		return nil, util.ErrSessionNotInProgress
	}
	exam, err := s.ExamRepo.FindByID(session.ExamID)
	if err != nil {
		return nil, err
	}
	return &SessionResult{Session: session, ExamTitle: exam.Title}, nil
}

func (s *ExamSessionService) ListMyResults(claims *util.Claims) ([]model.ExamSession, error) {
	sessions, err := s.SessionRepo.ListByStudent(claims.UserID)
	if err != nil {
		return nil, err
	}
	submitted := sessions[:0]
	for _, sess := range sessions {
		if sess.Status == model.SessionSubmitted {
			submitted = append(submitted, sess)
		}
	}
	return submitted, nil
}
