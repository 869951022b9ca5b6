package service

import (
	"context"
	"errors"
	"time"

	"exam_portal_backend/internal/model"
	"exam_portal_backend/internal/repository"
	"exam_portal_backend/internal/util"
	"exam_portal_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// ProctorService records integrity events reported by the exam client while
// an attempt is in progress. Per-session counters live in redis so the
// invigilator dashboard can poll cheaply; the events themselves go to mysql.
type ProctorService struct {
	SessionRepo *repository.SessionRepository
	ExamRepo    *repository.ExamRepository
	Redis       *redis.Client
}

func NewProctorService(sr *repository.SessionRepository, er *repository.ExamRepository, rdb *redis.Client) *ProctorService {
	return &ProctorService{SessionRepo: sr, ExamRepo: er, Redis: rdb}
}

func flagCountKey(sessionID string) string {
	return "exam:flags:" + sessionID
}

var validFlagKinds = map[model.ProctorFlagKind]struct{}{
	model.FlagTabSwitch:      {},
	model.FlagWindowBlur:     {},
	model.FlagFullscreenExit: {},
	model.FlagCopyPaste:      {},
	model.FlagFaceMissing:    {},
}

var ErrInvalidFlagKind = errors.New("unknown proctor flag kind")

type FlagReq struct {
	Kind   model.ProctorFlagKind `json:"kind" binding:"required"`
	Detail string                `json:"detail"`
}

// RecordFlag stores one integrity event against the caller's own in-progress
// session. Events against submitted or foreign sessions are rejected.
func (s *ProctorService) RecordFlag(ctx context.Context, claims *util.Claims, sessionID string, req FlagReq) (*model.ProctorFlag, error) {
	if _, ok := validFlagKinds[req.Kind]; !ok {
		return nil, ErrInvalidFlagKind
	}

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
		return nil, util.ErrSessionNotInProgress
	}

	flag := &model.ProctorFlag{
		SessionID: sessionID,
		Kind:      req.Kind,
		Detail:    req.Detail,
		FlaggedAt: time.Now(),
	}
	if err := s.SessionRepo.CreateProctorFlag(flag); err != nil {
		return nil, err
	}

	if s.Redis != nil {
		key := flagCountKey(sessionID)
		s.Redis.HIncrBy(ctx, key, string(req.Kind), 1)
		s.Redis.Expire(ctx, key, 24*time.Hour)
	}
	monitoring.ProctorFlagCounter.WithLabelValues(string(req.Kind)).Inc()
	return flag, nil
}

// ListSessionFlags returns the event log of one session for review. Teachers
// and admins of the owning institution only.
func (s *ProctorService) ListSessionFlags(claims *util.Claims, sessionID string) ([]model.ProctorFlag, error) {
	session, err := s.SessionRepo.FindByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}
	exam, err := s.ExamRepo.FindByID(session.ExamID)
	if err != nil {
		return nil, err
	}
	if exam.InstitutionID != claims.InstitutionID {
		return nil, util.ErrSessionNotFound
	}
	return s.SessionRepo.ListProctorFlags(sessionID)
}

// ExamFlagSummary aggregates flag counts per session and kind across one
// exam, for the invigilator overview.
func (s *ProctorService) ExamFlagSummary(claims *util.Claims, examID string) ([]repository.ExamFlagRow, error) {
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
	return s.SessionRepo.CountFlagsByExam(examID)
}
