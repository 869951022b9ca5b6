package model

import (
	"time"

	"gorm.io/datatypes"
)

type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionSubmitted  SessionStatus = "submitted"
)

// ExamSession is one student attempt at one exam. After submit it also
// carries the graded answer set and the aggregate scores, kept in sync by
// the scoring package.
//
// swagger:model ExamSession
type ExamSession struct {
	UUIDBase
	ExamID           string         `gorm:"index;type:varchar(36)" json:"examId"`
	StudentID        uint           `gorm:"index;type:bigint unsigned" json:"studentId"`
	Status           SessionStatus  `gorm:"size:20;default:'in_progress'" json:"status"`
	StartedAt        time.Time      `json:"startedAt"`
	SubmittedAt      *time.Time     `json:"submittedAt,omitempty"`
	IsTimeout        bool           `gorm:"default:false" json:"isTimeout"`
	Answers          datatypes.JSON `gorm:"type:json" json:"answers,omitempty"`
	TotalScore       float64        `gorm:"default:0" json:"totalScore"`
	MaxPossibleScore float64        `gorm:"default:0" json:"maxPossibleScore"`
	GradingStatus    string         `gorm:"size:20;default:'pending'" json:"gradingStatus"`
}

func (ExamSession) TableName() string {
	return "exam_sessions"
}

type ProctorFlagKind string

const (
	FlagTabSwitch      ProctorFlagKind = "tab_switch"
	FlagWindowBlur     ProctorFlagKind = "window_blur"
	FlagFullscreenExit ProctorFlagKind = "fullscreen_exit"
	FlagCopyPaste      ProctorFlagKind = "copy_paste"
	FlagFaceMissing    ProctorFlagKind = "face_missing"
)

// swagger:model ProctorFlag
type ProctorFlag struct {
	UUIDBase
	SessionID string          `gorm:"index;type:varchar(36)" json:"sessionId"`
	Kind      ProctorFlagKind `gorm:"size:30;not null" json:"kind"`
	Detail    string          `gorm:"type:text" json:"detail"`
	FlaggedAt time.Time       `json:"flaggedAt"`
}

func (ProctorFlag) TableName() string {
	return "proctor_flags"
}
