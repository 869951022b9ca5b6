// Package scoring implements the exam scoring rules: initial auto-grading at
// submit time, the submission-level grading status, and the merge of manual
// teacher grades. Everything here is pure computation over in-memory answer
// sets; persistence and HTTP live elsewhere.
package scoring

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"exam_portal_backend/internal/model"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPartial   Status = "partial"
	StatusCompleted Status = "completed"
)

// GradingState is the per-answer manual-grading state for saq/coding
// answers. The only transition is pending -> completed; there is no
// un-grade operation.
type GradingState string

const (
	GradePending   GradingState = "pending"
	GradeCompleted GradingState = "completed"
)

// Question is the slice of an exam question the scoring engine needs.
type Question struct {
	ID            string
	Type          model.QuestionType
	Marks         float64
	CorrectOption *int
}

// RawAnswer is a student's raw submission for one question. A nil Value
// means the question was left unanswered. Output carries coding execution
// results verbatim; the engine never interprets it.
type RawAnswer struct {
	Value  *string
	Output json.RawMessage
}

// Answer is the graded per-question record stored inside a submission.
type Answer struct {
	QuestionID      string             `json:"questionId"`
	Type            model.QuestionType `json:"type"`
	Answer          *string            `json:"answer"`
	IsCorrect       *bool              `json:"isCorrect,omitempty"`
	MarksObtained   *float64           `json:"marksObtained"`
	MaxMarks        float64            `json:"maxMarks"`
	GradingStatus   GradingState       `json:"gradingStatus,omitempty"`
	Output          json.RawMessage    `json:"output,omitempty"`
	TeacherFeedback *string            `json:"teacherFeedback,omitempty"`
	GradedBy        *uint              `json:"gradedBy,omitempty"`
	GradedAt        *time.Time         `json:"gradedAt,omitempty"`
}

// AnswerSet is the full answer mapping of one submission, keyed by
// question id.
type AnswerSet map[string]*Answer

// Result is the outcome of the initial auto-grade.
type Result struct {
	Answers          AnswerSet
	TotalScore       float64
	MaxPossibleScore float64
	Status           Status
}

// AutoGrade produces a fully populated answer record for every question.
// MCQ answers are graded immediately against the correct option index;
// saq/coding answers are recorded ungraded with state pending. Missing or
// malformed values degrade to incorrect/unanswered, never to an error.
func AutoGrade(questions []Question, raw map[string]RawAnswer) Result {
	answers := make(AnswerSet, len(questions))

	for _, q := range questions {
		ra := raw[q.ID]
		ans := &Answer{
			QuestionID: q.ID,
			Type:       q.Type,
			MaxMarks:   q.Marks,
		}

		switch q.Type {
		case model.QuestionMCQ:
			correct := false
			if ra.Value != nil && q.CorrectOption != nil {
				if idx, err := strconv.Atoi(strings.TrimSpace(*ra.Value)); err == nil && idx == *q.CorrectOption {
					correct = true
				}
			}
			ans.Answer = ra.Value
			ans.IsCorrect = &correct
			earned := 0.0
			if correct {
				earned = q.Marks
			}
			ans.MarksObtained = &earned

		case model.QuestionSAQ, model.QuestionCoding:
			text := ""
			if ra.Value != nil {
				text = *ra.Value
			}
			ans.Answer = &text
			ans.GradingStatus = GradePending
			if q.Type == model.QuestionCoding {
				ans.Output = ra.Output
			}
		}

		answers[q.ID] = ans
	}

	return Result{
		Answers:          answers,
		TotalScore:       TotalScore(answers),
		MaxPossibleScore: MaxScore(answers),
		Status:           AggregateStatus(answers),
	}
}

// AggregateStatus derives the submission-level grading status. A submission
// with no saq/coding answers is completed outright; otherwise the status
// follows how many answers have been graded so far. Recompute after every
// manual-grade merge, never cache across writes.
func AggregateStatus(answers AnswerSet) Status {
	total := len(answers)
	manual := 0
	graded := 0

	for _, a := range answers {
		switch a.Type {
		case model.QuestionSAQ, model.QuestionCoding:
			manual++
			if a.GradingStatus == GradeCompleted || a.MarksObtained != nil {
				graded++
			}
		default:
			// mcq auto-grades at submit time
			graded++
		}
	}

	if manual == 0 {
		return StatusCompleted
	}
	switch {
	case graded == total:
		return StatusCompleted
	case graded > 0:
		return StatusPartial
	default:
		return StatusPending
	}
}

// TotalScore sums marksObtained over all answers, treating nil as 0.
// Idempotent over the same answer set.
func TotalScore(answers AnswerSet) float64 {
	total := 0.0
	for _, a := range answers {
		if a.MarksObtained != nil {
			total += *a.MarksObtained
		}
	}
	return total
}

// MaxScore sums the per-answer max marks regardless of grading state.
func MaxScore(answers AnswerSet) float64 {
	max := 0.0
	for _, a := range answers {
		max += a.MaxMarks
	}
	return max
}

// GradeUpdate is one teacher-supplied grading action for one question.
type GradeUpdate struct {
	QuestionID      string  `json:"questionId"`
	MarksObtained   float64 `json:"marksObtained"`
	TeacherFeedback string  `json:"teacherFeedback"`
}

// ApplyManualGrades merges teacher grades onto the answer set. Updates
// referencing unknown question ids are dropped without error. Marks are
// accepted as supplied, without clamping to [0, maxMarks]. Returns the
// number of updates applied; callers recompute TotalScore and
// AggregateStatus afterwards.
func ApplyManualGrades(answers AnswerSet, updates []GradeUpdate, graderID uint, at time.Time) int {
	applied := 0
	for _, u := range updates {
		a, ok := answers[u.QuestionID]
		if !ok {
			continue
		}
		marks := u.MarksObtained
		feedback := u.TeacherFeedback
		grader := graderID
		when := at

		a.MarksObtained = &marks
		a.TeacherFeedback = &feedback
		a.GradedBy = &grader
		a.GradedAt = &when
		a.GradingStatus = GradeCompleted
		applied++
	}
	return applied
}
