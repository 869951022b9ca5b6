package model

import (
	"time"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	QuestionMCQ    QuestionType = "mcq"
	QuestionSAQ    QuestionType = "saq"
	QuestionCoding QuestionType = "coding"
)

// swagger:model Exam
type Exam struct {
	UUIDBase
	InstitutionID    uint       `gorm:"index;not null" json:"institutionId"`
	DepartmentID     *uint      `gorm:"index" json:"departmentId,omitempty"`
	CreatorID        uint       `gorm:"index;type:bigint unsigned" json:"creatorId"`
	Title            string     `gorm:"size:255;not null" json:"title"`
	Description      string     `gorm:"type:text" json:"description"`
	DurationMinutes  int        `gorm:"default:0" json:"durationMinutes"`
	StartsAt         *time.Time `json:"startsAt,omitempty"`
	EndsAt           *time.Time `json:"endsAt,omitempty"`
	IsPublished      bool       `gorm:"default:false" json:"isPublished"`
	PublishedAt      *time.Time `json:"publishedAt,omitempty"`
	ShuffleQuestions bool       `gorm:"default:false" json:"shuffleQuestions"`
}

func (Exam) TableName() string {
	return "exams"
}

// swagger:model ExamQuestion
type ExamQuestion struct {
	UUIDBase
	ExamID            string         `gorm:"index;type:varchar(36)" json:"examId"`
	Type              QuestionType   `gorm:"size:20;not null" json:"type"`
	Text              string         `gorm:"type:text;not null" json:"text"`
	Options           datatypes.JSON `gorm:"type:json" json:"options,omitempty"`
	CorrectOption     *int           `json:"correctOption,omitempty"`
	Marks             float64        `gorm:"default:0" json:"marks"`
	GradingGuidelines string         `gorm:"type:text" json:"gradingGuidelines,omitempty"`
	TestCases         datatypes.JSON `gorm:"type:json" json:"testCases,omitempty"`
	Language          string         `gorm:"size:50" json:"language,omitempty"`
	AttachmentURL     string         `gorm:"size:512" json:"attachmentUrl,omitempty"`
	Order             int            `gorm:"default:0" json:"order"`
}

func (ExamQuestion) TableName() string {
	return "exam_questions"
}
