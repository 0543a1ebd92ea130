package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultPassingScore applies to quizzes stored without a threshold.
const DefaultPassingScore = 70

type Quiz struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID     uuid.UUID      `gorm:"type:uuid;not null;index;column:course_id" json:"course_id"`
	Title        string         `gorm:"not null;column:title" json:"title"`
	Description  string         `gorm:"column:description" json:"description"`
	PassingScore int            `gorm:"not null;default:0;column:passing_score" json:"passing_score"`
	MaxAttempts  int            `gorm:"not null;default:0;column:max_attempts" json:"max_attempts"`
	IsPublished  bool           `gorm:"not null;default:false;column:is_published" json:"is_published"`
	Questions    []QuizQuestion `gorm:"foreignKey:QuizID" json:"questions,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Quiz) TableName() string { return "quiz" }

func (q *Quiz) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// Threshold is the passing score with the default applied.
func (q *Quiz) Threshold() int {
	if q == nil || q.PassingScore <= 0 {
		return DefaultPassingScore
	}
	return q.PassingScore
}

// QuizQuestion stores options as JSON, either a list ["a","b"] or a lettered
// object {"A":"a","B":"b"}. CorrectAnswer holds the option text or its letter.
type QuizQuestion struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID        uuid.UUID      `gorm:"type:uuid;not null;index;column:quiz_id" json:"quiz_id"`
	QuestionText  string         `gorm:"type:text;not null;column:question_text" json:"question_text"`
	QuestionType  string         `gorm:"not null;default:'multiple_choice';column:question_type" json:"question_type"`
	Options       datatypes.JSON `gorm:"column:options" json:"options"`
	CorrectAnswer string         `gorm:"column:correct_answer" json:"-"`
	OrderIndex    int            `gorm:"not null;default:0;column:order_index" json:"order_index"`
	Points        int            `gorm:"not null;default:1;column:points" json:"points"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (QuizQuestion) TableName() string { return "quiz_question" }

func (q *QuizQuestion) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

type QuizAttempt struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID           uuid.UUID      `gorm:"type:uuid;not null;index;column:quiz_id" json:"quiz_id"`
	StudentID        uuid.UUID      `gorm:"type:uuid;not null;index;column:student_id" json:"student_id"`
	AttemptNumber    int            `gorm:"not null;default:1;column:attempt_number" json:"attempt_number"`
	Score            int            `gorm:"not null;default:0;column:score" json:"score"`
	MaxScore         int            `gorm:"not null;default:0;column:max_score" json:"max_score"`
	Percentage       int            `gorm:"not null;default:0;column:percentage" json:"percentage"`
	Passed           bool           `gorm:"not null;default:false;column:passed" json:"passed"`
	Answers          datatypes.JSON `gorm:"column:answers" json:"answers"`
	TimeStarted      time.Time      `gorm:"not null;column:time_started" json:"time_started"`
	TimeSubmitted    *time.Time     `gorm:"column:time_submitted" json:"time_submitted,omitempty"`
	TimeTakenSeconds int            `gorm:"column:time_taken_seconds" json:"time_taken_seconds"`
	IsCompleted      bool           `gorm:"not null;default:false;column:is_completed" json:"is_completed"`
	IsGraded         bool           `gorm:"not null;default:false;column:is_graded" json:"is_graded"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (QuizAttempt) TableName() string { return "quiz_attempt" }

func (a *QuizAttempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
