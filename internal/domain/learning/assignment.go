package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Assignment struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID            uuid.UUID  `gorm:"type:uuid;not null;index;column:course_id" json:"course_id"`
	Title               string     `gorm:"not null;column:title" json:"title"`
	Description         string     `gorm:"type:text;column:description" json:"description"`
	Instructions        string     `gorm:"type:text;column:instructions" json:"instructions"`
	MaxScore            int        `gorm:"not null;default:100;column:max_score" json:"max_score"`
	DueDate             *time.Time `gorm:"column:due_date" json:"due_date,omitempty"`
	AllowLateSubmission bool       `gorm:"not null;default:false;column:allow_late_submission" json:"allow_late_submission"`
	IsPublished         bool       `gorm:"not null;default:false;column:is_published" json:"is_published"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Assignment) TableName() string { return "assignment" }

func (a *Assignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Overdue reports whether now is past the due date.
func (a *Assignment) Overdue(now time.Time) bool {
	return a != nil && a.DueDate != nil && now.After(*a.DueDate)
}

type SubmissionStatus string

const (
	SubmissionSubmitted SubmissionStatus = "submitted"
	SubmissionGraded    SubmissionStatus = "graded"
	SubmissionReturned  SubmissionStatus = "returned"
)

type Submission struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	AssignmentID uuid.UUID        `gorm:"type:uuid;not null;index;column:assignment_id" json:"assignment_id"`
	StudentID    uuid.UUID        `gorm:"type:uuid;not null;index;column:student_id" json:"student_id"`
	TextAnswer   string           `gorm:"type:text;column:text_answer" json:"text_answer"`
	Status       SubmissionStatus `gorm:"not null;default:'submitted';column:status" json:"status"`
	Score        *int             `gorm:"column:score" json:"score,omitempty"`
	IsLate       bool             `gorm:"not null;default:false;column:is_late" json:"is_late"`
	SubmittedAt  time.Time        `gorm:"not null;column:submitted_at" json:"submitted_at"`
	GradedAt     *time.Time       `gorm:"column:graded_at" json:"graded_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Submission) TableName() string { return "submission" }

func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.SubmittedAt.IsZero() {
		s.SubmittedAt = time.Now().UTC()
	}
	return nil
}
