package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Course struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TeacherID   *uuid.UUID `gorm:"type:uuid;index;column:teacher_id" json:"teacher_id,omitempty"`
	Title       string     `gorm:"not null;column:title" json:"title"`
	Description string     `gorm:"column:description" json:"description"`
	SubjectCode string     `gorm:"column:subject_code" json:"subject_code"`
	IsActive    bool       `gorm:"not null;column:is_active" json:"is_active"`
	IsPublished bool       `gorm:"not null;default:false;column:is_published" json:"is_published"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Course) TableName() string { return "course" }

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type Enrollment struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID          uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_student_course;column:student_id" json:"student_id"`
	CourseID           uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_student_course;column:course_id" json:"course_id"`
	Course             *Course    `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	ProgressPercentage float64    `gorm:"not null;default:0;column:progress_percentage" json:"progress_percentage"`
	Completed          bool       `gorm:"not null;default:false;column:completed" json:"completed"`
	CompletionDate     *time.Time `gorm:"column:completion_date" json:"completion_date,omitempty"`
	LastAccessed       *time.Time `gorm:"column:last_accessed" json:"last_accessed,omitempty"`
	EnrolledAt         time.Time  `gorm:"not null;column:enrolled_at" json:"enrolled_at"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Enrollment) TableName() string { return "enrollment" }

func (e *Enrollment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.EnrolledAt.IsZero() {
		e.EnrolledAt = time.Now().UTC()
	}
	return nil
}
