package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Lesson struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID        uuid.UUID `gorm:"type:uuid;not null;index;column:course_id" json:"course_id"`
	Title           string    `gorm:"not null;column:title" json:"title"`
	Description     string    `gorm:"column:description" json:"description"`
	ContentText     string    `gorm:"type:text;column:content_text" json:"content_text"`
	OrderIndex      int       `gorm:"not null;default:0;column:order_index" json:"order_index"`
	DurationMinutes int       `gorm:"column:duration_minutes" json:"duration_minutes"`
	IsPublished     bool      `gorm:"not null;default:false;column:is_published" json:"is_published"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Lesson) TableName() string { return "lesson" }

func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// LessonProgress is unique per (student, lesson); completion is an upsert.
type LessonProgress struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_lesson_progress_student_lesson;column:student_id" json:"student_id"`
	LessonID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_lesson_progress_student_lesson;column:lesson_id" json:"lesson_id"`
	IsCompleted  bool       `gorm:"not null;default:false;column:is_completed" json:"is_completed"`
	CompletedAt  *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	LastAccessed *time.Time `gorm:"column:last_accessed" json:"last_accessed,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (LessonProgress) TableName() string { return "lesson_progress" }

func (p *LessonProgress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
