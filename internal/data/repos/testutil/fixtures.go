package testutil

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-voice/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "pw",
		FullName:     "Test Student",
		Role:         types.RoleStudent,
		IsActive:     true,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedCourse(tb testing.TB, ctx context.Context, tx *gorm.DB, title string) *types.Course {
	tb.Helper()
	c := &types.Course{
		ID:          uuid.New(),
		Title:       title,
		Description: title + " description",
		IsActive:    true,
		IsPublished: true,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

func SeedEnrollment(tb testing.TB, ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) *types.Enrollment {
	tb.Helper()
	e := &types.Enrollment{
		ID:         uuid.New(),
		StudentID:  studentID,
		CourseID:   courseID,
		EnrolledAt: time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed enrollment: %v", err)
	}
	return e
}

func SeedLesson(tb testing.TB, ctx context.Context, tx *gorm.DB, courseID uuid.UUID, index int, title string) *types.Lesson {
	tb.Helper()
	l := &types.Lesson{
		ID:              uuid.New(),
		CourseID:        courseID,
		Title:           title,
		ContentText:     "content of " + title,
		OrderIndex:      index,
		DurationMinutes: 10,
		IsPublished:     true,
	}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed lesson: %v", err)
	}
	return l
}

// QuestionSpec describes one seeded multiple-choice question.
type QuestionSpec struct {
	Text    string
	Options []string
	Correct string
}

func SeedQuiz(tb testing.TB, ctx context.Context, tx *gorm.DB, courseID uuid.UUID, title string, questions ...QuestionSpec) *types.Quiz {
	tb.Helper()
	q := &types.Quiz{
		ID:          uuid.New(),
		CourseID:    courseID,
		Title:       title,
		IsPublished: true,
	}
	for i, fx := range questions {
		raw, err := json.Marshal(fx.Options)
		if err != nil {
			tb.Fatalf("marshal options: %v", err)
		}
		q.Questions = append(q.Questions, types.QuizQuestion{
			ID:            uuid.New(),
			QuestionText:  fx.Text,
			Options:       datatypes.JSON(raw),
			CorrectAnswer: fx.Correct,
			OrderIndex:    i,
			Points:        1,
		})
	}
	if err := tx.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed quiz: %v", err)
	}
	return q
}

func SeedAssignment(tb testing.TB, ctx context.Context, tx *gorm.DB, courseID uuid.UUID, title string, due *time.Time) *types.Assignment {
	tb.Helper()
	a := &types.Assignment{
		ID:           uuid.New(),
		CourseID:     courseID,
		Title:        title,
		Description:  title + " description",
		Instructions: "Answer in full sentences.",
		MaxScore:     100,
		DueDate:      due,
		IsPublished:  true,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed assignment: %v", err)
	}
	return a
}

func PtrTime(v time.Time) *time.Time { return &v }
