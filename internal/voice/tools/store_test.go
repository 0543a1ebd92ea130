package tools

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/neurobridge-voice/internal/domain"
	"github.com/yungbote/neurobridge-voice/internal/platform/apierr"
)

// memContent is an in-memory ContentStore for dispatcher tests.
type memContent struct {
	mu          sync.Mutex
	courses     []*types.Course
	enrollments []*types.Enrollment
	lessons     []*types.Lesson
	progress    map[[2]uuid.UUID]*types.LessonProgress
	quizzes     []*types.Quiz
	attempts    []*types.QuizAttempt
	assignments []*types.Assignment
	submissions []*types.Submission
	logs        []*types.VoiceLog

	panicOnList bool
}

func newMemContent() *memContent {
	return &memContent{progress: map[[2]uuid.UUID]*types.LessonProgress{}}
}

func (m *memContent) addCourse(title string) *types.Course {
	c := &types.Course{ID: uuid.New(), Title: title, Description: title + " description", IsActive: true, IsPublished: true}
	m.courses = append(m.courses, c)
	return c
}

func (m *memContent) enroll(student uuid.UUID, c *types.Course, progress float64) {
	m.enrollments = append(m.enrollments, &types.Enrollment{ID: uuid.New(), StudentID: student, CourseID: c.ID, Course: c, ProgressPercentage: progress})
}

func (m *memContent) ListEnrollments(ctx context.Context, studentID uuid.UUID) ([]*types.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.panicOnList {
		panic("boom")
	}
	var out []*types.Enrollment
	for _, e := range m.enrollments {
		if e.StudentID == studentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memContent) ListPublishedCourses(ctx context.Context) ([]*types.Course, error) {
	var out []*types.Course
	for _, c := range m.courses {
		if c.IsPublished {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memContent) SearchCourses(ctx context.Context, substr string) ([]*types.Course, error) {
	var out []*types.Course
	for _, c := range m.courses {
		if c.IsPublished && strings.Contains(strings.ToLower(c.Title), strings.ToLower(substr)) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memContent) GetCourse(ctx context.Context, courseID uuid.UUID) (*types.Course, error) {
	for _, c := range m.courses {
		if c.ID == courseID {
			return c, nil
		}
	}
	return nil, apierr.New(apierr.CodeNotFound, "course not found")
}

func (m *memContent) GetEnrollment(ctx context.Context, studentID, courseID uuid.UUID) (*types.Enrollment, error) {
	for _, e := range m.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID {
			return e, nil
		}
	}
	return nil, apierr.New(apierr.CodeNotFound, "not enrolled")
}

func (m *memContent) TouchEnrollment(ctx context.Context, studentID, courseID uuid.UUID) error {
	e, err := m.GetEnrollment(ctx, studentID, courseID)
	if err != nil {
		return err
	}
	at := time.Now().UTC()
	e.LastAccessed = &at
	return nil
}

func (m *memContent) Enroll(ctx context.Context, studentID, courseID uuid.UUID) (*types.Enrollment, bool, error) {
	c, err := m.GetCourse(ctx, courseID)
	if err != nil || !c.IsPublished {
		return nil, false, apierr.New(apierr.CodeNotFound, "course not available")
	}
	if e, err := m.GetEnrollment(ctx, studentID, courseID); err == nil {
		return e, false, nil
	}
	m.enroll(studentID, c, 0)
	return m.enrollments[len(m.enrollments)-1], true, nil
}

func (m *memContent) ListLessons(ctx context.Context, courseID uuid.UUID) ([]*types.Lesson, error) {
	var out []*types.Lesson
	for _, l := range m.lessons {
		if l.CourseID == courseID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memContent) GetLesson(ctx context.Context, lessonID uuid.UUID) (*types.Lesson, error) {
	for _, l := range m.lessons {
		if l.ID == lessonID {
			return l, nil
		}
	}
	return nil, apierr.New(apierr.CodeNotFound, "lesson not found")
}

func (m *memContent) LessonCompletion(ctx context.Context, studentID uuid.UUID, lessonIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := map[uuid.UUID]bool{}
	for _, id := range lessonIDs {
		if p, ok := m.progress[[2]uuid.UUID{studentID, id}]; ok {
			out[id] = p.IsCompleted
		}
	}
	return out, nil
}

func (m *memContent) MarkLessonComplete(ctx context.Context, studentID, lessonID uuid.UUID) (*types.LessonProgress, error) {
	if _, err := m.GetLesson(ctx, lessonID); err != nil {
		return nil, err
	}
	key := [2]uuid.UUID{studentID, lessonID}
	p, ok := m.progress[key]
	if !ok {
		p = &types.LessonProgress{ID: uuid.New(), StudentID: studentID, LessonID: lessonID}
		m.progress[key] = p
	}
	p.IsCompleted = true
	return p, nil
}

func (m *memContent) ListQuizzes(ctx context.Context, courseIDs []uuid.UUID) ([]*types.Quiz, error) {
	var out []*types.Quiz
	for _, q := range m.quizzes {
		for _, id := range courseIDs {
			if q.CourseID == id && q.IsPublished {
				out = append(out, q)
			}
		}
	}
	return out, nil
}

func (m *memContent) CountQuizQuestions(ctx context.Context, quizIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	out := map[uuid.UUID]int{}
	for _, q := range m.quizzes {
		out[q.ID] = len(q.Questions)
	}
	return out, nil
}

func (m *memContent) GetQuiz(ctx context.Context, quizID uuid.UUID) (*types.Quiz, error) {
	for _, q := range m.quizzes {
		if q.ID == quizID {
			return q, nil
		}
	}
	return nil, apierr.New(apierr.CodeNotFound, "quiz not found")
}

func (m *memContent) LatestQuizAttempts(ctx context.Context, studentID uuid.UUID, quizIDs []uuid.UUID) (map[uuid.UUID]*types.QuizAttempt, error) {
	out := map[uuid.UUID]*types.QuizAttempt{}
	for _, a := range m.attempts {
		if a.StudentID == studentID {
			out[a.QuizID] = a
		}
	}
	return out, nil
}

func (m *memContent) CountQuizAttempts(ctx context.Context, studentID, quizID uuid.UUID) (int, error) {
	n := 0
	for _, a := range m.attempts {
		if a.StudentID == studentID && a.QuizID == quizID {
			n++
		}
	}
	return n, nil
}

func (m *memContent) CreateQuizAttempt(ctx context.Context, attempt *types.QuizAttempt) error {
	attempt.ID = uuid.New()
	m.attempts = append(m.attempts, attempt)
	return nil
}

func (m *memContent) ListAssignments(ctx context.Context, courseIDs []uuid.UUID) ([]*types.Assignment, error) {
	var out []*types.Assignment
	for _, a := range m.assignments {
		for _, id := range courseIDs {
			if a.CourseID == id {
				out = append(out, a)
			}
		}
	}
	return out, nil
}

func (m *memContent) GetAssignment(ctx context.Context, assignmentID uuid.UUID) (*types.Assignment, error) {
	for _, a := range m.assignments {
		if a.ID == assignmentID {
			return a, nil
		}
	}
	return nil, apierr.New(apierr.CodeNotFound, "assignment not found")
}

func (m *memContent) LatestSubmissions(ctx context.Context, studentID uuid.UUID, assignmentIDs []uuid.UUID) (map[uuid.UUID]*types.Submission, error) {
	out := map[uuid.UUID]*types.Submission{}
	for _, s := range m.submissions {
		if s.StudentID == studentID {
			out[s.AssignmentID] = s
		}
	}
	return out, nil
}

func (m *memContent) CreateSubmission(ctx context.Context, sub *types.Submission) error {
	sub.ID = uuid.New()
	m.submissions = append(m.submissions, sub)
	return nil
}

func (m *memContent) RecordVoiceLog(ctx context.Context, row *types.VoiceLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, row)
	return nil
}
