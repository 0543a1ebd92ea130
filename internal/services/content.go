package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-voice/internal/data/repos"
	types "github.com/yungbote/neurobridge-voice/internal/domain"
	"github.com/yungbote/neurobridge-voice/internal/platform/apierr"
	"github.com/yungbote/neurobridge-voice/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-voice/internal/platform/logger"
)

// ContentStore is the read/command surface the tool dispatcher uses. Every
// call is its own unit of work; nothing spans tool calls.
type ContentStore interface {
	ListEnrollments(ctx context.Context, studentID uuid.UUID) ([]*types.Enrollment, error)
	ListPublishedCourses(ctx context.Context) ([]*types.Course, error)
	SearchCourses(ctx context.Context, substr string) ([]*types.Course, error)
	GetCourse(ctx context.Context, courseID uuid.UUID) (*types.Course, error)
	GetEnrollment(ctx context.Context, studentID, courseID uuid.UUID) (*types.Enrollment, error)
	Enroll(ctx context.Context, studentID, courseID uuid.UUID) (*types.Enrollment, bool, error)
	TouchEnrollment(ctx context.Context, studentID, courseID uuid.UUID) error

	ListLessons(ctx context.Context, courseID uuid.UUID) ([]*types.Lesson, error)
	GetLesson(ctx context.Context, lessonID uuid.UUID) (*types.Lesson, error)
	LessonCompletion(ctx context.Context, studentID uuid.UUID, lessonIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	MarkLessonComplete(ctx context.Context, studentID, lessonID uuid.UUID) (*types.LessonProgress, error)

	ListQuizzes(ctx context.Context, courseIDs []uuid.UUID) ([]*types.Quiz, error)
	CountQuizQuestions(ctx context.Context, quizIDs []uuid.UUID) (map[uuid.UUID]int, error)
	GetQuiz(ctx context.Context, quizID uuid.UUID) (*types.Quiz, error)
	LatestQuizAttempts(ctx context.Context, studentID uuid.UUID, quizIDs []uuid.UUID) (map[uuid.UUID]*types.QuizAttempt, error)
	CountQuizAttempts(ctx context.Context, studentID, quizID uuid.UUID) (int, error)
	CreateQuizAttempt(ctx context.Context, attempt *types.QuizAttempt) error

	ListAssignments(ctx context.Context, courseIDs []uuid.UUID) ([]*types.Assignment, error)
	GetAssignment(ctx context.Context, assignmentID uuid.UUID) (*types.Assignment, error)
	LatestSubmissions(ctx context.Context, studentID uuid.UUID, assignmentIDs []uuid.UUID) (map[uuid.UUID]*types.Submission, error)
	CreateSubmission(ctx context.Context, sub *types.Submission) error

	RecordVoiceLog(ctx context.Context, row *types.VoiceLog) error
}

type contentStore struct {
	db    *gorm.DB
	log   *logger.Logger
	repos repos.Set
	now   func() time.Time
}

func NewContentStore(db *gorm.DB, log *logger.Logger, set repos.Set) ContentStore {
	return &contentStore{
		db:    db,
		log:   log.With("service", "ContentStore"),
		repos: set,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *contentStore) ListEnrollments(ctx context.Context, studentID uuid.UUID) ([]*types.Enrollment, error) {
	rows, err := s.repos.Enrollment.ListByStudent(dbctx.Context{Ctx: ctx}, studentID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	out := rows[:0]
	for _, e := range rows {
		// Soft-deleted courses do not preload.
		if e.Course != nil {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *contentStore) ListPublishedCourses(ctx context.Context) ([]*types.Course, error) {
	rows, err := s.repos.Course.ListPublished(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return rows, nil
}

func (s *contentStore) SearchCourses(ctx context.Context, substr string) ([]*types.Course, error) {
	rows, err := s.repos.Course.SearchByTitle(dbctx.Context{Ctx: ctx}, substr)
	if err != nil {
		return nil, fmt.Errorf("search courses: %w", err)
	}
	return rows, nil
}

func (s *contentStore) GetCourse(ctx context.Context, courseID uuid.UUID) (*types.Course, error) {
	rows, err := s.repos.Course.GetByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{courseID})
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	if len(rows) == 0 {
		return nil, apierr.New(apierr.CodeNotFound, "course not found")
	}
	return rows[0], nil
}

func (s *contentStore) GetEnrollment(ctx context.Context, studentID, courseID uuid.UUID) (*types.Enrollment, error) {
	row, err := s.repos.Enrollment.GetByStudentAndCourse(dbctx.Context{Ctx: ctx}, studentID, courseID)
	if err != nil {
		return nil, fmt.Errorf("get enrollment: %w", err)
	}
	if row == nil {
		return nil, apierr.New(apierr.CodeNotFound, "not enrolled")
	}
	return row, nil
}

func (s *contentStore) TouchEnrollment(ctx context.Context, studentID, courseID uuid.UUID) error {
	if err := s.repos.Enrollment.Touch(dbctx.Context{Ctx: ctx}, studentID, courseID, s.now()); err != nil {
		return fmt.Errorf("touch enrollment: %w", err)
	}
	return nil
}

// Enroll is idempotent; the bool reports whether a new enrollment was made.
func (s *contentStore) Enroll(ctx context.Context, studentID, courseID uuid.UUID) (*types.Enrollment, bool, error) {
	var (
		out     *types.Enrollment
		created bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		courses, err := s.repos.Course.GetByIDs(dbctx.Context{Ctx: ctx, Tx: tx}, []uuid.UUID{courseID})
		if err != nil {
			return err
		}
		if len(courses) == 0 || !courses[0].IsPublished || !courses[0].IsActive {
			return apierr.New(apierr.CodeNotFound, "course not available")
		}
		existing, err := s.repos.Enrollment.GetByStudentAndCourse(dbctx.Context{Ctx: ctx, Tx: tx}, studentID, courseID)
		if err != nil {
			return err
		}
		if existing != nil {
			out = existing
			return nil
		}
		row := &types.Enrollment{StudentID: studentID, CourseID: courseID, EnrolledAt: s.now()}
		if _, err := s.repos.Enrollment.Create(dbctx.Context{Ctx: ctx, Tx: tx}, []*types.Enrollment{row}); err != nil {
			return err
		}
		row.Course = courses[0]
		out, created = row, true
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("enroll: %w", err)
	}
	return out, created, nil
}

func (s *contentStore) ListLessons(ctx context.Context, courseID uuid.UUID) ([]*types.Lesson, error) {
	rows, err := s.repos.Lesson.ListPublishedByCourse(dbctx.Context{Ctx: ctx}, courseID)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return rows, nil
}

func (s *contentStore) GetLesson(ctx context.Context, lessonID uuid.UUID) (*types.Lesson, error) {
	rows, err := s.repos.Lesson.GetByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{lessonID})
	if err != nil {
		return nil, fmt.Errorf("get lesson: %w", err)
	}
	if len(rows) == 0 {
		return nil, apierr.New(apierr.CodeNotFound, "lesson not found")
	}
	return rows[0], nil
}

func (s *contentStore) LessonCompletion(ctx context.Context, studentID uuid.UUID, lessonIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	rows, err := s.repos.LessonProgress.GetByStudentAndLessonIDs(dbctx.Context{Ctx: ctx}, studentID, lessonIDs)
	if err != nil {
		return nil, fmt.Errorf("lesson completion: %w", err)
	}
	out := make(map[uuid.UUID]bool, len(rows))
	for _, p := range rows {
		out[p.LessonID] = p.IsCompleted
	}
	return out, nil
}

func (s *contentStore) MarkLessonComplete(ctx context.Context, studentID, lessonID uuid.UUID) (*types.LessonProgress, error) {
	if _, err := s.GetLesson(ctx, lessonID); err != nil {
		return nil, err
	}
	row, err := s.repos.LessonProgress.MarkComplete(dbctx.Context{Ctx: ctx}, studentID, lessonID, s.now())
	if err != nil {
		return nil, fmt.Errorf("mark lesson complete: %w", err)
	}
	return row, nil
}

func (s *contentStore) ListQuizzes(ctx context.Context, courseIDs []uuid.UUID) ([]*types.Quiz, error) {
	rows, err := s.repos.Quiz.ListPublishedByCourseIDs(dbctx.Context{Ctx: ctx}, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	return rows, nil
}

func (s *contentStore) CountQuizQuestions(ctx context.Context, quizIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	out, err := s.repos.Quiz.CountQuestions(dbctx.Context{Ctx: ctx}, quizIDs)
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}
	return out, nil
}

func (s *contentStore) GetQuiz(ctx context.Context, quizID uuid.UUID) (*types.Quiz, error) {
	row, err := s.repos.Quiz.GetWithQuestions(dbctx.Context{Ctx: ctx}, quizID)
	if err != nil {
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	if row == nil {
		return nil, apierr.New(apierr.CodeNotFound, "quiz not found")
	}
	return row, nil
}

func (s *contentStore) LatestQuizAttempts(ctx context.Context, studentID uuid.UUID, quizIDs []uuid.UUID) (map[uuid.UUID]*types.QuizAttempt, error) {
	rows, err := s.repos.QuizAttempt.ListByStudentAndQuizIDs(dbctx.Context{Ctx: ctx}, studentID, quizIDs)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	out := make(map[uuid.UUID]*types.QuizAttempt, len(rows))
	for _, a := range rows {
		// rows arrive newest attempt first
		if _, seen := out[a.QuizID]; !seen {
			out[a.QuizID] = a
		}
	}
	return out, nil
}

func (s *contentStore) CountQuizAttempts(ctx context.Context, studentID, quizID uuid.UUID) (int, error) {
	n, err := s.repos.QuizAttempt.CountByStudentAndQuiz(dbctx.Context{Ctx: ctx}, studentID, quizID)
	if err != nil {
		return 0, fmt.Errorf("count attempts: %w", err)
	}
	return n, nil
}

func (s *contentStore) CreateQuizAttempt(ctx context.Context, attempt *types.QuizAttempt) error {
	if _, err := s.repos.QuizAttempt.Create(dbctx.Context{Ctx: ctx}, []*types.QuizAttempt{attempt}); err != nil {
		return fmt.Errorf("create attempt: %w", err)
	}
	return nil
}

func (s *contentStore) ListAssignments(ctx context.Context, courseIDs []uuid.UUID) ([]*types.Assignment, error) {
	rows, err := s.repos.Assignment.ListPublishedByCourseIDs(dbctx.Context{Ctx: ctx}, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return rows, nil
}

func (s *contentStore) GetAssignment(ctx context.Context, assignmentID uuid.UUID) (*types.Assignment, error) {
	rows, err := s.repos.Assignment.GetByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{assignmentID})
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	if len(rows) == 0 {
		return nil, apierr.New(apierr.CodeNotFound, "assignment not found")
	}
	return rows[0], nil
}

func (s *contentStore) LatestSubmissions(ctx context.Context, studentID uuid.UUID, assignmentIDs []uuid.UUID) (map[uuid.UUID]*types.Submission, error) {
	rows, err := s.repos.Submission.ListByStudentAndAssignmentIDs(dbctx.Context{Ctx: ctx}, studentID, assignmentIDs)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	out := make(map[uuid.UUID]*types.Submission, len(rows))
	for _, sub := range rows {
		if _, seen := out[sub.AssignmentID]; !seen {
			out[sub.AssignmentID] = sub
		}
	}
	return out, nil
}

func (s *contentStore) CreateSubmission(ctx context.Context, sub *types.Submission) error {
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = s.now()
	}
	if _, err := s.repos.Submission.Create(dbctx.Context{Ctx: ctx}, []*types.Submission{sub}); err != nil {
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}

func (s *contentStore) RecordVoiceLog(ctx context.Context, row *types.VoiceLog) error {
	if _, err := s.repos.VoiceLog.Create(dbctx.Context{Ctx: ctx}, []*types.VoiceLog{row}); err != nil {
		return fmt.Errorf("record voice log: %w", err)
	}
	return nil
}
