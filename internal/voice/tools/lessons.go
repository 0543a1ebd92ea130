package tools

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	types "github.com/yungbote/neurobridge-voice/internal/domain"
	"github.com/yungbote/neurobridge-voice/internal/voice/session"
)

const (
	lessonSpokenBudget = 2000
	lessonContinues    = "... The content continues. Say 'continue reading' to hear more."
)

func lessonRefs(lessons []*types.Lesson) []session.Ref {
	refs := make([]session.Ref, 0, len(lessons))
	for i, l := range lessons {
		refs = append(refs, session.Ref{Number: i + 1, ID: l.ID, Title: l.Title, CourseID: l.CourseID})
	}
	return refs
}

// truncateLesson keeps the first lessonSpokenBudget characters.
func truncateLesson(text string) string {
	r := []rune(text)
	if len(r) <= lessonSpokenBudget {
		return text
	}
	return string(r[:lessonSpokenBudget]) + lessonContinues
}

// courseFor picks the course a lesson call refers to: explicit id, a number
// from the courses list, then the current course.
func courseFor(args Args, s *session.Session) uuid.UUID {
	if ref, ok := resolveRef(args, s.CoursesCache, refKeys{id: "course_id", number: "course_number"}); ok {
		return ref.ID
	}
	return s.CurrentCourseID
}

func (d *Dispatcher) listCourseLessons(ctx context.Context, c *Call) (Result, error) {
	courseID := courseFor(c.Args, c.Session)
	if courseID == uuid.Nil {
		return Result{}, precondition("Please select a course first, or say 'show my courses'.")
	}
	if _, err := d.enrollmentFor(ctx, c.Identity.ID, courseID); err != nil {
		return Result{}, err
	}
	lessons, err := d.content.ListLessons(ctx, courseID)
	if err != nil {
		return Result{}, err
	}
	ids := make([]uuid.UUID, 0, len(lessons))
	for _, l := range lessons {
		ids = append(ids, l.ID)
	}
	done, err := d.content.LessonCompletion(ctx, c.Identity.ID, ids)
	if err != nil {
		return Result{}, err
	}

	items := make([]map[string]any, 0, len(lessons))
	spoken := make([]string, 0, len(lessons))
	for i, l := range lessons {
		items = append(items, map[string]any{
			"number":    i + 1,
			"id":        l.ID.String(),
			"title":     l.Title,
			"duration":  l.DurationMinutes,
			"completed": done[l.ID],
		})
		spoken = append(spoken, fmt.Sprintf("Lesson %d: %s", i+1, l.Title))
	}
	c.Session.CurrentCourseID = courseID
	c.Session.LessonsCache = lessonRefs(lessons)

	res := ok(fmt.Sprintf("This course has %d lessons. %s", len(items), spokenList(spoken)))
	if len(items) == 0 {
		res = ok("This course has no lessons yet.")
	}
	return res.with("lessons", items).
		emit("show_lessons", map[string]any{"course_id": courseID.String(), "lessons": items}), nil
}

// lessonFor resolves a lesson from the arguments, falling back to the Nth
// lesson of the current course when no listing has been cached.
func (d *Dispatcher) lessonFor(ctx context.Context, c *Call) (uuid.UUID, error) {
	if ref, ok := resolveRef(c.Args, c.Session.LessonsCache, lessonKeys); ok {
		return ref.ID, nil
	}
	if n, ok := c.Args.Int("lesson_number"); ok && n > 0 {
		if courseID := courseFor(c.Args, c.Session); courseID != uuid.Nil {
			lessons, err := d.content.ListLessons(ctx, courseID)
			if err != nil {
				return uuid.Nil, err
			}
			if n <= len(lessons) {
				c.Session.CurrentCourseID = courseID
				c.Session.LessonsCache = lessonRefs(lessons)
				return lessons[n-1].ID, nil
			}
		}
	}
	if !addressed(c.Args, lessonKeys) {
		return c.Session.CurrentLessonID, nil
	}
	return uuid.Nil, nil
}

func (d *Dispatcher) getLessonContent(ctx context.Context, c *Call) (Result, error) {
	lessonID, err := d.lessonFor(ctx, c)
	if err != nil {
		return Result{}, err
	}
	if lessonID == uuid.Nil {
		return Result{}, notFound("Lesson not found. Say 'list lessons' and then tell me the lesson number.")
	}
	lesson, err := d.content.GetLesson(ctx, lessonID)
	if err != nil {
		return Result{}, orNotFound(err, "Lesson not found. Say 'list lessons' to hear the lessons again.")
	}

	c.Session.CurrentLessonID = lesson.ID
	c.Session.CurrentCourseID = lesson.CourseID

	content := truncateLesson(lesson.ContentText)
	return ok(fmt.Sprintf("Lesson: %s. %s", lesson.Title, content)).
		with("lesson", map[string]any{"id": lesson.ID.String(), "title": lesson.Title, "content": content}).
		emit("start_lesson", map[string]any{"lesson": map[string]any{
			"id":               lesson.ID.String(),
			"title":            lesson.Title,
			"content_text":     lesson.ContentText,
			"duration_minutes": lesson.DurationMinutes,
		}}), nil
}

func (d *Dispatcher) markLessonComplete(ctx context.Context, c *Call) (Result, error) {
	lessonID := c.Session.CurrentLessonID
	if ref, ok := resolveRef(c.Args, c.Session.LessonsCache, lessonKeys); ok {
		lessonID = ref.ID
	} else if addressed(c.Args, lessonKeys) {
		return Result{}, notFound("Lesson not found. Say 'list lessons' and then tell me the lesson number.")
	}
	if lessonID == uuid.Nil {
		return Result{}, precondition("No lesson selected. Open a lesson first, or tell me which lesson you finished.")
	}
	if _, err := d.content.MarkLessonComplete(ctx, c.Identity.ID, lessonID); err != nil {
		return Result{}, orNotFound(err, "Lesson not found. Say 'list lessons' to hear the lessons again.")
	}
	return ok("Lesson marked as complete! Would you like to continue to the next lesson?").
		with("lesson_id", lessonID.String()).
		emit("lesson_completed", map[string]any{"lesson_id": lessonID.String()}), nil
}
