package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	types "github.com/yungbote/neurobridge-voice/internal/domain"
	"github.com/yungbote/neurobridge-voice/internal/platform/apierr"
	"github.com/yungbote/neurobridge-voice/internal/voice/session"
)

// spokenLimit caps how many listed items are read aloud.
const spokenLimit = 5

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// spokenList joins the first spokenLimit items.
func spokenList(items []string) string {
	if len(items) > spokenLimit {
		items = items[:spokenLimit]
	}
	return strings.Join(items, ", ")
}

// orNotFound swaps a store NotFound for a message the student can act on.
func orNotFound(err error, msg string) error {
	if errors.Is(err, apierr.ErrNotFound) {
		return notFound(msg)
	}
	return err
}

func courseItem(n int, c *types.Course) map[string]any {
	return map[string]any{
		"number":      n,
		"id":          c.ID.String(),
		"title":       c.Title,
		"description": shorten(c.Description, 100),
	}
}

func (d *Dispatcher) listEnrolledCourses(ctx context.Context, c *Call) (Result, error) {
	enrollments, err := d.content.ListEnrollments(ctx, c.Identity.ID)
	if err != nil {
		return Result{}, err
	}
	items := make([]map[string]any, 0, len(enrollments))
	refs := make([]session.Ref, 0, len(enrollments))
	spoken := make([]string, 0, len(enrollments))
	for i, e := range enrollments {
		n := i + 1
		item := courseItem(n, e.Course)
		item["progress"] = e.ProgressPercentage
		items = append(items, item)
		refs = append(refs, session.Ref{Number: n, ID: e.CourseID, Title: e.Course.Title})
		spoken = append(spoken, fmt.Sprintf("Number %d: %s at %.0f%% progress", n, e.Course.Title, e.ProgressPercentage))
	}
	c.Session.CoursesCache = refs

	res := ok(fmt.Sprintf("You are enrolled in %d courses. %s", len(items), spokenList(spoken)))
	if len(items) == 0 {
		res = ok("You are not enrolled in any courses yet. Would you like me to show you the available courses?")
	}
	return res.with("courses", items).
		emit("show_courses", map[string]any{"courses": items, "enrolled": true}), nil
}

func (d *Dispatcher) getCoursesByName(ctx context.Context, c *Call) (Result, error) {
	substr := c.Args.String("name_substr")
	if substr == "" {
		return Result{}, invalid("Please tell me a course name or part of one to search for.")
	}
	courses, err := d.content.SearchCourses(ctx, substr)
	if err != nil {
		return Result{}, err
	}
	if len(courses) == 0 {
		return ok(fmt.Sprintf("No courses found matching '%s'.", substr)), nil
	}
	items := make([]map[string]any, 0, len(courses))
	refs := make([]session.Ref, 0, len(courses))
	spoken := make([]string, 0, len(courses))
	for i, co := range courses {
		n := i + 1
		items = append(items, courseItem(n, co))
		refs = append(refs, session.Ref{Number: n, ID: co.ID, Title: co.Title})
		spoken = append(spoken, fmt.Sprintf("Number %d: %s", n, co.Title))
	}
	// Search hits are enrollable, so they replace the available listing.
	c.Session.AvailableCoursesCache = refs
	return ok(fmt.Sprintf("Found %d courses matching '%s': %s", len(items), substr, spokenList(spoken))).
		with("courses", items), nil
}

func (d *Dispatcher) listAvailableCourses(ctx context.Context, c *Call) (Result, error) {
	all, err := d.content.ListPublishedCourses(ctx)
	if err != nil {
		return Result{}, err
	}
	enrollments, err := d.content.ListEnrollments(ctx, c.Identity.ID)
	if err != nil {
		return Result{}, err
	}
	enrolled := make(map[uuid.UUID]bool, len(enrollments))
	for _, e := range enrollments {
		enrolled[e.CourseID] = true
	}

	items := []map[string]any{}
	refs := []session.Ref{}
	spoken := []string{}
	for _, co := range all {
		if enrolled[co.ID] {
			continue
		}
		n := len(items) + 1
		items = append(items, courseItem(n, co))
		refs = append(refs, session.Ref{Number: n, ID: co.ID, Title: co.Title})
		spoken = append(spoken, fmt.Sprintf("Number %d: %s", n, co.Title))
	}
	c.Session.AvailableCoursesCache = refs

	res := ok(fmt.Sprintf("There are %d courses available. %s", len(items), spokenList(spoken)))
	if len(items) == 0 {
		res = ok("You are already enrolled in all available courses!")
	}
	return res.with("courses", items).
		emit("show_courses", map[string]any{"courses": items, "enrolled": false}), nil
}

func (d *Dispatcher) enrollInCourse(ctx context.Context, c *Call) (Result, error) {
	ref, found := resolveRef(c.Args, c.Session.AvailableCoursesCache, courseKeys)
	if !found {
		// A name may match a course that was never listed.
		if name := c.Args.String("course_name"); name != "" {
			hits, err := d.content.SearchCourses(ctx, name)
			if err != nil {
				return Result{}, err
			}
			if len(hits) > 0 {
				ref, found = session.Ref{ID: hits[0].ID, Title: hits[0].Title}, true
			}
		}
	}
	if !found {
		return Result{}, notFound("Course not found. Say 'show available courses' and then tell me the course number or name.")
	}

	enrollment, created, err := d.content.Enroll(ctx, c.Identity.ID, ref.ID)
	if err != nil {
		return Result{}, orNotFound(err, "That course is not open for enrollment. Say 'show available courses' to see the ones you can join.")
	}
	if !created {
		return Result{}, precondition("You are already enrolled in this course. Say 'show my courses' to see it.")
	}
	title := ref.Title
	if enrollment.Course != nil {
		title = enrollment.Course.Title
	}
	return ok(fmt.Sprintf("Great! You are now enrolled in %s. Would you like me to show you the course content?", title)).
		with("course", map[string]any{"id": ref.ID.String(), "title": title}).
		emit("enrollment_complete", map[string]any{"course": map[string]any{"id": ref.ID.String(), "title": title}}), nil
}

// enrollmentFor returns the student's enrollment in the course, or nil when
// they are not enrolled. Opening an enrolled course refreshes its access time.
func (d *Dispatcher) enrollmentFor(ctx context.Context, studentID, courseID uuid.UUID) (*types.Enrollment, error) {
	e, err := d.content.GetEnrollment(ctx, studentID, courseID)
	if err != nil {
		if apierr.CodeOf(err) == apierr.CodeNotFound {
			return nil, nil
		}
		return nil, err
	}
	if err := d.content.TouchEnrollment(ctx, studentID, courseID); err != nil {
		d.log.Warn("Enrollment access time not refreshed", "course_id", courseID, "error", err)
	}
	return e, nil
}

func (d *Dispatcher) getCourseDetails(ctx context.Context, c *Call) (Result, error) {
	ref, found := resolveRef(c.Args, c.Session.CoursesCache, courseKeys)
	if !found {
		return Result{}, notFound("Course not found. Say 'show my courses' and then tell me the course number or name.")
	}
	course, err := d.content.GetCourse(ctx, ref.ID)
	if err != nil {
		return Result{}, orNotFound(err, "Course not found. Say 'show my courses' to list your courses again.")
	}
	enrollment, err := d.enrollmentFor(ctx, c.Identity.ID, course.ID)
	if err != nil {
		return Result{}, err
	}
	lessons, err := d.content.ListLessons(ctx, course.ID)
	if err != nil {
		return Result{}, err
	}
	quizzes, err := d.content.ListQuizzes(ctx, []uuid.UUID{course.ID})
	if err != nil {
		return Result{}, err
	}
	assignments, err := d.content.ListAssignments(ctx, []uuid.UUID{course.ID})
	if err != nil {
		return Result{}, err
	}

	c.Session.CurrentCourseID = course.ID
	c.Session.LessonsCache = lessonRefs(lessons)

	status := "You are not enrolled in this course yet."
	if enrollment != nil {
		status = fmt.Sprintf("You are enrolled and %.0f%% complete.", enrollment.ProgressPercentage)
	}
	res := ok(fmt.Sprintf("Course '%s' has %d lessons, %d quizzes, and %d assignments. %s What would you like to do?",
		course.Title, len(lessons), len(quizzes), len(assignments), status)).
		with("course", map[string]any{"id": course.ID.String(), "title": course.Title, "description": course.Description}).
		with("lesson_count", len(lessons)).
		with("quiz_count", len(quizzes)).
		with("assignment_count", len(assignments)).
		with("enrolled", enrollment != nil)
	if enrollment != nil {
		res = res.with("progress", enrollment.ProgressPercentage)
	}
	return res, nil
}
