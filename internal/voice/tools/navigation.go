package tools

import (
	"context"
	"fmt"
	"math"
)

// routes maps spoken destinations to client paths. An empty path means
// "go back".
var routes = map[string]string{
	"dashboard": "/student",
	"home":      "/student",
	"courses":   "/student/courses",
	"progress":  "/student/progress",
	"settings":  "/student/accessibility",
	"back":      "",
}

func (d *Dispatcher) getStudentProgress(ctx context.Context, c *Call) (Result, error) {
	enrollments, err := d.content.ListEnrollments(ctx, c.Identity.ID)
	if err != nil {
		return Result{}, err
	}
	courses := make([]map[string]any, 0, len(enrollments))
	var sum float64
	completed := 0
	for _, e := range enrollments {
		courses = append(courses, map[string]any{
			"course":    e.Course.Title,
			"course_id": e.CourseID.String(),
			"progress":  e.ProgressPercentage,
			"completed": e.Completed,
		})
		sum += e.ProgressPercentage
		if e.Completed {
			completed++
		}
	}
	avg := 0.0
	if len(enrollments) > 0 {
		avg = math.Round(10*sum/float64(len(enrollments))) / 10
	}

	msg := fmt.Sprintf("Your average progress is %.0f%% across %d courses. %d courses completed.", avg, len(enrollments), completed)
	if len(enrollments) == 0 {
		msg = "You are not enrolled in any courses yet, so there is no progress to report."
	}
	return ok(msg).
		with("progress", courses).
		with("average_progress", avg).
		with("total_courses", len(enrollments)).
		with("completed_courses", completed).
		emit("show_progress", map[string]any{"progress": map[string]any{
			"courses":       courses,
			"average":       avg,
			"total_courses": len(enrollments),
			"completed":     completed,
		}}), nil
}

func (d *Dispatcher) navigateToPage(ctx context.Context, c *Call) (Result, error) {
	page := c.Args.String("page")
	path, known := routes[page]
	if !known {
		return Result{}, invalid(fmt.Sprintf("Unknown destination: %s", page))
	}
	nav := &Navigation{Page: page, Back: path == ""}
	if path != "" {
		nav.URL = &path
	}
	res := ok(fmt.Sprintf("Navigating to %s.", page)).with("navigation", nav)
	res.Navigation = nav
	return res, nil
}

func (d *Dispatcher) clearDisplay(ctx context.Context, c *Call) (Result, error) {
	return ok("Display cleared. What would you like to do?").
		emit("clear_display", map[string]any{}), nil
}
