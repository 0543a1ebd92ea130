package tools

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/neurobridge-voice/internal/domain"
	"github.com/yungbote/neurobridge-voice/internal/voice/session"
)

const spokenDate = "January 02, 2006 at 03:04 PM"

func isoOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}

func submissionView(sub *types.Submission) map[string]any {
	if sub == nil {
		return nil
	}
	var score any
	if sub.Score != nil {
		score = *sub.Score
	}
	return map[string]any{
		"submitted":    true,
		"status":       string(sub.Status),
		"score":        score,
		"is_late":      sub.IsLate,
		"submitted_at": sub.SubmittedAt.Format(time.RFC3339),
		"graded_at":    isoOrNil(sub.GradedAt),
	}
}

func (d *Dispatcher) listAllAssignments(ctx context.Context, c *Call) (Result, error) {
	courseIDs, titles, err := d.enrolledCourses(ctx, c.Identity.ID, c.Args.UUID("course_id"))
	if err != nil {
		return Result{}, err
	}
	var assignments []*types.Assignment
	if len(courseIDs) > 0 {
		if assignments, err = d.content.ListAssignments(ctx, courseIDs); err != nil {
			return Result{}, err
		}
	}
	ids := make([]uuid.UUID, 0, len(assignments))
	byCourse := map[uuid.UUID][]*types.Assignment{}
	for _, a := range assignments {
		ids = append(ids, a.ID)
		byCourse[a.CourseID] = append(byCourse[a.CourseID], a)
	}
	subs, err := d.content.LatestSubmissions(ctx, c.Identity.ID, ids)
	if err != nil {
		return Result{}, err
	}

	items := []map[string]any{}
	refs := []session.Ref{}
	spoken := []string{}
	pending := 0
	for _, courseID := range courseIDs {
		for _, a := range byCourse[courseID] {
			n := len(items) + 1
			sub := subs[a.ID]
			item := map[string]any{
				"number":       n,
				"id":           a.ID.String(),
				"title":        a.Title,
				"course_id":    courseID.String(),
				"course_title": titles[courseID],
				"due_date":     isoOrNil(a.DueDate),
				"max_score":    a.MaxScore,
				"submitted":    sub != nil,
				"status":       "not_submitted",
			}
			line := fmt.Sprintf("Assignment %d: %s - No due date", n, a.Title)
			if a.DueDate != nil {
				line = fmt.Sprintf("Assignment %d: %s - Due %s", n, a.Title, a.DueDate.Format("2006-01-02"))
			}
			if sub != nil {
				for k, v := range submissionView(sub) {
					item[k] = v
				}
				line = fmt.Sprintf("Assignment %d: %s - Submitted", n, a.Title)
			} else {
				pending++
			}
			items = append(items, item)
			refs = append(refs, session.Ref{Number: n, ID: a.ID, Title: a.Title, CourseID: courseID})
			spoken = append(spoken, line)
		}
	}
	c.Session.AssignmentsCache = refs

	res := ok(fmt.Sprintf("You have %d assignments, %d pending. %s", len(items), pending, spokenList(spoken)))
	if len(items) == 0 {
		res = ok("No assignments available.")
	}
	return res.with("assignments", items).
		emit("show_assignments", map[string]any{"assignments": items}), nil
}

// assignmentFor resolves an assignment from the arguments or, when none are
// given and fallback is set, the assignment last opened.
func assignmentFor(c *Call, fallback bool) (uuid.UUID, bool) {
	if ref, ok := resolveRef(c.Args, c.Session.AssignmentsCache, assignmentKeys); ok {
		return ref.ID, true
	}
	if fallback && !addressed(c.Args, assignmentKeys) && c.Session.CurrentAssignmentID != uuid.Nil {
		return c.Session.CurrentAssignmentID, true
	}
	return uuid.Nil, false
}

func (d *Dispatcher) getAssignmentDetails(ctx context.Context, c *Call) (Result, error) {
	id, found := assignmentFor(c, false)
	if !found {
		return Result{}, notFound("Assignment not found. Say 'show my assignments' first.")
	}
	a, err := d.content.GetAssignment(ctx, id)
	if err != nil {
		return Result{}, orNotFound(err, "Assignment not found. Say 'show my assignments' to list them again.")
	}
	subs, err := d.content.LatestSubmissions(ctx, c.Identity.ID, []uuid.UUID{a.ID})
	if err != nil {
		return Result{}, err
	}
	sub := subs[a.ID]
	c.Session.CurrentAssignmentID = a.ID

	var status string
	switch {
	case sub != nil:
		status = "You already submitted this assignment"
		if sub.IsLate {
			status += " (late submission)"
		}
		if sub.Status == types.SubmissionGraded && sub.Score != nil {
			pct := 0
			if a.MaxScore > 0 {
				pct = int(math.Round(100 * float64(*sub.Score) / float64(a.MaxScore)))
			}
			status += fmt.Sprintf(" and received a grade of %d out of %d, which is %d percent.", *sub.Score, a.MaxScore, pct)
		} else {
			status += " and it's awaiting grading."
		}
		status += fmt.Sprintf(" Submitted on %s.", sub.SubmittedAt.Format(spokenDate))
	case a.Overdue(d.now()) && a.AllowLateSubmission:
		status = "This assignment is past due, but late submissions are allowed. Say 'start assignment' to begin."
	case a.Overdue(d.now()):
		status = "This assignment is past due and no longer accepts submissions."
	default:
		status = "You haven't submitted this assignment yet. Say 'start assignment' to begin."
	}

	msg := fmt.Sprintf("Assignment: %s. ", a.Title)
	if desc := strings.TrimSpace(a.Description); desc != "" {
		msg += strings.TrimRight(desc, ".") + ". "
	}
	return ok(msg+status).
		with("assignment", map[string]any{"id": a.ID.String(), "title": a.Title, "description": a.Description}).
		emit("show_assignment", map[string]any{
			"assignment": map[string]any{
				"id":                    a.ID.String(),
				"title":                 a.Title,
				"description":           a.Description,
				"instructions":          a.Instructions,
				"due_date":              isoOrNil(a.DueDate),
				"max_score":             a.MaxScore,
				"allow_late_submission": a.AllowLateSubmission,
			},
			"submission": submissionView(sub),
		}), nil
}

func (d *Dispatcher) startAssignmentSubmission(ctx context.Context, c *Call) (Result, error) {
	id, found := assignmentFor(c, true)
	if !found {
		if addressed(c.Args, assignmentKeys) {
			return Result{}, notFound("Assignment not found. Say 'show my assignments' first.")
		}
		return Result{}, precondition("Please select an assignment first. Say 'show my assignments' and pick one.")
	}
	a, err := d.content.GetAssignment(ctx, id)
	if err != nil {
		return Result{}, orNotFound(err, "Assignment not found. Say 'show my assignments' to list them again.")
	}
	if a.Overdue(d.now()) && !a.AllowLateSubmission {
		return Result{}, precondition("This assignment is past due and no longer accepts submissions.")
	}

	c.Session.CurrentAssignmentID = a.ID
	c.Session.AssignmentContent = ""
	return ok(fmt.Sprintf("Ready to record your submission for %s. Start dictating your answer. Say 'done' when finished, or 'review' to hear what you've said so far.", a.Title)).
		with("assignment", map[string]any{"id": a.ID.String(), "title": a.Title}).
		emit("assignment_started", map[string]any{"assignment": map[string]any{"id": a.ID.String(), "title": a.Title}}), nil
}

func (d *Dispatcher) dictateAssignmentAnswer(ctx context.Context, c *Call) (Result, error) {
	text := c.Args.String("content")
	if text == "" {
		return Result{}, invalid("I didn't catch anything to add. Please dictate your answer.")
	}
	s := c.Session
	if c.Args.Bool("append", true) && s.AssignmentContent != "" {
		s.AssignmentContent += " " + text
	} else {
		s.AssignmentContent = text
	}
	words := len(strings.Fields(s.AssignmentContent))
	return ok(fmt.Sprintf("Got it. You've dictated %d words so far. Continue dictating, say 'review' to hear it back, or 'submit' when done.", words)).
		with("content_length", len(s.AssignmentContent)).
		with("word_count", words).
		emit("assignment_draft", map[string]any{"content": s.AssignmentContent, "word_count": words}), nil
}

func (d *Dispatcher) reviewAssignmentSubmission(ctx context.Context, c *Call) (Result, error) {
	content := c.Session.AssignmentContent
	if content == "" {
		return ok("You haven't dictated anything yet."), nil
	}
	return ok("Here's what you've written: "+content).
		with("content", content).
		with("word_count", len(strings.Fields(content))), nil
}

func (d *Dispatcher) submitAssignment(ctx context.Context, c *Call) (Result, error) {
	s := c.Session
	content := s.AssignmentContent
	if strings.TrimSpace(content) == "" {
		return Result{}, precondition("You haven't written anything yet. Please dictate your answer first.")
	}
	if !c.Args.Bool("confirm", false) {
		return Result{}, precondition(fmt.Sprintf("Your submission has %d words. Say 'yes, submit' to confirm.", len(strings.Fields(content))))
	}
	a, err := d.content.GetAssignment(ctx, s.CurrentAssignmentID)
	if err != nil {
		return Result{}, orNotFound(err, "This assignment is no longer available. Say 'show my assignments' to pick another.")
	}
	now := d.now()
	late := a.Overdue(now)
	if late && !a.AllowLateSubmission {
		return Result{}, precondition("This assignment is past due and no longer accepts submissions.")
	}
	sub := &types.Submission{
		AssignmentID: a.ID,
		StudentID:    c.Identity.ID,
		TextAnswer:   content,
		Status:       types.SubmissionSubmitted,
		IsLate:       late,
		SubmittedAt:  now,
	}
	if err := d.content.CreateSubmission(ctx, sub); err != nil {
		return Result{}, err
	}

	s.ResetAssignment()
	msg := "Your assignment has been submitted successfully! Your teacher will grade it soon."
	if late {
		msg += " It was marked as a late submission."
	}
	return ok(msg).
		with("submission_id", sub.ID.String()).
		emit("assignment_submitted", map[string]any{"success": true, "assignment_id": a.ID.String(), "is_late": late}), nil
}
