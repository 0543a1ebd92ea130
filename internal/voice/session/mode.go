package session

// Mode is the session's top-level task context. It gates which tools run.
type Mode string

const (
	ModeIdle       Mode = "idle"
	ModeQuiz       Mode = "quiz"
	ModeLesson     Mode = "lesson"
	ModeAssignment Mode = "assignment"
)

func (m Mode) Valid() bool {
	switch m {
	case ModeIdle, ModeQuiz, ModeLesson, ModeAssignment:
		return true
	default:
		return false
	}
}

func (m Mode) String() string { return string(m) }

// Transition documents a tool's precondition and resulting mode. An empty
// Requires means the tool runs in any mode; an empty Result leaves the mode
// to the handler (usually unchanged).
type Transition struct {
	Requires []Mode
	Result   Mode
	// Hint is spoken back when the precondition fails.
	Hint string
}

// Allows reports whether the tool may run in mode m.
func (t Transition) Allows(m Mode) bool {
	if len(t.Requires) == 0 {
		return true
	}
	for _, r := range t.Requires {
		if r == m {
			return true
		}
	}
	return false
}

const (
	quizHint       = "There's no quiz in progress. Say 'list quizzes' and then start one first."
	assignmentHint = "You're not working on an assignment right now. Pick an assignment and say 'start submission' first."
)

// Transitions is the full tool table. Tools absent from it are unknown.
var Transitions = map[string]Transition{
	"list_enrolled_courses":        {},
	"get_courses_by_name":          {},
	"list_available_courses":       {},
	"enroll_in_course":             {},
	"get_course_details":           {},
	"list_course_lessons":          {},
	"get_lesson_content":           {Result: ModeLesson},
	"mark_lesson_complete":         {},
	"list_all_quizzes":             {},
	"start_quiz":                   {Result: ModeQuiz},
	"read_current_question":        {Requires: []Mode{ModeQuiz}, Hint: quizHint},
	"answer_question":              {Requires: []Mode{ModeQuiz}, Hint: quizHint},
	"confirm_answer":               {Requires: []Mode{ModeQuiz}, Hint: quizHint},
	"navigate_question":            {Requires: []Mode{ModeQuiz}, Hint: quizHint},
	"submit_quiz":                  {Requires: []Mode{ModeQuiz}, Result: ModeIdle, Hint: quizHint},
	"get_quiz_status":              {Requires: []Mode{ModeQuiz}, Hint: quizHint},
	"list_all_assignments":         {},
	"get_assignment_details":       {},
	"start_assignment_submission":  {Result: ModeAssignment},
	"dictate_assignment_answer":    {Requires: []Mode{ModeAssignment}, Hint: assignmentHint},
	"review_assignment_submission": {Requires: []Mode{ModeAssignment}, Hint: assignmentHint},
	"submit_assignment":            {Requires: []Mode{ModeAssignment}, Result: ModeIdle, Hint: assignmentHint},
	"get_student_progress":         {},
	"navigate_to_page":             {Result: ModeIdle},
	"clear_display":                {Result: ModeIdle},
}
