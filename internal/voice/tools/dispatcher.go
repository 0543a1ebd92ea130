package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	types "github.com/yungbote/neurobridge-voice/internal/domain"
	"github.com/yungbote/neurobridge-voice/internal/observability"
	"github.com/yungbote/neurobridge-voice/internal/platform/apierr"
	"github.com/yungbote/neurobridge-voice/internal/platform/logger"
	"github.com/yungbote/neurobridge-voice/internal/services"
	"github.com/yungbote/neurobridge-voice/internal/voice/session"
)

const (
	defaultToolTimeout = 15 * time.Second
	auditTimeout       = 3 * time.Second
	unknownFunction    = "Unknown function"
)

// Call is what every handler receives. The session lock is held for the
// whole call.
type Call struct {
	Args     Args
	Identity services.Identity
	Session  *session.Session
}

type handler func(ctx context.Context, c *Call) (Result, error)

// Dispatcher runs tool calls against a session. It never returns an error:
// every outcome, including panics, becomes a Result.
type Dispatcher struct {
	content  services.ContentStore
	log      *logger.Logger
	timeout  time.Duration
	now      func() time.Time
	catalog  *Catalog
	handlers map[string]handler
}

type Option func(*Dispatcher)

// WithTimeout bounds each tool call's Content Store work.
func WithTimeout(d time.Duration) Option {
	return func(x *Dispatcher) {
		if d > 0 {
			x.timeout = d
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(x *Dispatcher) { x.now = now }
}

func NewDispatcher(log *logger.Logger, content services.ContentStore, opts ...Option) (*Dispatcher, error) {
	if log == nil {
		log = logger.Nop()
	}
	cat, err := LoadCatalog()
	if err != nil {
		return nil, err
	}
	d := &Dispatcher{
		content: content,
		log:     log.With("service", "ToolDispatcher"),
		timeout: defaultToolTimeout,
		now:     func() time.Time { return time.Now().UTC() },
		catalog: cat,
	}
	for _, o := range opts {
		o(d)
	}
	d.handlers = map[string]handler{
		"list_enrolled_courses":  d.listEnrolledCourses,
		"get_courses_by_name":    d.getCoursesByName,
		"list_available_courses": d.listAvailableCourses,
		"enroll_in_course":       d.enrollInCourse,
		"get_course_details":     d.getCourseDetails,

		"list_course_lessons":  d.listCourseLessons,
		"get_lesson_content":   d.getLessonContent,
		"mark_lesson_complete": d.markLessonComplete,

		"list_all_quizzes":      d.listAllQuizzes,
		"start_quiz":            d.startQuiz,
		"read_current_question": d.readCurrentQuestion,
		"answer_question":       d.answerQuestion,
		"confirm_answer":        d.confirmAnswer,
		"navigate_question":     d.navigateQuestion,
		"submit_quiz":           d.submitQuiz,
		"get_quiz_status":       d.getQuizStatus,

		"list_all_assignments":         d.listAllAssignments,
		"get_assignment_details":       d.getAssignmentDetails,
		"start_assignment_submission":  d.startAssignmentSubmission,
		"dictate_assignment_answer":    d.dictateAssignmentAnswer,
		"review_assignment_submission": d.reviewAssignmentSubmission,
		"submit_assignment":            d.submitAssignment,

		"get_student_progress": d.getStudentProgress,
		"navigate_to_page":     d.navigateToPage,
		"clear_display":        d.clearDisplay,
	}
	if err := d.checkParity(); err != nil {
		return nil, err
	}
	return d, nil
}

// Catalog is the tool list advertised upstream.
func (d *Dispatcher) Catalog() *Catalog { return d.catalog }

// checkParity fails when the catalog, the handler table and the transition
// table disagree on the tool set.
func (d *Dispatcher) checkParity() error {
	var missing []string
	for _, name := range d.catalog.Names() {
		if _, ok := d.handlers[name]; !ok {
			missing = append(missing, name+" (no handler)")
		}
		if _, ok := session.Transitions[name]; !ok {
			missing = append(missing, name+" (no transition)")
		}
	}
	for name := range d.handlers {
		if _, ok := d.catalog.Lookup(name); !ok {
			missing = append(missing, name+" (not in catalog)")
		}
	}
	for name := range session.Transitions {
		if _, ok := d.catalog.Lookup(name); !ok {
			missing = append(missing, name+" (transition not in catalog)")
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("tool tables disagree: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Execute runs one tool call to completion under the session lock.
func (d *Dispatcher) Execute(ctx context.Context, name string, args Args, id services.Identity, sess *session.Session) Result {
	start := time.Now()
	if args == nil {
		args = Args{}
	}

	sess.Lock()
	mode := sess.Mode
	ctx, span := observability.StartToolSpan(ctx, name, mode.String())
	res := d.run(ctx, name, &Call{Args: args, Identity: id, Session: sess})
	sess.Unlock()
	span.End(res.Success, string(res.Code))

	elapsed := time.Since(start)
	if res.Code == apierr.CodeInternal {
		d.log.Error("Tool call failed", "tool", name, "user_id", id.ID, "session_id", sess.ID, "mode", mode, "duration_ms", elapsed.Milliseconds())
	} else {
		d.log.Info("Tool call", "tool", name, "user_id", id.ID, "session_id", sess.ID, "mode", mode, "success", res.Success, "code", res.Code, "duration_ms", elapsed.Milliseconds())
	}
	d.audit(ctx, name, args, id, sess.ID, res, elapsed)
	return res
}

func (d *Dispatcher) run(ctx context.Context, name string, c *Call) (res Result) {
	h, ok := d.handlers[name]
	if !ok {
		return Result{Success: false, Code: apierr.CodeNotFound, Message: unknownFunction}
	}
	tr := session.Transitions[name]
	if !tr.Allows(c.Session.Mode) {
		return Result{Success: false, Code: apierr.CodePreconditionFailed, Message: tr.Hint}
	}

	defer func() {
		if r := recover(); r != nil {
			d.log.Error("Tool handler panicked", "tool", name, "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			res = Result{Success: false, Code: apierr.CodeInternal, Message: genericFailure}
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	var err error
	res, err = h(ctx, c)
	if err != nil {
		if apierr.CodeOf(err) == apierr.CodeInternal {
			d.log.Warn("Tool handler error", "tool", name, "error", err)
		}
		return failure(err)
	}
	if res.Success && tr.Result != "" {
		c.Session.SetMode(tr.Result)
	}
	return res
}

// audit is best effort; a failed write never changes the tool's result.
func (d *Dispatcher) audit(ctx context.Context, name string, args Args, id services.Identity, sessionID string, res Result, elapsed time.Duration) {
	if d.content == nil {
		return
	}
	input, _ := json.Marshal(args)
	row := &types.VoiceLog{
		UserID:           id.ID,
		SessionID:        sessionID,
		ActionType:       types.VoiceActionCommand,
		Command:          name,
		InputText:        string(input),
		OutputText:       res.Message,
		CommandSuccess:   res.Success,
		ErrorCode:        string(res.Code),
		ProcessingTimeMS: elapsed.Milliseconds(),
	}
	if name == "navigate_to_page" {
		row.ActionType = types.VoiceActionNavigation
	}
	if !res.Success {
		row.ErrorMessage = res.Message
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()
	if err := d.content.RecordVoiceLog(ctx, row); err != nil {
		d.log.Warn("Voice log write failed", "tool", name, "error", err)
	}
}
