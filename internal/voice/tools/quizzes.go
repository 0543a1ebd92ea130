package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/yungbote/neurobridge-voice/internal/domain"
	"github.com/yungbote/neurobridge-voice/internal/voice/session"
)

// enrolledCourses returns the student's course ids in enrollment order with
// their titles, optionally narrowed to one course.
func (d *Dispatcher) enrolledCourses(ctx context.Context, studentID, only uuid.UUID) ([]uuid.UUID, map[uuid.UUID]string, error) {
	enrollments, err := d.content.ListEnrollments(ctx, studentID)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]uuid.UUID, 0, len(enrollments))
	titles := make(map[uuid.UUID]string, len(enrollments))
	for _, e := range enrollments {
		if only != uuid.Nil && e.CourseID != only {
			continue
		}
		ids = append(ids, e.CourseID)
		titles[e.CourseID] = e.Course.Title
	}
	return ids, titles, nil
}

func (d *Dispatcher) listAllQuizzes(ctx context.Context, c *Call) (Result, error) {
	courseIDs, titles, err := d.enrolledCourses(ctx, c.Identity.ID, c.Args.UUID("course_id"))
	if err != nil {
		return Result{}, err
	}
	var quizzes []*types.Quiz
	if len(courseIDs) > 0 {
		if quizzes, err = d.content.ListQuizzes(ctx, courseIDs); err != nil {
			return Result{}, err
		}
	}
	quizIDs := make([]uuid.UUID, 0, len(quizzes))
	byCourse := map[uuid.UUID][]*types.Quiz{}
	for _, q := range quizzes {
		quizIDs = append(quizIDs, q.ID)
		byCourse[q.CourseID] = append(byCourse[q.CourseID], q)
	}
	counts, err := d.content.CountQuizQuestions(ctx, quizIDs)
	if err != nil {
		return Result{}, err
	}
	attempts, err := d.content.LatestQuizAttempts(ctx, c.Identity.ID, quizIDs)
	if err != nil {
		return Result{}, err
	}

	items := []map[string]any{}
	refs := []session.Ref{}
	spoken := []string{}
	for _, courseID := range courseIDs {
		for _, q := range byCourse[courseID] {
			n := len(items) + 1
			item := map[string]any{
				"number":         n,
				"id":             q.ID.String(),
				"title":          q.Title,
				"course_id":      courseID.String(),
				"course_title":   titles[courseID],
				"question_count": counts[q.ID],
				"attempted":      false,
				"score":          nil,
				"passed":         nil,
			}
			line := fmt.Sprintf("Quiz %d: %s from %s - Not attempted", n, q.Title, titles[courseID])
			if a := attempts[q.ID]; a != nil {
				item["attempted"], item["score"], item["passed"] = true, a.Percentage, a.Passed
				line = fmt.Sprintf("Quiz %d: %s from %s - Score: %d%%", n, q.Title, titles[courseID], a.Percentage)
			}
			items = append(items, item)
			refs = append(refs, session.Ref{Number: n, ID: q.ID, Title: q.Title, CourseID: courseID})
			spoken = append(spoken, line)
		}
	}
	c.Session.QuizzesCache = refs

	res := ok(fmt.Sprintf("You have %d quizzes. %s", len(items), spokenList(spoken)))
	if len(items) == 0 {
		res = ok("No quizzes available. Enroll in a course first.")
		if len(courseIDs) > 0 {
			res = ok("Your courses don't have any quizzes yet.")
		}
	}
	return res.with("quizzes", items).
		emit("show_quizzes", map[string]any{"quizzes": items}), nil
}

func (d *Dispatcher) quizFor(ctx context.Context, c *Call) (uuid.UUID, error) {
	if ref, ok := resolveRef(c.Args, c.Session.QuizzesCache, quizKeys); ok {
		return ref.ID, nil
	}
	n, ok := c.Args.Int("quiz_number")
	if !ok || n < 1 || c.Session.CurrentCourseID == uuid.Nil {
		return uuid.Nil, nil
	}
	quizzes, err := d.content.ListQuizzes(ctx, []uuid.UUID{c.Session.CurrentCourseID})
	if err != nil {
		return uuid.Nil, err
	}
	if n > len(quizzes) {
		return uuid.Nil, nil
	}
	return quizzes[n-1].ID, nil
}

func (d *Dispatcher) startQuiz(ctx context.Context, c *Call) (Result, error) {
	quizID, err := d.quizFor(ctx, c)
	if err != nil {
		return Result{}, err
	}
	if quizID == uuid.Nil {
		return Result{}, notFound("Quiz not found. Say 'show my quizzes' to see available quizzes.")
	}
	quiz, err := d.content.GetQuiz(ctx, quizID)
	if err != nil {
		return Result{}, orNotFound(err, "Quiz not found. Say 'show my quizzes' to see available quizzes.")
	}
	if len(quiz.Questions) == 0 {
		return Result{}, precondition("This quiz has no questions yet. Pick another quiz.")
	}
	if quiz.MaxAttempts > 0 {
		used, err := d.content.CountQuizAttempts(ctx, c.Identity.ID, quiz.ID)
		if err != nil {
			return Result{}, err
		}
		if used >= quiz.MaxAttempts {
			return Result{}, precondition(fmt.Sprintf("You have used all %d attempts for this quiz.", quiz.MaxAttempts))
		}
	}

	questions := make([]session.Question, 0, len(quiz.Questions))
	shown := make([]map[string]any, 0, len(quiz.Questions))
	for i, q := range quiz.Questions {
		opts := ParseOptions(q.Options)
		if len(opts) == 0 {
			d.log.Warn("Quiz question has no options", "quiz_id", quiz.ID, "question_id", q.ID)
			return Result{}, precondition(fmt.Sprintf("Question %d of this quiz has no answer choices, so it can't be taken by voice yet. Pick another quiz.", i+1))
		}
		questions = append(questions, session.Question{
			ID:            q.ID,
			Text:          q.QuestionText,
			Options:       opts,
			CorrectAnswer: CorrectIndex(q.CorrectAnswer, opts),
		})
		shown = append(shown, map[string]any{
			"id":            q.ID.String(),
			"question_text": q.QuestionText,
			"question_type": q.QuestionType,
			"options":       opts,
		})
	}

	s := c.Session
	s.ResetQuiz()
	s.CurrentQuizID = quiz.ID
	s.CurrentCourseID = quiz.CourseID
	s.QuizQuestions = questions
	s.QuizStartedAt = d.now()

	first := questions[0]
	return ok(fmt.Sprintf("Starting quiz: %s. There are %d questions. Question 1: %s. %s. Say the letter of your answer, like 'A' or 'Option A'.",
		quiz.Title, len(questions), first.Text, optionsSpoken(first.Options))).
		with("quiz", map[string]any{"id": quiz.ID.String(), "title": quiz.Title, "question_count": len(questions)}).
		emit("start_quiz", map[string]any{
			"quiz":         map[string]any{"id": quiz.ID.String(), "title": quiz.Title},
			"questions":    shown,
			"currentIndex": 0,
		}), nil
}

// questionSpoken reads question idx with its options and committed answer.
func questionSpoken(s *session.Session, idx int) string {
	q := s.QuizQuestions[idx]
	msg := fmt.Sprintf("Question %d of %d: %s. %s.", idx+1, len(s.QuizQuestions), q.Text, optionsSpoken(q.Options))
	if a, ok := s.QuizAnswers[idx]; ok {
		msg += fmt.Sprintf(" Your current answer: Option %s.", Letter(a))
	}
	return msg
}

func (d *Dispatcher) readCurrentQuestion(ctx context.Context, c *Call) (Result, error) {
	s := c.Session
	if s.CurrentQuestion() == nil {
		return Result{}, precondition("No quiz in progress. Say 'start quiz' to begin a quiz.")
	}
	msg := questionSpoken(s, s.CurrentQuestionIndex)
	if _, answered := s.QuizAnswers[s.CurrentQuestionIndex]; !answered {
		msg += " Not answered yet."
	}
	return ok(msg+" Say the letter of your answer.").
		with("question_number", s.CurrentQuestionIndex+1), nil
}

func letterRange(n int) string {
	letters := make([]string, 0, n)
	for i := 0; i < n; i++ {
		letters = append(letters, Letter(i))
	}
	switch len(letters) {
	case 0:
		return ""
	case 1:
		return letters[0]
	default:
		return strings.Join(letters[:len(letters)-1], ", ") + ", or " + letters[len(letters)-1]
	}
}

func (d *Dispatcher) answerQuestion(ctx context.Context, c *Call) (Result, error) {
	s := c.Session
	q := s.CurrentQuestion()
	if q == nil {
		return Result{}, precondition("No quiz in progress. Say 'start quiz' to begin a quiz.")
	}
	idx, parsed := ParseAnswer(c.Args.String("answer"))
	if !parsed {
		return Result{}, invalid(fmt.Sprintf("I didn't understand that answer. Please say %s.", letterRange(len(q.Options))))
	}
	if idx >= len(q.Options) {
		return Result{}, invalid(fmt.Sprintf("This question only has %d options. Please say %s.", len(q.Options), letterRange(len(q.Options))))
	}

	choice := idx
	s.PendingAnswer = &choice
	return ok(fmt.Sprintf("You selected Option %s: %s. Say 'yes' or 'confirm' to lock in this answer, or 'no' to change it.",
		Letter(idx), q.Options[idx])).
		with("pending_confirmation", true).
		emit("pending_answer", map[string]any{
			"questionIndex": s.CurrentQuestionIndex,
			"answer":        idx,
			"answerText":    q.Options[idx],
		}), nil
}

func (d *Dispatcher) confirmAnswer(ctx context.Context, c *Call) (Result, error) {
	s := c.Session
	if s.PendingAnswer == nil {
		return Result{}, precondition("No answer pending confirmation. Please select an answer first.")
	}
	idx := s.CurrentQuestionIndex

	if !c.Args.Bool("confirmed", false) {
		s.PendingAnswer = nil
		q := s.QuizQuestions[idx]
		return ok(fmt.Sprintf("Answer cancelled. Please select a different option: %s.", letterRange(len(q.Options)))).
			emit("answer_cancelled", map[string]any{"questionIndex": idx}), nil
	}

	answer := *s.PendingAnswer
	s.QuizAnswers[idx] = answer
	s.PendingAnswer = nil
	res := Result{Success: true}.emit("answer_confirmed", map[string]any{"questionIndex": idx, "answer": answer})

	if idx < len(s.QuizQuestions)-1 {
		s.CurrentQuestionIndex = idx + 1
		next := s.QuizQuestions[idx+1]
		res.Message = fmt.Sprintf("Answer confirmed. Question %d: %s. %s", idx+2, next.Text, optionsSpoken(next.Options))
		return res.emit("show_question", map[string]any{"questionIndex": idx + 1}), nil
	}
	res.Message = fmt.Sprintf("Answer confirmed. You've reached the last question. You've answered %d of %d questions. Say 'submit quiz' when you're ready.",
		len(s.QuizAnswers), len(s.QuizQuestions))
	return res, nil
}

func (d *Dispatcher) navigateQuestion(ctx context.Context, c *Call) (Result, error) {
	s := c.Session
	total := len(s.QuizQuestions)
	target := s.CurrentQuestionIndex
	if n, ok := c.Args.Int("question_number"); ok {
		target = n - 1
	} else {
		switch strings.ToLower(c.Args.String("direction")) {
		case "next":
			target++
		case "previous", "back", "prev":
			target--
		case "first":
			target = 0
		case "last":
			target = total - 1
		default:
			return Result{}, invalid("Say next, previous, first, last, or a question number.")
		}
	}
	if target < 0 || target >= total {
		return Result{}, invalid(fmt.Sprintf("There is no question %d. This quiz has %d questions.", target+1, total))
	}

	s.CurrentQuestionIndex = target
	s.PendingAnswer = nil
	return ok(questionSpoken(s, target)).
		with("question_number", target+1).
		emit("show_question", map[string]any{"questionIndex": target}), nil
}

// grade counts answers equal to the frozen correct index. Unanswered and
// unresolvable questions count as incorrect.
func grade(s *session.Session) (correct, score int) {
	for i, q := range s.QuizQuestions {
		a, answered := s.QuizAnswers[i]
		if answered && q.CorrectAnswer != nil && a == *q.CorrectAnswer {
			correct++
		}
	}
	total := len(s.QuizQuestions)
	if total == 0 {
		return 0, 0
	}
	return correct, int(math.Round(100 * float64(correct) / float64(total)))
}

type attemptAnswer struct {
	QuestionID uuid.UUID `json:"question_id"`
	Answer     *string   `json:"answer"`
	Correct    bool      `json:"correct"`
}

func (d *Dispatcher) submitQuiz(ctx context.Context, c *Call) (Result, error) {
	s := c.Session
	total, answered := len(s.QuizQuestions), len(s.QuizAnswers)

	if !c.Args.Bool("confirm", false) {
		msg := fmt.Sprintf("You've answered %d of %d questions. ", answered, total)
		if open := total - answered; open > 0 {
			msg += fmt.Sprintf("You have %d unanswered questions. ", open)
		}
		return Result{}, precondition(msg + "Say 'yes, submit quiz' to confirm submission.")
	}

	quiz, err := d.content.GetQuiz(ctx, s.CurrentQuizID)
	if err != nil {
		return Result{}, orNotFound(err, "This quiz is no longer available. Say 'clear display' to leave it.")
	}
	correct, score := grade(s)
	passed := score >= quiz.Threshold()

	answers := make([]attemptAnswer, 0, total)
	for i, q := range s.QuizQuestions {
		row := attemptAnswer{QuestionID: q.ID}
		if a, ok := s.QuizAnswers[i]; ok {
			letter := Letter(a)
			row.Answer = &letter
			row.Correct = q.CorrectAnswer != nil && a == *q.CorrectAnswer
		}
		answers = append(answers, row)
	}
	raw, err := json.Marshal(answers)
	if err != nil {
		return Result{}, err
	}
	prior, err := d.content.CountQuizAttempts(ctx, c.Identity.ID, quiz.ID)
	if err != nil {
		return Result{}, err
	}
	now := d.now()
	attempt := &types.QuizAttempt{
		QuizID:           quiz.ID,
		StudentID:        c.Identity.ID,
		AttemptNumber:    prior + 1,
		Score:            correct,
		MaxScore:         total,
		Percentage:       score,
		Passed:           passed,
		Answers:          datatypes.JSON(raw),
		TimeStarted:      s.QuizStartedAt,
		TimeSubmitted:    &now,
		TimeTakenSeconds: int(now.Sub(s.QuizStartedAt).Seconds()),
		IsCompleted:      true,
		IsGraded:         true,
	}
	if s.QuizStartedAt.IsZero() {
		attempt.TimeStarted, attempt.TimeTakenSeconds = now, 0
	}
	if err := d.content.CreateQuizAttempt(ctx, attempt); err != nil {
		return Result{}, err
	}

	s.ResetQuiz()

	verdict := "You didn't pass this time, but you can try again."
	if passed {
		verdict = "Congratulations! You passed!"
	}
	return ok(fmt.Sprintf("Quiz submitted! You got %d out of %d correct, which is %d%%. %s", correct, total, score, verdict)).
		with("score", score).
		with("passed", passed).
		with("correct", correct).
		with("total", total).
		emit("quiz_completed", map[string]any{"score": score, "total": total, "correct": correct, "passed": passed}), nil
}

func (d *Dispatcher) getQuizStatus(ctx context.Context, c *Call) (Result, error) {
	s := c.Session
	total, answered := len(s.QuizQuestions), len(s.QuizAnswers)
	open := s.Unanswered()
	current := s.CurrentQuestionIndex + 1

	msg := fmt.Sprintf("You're on question %d. Answered: %d of %d. ", current, answered, total)
	if len(open) == 0 {
		msg += "All questions answered!"
	} else {
		shown := open
		if len(shown) > spokenLimit {
			shown = shown[:spokenLimit]
		}
		nums := make([]string, 0, len(shown))
		for _, n := range shown {
			nums = append(nums, fmt.Sprint(n))
		}
		msg += "Unanswered: " + strings.Join(nums, ", ") + "."
	}
	return ok(msg).
		with("answered", answered).
		with("total", total).
		with("unanswered", open).
		with("current_question", current), nil
}
