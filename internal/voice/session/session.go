package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Ref is one numbered entry from the most recent listing of its kind.
type Ref struct {
	Number   int       `json:"number"`
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	CourseID uuid.UUID `json:"course_id,omitempty"`
}

// Question is a quiz question frozen at quiz start. CorrectAnswer is nil when
// the stored answer maps to none of the options.
type Question struct {
	ID            uuid.UUID `json:"id"`
	Text          string    `json:"text"`
	Options       []string  `json:"options"`
	CorrectAnswer *int      `json:"correct_answer,omitempty"`
}

// Session is the per-identity conversational and task state. Callers hold
// Lock around any read-modify-write; the dispatcher does so per tool call.
type Session struct {
	mu      sync.Mutex
	evicted chan struct{}
	evict   sync.Once

	ID        string    `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	Mode Mode `json:"mode"`

	CurrentCourseID     uuid.UUID `json:"current_course_id,omitempty"`
	CurrentLessonID     uuid.UUID `json:"current_lesson_id,omitempty"`
	CurrentQuizID       uuid.UUID `json:"current_quiz_id,omitempty"`
	CurrentAssignmentID uuid.UUID `json:"current_assignment_id,omitempty"`

	CoursesCache          []Ref `json:"courses_cache,omitempty"`
	AvailableCoursesCache []Ref `json:"available_courses_cache,omitempty"`
	LessonsCache          []Ref `json:"lessons_cache,omitempty"`
	QuizzesCache          []Ref `json:"quizzes_cache,omitempty"`
	AssignmentsCache      []Ref `json:"assignments_cache,omitempty"`

	QuizQuestions        []Question  `json:"quiz_questions,omitempty"`
	CurrentQuestionIndex int         `json:"current_question_index"`
	QuizAnswers          map[int]int `json:"quiz_answers,omitempty"`
	PendingAnswer        *int        `json:"pending_answer,omitempty"`
	QuizStartedAt        time.Time   `json:"quiz_started_at,omitempty"`

	AssignmentContent string `json:"assignment_content"`
}

// New returns an idle session with empty caches.
func New(userID uuid.UUID, connID string) *Session {
	return &Session{
		evicted:     make(chan struct{}),
		ID:          connID,
		UserID:      userID,
		CreatedAt:   time.Now().UTC(),
		Mode:        ModeIdle,
		QuizAnswers: map[int]int{},
	}
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// Evicted is closed once another connection for the same identity has taken
// over this session's slot.
func (s *Session) Evicted() <-chan struct{} { return s.evicted }

func (s *Session) markEvicted() {
	s.evict.Do(func() { close(s.evicted) })
}

// ResetQuiz clears every quiz field. Mode is left to the caller.
func (s *Session) ResetQuiz() {
	s.CurrentQuizID = uuid.Nil
	s.QuizQuestions = nil
	s.CurrentQuestionIndex = 0
	s.QuizAnswers = map[int]int{}
	s.PendingAnswer = nil
	s.QuizStartedAt = time.Time{}
}

// ResetAssignment clears the draft and the assignment pointer.
func (s *Session) ResetAssignment() {
	s.CurrentAssignmentID = uuid.Nil
	s.AssignmentContent = ""
}

// SetMode changes mode and drops a pending answer when leaving a quiz.
func (s *Session) SetMode(m Mode) {
	if m != ModeQuiz {
		s.PendingAnswer = nil
	}
	s.Mode = m
}

// Unanswered returns the 1-based numbers of questions without a committed answer.
func (s *Session) Unanswered() []int {
	out := []int{}
	for i := range s.QuizQuestions {
		if _, ok := s.QuizAnswers[i]; !ok {
			out = append(out, i+1)
		}
	}
	return out
}

// CurrentQuestion returns the question under the pointer, or nil.
func (s *Session) CurrentQuestion() *Question {
	if s.CurrentQuestionIndex < 0 || s.CurrentQuestionIndex >= len(s.QuizQuestions) {
		return nil
	}
	return &s.QuizQuestions[s.CurrentQuestionIndex]
}

// Snapshot is a deep copy safe to serialize or inspect without the lock.
// The caller must not hold the lock.
func (s *Session) Snapshot() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

func (s *Session) copyLocked() *Session {
	c := &Session{
		evicted:               s.evicted,
		ID:                    s.ID,
		UserID:                s.UserID,
		CreatedAt:             s.CreatedAt,
		Mode:                  s.Mode,
		CurrentCourseID:       s.CurrentCourseID,
		CurrentLessonID:       s.CurrentLessonID,
		CurrentQuizID:         s.CurrentQuizID,
		CurrentAssignmentID:   s.CurrentAssignmentID,
		CoursesCache:          append([]Ref(nil), s.CoursesCache...),
		AvailableCoursesCache: append([]Ref(nil), s.AvailableCoursesCache...),
		LessonsCache:          append([]Ref(nil), s.LessonsCache...),
		QuizzesCache:          append([]Ref(nil), s.QuizzesCache...),
		AssignmentsCache:      append([]Ref(nil), s.AssignmentsCache...),
		CurrentQuestionIndex:  s.CurrentQuestionIndex,
		QuizAnswers:           make(map[int]int, len(s.QuizAnswers)),
		QuizStartedAt:         s.QuizStartedAt,
		AssignmentContent:     s.AssignmentContent,
	}
	if len(s.QuizQuestions) > 0 {
		c.QuizQuestions = make([]Question, 0, len(s.QuizQuestions))
	}
	for _, q := range s.QuizQuestions {
		qc := q
		qc.Options = append([]string(nil), q.Options...)
		if q.CorrectAnswer != nil {
			v := *q.CorrectAnswer
			qc.CorrectAnswer = &v
		}
		c.QuizQuestions = append(c.QuizQuestions, qc)
	}
	for k, v := range s.QuizAnswers {
		c.QuizAnswers[k] = v
	}
	if s.PendingAnswer != nil {
		v := *s.PendingAnswer
		c.PendingAnswer = &v
	}
	return c
}
