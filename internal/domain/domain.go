package domain

import (
	"github.com/yungbote/neurobridge-voice/internal/domain/learning"
	"github.com/yungbote/neurobridge-voice/internal/domain/user"
	"github.com/yungbote/neurobridge-voice/internal/domain/voice"
)

const (
	RoleStudent = user.RoleStudent
	RoleTeacher = user.RoleTeacher
	RoleAdmin   = user.RoleAdmin

	SubmissionSubmitted = learning.SubmissionSubmitted
	SubmissionGraded    = learning.SubmissionGraded
	SubmissionReturned  = learning.SubmissionReturned

	VoiceActionCommand    = voice.ActionCommand
	VoiceActionNavigation = voice.ActionNavigation

	DefaultPassingScore = learning.DefaultPassingScore
)

type (
	User     = user.User
	UserRole = user.Role

	Course         = learning.Course
	Enrollment     = learning.Enrollment
	Lesson         = learning.Lesson
	LessonProgress = learning.LessonProgress

	Quiz         = learning.Quiz
	QuizQuestion = learning.QuizQuestion
	QuizAttempt  = learning.QuizAttempt

	Assignment       = learning.Assignment
	Submission       = learning.Submission
	SubmissionStatus = learning.SubmissionStatus

	VoiceLog        = voice.VoiceLog
	VoiceActionType = voice.ActionType
)

// All lists every persisted model, in migration order.
func All() []any {
	return []any{
		&User{},
		&Course{},
		&Enrollment{},
		&Lesson{},
		&LessonProgress{},
		&Quiz{},
		&QuizQuestion{},
		&QuizAttempt{},
		&Assignment{},
		&Submission{},
		&VoiceLog{},
	}
}
