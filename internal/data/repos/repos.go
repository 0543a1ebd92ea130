package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-voice/internal/data/repos/learning"
	"github.com/yungbote/neurobridge-voice/internal/data/repos/user"
	"github.com/yungbote/neurobridge-voice/internal/data/repos/voice"
	"github.com/yungbote/neurobridge-voice/internal/platform/logger"
)

type UserRepo = user.UserRepo

type CourseRepo = learning.CourseRepo
type EnrollmentRepo = learning.EnrollmentRepo
type LessonRepo = learning.LessonRepo
type LessonProgressRepo = learning.LessonProgressRepo
type QuizRepo = learning.QuizRepo
type QuizAttemptRepo = learning.QuizAttemptRepo
type AssignmentRepo = learning.AssignmentRepo
type SubmissionRepo = learning.SubmissionRepo

type VoiceLogRepo = voice.VoiceLogRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return learning.NewCourseRepo(db, baseLog)
}
func NewEnrollmentRepo(db *gorm.DB, baseLog *logger.Logger) EnrollmentRepo {
	return learning.NewEnrollmentRepo(db, baseLog)
}
func NewLessonRepo(db *gorm.DB, baseLog *logger.Logger) LessonRepo {
	return learning.NewLessonRepo(db, baseLog)
}
func NewLessonProgressRepo(db *gorm.DB, baseLog *logger.Logger) LessonProgressRepo {
	return learning.NewLessonProgressRepo(db, baseLog)
}
func NewQuizRepo(db *gorm.DB, baseLog *logger.Logger) QuizRepo {
	return learning.NewQuizRepo(db, baseLog)
}
func NewQuizAttemptRepo(db *gorm.DB, baseLog *logger.Logger) QuizAttemptRepo {
	return learning.NewQuizAttemptRepo(db, baseLog)
}
func NewAssignmentRepo(db *gorm.DB, baseLog *logger.Logger) AssignmentRepo {
	return learning.NewAssignmentRepo(db, baseLog)
}
func NewSubmissionRepo(db *gorm.DB, baseLog *logger.Logger) SubmissionRepo {
	return learning.NewSubmissionRepo(db, baseLog)
}

func NewVoiceLogRepo(db *gorm.DB, baseLog *logger.Logger) VoiceLogRepo {
	return voice.NewVoiceLogRepo(db, baseLog)
}

// Set bundles every repo the voice core reads or writes.
type Set struct {
	User           UserRepo
	Course         CourseRepo
	Enrollment     EnrollmentRepo
	Lesson         LessonRepo
	LessonProgress LessonProgressRepo
	Quiz           QuizRepo
	QuizAttempt    QuizAttemptRepo
	Assignment     AssignmentRepo
	Submission     SubmissionRepo
	VoiceLog       VoiceLogRepo
}

func NewSet(db *gorm.DB, baseLog *logger.Logger) Set {
	return Set{
		User:           NewUserRepo(db, baseLog),
		Course:         NewCourseRepo(db, baseLog),
		Enrollment:     NewEnrollmentRepo(db, baseLog),
		Lesson:         NewLessonRepo(db, baseLog),
		LessonProgress: NewLessonProgressRepo(db, baseLog),
		Quiz:           NewQuizRepo(db, baseLog),
		QuizAttempt:    NewQuizAttemptRepo(db, baseLog),
		Assignment:     NewAssignmentRepo(db, baseLog),
		Submission:     NewSubmissionRepo(db, baseLog),
		VoiceLog:       NewVoiceLogRepo(db, baseLog),
	}
}
