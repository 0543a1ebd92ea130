package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-voice/internal/domain"
	"github.com/yungbote/neurobridge-voice/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-voice/internal/platform/logger"
)

type QuizAttemptRepo interface {
	Create(dbc dbctx.Context, attempts []*types.QuizAttempt) ([]*types.QuizAttempt, error)
	ListByStudentAndQuizIDs(dbc dbctx.Context, studentID uuid.UUID, quizIDs []uuid.UUID) ([]*types.QuizAttempt, error)
	LatestByStudentAndQuiz(dbc dbctx.Context, studentID, quizID uuid.UUID) (*types.QuizAttempt, error)
	CountByStudentAndQuiz(dbc dbctx.Context, studentID, quizID uuid.UUID) (int, error)
}

type quizAttemptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizAttemptRepo(db *gorm.DB, baseLog *logger.Logger) QuizAttemptRepo {
	repoLog := baseLog.With("repo", "QuizAttemptRepo")
	return &quizAttemptRepo{db: db, log: repoLog}
}

func (r *quizAttemptRepo) Create(dbc dbctx.Context, attempts []*types.QuizAttempt) ([]*types.QuizAttempt, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(attempts) == 0 {
		return []*types.QuizAttempt{}, nil
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

// ListByStudentAndQuizIDs returns completed attempts, newest first.
func (r *quizAttemptRepo) ListByStudentAndQuizIDs(dbc dbctx.Context, studentID uuid.UUID, quizIDs []uuid.UUID) ([]*types.QuizAttempt, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.QuizAttempt
	if studentID == uuid.Nil || len(quizIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("student_id = ? AND quiz_id IN ? AND is_completed = ?", studentID, quizIDs, true).
		Order("attempt_number DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// LatestByStudentAndQuiz returns nil, nil when no attempt exists.
func (r *quizAttemptRepo) LatestByStudentAndQuiz(dbc dbctx.Context, studentID, quizID uuid.UUID) (*types.QuizAttempt, error) {
	rows, err := r.ListByStudentAndQuizIDs(dbc, studentID, []uuid.UUID{quizID})
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (r *quizAttemptRepo) CountByStudentAndQuiz(dbc dbctx.Context, studentID, quizID uuid.UUID) (int, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var n int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.QuizAttempt{}).
		Where("student_id = ? AND quiz_id = ?", studentID, quizID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}
