package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-voice/internal/domain"
	"github.com/yungbote/neurobridge-voice/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-voice/internal/platform/logger"
)

type LessonProgressRepo interface {
	MarkComplete(dbc dbctx.Context, studentID, lessonID uuid.UUID, at time.Time) (*types.LessonProgress, error)
	GetByStudentAndLessonIDs(dbc dbctx.Context, studentID uuid.UUID, lessonIDs []uuid.UUID) ([]*types.LessonProgress, error)
}

type lessonProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLessonProgressRepo(db *gorm.DB, baseLog *logger.Logger) LessonProgressRepo {
	repoLog := baseLog.With("repo", "LessonProgressRepo")
	return &lessonProgressRepo{db: db, log: repoLog}
}

// MarkComplete upserts on (student_id, lesson_id). A repeat call only
// refreshes the timestamps.
func (r *lessonProgressRepo) MarkComplete(dbc dbctx.Context, studentID, lessonID uuid.UUID, at time.Time) (*types.LessonProgress, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	row := &types.LessonProgress{}
	if err := transaction.WithContext(dbc.Ctx).
		Where(&types.LessonProgress{StudentID: studentID, LessonID: lessonID}).
		Assign(types.LessonProgress{IsCompleted: true, CompletedAt: &at, LastAccessed: &at}).
		FirstOrCreate(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *lessonProgressRepo) GetByStudentAndLessonIDs(dbc dbctx.Context, studentID uuid.UUID, lessonIDs []uuid.UUID) ([]*types.LessonProgress, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.LessonProgress
	if studentID == uuid.Nil || len(lessonIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("student_id = ? AND lesson_id IN ?", studentID, lessonIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
