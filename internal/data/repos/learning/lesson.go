package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-voice/internal/domain"
	"github.com/yungbote/neurobridge-voice/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-voice/internal/platform/logger"
)

type LessonRepo interface {
	Create(dbc dbctx.Context, lessons []*types.Lesson) ([]*types.Lesson, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Lesson, error)
	ListPublishedByCourse(dbc dbctx.Context, courseID uuid.UUID) ([]*types.Lesson, error)
}

type lessonRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLessonRepo(db *gorm.DB, baseLog *logger.Logger) LessonRepo {
	repoLog := baseLog.With("repo", "LessonRepo")
	return &lessonRepo{db: db, log: repoLog}
}

func (r *lessonRepo) Create(dbc dbctx.Context, lessons []*types.Lesson) ([]*types.Lesson, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(lessons) == 0 {
		return []*types.Lesson{}, nil
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&lessons).Error; err != nil {
		return nil, err
	}
	return lessons, nil
}

func (r *lessonRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Lesson, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Lesson
	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *lessonRepo) ListPublishedByCourse(dbc dbctx.Context, courseID uuid.UUID) ([]*types.Lesson, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Lesson
	if courseID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("course_id = ? AND is_published = ?", courseID, true).
		Order("order_index ASC, id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
