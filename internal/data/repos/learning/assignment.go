package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-voice/internal/domain"
	"github.com/yungbote/neurobridge-voice/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-voice/internal/platform/logger"
)

type AssignmentRepo interface {
	Create(dbc dbctx.Context, rows []*types.Assignment) ([]*types.Assignment, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Assignment, error)
	ListPublishedByCourseIDs(dbc dbctx.Context, courseIDs []uuid.UUID) ([]*types.Assignment, error)
}

type assignmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssignmentRepo(db *gorm.DB, baseLog *logger.Logger) AssignmentRepo {
	repoLog := baseLog.With("repo", "AssignmentRepo")
	return &assignmentRepo{db: db, log: repoLog}
}

func (r *assignmentRepo) Create(dbc dbctx.Context, rows []*types.Assignment) ([]*types.Assignment, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.Assignment{}, nil
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *assignmentRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Assignment, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Assignment
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

// ListPublishedByCourseIDs orders by due date; undated assignments go last.
func (r *assignmentRepo) ListPublishedByCourseIDs(dbc dbctx.Context, courseIDs []uuid.UUID) ([]*types.Assignment, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Assignment
	if len(courseIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("course_id IN ? AND is_published = ?", courseIDs, true).
		Order("CASE WHEN due_date IS NULL THEN 1 ELSE 0 END, due_date ASC, created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
