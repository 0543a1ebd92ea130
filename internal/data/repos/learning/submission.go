package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-voice/internal/domain"
	"github.com/yungbote/neurobridge-voice/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-voice/internal/platform/logger"
)

type SubmissionRepo interface {
	Create(dbc dbctx.Context, rows []*types.Submission) ([]*types.Submission, error)
	ListByStudentAndAssignmentIDs(dbc dbctx.Context, studentID uuid.UUID, assignmentIDs []uuid.UUID) ([]*types.Submission, error)
}

type submissionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubmissionRepo(db *gorm.DB, baseLog *logger.Logger) SubmissionRepo {
	repoLog := baseLog.With("repo", "SubmissionRepo")
	return &submissionRepo{db: db, log: repoLog}
}

func (r *submissionRepo) Create(dbc dbctx.Context, rows []*types.Submission) ([]*types.Submission, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.Submission{}, nil
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByStudentAndAssignmentIDs returns submissions newest first.
func (r *submissionRepo) ListByStudentAndAssignmentIDs(dbc dbctx.Context, studentID uuid.UUID, assignmentIDs []uuid.UUID) ([]*types.Submission, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Submission
	if studentID == uuid.Nil || len(assignmentIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("student_id = ? AND assignment_id IN ?", studentID, assignmentIDs).
		Order("submitted_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
