package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-voice/internal/domain"
	"github.com/yungbote/neurobridge-voice/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-voice/internal/platform/logger"
)

type EnrollmentRepo interface {
	Create(dbc dbctx.Context, rows []*types.Enrollment) ([]*types.Enrollment, error)
	ListByStudent(dbc dbctx.Context, studentID uuid.UUID) ([]*types.Enrollment, error)
	GetByStudentAndCourse(dbc dbctx.Context, studentID, courseID uuid.UUID) (*types.Enrollment, error)
	Touch(dbc dbctx.Context, studentID, courseID uuid.UUID, at time.Time) error
}

type enrollmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEnrollmentRepo(db *gorm.DB, baseLog *logger.Logger) EnrollmentRepo {
	repoLog := baseLog.With("repo", "EnrollmentRepo")
	return &enrollmentRepo{db: db, log: repoLog}
}

func (r *enrollmentRepo) Create(dbc dbctx.Context, rows []*types.Enrollment) ([]*types.Enrollment, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.Enrollment{}, nil
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByStudent preloads the course and keeps enrollment order stable.
func (r *enrollmentRepo) ListByStudent(dbc dbctx.Context, studentID uuid.UUID) ([]*types.Enrollment, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Enrollment
	if studentID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Preload("Course").
		Where("student_id = ?", studentID).
		Order("enrolled_at ASC, id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetByStudentAndCourse returns nil, nil when the student is not enrolled.
func (r *enrollmentRepo) GetByStudentAndCourse(dbc dbctx.Context, studentID, courseID uuid.UUID) (*types.Enrollment, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Enrollment
	if err := transaction.WithContext(dbc.Ctx).
		Preload("Course").
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *enrollmentRepo) Touch(dbc dbctx.Context, studentID, courseID uuid.UUID, at time.Time) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(dbc.Ctx).
		Model(&types.Enrollment{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Update("last_accessed", at).Error
}
