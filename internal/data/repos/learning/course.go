package learning

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-voice/internal/domain"
	"github.com/yungbote/neurobridge-voice/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-voice/internal/platform/logger"
)

type CourseRepo interface {
	Create(dbc dbctx.Context, courses []*types.Course) ([]*types.Course, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Course, error)
	ListPublished(dbc dbctx.Context) ([]*types.Course, error)
	SearchByTitle(dbc dbctx.Context, substr string) ([]*types.Course, error)
}

type courseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	repoLog := baseLog.With("repo", "CourseRepo")
	return &courseRepo{db: db, log: repoLog}
}

func (r *courseRepo) Create(dbc dbctx.Context, courses []*types.Course) ([]*types.Course, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(courses) == 0 {
		return []*types.Course{}, nil
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Course, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Course
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

// ListPublished returns active, published courses by title.
func (r *courseRepo) ListPublished(dbc dbctx.Context) ([]*types.Course, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Course
	if err := transaction.WithContext(dbc.Ctx).
		Where("is_published = ? AND is_active = ?", true, true).
		Order("title ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// SearchByTitle matches a case-insensitive substring against published course titles.
func (r *courseRepo) SearchByTitle(dbc dbctx.Context, substr string) ([]*types.Course, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Course
	substr = strings.ToLower(strings.TrimSpace(substr))
	if substr == "" {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("is_published = ? AND is_active = ?", true, true).
		Where("LOWER(title) LIKE ?", "%"+escapeLike(substr)+"%").
		Order("title ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
