package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-voice/internal/domain"
	"github.com/yungbote/neurobridge-voice/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-voice/internal/platform/logger"
)

type QuizRepo interface {
	Create(dbc dbctx.Context, quizzes []*types.Quiz) ([]*types.Quiz, error)
	ListPublishedByCourseIDs(dbc dbctx.Context, courseIDs []uuid.UUID) ([]*types.Quiz, error)
	GetWithQuestions(dbc dbctx.Context, id uuid.UUID) (*types.Quiz, error)
	CountQuestions(dbc dbctx.Context, quizIDs []uuid.UUID) (map[uuid.UUID]int, error)
}

type quizRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizRepo(db *gorm.DB, baseLog *logger.Logger) QuizRepo {
	repoLog := baseLog.With("repo", "QuizRepo")
	return &quizRepo{db: db, log: repoLog}
}

// Create inserts quizzes together with any attached questions.
func (r *quizRepo) Create(dbc dbctx.Context, quizzes []*types.Quiz) ([]*types.Quiz, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(quizzes) == 0 {
		return []*types.Quiz{}, nil
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&quizzes).Error; err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (r *quizRepo) ListPublishedByCourseIDs(dbc dbctx.Context, courseIDs []uuid.UUID) ([]*types.Quiz, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Quiz
	if len(courseIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("course_id IN ? AND is_published = ?", courseIDs, true).
		Order("created_at ASC, id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetWithQuestions returns nil, nil when the quiz does not exist.
func (r *quizRepo) GetWithQuestions(dbc dbctx.Context, id uuid.UUID) (*types.Quiz, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Quiz
	if err := transaction.WithContext(dbc.Ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC, id ASC")
		}).
		Where("id = ?", id).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *quizRepo) CountQuestions(dbc dbctx.Context, quizIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	out := map[uuid.UUID]int{}
	if len(quizIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		QuizID uuid.UUID
		N      int
	}
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.QuizQuestion{}).
		Select("quiz_id, COUNT(*) AS n").
		Where("quiz_id IN ?", quizIDs).
		Group("quiz_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.QuizID] = row.N
	}
	return out, nil
}
