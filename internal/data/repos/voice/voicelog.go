package voice

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-voice/internal/domain"
	"github.com/yungbote/neurobridge-voice/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-voice/internal/platform/logger"
)

type VoiceLogRepo interface {
	Create(dbc dbctx.Context, rows []*types.VoiceLog) ([]*types.VoiceLog, error)
	ListBySession(dbc dbctx.Context, userID uuid.UUID, sessionID string) ([]*types.VoiceLog, error)
}

type voiceLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVoiceLogRepo(db *gorm.DB, baseLog *logger.Logger) VoiceLogRepo {
	repoLog := baseLog.With("repo", "VoiceLogRepo")
	return &voiceLogRepo{db: db, log: repoLog}
}

func (r *voiceLogRepo) Create(dbc dbctx.Context, rows []*types.VoiceLog) ([]*types.VoiceLog, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.VoiceLog{}, nil
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *voiceLogRepo) ListBySession(dbc dbctx.Context, userID uuid.UUID, sessionID string) ([]*types.VoiceLog, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.VoiceLog
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ? AND session_id = ?", userID, sessionID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
