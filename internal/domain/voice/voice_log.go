package voice

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActionType string

const (
	ActionCommand    ActionType = "command"
	ActionNavigation ActionType = "navigation"
)

// VoiceLog is the audit row written for every tool call.
type VoiceLog struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID  `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	SessionID        string     `gorm:"index;column:session_id" json:"session_id"`
	ActionType       ActionType `gorm:"not null;column:action_type" json:"action_type"`
	Command          string     `gorm:"not null;column:command" json:"command"`
	InputText        string     `gorm:"type:text;column:input_text" json:"input_text"`
	OutputText       string     `gorm:"type:text;column:output_text" json:"output_text"`
	CommandSuccess   bool       `gorm:"not null;default:false;column:command_success" json:"command_success"`
	ErrorCode        string     `gorm:"column:error_code" json:"error_code,omitempty"`
	ErrorMessage     string     `gorm:"type:text;column:error_message" json:"error_message,omitempty"`
	ProcessingTimeMS int64      `gorm:"column:processing_time_ms" json:"processing_time_ms"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (VoiceLog) TableName() string { return "voice_log" }

func (v *VoiceLog) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
