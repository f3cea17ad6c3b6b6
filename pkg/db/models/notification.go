package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mariaquintana/insurecrm-backend/pkg/enums"
)

// Notification stores in-app notification payloads addressed to one actor.
type Notification struct {
	ID            uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RecipientType enums.CreatorType      `gorm:"column:recipient_type;type:creator_type;not null"`
	RecipientID   uuid.UUID              `gorm:"column:recipient_id;type:uuid;not null"`
	Type          enums.NotificationType `gorm:"type:notification_type;not null"`
	Title         string                 `gorm:"type:text;not null"`
	Message       string                 `gorm:"type:text;not null"`
	PolicyID      *uuid.UUID             `gorm:"column:policy_id;type:uuid"`
	ReadAt        *time.Time             `gorm:"type:timestamptz"`
	CreatedAt     time.Time              `gorm:"type:timestamptz;default:now()"`
}

func (Notification) TableName() string { return "notifications" }
