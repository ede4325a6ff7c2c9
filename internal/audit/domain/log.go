package domain

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AuditLog struct {
	ID         int64             `json:"id" gorm:"primaryKey"`
	ActorID    *int64            `json:"actor_id,omitempty" gorm:"index"`
	ActorEmail string            `json:"actor_email" gorm:"type:text;not null;default:''"`
	Action     string            `json:"action" gorm:"type:text;not null;index"`
	EntityType string            `json:"entity_type" gorm:"type:text;not null;index"`
	EntityID   string            `json:"entity_id" gorm:"type:text;not null;default:''"`
	Metadata   datatypes.JSONMap `json:"metadata,omitempty"`
	IPAddress  string            `json:"ip_address,omitempty" gorm:"type:text;not null;default:''"`
	UserAgent  string            `json:"user_agent,omitempty" gorm:"type:text;not null;default:''"`
	RequestID  string            `json:"request_id,omitempty" gorm:"type:text;not null;default:''"`
	CreatedAt  time.Time         `json:"created_at" gorm:"not null;index"`
}

func (AuditLog) TableName() string { return "audit_logs" }

type ListFilter struct {
	Action     string
	EntityType string
	EntityID   string
	ActorID    int64
	StartAt    *time.Time
	EndAt      *time.Time
	Limit      int
	Offset     int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *AuditLog) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]AuditLog, int64, error)
}
