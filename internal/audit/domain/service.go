package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/livescan/pkg/db/pagination"
)

// Entry is one recordable action. Actor fields come from the
// authenticated session; request metadata is read from the context.
type Entry struct {
	ActorID    int64
	ActorEmail string
	Action     string
	EntityType string
	EntityID   string
	Metadata   map[string]any
}

type ListRequest struct {
	pagination.Pagination
	Action     string     `form:"action"`
	EntityType string     `form:"entity_type"`
	EntityID   string     `form:"entity_id"`
	ActorID    string     `form:"actor_id"`
	StartAt    *time.Time `form:"start_at" time_format:"2006-01-02"`
	EndAt      *time.Time `form:"end_at" time_format:"2006-01-02"`
}

type ListResponse struct {
	pagination.PageInfo
	AuditLogs []AuditLog `json:"audit_logs"`
}

// Service records and queries the audit trail. Record is best effort:
// a write failure is logged and reported but must never abort the
// action being audited.
type Service interface {
	Record(ctx context.Context, entry Entry) error
	List(ctx context.Context, req ListRequest) (ListResponse, error)
}

var (
	ErrInvalidAction    = errors.New("invalid_action")
	ErrInvalidTimeRange = errors.New("invalid_time_range")
	ErrInvalidActor     = errors.New("invalid_actor")
)
