package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/smallbiznis/livescan/internal/audit/domain"
	"github.com/smallbiznis/livescan/internal/audit/masking"
	"github.com/smallbiznis/livescan/internal/auditcontext"
	"github.com/smallbiznis/livescan/internal/clock"
	"github.com/smallbiznis/livescan/pkg/db/pagination"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, entry domain.Entry) error {
	action := strings.TrimSpace(entry.Action)
	if action == "" {
		return domain.ErrInvalidAction
	}

	entityType := strings.TrimSpace(entry.EntityType)
	if entityType == "" {
		entityType = "unknown"
	}

	row := domain.AuditLog{
		ID:         s.genID.Generate().Int64(),
		ActorEmail: strings.TrimSpace(entry.ActorEmail),
		Action:     action,
		EntityType: entityType,
		EntityID:   strings.TrimSpace(entry.EntityID),
		Metadata:   datatypes.JSONMap(masking.Sanitize(entry.Metadata)),
		IPAddress:  auditcontext.IPAddressFromContext(ctx),
		UserAgent:  auditcontext.UserAgentFromContext(ctx),
		RequestID:  auditcontext.RequestIDFromContext(ctx),
		CreatedAt:  s.clock.Now().UTC(),
	}
	if entry.ActorID != 0 {
		actorID := entry.ActorID
		row.ActorID = &actorID
	}

	if err := s.repo.Insert(ctx, s.db, &row); err != nil {
		s.log.Warn("failed to write audit log",
			zap.String("action", action),
			zap.String("entity_type", entityType),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	if req.StartAt != nil && req.EndAt != nil && req.StartAt.After(*req.EndAt) {
		return domain.ListResponse{}, domain.ErrInvalidTimeRange
	}

	var actorID int64
	if trimmed := strings.TrimSpace(req.ActorID); trimmed != "" {
		parsed, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return domain.ListResponse{}, domain.ErrInvalidActor
		}
		actorID = parsed
	}

	page := req.Pagination
	page.Normalize()
	logs, total, err := s.repo.List(ctx, s.db, domain.ListFilter{
		Action:     req.Action,
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		ActorID:    actorID,
		StartAt:    req.StartAt,
		EndAt:      req.EndAt,
		Limit:      page.PageSize,
		Offset:     page.Offset(),
	})
	if err != nil {
		return domain.ListResponse{}, err
	}

	return domain.ListResponse{
		PageInfo:  *pagination.BuildPageInfo(page, total),
		AuditLogs: logs,
	}, nil
}
