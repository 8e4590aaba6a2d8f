package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/gymledger/internal/audit/domain"
	"github.com/smallbiznis/gymledger/internal/auditcontext"
	"github.com/smallbiznis/gymledger/internal/clock"
	"github.com/smallbiznis/gymledger/internal/observability/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Entry is the caller-facing shape of one audit record. Actor, IP and
// user agent come from the request context.
type Entry struct {
	AccountID  snowflake.ID
	Action     string
	TargetType string
	TargetID   string
	Metadata   map[string]any
}

// Recorder writes audit entries inside the caller's transaction so the
// record commits or rolls back with the action it describes.
type Recorder interface {
	Record(ctx context.Context, tx *gorm.DB, entry Entry) error
	List(ctx context.Context, filter auditdomain.ListFilter) ([]*auditdomain.AuditLog, error)
}

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  auditdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  auditdomain.Repository
}

func NewService(p Params) Recorder {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, tx *gorm.DB, entry Entry) error {
	actorType, actorID := auditcontext.ActorFromContext(ctx)
	if actorType == "" {
		actorType = string(auditdomain.ActorTypeSystem)
	}

	row := &auditdomain.AuditLog{
		ID:         s.genID.Generate(),
		ActorType:  actorType,
		Action:     entry.Action,
		TargetType: entry.TargetType,
		Metadata:   datatypes.JSONMap(logger.MaskJSON(entry.Metadata)),
		CreatedAt:  s.clock.Now(),
	}
	if entry.AccountID != 0 {
		accountID := entry.AccountID
		row.AccountID = &accountID
	}
	if actorID != "" {
		row.ActorID = &actorID
	}
	if entry.TargetID != "" {
		targetID := entry.TargetID
		row.TargetID = &targetID
	}
	if ip := auditcontext.IPAddressFromContext(ctx); ip != "" {
		row.IPAddress = &ip
	}
	if ua := auditcontext.UserAgentFromContext(ctx); ua != "" {
		row.UserAgent = &ua
	}
	if row.Metadata == nil {
		row.Metadata = datatypes.JSONMap{}
	}

	return s.repo.Insert(ctx, tx, row)
}

func (s *Service) List(ctx context.Context, filter auditdomain.ListFilter) ([]*auditdomain.AuditLog, error) {
	return s.repo.List(ctx, s.db, filter)
}
