package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/gymledger/internal/audit/domain"
	auditservice "github.com/smallbiznis/gymledger/internal/audit/service"
	"github.com/smallbiznis/gymledger/internal/clock"
	"github.com/smallbiznis/gymledger/internal/config"
	membershipdomain "github.com/smallbiznis/gymledger/internal/membership/domain"
	notificationdomain "github.com/smallbiznis/gymledger/internal/notification/domain"
	"github.com/smallbiznis/gymledger/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultBatchSize         = 500
	defaultReminderDays      = 7
	defaultSuppressionWindow = 24 * time.Hour
	notificationDayKeyLayout = "2006-01-02"
)

// ExpireResult reports one expiration sweep.
type ExpireResult struct {
	Expired int `json:"expired"`
}

// NotifyResult reports one reminder sweep.
type NotifyResult struct {
	Attempted  int `json:"attempted"`
	Notified   int `json:"notified"`
	Failed     int `json:"failed"`
	Suppressed int `json:"suppressed"`
}

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Config        config.Config
	Memberships   membershipdomain.Repository
	Notifications notificationdomain.Repository
	Sender        notificationdomain.Sender
	Audit         auditservice.Recorder
}

// Scheduler runs the daily membership sweeps. Both sweeps are
// idempotent and safe to trigger from cron and from the ticker worker
// at the same time.
type Scheduler struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	cfg           config.SchedulerConfig
	memberships   membershipdomain.Repository
	notifications notificationdomain.Repository
	sender        notificationdomain.Sender
	audit         auditservice.Recorder
	metrics       *metrics.SweepMetrics
}

func New(p Params) *Scheduler {
	return &Scheduler{
		db:            p.DB,
		log:           p.Log.Named("scheduler"),
		genID:         p.GenID,
		clock:         p.Clock,
		cfg:           p.Config.Scheduler,
		memberships:   p.Memberships,
		notifications: p.Notifications,
		sender:        p.Sender,
		audit:         p.Audit,
		metrics:       metrics.Sweep(),
	}
}

func (s *Scheduler) batchSize() int {
	if s.cfg.BatchSize > 0 {
		return s.cfg.BatchSize
	}
	return defaultBatchSize
}

func (s *Scheduler) suppressionWindow() time.Duration {
	if s.cfg.ReminderSuppressionHrs > 0 {
		return time.Duration(s.cfg.ReminderSuppressionHrs) * time.Hour
	}
	return defaultSuppressionWindow
}

// RunExpirationSweep flips active memberships whose end date has passed
// to expired. Re-running finds nothing left to flip.
func (s *Scheduler) RunExpirationSweep(ctx context.Context, asOf time.Time) (ExpireResult, error) {
	start := time.Now()
	var flipped []membershipdomain.CustomerMembership

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		flipped, err = s.memberships.ExpireDue(ctx, tx, asOf, s.batchSize())
		if err != nil {
			return err
		}
		for _, m := range flipped {
			if err := s.audit.Record(ctx, tx, auditservice.Entry{
				AccountID:  m.AccountID,
				Action:     auditdomain.ActionMembershipExpired,
				TargetType: "customer_membership",
				TargetID:   m.ID.String(),
				Metadata: map[string]any{
					"customer_id": m.CustomerID.String(),
					"end_date":    m.EndDate.Format(notificationDayKeyLayout),
				},
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return ExpireResult{}, err
	}

	s.metrics.ObserveExpired(len(flipped))
	s.metrics.ObserveSweepDuration("expire", time.Since(start).Seconds())
	s.log.Info("expiration sweep finished",
		zap.Time("as_of", asOf),
		zap.Int("expired", len(flipped)),
	)
	return ExpireResult{Expired: len(flipped)}, nil
}

// RunExpiryNotificationSweep sends reminders for active memberships
// ending within the threshold. A reminder already recorded inside the
// suppression window is skipped, so running the sweep twice in a day
// sends at most one reminder per membership. Per-item failures are
// logged and counted without aborting the batch.
func (s *Scheduler) RunExpiryNotificationSweep(ctx context.Context, asOf time.Time, thresholdDays int) (NotifyResult, error) {
	start := time.Now()
	if thresholdDays <= 0 {
		thresholdDays = s.cfg.ExpiryReminderDays
	}
	if thresholdDays <= 0 {
		thresholdDays = defaultReminderDays
	}
	threshold := time.Duration(thresholdDays) * 24 * time.Hour

	expiring, err := s.memberships.ListExpiringWithin(ctx, s.db, asOf, threshold, s.batchSize())
	if err != nil {
		return NotifyResult{}, err
	}

	result := NotifyResult{Attempted: len(expiring)}
	cutoff := asOf.Add(-s.suppressionWindow())
	for _, m := range expiring {
		sent, err := s.notifications.SentSince(ctx, s.db, notificationdomain.TypeMembershipExpiring, m.ID, cutoff)
		if err != nil {
			result.Failed++
			s.metrics.ObserveReminderFailed()
			s.log.Warn("reminder dedupe lookup failed",
				zap.String("membership_id", m.ID.String()),
				zap.Error(err),
			)
			continue
		}
		if sent {
			result.Suppressed++
			s.metrics.ObserveReminderSuppressed()
			continue
		}

		if err := s.sendReminder(ctx, m, asOf); err != nil {
			result.Failed++
			s.metrics.ObserveReminderFailed()
			s.log.Warn("reminder dispatch failed",
				zap.String("membership_id", m.ID.String()),
				zap.Error(err),
			)
			continue
		}
		result.Notified++
		s.metrics.ObserveReminderSent()
	}

	s.metrics.ObserveSweepDuration("notify", time.Since(start).Seconds())
	s.log.Info("expiry notification sweep finished",
		zap.Time("as_of", asOf),
		zap.Int("attempted", result.Attempted),
		zap.Int("notified", result.Notified),
		zap.Int("failed", result.Failed),
		zap.Int("suppressed", result.Suppressed),
	)
	return result, nil
}

func (s *Scheduler) sendReminder(ctx context.Context, m membershipdomain.CustomerMembership, asOf time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		msg := notificationdomain.Message{
			AccountID:    m.AccountID,
			Type:         notificationdomain.TypeMembershipExpiring,
			MembershipID: m.ID,
			CustomerID:   m.CustomerID,
			Payload: map[string]any{
				"end_date": m.EndDate.Format(notificationDayKeyLayout),
			},
			DedupeKey: fmt.Sprintf("%s:%s:%s",
				notificationdomain.TypeMembershipExpiring,
				m.ID.String(),
				asOf.Format(notificationDayKeyLayout),
			),
		}
		if err := s.sender.Send(ctx, tx, msg); err != nil {
			return err
		}

		record := &notificationdomain.MembershipNotification{
			ID:               s.genID.Generate(),
			AccountID:        m.AccountID,
			MembershipID:     m.ID,
			NotificationType: notificationdomain.TypeMembershipExpiring,
			SentAt:           asOf,
		}
		if err := s.notifications.Insert(ctx, tx, record); err != nil {
			return err
		}

		return s.audit.Record(ctx, tx, auditservice.Entry{
			AccountID:  m.AccountID,
			Action:     auditdomain.ActionMembershipReminder,
			TargetType: "customer_membership",
			TargetID:   m.ID.String(),
			Metadata: map[string]any{
				"customer_id": m.CustomerID.String(),
				"end_date":    m.EndDate.Format(notificationDayKeyLayout),
			},
		})
	})
}
