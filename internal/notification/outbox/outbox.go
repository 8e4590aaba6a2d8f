package outbox

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	notificationdomain "github.com/smallbiznis/gymledger/internal/notification/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sender stores notifications in the notification_outbox table for
// out-of-band delivery. The dedupe key is unique per account, so
// concurrent enqueues of the same reminder collapse to one row.
type Sender struct {
	log   *zap.Logger
	genID *snowflake.Node
}

type Params struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
}

func NewSender(p Params) notificationdomain.Sender {
	return &Sender{
		log:   p.Log.Named("notification.outbox"),
		genID: p.GenID,
	}
}

func (s *Sender) Send(ctx context.Context, tx *gorm.DB, msg notificationdomain.Message) error {
	if tx == nil {
		return errors.New("missing_transaction")
	}
	if msg.AccountID == 0 {
		return errors.New("invalid_account_id")
	}
	name := strings.TrimSpace(msg.Type)
	if name == "" {
		return errors.New("missing_notification_type")
	}

	payload := datatypes.JSONMap{}
	for key, value := range msg.Payload {
		if strings.TrimSpace(key) == "" {
			continue
		}
		payload[key] = value
	}
	if msg.MembershipID != 0 {
		payload["membership_id"] = msg.MembershipID.String()
	}
	if msg.CustomerID != 0 {
		payload["customer_id"] = msg.CustomerID.String()
	}

	record := &notificationdomain.OutboxRecord{
		ID:               s.genID.Generate(),
		AccountID:        msg.AccountID,
		NotificationType: name,
		Payload:          payload,
		Published:        false,
		CreatedAt:        time.Now().UTC(),
	}
	if dedupe := strings.TrimSpace(msg.DedupeKey); dedupe != "" {
		record.DedupeKey = &dedupe
	}

	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}, {Name: "dedupe_key"}},
		DoNothing: true,
	}).Create(record).Error
}
