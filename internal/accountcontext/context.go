// Package accountcontext carries the resolved tenant account through
// request contexts. Every repository call is scoped by this value.
package accountcontext

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type contextKey string

const accountIDKey contextKey = "account_id"

var ErrMissingAccount = errors.New("missing_account")

func WithAccountID(ctx context.Context, accountID snowflake.ID) context.Context {
	if accountID == 0 {
		return ctx
	}
	return context.WithValue(ctx, accountIDKey, accountID)
}

func AccountIDFromContext(ctx context.Context) (snowflake.ID, error) {
	value, ok := ctx.Value(accountIDKey).(snowflake.ID)
	if !ok || value == 0 {
		return 0, ErrMissingAccount
	}
	return value, nil
}
