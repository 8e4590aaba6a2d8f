package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/gymledger/internal/accountcontext"
	apikeydomain "github.com/smallbiznis/gymledger/internal/apikey/domain"
	"github.com/smallbiznis/gymledger/internal/auditcontext"
)

// APIKeyRequired authenticates requests with a bearer API key. The
// account (tenant) is derived solely from the api_keys table and
// threaded through the request context.
func (s *Server) APIKeyRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		parts := strings.Fields(header)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		hash := apikeydomain.HashAPIKey(parts[1])
		key, err := s.apiKeys.FindActiveByHash(c.Request.Context(), s.db, hash)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if key == nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := accountcontext.WithAccountID(c.Request.Context(), key.AccountID)
		ctx = auditcontext.WithActor(ctx, "api_key", key.ID.String())
		ctx = auditcontext.WithIPAddress(ctx, c.ClientIP())
		ctx = auditcontext.WithUserAgent(ctx, c.Request.UserAgent())

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RateLimit applies a fixed per-key window on mutating traffic.
func (s *Server) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, err := accountcontext.AccountIDFromContext(c.Request.Context())
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if !s.limiter.Allow(accountID.String()) {
			AbortWithError(c, ErrRateLimited)
			return
		}
		c.Next()
	}
}
