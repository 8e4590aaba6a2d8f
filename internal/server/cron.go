package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Cron endpoints let an external scheduler drive the daily sweeps. The
// optional as_of query (YYYY-MM-DD) supports backfills.
func (s *Server) runExpirationSweep(c *gin.Context) {
	asOf, err := parseAsOf(c.Query("as_of"))
	if err != nil {
		AbortWithError(c, ErrBadRequest)
		return
	}
	result, err := s.scheduler.RunExpirationSweep(c.Request.Context(), asOf)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) runNotificationSweep(c *gin.Context) {
	asOf, err := parseAsOf(c.Query("as_of"))
	if err != nil {
		AbortWithError(c, ErrBadRequest)
		return
	}
	thresholdDays := 0
	if raw := c.Query("threshold_days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			AbortWithError(c, ErrBadRequest)
			return
		}
		thresholdDays = parsed
	}
	result, err := s.scheduler.RunExpiryNotificationSweep(c.Request.Context(), asOf, thresholdDays)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func parseAsOf(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now().UTC(), nil
	}
	return time.Parse("2006-01-02", raw)
}
