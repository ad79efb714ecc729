package server

import (
	"strings"

	"github.com/gin-gonic/gin"

	"trade-journal-go/internal/analytics"
)

func (s *Server) analyticsFilter(c *gin.Context) (analytics.Filter, bool) {
	f := analytics.Filter{
		AccountID: c.Query("accountId"),
		Period:    c.Query("period"),
	}
	if tags := c.Query("tags"); tags != "" {
		f.Tags = strings.Split(tags, ",")
	}
	var err error
	if f.StartDate, err = parseDateParam(c.Query("startDate")); err != nil {
		respondBadRequest(c, "invalid startDate")
		return f, false
	}
	if f.EndDate, err = parseDateParam(c.Query("endDate")); err != nil {
		respondBadRequest(c, "invalid endDate")
		return f, false
	}
	return f, true
}

func (s *Server) performance(c *gin.Context) {
	filter, ok := s.analyticsFilter(c)
	if !ok {
		return
	}
	metrics, err := s.analytics.Performance(c.Request.Context(), currentUser(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, metrics)
}

func (s *Server) groupedPerformance(c *gin.Context) {
	filter, ok := s.analyticsFilter(c)
	if !ok {
		return
	}
	dimension := analytics.Dimension(c.DefaultQuery("groupBy", string(analytics.DimensionSymbol)))
	grouped, err := s.analytics.Grouped(c.Request.Context(), currentUser(c), filter, dimension)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, grouped)
}
