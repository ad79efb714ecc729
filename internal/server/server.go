// Package server exposes the ledger and analytics services over HTTP.
// It is CRUD glue: all invariants live in the services it delegates to.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"trade-journal-go/internal/analytics"
	"trade-journal-go/internal/config"
	"trade-journal-go/internal/ledger"
)

// Server is the journal HTTP API.
type Server struct {
	engine    *gin.Engine
	logger    *zap.Logger
	addr      string
	ledger    *ledger.Service
	analytics *analytics.Service
}

func New(logger *zap.Logger, cfg *config.Config, ledgerSvc *ledger.Service, analyticsSvc *analytics.Service) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		engine:    gin.New(),
		logger:    logger,
		addr:      fmt.Sprintf(":%d", cfg.Server.Port),
		ledger:    ledgerSvc,
		analytics: analyticsSvc,
	}

	s.engine.Use(gin.Recovery())
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.engine.Group("/api", rateLimit(cfg.RateLimit), requireUser())
	{
		api.POST("/accounts", s.createAccount)
		api.GET("/accounts", s.listAccounts)
		api.GET("/accounts/:id", s.getAccount)
		api.PUT("/accounts/:id", s.updateAccount)
		api.DELETE("/accounts/:id", s.deleteAccount)

		api.POST("/trades", s.createTrade)
		api.GET("/trades", s.listTrades)
		api.GET("/trades/:id", s.getTrade)
		api.PUT("/trades/:id", s.updateTrade)
		api.DELETE("/trades/:id", s.deleteTrade)

		api.GET("/analytics/performance", s.performance)
		api.GET("/analytics/trades", s.groupedPerformance)
	}

	return s
}

// Router exposes the handler tree, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting API server", zap.String("address", s.addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("Shutting down API server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
