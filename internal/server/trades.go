package server

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"trade-journal-go/internal/ledger"
)

type tradeRequest struct {
	AccountID  string           `json:"accountId" binding:"required"`
	Symbol     string           `json:"symbol" binding:"required"`
	AssetClass string           `json:"assetClass"`
	Direction  string           `json:"direction" binding:"required"`
	Quantity   decimal.Decimal  `json:"quantity"`
	EntryPrice decimal.Decimal  `json:"entryPrice"`
	EntryDate  time.Time        `json:"entryDate" binding:"required"`
	ExitPrice  *decimal.Decimal `json:"exitPrice"`
	ExitDate   *time.Time       `json:"exitDate"`
	StopLoss   *decimal.Decimal `json:"stopLoss"`
	TakeProfit *decimal.Decimal `json:"takeProfit"`
	Fees       decimal.Decimal  `json:"fees"`
	SetupID    *string          `json:"setupId"`
	Tags       []string         `json:"tags"`
	Mistakes   []string         `json:"mistakes"`
	Notes      string           `json:"notes"`
	Rating     *int             `json:"rating"`
}

type tradePatchRequest struct {
	Symbol     *string          `json:"symbol"`
	AssetClass *string          `json:"assetClass"`
	Direction  *string          `json:"direction"`
	Quantity   *decimal.Decimal `json:"quantity"`
	EntryPrice *decimal.Decimal `json:"entryPrice"`
	EntryDate  *time.Time       `json:"entryDate"`

	ExitPrice *decimal.Decimal `json:"exitPrice"`
	ExitDate  *time.Time       `json:"exitDate"`
	ClearExit bool             `json:"clearExit"`

	StopLoss      *decimal.Decimal `json:"stopLoss"`
	ClearStopLoss bool             `json:"clearStopLoss"`

	TakeProfit      *decimal.Decimal `json:"takeProfit"`
	ClearTakeProfit bool             `json:"clearTakeProfit"`

	Fees *decimal.Decimal `json:"fees"`

	SetupID    *string `json:"setupId"`
	ClearSetup bool    `json:"clearSetup"`

	Tags     *[]string `json:"tags"`
	Mistakes *[]string `json:"mistakes"`
	Notes    *string   `json:"notes"`

	Rating      *int `json:"rating"`
	ClearRating bool `json:"clearRating"`
}

func (s *Server) createTrade(c *gin.Context) {
	var req tradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	trade, err := s.ledger.CreateTrade(c.Request.Context(), currentUser(c), ledger.CreateTradeInput{
		AccountID:  req.AccountID,
		Symbol:     req.Symbol,
		AssetClass: req.AssetClass,
		Direction:  req.Direction,
		Quantity:   req.Quantity,
		EntryPrice: req.EntryPrice,
		EntryDate:  req.EntryDate,
		ExitPrice:  req.ExitPrice,
		ExitDate:   req.ExitDate,
		StopLoss:   req.StopLoss,
		TakeProfit: req.TakeProfit,
		Fees:       req.Fees,
		SetupID:    req.SetupID,
		Tags:       req.Tags,
		Mistakes:   req.Mistakes,
		Notes:      req.Notes,
		Rating:     req.Rating,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, trade)
}

func (s *Server) updateTrade(c *gin.Context) {
	var req tradePatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	trade, err := s.ledger.AmendTrade(c.Request.Context(), currentUser(c), c.Param("id"), ledger.TradePatch{
		Symbol:          req.Symbol,
		AssetClass:      req.AssetClass,
		Direction:       req.Direction,
		Quantity:        req.Quantity,
		EntryPrice:      req.EntryPrice,
		EntryDate:       req.EntryDate,
		ExitPrice:       req.ExitPrice,
		ExitDate:        req.ExitDate,
		ClearExit:       req.ClearExit,
		StopLoss:        req.StopLoss,
		ClearStopLoss:   req.ClearStopLoss,
		TakeProfit:      req.TakeProfit,
		ClearTakeProfit: req.ClearTakeProfit,
		Fees:            req.Fees,
		SetupID:         req.SetupID,
		ClearSetup:      req.ClearSetup,
		Tags:            req.Tags,
		Mistakes:        req.Mistakes,
		Notes:           req.Notes,
		Rating:          req.Rating,
		ClearRating:     req.ClearRating,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, trade)
}

func (s *Server) deleteTrade(c *gin.Context) {
	if err := s.ledger.DeleteTrade(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{})
}

func (s *Server) getTrade(c *gin.Context) {
	trade, err := s.ledger.GetTrade(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, trade)
}

func (s *Server) listTrades(c *gin.Context) {
	query := ledger.ListTradesQuery{
		AccountID: c.Query("accountId"),
		Symbol:    c.Query("symbol"),
		Status:    c.Query("status"),
		SetupID:   c.Query("setupId"),
	}
	if tags := c.Query("tags"); tags != "" {
		query.Tags = strings.Split(tags, ",")
	}
	var err error
	if query.StartDate, err = parseDateParam(c.Query("startDate")); err != nil {
		respondBadRequest(c, "invalid startDate")
		return
	}
	if query.EndDate, err = parseDateParam(c.Query("endDate")); err != nil {
		respondBadRequest(c, "invalid endDate")
		return
	}
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	trades, total, err := s.ledger.ListTrades(c.Request.Context(), currentUser(c), query)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, trades, len(trades), total)
}

// parseDateParam accepts RFC 3339 timestamps or bare dates.
func parseDateParam(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
