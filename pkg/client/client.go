// Package client is a typed Go client for the trade journal API.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"trade-journal-go/internal/models"
)

// Client talks to a journal server on behalf of a single user.
type Client struct {
	http *resty.Client
}

// New creates a client. userID is sent as the trusted identity header on
// every request; the deployment is expected to authenticate in front of
// the journal service.
func New(baseURL, userID string) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetHeader("X-User-ID", userID).
		SetTimeout(30 * time.Second)
	return &Client{http: httpClient}
}

// APIError is a non-2xx response from the journal server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("journal api: %d %s", e.StatusCode, e.Message)
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Count   int    `json:"count"`
	Total   int64  `json:"total"`
	Error   string `json:"error"`
}

// TradeInput mirrors the create-trade request body.
type TradeInput struct {
	AccountID  string           `json:"accountId"`
	Symbol     string           `json:"symbol"`
	AssetClass string           `json:"assetClass,omitempty"`
	Direction  string           `json:"direction"`
	Quantity   decimal.Decimal  `json:"quantity"`
	EntryPrice decimal.Decimal  `json:"entryPrice"`
	EntryDate  time.Time        `json:"entryDate"`
	ExitPrice  *decimal.Decimal `json:"exitPrice,omitempty"`
	ExitDate   *time.Time       `json:"exitDate,omitempty"`
	StopLoss   *decimal.Decimal `json:"stopLoss,omitempty"`
	TakeProfit *decimal.Decimal `json:"takeProfit,omitempty"`
	Fees       decimal.Decimal  `json:"fees"`
	SetupID    *string          `json:"setupId,omitempty"`
	Tags       []string         `json:"tags,omitempty"`
	Mistakes   []string         `json:"mistakes,omitempty"`
	Notes      string           `json:"notes,omitempty"`
	Rating     *int             `json:"rating,omitempty"`
}

// TradePatch mirrors the update-trade request body. Nil fields are left
// untouched; ClearExit reopens a closed trade.
type TradePatch struct {
	Symbol     *string          `json:"symbol,omitempty"`
	AssetClass *string          `json:"assetClass,omitempty"`
	Direction  *string          `json:"direction,omitempty"`
	Quantity   *decimal.Decimal `json:"quantity,omitempty"`
	EntryPrice *decimal.Decimal `json:"entryPrice,omitempty"`
	EntryDate  *time.Time       `json:"entryDate,omitempty"`

	ExitPrice *decimal.Decimal `json:"exitPrice,omitempty"`
	ExitDate  *time.Time       `json:"exitDate,omitempty"`
	ClearExit bool             `json:"clearExit,omitempty"`

	StopLoss      *decimal.Decimal `json:"stopLoss,omitempty"`
	ClearStopLoss bool             `json:"clearStopLoss,omitempty"`

	TakeProfit      *decimal.Decimal `json:"takeProfit,omitempty"`
	ClearTakeProfit bool             `json:"clearTakeProfit,omitempty"`

	Fees *decimal.Decimal `json:"fees,omitempty"`

	SetupID    *string `json:"setupId,omitempty"`
	ClearSetup bool    `json:"clearSetup,omitempty"`

	Tags     *[]string `json:"tags,omitempty"`
	Mistakes *[]string `json:"mistakes,omitempty"`
	Notes    *string   `json:"notes,omitempty"`

	Rating      *int `json:"rating,omitempty"`
	ClearRating bool `json:"clearRating,omitempty"`
}

// AccountInput mirrors the create-account request body.
type AccountInput struct {
	Name           string          `json:"name"`
	Broker         string          `json:"broker"`
	AccountType    string          `json:"accountType,omitempty"`
	Currency       string          `json:"currency,omitempty"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
}

// AccountPatch mirrors the update-account request body.
type AccountPatch struct {
	Name           *string          `json:"name,omitempty"`
	Broker         *string          `json:"broker,omitempty"`
	AccountType    *string          `json:"accountType,omitempty"`
	Currency       *string          `json:"currency,omitempty"`
	InitialBalance *decimal.Decimal `json:"initialBalance,omitempty"`
}

// TradeListOptions narrows and pages ListTrades.
type TradeListOptions struct {
	AccountID string
	Symbol    string
	Status    string
	SetupID   string
	Tags      string
	StartDate string
	EndDate   string
	Page      int
	Limit     int
}

// AnalyticsOptions scopes the analytics endpoints.
type AnalyticsOptions struct {
	AccountID string
	Period    string
	StartDate string
	EndDate   string
	Tags      string
}

func checkResponse[T any](resp *resty.Response, result *envelope[T], err error) (*envelope[T], error) {
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		message := "server error"
		if result != nil && result.Error != "" {
			message = result.Error
		}
		return nil, &APIError{StatusCode: resp.StatusCode(), Message: message}
	}
	return result, nil
}

func (c *Client) CreateTrade(ctx context.Context, input TradeInput) (*models.Trade, error) {
	result := &envelope[models.Trade]{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(input).
		SetResult(result).
		SetError(result).
		Post("/api/trades")
	if _, err := checkResponse(resp, result, err); err != nil {
		return nil, err
	}
	return &result.Data, nil
}

func (c *Client) UpdateTrade(ctx context.Context, tradeID string, patch TradePatch) (*models.Trade, error) {
	result := &envelope[models.Trade]{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(patch).
		SetResult(result).
		SetError(result).
		Put("/api/trades/" + tradeID)
	if _, err := checkResponse(resp, result, err); err != nil {
		return nil, err
	}
	return &result.Data, nil
}

func (c *Client) DeleteTrade(ctx context.Context, tradeID string) error {
	result := &envelope[map[string]any]{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(result).
		SetError(result).
		Delete("/api/trades/" + tradeID)
	_, err = checkResponse(resp, result, err)
	return err
}

func (c *Client) GetTrade(ctx context.Context, tradeID string) (*models.Trade, error) {
	result := &envelope[models.Trade]{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(result).
		SetError(result).
		Get("/api/trades/" + tradeID)
	if _, err := checkResponse(resp, result, err); err != nil {
		return nil, err
	}
	return &result.Data, nil
}

func (c *Client) ListTrades(ctx context.Context, opts TradeListOptions) ([]models.Trade, int64, error) {
	result := &envelope[[]models.Trade]{}
	req := c.http.R().
		SetContext(ctx).
		SetResult(result).
		SetError(result)
	params := map[string]string{
		"accountId": opts.AccountID,
		"symbol":    opts.Symbol,
		"status":    opts.Status,
		"setupId":   opts.SetupID,
		"tags":      opts.Tags,
		"startDate": opts.StartDate,
		"endDate":   opts.EndDate,
	}
	for key, value := range params {
		if value != "" {
			req.SetQueryParam(key, value)
		}
	}
	if opts.Page > 0 {
		req.SetQueryParam("page", fmt.Sprintf("%d", opts.Page))
	}
	if opts.Limit > 0 {
		req.SetQueryParam("limit", fmt.Sprintf("%d", opts.Limit))
	}
	resp, err := req.Get("/api/trades")
	if _, err := checkResponse(resp, result, err); err != nil {
		return nil, 0, err
	}
	return result.Data, result.Total, nil
}

func (c *Client) CreateAccount(ctx context.Context, input AccountInput) (*models.Account, error) {
	result := &envelope[models.Account]{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(input).
		SetResult(result).
		SetError(result).
		Post("/api/accounts")
	if _, err := checkResponse(resp, result, err); err != nil {
		return nil, err
	}
	return &result.Data, nil
}

func (c *Client) UpdateAccount(ctx context.Context, accountID string, patch AccountPatch) (*models.Account, error) {
	result := &envelope[models.Account]{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(patch).
		SetResult(result).
		SetError(result).
		Put("/api/accounts/" + accountID)
	if _, err := checkResponse(resp, result, err); err != nil {
		return nil, err
	}
	return &result.Data, nil
}

func (c *Client) DeleteAccount(ctx context.Context, accountID string) error {
	result := &envelope[map[string]any]{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(result).
		SetError(result).
		Delete("/api/accounts/" + accountID)
	_, err = checkResponse(resp, result, err)
	return err
}

func (c *Client) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	result := &envelope[models.Account]{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(result).
		SetError(result).
		Get("/api/accounts/" + accountID)
	if _, err := checkResponse(resp, result, err); err != nil {
		return nil, err
	}
	return &result.Data, nil
}

func (c *Client) ListAccounts(ctx context.Context) ([]models.Account, error) {
	result := &envelope[[]models.Account]{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(result).
		SetError(result).
		Get("/api/accounts")
	if _, err := checkResponse(resp, result, err); err != nil {
		return nil, err
	}
	return result.Data, nil
}

func (c *Client) Performance(ctx context.Context, opts AnalyticsOptions) (*models.PerformanceMetrics, error) {
	result := &envelope[models.PerformanceMetrics]{}
	resp, err := c.analyticsRequest(ctx, result, opts).Get("/api/analytics/performance")
	if _, err := checkResponse(resp, result, err); err != nil {
		return nil, err
	}
	return &result.Data, nil
}

func (c *Client) GroupedPerformance(ctx context.Context, opts AnalyticsOptions, groupBy string) (map[string]models.PerformanceMetrics, error) {
	result := &envelope[map[string]models.PerformanceMetrics]{}
	req := c.analyticsRequest(ctx, result, opts)
	if groupBy != "" {
		req.SetQueryParam("groupBy", groupBy)
	}
	resp, err := req.Get("/api/analytics/trades")
	if _, err := checkResponse(resp, result, err); err != nil {
		return nil, err
	}
	return result.Data, nil
}

func analyticsParams(opts AnalyticsOptions) map[string]string {
	return map[string]string{
		"accountId": opts.AccountID,
		"period":    opts.Period,
		"startDate": opts.StartDate,
		"endDate":   opts.EndDate,
		"tags":      opts.Tags,
	}
}

func (c *Client) analyticsRequest(ctx context.Context, result any, opts AnalyticsOptions) *resty.Request {
	req := c.http.R().
		SetContext(ctx).
		SetResult(result).
		SetError(result)
	for key, value := range analyticsParams(opts) {
		if value != "" {
			req.SetQueryParam(key, value)
		}
	}
	return req
}
