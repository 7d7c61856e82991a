package findata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/finsight/internal/common"
	"github.com/ternarybob/finsight/internal/interfaces"
	"github.com/ternarybob/finsight/internal/models"
)

const (
	// DefaultBaseURL is the base URL for the fundamentals API.
	DefaultBaseURL = "https://api.financialdatasets.ai"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMinInterval is the default spacing between requests.
	DefaultMinInterval = 250 * time.Millisecond
)

// Client is a fundamentals API client. It is safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
	cache      interfaces.ResponseCache
	cacheTTL   time.Duration
}

var _ interfaces.FundamentalsProvider = (*Client)(nil)

func newLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// NewClient creates a new fundamentals API client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: newLimiter(DefaultMinInterval),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// NewClientFromConfig builds a client from [provider], resolving the API key
// from the environment first.
func NewClientFromConfig(config *common.ProviderConfig, cache interfaces.ResponseCache, logger arbor.ILogger) (*Client, error) {
	apiKey, err := common.ResolveAPIKey("provider_api_key", config.APIKey)
	if err != nil {
		return nil, fmt.Errorf("provider API key is required (set FINSIGHT_PROVIDER_API_KEY or provider.api_key): %w", err)
	}

	return NewClient(apiKey,
		WithBaseURL(config.BaseURL),
		WithHTTPClient(&http.Client{Timeout: common.Duration(config.Timeout, DefaultTimeout)}),
		WithMinInterval(common.Duration(config.RateLimit, DefaultMinInterval)),
		WithCache(cache, common.Duration(config.CacheTTL, 24*time.Hour)),
		WithLogger(logger),
	), nil
}

func (c *Client) cacheKey(path string, params url.Values) string {
	return "findata:" + params.Get("ticker") + ":" + path + "?" + params.Encode()
}

// get fetches path and returns the body, serving from cache when possible.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	useCache := c.cache != nil && c.cacheTTL > 0
	key := c.cacheKey(path, params)

	if useCache {
		body, ok, err := c.cache.Get(ctx, key)
		if err != nil && c.logger != nil {
			c.logger.Warn().Err(err).Str("endpoint", path).Msg("Response cache read failed")
		}
		if ok {
			if c.logger != nil {
				c.logger.Debug().Str("endpoint", path).Msg("findata cache hit")
			}
			return body, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &RateLimitError{RetryAfter: time.Second, Cause: err}
	}

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Accept", "application/json")

	if c.logger != nil {
		c.logger.Debug().
			Str("url", c.baseURL+path).
			Str("ticker", params.Get("ticker")).
			Msg("findata API request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, &RateLimitError{RetryAfter: retryAfter(resp.Header.Get("Retry-After")), Cause: apiErr}
		}
		return nil, apiErr
	}

	if useCache {
		if err := c.cache.Set(ctx, key, body, c.cacheTTL); err != nil && c.logger != nil {
			c.logger.Warn().Err(err).Str("endpoint", path).Msg("Response cache write failed")
		}
	}
	return body, nil
}

func retryAfter(header string) time.Duration {
	if seconds, err := strconv.Atoi(header); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return time.Second
}

// envelope decodes body and returns the raw value under key. A missing key
// yields nil.
func envelope(body []byte, key, endpoint string) (json.RawMessage, error) {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return env[key], nil
}

func (c *Client) getList(ctx context.Context, path, key string, params url.Values) ([]models.RawRecord, error) {
	body, err := c.get(ctx, path, params)
	if err != nil {
		return nil, err
	}
	raw, err := envelope(body, key, path)
	if err != nil || raw == nil {
		return nil, err
	}

	var records []models.RawRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("failed to decode %s from %s: %w", key, path, err)
	}
	return records, nil
}

func (c *Client) getObject(ctx context.Context, path, key string, params url.Values) (models.RawRecord, error) {
	body, err := c.get(ctx, path, params)
	if err != nil {
		return nil, err
	}
	raw, err := envelope(body, key, path)
	if err != nil || raw == nil {
		return nil, err
	}

	var record models.RawRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("failed to decode %s from %s: %w", key, path, err)
	}
	return record, nil
}

func tickerParams(ticker string) url.Values {
	params := url.Values{}
	params.Set("ticker", common.ParseTicker(ticker).Symbol())
	return params
}

func statementParams(ticker, period string, limit int) url.Values {
	params := tickerParams(ticker)
	if period == "" {
		period = PeriodAnnual
	}
	params.Set("period", period)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	return params
}

// withFiscalYear fills fiscal_year from the year of report_period when the
// provider omitted it. The statement period is also defaulted from the request.
func withFiscalYear(records []models.RawRecord, period string) []models.RawRecord {
	for _, rec := range records {
		if !rec.Has("fiscal_year") {
			if reported := rec.String("report_period"); len(reported) >= 4 {
				if year, err := strconv.Atoi(reported[:4]); err == nil {
					rec["fiscal_year"] = float64(year)
				}
			}
		}
		if rec.String("period") == "" && period != "" {
			rec["period"] = period
		}
	}
	return records
}

// IncomeStatements fetches income statements, most recent first.
func (c *Client) IncomeStatements(ctx context.Context, ticker, period string, limit int) ([]models.RawRecord, error) {
	params := statementParams(ticker, period, limit)
	records, err := c.getList(ctx, "/financials/income-statements/", "income_statements", params)
	return withFiscalYear(records, params.Get("period")), err
}

// BalanceSheets fetches balance sheets, most recent first.
func (c *Client) BalanceSheets(ctx context.Context, ticker, period string, limit int) ([]models.RawRecord, error) {
	params := statementParams(ticker, period, limit)
	records, err := c.getList(ctx, "/financials/balance-sheets/", "balance_sheets", params)
	return withFiscalYear(records, params.Get("period")), err
}

// CashFlowStatements fetches cash flow statements, most recent first.
func (c *Client) CashFlowStatements(ctx context.Context, ticker, period string, limit int) ([]models.RawRecord, error) {
	params := statementParams(ticker, period, limit)
	records, err := c.getList(ctx, "/financials/cash-flow-statements/", "cash_flow_statements", params)
	return withFiscalYear(records, params.Get("period")), err
}

// FinancialMetrics fetches the current metrics snapshot.
func (c *Client) FinancialMetrics(ctx context.Context, ticker string) (models.RawRecord, error) {
	return c.getObject(ctx, "/financial-metrics/snapshot/", "snapshot", tickerParams(ticker))
}

// PriceSnapshot fetches the latest price snapshot.
func (c *Client) PriceSnapshot(ctx context.Context, ticker string) (models.RawRecord, error) {
	return c.getObject(ctx, "/prices/snapshot/", "snapshot", tickerParams(ticker))
}

// CompanyFacts fetches name, sector, industry and share count.
func (c *Client) CompanyFacts(ctx context.Context, ticker string) (models.RawRecord, error) {
	return c.getObject(ctx, "/company/facts/", "company_facts", tickerParams(ticker))
}

// InsiderTrades fetches recent insider transactions.
func (c *Client) InsiderTrades(ctx context.Context, ticker string, limit int) ([]models.RawRecord, error) {
	params := tickerParams(ticker)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	return c.getList(ctx, "/insider-trades/", "insider_trades", params)
}

// InstitutionalOwnership fetches institutional holdings of the ticker.
func (c *Client) InstitutionalOwnership(ctx context.Context, ticker string, limit int) ([]models.RawRecord, error) {
	params := tickerParams(ticker)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	return c.getList(ctx, "/institutional-ownership/", "institutional_ownership", params)
}

// AnalystEstimates fetches consensus estimates.
func (c *Client) AnalystEstimates(ctx context.Context, ticker, period string) ([]models.RawRecord, error) {
	params := tickerParams(ticker)
	if period != "" {
		params.Set("period", period)
	}
	return c.getList(ctx, "/analyst-estimates/", "analyst_estimates", params)
}

// Invalidate drops every cached response for ticker.
func (c *Client) Invalidate(ctx context.Context, ticker string) error {
	if c.cache == nil {
		return nil
	}
	return c.cache.DeletePrefix(ctx, "findata:"+common.ParseTicker(ticker).Symbol()+":")
}
