package inventoryapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/wichananm65/inventory-dashboard/internal/logging"
	"github.com/wichananm65/inventory-dashboard/internal/metrics"
	"github.com/wichananm65/inventory-dashboard/internal/recommendation"
)

// maximum response body read from the backend
const maxBodyBytes = 8 << 20

var (
	// ErrUnavailable is returned while the circuit breaker rejects calls.
	ErrUnavailable = errors.New("inventory api unavailable")
	// ErrInvalidResponse is returned when a body cannot be decoded.
	ErrInvalidResponse = errors.New("invalid inventory api response")
)

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("inventory api %s: HTTP %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Options configures a Client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64
	Burst     int
	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
	// BreakerName labels circuit breaker metrics.
	BreakerName string
}

// Client calls the inventory backend's /api/v1 endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]byte]
}

// NewClient builds a client with rate limiting and a circuit breaker.
// The breaker opens when at least 60% of 10 or more calls within a minute
// failed, and probes again after 30 seconds.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	limit := rate.Limit(opts.RateLimit)
	if opts.RateLimit <= 0 {
		limit = rate.Inf
	}
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}
	name := opts.BreakerName
	if name == "" {
		name = "inventory-api"
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		// client errors are the caller's fault, not a sign of an unhealthy backend
		IsSuccessful: func(err error) bool {
			var se *StatusError
			if errors.As(err, &se) {
				return se.StatusCode < http.StatusInternalServerError
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/") + "/api/v1",
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, burst),
		breaker:    breaker,
	}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// RuleRecommendations returns the raw items of the rule engine feed.
func (c *Client) RuleRecommendations(ctx context.Context, q RuleQuery) ([]gjson.Result, error) {
	v := q.values()
	v.Set("tteWindowDays", strconv.Itoa(q.TTEWindowDays))
	v.Set("expiryWindowDays", strconv.Itoa(q.ExpiryWindowDays))

	body, err := c.get(ctx, "/recommendations", v)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: /recommendations", ErrInvalidResponse)
	}
	return recommendation.Items(gjson.ParseBytes(body)), nil
}

// MLRecommendations returns the ML feed with its model metrics.
func (c *Client) MLRecommendations(ctx context.Context, q MLQuery) (MLEnvelope, error) {
	v := q.values()
	v.Set("horizonDays", strconv.Itoa(q.HorizonDays))

	body, err := c.get(ctx, "/recommendations/ml", v)
	if err != nil {
		return MLEnvelope{}, err
	}
	if !gjson.ValidBytes(body) {
		return MLEnvelope{}, fmt.Errorf("%w: /recommendations/ml", ErrInvalidResponse)
	}

	root := gjson.ParseBytes(body)
	env := MLEnvelope{
		From:        root.Get("from").String(),
		To:          root.Get("to").String(),
		HorizonDays: q.HorizonDays,
		SampleCount: int(root.Get("sampleCount").Int()),
		Items:       recommendation.Items(root),
	}
	if h := root.Get("horizonDays"); h.Type == gjson.Number {
		env.HorizonDays = int(h.Int())
	}
	if b := root.Get("branchId"); b.Type == gjson.Number {
		id := b.Int()
		env.BranchID = &id
	}
	if r := root.Get("rmse"); r.Type == gjson.Number {
		f := r.Float()
		env.RMSE = &f
	}
	if m := root.Get("mape"); m.Type == gjson.Number {
		f := m.Float()
		env.MAPE = &f
	}
	return env, nil
}

// Branches returns the raw branch list, first page of up to 100, by name.
func (c *Client) Branches(ctx context.Context) ([]gjson.Result, error) {
	v := url.Values{}
	v.Set("page", "0")
	v.Set("size", "100")
	v.Set("sort", "name,asc")

	body, err := c.get(ctx, "/branches", v)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: /branches", ErrInvalidResponse)
	}
	return recommendation.Items(gjson.ParseBytes(body)), nil
}

func (c *Client) IncomeStatement(ctx context.Context, w Window) (IncomeStatement, error) {
	var out IncomeStatement
	err := c.getJSON(ctx, "/reports/income-statement", w.values(), &out)
	return out, err
}

// InventoryValuation is the value of remaining stock batches at cost.
func (c *Client) InventoryValuation(ctx context.Context, branchID *int64) (decimal.Decimal, error) {
	v := url.Values{}
	setBranch(v, branchID)
	var out decimal.Decimal
	err := c.getJSON(ctx, "/reports/inventory-valuation", v, &out)
	return out, err
}

func (c *Client) Bestsellers(ctx context.Context, w Window, limit int) ([]BestSeller, error) {
	v := w.values()
	v.Set("limit", strconv.Itoa(limit))
	out := []BestSeller{}
	err := c.getJSON(ctx, "/reports/bestsellers", v, &out)
	return out, err
}

func (c *Client) SlowMovers(ctx context.Context, w Window, threshold int) ([]SlowMover, error) {
	v := w.values()
	v.Set("threshold", strconv.Itoa(threshold))
	out := []SlowMover{}
	err := c.getJSON(ctx, "/reports/slow-movers", v, &out)
	return out, err
}

// ExpiringBatches lists batches expiring within the given number of days.
func (c *Client) ExpiringBatches(ctx context.Context, withinDays int, branchID *int64) ([]ExpiringBatch, error) {
	v := url.Values{}
	v.Set("withinDays", strconv.Itoa(withinDays))
	setBranch(v, branchID)
	out := []ExpiringBatch{}
	err := c.getJSON(ctx, "/alerts/expiring", v, &out)
	return out, err
}

func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	body, err := c.get(ctx, endpoint, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidResponse, endpoint, err)
	}
	return nil
}

// get performs one rate limited, breaker protected GET and returns the body.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("inventory api %s: %w", endpoint, err)
	}

	start := time.Now()
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.do(ctx, endpoint, params)
	})
	metrics.ObserveUpstream(endpoint, outcome(err), time.Since(start))

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, endpoint, err)
	}
	if err != nil {
		logging.Debug().Err(err).Str("endpoint", endpoint).Msg("inventory api call failed")
		return nil, err
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	u := c.baseURL + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inventory api %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", endpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: truncate(string(body), 512)}
	}
	return body, nil
}

func outcome(err error) string {
	var se *StatusError
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "rejected"
	case errors.As(err, &se):
		return "http_" + strconv.Itoa(se.StatusCode)
	default:
		return "error"
	}
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
