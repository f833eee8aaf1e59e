// Package gateway talks to the external notification providers that carry
// invitation links to carriers over email, SMS and WhatsApp.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nimasrn/freight-bids/pkg/logger"
	"github.com/valyala/fasthttp"
)

var (
	ErrNoAvailableProviders = errors.New("no available providers")
	ErrRejected             = errors.New("notification rejected by provider")
)

type DeliveryStatus string

const (
	StatusAccepted  DeliveryStatus = "ACCEPTED"
	StatusDelivered DeliveryStatus = "DELIVERED"
	StatusFailed    DeliveryStatus = "FAILED"
)

const sendPath = "/api/v1/notifications/send"

type SendRequest struct {
	InvitationID int64  `json:"invitation_id"`
	Channel      string `json:"channel"`
	Recipient    string `json:"recipient"`
	Subject      string `json:"subject,omitempty"`
	Body         string `json:"body"`
}

type SendResponse struct {
	NotificationID string         `json:"notification_id"`
	InvitationID   int64          `json:"invitation_id"`
	Channel        string         `json:"channel"`
	Status         DeliveryStatus `json:"status"`
	ErrorMsg       string         `json:"error_message,omitempty"`
	ProviderID     string         `json:"provider_id"`
	ProcessedAt    time.Time      `json:"processed_at"`
}

type ProviderMetrics struct {
	TotalRequests    atomic.Int64
	SuccessfulReqs   atomic.Int64
	FailedReqs       atomic.Int64
	TotalLatencyMs   atomic.Int64
	ConsecutiveFails atomic.Int32
}

func (m *ProviderMetrics) RecordSuccess(latencyMs int64) {
	m.TotalRequests.Add(1)
	m.SuccessfulReqs.Add(1)
	m.TotalLatencyMs.Add(latencyMs)
	m.ConsecutiveFails.Store(0)
}

func (m *ProviderMetrics) RecordFailure() {
	m.TotalRequests.Add(1)
	m.FailedReqs.Add(1)
	m.ConsecutiveFails.Add(1)
}

func (m *ProviderMetrics) SuccessRate() float64 {
	total := m.TotalRequests.Load()
	if total == 0 {
		return 1.0
	}
	return float64(m.SuccessfulReqs.Load()) / float64(total)
}

func (m *ProviderMetrics) AvgLatencyMs() int64 {
	ok := m.SuccessfulReqs.Load()
	if ok == 0 {
		return 0
	}
	return m.TotalLatencyMs.Load() / ok
}

type ProviderState int32

const (
	StateHealthy ProviderState = iota
	StateUnhealthy
	StateCircuitOpen
)

func (s ProviderState) String() string {
	switch s {
	case StateHealthy:
		return "HEALTHY"
	case StateUnhealthy:
		return "UNHEALTHY"
	case StateCircuitOpen:
		return "CIRCUIT_OPEN"
	}
	return "UNKNOWN"
}

type Provider struct {
	name             string
	url              string
	weight           int
	client           *fasthttp.Client
	metrics          ProviderMetrics
	state            atomic.Int32
	circuitOpenUntil atomic.Int64
}

func NewProvider(name, url string, weight int, client *fasthttp.Client) *Provider {
	return &Provider{name: name, url: url, weight: weight, client: client}
}

func (p *Provider) Name() string {
	return p.name
}

func (p *Provider) State() ProviderState {
	return ProviderState(p.state.Load())
}

func (p *Provider) SetState(s ProviderState) {
	p.state.Store(int32(s))
}

// IsAvailable closes an expired circuit as a side effect, letting the next
// request probe the provider.
func (p *Provider) IsAvailable() bool {
	switch p.State() {
	case StateCircuitOpen:
		if time.Now().UnixNano() > p.circuitOpenUntil.Load() {
			p.SetState(StateHealthy)
			p.metrics.ConsecutiveFails.Store(0)
			return true
		}
		return false
	case StateUnhealthy:
		return false
	}
	return true
}

// Score ranks available providers; higher is better.
func (p *Provider) Score() float64 {
	if !p.IsAvailable() {
		return 0
	}
	latency := 100.0 * (1.0 - float64(p.metrics.AvgLatencyMs())/5000.0)
	if latency < 0 {
		latency = 0
	}
	penalty := 1.0 - float64(p.metrics.ConsecutiveFails.Load())*0.1
	if penalty < 0.1 {
		penalty = 0.1
	}
	return (p.metrics.SuccessRate()*100*0.4 + latency*0.4 + float64(p.weight)*0.2) * penalty
}

type Config struct {
	Providers               []ProviderConfig
	Timeout                 time.Duration
	MaxRetries              int
	RetryDelay              time.Duration
	MaxConns                int
	HealthCheckInterval     time.Duration
	CircuitBreakerThreshold int
	CircuitBreakerTimeout   time.Duration
}

type ProviderConfig struct {
	Name   string
	URL    string
	Weight int
}

type Client struct {
	config    Config
	providers []*Provider
	stopCh    chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

func NewClient(config Config) (*Client, error) {
	if len(config.Providers) == 0 {
		return nil, errors.New("at least one provider is required")
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}
	if config.CircuitBreakerThreshold <= 0 {
		config.CircuitBreakerThreshold = 5
	}
	if config.CircuitBreakerTimeout <= 0 {
		config.CircuitBreakerTimeout = 30 * time.Second
	}

	c := &Client{
		config: config,
		stopCh: make(chan struct{}),
	}
	for _, pc := range config.Providers {
		if pc.URL == "" {
			continue
		}
		hc := &fasthttp.Client{
			MaxConnsPerHost:     config.MaxConns,
			ReadTimeout:         config.Timeout,
			WriteTimeout:        config.Timeout,
			MaxIdleConnDuration: time.Minute,
		}
		c.providers = append(c.providers, NewProvider(pc.Name, pc.URL, pc.Weight, hc))
		logger.Info("notification provider initialized", "name", pc.Name, "url", pc.URL, "weight", pc.Weight)
	}
	if len(c.providers) == 0 {
		return nil, errors.New("at least one provider url is required")
	}

	if config.HealthCheckInterval > 0 {
		c.wg.Add(1)
		go c.healthChecker()
	}
	return c, nil
}

func (c *Client) SelectProvider() (*Provider, error) {
	var best *Provider
	var bestScore float64
	for _, p := range c.providers {
		if score := p.Score(); score > bestScore {
			best, bestScore = p, score
		}
	}
	if best == nil {
		return nil, ErrNoAvailableProviders
	}
	return best, nil
}

// Send hands one notification to the best provider, retrying on transport
// errors. A FAILED answer from the provider is not retried here; it comes
// back as ErrRejected so the queue can decide.
func (c *Client) Send(ctx context.Context, req *SendRequest) (*SendResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.config.RetryDelay):
			}
		}

		provider, err := c.SelectProvider()
		if err != nil {
			lastErr = err
			continue
		}

		start := time.Now()
		raw, err := c.do(ctx, provider, fasthttp.MethodPost, sendPath, body)
		if err != nil {
			provider.metrics.RecordFailure()
			c.tripBreaker(provider)
			logger.Warn("notification request failed", "provider", provider.name, "attempt", attempt+1, "error", err)
			lastErr = err
			continue
		}
		provider.metrics.RecordSuccess(time.Since(start).Milliseconds())

		var resp SendResponse
		if err := json.Unmarshal(raw, &resp); err != nil {
			return nil, fmt.Errorf("unmarshal response: %w", err)
		}
		if resp.Status == StatusFailed {
			return &resp, fmt.Errorf("%w: %s", ErrRejected, resp.ErrorMsg)
		}

		logger.Info("notification sent", "invitation_id", req.InvitationID, "channel", req.Channel, "provider", provider.name, "status", string(resp.Status))
		return &resp, nil
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", c.config.MaxRetries+1, lastErr)
}

func (c *Client) do(ctx context.Context, provider *Provider, method, path string, body []byte) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(provider.url + path)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")
	if body != nil {
		req.SetBody(body)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.config.Timeout)
	}
	if err := provider.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	status := resp.StatusCode()
	if status != fasthttp.StatusOK && status != fasthttp.StatusAccepted {
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", status, resp.Body())
	}

	out := make([]byte, len(resp.Body()))
	copy(out, resp.Body())
	return out, nil
}

func (c *Client) tripBreaker(p *Provider) {
	fails := p.metrics.ConsecutiveFails.Load()
	if fails < int32(c.config.CircuitBreakerThreshold) {
		return
	}
	p.circuitOpenUntil.Store(time.Now().Add(c.config.CircuitBreakerTimeout).UnixNano())
	p.SetState(StateCircuitOpen)
	logger.Warn("circuit breaker opened", "provider", p.name, "consecutive_fails", fails, "timeout", c.config.CircuitBreakerTimeout)
}

func (c *Client) healthChecker() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.HealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.checkHealth()
		case <-c.stopCh:
			return
		}
	}
}

func (c *Client) checkHealth() {
	ctx, cancel := context.WithTimeout(context.Background(), c.config.Timeout)
	defer cancel()

	for _, p := range c.providers {
		if p.State() == StateCircuitOpen {
			continue
		}
		next := StateUnhealthy
		if raw, err := c.do(ctx, p, fasthttp.MethodGet, "/health", nil); err == nil {
			var health struct {
				Status string `json:"status"`
			}
			if json.Unmarshal(raw, &health) == nil && health.Status == "healthy" {
				next = StateHealthy
			}
		}
		if prev := p.State(); prev != next {
			p.SetState(next)
			logger.Info("provider state changed", "provider", p.name, "old_state", prev.String(), "new_state", next.String())
		}
	}
}

func (c *Client) Close() error {
	c.stopOnce.Do(func() { close(c.stopCh) })
	c.wg.Wait()
	return nil
}
