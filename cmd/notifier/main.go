package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"
)

// Settings for the stand-in notification provider.
type Settings struct {
	Port         string        `env:"PORT,default=8081"`
	DeliveryRate float64       `env:"DELIVERY_RATE,default=1"`
	MinDelay     time.Duration `env:"MIN_DELAY,default=50ms"`
	MaxDelay     time.Duration `env:"MAX_DELAY,default=500ms"`
	// CallbackBaseURL is the api root that receives delivery callbacks,
	// e.g. http://localhost:8080/api/v1. Empty disables callbacks.
	CallbackBaseURL string `env:"CALLBACK_BASE_URL"`
	// CallbackSecret must match the api's NOTIFIER_CALLBACK_SECRET.
	CallbackSecret string `env:"CALLBACK_SECRET"`
}

type DeliveryStatus string

const (
	StatusAccepted DeliveryStatus = "ACCEPTED"
	StatusFailed   DeliveryStatus = "FAILED"
)

type SendRequest struct {
	InvitationID int64  `json:"invitation_id" binding:"required"`
	Channel      string `json:"channel" binding:"required,oneof=email sms whatsapp"`
	Recipient    string `json:"recipient" binding:"required"`
	Subject      string `json:"subject"`
	Body         string `json:"body" binding:"required"`
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

// Callback reports a delivered notification back to the api.
type Callback func(invitationID int64) error

// MockProvider accepts notifications and reports a share of them delivered.
type MockProvider struct {
	mu           sync.Mutex
	deliveryRate float64
	minDelay     time.Duration
	maxDelay     time.Duration
	providerID   string
	rng          *rand.Rand
	callback     Callback
}

func NewMockProvider(s Settings, callback Callback) *MockProvider {
	return &MockProvider{
		deliveryRate: s.DeliveryRate,
		minDelay:     s.MinDelay,
		maxDelay:     s.MaxDelay,
		providerID:   "MOCK_NOTIFIER_" + uuid.NewString()[:8],
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		callback:     callback,
	}
}

func (m *MockProvider) accept(req *SendRequest) *SendResponse {
	resp := &SendResponse{
		NotificationID: uuid.NewString(),
		InvitationID:   req.InvitationID,
		Channel:        req.Channel,
		ProviderID:     m.providerID,
		ProcessedAt:    time.Now(),
	}
	if !m.shouldSucceed() {
		resp.Status = StatusFailed
		resp.ErrorMsg = "recipient unreachable"
		log.Warn().
			Int64("invitation_id", req.InvitationID).
			Str("channel", req.Channel).
			Msg("notification rejected")
		return resp
	}

	resp.Status = StatusAccepted
	if m.callback != nil {
		delay := m.randomDelay()
		go func() {
			time.Sleep(delay)
			if err := m.callback(req.InvitationID); err != nil {
				log.Error().Err(err).Int64("invitation_id", req.InvitationID).Msg("delivery callback failed")
				return
			}
			log.Info().Int64("invitation_id", req.InvitationID).Dur("delay", delay).Msg("delivery reported")
		}()
	}
	return resp
}

func (m *MockProvider) randomDelay() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.maxDelay <= m.minDelay {
		return m.minDelay
	}
	return m.minDelay + time.Duration(m.rng.Int63n(int64(m.maxDelay-m.minDelay)))
}

func (m *MockProvider) shouldSucceed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rng.Float64() < m.deliveryRate
}

func (m *MockProvider) setDeliveryRate(rate float64) {
	m.mu.Lock()
	m.deliveryRate = rate
	m.mu.Unlock()
}

type Handler struct {
	provider *MockProvider
}

func NewHandler(provider *MockProvider) *Handler {
	return &Handler{provider: provider}
}

func (h *Handler) Send(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request",
			"details": err.Error(),
		})
		return
	}

	log.Info().
		Int64("invitation_id", req.InvitationID).
		Str("channel", req.Channel).
		Str("recipient", req.Recipient).
		Msg("notification received")

	c.JSON(http.StatusOK, h.provider.accept(&req))
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"provider_id": h.provider.providerID,
		"timestamp":   time.Now(),
	})
}

func (h *Handler) UpdateConfig(c *gin.Context) {
	var body struct {
		DeliveryRate *float64 `json:"delivery_rate"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	if body.DeliveryRate == nil || *body.DeliveryRate < 0 || *body.DeliveryRate > 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "delivery_rate must be between 0 and 1"})
		return
	}
	h.provider.setDeliveryRate(*body.DeliveryRate)
	log.Info().Float64("rate", *body.DeliveryRate).Msg("delivery rate updated")
	c.JSON(http.StatusOK, gin.H{"delivery_rate": *body.DeliveryRate})
}

func SetupRouter(handler *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request processed")
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/notifications/send", handler.Send)
		v1.PUT("/config", handler.UpdateConfig)
	}
	router.GET("/health", handler.Health)
	return router
}

// callbackSecretHeader carries the shared secret the api checks on callbacks.
const callbackSecretHeader = "X-Notifier-Secret"

// httpCallback posts to the api's delivery callback endpoint.
func httpCallback(baseURL, secret string, client *fasthttp.Client) Callback {
	baseURL = strings.TrimRight(baseURL, "/")
	return func(invitationID int64) error {
		req := fasthttp.AcquireRequest()
		resp := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseRequest(req)
		defer fasthttp.ReleaseResponse(resp)

		req.SetRequestURI(fmt.Sprintf("%s/invitations/%d/delivered", baseURL, invitationID))
		req.Header.SetMethod(fasthttp.MethodPost)
		req.Header.Set(callbackSecretHeader, secret)
		if err := client.DoTimeout(req, resp, 5*time.Second); err != nil {
			return err
		}
		if code := resp.StatusCode(); code != fasthttp.StatusOK {
			return fmt.Errorf("callback returned %d: %s", code, resp.Body())
		}
		return nil
	}
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	var settings Settings
	if _, err := env.UnmarshalFromEnviron(&settings); err != nil {
		log.Fatal().Err(err).Msg("invalid settings")
	}

	var callback Callback
	if settings.CallbackBaseURL != "" {
		if settings.CallbackSecret == "" {
			log.Warn().Msg("CALLBACK_SECRET is empty, the api will refuse delivery callbacks")
		}
		callback = httpCallback(settings.CallbackBaseURL, settings.CallbackSecret, &fasthttp.Client{MaxConnsPerHost: 64})
	}

	log.Info().
		Str("port", settings.Port).
		Float64("delivery_rate", settings.DeliveryRate).
		Str("callback", settings.CallbackBaseURL).
		Msg("starting mock notification provider")

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:         ":" + settings.Port,
		Handler:      SetupRouter(NewHandler(NewMockProvider(settings, callback))),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited")
}
