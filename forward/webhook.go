package forward

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"

	"github.com/docstream/cdc-worker/cdc"
)

type WebhookConfig struct {
	Url         string        `envconfig:"CDC_WEBHOOK_URL"`
	Secret      string        `envconfig:"CDC_WEBHOOK_SECRET"`
	Timeout     time.Duration `envconfig:"CDC_WEBHOOK_TIMEOUT" default:"10s"`
	TokenTTL    time.Duration `envconfig:"CDC_WEBHOOK_TOKEN_TTL" default:"1m"`
	EventSource string        `envconfig:"CDC_EVENT_SOURCE" default:"cdc-worker"`
}

func NewWebhookConfig() (WebhookConfig, error) {
	cfg := WebhookConfig{}
	err := envconfig.Process("", &cfg)
	return cfg, err
}

// WebhookForwarder delivers change events to an HTTP endpoint as CloudEvents,
// authenticated with a short-lived HS256 bearer token.
type WebhookForwarder[Document any] struct {
	client *resty.Client
	config WebhookConfig
	logger *zap.SugaredLogger
}

func NewWebhookForwarder[Document any](config WebhookConfig, logger *zap.SugaredLogger) *WebhookForwarder[Document] {
	client := resty.New().SetTimeout(config.Timeout)
	return &WebhookForwarder[Document]{
		client: client,
		config: config,
		logger: logger,
	}
}

func (w *WebhookForwarder[Document]) OnEvent(ctx context.Context, event cdc.Event[Document]) error {
	ce, err := NewCloudEvent(w.config.EventSource, event)
	if err != nil {
		return err
	}
	body, err := json.Marshal(ce)
	if err != nil {
		return fmt.Errorf("encoding cloud event: %w", err)
	}
	token, err := w.signToken()
	if err != nil {
		return fmt.Errorf("signing webhook token: %w", err)
	}

	response, err := w.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/cloudevents+json").
		SetAuthToken(token).
		SetBody(body).
		Post(w.config.Url)
	if err != nil {
		return fmt.Errorf("delivering change event: %w", err)
	}
	if response.IsError() {
		return fmt.Errorf("unexpected status code %v", response.StatusCode())
	}

	w.logger.Debugw("delivered change event",
		"url", w.config.Url,
		"operationType", event.OperationType,
		"status", response.StatusCode())
	return nil
}

func (w *WebhookForwarder[Document]) signToken() (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": w.config.EventSource,
		"iat": now.Unix(),
		"exp": now.Add(w.config.TokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(w.config.Secret))
}
