package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"donations/internal/domain"
	"donations/internal/infra"
	"donations/internal/middleware"
	"donations/internal/notify"
	"donations/internal/providers/paystack"
	"donations/internal/reference"
	"donations/internal/signature"
	"donations/internal/webhook"
)

// Gateway creates and verifies transactions on the payment provider.
type Gateway interface {
	InitializeTransaction(ctx context.Context, req paystack.InitializeRequest) (*domain.Checkout, error)
	VerifyTransaction(ctx context.Context, reference string) (*paystack.Verification, error)
}

// Dependencies overrides collaborators NewApp would otherwise build from config.
type Dependencies struct {
	Store    domain.DeliveryStore
	Gateway  Gateway
	Notifier notify.Notifier
}

type App struct {
	Config     *infra.Config
	Logger     infra.Logger
	Verifier   *signature.Verifier
	Dispatcher *webhook.Dispatcher
	Gateway    Gateway
	Notifier   notify.Notifier
	References *reference.Generator
}

func NewApp(cfg *infra.Config, logger infra.Logger, deps Dependencies) (*App, error) {
	verifier, err := signature.NewVerifier(cfg.PaystackSecretKey)
	if err != nil {
		return nil, err
	}

	gateway := deps.Gateway
	if gateway == nil {
		client, err := paystack.NewClient(paystack.Options{
			SecretKey: cfg.PaystackSecretKey,
			BaseURL:   cfg.PaystackBaseURL,
			Timeout:   cfg.GatewayTimeout,
			Logger:    &logger,
		})
		if err != nil {
			return nil, domain.ConfigurationError("Server configuration error: Missing payment gateway credentials", err)
		}
		gateway = client
	}

	notifier := deps.Notifier
	if notifier == nil {
		notifier = notify.NewClient(notify.Options{
			AccessKey: cfg.Web3FormsKey,
			Endpoint:  cfg.Web3FormsURL,
			Timeout:   cfg.NotifyTimeout,
			Logger:    &logger,
		})
	}

	return &App{
		Config:   cfg,
		Logger:   logger,
		Verifier: verifier,
		Dispatcher: webhook.NewDispatcher(webhook.Options{
			Notifier:     notifier,
			Store:        deps.Store,
			TTL:          cfg.WebhookDedupTTL,
			Organization: cfg.OrganizationName,
			Logger:       &logger,
		}),
		Gateway:    gateway,
		Notifier:   notifier,
		References: reference.NewGenerator(cfg.ReferencePrefix),
	}, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

// referencedError carries the local reference so donors can quote it to support.
type referencedError struct {
	Error     string `json:"error"`
	Reference string `json:"reference"`
	Timestamp string `json:"timestamp"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, message string) {
	a.json(w, code, errorResponse{Error: message})
}

func (a *App) referenceError(w http.ResponseWriter, ref string, err error, fallback string) {
	a.json(w, domain.HTTPStatus(err), referencedError{
		Error:     domain.PublicMessage(err, fallback),
		Reference: ref,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *App) requestLogger(r *http.Request) infra.Logger {
	return a.Logger.With().Str("request_id", middleware.RequestIDFromContext(r.Context())).Logger()
}
