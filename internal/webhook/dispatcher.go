// Package webhook routes verified gateway deliveries to their notification paths.
package webhook

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"donations/internal/domain"
	"donations/internal/infra"
	"donations/internal/notify"
	"donations/internal/signature"
)

// DefaultDedupTTL bounds how long a reference stays in the seen-set.
const DefaultDedupTTL = 6 * time.Hour

// Delivery is a raw webhook body whose signature has been checked. It can
// only be obtained through Accept, so unverified bytes never reach Handle.
type Delivery struct {
	body []byte
}

// Accept verifies rawBody against the signature header value.
func Accept(v *signature.Verifier, rawBody []byte, provided string) (Delivery, error) {
	if err := v.Check(rawBody, provided); err != nil {
		return Delivery{}, err
	}
	return Delivery{body: rawBody}, nil
}

// Envelope decodes the verified body.
func (d Delivery) Envelope() (domain.WebhookEnvelope, error) {
	return domain.DecodeEnvelope(d.body)
}

// Result summarises one dispatch.
type Result struct {
	Event     domain.Event
	Reference string
	// Handled is false for events without a handler.
	Handled bool
	// Duplicate is true when the reference was already processed within the TTL.
	Duplicate bool
	// Notified is true when the relay accepted the notification.
	Notified bool
}

// Options configures a Dispatcher.
type Options struct {
	Notifier     notify.Notifier
	Store        domain.DeliveryStore
	TTL          time.Duration
	Organization string
	Logger       *infra.Logger
}

// Dispatcher switches on the event discriminant.
type Dispatcher struct {
	notifier notify.Notifier
	store    domain.DeliveryStore
	ttl      time.Duration
	org      string
	logger   *infra.Logger
}

// NewDispatcher builds a dispatcher. A nil Store disables de-duplication.
func NewDispatcher(opts Options) *Dispatcher {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultDedupTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Dispatcher{
		notifier: opts.Notifier,
		store:    opts.Store,
		ttl:      ttl,
		org:      opts.Organization,
		logger:   logger,
	}
}

// Handle decodes a verified delivery and dispatches it. The only error is a
// malformed body.
func (d *Dispatcher) Handle(ctx context.Context, delivery Delivery) (Result, error) {
	env, err := delivery.Envelope()
	if err != nil {
		return Result{}, err
	}
	return d.Dispatch(ctx, env), nil
}

// Dispatch routes env to its handler. It never fails: unknown events are
// logged and ignored, notification failures are logged and swallowed.
func (d *Dispatcher) Dispatch(ctx context.Context, env domain.WebhookEnvelope) Result {
	event := env.Type()
	res := Result{Event: event, Reference: env.Data.Reference}
	log := d.logger.With().Str("event", event.Name).Str("reference", res.Reference).Logger()

	var build func(org string, data domain.WebhookEventData) notify.Message
	switch event.Kind {
	case domain.EventChargeSuccess:
		log.Info().Msg("payment successful")
		build = notify.ChargeSucceeded
	case domain.EventChargeFailed:
		log.Info().Msg("payment failed")
		build = notify.ChargeFailed
	default:
		log.Info().Msg("unhandled webhook event")
		return res
	}
	res.Handled = true

	if d.seen(ctx, env, &log) {
		res.Duplicate = true
		log.Info().Msg("duplicate delivery ignored")
		return res
	}

	res.Notified = notify.Send(ctx, d.notifier, &log, build(d.org, env.Data))
	if res.Notified {
		log.Info().Msg("notification sent")
	}
	return res
}

// seen claims the delivery key. Store failures are logged and treated as a
// first sighting since notification sends are safe to repeat.
func (d *Dispatcher) seen(ctx context.Context, env domain.WebhookEnvelope, log *zerolog.Logger) bool {
	key := env.DedupKey()
	if d.store == nil || key == "" {
		return false
	}
	first, err := d.store.Claim(ctx, key, d.ttl)
	if err != nil {
		log.Warn().Err(err).Msg("delivery claim failed, dispatching anyway")
		return false
	}
	return !first
}
