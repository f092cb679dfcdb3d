package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"donations/internal/domain"
	"donations/internal/signature"
	"donations/internal/webhook"
)

const maxWebhookBody = 1 << 20

// DonationsWebhook authenticates a gateway delivery and dispatches it. Once
// the signature has been verified the response is 200 regardless of whether
// notifications went out, so the gateway does not redeliver.
func (a *App) DonationsWebhook(w http.ResponseWriter, r *http.Request) {
	log := a.requestLogger(r)
	defer func() {
		if rec := recover(); rec != nil {
			err := domain.InternalError("Webhook processing failed", fmt.Errorf("panic: %v", rec))
			log.Error().Err(err).Msg("webhook processing failed")
			a.error(w, domain.HTTPStatus(err), domain.PublicMessage(err, ""))
		}
	}()

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.error(w, http.StatusRequestEntityTooLarge, "Payload too large")
			return
		}
		log.Warn().Err(err).Msg("webhook body unreadable")
		a.error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	delivery, err := webhook.Accept(a.Verifier, raw, r.Header.Get(signature.Header))
	if err != nil {
		log.Warn().Err(err).Msg("webhook rejected")
		a.error(w, domain.HTTPStatus(err), domain.PublicMessage(err, "Invalid signature"))
		return
	}

	res, err := a.Dispatcher.Handle(context.WithoutCancel(r.Context()), delivery)
	if err != nil {
		log.Warn().Err(err).Msg("webhook payload rejected")
		a.error(w, domain.HTTPStatus(err), domain.PublicMessage(err, "Invalid JSON payload"))
		return
	}

	log.Debug().
		Str("event", res.Event.Name).
		Str("reference", res.Reference).
		Bool("handled", res.Handled).
		Bool("duplicate", res.Duplicate).
		Bool("notified", res.Notified).
		Msg("webhook processed")
	a.json(w, http.StatusOK, map[string]string{"status": "success"})
}
