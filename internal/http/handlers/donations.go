package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sourcegraph/conc"

	"donations/internal/domain"
	"donations/internal/middleware"
	"donations/internal/notify"
	"donations/internal/providers/paystack"
)

const maxInitializeBody = 16 << 10

// DonationsInitialize validates a donation, notifies the organisation of the
// intent and creates the gateway transaction. Every error response carries
// the locally generated reference.
func (a *App) DonationsInitialize(w http.ResponseWriter, r *http.Request) {
	ref := a.References.New()
	log := a.requestLogger(r).With().Str("reference", ref).Logger()

	var req domain.DonationRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxInitializeBody)).Decode(&req); err != nil {
		a.referenceError(w, ref, domain.ValidationError("Invalid JSON payload", err), "")
		return
	}
	req.Normalize()
	if err := req.Validate(a.Config.MinDonationAmount); err != nil {
		log.Info().Err(err).Msg("donation rejected")
		a.referenceError(w, ref, err, "")
		return
	}

	// The relay call must not be cut short when the donor's browser goes away.
	notifyCtx := context.WithoutCancel(r.Context())
	intent := notify.IntentPending(a.Config.OrganizationName, notify.Intent{
		Reference: ref,
		Request:   req,
		Country:   middleware.CountryFromContext(r.Context()),
	})

	var wg conc.WaitGroup
	wg.Go(func() {
		notify.Send(notifyCtx, a.Notifier, &log, intent)
	})
	checkout, err := a.Gateway.InitializeTransaction(r.Context(), paystack.InitializeRequest{
		Email:       req.Email,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Reference:   ref,
		CallbackURL: a.Config.CallbackURL(),
		Metadata: paystack.Metadata{
			CustomFields: domain.DonationCustomFields(req.Name, req.Project),
			Name:         req.Name,
			Phone:        req.Phone,
			Project:      req.Project,
			Organization: a.Config.OrganizationName,
		},
	})
	wg.Wait()

	if err != nil {
		gwErr := classifyGatewayError(err, "Failed to initialize payment")
		log.Error().Err(err).Int("status", domain.HTTPStatus(gwErr)).Msg("transaction initialization failed")
		a.referenceError(w, ref, gwErr, "Failed to initialize payment")
		return
	}

	log.Info().Int64("amount", req.Amount).Str("currency", req.Currency).Msg("donation initialized")
	a.json(w, http.StatusOK, checkout)
}

// classifyGatewayError maps a gateway failure onto the response taxonomy.
// Client-side rejections keep the gateway's message and credential rejections
// become configuration errors. Everything else is a bad gateway.
func classifyGatewayError(err error, fallback string) error {
	var apiErr *paystack.APIError
	switch {
	case errors.As(err, &apiErr):
		switch apiErr.StatusCode {
		case http.StatusBadRequest, http.StatusNotFound, http.StatusUnprocessableEntity:
			return domain.UpstreamError(apiErr.Message, http.StatusBadRequest, err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return domain.ConfigurationError("Server configuration error: Payment gateway rejected credentials", err)
		default:
			return domain.UpstreamError("Payment gateway error: "+apiErr.Message, 0, err)
		}
	case errors.Is(err, paystack.ErrInvalidResponse):
		detail := strings.TrimPrefix(err.Error(), paystack.ErrInvalidResponse.Error()+": ")
		return domain.UpstreamError("Payment gateway error: "+detail, 0, err)
	default:
		return domain.UpstreamError(fallback, 0, err)
	}
}
