package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"donations/internal/domain"
)

const maxVerifyBody = 4 << 10

type verifyRequest struct {
	Reference string `json:"reference"`
}

type verifyResponse struct {
	Reference       string `json:"reference"`
	Status          string `json:"status"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	Channel         string `json:"channel,omitempty"`
	PaidAt          string `json:"paid_at,omitempty"`
	GatewayResponse string `json:"gateway_response,omitempty"`
	DonorName       string `json:"donor_name"`
	Project         string `json:"project"`
	Message         string `json:"message,omitempty"`
}

// DonationsVerify reports the gateway's status for a reference. It backs the
// callback page the donor lands on after checkout.
func (a *App) DonationsVerify(w http.ResponseWriter, r *http.Request) {
	log := a.requestLogger(r)

	var req verifyRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxVerifyBody)).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	ref := strings.TrimSpace(req.Reference)
	if ref == "" {
		a.error(w, http.StatusBadRequest, "Missing reference code")
		return
	}
	log = log.With().Str("reference", ref).Logger()

	v, err := a.Gateway.VerifyTransaction(r.Context(), ref)
	if err != nil {
		gwErr := classifyGatewayError(err, "Payment verification failed")
		log.Error().Err(err).Int("status", domain.HTTPStatus(gwErr)).Msg("transaction verification failed")
		a.referenceError(w, ref, gwErr, "Payment verification failed")
		return
	}

	txn := v.Transaction
	log.Info().Str("status", txn.Status).Msg("transaction verified")
	a.json(w, http.StatusOK, verifyResponse{
		Reference:       txn.Reference,
		Status:          txn.Status,
		Amount:          txn.Amount,
		Currency:        txn.Currency,
		Channel:         txn.Channel,
		PaidAt:          txn.PaidAt,
		GatewayResponse: txn.GatewayResponse,
		DonorName:       txn.DonorName(),
		Project:         txn.Project(),
		Message:         v.Message,
	})
}
