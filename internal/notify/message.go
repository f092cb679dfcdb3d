package notify

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"donations/internal/domain"
)

// Kind is the notification flavour.
type Kind int

const (
	KindIntentPending Kind = iota
	KindSuccess
	KindFailure
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindFailure:
		return "failure"
	default:
		return "intent_pending"
	}
}

// Message is one relay submission. Fields are sent as-is next to subject and from_name.
type Message struct {
	Kind      Kind
	Reference string
	Subject   string
	FromName  string
	Fields    map[string]any
}

func (m Message) payload(accessKey string) map[string]any {
	out := make(map[string]any, len(m.Fields)+3)
	for k, v := range m.Fields {
		out[k] = v
	}
	out["access_key"] = accessKey
	out["subject"] = m.Subject
	out["from_name"] = m.FromName
	return out
}

// displayName title-cases a donor name for subjects. Casers are stateful, so one is built per call.
func displayName(name string) string {
	return cases.Title(language.Und).String(name)
}

// Intent describes a donation that has been initiated but not yet paid.
type Intent struct {
	Reference string
	Request   domain.DonationRequest
	Country   string
}

// IntentPending builds the notification fired when a donation is initiated.
func IntentPending(org string, in Intent) Message {
	req := in.Request
	amount := domain.FormatAmount(req.Amount)
	phone := req.Phone
	if phone == "" {
		phone = domain.NotProvided
	}
	fields := map[string]any{
		"donation_reference": in.Reference,
		"name":               req.Name,
		"email":              req.Email,
		"phone":              phone,
		"project":            req.Project,
		"currency":           req.Currency,
		"amount":             amount,
		"status":             "Pending",
		"message":            "Donation initiated: " + req.Currency + " " + amount + " for " + req.Project + " project. Payment pending.",
	}
	if in.Country != "" {
		fields["country"] = in.Country
	}
	return Message{
		Kind:      KindIntentPending,
		Reference: in.Reference,
		Subject:   "New Donation Intent: " + displayName(req.Name) + " for " + req.Project,
		FromName:  org,
		Fields:    fields,
	}
}

// ChargeSucceeded builds the confirmation notification for a successful charge.
func ChargeSucceeded(org string, data domain.WebhookEventData) Message {
	donor := data.DonorName()
	return Message{
		Kind:      KindSuccess,
		Reference: data.Reference,
		Subject:   "✅ Donation Confirmed: " + displayName(donor),
		FromName:  org + " Donation Confirmed",
		Fields: map[string]any{
			"name":             donor,
			"email":            data.Customer.Email,
			"phone":            data.Customer.PhoneOrDefault(),
			"amount":           domain.FormatAmount(data.Amount),
			"currency":         data.Currency,
			"project":          data.Project(),
			"reference":        data.Reference,
			"transaction_id":   data.ID,
			"status":           "Confirmed",
			"paid_at":          data.PaidAt,
			"gateway_response": data.GatewayResponse,
			"payment_method":   data.PaymentMethod(),
		},
	}
}

// ChargeFailed builds the notification for a declined or failed charge.
func ChargeFailed(org string, data domain.WebhookEventData) Message {
	donor := data.DonorName()
	return Message{
		Kind:      KindFailure,
		Reference: data.Reference,
		Subject:   "❌ Donation Failed: " + displayName(donor),
		FromName:  org + " Donation Failed",
		Fields: map[string]any{
			"name":             donor,
			"email":            data.Customer.Email,
			"phone":            data.Customer.PhoneOrDefault(),
			"amount":           domain.FormatAmount(data.Amount),
			"currency":         data.Currency,
			"project":          data.Project(),
			"reference":        data.Reference,
			"transaction_id":   data.ID,
			"status":           "Failed",
			"gateway_response": data.GatewayResponse,
			"failure_reason":   data.FailureReason(),
		},
	}
}
