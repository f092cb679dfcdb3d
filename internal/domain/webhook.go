package domain

import (
	"bytes"
	"encoding/json"
	"errors"
)

// EventKind enumerates the webhook events this service acts on.
type EventKind int

const (
	// EventUnknown covers every vendor event we do not handle yet.
	EventUnknown EventKind = iota
	EventChargeSuccess
	EventChargeFailed
)

const (
	EventNameChargeSuccess = "charge.success"
	EventNameChargeFailed  = "charge.failed"
)

// Event is a parsed webhook discriminant. Name always holds the raw vendor string.
type Event struct {
	Kind EventKind
	Name string
}

// ParseEvent maps a raw vendor event name onto a known kind, falling back to EventUnknown.
func ParseEvent(name string) Event {
	switch name {
	case EventNameChargeSuccess:
		return Event{Kind: EventChargeSuccess, Name: name}
	case EventNameChargeFailed:
		return Event{Kind: EventChargeFailed, Name: name}
	default:
		return Event{Kind: EventUnknown, Name: name}
	}
}

// Known reports whether the event has a handler.
func (e Event) Known() bool { return e.Kind != EventUnknown }

func (e Event) String() string { return e.Name }

// WebhookEnvelope is the top-level payload of one webhook delivery.
type WebhookEnvelope struct {
	Event string           `json:"event"`
	Data  WebhookEventData `json:"data"`
}

// DecodeEnvelope parses a webhook body. Only bodies that are not a JSON
// object are rejected. data is decoded for known events alone, and fields
// whose type drifted from the documented shape are left at their zero value.
func DecodeEnvelope(body []byte) (WebhookEnvelope, error) {
	var head struct {
		Event json.RawMessage `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &head); err != nil {
		return WebhookEnvelope{}, ValidationError("Invalid JSON payload", err)
	}
	var env WebhookEnvelope
	_ = json.Unmarshal(head.Event, &env.Event)
	if env.Type().Known() {
		env.Data = DecodeEventData(head.Data)
	}
	return env, nil
}

// DecodeEventData decodes a transaction object leniently. A value that is
// not an object yields the zero value; mistyped fields are skipped.
func DecodeEventData(raw json.RawMessage) WebhookEventData {
	var data WebhookEventData
	if err := json.Unmarshal(raw, &data); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return WebhookEventData{}
		}
	}
	return data
}

// Type returns the parsed event discriminant.
func (e WebhookEnvelope) Type() Event { return ParseEvent(e.Event) }

// DedupKey identifies a delivery for the seen-set. It is empty when the payload carries no reference.
func (e WebhookEnvelope) DedupKey() string {
	if e.Data.Reference == "" {
		return ""
	}
	return e.Event + ":" + e.Data.Reference
}

// WebhookEventData describes one payment attempt.
type WebhookEventData struct {
	ID              int64          `json:"id"`
	Domain          string         `json:"domain"`
	Status          string         `json:"status"`
	Reference       string         `json:"reference"`
	Amount          int64          `json:"amount"`
	Message         *string        `json:"message"`
	GatewayResponse string         `json:"gateway_response"`
	PaidAt          string         `json:"paid_at"`
	CreatedAt       string         `json:"created_at"`
	Channel         string         `json:"channel"`
	Currency        string         `json:"currency"`
	IPAddress       string         `json:"ip_address"`
	Metadata        *Metadata      `json:"metadata"`
	Fees            int64          `json:"fees"`
	Customer        Customer       `json:"customer"`
	Authorization   *Authorization `json:"authorization"`
}

// DonorName returns the donor_name custom field or the anonymous placeholder.
func (d WebhookEventData) DonorName() string {
	return d.customFields().Lookup(FieldDonorName, DefaultDonorName)
}

// Project returns the project custom field or the general placeholder.
func (d WebhookEventData) Project() string {
	return d.customFields().Lookup(FieldProject, DefaultProject)
}

// FailureReason returns the gateway message for a failed charge.
func (d WebhookEventData) FailureReason() string {
	if d.Message == nil || *d.Message == "" {
		return "Payment declined"
	}
	return *d.Message
}

// PaymentMethod renders channel and issuing bank, e.g. "card - Test Bank".
func (d WebhookEventData) PaymentMethod() string {
	bank := "N/A"
	if d.Authorization != nil && d.Authorization.Bank != "" {
		bank = d.Authorization.Bank
	}
	return d.Channel + " - " + bank
}

func (d WebhookEventData) customFields() CustomFields {
	if d.Metadata == nil {
		return nil
	}
	return d.Metadata.CustomFields
}

// Customer is the payer as reported by the gateway.
type Customer struct {
	ID           int64   `json:"id"`
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	Email        string  `json:"email"`
	CustomerCode string  `json:"customer_code"`
	Phone        *string `json:"phone"`
	RiskAction   string  `json:"risk_action"`
}

// PhoneOrDefault returns the phone number or "Not provided".
func (c Customer) PhoneOrDefault() string {
	if c.Phone == nil || *c.Phone == "" {
		return NotProvided
	}
	return *c.Phone
}

// Authorization holds the reusable card/bank authorization of a charge.
type Authorization struct {
	AuthorizationCode string `json:"authorization_code"`
	Bin               string `json:"bin"`
	Last4             string `json:"last4"`
	ExpMonth          string `json:"exp_month"`
	ExpYear           string `json:"exp_year"`
	Channel           string `json:"channel"`
	CardType          string `json:"card_type"`
	Bank              string `json:"bank"`
	CountryCode       string `json:"country_code"`
	Brand             string `json:"brand"`
	Reusable          bool   `json:"reusable"`
	Signature         string `json:"signature"`
}

// Metadata is the vendor metadata bag. Only custom_fields is interpreted.
type Metadata struct {
	CustomFields CustomFields `json:"custom_fields"`
}

// UnmarshalJSON tolerates the shapes the gateway emits for empty metadata
// ("", 0, null) and malformed custom_fields by decoding to an empty value.
func (m *Metadata) UnmarshalJSON(b []byte) error {
	*m = Metadata{}
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	var raw struct {
		CustomFields json.RawMessage `json:"custom_fields"`
	}
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil
	}
	var fields CustomFields
	if err := json.Unmarshal(raw.CustomFields, &fields); err == nil {
		m.CustomFields = fields
	}
	return nil
}
