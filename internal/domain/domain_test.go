package domain

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func TestCustomFieldsLookup(t *testing.T) {
	tests := []struct {
		name     string
		fields   CustomFields
		key      string
		fallback string
		want     string
	}{
		{
			name:     "missing key uses fallback",
			fields:   CustomFields{{VariableName: "project", Value: "Wells"}},
			key:      FieldDonorName,
			fallback: DefaultDonorName,
			want:     "Anonymous",
		},
		{
			name:     "present key",
			fields:   CustomFields{{VariableName: "donor_name", Value: "Jane"}},
			key:      FieldDonorName,
			fallback: DefaultDonorName,
			want:     "Jane",
		},
		{
			name:     "empty sequence",
			fields:   CustomFields{},
			key:      FieldProject,
			fallback: DefaultProject,
			want:     "General Donation",
		},
		{
			name:     "nil sequence",
			key:      FieldProject,
			fallback: DefaultProject,
			want:     "General Donation",
		},
		{
			name: "duplicate keys first wins",
			fields: CustomFields{
				{VariableName: "donor_name", Value: "First"},
				{VariableName: "donor_name", Value: "Second"},
			},
			key:      FieldDonorName,
			fallback: DefaultDonorName,
			want:     "First",
		},
		{
			name:     "empty value uses fallback",
			fields:   CustomFields{{VariableName: "donor_name", Value: ""}},
			key:      FieldDonorName,
			fallback: DefaultDonorName,
			want:     "Anonymous",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.fields.Lookup(tc.key, tc.fallback); got != tc.want {
				t.Fatalf("Lookup(%q) = %q, want %q", tc.key, got, tc.want)
			}
		})
	}
}

func TestWebhookEventDataToleratesMetadataShapes(t *testing.T) {
	tests := []struct {
		name        string
		payload     string
		wantDonor   string
		wantProject string
	}{
		{
			name:        "absent metadata",
			payload:     `{"reference":"r1"}`,
			wantDonor:   DefaultDonorName,
			wantProject: DefaultProject,
		},
		{
			name:        "null metadata",
			payload:     `{"reference":"r1","metadata":null}`,
			wantDonor:   DefaultDonorName,
			wantProject: DefaultProject,
		},
		{
			name:        "string metadata",
			payload:     `{"reference":"r1","metadata":""}`,
			wantDonor:   DefaultDonorName,
			wantProject: DefaultProject,
		},
		{
			name:        "malformed custom fields",
			payload:     `{"reference":"r1","metadata":{"custom_fields":"oops"}}`,
			wantDonor:   DefaultDonorName,
			wantProject: DefaultProject,
		},
		{
			name:        "populated",
			payload:     `{"reference":"r1","metadata":{"custom_fields":[{"display_name":"Donor Name","variable_name":"donor_name","value":"Jane"},{"display_name":"Project","variable_name":"project","value":"Wells"}]}}`,
			wantDonor:   "Jane",
			wantProject: "Wells",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var data WebhookEventData
			if err := json.Unmarshal([]byte(tc.payload), &data); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got := data.DonorName(); got != tc.wantDonor {
				t.Fatalf("DonorName() = %q, want %q", got, tc.wantDonor)
			}
			if got := data.Project(); got != tc.wantProject {
				t.Fatalf("Project() = %q, want %q", got, tc.wantProject)
			}
		})
	}
}

func TestParseEvent(t *testing.T) {
	if got := ParseEvent("charge.success"); got.Kind != EventChargeSuccess {
		t.Fatalf("charge.success kind = %v", got.Kind)
	}
	if got := ParseEvent("charge.failed"); got.Kind != EventChargeFailed {
		t.Fatalf("charge.failed kind = %v", got.Kind)
	}
	got := ParseEvent("transfer.success")
	if got.Known() {
		t.Fatalf("transfer.success should be unknown")
	}
	if got.Name != "transfer.success" {
		t.Fatalf("unknown event lost its name: %q", got.Name)
	}
}

func TestDecodeEnvelope(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantEvent string
		wantKnown bool
		wantRef   string
		wantPaid  int64
		wantBank  string
		wantDonor string
	}{
		{
			name:      "unknown event with array data",
			body:      `{"event":"subscription.expiring_cards","data":[{"expiry_date":"12/2021","customer":{"email":"a@b.com"}}]}`,
			wantEvent: "subscription.expiring_cards",
		},
		{
			name:      "unknown event with string id",
			body:      `{"event":"transfer.reversed","data":{"id":"TRF_1","reference":"TRF-1","amount":"10.00"}}`,
			wantEvent: "transfer.reversed",
		},
		{
			name:      "known event with drifted optional fields",
			body:      `{"event":"charge.success","data":{"id":"77","reference":"TOEI-1","amount":5000,"fees":75.5,"authorization":{"exp_month":12,"bank":"Test Bank"},"customer":{"id":"CUS_1","email":"a@b.com","phone":2348000000000},"metadata":{"custom_fields":[{"variable_name":"donor_name","value":"Jane"}]}}}`,
			wantEvent: "charge.success",
			wantKnown: true,
			wantRef:   "TOEI-1",
			wantPaid:  5000,
			wantBank:  "Test Bank",
			wantDonor: "Jane",
		},
		{
			name:      "known event with array data",
			body:      `{"event":"charge.failed","data":[1,2]}`,
			wantEvent: "charge.failed",
			wantKnown: true,
			wantDonor: DefaultDonorName,
		},
		{
			name:      "known event without data",
			body:      `{"event":"charge.success"}`,
			wantEvent: "charge.success",
			wantKnown: true,
			wantDonor: DefaultDonorName,
		},
		{
			name: "non-string event",
			body: `{"event":5,"data":{"reference":"r"}}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env, err := DecodeEnvelope([]byte(tc.body))
			if err != nil {
				t.Fatalf("DecodeEnvelope: %v", err)
			}
			if env.Event != tc.wantEvent || env.Type().Known() != tc.wantKnown {
				t.Fatalf("event = %q known=%v", env.Event, env.Type().Known())
			}
			if env.Data.Reference != tc.wantRef || env.Data.Amount != tc.wantPaid {
				t.Fatalf("unexpected data: %+v", env.Data)
			}
			if !tc.wantKnown {
				return
			}
			if tc.wantBank != "" && (env.Data.Authorization == nil || env.Data.Authorization.Bank != tc.wantBank) {
				t.Fatalf("authorization = %+v", env.Data.Authorization)
			}
			if got := env.Data.DonorName(); got != tc.wantDonor {
				t.Fatalf("DonorName() = %q, want %q", got, tc.wantDonor)
			}
		})
	}
}

func TestDecodeEnvelopeRejectsNonObjects(t *testing.T) {
	for _, body := range []string{`{"event":`, `not json`, `[{"event":"charge.success"}]`, `"charge.success"`, ``} {
		_, err := DecodeEnvelope([]byte(body))
		var de *Error
		if !errors.As(err, &de) || de.Kind != KindValidation || de.Message != "Invalid JSON payload" {
			t.Fatalf("DecodeEnvelope(%q) = %v", body, err)
		}
	}
}

func TestDedupKey(t *testing.T) {
	env := WebhookEnvelope{Event: "charge.success", Data: WebhookEventData{Reference: "TOEI-1"}}
	if got := env.DedupKey(); got != "charge.success:TOEI-1" {
		t.Fatalf("DedupKey() = %q", got)
	}
	if got := (WebhookEnvelope{Event: "charge.success"}).DedupKey(); got != "" {
		t.Fatalf("DedupKey() without reference = %q, want empty", got)
	}
}

func TestEventDataHelpers(t *testing.T) {
	msg := "Insufficient funds"
	phone := "+2348000000000"
	data := WebhookEventData{
		Channel:       "card",
		Message:       &msg,
		Customer:      Customer{Phone: &phone},
		Authorization: &Authorization{Bank: "Test Bank"},
	}
	if got := data.PaymentMethod(); got != "card - Test Bank" {
		t.Fatalf("PaymentMethod() = %q", got)
	}
	if got := data.FailureReason(); got != msg {
		t.Fatalf("FailureReason() = %q", got)
	}
	if got := data.Customer.PhoneOrDefault(); got != phone {
		t.Fatalf("PhoneOrDefault() = %q", got)
	}

	empty := WebhookEventData{Channel: "bank"}
	if got := empty.PaymentMethod(); got != "bank - N/A" {
		t.Fatalf("PaymentMethod() = %q", got)
	}
	if got := empty.FailureReason(); got != "Payment declined" {
		t.Fatalf("FailureReason() = %q", got)
	}
	if got := empty.Customer.PhoneOrDefault(); got != NotProvided {
		t.Fatalf("PhoneOrDefault() = %q", got)
	}
}

func TestDonationRequestValidate(t *testing.T) {
	base := func() DonationRequest {
		return DonationRequest{Email: "a@b.com", Amount: 5000, Currency: "ngn", Name: "A"}
	}
	tests := []struct {
		name    string
		mutate  func(r *DonationRequest)
		wantMsg string
	}{
		{name: "valid"},
		{name: "amount below minimum", mutate: func(r *DonationRequest) { r.Amount = 500 }, wantMsg: "Amount too small"},
		{name: "missing email", mutate: func(r *DonationRequest) { r.Email = "" }, wantMsg: "Missing required fields"},
		{name: "missing name", mutate: func(r *DonationRequest) { r.Name = " " }, wantMsg: "Missing required fields"},
		{name: "zero amount", mutate: func(r *DonationRequest) { r.Amount = 0 }, wantMsg: "Missing required fields"},
		{name: "bad email", mutate: func(r *DonationRequest) { r.Email = "not-an-email" }, wantMsg: "Invalid email address"},
		{name: "unknown currency", mutate: func(r *DonationRequest) { r.Currency = "ZZQ" }, wantMsg: "Unsupported currency"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := base()
			if tc.mutate != nil {
				tc.mutate(&req)
			}
			req.Normalize()
			err := req.Validate(1000)
			if tc.wantMsg == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				if req.Currency != "NGN" {
					t.Fatalf("currency not normalized: %q", req.Currency)
				}
				if req.Project != DefaultProject {
					t.Fatalf("project default = %q", req.Project)
				}
				return
			}
			var de *Error
			if !errors.As(err, &de) || de.Kind != KindValidation {
				t.Fatalf("Validate() error = %v, want validation error", err)
			}
			if de.Message != tc.wantMsg {
				t.Fatalf("message = %q, want %q", de.Message, tc.wantMsg)
			}
			if HTTPStatus(err) != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", HTTPStatus(err))
			}
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ValidationError("bad", nil), http.StatusBadRequest},
		{SignatureError("sig", ErrInvalidSignature), http.StatusBadRequest},
		{ConfigurationError("cfg", nil), http.StatusInternalServerError},
		{UpstreamError("gw", 0, nil), http.StatusBadGateway},
		{UpstreamError("gw", http.StatusBadRequest, nil), http.StatusBadRequest},
		{InternalError("boom", nil), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Fatalf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
	wrapped := SignatureError("Invalid signature", ErrInvalidSignature)
	if !errors.Is(wrapped, ErrInvalidSignature) {
		t.Fatalf("errors.Is should see through *Error")
	}
}

func TestFormatAmount(t *testing.T) {
	tests := map[int64]string{
		5000:   "50.00",
		1000:   "10.00",
		12345:  "123.45",
		99:     "0.99",
		100000: "1000.00",
	}
	for amount, want := range tests {
		if got := FormatAmount(amount); got != want {
			t.Fatalf("FormatAmount(%d) = %q, want %q", amount, got, want)
		}
	}
}
