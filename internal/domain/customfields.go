package domain

import "github.com/samber/lo"

const (
	FieldDonorName = "donor_name"
	FieldProject   = "project"

	DefaultDonorName = "Anonymous"
	DefaultProject   = "General Donation"
	NotProvided      = "Not provided"
)

// CustomField is one display/variable/value triple carried in gateway metadata.
type CustomField struct {
	DisplayName  string `json:"display_name"`
	VariableName string `json:"variable_name"`
	Value        string `json:"value"`
}

// CustomFields is the ordered custom field list of a transaction.
type CustomFields []CustomField

// Lookup returns the value of the first field named key. Missing keys and
// empty values yield fallback.
func (f CustomFields) Lookup(key, fallback string) string {
	field, ok := lo.Find(f, func(cf CustomField) bool {
		return cf.VariableName == key
	})
	if !ok || field.Value == "" {
		return fallback
	}
	return field.Value
}

// DonationCustomFields builds the fields the webhook side reads back.
func DonationCustomFields(donorName, project string) CustomFields {
	return CustomFields{
		{DisplayName: "Donor Name", VariableName: FieldDonorName, Value: donorName},
		{DisplayName: "Project", VariableName: FieldProject, Value: project},
	}
}
