package checkout

import (
	"strings"

	"bookcheckout/models"
)

// SelectRegion returns the region priced in currency, or nil.
func SelectRegion(regions []models.Region, currency string) *models.Region {
	for i := range regions {
		if strings.EqualFold(regions[i].CurrencyCode, currency) {
			return &regions[i]
		}
	}
	return nil
}

// matchProvider finds the first provider whose id contains vendor,
// case-insensitively.
func matchProvider(providers []models.PaymentProvider, vendor string) (string, bool) {
	vendor = strings.ToLower(vendor)
	if vendor == "" {
		return "", false
	}
	for _, p := range providers {
		if strings.Contains(strings.ToLower(p.ID), vendor) {
			return p.ID, true
		}
	}
	return "", false
}

// ResolveProvider picks the vendor's provider from the list, or fallback
// when none matches.
func ResolveProvider(providers []models.PaymentProvider, vendor, fallback string) string {
	if id, ok := matchProvider(providers, vendor); ok {
		return id
	}
	return fallback
}

// paymentProvider returns the provider detected on the cart while it still
// belongs to the configured vendor, or the fallback.
func (o *Orchestrator) paymentProvider(s *models.CheckoutSession) string {
	var detected []models.PaymentProvider
	if s.ProviderID != "" {
		detected = []models.PaymentProvider{{ID: s.ProviderID}}
	}
	return ResolveProvider(detected, o.settings.Vendor, o.settings.FallbackProvider)
}

// ValidateContact checks the fields payment cannot start without.
func ValidateContact(c models.Contact) error {
	var missing []string
	if strings.TrimSpace(c.FirstName) == "" {
		missing = append(missing, "first_name")
	}
	if strings.TrimSpace(c.Phone) == "" {
		missing = append(missing, "phone")
	}
	if strings.TrimSpace(c.Email) == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		return &PreconditionError{Code: CodeMissingFields, Missing: missing}
	}
	return nil
}

func trimContact(c models.Contact) models.Contact {
	return models.Contact{
		Email:     strings.TrimSpace(c.Email),
		FirstName: strings.TrimSpace(c.FirstName),
		LastName:  strings.TrimSpace(c.LastName),
		Phone:     strings.TrimSpace(c.Phone),
	}
}
