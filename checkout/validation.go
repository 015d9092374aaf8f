package checkout

import (
	"fmt"
	"strings"

	"github.com/harborline/storefront-go/commerce"
	apperrors "github.com/harborline/storefront-go/internal/errors"
)

// Precondition bounds enforced before any quote request leaves the client.
const (
	MinAddressLength = 10
	MaxAddressLength = 500
	MinWeightGrams   = 1.0
	MaxWeightGrams   = 30000.0
)

// ValidateDestination checks the quote preconditions: every destination
// field present, address text within bounds, parcel weight within the
// carrier envelope. A violation fails fast with a validation error and no
// network call is made.
func ValidateDestination(addr commerce.Address, totalWeightGrams float64) error {
	fields := map[string]string{}

	required := []struct {
		name  string
		value string
	}{
		{"recipient_name", addr.RecipientName},
		{"recipient_phone", addr.RecipientPhone},
		{"country", addr.Country},
		{"city", addr.City},
		{"postal_code", addr.PostalCode},
		{"address", addr.Street},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			fields[f.name] = f.name + " is required"
		}
	}

	if street := strings.TrimSpace(addr.Street); street != "" {
		if len(street) < MinAddressLength || len(street) > MaxAddressLength {
			fields["address"] = fmt.Sprintf("address must be between %d and %d characters", MinAddressLength, MaxAddressLength)
		}
	}

	if totalWeightGrams < MinWeightGrams || totalWeightGrams > MaxWeightGrams {
		fields["total_weight"] = fmt.Sprintf("total weight must be between %.0fg and %.0fg", MinWeightGrams, MaxWeightGrams)
	}

	if len(fields) > 0 {
		return apperrors.Validation("invalid shipping destination", fields)
	}
	return nil
}

// ValidateSelection checks that the chosen option carries everything the
// fulfilment partner requires before an order is sent: the courier triple
// for domestic shipments, a zone id for international ones. A malformed
// selection is refused here rather than sent to the server.
func ValidateSelection(destination commerce.DestinationType, selected commerce.ShippingOption) error {
	fields := map[string]string{}

	if destination == commerce.DestinationInternational {
		if selected.ZoneID == "" {
			fields["zone_id"] = "shipping zone is required for international orders"
		}
	} else {
		if selected.CourierCode == "" {
			fields["courier_code"] = "courier code is required"
		}
		if selected.CourierService == "" {
			fields["courier_service"] = "courier service code is required"
		}
		if selected.RateID == "" {
			fields["shipping_rate_id"] = "shipping rate identifier is required"
		}
	}

	if len(fields) > 0 {
		return apperrors.Validation("incomplete shipping selection", fields)
	}
	return nil
}
