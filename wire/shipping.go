package wire

import "github.com/harborline/storefront-go/commerce"

// ShippingQuoteRequest is the body of POST /orders/calculate-shipping.
// TotalWeight is in grams.
type ShippingQuoteRequest struct {
	Country     string  `json:"country"`
	Province    string  `json:"province,omitempty"`
	City        string  `json:"city"`
	PostalCode  string  `json:"postal_code"`
	Address     string  `json:"address"`
	TotalWeight float64 `json:"total_weight"`
}

// ShippingOptionResponse is one priced service inside a quote. Domestic
// options carry the courier triple; international ones carry zone_id.
type ShippingOptionResponse struct {
	CourierCode      string `json:"courier_code,omitempty"`
	CourierService   string `json:"courier_service,omitempty"`
	RateID           string `json:"rate_id,omitempty"`
	ZoneID           string `json:"zone_id,omitempty"`
	ServiceName      string `json:"service_name"`
	Cost             int64  `json:"cost"`
	EstimatedDaysMin int    `json:"estimated_days_min"`
	EstimatedDaysMax int    `json:"estimated_days_max"`
}

// ShippingQuoteResponse is the reply to a quote request.
type ShippingQuoteResponse struct {
	ShippingType string                   `json:"shipping_type"`
	Options      []ShippingOptionResponse `json:"options"`
}

// NewShippingQuoteRequest maps a destination address and parcel weight onto
// the wire shape.
func NewShippingQuoteRequest(addr commerce.Address, totalWeightGrams float64) ShippingQuoteRequest {
	return ShippingQuoteRequest{
		Country:     addr.Country,
		Province:    addr.Province,
		City:        addr.City,
		PostalCode:  addr.PostalCode,
		Address:     addr.Street,
		TotalWeight: totalWeightGrams,
	}
}

// ToShippingQuote converts a quote reply into the domain model.
func ToShippingQuote(dto ShippingQuoteResponse) commerce.ShippingQuote {
	options := make([]commerce.ShippingOption, 0, len(dto.Options))
	for _, o := range dto.Options {
		options = append(options, commerce.ShippingOption{
			CourierCode:      o.CourierCode,
			CourierService:   o.CourierService,
			RateID:           o.RateID,
			ZoneID:           o.ZoneID,
			ServiceName:      o.ServiceName,
			Cost:             o.Cost,
			EstimatedDaysMin: o.EstimatedDaysMin,
			EstimatedDaysMax: o.EstimatedDaysMax,
		})
	}
	return commerce.ShippingQuote{
		Destination: commerce.DestinationType(dto.ShippingType),
		Options:     options,
	}
}
