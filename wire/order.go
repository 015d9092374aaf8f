package wire

import (
	"time"

	"github.com/harborline/storefront-go/commerce"
)

// CreateOrderRequest is the body of POST /orders. Exactly one of the
// courier triple (domestic) or ZoneID (international) is populated.
type CreateOrderRequest struct {
	ShippingType       string `json:"shipping_type"`
	RecipientName      string `json:"recipient_name"`
	RecipientPhone     string `json:"recipient_phone"`
	ShippingAddress    string `json:"shipping_address"`
	ShippingCity       string `json:"shipping_city"`
	ShippingProvince   string `json:"shipping_province,omitempty"`
	ShippingCountry    string `json:"shipping_country"`
	ShippingPostalCode string `json:"shipping_postal_code"`
	ShippingNotes      string `json:"shipping_notes,omitempty"`
	CourierCode        string `json:"courier_code,omitempty"`
	CourierService     string `json:"courier_service,omitempty"`
	ShippingRateID     string `json:"shipping_rate_id,omitempty"`
	ShippingZoneID     string `json:"shipping_zone_id,omitempty"`
	PaymentMethod      string `json:"payment_method"`
	Currency           string `json:"currency"`
}

// OrderResponse is the server's view of an order.
type OrderResponse struct {
	OrderNumber string `json:"order_number"`
	Status      string `json:"status"`
	Total       int64  `json:"total"`
	Currency    string `json:"currency"`
	CreatedAt   string `json:"created_at,omitempty"` // RFC 3339
}

// NewCreateOrderRequest maps the order parameters onto the wire shape. The
// selected option decides which fulfilment identifiers are attached.
func NewCreateOrderRequest(addr commerce.Address, destination commerce.DestinationType, selected commerce.ShippingOption, paymentMethod, currency string) CreateOrderRequest {
	req := CreateOrderRequest{
		ShippingType:       string(destination),
		RecipientName:      addr.RecipientName,
		RecipientPhone:     addr.RecipientPhone,
		ShippingAddress:    addr.Street,
		ShippingCity:       addr.City,
		ShippingProvince:   addr.Province,
		ShippingCountry:    addr.Country,
		ShippingPostalCode: addr.PostalCode,
		ShippingNotes:      addr.Notes,
		PaymentMethod:      paymentMethod,
		Currency:           currency,
	}
	if destination == commerce.DestinationInternational {
		req.ShippingZoneID = selected.ZoneID
	} else {
		req.CourierCode = selected.CourierCode
		req.CourierService = selected.CourierService
		req.ShippingRateID = selected.RateID
	}
	return req
}

// ToOrder converts an order reply into the domain model.
func ToOrder(dto OrderResponse) commerce.Order {
	createdAt, _ := time.Parse(time.RFC3339, dto.CreatedAt)
	return commerce.Order{
		OrderNumber: dto.OrderNumber,
		Status:      commerce.OrderStatus(dto.Status),
		Total:       dto.Total,
		Currency:    dto.Currency,
		CreatedAt:   createdAt,
	}
}
