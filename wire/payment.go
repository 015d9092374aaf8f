package wire

import "github.com/harborline/storefront-go/commerce"

// CreatePaymentRequest is the body of POST /payment/create.
type CreatePaymentRequest struct {
	OrderNumber   string `json:"order_number"`
	PaymentMethod string `json:"payment_method"`
}

// CreatePaymentResponse is the provider launch data for an external
// checkout surface.
type CreatePaymentResponse struct {
	Token       string `json:"token,omitempty"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

// PaymentStatusResponse is the reply to GET /payment/:orderNumber/status.
type PaymentStatusResponse struct {
	PaymentStatus string `json:"payment_status"`
}

// ToPaymentLaunch converts the provider launch reply into the domain model.
func ToPaymentLaunch(orderNumber string, dto CreatePaymentResponse) commerce.PaymentLaunch {
	return commerce.PaymentLaunch{
		OrderNumber: orderNumber,
		Token:       dto.Token,
		RedirectURL: dto.RedirectURL,
	}
}

// ToPaymentStatus converts the wire status string into the domain enum.
func ToPaymentStatus(dto PaymentStatusResponse) commerce.PaymentStatus {
	return commerce.PaymentStatus(dto.PaymentStatus)
}
