package wire

import "github.com/harborline/storefront-go/commerce"

// CartItemRequest is one line sent to cart endpoints.
type CartItemRequest struct {
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

// MergeCartRequest is the body of POST /cart/merge. IdempotencyKey lets the
// server deduplicate a merge replayed after a lost response.
type MergeCartRequest struct {
	Items          []CartItemRequest `json:"items"`
	IdempotencyKey string            `json:"idempotency_key"`
}

// CartLineResponse is one priced line of the server cart.
type CartLineResponse struct {
	VariantID   string `json:"variant_id"`
	Name        string `json:"name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	Subtotal    int64  `json:"subtotal"`
	PromoActive bool   `json:"promo_active"`
}

// CartResponse is the authoritative server cart summary.
type CartResponse struct {
	Items         []CartLineResponse `json:"items"`
	TotalQuantity int                `json:"total_quantity"`
	Subtotal      int64              `json:"subtotal"`
}

// VariantPricingResponse is the reply to GET /products/variant/:id.
type VariantPricingResponse struct {
	VariantID   string  `json:"variant_id"`
	Name        string  `json:"name"`
	UnitPrice   int64   `json:"unit_price"`
	PromoPrice  int64   `json:"promo_price,omitempty"`
	PromoActive bool    `json:"promo_active"`
	WeightGrams float64 `json:"weight_grams"`
}

// NewMergeCartRequest maps local cart lines onto the wire shape.
func NewMergeCartRequest(items []commerce.CartItem, idempotencyKey string) MergeCartRequest {
	lines := make([]CartItemRequest, 0, len(items))
	for _, item := range items {
		lines = append(lines, CartItemRequest{VariantID: item.VariantID, Quantity: item.Quantity})
	}
	return MergeCartRequest{Items: lines, IdempotencyKey: idempotencyKey}
}

// ToCartSummary converts the server cart reply into the domain model.
func ToCartSummary(dto CartResponse) commerce.CartSummary {
	items := make([]commerce.PricedCartItem, 0, len(dto.Items))
	for _, line := range dto.Items {
		items = append(items, commerce.PricedCartItem{
			VariantID:   line.VariantID,
			Name:        line.Name,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Subtotal:    line.Subtotal,
			PromoActive: line.PromoActive,
		})
	}
	return commerce.CartSummary{
		Items:         items,
		TotalQuantity: dto.TotalQuantity,
		Subtotal:      dto.Subtotal,
	}
}

// ToVariantPricing converts the catalog pricing reply into the domain model.
func ToVariantPricing(dto VariantPricingResponse) commerce.VariantPricing {
	return commerce.VariantPricing{
		VariantID:   dto.VariantID,
		Name:        dto.Name,
		UnitPrice:   dto.UnitPrice,
		PromoPrice:  dto.PromoPrice,
		PromoActive: dto.PromoActive,
		WeightGrams: dto.WeightGrams,
	}
}
