// Package commerce holds the client-side domain model shared by the
// checkout orchestrator, the cart reconciler and the wire adapter. All
// monetary amounts are minor units (cents) of the order currency.
package commerce

import "time"

// DestinationType classifies a shipping destination by country.
type DestinationType string

const (
	DestinationDomestic      DestinationType = "DOMESTIC"
	DestinationInternational DestinationType = "INTERNATIONAL"
)

// Address is a shipping destination as entered by the customer.
type Address struct {
	RecipientName  string
	RecipientPhone string
	Country        string
	Province       string // optional for countries without provinces
	City           string
	PostalCode     string
	Street         string
	Notes          string // optional delivery notes
}

// ShippingOption is one priced service from a quote. Domestic options carry
// the courier triple the fulfilment partner requires; international options
// carry a zone id instead.
type ShippingOption struct {
	CourierCode      string
	CourierService   string
	RateID           string
	ZoneID           string
	ServiceName      string
	Cost             int64
	EstimatedDaysMin int
	EstimatedDaysMax int
}

// ShippingQuote is a priced set of options for one destination and parcel
// weight. A quote is immutable; a new quote replaces it whenever the
// address or weight changes.
type ShippingQuote struct {
	Destination DestinationType
	Options     []ShippingOption
}

// Order is the client's view of a server-owned order.
type Order struct {
	OrderNumber string
	Status      OrderStatus
	Total       int64
	Currency    string
	CreatedAt   time.Time
}

// PaymentAttempt tracks one payment for one order. At most one attempt is
// active per order; the attempt is frozen once Status leaves PENDING.
type PaymentAttempt struct {
	OrderNumber string
	Method      string
	Status      PaymentStatus
}

// PaymentLaunch is the provider-specific data needed to hand the customer
// to an external checkout surface.
type PaymentLaunch struct {
	OrderNumber string
	Token       string
	RedirectURL string
}

// CartItem is one line of a cart, local or server-side.
type CartItem struct {
	VariantID string
	Quantity  int
}

// PricedCartItem is a local cart line joined against current catalog
// pricing at read time.
type PricedCartItem struct {
	VariantID   string
	Name        string
	Quantity    int
	UnitPrice   int64
	Subtotal    int64
	PromoActive bool
}

// CartSummary is the authoritative server cart.
type CartSummary struct {
	Items         []PricedCartItem
	TotalQuantity int
	Subtotal      int64
}

// VariantPricing is the current catalog price for one variant, fetched at
// cart read time so displayed prices are never stale.
type VariantPricing struct {
	VariantID   string
	Name        string
	UnitPrice   int64
	PromoPrice  int64
	PromoActive bool
	WeightGrams float64
}

// EffectivePrice returns the promo price when a promotion is active and the
// regular unit price otherwise.
func (p VariantPricing) EffectivePrice() int64 {
	if p.PromoActive && p.PromoPrice > 0 {
		return p.PromoPrice
	}
	return p.UnitPrice
}
