// Package checkout sequences the steps that turn a priced cart into a paid
// order: validate the destination, quote shipping, create the order,
// initiate payment, then poll the payment status to a terminal state.
// Steps are strictly sequential per attempt; polling is the only long-lived
// activity and is bounded and cancellable.
package checkout

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/harborline/storefront-go/commerce"
	"github.com/harborline/storefront-go/gateway"
	apperrors "github.com/harborline/storefront-go/internal/errors"
	"github.com/harborline/storefront-go/internal/utils"
	"github.com/harborline/storefront-go/wire"
)

const defaultHomeCountry = "ID"

// CartClearer empties the active cart. The flow invokes it only after
// order creation succeeds; on any failure the cart is left untouched.
type CartClearer interface {
	Clear(ctx context.Context) error
}

// Flow is one checkout attempt. It is not safe for concurrent use; a new
// attempt gets a new Flow.
type Flow struct {
	api         *gateway.Client
	homeCountry string
	cart        CartClearer
	logger      zerolog.Logger

	address     commerce.Address
	weightGrams float64
	quote       *commerce.ShippingQuote
	selected    *commerce.ShippingOption
	method      string
	order       *commerce.Order
	attempt     *commerce.PaymentAttempt
}

// FlowOption configures a Flow.
type FlowOption func(*Flow)

// WithHomeCountry sets the country treated as DOMESTIC.
func WithHomeCountry(country string) FlowOption {
	return func(f *Flow) { f.homeCountry = country }
}

// WithCart installs the cart cleared after successful order creation.
func WithCart(cart CartClearer) FlowOption {
	return func(f *Flow) { f.cart = cart }
}

// WithLogger sets the flow logger.
func WithLogger(logger zerolog.Logger) FlowOption {
	return func(f *Flow) { f.logger = logger }
}

// NewFlow creates a checkout attempt on top of the gateway client.
func NewFlow(api *gateway.Client, options ...FlowOption) (*Flow, error) {
	if api == nil {
		return nil, errors.New("[checkout.NewFlow] gateway client is required")
	}
	flow := &Flow{
		api:         api,
		homeCountry: defaultHomeCountry,
		logger:      zerolog.Nop(),
	}
	for _, opt := range options {
		opt(flow)
	}
	return flow, nil
}

// Classify reports whether an address ships domestically or internationally.
func (f *Flow) Classify(addr commerce.Address) commerce.DestinationType {
	if strings.EqualFold(strings.TrimSpace(addr.Country), f.homeCountry) {
		return commerce.DestinationDomestic
	}
	return commerce.DestinationInternational
}

// QuoteShipping validates the destination, requests a quote, and selects
// the default option: the lowest-cost one for domestic shipments, the
// quoted option as-is for international. Any previous quote and selection
// are invalidated. The caller may override the selection with SelectOption
// before creating the order.
func (f *Flow) QuoteShipping(ctx context.Context, addr commerce.Address, totalWeightGrams float64) (*commerce.ShippingQuote, error) {
	if err := ValidateDestination(addr, totalWeightGrams); err != nil {
		return nil, err
	}

	// A new destination or weight invalidates the prior quote immediately,
	// even if the request below fails.
	f.address = addr
	f.weightGrams = totalWeightGrams
	f.quote = nil
	f.selected = nil

	var dto wire.ShippingQuoteResponse
	if err := f.api.Post(ctx, "/orders/calculate-shipping", wire.NewShippingQuoteRequest(addr, totalWeightGrams), &dto); err != nil {
		return nil, errors.Wrap(err, "[Flow.QuoteShipping] quote call")
	}

	quote := wire.ToShippingQuote(dto)
	if quote.Destination == "" {
		quote.Destination = f.Classify(addr)
	}
	f.quote = &quote

	if len(quote.Options) > 0 {
		selected := quote.Options[0]
		if quote.Destination == commerce.DestinationDomestic {
			for _, option := range quote.Options[1:] {
				if option.Cost < selected.Cost {
					selected = option
				}
			}
		}
		f.selected = utils.Ptr(selected)
	}

	f.logger.Debug().
		Str("destination", string(quote.Destination)).
		Int("options", len(quote.Options)).
		Msg("shipping quoted")
	return f.quote, nil
}

// SelectOption overrides the default shipping selection with option i of
// the current quote.
func (f *Flow) SelectOption(i int) error {
	if f.quote == nil {
		return apperrors.Validation("no shipping quote to select from", nil)
	}
	if i < 0 || i >= len(f.quote.Options) {
		return apperrors.Validation("shipping option out of range", nil)
	}
	f.selected = utils.Ptr(f.quote.Options[i])
	return nil
}

// Selected returns the shipping option the order will be created with.
func (f *Flow) Selected() *commerce.ShippingOption { return f.selected }

// CreateOrder submits the order for the quoted destination and selection.
// On success the cart is cleared as a side effect; on failure the cart is
// left untouched and the error is surfaced verbatim.
func (f *Flow) CreateOrder(ctx context.Context, paymentMethod, currency string) (*commerce.Order, error) {
	if f.quote == nil || f.selected == nil {
		return nil, apperrors.Validation("a shipping quote is required before creating an order", nil)
	}
	if err := ValidateSelection(f.quote.Destination, *f.selected); err != nil {
		return nil, err
	}

	req := wire.NewCreateOrderRequest(f.address, f.quote.Destination, *f.selected, paymentMethod, currency)
	var dto wire.OrderResponse
	if err := f.api.Post(ctx, "/orders", req, &dto); err != nil {
		return nil, err
	}

	order := wire.ToOrder(dto)
	f.order = &order
	f.method = paymentMethod
	f.logger.Info().Str("order_number", order.OrderNumber).Msg("order created")

	if f.cart != nil {
		if err := f.cart.Clear(ctx); err != nil {
			// The order exists server-side; a stale local cart is a
			// cosmetic problem, not a checkout failure.
			f.logger.Warn().Err(err).Msg("cart clear after order creation failed")
		}
	}
	return f.order, nil
}

// InitiatePayment requests a payment session for the created order and
// returns the provider launch data. There is no retry here: a failure is
// terminal for this attempt and must be retried explicitly by the caller.
func (f *Flow) InitiatePayment(ctx context.Context) (*commerce.PaymentLaunch, error) {
	if f.order == nil {
		return nil, apperrors.Validation("no order to pay for", nil)
	}

	req := wire.CreatePaymentRequest{OrderNumber: f.order.OrderNumber, PaymentMethod: f.method}
	var dto wire.CreatePaymentResponse
	if err := f.api.Post(ctx, "/payment/create", req, &dto); err != nil {
		return nil, err
	}

	launch := wire.ToPaymentLaunch(f.order.OrderNumber, dto)
	f.attempt = &commerce.PaymentAttempt{
		OrderNumber: f.order.OrderNumber,
		Method:      f.method,
		Status:      commerce.PaymentStatusPending,
	}
	return &launch, nil
}

// PollPayment drives the payment attempt to a terminal state with the
// given poller. The observer (optional) fires on every status change; when
// the status reaches PAID the order detail is refreshed so the flow's
// order reflects the server-confirmed transition.
func (f *Flow) PollPayment(ctx context.Context, poller *Poller, observer Observer) (commerce.PaymentStatus, error) {
	if f.attempt == nil {
		return "", apperrors.Validation("no payment attempt to poll", nil)
	}

	status, err := poller.Run(ctx, f.checkPaymentStatus, observer)
	if f.attempt.Status == commerce.PaymentStatusPending {
		f.attempt.Status = status
	}
	if err != nil {
		return status, err
	}

	if status == commerce.PaymentStatusPaid {
		if refreshErr := f.RefreshOrder(ctx); refreshErr != nil {
			f.logger.Warn().Err(refreshErr).Msg("order refresh after payment failed")
		}
	}
	return status, nil
}

// RefreshOrder re-reads the order detail from the server.
func (f *Flow) RefreshOrder(ctx context.Context) error {
	if f.order == nil {
		return apperrors.Validation("no order to refresh", nil)
	}
	var dto wire.OrderResponse
	path := fmt.Sprintf("/orders/%s", url.PathEscape(f.order.OrderNumber))
	if err := f.api.Get(ctx, path, &dto); err != nil {
		return errors.Wrap(err, "[Flow.RefreshOrder] detail call")
	}
	order := wire.ToOrder(dto)
	f.order = &order
	return nil
}

// Order returns the created order, or nil before creation.
func (f *Flow) Order() *commerce.Order { return f.order }

// Attempt returns the active payment attempt, or nil before initiation.
func (f *Flow) Attempt() *commerce.PaymentAttempt { return f.attempt }

func (f *Flow) checkPaymentStatus(ctx context.Context) (commerce.PaymentStatus, error) {
	var dto wire.PaymentStatusResponse
	path := fmt.Sprintf("/payment/%s/status", url.PathEscape(f.attempt.OrderNumber))
	if err := f.api.Get(ctx, path, &dto); err != nil {
		return "", err
	}
	return wire.ToPaymentStatus(dto), nil
}
