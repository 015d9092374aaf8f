package checkout_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/harborline/storefront-go/checkout"
	"github.com/harborline/storefront-go/commerce"
	"github.com/harborline/storefront-go/gateway"
	apperrors "github.com/harborline/storefront-go/internal/errors"
	"github.com/harborline/storefront-go/session"
)

type countingCart struct{ clears atomic.Int64 }

func (c *countingCart) Clear(ctx context.Context) error {
	c.clears.Add(1)
	return nil
}

// flowFixture wires a Flow against a scripted commerce API.
type flowFixture struct {
	flow       *checkout.Flow
	cart       *countingCart
	mux        *http.ServeMux
	orderCalls atomic.Int64
}

func setupFlowFixture(t *testing.T) *flowFixture {
	t.Helper()

	f := &flowFixture{mux: http.NewServeMux()}
	server := httptest.NewServer(f.mux)
	t.Cleanup(server.Close)

	store := session.NewInMemoryStore()
	store.Set(&session.Session{AccessToken: "token", RefreshToken: "refresh"})
	api, err := gateway.New(server.URL, store)
	require.NoError(t, err)

	f.cart = &countingCart{}
	flow, err := checkout.NewFlow(api,
		checkout.WithHomeCountry("ID"),
		checkout.WithCart(f.cart),
	)
	require.NoError(t, err)
	f.flow = flow
	return f
}

func (f *flowFixture) serveQuote(t *testing.T, response map[string]any) {
	t.Helper()
	f.mux.HandleFunc("/orders/calculate-shipping", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode quote request: %v", err)
		}
		if _, ok := req["total_weight"]; !ok {
			t.Error("quote request missing total_weight")
		}
		_ = json.NewEncoder(w).Encode(response)
	})
}

func domesticQuote() map[string]any {
	return map[string]any{
		"shipping_type": "DOMESTIC",
		"options": []map[string]any{
			{"courier_code": "jnx", "courier_service": "YES", "rate_id": "rate-1", "service_name": "Overnight", "cost": 42000, "estimated_days_min": 1, "estimated_days_max": 1},
			{"courier_code": "jnx", "courier_service": "REG", "rate_id": "rate-2", "service_name": "Regular", "cost": 18000, "estimated_days_min": 2, "estimated_days_max": 4},
			{"courier_code": "sicepat", "courier_service": "BEST", "rate_id": "rate-3", "service_name": "Best", "cost": 21000, "estimated_days_min": 1, "estimated_days_max": 2},
		},
	}
}

func TestFlow_DomesticQuoteSelectsCheapestByDefault(t *testing.T) {
	f := setupFlowFixture(t)
	f.serveQuote(t, domesticQuote())

	quote, err := f.flow.QuoteShipping(context.Background(), validAddress(), 1200)
	require.NoError(t, err)
	require.Equal(t, commerce.DestinationDomestic, quote.Destination)
	require.Len(t, quote.Options, 3)

	selected := f.flow.Selected()
	require.NotNil(t, selected)
	require.Equal(t, "rate-2", selected.RateID, "lowest cost option is the default")
	require.Equal(t, int64(18000), selected.Cost)
}

func TestFlow_InternationalQuoteUsedAsIs(t *testing.T) {
	f := setupFlowFixture(t)
	f.serveQuote(t, map[string]any{
		"shipping_type": "INTERNATIONAL",
		"options": []map[string]any{
			{"zone_id": "zone-7", "service_name": "Intl Standard", "cost": 250000, "estimated_days_min": 7, "estimated_days_max": 14},
		},
	})

	addr := validAddress()
	addr.Country = "SG"
	quote, err := f.flow.QuoteShipping(context.Background(), addr, 1200)
	require.NoError(t, err)
	require.Equal(t, commerce.DestinationInternational, quote.Destination)
	require.Equal(t, "zone-7", f.flow.Selected().ZoneID)
}

func TestFlow_QuotePreconditionFailureMakesNoNetworkCall(t *testing.T) {
	f := setupFlowFixture(t)
	quoteCalls := atomic.Int64{}
	f.mux.HandleFunc("/orders/calculate-shipping", func(w http.ResponseWriter, r *http.Request) {
		quoteCalls.Add(1)
	})

	_, err := f.flow.QuoteShipping(context.Background(), validAddress(), 0.5)
	require.Error(t, err)
	require.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	require.Equal(t, int64(0), quoteCalls.Load())
}

func TestFlow_CreateOrderRequiresQuote(t *testing.T) {
	f := setupFlowFixture(t)
	_, err := f.flow.CreateOrder(context.Background(), "bank_transfer", "IDR")
	require.Error(t, err)
	require.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestFlow_CreateOrderRefusesIncompleteCourierSelection(t *testing.T) {
	f := setupFlowFixture(t)
	quote := domesticQuote()
	// The carrier returned an option without a rate identifier.
	quote["options"] = []map[string]any{
		{"courier_code": "jnx", "courier_service": "REG", "service_name": "Regular", "cost": 18000},
	}
	f.serveQuote(t, quote)
	f.mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		f.orderCalls.Add(1)
	})

	_, err := f.flow.QuoteShipping(context.Background(), validAddress(), 1200)
	require.NoError(t, err)

	_, err = f.flow.CreateOrder(context.Background(), "bank_transfer", "IDR")
	require.Error(t, err)
	require.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	require.Equal(t, int64(0), f.orderCalls.Load(), "malformed order must not reach the server")
	require.Equal(t, int64(0), f.cart.clears.Load())
}

func TestFlow_CreateOrderSuccessClearsCart(t *testing.T) {
	f := setupFlowFixture(t)
	f.serveQuote(t, domesticQuote())
	f.mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		f.orderCalls.Add(1)
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		for _, field := range []string{"shipping_type", "recipient_name", "courier_code", "courier_service", "shipping_rate_id", "payment_method", "currency"} {
			if _, ok := req[field]; !ok {
				t.Errorf("order request missing %s", field)
			}
		}
		if _, ok := req["shipping_zone_id"]; ok {
			t.Error("domestic order must not carry shipping_zone_id")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"order_number": "ORD-2025-0001",
			"status":       "PENDING",
			"total":        118000,
			"currency":     "IDR",
		})
	})

	_, err := f.flow.QuoteShipping(context.Background(), validAddress(), 1200)
	require.NoError(t, err)

	order, err := f.flow.CreateOrder(context.Background(), "bank_transfer", "IDR")
	require.NoError(t, err)
	require.Equal(t, "ORD-2025-0001", order.OrderNumber)
	require.Equal(t, commerce.OrderStatusPending, order.Status)
	require.Equal(t, int64(1), f.cart.clears.Load(), "cart cleared after, and only after, success")
}

func TestFlow_CreateOrderFailureLeavesCartUntouched(t *testing.T) {
	f := setupFlowFixture(t)
	f.serveQuote(t, domesticQuote())
	f.mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "stock conflict"})
	})

	_, err := f.flow.QuoteShipping(context.Background(), validAddress(), 1200)
	require.NoError(t, err)

	_, err = f.flow.CreateOrder(context.Background(), "bank_transfer", "IDR")
	require.Error(t, err)
	require.True(t, apperrors.IsKind(err, apperrors.KindBusiness))
	require.Equal(t, "stock conflict", err.Error(), "server message surfaced verbatim")
	require.Equal(t, int64(0), f.cart.clears.Load())
}

func TestFlow_PaymentInitiationAndPolling(t *testing.T) {
	f := setupFlowFixture(t)
	f.serveQuote(t, domesticQuote())
	f.mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"order_number": "ORD-9", "status": "PENDING", "total": 118000, "currency": "IDR"})
	})
	f.mux.HandleFunc("/payment/create", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["order_number"] != "ORD-9" || req["payment_method"] != "bank_transfer" {
			t.Errorf("unexpected payment request: %v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "pay-token", "redirect_url": "https://pay.example/x"})
	})

	statusCalls := atomic.Int64{}
	f.mux.HandleFunc("/payment/ORD-9/status", func(w http.ResponseWriter, r *http.Request) {
		st := "PENDING"
		if statusCalls.Add(1) >= 3 {
			st = "PAID"
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"payment_status": st})
	})
	f.mux.HandleFunc("/orders/ORD-9", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"order_number": "ORD-9", "status": "PAID", "total": 118000, "currency": "IDR"})
	})

	ctx := context.Background()
	_, err := f.flow.QuoteShipping(ctx, validAddress(), 1200)
	require.NoError(t, err)
	_, err = f.flow.CreateOrder(ctx, "bank_transfer", "IDR")
	require.NoError(t, err)

	launch, err := f.flow.InitiatePayment(ctx)
	require.NoError(t, err)
	require.Equal(t, "https://pay.example/x", launch.RedirectURL)
	require.Equal(t, commerce.PaymentStatusPending, f.flow.Attempt().Status)

	poller := checkout.NewPoller(checkout.WithClock(newVirtualClock()))
	var observed []commerce.PaymentStatus
	status, err := f.flow.PollPayment(ctx, poller, func(s commerce.PaymentStatus) { observed = append(observed, s) })
	require.NoError(t, err)
	require.Equal(t, commerce.PaymentStatusPaid, status)
	require.Equal(t, int64(3), statusCalls.Load())
	require.Equal(t, []commerce.PaymentStatus{commerce.PaymentStatusPending, commerce.PaymentStatusPaid}, observed)

	// The PAID transition triggers the dependent order-detail refresh.
	require.Equal(t, commerce.OrderStatusPaid, f.flow.Order().Status)
	require.Equal(t, commerce.PaymentStatusPaid, f.flow.Attempt().Status)
}
