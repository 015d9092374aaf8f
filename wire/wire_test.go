package wire_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/harborline/storefront-go/commerce"
	"github.com/harborline/storefront-go/wire"
)

func TestNewCreateOrderRequestShapesFulfilmentByDestination(t *testing.T) {
	addr := commerce.Address{
		RecipientName:  "Ada Lovelace",
		RecipientPhone: "+62811111111",
		Street:         "Jl. Jend. Sudirman Kav. 52-53",
		City:           "Jakarta",
		Country:        "ID",
		PostalCode:     "12190",
	}
	option := commerce.ShippingOption{
		CourierCode:    "jnx",
		CourierService: "REG",
		RateID:         "rate-2",
		ZoneID:         "zone-7",
	}

	t.Run("domestic carries the courier triple only", func(t *testing.T) {
		req := wire.NewCreateOrderRequest(addr, commerce.DestinationDomestic, option, "bank_transfer", "IDR")
		require.Equal(t, "DOMESTIC", req.ShippingType)
		require.Equal(t, "jnx", req.CourierCode)
		require.Equal(t, "REG", req.CourierService)
		require.Equal(t, "rate-2", req.ShippingRateID)
		require.Empty(t, req.ShippingZoneID)
	})

	t.Run("international carries the zone only", func(t *testing.T) {
		req := wire.NewCreateOrderRequest(addr, commerce.DestinationInternational, option, "bank_transfer", "IDR")
		require.Equal(t, "INTERNATIONAL", req.ShippingType)
		require.Equal(t, "zone-7", req.ShippingZoneID)
		require.Empty(t, req.CourierCode)
		require.Empty(t, req.CourierService)
		require.Empty(t, req.ShippingRateID)
	})
}

func TestToOrderParsesCreatedAt(t *testing.T) {
	order := wire.ToOrder(wire.OrderResponse{
		OrderNumber: "ORD-1",
		Status:      "PAID",
		Total:       118000,
		Currency:    "IDR",
		CreatedAt:   "2025-06-01T12:00:00Z",
	})
	require.Equal(t, commerce.OrderStatusPaid, order.Status)
	require.True(t, order.CreatedAt.Equal(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)))

	// A missing or malformed timestamp degrades to the zero time rather
	// than failing the whole mapping.
	require.True(t, wire.ToOrder(wire.OrderResponse{OrderNumber: "ORD-2"}).CreatedAt.IsZero())
}

func TestToShippingQuoteMapsDestination(t *testing.T) {
	quote := wire.ToShippingQuote(wire.ShippingQuoteResponse{
		ShippingType: "DOMESTIC",
		Options: []wire.ShippingOptionResponse{
			{CourierCode: "jnx", CourierService: "REG", RateID: "rate-1", ServiceName: "Regular", Cost: 18000},
		},
	})
	require.Equal(t, commerce.DestinationDomestic, quote.Destination)
	require.Len(t, quote.Options, 1)
	require.Equal(t, int64(18000), quote.Options[0].Cost)
}

func TestEffectivePrice(t *testing.T) {
	pricing := wire.ToVariantPricing(wire.VariantPricingResponse{
		VariantID:   "var-a",
		UnitPrice:   20000,
		PromoPrice:  15000,
		PromoActive: true,
	})
	require.Equal(t, int64(15000), pricing.EffectivePrice())

	pricing.PromoActive = false
	require.Equal(t, int64(20000), pricing.EffectivePrice())
}
