// Package cart keeps an anonymous visitor's cart usable before login and
// folds it into the authoritative server cart exactly once per
// authenticated session. Pre-login the cart lives in an opaque key-value
// store; post-login every operation is proxied to the server.
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/harborline/storefront-go/commerce"
	"github.com/harborline/storefront-go/gateway"
	apperrors "github.com/harborline/storefront-go/internal/errors"
	"github.com/harborline/storefront-go/session"
	"github.com/harborline/storefront-go/wire"
)

const (
	localCartKey   = "storefront.cart"
	mergeMarkerKey = "storefront.cart.merged." // + session client id
)

// Reconciler is the single owner of cart state transitions on the client.
type Reconciler struct {
	api    *gateway.Client
	store  session.Store
	kv     KV
	logger zerolog.Logger
	newKey func() string // idempotency key generator
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLogger sets the reconciler logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Reconciler) { r.logger = logger }
}

// WithKeyFunc overrides the merge idempotency key generator (for tests).
func WithKeyFunc(fn func() string) Option {
	return func(r *Reconciler) { r.newKey = fn }
}

// New creates a cart reconciler.
func New(api *gateway.Client, store session.Store, kv KV, options ...Option) (*Reconciler, error) {
	if api == nil {
		return nil, errors.New("[cart.New] gateway client is required")
	}
	if store == nil {
		return nil, errors.New("[cart.New] session store is required")
	}
	if kv == nil {
		return nil, errors.New("[cart.New] key-value store is required")
	}
	r := &Reconciler{
		api:    api,
		store:  store,
		kv:     kv,
		logger: zerolog.Nop(),
		newKey: func() string { return uuid.New().String() },
	}
	for _, opt := range options {
		opt(r)
	}
	return r, nil
}

// AddItem adds quantity of a variant to the active cart.
func (r *Reconciler) AddItem(ctx context.Context, variantID string, quantity int) error {
	if variantID == "" || quantity <= 0 {
		return apperrors.Validation("variant id and a positive quantity are required", nil)
	}
	if r.authenticated() {
		req := wire.CartItemRequest{VariantID: variantID, Quantity: quantity}
		return r.api.Post(ctx, "/cart/items", req, nil)
	}
	items := r.readLocal()
	items[variantID] += quantity
	r.writeLocal(items)
	return nil
}

// UpdateItem sets the quantity of a variant; zero removes the line.
func (r *Reconciler) UpdateItem(ctx context.Context, variantID string, quantity int) error {
	if variantID == "" || quantity < 0 {
		return apperrors.Validation("variant id and a non-negative quantity are required", nil)
	}
	if quantity == 0 {
		return r.RemoveItem(ctx, variantID)
	}
	if r.authenticated() {
		req := wire.CartItemRequest{VariantID: variantID, Quantity: quantity}
		return r.api.Put(ctx, "/cart/items/"+url.PathEscape(variantID), req, nil)
	}
	items := r.readLocal()
	items[variantID] = quantity
	r.writeLocal(items)
	return nil
}

// RemoveItem drops a variant from the active cart.
func (r *Reconciler) RemoveItem(ctx context.Context, variantID string) error {
	if r.authenticated() {
		return r.api.Delete(ctx, "/cart/items/"+url.PathEscape(variantID), nil)
	}
	items := r.readLocal()
	delete(items, variantID)
	r.writeLocal(items)
	return nil
}

// Clear empties the active cart.
func (r *Reconciler) Clear(ctx context.Context) error {
	if r.authenticated() {
		return r.api.Delete(ctx, "/cart", nil)
	}
	r.kv.Delete(localCartKey)
	return nil
}

// View returns the active cart with current pricing. Authenticated reads
// come straight from the server. Anonymous reads join each local line
// against catalog pricing fetched now, not cached, so displayed prices are
// never stale relative to the catalog.
func (r *Reconciler) View(ctx context.Context) (commerce.CartSummary, error) {
	if r.authenticated() {
		return r.serverCart(ctx)
	}

	items := r.readLocal()
	variantIDs := make([]string, 0, len(items))
	for id := range items {
		variantIDs = append(variantIDs, id)
	}
	sort.Strings(variantIDs)

	summary := commerce.CartSummary{}
	for _, id := range variantIDs {
		var dto wire.VariantPricingResponse
		path := fmt.Sprintf("/products/variant/%s", url.PathEscape(id))
		if err := r.api.Get(ctx, path, &dto); err != nil {
			return commerce.CartSummary{}, errors.Wrap(err, "[Reconciler.View] pricing lookup")
		}
		pricing := wire.ToVariantPricing(dto)
		quantity := items[id]
		unit := pricing.EffectivePrice()
		summary.Items = append(summary.Items, commerce.PricedCartItem{
			VariantID:   id,
			Name:        pricing.Name,
			Quantity:    quantity,
			UnitPrice:   unit,
			Subtotal:    unit * int64(quantity),
			PromoActive: pricing.PromoActive,
		})
		summary.TotalQuantity += quantity
		summary.Subtotal += unit * int64(quantity)
	}
	return summary, nil
}

// LocalItems returns the anonymous cart lines, sorted by variant id.
func (r *Reconciler) LocalItems() []commerce.CartItem {
	items := r.readLocal()
	lines := make([]commerce.CartItem, 0, len(items))
	for id, quantity := range items {
		lines = append(lines, commerce.CartItem{VariantID: id, Quantity: quantity})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].VariantID < lines[j].VariantID })
	return lines
}

// MergeOnLogin folds the local cart into the server cart. It runs at most
// once per authenticated session: the merge marker set on success
// suppresses replays from duplicate auth-state triggers or reloads. On
// failure the local cart is left intact and the marker stays unset, so a
// later trigger may legitimately retry; the server cart is still loaded so
// the caller sees the current authoritative state.
func (r *Reconciler) MergeOnLogin(ctx context.Context) (commerce.CartSummary, error) {
	sess := r.store.Get()
	if sess == nil {
		return commerce.CartSummary{}, apperrors.New(apperrors.KindAuth, "merge requires an authenticated session")
	}

	marker := mergeMarkerKey + sess.ClientID
	if _, merged := r.kv.Get(marker); merged {
		return r.serverCart(ctx)
	}

	local := r.LocalItems()
	if len(local) == 0 {
		r.kv.Set(marker, "1")
		return r.serverCart(ctx)
	}

	req := wire.NewMergeCartRequest(local, r.newKey())
	var dto wire.CartResponse
	if err := r.api.Post(ctx, "/cart/merge", req, &dto); err != nil {
		r.logger.Error().Err(err).Msg("guest cart merge failed, local cart retained")
		// Best effort: surface the authoritative cart even though the
		// merge failed.
		if summary, loadErr := r.serverCart(ctx); loadErr == nil {
			return summary, err
		}
		return commerce.CartSummary{}, err
	}

	r.kv.Delete(localCartKey)
	r.kv.Set(marker, "1")
	r.logger.Info().Int("lines", len(local)).Msg("guest cart merged")
	return wire.ToCartSummary(dto), nil
}

func (r *Reconciler) authenticated() bool {
	return r.store.Get() != nil
}

func (r *Reconciler) serverCart(ctx context.Context) (commerce.CartSummary, error) {
	var dto wire.CartResponse
	if err := r.api.Get(ctx, "/cart", &dto); err != nil {
		return commerce.CartSummary{}, errors.Wrap(err, "[Reconciler.serverCart] cart call")
	}
	return wire.ToCartSummary(dto), nil
}

func (r *Reconciler) readLocal() map[string]int {
	items := make(map[string]int)
	raw, ok := r.kv.Get(localCartKey)
	if !ok || raw == "" {
		return items
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		// A corrupt local cart is unrecoverable; start clean.
		r.logger.Warn().Err(err).Msg("discarding unreadable local cart")
		r.kv.Delete(localCartKey)
		return make(map[string]int)
	}
	return items
}

func (r *Reconciler) writeLocal(items map[string]int) {
	if len(items) == 0 {
		r.kv.Delete(localCartKey)
		return
	}
	raw, err := json.Marshal(items)
	if err != nil {
		r.logger.Error().Err(err).Msg("persist local cart")
		return
	}
	r.kv.Set(localCartKey, string(raw))
}
