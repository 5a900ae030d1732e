package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vendora/storefront-go/domain"
	"github.com/vendora/storefront-go/notify"
	"github.com/vendora/storefront-go/transport"
	"github.com/vendora/storefront-go/validate"
)

// Orders caches purchases for either side of the marketplace: a user's own
// orders or all orders against a seller's shop, depending on the filter.
type Orders struct {
	*Resource[domain.Order]
}

func NewOrders(client *transport.Client, bus *notify.Bus, log zerolog.Logger, onUnauthorized func()) *Orders {
	return &Orders{New[domain.Order](client, bus, log, Options{
		Name:           "orders",
		Singular:       "order",
		BasePath:       "/order",
		OnUnauthorized: onUnauthorized,
	})}
}

// RefundInput is the payload for a refund request.
type RefundInput struct {
	Reason string `json:"reason" validate:"required,min=5"`
}

// Refund asks the server to move the order into the refund flow, then
// patches the cached copy with the returned status.
func (s *Orders) Refund(ctx context.Context, token, orderID string, input RefundInput) (domain.Order, error) {
	var zero domain.Order
	if err := validate.Struct(input); err != nil {
		return zero, err
	}

	finish := s.begin("refund")

	var env itemEnvelope[domain.Order]
	err := s.client.Put(ctx, fmt.Sprintf("/order/refund-order/%s", orderID), token, input, &env)
	if err == nil {
		s.mu.Lock()
		for i := range s.items {
			if s.items[i].ID == orderID {
				s.items[i] = env.Data
				break
			}
		}
		s.mu.Unlock()
	}

	finish(err, true)
	if err != nil {
		return zero, err
	}
	return env.Data, nil
}

// FetchForUser lists the authenticated user's orders.
func (s *Orders) FetchForUser(ctx context.Context, token, userID string, q Query) ([]domain.Order, domain.Page, error) {
	if q.Filters == nil {
		q.Filters = map[string]string{}
	}
	q.Filters["user_id"] = userID
	return s.FetchList(ctx, token, q)
}

// FetchForShop lists orders placed against a shop.
func (s *Orders) FetchForShop(ctx context.Context, token, shopID string, q Query) ([]domain.Order, domain.Page, error) {
	if q.Filters == nil {
		q.Filters = map[string]string{}
	}
	q.Filters["shop_id"] = shopID
	return s.FetchList(ctx, token, q)
}
