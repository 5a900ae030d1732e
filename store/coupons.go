package store

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/vendora/storefront-go/domain"
	"github.com/vendora/storefront-go/notify"
	"github.com/vendora/storefront-go/transport"
)

// Coupons caches a shop's discount codes.
type Coupons struct {
	*Resource[domain.Coupon]
}

func NewCoupons(client *transport.Client, bus *notify.Bus, log zerolog.Logger, onUnauthorized func()) *Coupons {
	return &Coupons{New[domain.Coupon](client, bus, log, Options{
		Name:           "coupons",
		Singular:       "coupon",
		BasePath:       "/coupon",
		OnUnauthorized: onUnauthorized,
	})}
}

// CreateCouponInput is the client-side form payload for a discount code.
type CreateCouponInput struct {
	Name         string  `json:"name"       validate:"required,min=3"`
	Value        float64 `json:"value"      validate:"required,gt=0,lte=100"`
	MinAmount    float64 `json:"min_amount" validate:"omitempty,gte=0"`
	MaxAmount    float64 `json:"max_amount" validate:"omitempty,gtefield=MinAmount"`
	SelectedProd string  `json:"selected_product,omitempty"`
}

// Apply verifies a coupon code against a cart total. Read-only: the server
// answers with the discounted value without consuming the coupon.
func (s *Coupons) Apply(ctx context.Context, token, code string, cartTotal float64) (float64, error) {
	finish := s.begin("apply")

	var resp struct {
		Discount float64 `json:"discount"`
	}
	err := s.client.Post(ctx, "/coupon/apply-coupon", token, map[string]any{
		"code":       code,
		"cart_total": cartTotal,
	}, &resp)

	finish(err, false)
	if err != nil {
		return 0, err
	}
	return resp.Discount, nil
}
