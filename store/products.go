package store

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/vendora/storefront-go/domain"
	"github.com/vendora/storefront-go/notify"
	"github.com/vendora/storefront-go/transport"
)

// Products caches a shop's catalogue.
type Products struct {
	*Resource[domain.Product]
}

func NewProducts(client *transport.Client, bus *notify.Bus, log zerolog.Logger, onUnauthorized func()) *Products {
	return &Products{New[domain.Product](client, bus, log, Options{
		Name:           "products",
		Singular:       "product",
		BasePath:       "/product",
		OnUnauthorized: onUnauthorized,
	})}
}

// CreateProductInput is the client-side form payload for listing a product.
type CreateProductInput struct {
	Name          string   `json:"name"           validate:"required,min=3"`
	Description   string   `json:"description"    validate:"required"`
	Category      string   `json:"category"       validate:"required"`
	OriginalPrice float64  `json:"original_price" validate:"omitempty,gt=0"`
	DiscountPrice float64  `json:"discount_price" validate:"required,gt=0"`
	Stock         int      `json:"stock"          validate:"required,gte=1"`
	Tags          []string `json:"tags,omitempty"`
	ImageURLs     []string `json:"image_urls,omitempty"`
}

// FetchForShop lists one shop's products.
func (s *Products) FetchForShop(ctx context.Context, token, shopID string, q Query) ([]domain.Product, domain.Page, error) {
	if q.Filters == nil {
		q.Filters = map[string]string{}
	}
	q.Filters["shop_id"] = shopID
	return s.FetchList(ctx, token, q)
}

// Shops caches storefront profiles for browsing. Seller credentials are not
// held here; they belong to the seller identity store.
type Shops struct {
	*Resource[domain.Shop]
}

func NewShops(client *transport.Client, bus *notify.Bus, log zerolog.Logger) *Shops {
	return &Shops{New[domain.Shop](client, bus, log, Options{
		Name:     "shops",
		Singular: "shop",
		BasePath: "/shop",
	})}
}
