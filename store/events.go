package store

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/vendora/storefront-go/domain"
	"github.com/vendora/storefront-go/notify"
	"github.com/vendora/storefront-go/transport"
)

// Events caches shop events.
type Events struct {
	*Resource[domain.Event]
}

func NewEvents(client *transport.Client, bus *notify.Bus, log zerolog.Logger, onUnauthorized func()) *Events {
	return &Events{New[domain.Event](client, bus, log, Options{
		Name:           "events",
		Singular:       "event",
		BasePath:       "/event",
		OnUnauthorized: onUnauthorized,
	})}
}

// CreateEventInput is the client-side form payload for publishing an event.
type CreateEventInput struct {
	Name          string    `json:"name"           validate:"required,min=3"`
	Description   string    `json:"description"    validate:"required"`
	Category      string    `json:"category"       validate:"omitempty"`
	StartDate     time.Time `json:"start_date"     validate:"required"`
	FinishDate    time.Time `json:"finish_date"    validate:"required,gtfield=StartDate"`
	OriginalPrice float64   `json:"original_price" validate:"omitempty,gt=0"`
	DiscountPrice float64   `json:"discount_price" validate:"required,gt=0"`
	Stock         int       `json:"stock"          validate:"required,gte=1"`
	Tags          []string  `json:"tags,omitempty"`
	ImageURLs     []string  `json:"image_urls,omitempty"`
}

// FetchRunning lists currently running events. This is a public listing: no
// token is attached.
func (s *Events) FetchRunning(ctx context.Context, q Query) ([]domain.Event, domain.Page, error) {
	if q.Filters == nil {
		q.Filters = map[string]string{}
	}
	q.Filters["status"] = "running"
	return s.FetchList(ctx, "", q)
}

// FetchForShop lists a shop's events, newest first.
func (s *Events) FetchForShop(ctx context.Context, token, shopID string, q Query) ([]domain.Event, domain.Page, error) {
	if q.Filters == nil {
		q.Filters = map[string]string{}
	}
	q.Filters["shop_id"] = shopID
	return s.FetchList(ctx, token, q)
}
