package store

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/vendora/storefront-go/domain"
	"github.com/vendora/storefront-go/notify"
	"github.com/vendora/storefront-go/transport"
)

// Services caches bookable offerings published by service providers.
type Services struct {
	*Resource[domain.Service]
}

func NewServices(client *transport.Client, bus *notify.Bus, log zerolog.Logger, onUnauthorized func()) *Services {
	return &Services{New[domain.Service](client, bus, log, Options{
		Name:           "services",
		Singular:       "service",
		BasePath:       "/service",
		OnUnauthorized: onUnauthorized,
	})}
}

// CreateServiceInput is the client-side form payload for adding a service.
type CreateServiceInput struct {
	Name        string   `json:"name"             validate:"required,min=3"`
	Description string   `json:"description"      validate:"required"`
	Category    string   `json:"category"         validate:"required"`
	Price       float64  `json:"price"            validate:"required,gt=0"`
	DurationMin int      `json:"duration_minutes" validate:"omitempty,gte=5"`
	ImageURLs   []string `json:"image_urls,omitempty"`
}

// Venues caches bookable event locations.
type Venues struct {
	*Resource[domain.Venue]
}

func NewVenues(client *transport.Client, bus *notify.Bus, log zerolog.Logger, onUnauthorized func()) *Venues {
	return &Venues{New[domain.Venue](client, bus, log, Options{
		Name:           "venues",
		Singular:       "venue",
		BasePath:       "/venue",
		OnUnauthorized: onUnauthorized,
	})}
}

// CreateVenueInput is the client-side form payload for registering a venue.
type CreateVenueInput struct {
	Name      string   `json:"name"           validate:"required,min=3"`
	Address   string   `json:"address"        validate:"required"`
	City      string   `json:"city"           validate:"required"`
	Capacity  int      `json:"capacity"       validate:"required,gte=1"`
	PricePerH float64  `json:"price_per_hour" validate:"omitempty,gt=0"`
	ImageURLs []string `json:"image_urls,omitempty"`
}

// availabilityResponse is the server's answer to an availability probe.
type availabilityResponse struct {
	Available bool `json:"available"`
}

// CheckAvailability asks whether a venue is free on the given date
// (YYYY-MM-DD). A read-only probe: no cache mutation, no success toast.
func (s *Venues) CheckAvailability(ctx context.Context, token, venueID, date string) (bool, error) {
	finish := s.begin("check_availability")

	var resp availabilityResponse
	path := fmt.Sprintf("/venue/check-availability/%s?date=%s", venueID, url.QueryEscape(date))
	err := s.client.Get(ctx, path, token, &resp)

	finish(err, false)
	if err != nil {
		return false, err
	}
	return resp.Available, nil
}
