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

// Analytics caches read-only dashboard aggregates. It never mutates server
// state and never toasts on success.
type Analytics struct {
	*Resource[domain.AnalyticsReport]
}

func NewAnalytics(client *transport.Client, bus *notify.Bus, log zerolog.Logger, onUnauthorized func()) *Analytics {
	return &Analytics{New[domain.AnalyticsReport](client, bus, log, Options{
		Name:           "analytics",
		Singular:       "report",
		BasePath:       "/analytics",
		OnUnauthorized: onUnauthorized,
	})}
}

// FetchReport loads the aggregate for one owner and period ("day", "week",
// "month") into the item slot.
func (s *Analytics) FetchReport(ctx context.Context, token, ownerID, period string) (domain.AnalyticsReport, error) {
	var zero domain.AnalyticsReport

	finish := s.begin("fetch_report")

	var env itemEnvelope[domain.AnalyticsReport]
	path := fmt.Sprintf("/analytics/get-report/%s?period=%s", ownerID, url.QueryEscape(period))
	err := s.client.Get(ctx, path, token, &env)
	if err == nil {
		s.mu.Lock()
		item := env.Data
		s.item = &item
		s.mu.Unlock()
	}

	finish(err, false)
	if err != nil {
		return zero, err
	}
	return env.Data, nil
}
