package domain

import "time"

// AnalyticsReport is a read-only dashboard aggregate computed server-side.
type AnalyticsReport struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	Period       string    `json:"period"` // "day", "week", "month"
	TotalOrders  int64     `json:"total_orders"`
	TotalRevenue float64   `json:"total_revenue"`
	TotalVisits  int64     `json:"total_visits,omitempty"`
	TopProducts  []string  `json:"top_products,omitempty"`
	GeneratedAt  time.Time `json:"generated_at"`
}

func (r AnalyticsReport) EntityID() string { return r.ID }
