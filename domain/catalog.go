package domain

import "time"

// Event is a time-bounded promotion or happening published by a shop.
type Event struct {
	ID            string    `json:"id"`
	ShopID        string    `json:"shop_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Category      string    `json:"category,omitempty"`
	StartDate     time.Time `json:"start_date"`
	FinishDate    time.Time `json:"finish_date"`
	Status        string    `json:"status"` // "running", "ended"
	Tags          []string  `json:"tags,omitempty"`
	OriginalPrice float64   `json:"original_price,omitempty"`
	DiscountPrice float64   `json:"discount_price"`
	Stock         int       `json:"stock"`
	SoldOut       int       `json:"sold_out,omitempty"`
	ImageURLs     []string  `json:"image_urls,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Product is a sellable catalogue item owned by a shop.
type Product struct {
	ID            string    `json:"id"`
	ShopID        string    `json:"shop_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	Tags          []string  `json:"tags,omitempty"`
	OriginalPrice float64   `json:"original_price,omitempty"`
	DiscountPrice float64   `json:"discount_price"`
	Stock         int       `json:"stock"`
	SoldOut       int       `json:"sold_out,omitempty"`
	Ratings       float64   `json:"ratings,omitempty"`
	ImageURLs     []string  `json:"image_urls,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Service is a bookable offering published by a service provider.
type Service struct {
	ID          string    `json:"id"`
	ProviderID  string    `json:"provider_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	DurationMin int       `json:"duration_minutes,omitempty"`
	ImageURLs   []string  `json:"image_urls,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Venue is a physical location that can host events.
type Venue struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	Capacity  int       `json:"capacity"`
	PricePerH float64   `json:"price_per_hour,omitempty"`
	ImageURLs []string  `json:"image_urls,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Coupon is a shop-scoped discount code.
type Coupon struct {
	ID           string    `json:"id"`
	ShopID       string    `json:"shop_id"`
	Name         string    `json:"name"`
	Value        float64   `json:"value"` // percent off
	MinAmount    float64   `json:"min_amount,omitempty"`
	MaxAmount    float64   `json:"max_amount,omitempty"`
	SelectedProd string    `json:"selected_product,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (e Event) EntityID() string   { return e.ID }
func (p Product) EntityID() string { return p.ID }
func (s Service) EntityID() string { return s.ID }
func (v Venue) EntityID() string   { return v.ID }
func (c Coupon) EntityID() string  { return c.ID }
