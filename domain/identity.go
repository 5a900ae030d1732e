package domain

import "time"

// Profile is the minimal identity payload persisted for every actor kind.
// Kind-specific fields live on the concrete profile types below; only this
// subset survives page reloads.
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// User is an end-user account.
type User struct {
	Profile
	Addresses []Address `json:"addresses,omitempty"`
	Role      string    `json:"role,omitempty"`
}

// Shop is a seller's storefront. It is a domain resource, not an identity
// slice: seller credentials are owned exclusively by the seller identity
// store.
type Shop struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Description string    `json:"description,omitempty"`
	Address     string    `json:"address,omitempty"`
	ZipCode     string    `json:"zip_code,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	Ratings     float64   `json:"ratings,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Instructor is a class/course instructor account profile.
type Instructor struct {
	Profile
	Speciality string  `json:"speciality,omitempty"`
	Bio        string  `json:"bio,omitempty"`
	Ratings    float64 `json:"ratings,omitempty"`
}

// ServiceProvider offers bookable services (repairs, lessons, venues).
type ServiceProvider struct {
	Profile
	CompanyName string   `json:"company_name,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	Verified    bool     `json:"verified,omitempty"`
}

// Address is a user delivery address.
type Address struct {
	Country string `json:"country"`
	City    string `json:"city"`
	Street  string `json:"street"`
	ZipCode string `json:"zip_code"`
	Kind    string `json:"kind,omitempty"` // "default", "home", "office"
}

func (s Shop) EntityID() string { return s.ID }
