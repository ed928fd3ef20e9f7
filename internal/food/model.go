package food

import "time"

// Listing status values. A listing is created Available and moves to
// Requested exactly once; the transition is never reversed here.
const (
	StatusAvailable = "Available"
	StatusRequested = "Requested"
)

// Donator is the principal owning a listing. Immutable after creation.
type Donator struct {
	Email string `json:"donatorEmail"`
	Name  string `json:"donatorName"`
	Image string `json:"donatorImage"`
}

// Listing is a food donation record.
type Listing struct {
	ID              string    `json:"id"`
	FoodName        string    `json:"foodName"`
	FoodImg         string    `json:"foodImg"`
	FoodQuantity    int       `json:"foodQuantity"`
	Location        string    `json:"location"`
	ExpireDate      time.Time `json:"expireDate"`
	AdditionalNotes string    `json:"additionalNotes"`
	Status          string    `json:"status"`
	Donator         Donator   `json:"donator"`
	CreatedAt       time.Time `json:"createdAt"`
}

// ListingUpdate carries the donor-mutable fields of a listing. Status and
// donator metadata are deliberately absent.
type ListingUpdate struct {
	FoodName        string    `json:"foodName"`
	FoodImg         string    `json:"foodImg"`
	FoodQuantity    int       `json:"foodQuantity"`
	Location        string    `json:"location"`
	ExpireDate      time.Time `json:"expireDate"`
	AdditionalNotes string    `json:"additionalNotes"`
}

// Claim is a request record linking a principal to a listing. Claims are
// written once and never updated or deleted.
type Claim struct {
	ID          string         `json:"id"`
	FoodID      string         `json:"food_id"`
	UserEmail   string         `json:"user_email"`
	Status      string         `json:"status"`
	RequestDate time.Time      `json:"request_date"`
	Notes       string         `json:"notes,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}
