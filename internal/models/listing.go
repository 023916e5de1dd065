package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PG type values
const (
	PgTypeBoys     = "Boys"
	PgTypeGirls    = "Girls"
	PgTypeCoLiving = "Co-Living"
)

// Food type values
const (
	FoodTypeVeg       = "Veg"
	FoodTypeVegNonVeg = "Veg&Non-Veg"
)

// PgListing represents a rentable shared-housing property managed by a host.
// The host reference is immutable after creation.
type PgListing struct {
	ID         uuid.UUID      `db:"id" json:"id"`
	HostID     uuid.UUID      `db:"host_id" json:"host_id"`
	Name       string         `db:"name" json:"name"`
	Address    string         `db:"address" json:"address"`
	Latitude   float64        `db:"latitude" json:"latitude"`
	Longitude  float64        `db:"longitude" json:"longitude"`
	Contact    string         `db:"contact" json:"contact"`
	TotalRooms int            `db:"total_rooms" json:"total_rooms"`
	PgType     string         `db:"pg_type" json:"pg_type"`     // Boys, Girls, Co-Living
	FoodType   string         `db:"food_type" json:"food_type"` // Veg, Veg&Non-Veg
	Facilities pq.StringArray `db:"facilities" json:"facilities"`
	Images     pq.StringArray `db:"images" json:"images"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updated_at"`

	// Loaded separately, not columns on pg_listings
	Pricing      []PricingTier `db:"-" json:"pricing,omitempty"`
	NearbyPlaces []NearbyPlace `db:"-" json:"nearby_places,omitempty"`
	Reviews      []*Review     `db:"-" json:"reviews,omitempty"`
}

// PricingTier maps a room sharing value to its monthly rent amount
type PricingTier struct {
	ListingID uuid.UUID `db:"listing_id" json:"-"`
	Share     int       `db:"share" json:"share"`
	Amount    int       `db:"amount" json:"amount"`
}

// NearbyPlace is a named landmark close to the listing
type NearbyPlace struct {
	ListingID uuid.UUID `db:"listing_id" json:"-"`
	Name      string    `db:"name" json:"name"`
	Distance  string    `db:"distance" json:"distance"`
}

// IsValidPgType reports whether the given PG type is supported
func IsValidPgType(pgType string) bool {
	return pgType == PgTypeBoys || pgType == PgTypeGirls || pgType == PgTypeCoLiving
}

// IsValidFoodType reports whether the given food type is supported
func IsValidFoodType(foodType string) bool {
	return foodType == FoodTypeVeg || foodType == FoodTypeVegNonVeg
}

// TierForShare returns the pricing tier matching a room sharing value
func (l *PgListing) TierForShare(share int) (PricingTier, bool) {
	for _, tier := range l.Pricing {
		if tier.Share == share {
			return tier, true
		}
	}
	return PricingTier{}, false
}
