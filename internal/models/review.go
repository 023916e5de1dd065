package models

import (
	"time"

	"github.com/google/uuid"
)

// Rating holds the four review dimensions, each 1 to 5
type Rating struct {
	Food       int `db:"food" json:"food"`
	Facilities int `db:"facilities" json:"facilities"`
	Hygienic   int `db:"hygienic" json:"hygienic"`
	Safety     int `db:"safety" json:"safety"`
}

// Valid reports whether every dimension is within 1..5
func (r Rating) Valid() bool {
	for _, v := range []int{r.Food, r.Facilities, r.Hygienic, r.Safety} {
		if v < 1 || v > 5 {
			return false
		}
	}
	return true
}

// Review represents a resident's review of the listing they stay in.
// At most one review exists per resident per active stay.
type Review struct {
	ID           uuid.UUID `db:"id" json:"id"`
	ListingID    uuid.UUID `db:"listing_id" json:"listing_id"`
	ResidentID   uuid.UUID `db:"resident_id" json:"resident_id"`
	ResidentName string    `db:"resident_name" json:"resident_name"`
	Body         string    `db:"body" json:"review"`
	Rating       Rating    `db:"rating" json:"rating"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// RatingSummary holds per-dimension averages for a listing
type RatingSummary struct {
	ListingID         uuid.UUID `json:"pg_id"`
	AverageFood       float64   `json:"average_food_rating"`
	AverageFacilities float64   `json:"average_facilities_rating"`
	AverageHygienic   float64   `json:"average_hygienic_rating"`
	AverageSafety     float64   `json:"average_safety_rating"`
	OverallAverage    float64   `json:"overall_average_rating"`
	ReviewCount       int       `json:"review_count"`
}
