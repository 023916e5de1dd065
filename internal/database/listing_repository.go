package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stayease/pg-management-backend/internal/models"
)

// ListingRepository handles PG listing database operations
type ListingRepository struct {
	db *sqlx.DB
}

// NewListingRepository creates a new listing repository
func NewListingRepository(db *sqlx.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

// Create inserts a listing together with its pricing tiers and nearby places
// in a single transaction.
func (r *ListingRepository) Create(listing *models.PgListing) error {
	if listing.ID == uuid.Nil {
		listing.ID = uuid.New()
	}
	now := time.Now()
	listing.CreatedAt = now
	listing.UpdatedAt = now

	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO pg_listings (
			id, host_id, name, address, latitude, longitude, contact,
			total_rooms, pg_type, food_type, facilities, images,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err = tx.Exec(query,
		listing.ID, listing.HostID, listing.Name, listing.Address,
		listing.Latitude, listing.Longitude, listing.Contact,
		listing.TotalRooms, listing.PgType, listing.FoodType,
		pq.Array(listing.Facilities), pq.Array(listing.Images),
		listing.CreatedAt, listing.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}

	for _, tier := range listing.Pricing {
		_, err = tx.Exec(
			`INSERT INTO listing_pricing (listing_id, share, amount) VALUES ($1, $2, $3)`,
			listing.ID, tier.Share, tier.Amount,
		)
		if err != nil {
			return fmt.Errorf("failed to create pricing tier: %w", err)
		}
	}

	for _, place := range listing.NearbyPlaces {
		_, err = tx.Exec(
			`INSERT INTO listing_places (listing_id, name, distance) VALUES ($1, $2, $3)`,
			listing.ID, place.Name, place.Distance,
		)
		if err != nil {
			return fmt.Errorf("failed to create nearby place: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit listing: %w", err)
	}

	return nil
}

// GetByID retrieves a listing with pricing and nearby places, nil if not found
func (r *ListingRepository) GetByID(id uuid.UUID) (*models.PgListing, error) {
	var listing models.PgListing
	err := r.db.Get(&listing, `SELECT * FROM pg_listings WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}

	if err := r.loadDetails(&listing); err != nil {
		return nil, err
	}

	return &listing, nil
}

// GetByIDForHost retrieves a listing only if it is owned by the given host
func (r *ListingRepository) GetByIDForHost(id, hostID uuid.UUID) (*models.PgListing, error) {
	var listing models.PgListing
	err := r.db.Get(&listing, `SELECT * FROM pg_listings WHERE id = $1 AND host_id = $2`, id, hostID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get listing for host: %w", err)
	}

	if err := r.loadDetails(&listing); err != nil {
		return nil, err
	}

	return &listing, nil
}

// ExistsForHost reports whether the listing exists and is owned by the host
func (r *ListingRepository) ExistsForHost(id, hostID uuid.UUID) (bool, error) {
	var count int
	err := r.db.Get(&count, `SELECT COUNT(*) FROM pg_listings WHERE id = $1 AND host_id = $2`, id, hostID)
	if err != nil {
		return false, fmt.Errorf("failed to check listing ownership: %w", err)
	}
	return count > 0, nil
}

// ListAll retrieves every listing with its pricing and places
func (r *ListingRepository) ListAll() ([]*models.PgListing, error) {
	var listings []*models.PgListing
	err := r.db.Select(&listings, `SELECT * FROM pg_listings ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}

	for _, listing := range listings {
		if err := r.loadDetails(listing); err != nil {
			return nil, err
		}
	}

	return listings, nil
}

// ListByHost retrieves the listings owned by a host
func (r *ListingRepository) ListByHost(hostID uuid.UUID) ([]*models.PgListing, error) {
	var listings []*models.PgListing
	err := r.db.Select(&listings,
		`SELECT * FROM pg_listings WHERE host_id = $1 ORDER BY created_at DESC`, hostID)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings for host: %w", err)
	}

	for _, listing := range listings {
		if err := r.loadDetails(listing); err != nil {
			return nil, err
		}
	}

	return listings, nil
}

// Update rewrites the mutable listing fields plus pricing and places.
// The host reference is never updated.
func (r *ListingRepository) Update(listing *models.PgListing) error {
	listing.UpdatedAt = time.Now()

	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE pg_listings
		SET name = $1, address = $2, latitude = $3, longitude = $4,
			contact = $5, total_rooms = $6, pg_type = $7, food_type = $8,
			facilities = $9, images = $10, updated_at = $11
		WHERE id = $12 AND host_id = $13`

	result, err := tx.Exec(query,
		listing.Name, listing.Address, listing.Latitude, listing.Longitude,
		listing.Contact, listing.TotalRooms, listing.PgType, listing.FoodType,
		pq.Array(listing.Facilities), pq.Array(listing.Images),
		listing.UpdatedAt, listing.ID, listing.HostID,
	)
	if err != nil {
		return fmt.Errorf("failed to update listing: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	if _, err = tx.Exec(`DELETE FROM listing_pricing WHERE listing_id = $1`, listing.ID); err != nil {
		return fmt.Errorf("failed to clear pricing tiers: %w", err)
	}
	for _, tier := range listing.Pricing {
		_, err = tx.Exec(
			`INSERT INTO listing_pricing (listing_id, share, amount) VALUES ($1, $2, $3)`,
			listing.ID, tier.Share, tier.Amount,
		)
		if err != nil {
			return fmt.Errorf("failed to update pricing tier: %w", err)
		}
	}

	if _, err = tx.Exec(`DELETE FROM listing_places WHERE listing_id = $1`, listing.ID); err != nil {
		return fmt.Errorf("failed to clear nearby places: %w", err)
	}
	for _, place := range listing.NearbyPlaces {
		_, err = tx.Exec(
			`INSERT INTO listing_places (listing_id, name, distance) VALUES ($1, $2, $3)`,
			listing.ID, place.Name, place.Distance,
		)
		if err != nil {
			return fmt.Errorf("failed to update nearby place: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit listing update: %w", err)
	}

	return nil
}

// Delete removes a listing owned by the host. Returns false if no row matched.
func (r *ListingRepository) Delete(id, hostID uuid.UUID) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM pg_listings WHERE id = $1 AND host_id = $2`, id, hostID)
	if err != nil {
		return false, fmt.Errorf("failed to delete listing: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

// GetPricing retrieves the pricing tiers for a listing
func (r *ListingRepository) GetPricing(listingID uuid.UUID) ([]models.PricingTier, error) {
	var tiers []models.PricingTier
	err := r.db.Select(&tiers,
		`SELECT * FROM listing_pricing WHERE listing_id = $1 ORDER BY share`, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pricing tiers: %w", err)
	}
	return tiers, nil
}

func (r *ListingRepository) loadDetails(listing *models.PgListing) error {
	pricing, err := r.GetPricing(listing.ID)
	if err != nil {
		return err
	}
	listing.Pricing = pricing

	var places []models.NearbyPlace
	err = r.db.Select(&places,
		`SELECT * FROM listing_places WHERE listing_id = $1 ORDER BY name`, listing.ID)
	if err != nil {
		return fmt.Errorf("failed to get nearby places: %w", err)
	}
	listing.NearbyPlaces = places

	return nil
}
