package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stayease/pg-management-backend/internal/models"
)

// reviewColumns aliases the flat rating columns into the nested Rating struct
const reviewColumns = `
	id, listing_id, resident_id, resident_name, body,
	food AS "rating.food", facilities AS "rating.facilities",
	hygienic AS "rating.hygienic", safety AS "rating.safety",
	created_at, updated_at`

// ReviewRepository handles review database operations. Reviews are kept in
// their own table plus a denormalized ordered reference list per listing;
// both writes happen inside one transaction so the two can never diverge.
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts a review and appends it to the listing's review list
func (r *ReviewRepository) Create(review *models.Review) error {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	now := time.Now()
	review.CreatedAt = now
	review.UpdatedAt = now

	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO reviews (
			id, listing_id, resident_id, resident_name, body,
			food, facilities, hygienic, safety, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = tx.Exec(query,
		review.ID, review.ListingID, review.ResidentID, review.ResidentName,
		review.Body, review.Rating.Food, review.Rating.Facilities,
		review.Rating.Hygienic, review.Rating.Safety,
		review.CreatedAt, review.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}

	// Append to the listing's ordered reference list
	_, err = tx.Exec(`
		INSERT INTO listing_reviews (listing_id, review_id, position)
		SELECT $1, $2, COALESCE(MAX(position), 0) + 1
		FROM listing_reviews WHERE listing_id = $1`,
		review.ListingID, review.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to append review reference: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit review: %w", err)
	}

	return nil
}

// GetByID retrieves a review by id, nil if not found
func (r *ReviewRepository) GetByID(id uuid.UUID) (*models.Review, error) {
	var review models.Review
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	err := r.db.Get(&review, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return &review, nil
}

// CountByResident counts the reviews written by a resident
func (r *ReviewRepository) CountByResident(residentID uuid.UUID) (int, error) {
	var count int
	err := r.db.Get(&count, `SELECT COUNT(*) FROM reviews WHERE resident_id = $1`, residentID)
	if err != nil {
		return 0, fmt.Errorf("failed to count resident reviews: %w", err)
	}
	return count, nil
}

// ListByListing retrieves all reviews for a listing in reference-list order
func (r *ReviewRepository) ListByListing(listingID uuid.UUID) ([]*models.Review, error) {
	var reviews []*models.Review
	query := `
		SELECT rv.id, rv.listing_id, rv.resident_id, rv.resident_name, rv.body,
			rv.food AS "rating.food", rv.facilities AS "rating.facilities",
			rv.hygienic AS "rating.hygienic", rv.safety AS "rating.safety",
			rv.created_at, rv.updated_at
		FROM reviews rv
		JOIN listing_reviews lr ON lr.review_id = rv.id
		WHERE lr.listing_id = $1
		ORDER BY lr.position`

	err := r.db.Select(&reviews, query, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// Update rewrites the review body and ratings
func (r *ReviewRepository) Update(review *models.Review) (bool, error) {
	review.UpdatedAt = time.Now()

	query := `
		UPDATE reviews
		SET body = $1, food = $2, facilities = $3, hygienic = $4, safety = $5,
			updated_at = $6
		WHERE id = $7`

	result, err := r.db.Exec(query,
		review.Body, review.Rating.Food, review.Rating.Facilities,
		review.Rating.Hygienic, review.Rating.Safety,
		review.UpdatedAt, review.ID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update review: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

// Delete removes a review and pulls it out of the listing's reference list.
// Both happen in one transaction: creation and deletion must stay symmetric
// or the denormalized list would dangle.
func (r *ReviewRepository) Delete(id uuid.UUID) (bool, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM listing_reviews WHERE review_id = $1`, id); err != nil {
		return false, fmt.Errorf("failed to remove review reference: %w", err)
	}

	result, err := tx.Exec(`DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete review: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit review deletion: %w", err)
	}

	return rows > 0, nil
}

// AggregateRatings returns the per-dimension rating sums and the review count
// for a listing.
func (r *ReviewRepository) AggregateRatings(listingID uuid.UUID) (food, facilities, hygienic, safety, count int, err error) {
	row := struct {
		Food       int `db:"food_total"`
		Facilities int `db:"facilities_total"`
		Hygienic   int `db:"hygienic_total"`
		Safety     int `db:"safety_total"`
		Count      int `db:"review_count"`
	}{}

	query := `
		SELECT COALESCE(SUM(food), 0) AS food_total,
			COALESCE(SUM(facilities), 0) AS facilities_total,
			COALESCE(SUM(hygienic), 0) AS hygienic_total,
			COALESCE(SUM(safety), 0) AS safety_total,
			COUNT(*) AS review_count
		FROM reviews WHERE listing_id = $1`

	if err = r.db.Get(&row, query, listingID); err != nil {
		return 0, 0, 0, 0, 0, fmt.Errorf("failed to aggregate ratings: %w", err)
	}

	return row.Food, row.Facilities, row.Hygienic, row.Safety, row.Count, nil
}
