package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stayease/pg-management-backend/internal/models"
)

// ResidentRepository handles resident database operations. Residents are
// soft-deleted: every read here excludes deleted rows unless the method name
// says otherwise.
type ResidentRepository struct {
	db *sqlx.DB
}

// NewResidentRepository creates a new resident repository
func NewResidentRepository(db *sqlx.DB) *ResidentRepository {
	return &ResidentRepository{db: db}
}

// Create inserts a new resident
func (r *ResidentRepository) Create(resident *models.Resident) error {
	if resident.ID == uuid.Nil {
		resident.ID = uuid.New()
	}
	now := time.Now()
	resident.CreatedAt = now
	resident.UpdatedAt = now
	if resident.DateOfJoining.IsZero() {
		resident.DateOfJoining = now
	}

	query := `
		INSERT INTO residents (
			id, listing_id, room_id, host_id, user_id, is_account_linked,
			name, email, phone_number, address, guardian_name, guardian_number,
			profile_image_url, aadhar_card_url, date_of_joining,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err := r.db.Exec(query,
		resident.ID, resident.ListingID, resident.RoomID, resident.HostID,
		resident.UserID, resident.IsAccountLinked,
		resident.Name, resident.Email, resident.PhoneNumber, resident.Address,
		resident.GuardianName, resident.GuardianNumber,
		resident.ProfileImageURL, resident.AadharCardURL, resident.DateOfJoining,
		resident.CreatedAt, resident.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create resident: %w", err)
	}

	return nil
}

// GetByID retrieves an active resident scoped to a listing and host
func (r *ResidentRepository) GetByID(id, listingID, hostID uuid.UUID) (*models.Resident, error) {
	var resident models.Resident
	query := `
		SELECT * FROM residents
		WHERE id = $1 AND listing_id = $2 AND host_id = $3 AND deleted_at IS NULL`

	err := r.db.Get(&resident, query, id, listingID, hostID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get resident: %w", err)
	}
	return &resident, nil
}

// GetActiveByUserID retrieves the active resident record linked to a user
// account, nil if the user has no current stay. The most recent stay wins if
// a user somehow ends up linked to more than one active record.
func (r *ResidentRepository) GetActiveByUserID(userID uuid.UUID) (*models.Resident, error) {
	var resident models.Resident
	query := `
		SELECT * FROM residents WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC LIMIT 1`

	err := r.db.Get(&resident, query, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get resident by user: %w", err)
	}
	return &resident, nil
}

// ListByListing retrieves the active residents of a listing for a host
func (r *ResidentRepository) ListByListing(listingID, hostID uuid.UUID) ([]*models.Resident, error) {
	var residents []*models.Resident
	query := `
		SELECT * FROM residents
		WHERE listing_id = $1 AND host_id = $2 AND deleted_at IS NULL
		ORDER BY created_at`

	err := r.db.Select(&residents, query, listingID, hostID)
	if err != nil {
		return nil, fmt.Errorf("failed to list residents: %w", err)
	}
	return residents, nil
}

// ListDeleted retrieves the soft-deleted residents of a listing for a host
func (r *ResidentRepository) ListDeleted(listingID, hostID uuid.UUID) ([]*models.Resident, error) {
	var residents []*models.Resident
	query := `
		SELECT * FROM residents
		WHERE listing_id = $1 AND host_id = $2 AND deleted_at IS NOT NULL
		ORDER BY deleted_at DESC`

	err := r.db.Select(&residents, query, listingID, hostID)
	if err != nil {
		return nil, fmt.Errorf("failed to list deleted residents: %w", err)
	}
	return residents, nil
}

// CountActiveInRoom counts the non-deleted residents assigned to a room
func (r *ResidentRepository) CountActiveInRoom(roomID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM residents WHERE room_id = $1 AND deleted_at IS NULL`

	err := r.db.Get(&count, query, roomID)
	if err != nil {
		return 0, fmt.Errorf("failed to count residents in room: %w", err)
	}
	return count, nil
}

// Update rewrites the mutable resident fields including the room assignment
func (r *ResidentRepository) Update(resident *models.Resident) (bool, error) {
	resident.UpdatedAt = time.Now()

	query := `
		UPDATE residents
		SET room_id = $1, name = $2, email = $3, phone_number = $4,
			address = $5, guardian_name = $6, guardian_number = $7,
			profile_image_url = $8, aadhar_card_url = $9, updated_at = $10
		WHERE id = $11 AND listing_id = $12 AND host_id = $13 AND deleted_at IS NULL`

	result, err := r.db.Exec(query,
		resident.RoomID, resident.Name, resident.Email, resident.PhoneNumber,
		resident.Address, resident.GuardianName, resident.GuardianNumber,
		resident.ProfileImageURL, resident.AadharCardURL, resident.UpdatedAt,
		resident.ID, resident.ListingID, resident.HostID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update resident: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

// SoftDelete marks a resident deleted. The row is never removed.
func (r *ResidentRepository) SoftDelete(id, listingID, hostID uuid.UUID) (bool, error) {
	query := `
		UPDATE residents
		SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND listing_id = $3 AND host_id = $4 AND deleted_at IS NULL`

	result, err := r.db.Exec(query, time.Now(), id, listingID, hostID)
	if err != nil {
		return false, fmt.Errorf("failed to soft-delete resident: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

// LinkAccount binds a user account to a resident and marks it linked.
// Used by the confirmation-link flow; intentionally not host-scoped because
// the confirm endpoint is unauthenticated.
func (r *ResidentRepository) LinkAccount(id, userID uuid.UUID) (bool, error) {
	query := `
		UPDATE residents
		SET user_id = $1, is_account_linked = TRUE, updated_at = $2
		WHERE id = $3 AND deleted_at IS NULL`

	result, err := r.db.Exec(query, userID, time.Now(), id)
	if err != nil {
		return false, fmt.Errorf("failed to link resident account: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

// ExistsActiveInRoom reports whether any active resident occupies the room
func (r *ResidentRepository) ExistsActiveInRoom(roomID uuid.UUID) (bool, error) {
	count, err := r.CountActiveInRoom(roomID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
