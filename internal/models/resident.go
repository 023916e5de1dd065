package models

import (
	"time"

	"github.com/google/uuid"
)

// Resident represents a tenant occupying a room within a listing.
// Residents are only ever soft-deleted: payment and review history must
// survive the record, so DeletedAt is set instead of removing the row.
type Resident struct {
	ID              uuid.UUID     `db:"id" json:"id"`
	ListingID       uuid.UUID     `db:"listing_id" json:"listing_id"`
	RoomID          uuid.UUID     `db:"room_id" json:"room_id"`
	HostID          uuid.UUID     `db:"host_id" json:"host_id"`
	UserID          uuid.NullUUID `db:"user_id" json:"user_id,omitempty"`
	IsAccountLinked bool          `db:"is_account_linked" json:"is_account_linked"`
	Name            string        `db:"name" json:"name"`
	Email           string        `db:"email" json:"email"`
	PhoneNumber     string        `db:"phone_number" json:"phone_number"`
	Address         string        `db:"address" json:"address"`
	GuardianName    string        `db:"guardian_name" json:"guardian_name"`
	GuardianNumber  string        `db:"guardian_number" json:"guardian_number"`
	ProfileImageURL string        `db:"profile_image_url" json:"profile_image_url"`
	AadharCardURL   string        `db:"aadhar_card_url" json:"aadhar_card_url"`
	DateOfJoining   time.Time     `db:"date_of_joining" json:"date_of_joining"`
	DeletedAt       *time.Time    `db:"deleted_at" json:"deleted_at,omitempty"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
}

// IsDeleted reports whether the resident has been soft-deleted
func (r *Resident) IsDeleted() bool {
	return r.DeletedAt != nil
}
