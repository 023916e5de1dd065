package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stayease/pg-management-backend/internal/models"
)

// PaymentRepository handles payment database operations.
// Payments referencing soft-deleted residents are excluded from the
// host-facing lists and totals but are never removed from storage.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts a new payment in pending status
func (r *PaymentRepository) Create(payment *models.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	now := time.Now()
	payment.CreatedAt = now
	payment.UpdatedAt = now
	if payment.PaymentDate.IsZero() {
		payment.PaymentDate = now
	}
	if payment.Status == "" {
		payment.Status = models.PaymentStatusPending
	}

	query := `
		INSERT INTO payments (
			id, listing_id, resident_id, amount, method, status,
			gateway_order_id, payment_date, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(query,
		payment.ID, payment.ListingID, payment.ResidentID,
		payment.Amount, payment.Method, payment.Status,
		payment.GatewayOrderID, payment.PaymentDate,
		payment.CreatedAt, payment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

// GetByOrderID retrieves a payment by its gateway order id, nil if not found
func (r *PaymentRepository) GetByOrderID(orderID string) (*models.Payment, error) {
	var payment models.Payment
	query := `SELECT * FROM payments WHERE gateway_order_id = $1`

	err := r.db.Get(&payment, query, orderID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment by order id: %w", err)
	}
	return &payment, nil
}

// GetByOrderIDWithResident retrieves a payment joined with resident display
// fields, nil if not found.
func (r *PaymentRepository) GetByOrderIDWithResident(orderID string) (*models.PaymentWithResident, error) {
	var payment models.PaymentWithResident
	query := `
		SELECT p.*, res.name AS resident_name, res.email AS resident_email
		FROM payments p
		JOIN residents res ON res.id = p.resident_id
		WHERE p.gateway_order_id = $1`

	err := r.db.Get(&payment, query, orderID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment with resident: %w", err)
	}
	return &payment, nil
}

// SetStatusFromPending moves a payment from pending into a terminal status.
// The WHERE clause is the transition guard: a payment already in a terminal
// state is not rewritten. Returns true if a row changed.
func (r *PaymentRepository) SetStatusFromPending(orderID, status string) (bool, error) {
	if status != models.PaymentStatusCompleted && status != models.PaymentStatusFailed {
		return false, fmt.Errorf("invalid terminal payment status: %s", status)
	}

	query := `
		UPDATE payments
		SET status = $1, updated_at = $2
		WHERE gateway_order_id = $3 AND status = $4`

	result, err := r.db.Exec(query, status, time.Now(), orderID, models.PaymentStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to update payment status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

// ListByStatus retrieves a listing's payments with the given status, joined
// with resident fields and excluding payments of soft-deleted residents.
func (r *PaymentRepository) ListByStatus(listingID uuid.UUID, status string) ([]*models.PaymentWithResident, error) {
	var payments []*models.PaymentWithResident
	query := `
		SELECT p.*, res.name AS resident_name, res.email AS resident_email
		FROM payments p
		JOIN residents res ON res.id = p.resident_id
		WHERE p.listing_id = $1 AND p.status = $2 AND res.deleted_at IS NULL
		ORDER BY p.payment_date DESC`

	err := r.db.Select(&payments, query, listingID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

// TotalByStatus sums a listing's payment amounts for a status, excluding
// payments of soft-deleted residents.
func (r *PaymentRepository) TotalByStatus(listingID uuid.UUID, status string) (int, error) {
	var total int
	query := `
		SELECT COALESCE(SUM(p.amount), 0)
		FROM payments p
		JOIN residents res ON res.id = p.resident_id
		WHERE p.listing_id = $1 AND p.status = $2 AND res.deleted_at IS NULL`

	err := r.db.Get(&total, query, listingID, status)
	if err != nil {
		return 0, fmt.Errorf("failed to total payments: %w", err)
	}
	return total, nil
}

// ListByResident retrieves every payment of one resident within a listing,
// regardless of status. Historical rows survive resident soft-deletion.
func (r *PaymentRepository) ListByResident(listingID, residentID uuid.UUID) ([]*models.Payment, error) {
	var payments []*models.Payment
	query := `
		SELECT * FROM payments
		WHERE listing_id = $1 AND resident_id = $2
		ORDER BY payment_date DESC`

	err := r.db.Select(&payments, query, listingID, residentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list resident payments: %w", err)
	}
	return payments, nil
}
