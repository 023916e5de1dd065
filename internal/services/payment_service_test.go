package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayease/pg-management-backend/internal/database"
	"github.com/stayease/pg-management-backend/internal/models"
)

func newPaymentService(t *testing.T, gateway *fakeGateway, mail *fakeSender) (*PaymentService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	return NewPaymentService(
		database.NewPaymentRepository(db),
		database.NewResidentRepository(db),
		database.NewListingRepository(db),
		database.NewRoomRepository(db),
		database.NewUserRepository(db),
		gateway,
		mail,
		testLogger(),
		"INR",
		"http://localhost:3000/payment",
	), mock
}

func expectListingWithPricing(mock sqlmock.Sqlmock, listingID, hostID uuid.UUID, share, amount int) {
	listingRows := sqlmock.NewRows([]string{
		"id", "host_id", "name", "address", "latitude", "longitude", "contact",
		"total_rooms", "pg_type", "food_type", "facilities", "images",
		"created_at", "updated_at",
	}).AddRow(listingID, hostID, "Sunrise PG", "12 MG Road", 12.97, 77.59, "9876543210",
		10, "Boys", "Veg", "{}", "{}", nowStamp(), nowStamp())

	mock.ExpectQuery("SELECT \\* FROM pg_listings WHERE id = \\$1 AND host_id = \\$2").
		WithArgs(listingID, hostID).
		WillReturnRows(listingRows)
	mock.ExpectQuery("SELECT \\* FROM listing_pricing").
		WithArgs(listingID).
		WillReturnRows(sqlmock.NewRows([]string{"listing_id", "share", "amount"}).
			AddRow(listingID, share, amount))
	mock.ExpectQuery("SELECT \\* FROM listing_places").
		WithArgs(listingID).
		WillReturnRows(sqlmock.NewRows([]string{"listing_id", "name", "distance"}))
}

func expectOneResident(mock sqlmock.Sqlmock, listingID, hostID, roomID uuid.UUID) {
	rows := sqlmock.NewRows([]string{
		"id", "listing_id", "room_id", "host_id", "user_id", "is_account_linked",
		"name", "email", "phone_number", "address", "guardian_name", "guardian_number",
		"profile_image_url", "aadhar_card_url", "date_of_joining",
		"deleted_at", "created_at", "updated_at",
	}).AddRow(uuid.New(), listingID, roomID, hostID, nil, false,
		"Priya Sharma", "priya@example.com", "9876543210", "", "", "",
		"https://cdn/img.jpg", "https://cdn/aadhar.jpg", nowStamp(),
		nil, nowStamp(), nowStamp())

	mock.ExpectQuery("SELECT \\* FROM residents").
		WithArgs(listingID, hostID).
		WillReturnRows(rows)
}

func expectRoom(mock sqlmock.Sqlmock, roomID uuid.UUID, sharing int) {
	rows := sqlmock.NewRows([]string{
		"id", "listing_id", "host_id", "sharing", "room_number", "floor",
		"is_available", "created_at", "updated_at",
	}).AddRow(roomID, uuid.New(), uuid.New(), sharing, 101, 1, true, nowStamp(), nowStamp())

	mock.ExpectQuery("SELECT \\* FROM rooms WHERE id = \\$1").
		WithArgs(roomID).
		WillReturnRows(rows)
}

func TestPaymentService_SendReminders(t *testing.T) {
	hostID := uuid.New()
	listingID := uuid.New()

	t.Run("Sent", func(t *testing.T) {
		gateway := &fakeGateway{orderID: "order_abc123"}
		mail := &fakeSender{}
		svc, mock := newPaymentService(t, gateway, mail)
		roomID := uuid.New()

		expectListingWithPricing(mock, listingID, hostID, 2, 8500)
		expectOneResident(mock, listingID, hostID, roomID)
		expectRoom(mock, roomID, 2)
		mock.ExpectExec("INSERT INTO payments").
			WillReturnResult(sqlmock.NewResult(0, 1))

		summary, err := svc.SendReminders(hostID, listingID)

		require.NoError(t, err)
		assert.Equal(t, ReminderSummary{Sent: 1}, summary)
		require.Len(t, mail.sent, 1)
		assert.Equal(t, "priya@example.com", mail.sent[0].To)
		assert.Contains(t, mail.sent[0].Body, "order_abc123")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Skipped When No Pricing Tier", func(t *testing.T) {
		gateway := &fakeGateway{orderID: "order_abc123"}
		mail := &fakeSender{}
		svc, mock := newPaymentService(t, gateway, mail)
		roomID := uuid.New()

		// Pricing covers 2-sharing only; the resident's room is 3-sharing.
		expectListingWithPricing(mock, listingID, hostID, 2, 8500)
		expectOneResident(mock, listingID, hostID, roomID)
		expectRoom(mock, roomID, 3)

		summary, err := svc.SendReminders(hostID, listingID)

		require.NoError(t, err)
		assert.Equal(t, ReminderSummary{Skipped: 1}, summary)
		assert.Zero(t, gateway.orderCalls)
		assert.Empty(t, mail.sent)
	})

	t.Run("Gateway Failure Does Not Abort Batch", func(t *testing.T) {
		gateway := &fakeGateway{createErr: assert.AnError}
		mail := &fakeSender{}
		svc, mock := newPaymentService(t, gateway, mail)
		roomID := uuid.New()

		expectListingWithPricing(mock, listingID, hostID, 2, 8500)
		expectOneResident(mock, listingID, hostID, roomID)
		expectRoom(mock, roomID, 2)

		summary, err := svc.SendReminders(hostID, listingID)

		require.NoError(t, err)
		assert.Equal(t, ReminderSummary{Failed: 1}, summary)
		assert.Empty(t, mail.sent)
	})

	t.Run("Listing Not Owned", func(t *testing.T) {
		svc, mock := newPaymentService(t, &fakeGateway{}, &fakeSender{})

		mock.ExpectQuery("SELECT \\* FROM pg_listings WHERE id = \\$1 AND host_id = \\$2").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := svc.SendReminders(hostID, listingID)

		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func paymentWithResidentRows(orderID, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "listing_id", "resident_id", "amount", "method", "status",
		"gateway_order_id", "payment_date", "created_at", "updated_at",
		"resident_name", "resident_email",
	}).AddRow(uuid.New(), uuid.New(), uuid.New(), 8500, "razorpay", status,
		orderID, nowStamp(), nowStamp(), nowStamp(), "Priya Sharma", "")
}

func TestPaymentService_ConfirmPayment(t *testing.T) {
	t.Run("Tampered Signature Changes Nothing", func(t *testing.T) {
		svc, mock := newPaymentService(t, &fakeGateway{verifyOK: false}, &fakeSender{})

		_, err := svc.ConfirmPayment("order_abc123", "pay_1", "tampered")

		assert.ErrorIs(t, err, ErrInvalidSignature)
		// No query, no write
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Completes Pending Payment", func(t *testing.T) {
		svc, mock := newPaymentService(t, &fakeGateway{verifyOK: true}, &fakeSender{})

		mock.ExpectQuery("SELECT p\\.\\*, res\\.name AS resident_name").
			WithArgs("order_abc123").
			WillReturnRows(paymentWithResidentRows("order_abc123", models.PaymentStatusPending))
		mock.ExpectExec("UPDATE payments").
			WithArgs(models.PaymentStatusCompleted, sqlmock.AnyArg(), "order_abc123", models.PaymentStatusPending).
			WillReturnResult(sqlmock.NewResult(0, 1))
		// Host notice lookup; the listing row is gone, notice is skipped
		mock.ExpectQuery("SELECT \\* FROM pg_listings WHERE id = \\$1").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		payment, err := svc.ConfirmPayment("order_abc123", "pay_1", "sig")

		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusCompleted, payment.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Never Moves Backward From Failed", func(t *testing.T) {
		svc, mock := newPaymentService(t, &fakeGateway{verifyOK: true}, &fakeSender{})

		mock.ExpectQuery("SELECT p\\.\\*, res\\.name AS resident_name").
			WithArgs("order_abc123").
			WillReturnRows(paymentWithResidentRows("order_abc123", models.PaymentStatusFailed))

		_, err := svc.ConfirmPayment("order_abc123", "pay_1", "sig")

		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Idempotent When Already Completed", func(t *testing.T) {
		svc, mock := newPaymentService(t, &fakeGateway{verifyOK: true}, &fakeSender{})

		mock.ExpectQuery("SELECT p\\.\\*, res\\.name AS resident_name").
			WithArgs("order_abc123").
			WillReturnRows(paymentWithResidentRows("order_abc123", models.PaymentStatusCompleted))

		payment, err := svc.ConfirmPayment("order_abc123", "pay_1", "sig")

		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusCompleted, payment.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown Order", func(t *testing.T) {
		svc, mock := newPaymentService(t, &fakeGateway{verifyOK: true}, &fakeSender{})

		mock.ExpectQuery("SELECT p\\.\\*, res\\.name AS resident_name").
			WithArgs("order_missing").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := svc.ConfirmPayment("order_missing", "pay_1", "sig")

		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestPaymentService_FailPayment(t *testing.T) {
	t.Run("Never Moves Backward From Completed", func(t *testing.T) {
		svc, mock := newPaymentService(t, &fakeGateway{verifyOK: true}, &fakeSender{})

		rows := sqlmock.NewRows([]string{
			"id", "listing_id", "resident_id", "amount", "method", "status",
			"gateway_order_id", "payment_date", "created_at", "updated_at",
		}).AddRow(uuid.New(), uuid.New(), uuid.New(), 8500, "razorpay",
			models.PaymentStatusCompleted, "order_abc123", nowStamp(), nowStamp(), nowStamp())

		mock.ExpectQuery("SELECT \\* FROM payments WHERE gateway_order_id").
			WithArgs("order_abc123").
			WillReturnRows(rows)

		_, err := svc.FailPayment("order_abc123", "pay_1", "sig")

		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Tampered Signature Changes Nothing", func(t *testing.T) {
		svc, mock := newPaymentService(t, &fakeGateway{verifyOK: false}, &fakeSender{})

		_, err := svc.FailPayment("order_abc123", "pay_1", "tampered")

		assert.ErrorIs(t, err, ErrInvalidSignature)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
