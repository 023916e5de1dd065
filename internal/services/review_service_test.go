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

func newReviewService(t *testing.T, mail *fakeSender) (*ReviewService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	return NewReviewService(
		database.NewReviewRepository(db),
		database.NewResidentRepository(db),
		database.NewListingRepository(db),
		database.NewUserRepository(db),
		mail,
		testLogger(),
	), mock
}

func expectResidentByUser(mock sqlmock.Sqlmock, userID, residentID, listingID uuid.UUID) {
	rows := sqlmock.NewRows([]string{
		"id", "listing_id", "room_id", "host_id", "user_id", "is_account_linked",
		"name", "email", "phone_number", "address", "guardian_name", "guardian_number",
		"profile_image_url", "aadhar_card_url", "date_of_joining",
		"deleted_at", "created_at", "updated_at",
	}).AddRow(residentID, listingID, uuid.New(), uuid.New(), userID, true,
		"Priya Sharma", "priya@example.com", "9876543210", "", "", "",
		"https://cdn/img.jpg", "https://cdn/aadhar.jpg", nowStamp(),
		nil, nowStamp(), nowStamp())

	mock.ExpectQuery("SELECT \\* FROM residents WHERE user_id").
		WithArgs(userID).
		WillReturnRows(rows)
}

func validRating() models.Rating {
	return models.Rating{Food: 4, Facilities: 5, Hygienic: 4, Safety: 5}
}

func TestReviewService_Add(t *testing.T) {
	userID := uuid.New()
	residentID := uuid.New()
	listingID := uuid.New()

	t.Run("Non-Resident Is Forbidden", func(t *testing.T) {
		svc, mock := newReviewService(t, &fakeSender{})

		mock.ExpectQuery("SELECT \\* FROM residents WHERE user_id").
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := svc.Add(userID, listingID, "Nice place", validRating())

		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("Other Listing Is Forbidden", func(t *testing.T) {
		svc, mock := newReviewService(t, &fakeSender{})

		expectResidentByUser(mock, userID, residentID, uuid.New())

		_, err := svc.Add(userID, listingID, "Nice place", validRating())

		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("One Review Per Stay", func(t *testing.T) {
		svc, mock := newReviewService(t, &fakeSender{})

		expectResidentByUser(mock, userID, residentID, listingID)
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM reviews").
			WithArgs(residentID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		_, err := svc.Add(userID, listingID, "Another review", validRating())

		assert.ErrorIs(t, err, ErrReviewLimit)
	})

	t.Run("Out Of Range Rating", func(t *testing.T) {
		svc, mock := newReviewService(t, &fakeSender{})

		expectResidentByUser(mock, userID, residentID, listingID)

		_, err := svc.Add(userID, listingID, "Nice place",
			models.Rating{Food: 0, Facilities: 5, Hygienic: 4, Safety: 5})

		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("Success", func(t *testing.T) {
		svc, mock := newReviewService(t, &fakeSender{})

		expectResidentByUser(mock, userID, residentID, listingID)
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM reviews").
			WithArgs(residentID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO reviews").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO listing_reviews").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
		// Host notice lookup; missing listing just skips the email
		mock.ExpectQuery("SELECT \\* FROM pg_listings WHERE id = \\$1").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		review, err := svc.Add(userID, listingID, "Clean rooms, good food.", validRating())

		require.NoError(t, err)
		assert.Equal(t, residentID, review.ResidentID)
		assert.Equal(t, "Priya Sharma", review.ResidentName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReviewService_Delete(t *testing.T) {
	userID := uuid.New()
	residentID := uuid.New()
	listingID := uuid.New()

	t.Run("Removes Review And Reference", func(t *testing.T) {
		svc, mock := newReviewService(t, &fakeSender{})
		reviewID := uuid.New()

		expectResidentByUser(mock, userID, residentID, listingID)

		reviewRows := sqlmock.NewRows([]string{
			"id", "listing_id", "resident_id", "resident_name", "body",
			"rating.food", "rating.facilities", "rating.hygienic", "rating.safety",
			"created_at", "updated_at",
		}).AddRow(reviewID, listingID, residentID, "Priya Sharma", "Nice place",
			4, 5, 4, 5, nowStamp(), nowStamp())
		mock.ExpectQuery("SELECT").
			WithArgs(reviewID).
			WillReturnRows(reviewRows)

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM listing_reviews").
			WithArgs(reviewID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("DELETE FROM reviews").
			WithArgs(reviewID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := svc.Delete(userID, reviewID)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Foreign Review Is Forbidden", func(t *testing.T) {
		svc, mock := newReviewService(t, &fakeSender{})
		reviewID := uuid.New()

		expectResidentByUser(mock, userID, residentID, listingID)

		reviewRows := sqlmock.NewRows([]string{
			"id", "listing_id", "resident_id", "resident_name", "body",
			"rating.food", "rating.facilities", "rating.hygienic", "rating.safety",
			"created_at", "updated_at",
		}).AddRow(reviewID, listingID, uuid.New(), "Someone Else", "Their review",
			3, 3, 3, 3, nowStamp(), nowStamp())
		mock.ExpectQuery("SELECT").
			WithArgs(reviewID).
			WillReturnRows(reviewRows)

		err := svc.Delete(userID, reviewID)

		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestReviewService_AverageRating(t *testing.T) {
	hostID := uuid.New()
	listingID := uuid.New()

	t.Run("Zero Reviews", func(t *testing.T) {
		svc, mock := newReviewService(t, &fakeSender{})

		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM pg_listings").
			WithArgs(listingID, hostID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery("SELECT COALESCE").
			WithArgs(listingID).
			WillReturnRows(sqlmock.NewRows([]string{
				"food_total", "facilities_total", "hygienic_total", "safety_total", "review_count",
			}).AddRow(0, 0, 0, 0, 0))

		_, err := svc.AverageRating(hostID, listingID)

		assert.ErrorIs(t, err, ErrNoReviews)
	})

	t.Run("Computes Means", func(t *testing.T) {
		svc, mock := newReviewService(t, &fakeSender{})

		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM pg_listings").
			WithArgs(listingID, hostID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery("SELECT COALESCE").
			WithArgs(listingID).
			WillReturnRows(sqlmock.NewRows([]string{
				"food_total", "facilities_total", "hygienic_total", "safety_total", "review_count",
			}).AddRow(8, 10, 6, 8, 2))

		summary, err := svc.AverageRating(hostID, listingID)

		require.NoError(t, err)
		assert.Equal(t, 4.0, summary.AverageFood)
		assert.Equal(t, 5.0, summary.AverageFacilities)
		assert.Equal(t, 3.0, summary.AverageHygienic)
		assert.Equal(t, 4.0, summary.AverageSafety)
		assert.Equal(t, 4.0, summary.OverallAverage)
		assert.Equal(t, 2, summary.ReviewCount)
	})
}
