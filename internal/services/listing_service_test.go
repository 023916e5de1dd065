package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayease/pg-management-backend/internal/database"
	"github.com/stayease/pg-management-backend/internal/models"
	"github.com/stayease/pg-management-backend/pkg/geocode"
)

// fakeGeocoder resolves every address to fixed coordinates, or fails
type fakeGeocoder struct {
	lat, lng float64
	err      error
	calls    int
}

func (f *fakeGeocoder) Geocode(address string) (float64, float64, error) {
	f.calls++
	if f.err != nil {
		return 0, 0, f.err
	}
	return f.lat, f.lng, nil
}

func newListingService(t *testing.T, geocoder *fakeGeocoder) (*ListingService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	return NewListingService(
		database.NewListingRepository(db),
		database.NewReviewRepository(db),
		database.NewUserRepository(db),
		geocoder,
		&fakeSender{},
		testLogger(),
	), mock
}

func validListingInput() ListingInput {
	return ListingInput{
		Name:       "Sunrise PG",
		Address:    "12 MG Road, Bengaluru",
		Contact:    "9876543210",
		TotalRooms: 10,
		PgType:     models.PgTypeBoys,
		FoodType:   models.FoodTypeVeg,
		Pricing:    []models.PricingTier{{Share: 2, Amount: 8500}},
	}
}

func TestListingService_Create(t *testing.T) {
	hostID := uuid.New()

	t.Run("Unresolvable Address Rejected", func(t *testing.T) {
		svc, mock := newListingService(t, &fakeGeocoder{err: geocode.ErrNotFound})

		_, err := svc.Create(hostID, validListingInput())

		assert.ErrorIs(t, err, ErrValidation)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Geocoder Outage Is Upstream Error", func(t *testing.T) {
		svc, _ := newListingService(t, &fakeGeocoder{err: assert.AnError})

		_, err := svc.Create(hostID, validListingInput())

		assert.ErrorIs(t, err, ErrUpstream)
	})

	t.Run("Unknown PG Type Rejected Before Geocoding", func(t *testing.T) {
		geocoder := &fakeGeocoder{lat: 12.97, lng: 77.59}
		svc, _ := newListingService(t, geocoder)

		input := validListingInput()
		input.PgType = "Mixed"

		_, err := svc.Create(hostID, input)

		assert.ErrorIs(t, err, ErrValidation)
		assert.Zero(t, geocoder.calls)
	})

	t.Run("Success Stores Resolved Coordinates", func(t *testing.T) {
		svc, mock := newListingService(t, &fakeGeocoder{lat: 12.9716, lng: 77.5946})

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO pg_listings").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO listing_pricing").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		listing, err := svc.Create(hostID, validListingInput())

		require.NoError(t, err)
		assert.InDelta(t, 12.9716, listing.Latitude, 0.0001)
		assert.InDelta(t, 77.5946, listing.Longitude, 0.0001)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListingService_Update(t *testing.T) {
	hostID := uuid.New()
	listingID := uuid.New()

	t.Run("Unchanged Address Skips Geocoding", func(t *testing.T) {
		geocoder := &fakeGeocoder{lat: 1, lng: 1}
		svc, mock := newListingService(t, geocoder)

		expectListingWithPricing(mock, listingID, hostID, 2, 8500)

		input := validListingInput()
		input.Address = "12 MG Road" // matches the stored address

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE pg_listings").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("DELETE FROM listing_pricing").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO listing_pricing").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("DELETE FROM listing_places").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
		// Host notice lookup
		mock.ExpectQuery("SELECT \\* FROM users WHERE id").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := svc.Update(hostID, listingID, input)

		require.NoError(t, err)
		assert.Zero(t, geocoder.calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
