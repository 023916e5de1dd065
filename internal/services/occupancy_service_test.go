package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayease/pg-management-backend/internal/database"
)

func newOccupancyService(t *testing.T) (*OccupancyService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	return NewOccupancyService(
		database.NewRoomRepository(db),
		database.NewResidentRepository(db),
		testLogger(),
	), mock
}

func expectRoomLookup(mock sqlmock.Sqlmock, roomID uuid.UUID, sharing int, available bool) {
	rows := sqlmock.NewRows([]string{
		"id", "listing_id", "host_id", "sharing", "room_number", "floor",
		"is_available", "created_at", "updated_at",
	}).AddRow(roomID, uuid.New(), uuid.New(), sharing, 101, 1, available, nowStamp(), nowStamp())

	mock.ExpectQuery("SELECT \\* FROM rooms WHERE id = \\$1").
		WithArgs(roomID).
		WillReturnRows(rows)
}

func TestOccupancyService_Reconcile(t *testing.T) {
	t.Run("Vacancy Remains", func(t *testing.T) {
		svc, mock := newOccupancyService(t)
		roomID := uuid.New()

		expectRoomLookup(mock, roomID, 3, false)
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM residents").
			WithArgs(roomID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		mock.ExpectExec("UPDATE rooms SET is_available").
			WithArgs(true, sqlmock.AnyArg(), roomID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := svc.Reconcile(roomID)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Room Full", func(t *testing.T) {
		svc, mock := newOccupancyService(t)
		roomID := uuid.New()

		expectRoomLookup(mock, roomID, 2, true)
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM residents").
			WithArgs(roomID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		mock.ExpectExec("UPDATE rooms SET is_available").
			WithArgs(false, sqlmock.AnyArg(), roomID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := svc.Reconcile(roomID)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing Room Is Not An Error", func(t *testing.T) {
		svc, mock := newOccupancyService(t)
		roomID := uuid.New()

		mock.ExpectQuery("SELECT \\* FROM rooms WHERE id = \\$1").
			WithArgs(roomID).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		err := svc.Reconcile(roomID)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
