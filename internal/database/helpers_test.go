package database

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// nowStamp is a shorthand for timestamp columns in mock rows
func nowStamp() time.Time {
	return time.Now()
}

// newMockDB returns a sqlx handle backed by sqlmock
func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db := sqlx.NewDb(mockDB, "sqlmock")
	t.Cleanup(func() { db.Close() })

	return db, mock
}
