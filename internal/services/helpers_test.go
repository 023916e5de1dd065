package services

import (
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// newMockDB returns a sqlx handle backed by sqlmock
func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db := sqlx.NewDb(mockDB, "sqlmock")
	t.Cleanup(func() { db.Close() })

	return db, mock
}

// testLogger returns a logger that swallows output
func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func nowStamp() time.Time {
	return time.Now()
}

// fakeSender records outbound mail
type fakeSender struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

func (f *fakeSender) Send(to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

// fakeGateway stands in for the payment gateway
type fakeGateway struct {
	orderID    string
	createErr  error
	verifyOK   bool
	orderCalls int
}

func (f *fakeGateway) CreateOrder(amount int64, currency, receipt string) (string, error) {
	f.orderCalls++
	if f.createErr != nil {
		return "", f.createErr
	}
	return f.orderID, nil
}

func (f *fakeGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return f.verifyOK
}
