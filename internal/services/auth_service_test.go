package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/stayease/pg-management-backend/internal/database"
	"github.com/stayease/pg-management-backend/internal/models"
	"github.com/stayease/pg-management-backend/pkg/jwt"
)

func newAuthService(t *testing.T, mail *fakeSender) (*AuthService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	return NewAuthService(
		database.NewUserRepository(db),
		jwt.NewService("test-secret", time.Hour),
		mail,
		testLogger(),
		bcrypt.MinCost,
	), mock
}

func TestAuthService_Register(t *testing.T) {
	t.Run("Weak Password Rejected", func(t *testing.T) {
		svc, _ := newAuthService(t, &fakeSender{})

		_, err := svc.Register("ravi", "ravi@example.com", "short1", models.RolePgAdmin)
		assert.ErrorIs(t, err, ErrValidation)

		_, err = svc.Register("ravi", "ravi@example.com", "lettersonly", models.RolePgAdmin)
		assert.ErrorIs(t, err, ErrValidation)

		_, err = svc.Register("ravi", "ravi@example.com", "12345678", models.RolePgAdmin)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("Unknown Role Rejected", func(t *testing.T) {
		svc, _ := newAuthService(t, &fakeSender{})

		_, err := svc.Register("ravi", "ravi@example.com", "password1", "superuser")

		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("Duplicate Email Rejected", func(t *testing.T) {
		svc, mock := newAuthService(t, &fakeSender{})

		rows := sqlmock.NewRows([]string{
			"id", "username", "email", "password_hash", "role", "created_at", "updated_at",
		}).AddRow("b4e7f3ab-3f7a-4a2e-9b27-6f2f4c2f7a11", "ravi", "ravi@example.com",
			"hashed", models.RolePgAdmin, nowStamp(), nowStamp())

		mock.ExpectQuery("SELECT \\* FROM users WHERE email").
			WithArgs("ravi@example.com").
			WillReturnRows(rows)

		_, err := svc.Register("ravi", "Ravi@Example.com", "password1", models.RolePgAdmin)

		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("Success", func(t *testing.T) {
		mail := &fakeSender{}
		svc, mock := newAuthService(t, mail)

		mock.ExpectQuery("SELECT \\* FROM users WHERE email").
			WithArgs("ravi@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectExec("INSERT INTO users").
			WillReturnResult(sqlmock.NewResult(0, 1))

		user, err := svc.Register("ravi", "ravi@example.com", "password1", models.RolePgAdmin)

		require.NoError(t, err)
		assert.Equal(t, "ravi@example.com", user.Email)
		require.Len(t, mail.sent, 1)
		assert.Equal(t, "ravi@example.com", mail.sent[0].To)
	})
}

func TestAuthService_Login(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc, mock := newAuthService(t, &fakeSender{})

		hash, err := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.MinCost)
		require.NoError(t, err)

		rows := sqlmock.NewRows([]string{
			"id", "username", "email", "password_hash", "role", "created_at", "updated_at",
		}).AddRow("b4e7f3ab-3f7a-4a2e-9b27-6f2f4c2f7a11", "ravi", "ravi@example.com",
			string(hash), models.RolePgAdmin, nowStamp(), nowStamp())

		mock.ExpectQuery("SELECT \\* FROM users WHERE email").
			WithArgs("ravi@example.com").
			WillReturnRows(rows)

		token, user, err := svc.Login("ravi@example.com", "password1", "Mozilla/5.0")

		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, models.RolePgAdmin, user.Role)
	})

	t.Run("Wrong Password", func(t *testing.T) {
		svc, mock := newAuthService(t, &fakeSender{})

		hash, err := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.MinCost)
		require.NoError(t, err)

		rows := sqlmock.NewRows([]string{
			"id", "username", "email", "password_hash", "role", "created_at", "updated_at",
		}).AddRow("b4e7f3ab-3f7a-4a2e-9b27-6f2f4c2f7a11", "ravi", "ravi@example.com",
			string(hash), models.RolePgAdmin, nowStamp(), nowStamp())

		mock.ExpectQuery("SELECT \\* FROM users WHERE email").
			WithArgs("ravi@example.com").
			WillReturnRows(rows)

		_, _, err = svc.Login("ravi@example.com", "wrongpass1", "Mozilla/5.0")

		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("Unknown Email", func(t *testing.T) {
		svc, mock := newAuthService(t, &fakeSender{})

		mock.ExpectQuery("SELECT \\* FROM users WHERE email").
			WithArgs("missing@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, _, err := svc.Login("missing@example.com", "password1", "Mozilla/5.0")

		assert.ErrorIs(t, err, ErrForbidden)
	})
}
