package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/trefstays/stays-backend/internal/database"
	"github.com/trefstays/stays-backend/internal/wizard"
	"github.com/trefstays/stays-backend/pkg/jwt"
)

var accountColumns = []string{"id", "email", "password_hash", "metadata", "created_at"}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newMockDB(t *testing.T) (*database.PostgresDB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return database.Wrap(db, "sqlmock"), mock
}

func setupIdentityTest(t *testing.T) (*IdentityService, *jwt.Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	jwtService := jwt.NewService("test-secret-key-123456789", time.Hour)
	service := NewIdentityService(
		database.NewAccountRepository(db),
		database.NewProfileRepository(db),
		jwtService,
		bcrypt.MinCost,
		quietLogger(),
	)
	return service, jwtService, mock
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestIdentityServiceCreateAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("Stores Normalized Email", func(t *testing.T) {
		service, _, mock := setupIdentityTest(t)

		mock.ExpectExec(`INSERT INTO accounts`).
			WithArgs(sqlmock.AnyArg(), "jane@example.com", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		id, err := service.CreateAccount(ctx, "  Jane@Example.com ", "secret1", map[string]string{"first_name": "Jane"})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Short Password", func(t *testing.T) {
		service, _, mock := setupIdentityTest(t)

		_, err := service.CreateAccount(ctx, "jane@example.com", "abc", nil)

		var policyErr *PolicyError
		require.ErrorAs(t, err, &policyErr)
		assert.Equal(t, "Password should be at least 6 characters", err.Error())
		commitErr := &wizard.CommitError{Stage: wizard.StageCreateAccount, Err: err}
		assert.Equal(t, "Password should be at least 6 characters", commitErr.Message())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate Email", func(t *testing.T) {
		service, _, mock := setupIdentityTest(t)

		mock.ExpectExec(`INSERT INTO accounts`).
			WillReturnError(&pq.Error{Code: "23505"})

		_, err := service.CreateAccount(ctx, "jane@example.com", "secret1", nil)
		assert.ErrorIs(t, err, database.ErrDuplicateEmail)
		commitErr := &wizard.CommitError{Stage: wizard.StageCreateAccount, Err: err}
		assert.Equal(t, "User already registered", commitErr.Message())
	})
}

func TestIdentityServiceSignIn(t *testing.T) {
	ctx := context.Background()
	accountID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		service, jwtService, mock := setupIdentityTest(t)

		mock.ExpectQuery(`SELECT (.+) FROM accounts WHERE email`).
			WithArgs("jane@example.com").
			WillReturnRows(sqlmock.NewRows(accountColumns).
				AddRow(accountID.String(), "jane@example.com", hashPassword(t, "secret1"), nil, time.Now()))
		mock.ExpectQuery(`SELECT role FROM user_roles`).
			WithArgs(accountID).
			WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("owner"))

		sess, err := service.SignIn(ctx, "JANE@example.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, accountID, sess.AccountID)
		assert.Equal(t, []string{"owner"}, sess.Roles)
		assert.True(t, sess.ExpiresAt.After(time.Now()))

		claims, err := jwtService.ValidateAccessToken(sess.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, accountID, claims.AccountID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Wrong Password", func(t *testing.T) {
		service, _, mock := setupIdentityTest(t)

		mock.ExpectQuery(`SELECT (.+) FROM accounts WHERE email`).
			WillReturnRows(sqlmock.NewRows(accountColumns).
				AddRow(accountID.String(), "jane@example.com", hashPassword(t, "secret1"), nil, time.Now()))

		_, err := service.SignIn(ctx, "jane@example.com", "wrong-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown Email", func(t *testing.T) {
		service, _, mock := setupIdentityTest(t)

		mock.ExpectQuery(`SELECT (.+) FROM accounts WHERE email`).
			WillReturnRows(sqlmock.NewRows(accountColumns))

		_, err := service.SignIn(ctx, "nobody@example.com", "secret1")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
