package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rodgers-crypto/newbutchermanagement/internal/database"
	"github.com/Rodgers-crypto/newbutchermanagement/internal/models"
)

var userRowColumns = []string{"id", "username", "password_hash", "role", "created_at"}

func newMockUsers(t *testing.T) (*Users, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewUsers(db), mock
}

func TestCreateUser(t *testing.T) {
	users, mock := newMockUsers(t)

	mock.ExpectQuery(`INSERT INTO users \(username, password_hash, role, created_at\)`).
		WithArgs("till1", "hash", models.RoleCashier).
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(int64(2), "till1", "hash", models.RoleCashier, time.Now()))

	user, err := users.CreateUser(context.Background(), "till1", "hash", models.RoleCashier)
	require.NoError(t, err)
	assert.Equal(t, int64(2), user.ID)
	assert.False(t, user.IsAdmin())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_UsernameTaken(t *testing.T) {
	users, mock := newMockUsers(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := users.CreateUser(context.Background(), "admin", "hash", models.RoleAdmin)
	assert.ErrorIs(t, err, database.ErrUsernameTaken)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_UnknownRole(t *testing.T) {
	users, mock := newMockUsers(t)

	_, err := users.CreateUser(context.Background(), "bob", "hash", "manager")
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByUsername_NotFound(t *testing.T) {
	users, mock := newMockUsers(t)

	mock.ExpectQuery(`FROM users WHERE username = \$1`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	_, err := users.GetUserByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, database.ErrUserNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureAdmin(t *testing.T) {
	t.Run("existing users", func(t *testing.T) {
		users, mock := newMockUsers(t)

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))

		created, err := users.EnsureAdmin(context.Background(), "admin", "hash")
		require.NoError(t, err)
		assert.False(t, created)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty table", func(t *testing.T) {
		users, mock := newMockUsers(t)

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("admin", "hash", models.RoleAdmin).
			WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(int64(1), "admin", "hash", models.RoleAdmin, time.Now()))

		created, err := users.EnsureAdmin(context.Background(), "admin", "hash")
		require.NoError(t, err)
		assert.True(t, created)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListUsers(t *testing.T) {
	users, mock := newMockUsers(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))
	mock.ExpectQuery(`FROM users ORDER BY username ASC LIMIT \$1 OFFSET \$2`).
		WithArgs(2, 2).
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(int64(3), "till2", "hash", models.RoleCashier, time.Now()))

	page, err := users.ListUsers(context.Background(), 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Items, 1)

	assert.NoError(t, mock.ExpectationsWereMet())
}
