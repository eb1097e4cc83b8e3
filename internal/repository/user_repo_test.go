package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"cashflow_tracker/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumns = []string{"id", "name", "email", "password_hash", "created_at"}

func TestUserRepository_Create(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(pgx.NamedArgs{"name": "Ana", "email": "ana@example.com", "password_hash": "hash"}).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(7, now))

	user := &model.User{Name: "Ana", Email: "ana@example.com", PasswordHash: "hash"}
	err := repo.Create(context.Background(), user)

	require.NoError(t, err)
	assert.Equal(t, 7, user.ID)
	assert.Equal(t, now, user.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(pgx.NamedArgs{"name": "Ana", "email": "ana@example.com", "password_hash": "hash"}).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value"})

	err := repo.Create(context.Background(), &model.User{Name: "Ana", Email: "ana@example.com", PasswordHash: "hash"})

	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByEmail(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE email = (.+)`).
		WithArgs(pgx.NamedArgs{"email": "ana@example.com"}).
		WillReturnRows(pgxmock.NewRows(userColumns).AddRow(7, "Ana", "ana@example.com", "hash", now))

	user, err := repo.FindByEmail(context.Background(), "ana@example.com")

	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, 7, user.ID)
	assert.Equal(t, "hash", user.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByEmailMissing(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE email = (.+)`).
		WithArgs(pgx.NamedArgs{"email": "nobody@example.com"}).
		WillReturnRows(pgxmock.NewRows(userColumns))

	user, err := repo.FindByEmail(context.Background(), "nobody@example.com")

	assert.NoError(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByID(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = (.+)`).
		WithArgs(pgx.NamedArgs{"id": 7}).
		WillReturnRows(pgxmock.NewRows(userColumns).AddRow(7, "Ana", "ana@example.com", "hash", now))

	user, err := repo.FindByID(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, "Ana", user.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByIDError(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = (.+)`).
		WithArgs(pgx.NamedArgs{"id": 7}).
		WillReturnError(errors.New("connection reset"))

	user, err := repo.FindByID(context.Background(), 7)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to find user by ID: connection reset")
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}
