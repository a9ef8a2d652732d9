package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresLog_Record(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	log := NewPostgresLog(db, "sales_audit")

	mock.ExpectExec(`INSERT INTO "sales_audit"`).
		WithArgs(
			sqlmock.AnyArg(), // generated UUID
			"create",
			"abc",
			[]byte(`{"region":"west"}`),
			sqlmock.AnyArg(), // created_at
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	id, err := log.Record(context.Background(), Entry{
		Operation: "create",
		SalesID:   "abc",
		Details:   map[string]interface{}{"region": "west"},
	})
	require.NoError(t, err)

	_, parseErr := uuid.Parse(id)
	assert.NoError(t, parseErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLog_RecordKeepsSuppliedFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectExec(`INSERT INTO "sales_audit"`).
		WithArgs("fixed-id", "delete", "abc", []byte("{}"), at).
		WillReturnResult(sqlmock.NewResult(1, 1))

	id, err := NewPostgresLog(db, "sales_audit").Record(context.Background(), Entry{
		ID:        "fixed-id",
		Operation: "delete",
		SalesID:   "abc",
		CreatedAt: at,
	})
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLog_RecordError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO "sales_audit"`).WillReturnError(errors.New("connection refused"))

	_, err = NewPostgresLog(db, "sales_audit").Record(context.Background(), Entry{Operation: "update", SalesID: "abc"})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLog_EnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS "sales_audit"`).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, NewPostgresLog(db, "sales_audit").EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
