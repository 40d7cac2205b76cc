package repositories

import (
	"context"
	"errors"
	"package-tracking-service/internal/domain"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostgresMock(t *testing.T) (*SQLPackageRepository, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		conn.Close()
	})

	return NewSQLPackageRepository(conn, PostgresDialect), mock
}

func TestDollarPlaceholders(t *testing.T) {
	assert.Equal(t,
		"UPDATE packages SET active = $1 WHERE id = $2;",
		dollarPlaceholders("UPDATE packages SET active = ? WHERE id = ?;"),
	)
}

func TestPostgresCreateMapsUniqueViolation(t *testing.T) {
	repo, mock := newPostgresMock(t)

	mock.ExpectQuery(`INSERT INTO packages`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "packages_tracking_number_key"})

	err := repo.Create(context.Background(), samplePackage("ABC123"))
	assert.ErrorIs(t, err, domain.ErrDuplicateTrackingNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateReturnsID(t *testing.T) {
	repo, mock := newPostgresMock(t)

	mock.ExpectQuery(`INSERT INTO packages .* VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7\) RETURNING id`).
		WithArgs("ABC123", "Jane Doe", 5, "2024-01-10", sqlmock.AnyArg(), false, true).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	p := samplePackage("ABC123")
	require.NoError(t, repo.Create(context.Background(), p))
	assert.Equal(t, int64(42), p.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetScansRow(t *testing.T) {
	repo, mock := newPostgresMock(t)

	created := time.Date(2024, 1, 9, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "tracking_number", "recipient", "weight", "ship_date", "created_at", "delivered", "active"}).
		AddRow(1, "ABC123", "Jane Doe", 5, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), created, false, false)
	mock.ExpectQuery(`FROM packages WHERE id = \$1`).WithArgs(1).WillReturnRows(rows)

	p, err := repo.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.NewDate(2024, time.January, 10), p.ShipDate)
	assert.True(t, created.Equal(p.CreatedAt))
	assert.False(t, p.Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresNotFoundPaths(t *testing.T) {
	repo, mock := newPostgresMock(t)
	ctx := context.Background()

	mock.ExpectQuery(`FROM packages WHERE id = \$1`).WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(`UPDATE packages SET tracking_number`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`UPDATE packages SET active = \$1 WHERE id = \$2`).WithArgs(false, 7).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.Get(ctx, 7)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	p := samplePackage("ABC123")
	p.ID = 7
	assert.ErrorIs(t, repo.Update(ctx, p), domain.ErrNotFound)
	assert.ErrorIs(t, repo.SetActive(ctx, 7, false), domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreFailurePropagates(t *testing.T) {
	repo, mock := newPostgresMock(t)

	boom := errors.New("connection reset")
	mock.ExpectExec(`DELETE FROM packages WHERE id = \$1`).WithArgs(3).WillReturnError(boom)

	err := repo.Delete(context.Background(), 3)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}
