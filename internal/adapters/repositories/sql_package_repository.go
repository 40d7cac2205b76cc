package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"package-tracking-service/internal/domain"
	"package-tracking-service/internal/platform/obs"
	"time"
)

const packageColumns = `
		id,
		tracking_number,
		recipient,
		weight,
		ship_date,
		created_at,
		delivered,
		active`

// SQL-backed implementation of the PackageRepository port.
// The same queries serve Postgres and SQLite through a Dialect.
type SQLPackageRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewSQLPackageRepository(db *sql.DB, dialect Dialect) *SQLPackageRepository {
	return &SQLPackageRepository{DB: db, Dialect: dialect}
}

// Insert a package and fill in its generated id.
func (s *SQLPackageRepository) Create(ctx context.Context, p *domain.Package) (err error) {
	defer obs.Time(ctx, "packages.repo.Create")(&err)

	if s.DB == nil {
		return errors.New("package repository: DB is nil")
	}

	q := s.Dialect.Rebind(`
	INSERT INTO packages (
		tracking_number,
		recipient,
		weight,
		ship_date,
		created_at,
		delivered,
		active
	)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	RETURNING id;
	`)

	err = s.DB.QueryRowContext(ctx, q,
		p.TrackingNumber, p.Recipient, p.Weight, p.ShipDate, p.CreatedAt, p.Delivered, p.Active,
	).Scan(&p.ID)
	if err != nil {
		if s.Dialect.IsUniqueViolation(err) {
			return domain.ErrDuplicateTrackingNumber
		}
		return fmt.Errorf("create package: insert tracking_number=%q: %w", p.TrackingNumber, err)
	}

	return nil
}

// Return active packages ordered by id.
func (s *SQLPackageRepository) ListActive(ctx context.Context, offset, limit int) (_ []*domain.Package, err error) {
	defer obs.Time(ctx, "packages.repo.ListActive")(&err)

	if s.DB == nil {
		return nil, errors.New("package repository: DB is nil")
	}

	q := s.Dialect.Rebind(`
	SELECT` + packageColumns + `
	FROM packages
	WHERE active
	ORDER BY id
	LIMIT ? OFFSET ?;
	`)

	rows, err := s.DB.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list packages: query packages table: %w", err)
	}
	defer rows.Close()

	packages := make([]*domain.Package, 0, limit)
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("list packages: %w", err)
		}
		packages = append(packages, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list packages: row iteration: %w", err)
	}

	return packages, nil
}

func (s *SQLPackageRepository) CountActive(ctx context.Context) (n int, err error) {
	defer obs.Time(ctx, "packages.repo.CountActive")(&err)

	if s.DB == nil {
		return 0, errors.New("package repository: DB is nil")
	}

	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM packages WHERE active;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count packages: %w", err)
	}

	return n, nil
}

// Return a package by id, active or not.
func (s *SQLPackageRepository) Get(ctx context.Context, id int64) (_ *domain.Package, err error) {
	defer obs.Time(ctx, "packages.repo.Get")(&err)

	return s.getOne(ctx, "id", id)
}

// Return the package holding a tracking number, active or not.
func (s *SQLPackageRepository) GetByTrackingNumber(ctx context.Context, trackingNumber string) (_ *domain.Package, err error) {
	defer obs.Time(ctx, "packages.repo.GetByTrackingNumber")(&err)

	return s.getOne(ctx, "tracking_number", trackingNumber)
}

// column is one of the fixed identifiers above, never caller input.
func (s *SQLPackageRepository) getOne(ctx context.Context, column string, value any) (*domain.Package, error) {
	if s.DB == nil {
		return nil, errors.New("package repository: DB is nil")
	}

	q := s.Dialect.Rebind(`
	SELECT` + packageColumns + `
	FROM packages
	WHERE ` + column + ` = ?;
	`)

	p, err := scanPackage(s.DB.QueryRowContext(ctx, q, value))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get package by %s=%v: %w", column, value, err)
	}

	return p, nil
}

// Persist the business fields of p. id, created_at and active are not written.
func (s *SQLPackageRepository) Update(ctx context.Context, p *domain.Package) (err error) {
	defer obs.Time(ctx, "packages.repo.Update")(&err)

	if s.DB == nil {
		return errors.New("package repository: DB is nil")
	}

	q := s.Dialect.Rebind(`
	UPDATE packages
	SET tracking_number = ?,
		recipient = ?,
		weight = ?,
		ship_date = ?,
		delivered = ?
	WHERE id = ?;
	`)

	res, err := s.DB.ExecContext(ctx, q,
		p.TrackingNumber, p.Recipient, p.Weight, p.ShipDate, p.Delivered, p.ID,
	)
	if err != nil {
		if s.Dialect.IsUniqueViolation(err) {
			return domain.ErrDuplicateTrackingNumber
		}
		return fmt.Errorf("update package id=%d: %w", p.ID, err)
	}

	return requireAffected(res, "update package", p.ID)
}

func (s *SQLPackageRepository) SetActive(ctx context.Context, id int64, active bool) (err error) {
	defer obs.Time(ctx, "packages.repo.SetActive")(&err)

	if s.DB == nil {
		return errors.New("package repository: DB is nil")
	}

	q := s.Dialect.Rebind(`UPDATE packages SET active = ? WHERE id = ?;`)
	res, err := s.DB.ExecContext(ctx, q, active, id)
	if err != nil {
		return fmt.Errorf("set package active id=%d: %w", id, err)
	}

	return requireAffected(res, "set package active", id)
}

// Permanently remove a package. A missing id is not an error.
func (s *SQLPackageRepository) Delete(ctx context.Context, id int64) (err error) {
	defer obs.Time(ctx, "packages.repo.Delete")(&err)

	if s.DB == nil {
		return errors.New("package repository: DB is nil")
	}

	q := s.Dialect.Rebind(`DELETE FROM packages WHERE id = ?;`)
	if _, err := s.DB.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("delete package id=%d: %w", id, err)
	}

	return nil
}

func (s *SQLPackageRepository) Ping(ctx context.Context) error {
	if s.DB == nil {
		return errors.New("package repository: DB is nil")
	}
	return s.DB.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPackage(row rowScanner) (*domain.Package, error) {
	var p domain.Package
	err := row.Scan(
		&p.ID,
		&p.TrackingNumber,
		&p.Recipient,
		&p.Weight,
		&p.ShipDate,
		timestamp{&p.CreatedAt},
		&p.Delivered,
		&p.Active,
	)
	if err != nil {
		return nil, fmt.Errorf("scan row: %w", err)
	}
	return &p, nil
}

// SQLite has no timestamp type; depending on the column declaration the
// driver hands back either time.Time or text.
type timestamp struct{ t *time.Time }

var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func (ts timestamp) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case time.Time:
		*ts.t = v
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("scan timestamp: unsupported type %T", src)
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*ts.t = t
			return nil
		}
	}
	return fmt.Errorf("scan timestamp: unrecognized format %q", s)
}

func requireAffected(res sql.Result, op string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s id=%d: rows affected: %w", op, id, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
