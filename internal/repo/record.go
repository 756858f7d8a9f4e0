// Package repo contains all record store access for the petadot slug service.
// RecordRepo is implemented twice: Postgres for production and an in-memory
// store for tests and local runs. No business logic lives here, only queries
// and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/Condfire/petadot/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// RecordRepo defines the persistence operations shared by every collection.
// The service layer and the slug resolver depend on this interface, not on a
// concrete store.
type RecordRepo interface {
	// Create inserts a record without a slug and returns it with the
	// store-generated id, status, and timestamps populated.
	Create(ctx context.Context, rec domain.Record) (domain.Record, error)

	// GetByID returns domain.ErrNotFound if no record has that id.
	GetByID(ctx context.Context, c domain.Collection, id uuid.UUID) (domain.Record, error)

	// GetBySlug returns domain.ErrNotFound if no record holds that slug.
	GetBySlug(ctx context.Context, c domain.Collection, slug string) (domain.Record, error)

	// ListPaged returns one page of records, newest first, and the total count.
	ListPaged(ctx context.Context, c domain.Collection, p domain.PaginationParams) ([]domain.Record, int64, error)

	// Update overwrites name, city, state, and starts_at. Slug and status
	// have their own write paths.
	Update(ctx context.Context, rec domain.Record) (domain.Record, error)

	// Delete removes a record. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, c domain.Collection, id uuid.UUID) error

	// ExistsBySlug reports whether a record other than excludeID holds slug.
	// uuid.Nil disables the exclusion.
	ExistsBySlug(ctx context.Context, c domain.Collection, slug string, excludeID uuid.UUID) (bool, error)

	// UpdateSlug assigns slug to the record. Returns domain.ErrSlugConflict
	// when another record already holds it and domain.ErrNotFound when the
	// record does not exist.
	UpdateSlug(ctx context.Context, c domain.Collection, id uuid.UUID, slug string) error

	// UpdateStatus moves a record from one status to another only if it is
	// still in from. Returns domain.ErrInvalidTransition otherwise.
	UpdateStatus(ctx context.Context, c domain.Collection, id uuid.UUID, from, to domain.Status) (domain.Record, error)

	// ListMissingSlug returns up to limit records with no slug, oldest first.
	ListMissingSlug(ctx context.Context, c domain.Collection, limit int) ([]domain.Record, error)
}

// tables maps each collection to its table. Table names are never taken from
// request input; an unknown collection is a validation error.
var tables = map[domain.Collection]string{
	domain.CollectionPets:     "pets",
	domain.CollectionOngs:     "ongs",
	domain.CollectionEvents:   "events",
	domain.CollectionPartners: "partners",
	domain.CollectionUsers:    "users",
}

func tableFor(c domain.Collection) (string, error) {
	t, ok := tables[c]
	if !ok {
		return "", fmt.Errorf("%w: unknown collection %q", domain.ErrValidation, c)
	}
	return t, nil
}

const recordColumns = `id, name, city, state, slug, status, owner_id, starts_at, created_at, updated_at`

// pgRecordRepo is the Postgres implementation of RecordRepo.
type pgRecordRepo struct {
	db db
}

// NewRecordRepo constructs a RecordRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewRecordRepo(db db) RecordRepo {
	return &pgRecordRepo{db: db}
}

// Create inserts a new row and returns the full persisted record.
func (r *pgRecordRepo) Create(ctx context.Context, rec domain.Record) (domain.Record, error) {
	table, err := tableFor(rec.Collection)
	if err != nil {
		return domain.Record{}, fmt.Errorf("repo.RecordRepo.Create: %w", err)
	}

	q := fmt.Sprintf(`
		INSERT INTO %s (name, city, state, owner_id, starts_at)
		VALUES (@name, @city, @state, @owner_id, @starts_at)
		RETURNING %s`, table, recordColumns)

	args := pgx.NamedArgs{
		"name":      rec.Name,
		"city":      rec.City,
		"state":     rec.State,
		"owner_id":  rec.OwnerID,
		"starts_at": rec.StartsAt, // nil becomes NULL
	}

	result, err := scanRecord(r.db.QueryRow(ctx, q, args), rec.Collection)
	if err != nil {
		return domain.Record{}, fmt.Errorf("repo.RecordRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a record by primary key.
func (r *pgRecordRepo) GetByID(ctx context.Context, c domain.Collection, id uuid.UUID) (domain.Record, error) {
	table, err := tableFor(c)
	if err != nil {
		return domain.Record{}, fmt.Errorf("repo.RecordRepo.GetByID: %w", err)
	}

	q := fmt.Sprintf(`SELECT %s FROM %s WHERE id = @id`, recordColumns, table)

	result, err := scanRecord(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}), c)
	if err != nil {
		return domain.Record{}, fmt.Errorf("repo.RecordRepo.GetByID: %w", err)
	}
	return result, nil
}

// GetBySlug retrieves a record by its exact (case-sensitive) slug.
func (r *pgRecordRepo) GetBySlug(ctx context.Context, c domain.Collection, slug string) (domain.Record, error) {
	table, err := tableFor(c)
	if err != nil {
		return domain.Record{}, fmt.Errorf("repo.RecordRepo.GetBySlug: %w", err)
	}

	q := fmt.Sprintf(`SELECT %s FROM %s WHERE slug = @slug`, recordColumns, table)

	result, err := scanRecord(r.db.QueryRow(ctx, q, pgx.NamedArgs{"slug": slug}), c)
	if err != nil {
		return domain.Record{}, fmt.Errorf("repo.RecordRepo.GetBySlug: %w", err)
	}
	return result, nil
}

// ListPaged returns one page of records ordered by created_at descending.
// The total is read in the same statement with a window function.
func (r *pgRecordRepo) ListPaged(ctx context.Context, c domain.Collection, p domain.PaginationParams) ([]domain.Record, int64, error) {
	table, err := tableFor(c)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.RecordRepo.ListPaged: %w", err)
	}

	q := fmt.Sprintf(`
		SELECT %s, count(*) OVER () AS total
		FROM %s
		ORDER BY created_at DESC, id
		LIMIT @limit OFFSET @offset`, recordColumns, table)

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.RecordRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	var (
		records = []domain.Record{}
		total   int64
	)
	for rows.Next() {
		rec, err := scanRecord(rows, c, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.RecordRepo.ListPaged: scan: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.RecordRepo.ListPaged: rows: %w", err)
	}
	return records, total, nil
}

// Update overwrites the descriptive fields of a record.
func (r *pgRecordRepo) Update(ctx context.Context, rec domain.Record) (domain.Record, error) {
	table, err := tableFor(rec.Collection)
	if err != nil {
		return domain.Record{}, fmt.Errorf("repo.RecordRepo.Update: %w", err)
	}

	q := fmt.Sprintf(`
		UPDATE %s
		SET name       = @name,
		    city       = @city,
		    state      = @state,
		    starts_at  = @starts_at,
		    updated_at = now()
		WHERE id = @id
		RETURNING %s`, table, recordColumns)

	args := pgx.NamedArgs{
		"id":        rec.ID,
		"name":      rec.Name,
		"city":      rec.City,
		"state":     rec.State,
		"starts_at": rec.StartsAt,
	}

	result, err := scanRecord(r.db.QueryRow(ctx, q, args), rec.Collection)
	if err != nil {
		return domain.Record{}, fmt.Errorf("repo.RecordRepo.Update: %w", err)
	}
	return result, nil
}

// Delete removes a record by primary key.
func (r *pgRecordRepo) Delete(ctx context.Context, c domain.Collection, id uuid.UUID) error {
	table, err := tableFor(c)
	if err != nil {
		return fmt.Errorf("repo.RecordRepo.Delete: %w", err)
	}

	tag, err := r.db.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = @id`, table), pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.RecordRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.RecordRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// ExistsBySlug runs one equality lookup. Comparing id against the nil UUID
// never matches a real row, so uuid.Nil disables the exclusion without a
// second query shape.
func (r *pgRecordRepo) ExistsBySlug(ctx context.Context, c domain.Collection, slug string, excludeID uuid.UUID) (bool, error) {
	table, err := tableFor(c)
	if err != nil {
		return false, fmt.Errorf("repo.RecordRepo.ExistsBySlug: %w", err)
	}

	q := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE slug = @slug AND id <> @exclude_id)`, table)

	var exists bool
	err = r.db.QueryRow(ctx, q, pgx.NamedArgs{"slug": slug, "exclude_id": excludeID}).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("repo.RecordRepo.ExistsBySlug: %w", err)
	}
	return exists, nil
}

// UpdateSlug writes the chosen slug. The partial unique index on slug turns a
// lost race into SQLSTATE 23505, surfaced as domain.ErrSlugConflict.
func (r *pgRecordRepo) UpdateSlug(ctx context.Context, c domain.Collection, id uuid.UUID, slug string) error {
	table, err := tableFor(c)
	if err != nil {
		return fmt.Errorf("repo.RecordRepo.UpdateSlug: %w", err)
	}

	q := fmt.Sprintf(`UPDATE %s SET slug = @slug, updated_at = now() WHERE id = @id`, table)

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "slug": slug})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("repo.RecordRepo.UpdateSlug: %q: %w", slug, domain.ErrSlugConflict)
		}
		return fmt.Errorf("repo.RecordRepo.UpdateSlug: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.RecordRepo.UpdateSlug: %w", domain.ErrNotFound)
	}
	return nil
}

// UpdateStatus is a compare-and-set on the status column.
func (r *pgRecordRepo) UpdateStatus(ctx context.Context, c domain.Collection, id uuid.UUID, from, to domain.Status) (domain.Record, error) {
	table, err := tableFor(c)
	if err != nil {
		return domain.Record{}, fmt.Errorf("repo.RecordRepo.UpdateStatus: %w", err)
	}

	q := fmt.Sprintf(`
		UPDATE %s
		SET status = @to, updated_at = now()
		WHERE id = @id AND status = @from
		RETURNING %s`, table, recordColumns)

	args := pgx.NamedArgs{"id": id, "from": string(from), "to": string(to)}
	result, err := scanRecord(r.db.QueryRow(ctx, q, args), c)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Record{}, fmt.Errorf("repo.RecordRepo.UpdateStatus: %w: record is no longer %s", domain.ErrInvalidTransition, from)
		}
		return domain.Record{}, fmt.Errorf("repo.RecordRepo.UpdateStatus: %w", err)
	}
	return result, nil
}

// ListMissingSlug feeds the backfill flow.
func (r *pgRecordRepo) ListMissingSlug(ctx context.Context, c domain.Collection, limit int) ([]domain.Record, error) {
	table, err := tableFor(c)
	if err != nil {
		return nil, fmt.Errorf("repo.RecordRepo.ListMissingSlug: %w", err)
	}

	q := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE slug IS NULL OR slug = ''
		ORDER BY created_at, id
		LIMIT @limit`, recordColumns, table)

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("repo.RecordRepo.ListMissingSlug: %w", err)
	}
	defer rows.Close()

	records := []domain.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows, c)
		if err != nil {
			return nil, fmt.Errorf("repo.RecordRepo.ListMissingSlug: scan: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.RecordRepo.ListMissingSlug: rows: %w", err)
	}
	return records, nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanRecord to be
// reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanRecord maps a single row in recordColumns order into a domain.Record.
// extra receives any trailing columns (e.g. a window-function total).
func scanRecord(s scanner, c domain.Collection, extra ...any) (domain.Record, error) {
	var (
		rec      domain.Record
		id       pgtype.UUID
		ownerID  pgtype.UUID
		slug     pgtype.Text
		status   string
		startsAt pgtype.Timestamptz
	)

	dest := []any{&id, &rec.Name, &rec.City, &rec.State, &slug, &status, &ownerID, &startsAt, &rec.CreatedAt, &rec.UpdatedAt}
	dest = append(dest, extra...)

	if err := s.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Record{}, domain.ErrNotFound
		}
		return domain.Record{}, err
	}

	rec.ID = uuid.UUID(id.Bytes)
	rec.OwnerID = uuid.UUID(ownerID.Bytes)
	rec.Collection = c
	rec.Status = domain.Status(status)
	if slug.Valid {
		rec.Slug = slug.String
	}
	if startsAt.Valid {
		t := startsAt.Time.UTC()
		rec.StartsAt = &t
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return rec, nil
}

// isUniqueViolation detects PostgreSQL unique constraint violations (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
