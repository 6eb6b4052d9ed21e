package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/tasklist/tasklist-api/internal/query"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrParentNotFound = errors.New("parent record not found")
)

// Clock supplies write timestamps. Stored times are UTC with second precision.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC().Truncate(time.Second)
	}
	return c().UTC().Truncate(time.Second)
}

// table is a soft-deletable collection with a fixed column list.
type table struct {
	db      *sqlx.DB
	name    string
	columns string
}

// live restricts where to rows that have not been soft-deleted.
func live(where query.Predicate) query.Predicate {
	return query.All{query.IsNull{Column: "deleted_at"}, where}
}

func (t table) count(ctx context.Context, where query.Predicate) (int, error) {
	clause, args := query.Where(live(where))
	var n int
	err := t.db.GetContext(ctx, &n, t.db.Rebind("SELECT COUNT(*) FROM "+t.name+clause), args...)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", t.name, err)
	}
	return n, nil
}

func find[T any](ctx context.Context, t table, where query.Predicate, order query.Order, limit, offset int) ([]T, error) {
	clause, args := query.Where(live(where))
	q := "SELECT " + t.columns + " FROM " + t.name + clause + order.SQL()
	if limit > 0 {
		q += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	out := []T{}
	if err := t.db.SelectContext(ctx, &out, t.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("find %s: %w", t.name, err)
	}
	return out, nil
}

func get[T any](ctx context.Context, t table, id string) (T, error) {
	var rec T
	q := "SELECT " + t.columns + " FROM " + t.name + " WHERE id = ? AND deleted_at IS NULL"
	if err := t.db.GetContext(ctx, &rec, t.db.Rebind(q), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, ErrNotFound
		}
		return rec, fmt.Errorf("get %s: %w", t.name, err)
	}
	return rec, nil
}

func (t table) softDelete(ctx context.Context, id string, at time.Time) error {
	q := t.db.Rebind("UPDATE " + t.name + " SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL")
	res, err := t.db.ExecContext(ctx, q, at, at, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", t.name, err)
	}
	return affected(res)
}

// parentExists checks inside tx that a live row with id exists in parent.
func parentExists(ctx context.Context, tx *sqlx.Tx, parent, id string) error {
	var n int
	q := tx.Rebind("SELECT COUNT(*) FROM " + parent + " WHERE id = ? AND deleted_at IS NULL")
	if err := tx.GetContext(ctx, &n, q, id); err != nil {
		return fmt.Errorf("check %s: %w", parent, err)
	}
	if n == 0 {
		return ErrParentNotFound
	}
	return nil
}

// withTx runs fn in a transaction, committing only when fn succeeds.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// isDuplicateEntryError reports a unique-constraint violation on any supported driver.
func isDuplicateEntryError(err error) bool {
	if err == nil {
		return false
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}

	return false
}
