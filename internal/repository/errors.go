// Package repository holds the SQL stores behind the services.  Every store
// works on a shared *sqlx.DB and speaks both MySQL and SQLite; queries with a
// dynamic shape are built with goqu using the dialect of the open driver.
//
// The sentinel errors below let higher layers tell failure scenarios apart
// without inspecting driver errors.
package repository

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql"   // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // dialect registration
	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when the addressed row does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert or update would violate a unique
// key (username, email, revoked token id).
var ErrDuplicate = errors.New("duplicate")

// ErrUnavailable is returned when a book cannot be reserved because it is no
// longer in the available state.
var ErrUnavailable = errors.New("unavailable")

// driverNamer is satisfied by both *sqlx.DB and *sqlx.Tx.
type driverNamer interface {
	DriverName() string
}

// dialect returns a goqu builder matching the handle's driver.
func dialect(d driverNamer) goqu.DialectWrapper {
	return goqu.Dialect(d.DriverName())
}

// isDuplicate reports whether err is a unique-key violation on either driver.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrConstraint &&
			(se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
	}
	return false
}

// notFound maps sql.ErrNoRows to ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// likePattern builds a case-insensitive substring pattern using '!' as the
// LIKE escape character.
func likePattern(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}

// containsFold is a LOWER(col) LIKE ? predicate for goqu.
func containsFold(col, value string) goqu.Expression {
	return goqu.L("LOWER("+col+") LIKE ? ESCAPE '!'", likePattern(value))
}
