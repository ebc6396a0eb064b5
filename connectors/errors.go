package connectors

import (
	"errors"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	mssql "github.com/microsoft/go-mssqldb"
)

// ErrorCode extracts the server error code and the driver error info from err.
//
// info holds the SQLSTATE (or the driver's primary code), the driver specific code and
// the server message. ok is false when err does not come from a supported driver.
func ErrorCode(err error) (code string, info []any, ok bool) {
	if err == nil {
		return "", nil, false
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		state := string(myErr.SQLState[:])
		return state, []any{state, int(myErr.Number), myErr.Message}, true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), []any{string(pqErr.Code), pqErr.Code.Name(), pqErr.Message}, true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, []any{pgErr.Code, pgErr.Severity, pgErr.Message}, true
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		code := strconv.Itoa(int(liteErr.Code))
		return code, []any{code, int(liteErr.ExtendedCode), liteErr.Error()}, true
	}

	var msErr mssql.Error
	if errors.As(err, &msErr) {
		code := strconv.Itoa(int(msErr.Number))
		return code, []any{code, int(msErr.State), msErr.Message}, true
	}

	return "", nil, false
}
