package database

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	mssql "github.com/microsoft/go-mssqldb"
	"gorm.io/gorm"
)

const (
	mysqlDuplicateEntry      = 1062
	postgresUniqueViolation  = "23505"
	sqlserverUniqueIndex     = 2601
	sqlserverUniqueViolation = 2627
)

// IsDuplicateKey reports whether err is a unique-constraint violation from any supported driver.
// GORM's TranslateError covers most cases; the driver checks catch errors
// produced by raw statements and dialects without a translator.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == postgresUniqueViolation
	}

	var msErr mssql.Error
	if errors.As(err, &msErr) {
		return msErr.Number == sqlserverUniqueViolation || msErr.Number == sqlserverUniqueIndex
	}
	var msErrPtr *mssql.Error
	if errors.As(err, &msErrPtr) {
		return msErrPtr.Number == sqlserverUniqueViolation || msErrPtr.Number == sqlserverUniqueIndex
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsNotFound reports whether err means the queried row does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
