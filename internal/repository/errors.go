// internal/repository/errors.go
package repository

import (
	"database/sql/driver"
	"errors"
	"net"

	"github.com/lib/pq"
)

// connectionExceptionClass is the SQLSTATE class for connection failures.
const connectionExceptionClass pq.ErrorClass = "08"

// IsConnectionError reports whether err means the case store could not be reached,
// as opposed to a query that reached it and failed.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Class() == connectionExceptionClass
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
