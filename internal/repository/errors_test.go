// internal/repository/errors_test.go
package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"bad conn", fmt.Errorf("query cases: %w", driver.ErrBadConn), true},
		{"connection failure", &pq.Error{Code: "08006"}, true},
		{"cannot connect now", &pq.Error{Code: "57P03"}, false},
		{"undefined table", &pq.Error{Code: "42P01"}, false},
		{"dial refused", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, true},
		{"plain", errors.New("scan failed"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsConnectionError(tt.err))
		})
	}
}

func TestPostgresCaseRepository_ConnectionFailureIsClassified(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM clinical_cases").WillReturnError(&pq.Error{Code: "08001", Message: "could not connect"})

	_, err = NewPostgresCaseRepository(db).GetByIDs(context.Background(), []string{"case-1"})
	require.Error(t, err)
	assert.True(t, IsConnectionError(err))
}
