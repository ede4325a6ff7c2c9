package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	authdomain "github.com/smallbiznis/livescan/internal/auth/domain"
	catalogdomain "github.com/smallbiznis/livescan/internal/catalog/domain"
	exportdomain "github.com/smallbiznis/livescan/internal/export/domain"
	recorddomain "github.com/smallbiznis/livescan/internal/servicerecord/domain"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		typ    string
	}{
		{exportdomain.ErrNoRecords, http.StatusBadRequest, "no_unbilled_records"},
		{exportdomain.ErrFileNotReady, http.StatusNotFound, "not_found"},
		{exportdomain.ErrBatchNotFound, http.StatusNotFound, "not_found"},
		{exportdomain.ErrInvalidDateRange, http.StatusBadRequest, "validation_error"},
		{authdomain.ErrInvalidCredentials, http.StatusUnauthorized, "unauthorized"},
		{recorddomain.ErrRecordBilled, http.StatusConflict, "conflict"},
		{recorddomain.ErrForbidden, http.StatusForbidden, "forbidden"},
		{catalogdomain.ErrNameTaken, http.StatusConflict, "conflict"},
		{ErrTooManyTries, http.StatusTooManyRequests, "too_many_requests"},
	}

	for _, tc := range cases {
		status, payload := mapError(tc.err)
		require.Equal(t, tc.status, status, tc.err.Error())
		require.Equal(t, tc.typ, payload.Type, tc.err.Error())
	}
}
