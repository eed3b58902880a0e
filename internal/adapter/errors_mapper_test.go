package adapter

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func responseWithStatus(t *testing.T, status int, body string) *resty.Response {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	res, err := resty.New().R().Get(srv.URL)
	require.NoError(t, err)
	return res
}

func TestMapHTTPError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{name: "ok", status: http.StatusOK},
		{name: "created", status: http.StatusCreated},
		{name: "no content", status: http.StatusNoContent},
		{name: "bad request", status: http.StatusBadRequest, wantErr: ErrBadRequest},
		{name: "unauthorized", status: http.StatusUnauthorized, wantErr: ErrUnauthorized},
		{name: "not found", status: http.StatusNotFound, wantErr: ErrLedgerNotFound},
		{name: "conflict", status: http.StatusConflict, wantErr: ErrRoundConflict},
		{name: "locked", status: http.StatusLocked, wantErr: ErrLeaseHeld},
		{name: "internal", status: http.StatusInternalServerError, wantErr: ErrInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := responseWithStatus(t, tt.status, "details")

			err := mapHTTPError(res)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), "details")
		})
	}
}

func TestMapHTTPError_UnmappedStatus(t *testing.T) {
	res := responseWithStatus(t, http.StatusTeapot, "")

	err := mapHTTPError(res)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "418"))
}
