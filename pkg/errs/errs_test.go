package errs_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-etl/etl-backend/pkg/errs"
)

func TestE(t *testing.T) {
	err := errs.E(errs.Op("svc.Do"), errs.InvalidRequest, errs.Parameter("path"), errs.Str("empty path"))

	assert.Equal(t, "empty path", err.Error())
	assert.True(t, errs.KindIs(errs.InvalidRequest, err))
	assert.False(t, errs.KindIs(errs.NotExist, err))
}

func TestKindIsWalksTheChain(t *testing.T) {
	inner := errs.E(errs.Op("store.Read"), errs.NotExist, errs.Str("no such file"))
	outer := errs.E(errs.Op("svc.Read"), inner)

	assert.True(t, errs.KindIs(errs.NotExist, outer))
	assert.Equal(t, "no such file", outer.Error())
}

func TestOpStack(t *testing.T) {
	inner := errs.E(errs.Op("store.Read"), errs.IO, errs.Str("disk gone"))
	middle := errs.E(errs.Op("svc.Read"), inner)
	outer := errs.E(errs.Op("handler.GetFile"), middle)

	assert.Equal(t, []string{"store.Read", "svc.Read", "handler.GetFile"}, errs.OpStack(outer))
}

func TestTopError(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := errs.E(errs.Op("svc.Do"), errs.Unavailable, cause)

	assert.Equal(t, cause, errs.TopError(err))
}

func TestHTTPErrorResponse(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		status     int
		expectKind string
	}{
		{
			name:       "invalid request maps to 400",
			err:        errs.E(errs.Op("svc.Do"), errs.InvalidRequest, errs.Parameter("mode"), errs.Str("unknown mode")),
			status:     http.StatusBadRequest,
			expectKind: "invalid_request_error",
		},
		{
			name:       "not exist maps to 404",
			err:        errs.E(errs.Op("svc.Do"), errs.NotExist, errs.Str("no such file")),
			status:     http.StatusNotFound,
			expectKind: "item_does_not_exist",
		},
		{
			name:       "unavailable maps to 502",
			err:        errs.E(errs.Op("svc.Do"), errs.Unavailable, errs.Str("agent down")),
			status:     http.StatusBadGateway,
			expectKind: "dependency_unavailable",
		},
		{
			name:       "plain errors map to 500",
			err:        fmt.Errorf("boom"),
			status:     http.StatusInternalServerError,
			expectKind: "other_error",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()

			errs.HTTPErrorResponse(rr, zerolog.New(os.Stdout), tc.err)

			assert.Equal(t, tc.status, rr.Code)

			var body errs.ErrResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tc.expectKind, body.Error.Kind)
			assert.NotEmpty(t, body.Error.Message)
		})
	}
}
