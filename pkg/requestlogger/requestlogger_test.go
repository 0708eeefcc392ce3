package requestlogger_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-etl/etl-backend/pkg/requestlogger"
)

type logLine struct {
	Level    string  `json:"level"`
	URL      string  `json:"url"`
	Method   string  `json:"method"`
	Status   int     `json:"status"`
	BytesOut int     `json:"bytes_out"`
	Latency  float64 `json:"latency_ms"`
	Message  string  `json:"message"`
}

func TestLoggerMiddleware(t *testing.T) {
	testCases := []struct {
		name    string
		target  string
		filters []string
		expect  *logLine
	}{
		{
			name:   "logs the request",
			target: "/api/files",
			expect: &logLine{
				Level:    "info",
				URL:      "/api/files",
				Method:   http.MethodGet,
				Status:   http.StatusOK,
				BytesOut: 2,
				Message:  "incoming_request",
			},
		},
		{
			name:    "filtered paths are not logged",
			target:  "/health",
			filters: []string{"/health"},
			expect:  nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := zerolog.New(&buf)

			handler := requestlogger.Middleware(logger, tc.filters...)(
				http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					_, _ = w.Write([]byte("ok"))
				}),
			)

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tc.target, nil))

			assert.Equal(t, http.StatusOK, rr.Code)

			if tc.expect == nil {
				assert.Zero(t, buf.Len())

				return
			}

			var line logLine
			require.NoError(t, json.Unmarshal(buf.Bytes(), &line))

			assert.Equal(t, tc.expect.Level, line.Level)
			assert.Equal(t, tc.expect.URL, line.URL)
			assert.Equal(t, tc.expect.Method, line.Method)
			assert.Equal(t, tc.expect.Status, line.Status)
			assert.Equal(t, tc.expect.BytesOut, line.BytesOut)
			assert.Equal(t, tc.expect.Message, line.Message)
			assert.GreaterOrEqual(t, line.Latency, 0.0)
		})
	}
}
