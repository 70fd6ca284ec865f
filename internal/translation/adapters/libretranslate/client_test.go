package libretranslate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldsync/internal/translation/ports"
	"fieldsync/pkg/platform/circuit"
)

func TestTranslate_RequestShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, map[string]string{
			"q": "Welcome", "source": "en", "target": "ta", "format": "text", "api_key": "k",
		}, req)
		_, _ = w.Write([]byte(`{"translatedText":"வரவேற்பு"}`))
	}))
	defer srv.Close()

	out, err := New(srv.URL, time.Second, WithAPIKey("k")).Translate(context.Background(), "Welcome", "en", "ta")
	require.NoError(t, err)
	assert.Equal(t, "வரவேற்பு", out)
}

func TestTranslate_FailureReasons(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		reason string
	}{
		{"server error", http.StatusInternalServerError, "", ports.ReasonUnavailable},
		{"throttled", http.StatusTooManyRequests, "", ports.ReasonUnavailable},
		{"unsupported language", http.StatusBadRequest, `{"error":"ta not supported"}`, ports.ReasonRejected},
		{"not json", http.StatusOK, "oops", ports.ReasonBadData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL, time.Second).Translate(context.Background(), "Welcome", "en", "ta")
			require.Error(t, err)
			assert.Equal(t, tt.reason, ports.ReasonOf(err))
		})
	}
}

func TestTranslate_BreakerOpensOnOutage(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second,
		WithBreaker(circuit.New("test", circuit.WithFailureThreshold(3), circuit.WithCooldown(time.Hour))))
	for range 5 {
		_, err := c.Translate(context.Background(), "Welcome", "en", "ta")
		assert.Equal(t, ports.ReasonUnavailable, ports.ReasonOf(err))
	}
	assert.Equal(t, int32(3), calls.Load())
}
