package httpremote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rmodels "fieldsync/internal/records/models"
	"fieldsync/internal/sync/models"
	"fieldsync/internal/sync/ports"
	"fieldsync/pkg/platform/circuit"
)

func referralItems(ids ...string) []models.Item {
	items := make([]models.Item, 0, len(ids))
	for _, id := range ids {
		items = append(items, models.Item{
			Module: rmodels.ModuleReferrals,
			Record: &rmodels.Record{
				ClientID: id,
				Module:   rmodels.ModuleReferrals,
				Status:   rmodels.StatusPending,
				Payload:  &rmodels.Referral{PatientName: "Ravi", Reason: "fever", ReferredTo: "PHC", Village: "Melur"},
			},
		})
	}
	return items
}

func TestPush_SendsBatchAndReadsOutcomes(t *testing.T) {
	signer := NewTokenSigner("device-secret")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, pushPath, r.URL.Path)

		claims, err := signer.Verify(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "ASHA-1", claims.Subject)
		assert.Equal(t, "referrals", claims.Module)
		assert.NotEmpty(t, claims.ID)

		var req struct {
			WorkerID string              `json:"workerId"`
			Module   string              `json:"module"`
			Records  []map[string]string `json:"records"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ASHA-1", req.WorkerID)
		if !assert.Len(t, req.Records, 2) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.Equal(t, "R00001", req.Records[0]["clientId"])
		assert.Equal(t, "Ravi", req.Records[0]["patientName"])

		_ = json.NewEncoder(w).Encode(map[string]any{"results": []map[string]any{
			{"clientId": "R00001", "accepted": true},
			{"clientId": "R00002", "accepted": false, "reason": "duplicate"},
		}})
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second, WithSigningKey("device-secret"))
	outcomes, err := c.Push(context.Background(), "ASHA-1", rmodels.ModuleReferrals, referralItems("R00001", "R00002"))
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.True(t, outcomes[0].Accepted)
	assert.Equal(t, "duplicate", outcomes[1].Reason)
}

func TestPush_CategorizesFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		category ports.ErrorCategory
	}{
		{"server error", http.StatusServiceUnavailable, "", ports.ErrorOutage},
		{"unauthorized", http.StatusUnauthorized, "", ports.ErrorAuthentication},
		{"throttled", http.StatusTooManyRequests, "", ports.ErrorRateLimited},
		{"bad request", http.StatusUnprocessableEntity, "", ports.ErrorRejected},
		{"garbage body", http.StatusOK, "<html>", ports.ErrorBadData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL, time.Second).Push(context.Background(), "ASHA-1", rmodels.ModuleReferrals, referralItems("R00001"))
			require.Error(t, err)
			assert.Equal(t, tt.category, ports.CategoryOf(err))
		})
	}
}

func TestPush_TimeoutAndUnreachable(t *testing.T) {
	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer slow.Close()
	defer close(release)

	_, err := New(slow.URL, 50*time.Millisecond).Push(context.Background(), "ASHA-1", rmodels.ModuleReferrals, referralItems("R00001"))
	assert.Equal(t, ports.ErrorTimeout, ports.CategoryOf(err))

	closed := httptest.NewServer(http.NotFoundHandler())
	url := closed.URL
	closed.Close()
	_, err = New(url, time.Second).Push(context.Background(), "ASHA-1", rmodels.ModuleReferrals, referralItems("R00001"))
	assert.Equal(t, ports.ErrorOutage, ports.CategoryOf(err))
}

func TestPush_BreakerFailsFast(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	breaker := circuit.New("test", circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Hour))
	c := New(srv.URL, time.Second, WithBreaker(breaker))
	ctx := context.Background()

	for range 2 {
		_, err := c.Push(ctx, "ASHA-1", rmodels.ModuleReferrals, referralItems("R00001"))
		assert.Equal(t, ports.ErrorOutage, ports.CategoryOf(err))
	}
	_, err := c.Push(ctx, "ASHA-1", rmodels.ModuleReferrals, referralItems("R00001"))
	assert.Equal(t, ports.ErrorUnavailable, ports.CategoryOf(err))
	assert.Equal(t, int32(2), calls.Load())
}

func TestTokenSigner_RejectsForeignKey(t *testing.T) {
	token, err := NewTokenSigner("a").Sign("ASHA-1", "pregnancy")
	require.NoError(t, err)
	_, err = NewTokenSigner("b").Verify(token)
	assert.Error(t, err)
}
