package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldsync/internal/kv"
	"fieldsync/internal/platform/logger"
	"fieldsync/internal/session"
	"fieldsync/internal/translation/models"
	"fieldsync/internal/translation/service"
	"fieldsync/pkg/platform/audit"
	auditmemory "fieldsync/pkg/platform/audit/store/memory"
	"fieldsync/pkg/testutil"
)

type upperTranslator struct{}

func (upperTranslator) Translate(_ context.Context, text, _, _ string) (string, error) {
	return strings.ToUpper(text), nil
}

type downloadResponseBody struct {
	Dictionary models.Dictionary     `json:"dictionary"`
	Report     models.DownloadReport `json:"report"`
}

func newRouter(t *testing.T, auditStore *auditmemory.InMemoryStore) chi.Router {
	t.Helper()
	store := kv.NewInMemoryStore()
	cache := service.New(store, session.New(store), upperTranslator{}, service.WithAuditPublisher(auditStore))
	r := chi.NewRouter()
	New(cache, logger.Discard()).Register(r)
	return r
}

func TestLanguageFlow(t *testing.T) {
	auditStore := auditmemory.NewInMemoryStore()
	r := newRouter(t, auditStore)

	testutil.Given(t, "a device with no downloaded languages", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodGet, "/strings", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		dict := testutil.UnmarshalResponse[models.Dictionary](t, rr)
		assert.Equal(t, "en", dict.Code)
		assert.Equal(t, "Welcome", dict.Strings["welcome"])
	})

	testutil.When(t, "tamil is downloaded", func(t *testing.T) {
		req := testutil.WithRequestID(testutil.NewJSONRequest(t, http.MethodPost, "/languages/ta/download", nil), "req-ta")
		rr := testutil.DoRequest(r, req)
		require.Equal(t, http.StatusOK, rr.Code)
		body := testutil.UnmarshalResponse[downloadResponseBody](t, rr)
		assert.Equal(t, "WELCOME", body.Dictionary.Strings["welcome"])
		assert.Equal(t, body.Report.Total, body.Report.Translated)

		events, err := auditStore.ListByAction(context.Background(), audit.ActionLanguageDownloaded)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "req-ta", events[0].RequestID)
	})

	testutil.Then(t, "it becomes the active language", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodGet, "/languages", nil))
		assert.JSONEq(t, `{"active":"ta","available":[{"code":"en","name":"English"},{"code":"ta","name":"தமிழ்"}]}`, rr.Body.String())
	})

	testutil.Then(t, "switching back to english keeps the tamil cache", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodPut, "/languages/active", map[string]string{"code": "en"}))
		require.Equal(t, http.StatusOK, rr.Code)

		rr = testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodGet, "/strings?lang=ta", nil))
		dict := testutil.UnmarshalResponse[models.Dictionary](t, rr)
		assert.Equal(t, "WELCOME", dict.Strings["welcome"])
	})
}

func TestActivateRequiresCode(t *testing.T) {
	r := newRouter(t, auditmemory.NewInMemoryStore())

	rr := testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodPut, "/languages/active", map[string]string{"code": " "}))
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")

	rr = testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodPut, "/languages/active", "not an object"))
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
}
