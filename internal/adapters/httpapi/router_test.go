package httpapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/furniture-factory/internal/adapters/httpapi"
	"github.com/andrescamacho/furniture-factory/internal/adapters/persistence"
	"github.com/andrescamacho/furniture-factory/internal/application/enterprise"
	"github.com/andrescamacho/furniture-factory/internal/domain/factory"
	"github.com/andrescamacho/furniture-factory/internal/domain/shared"
	"github.com/andrescamacho/furniture-factory/test/helpers"
)

func newAPI(t *testing.T) (*enterprise.Enterprise, http.Handler) {
	t.Helper()
	ledger := persistence.NewGormLedgerRepository(helpers.NewTestDB(t))
	clock := shared.NewMockClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	e := enterprise.New(context.Background(), decimal.NewFromInt(500),
		enterprise.WithClock(clock), enterprise.WithLedgerRepository(ledger))
	require.NoError(t, e.Seed(enterprise.Roster{
		Manager:      "Marta",
		Carpenters:   []string{"Ana"},
		Machines:     []enterprise.MachineSpec{{ID: "saw-1", MaxDurability: 5, RepairTime: time.Second}},
		RawMaterials: map[factory.MaterialKind]int{factory.MaterialPine: 12},
	}))
	return e, httpapi.NewRouter(e, httpapi.Options{Ledger: ledger})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	_, h := newAPI(t)

	rec := do(t, h, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouter_PlaceOrderThenTrackIt(t *testing.T) {
	// Arrange
	e, h := newAPI(t)

	// Act
	rec := do(t, h, http.MethodPost, "/orders", `{"furniture":"chair","material":"pine","quantity":4}`)

	// Assert
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var placed map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &placed))
	assert.Equal(t, "116", placed["total_price"])
	assert.Len(t, e.PendingOrders(), 1)

	rec = do(t, h, http.MethodGet, "/orders/"+placed["order_id"].(string), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"PENDING"`)

	rec = do(t, h, http.MethodGet, "/orders", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var pending []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pending))
	assert.Len(t, pending, 1)
}

func TestRouter_RejectsBadOrders(t *testing.T) {
	_, h := newAPI(t)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/orders", `{"furniture":"chair","material":"teak","quantity":1}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/orders", `{"furniture":"chair","material":"oak","quantity":0}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/orders", `not json`).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/orders/missing", "").Code)
}

func TestRouter_SnapshotAndRoster(t *testing.T) {
	_, h := newAPI(t)

	rec := do(t, h, http.MethodGet, "/snapshot", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var snap map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "500", snap["budget"].(map[string]interface{})["current"])

	rec = do(t, h, http.MethodGet, "/roster?format=xml", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<roster")

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/roster?format=csv", "").Code)
}

func TestRouter_LedgerListsPersistedEntries(t *testing.T) {
	e, h := newAPI(t)
	require.NoError(t, e.AddIncome(context.Background(), decimal.NewFromInt(140), "order"))

	rec := do(t, h, http.MethodGet, "/ledger?limit=10", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var entries []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "INCOME", entries[0]["kind"])
	assert.Equal(t, "640", entries[0]["balance_after"])
}
