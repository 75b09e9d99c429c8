package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logistics-scheduler-service/internal/adapters/directions"
	"logistics-scheduler-service/internal/adapters/docstore"
	"logistics-scheduler-service/internal/adapters/repositories"
	"logistics-scheduler-service/internal/api/dto"
	"logistics-scheduler-service/internal/domain"
	"logistics-scheduler-service/internal/services"
)

var (
	base = domain.Coordinates{Lat: -23.50000, Lng: -46.60000}
	site = domain.Coordinates{Lat: -23.51000, Lng: -46.61000}
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	store := docstore.NewMemoryStore()
	store.Seed("accounts", "a1", map[string]any{
		"operationalCosts": []any{
			map[string]any{"baseId": "b1", "vehicleTypeId": "vt1", "value": 2.0},
			map[string]any{"baseId": "b1", "vehicleTypeId": "vt2", "value": 1.0},
		},
	})
	store.Seed("accounts/a1/trucks", "t1", map[string]any{"vehicleTypeId": "vt1"})
	store.Seed("accounts/a1/vehicle_types", "vt1", map[string]any{"name": "Vácuo"})
	store.Seed("accounts/a1/vehicle_types", "vt2", map[string]any{"name": "Poliguindaste"})

	provider := directions.NewMockDirectionsProvider([]directions.MockPair{
		{From: base, To: site, Meters: 10000, Seconds: 600},
		{From: site, To: base, Meters: 10000, Seconds: 600},
	})
	costs := services.NewCostModel(repositories.NewDocumentFleetRepository(store))
	optimizer := services.NewRouteOptimizer(provider, costs, time.UTC, zerolog.Nop(), nil)

	return NewRouter(optimizer, time.UTC, zerolog.Nop(), nil, nil)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = do(t, h, http.MethodPost, "/health", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodGet, rec.Header().Get("Allow"))
}

func TestRequestIDIsEchoed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()

	newTestRouter(t).ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
}

func TestOperationsRoute(t *testing.T) {
	body := `{
		"account_id": "a1",
		"start_base_id": "b1",
		"start_location": {"lat": -23.5, "lng": -46.6},
		"operations": [{
			"id": "op1",
			"destination": {"address": "Rua A", "lat": -23.51, "lng": -46.61},
			"start_date": "2026-10-16T10:00:00Z",
			"end_date": "2026-10-16T11:00:00Z",
			"value": 500,
			"truck_id": "t1"
		}]
	}`

	rec := do(t, newTestRouter(t), http.MethodPost, "/routes/operations", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res dto.RouteSummaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))

	require.Len(t, res.Stops, 1)
	assert.Equal(t, "op1", res.Stops[0].ID)
	assert.Equal(t, 1, res.Stops[0].OrderInRoute)
	assert.True(t, res.Stops[0].SuggestedDepartureFromPrevious.Equal(time.Date(2026, 10, 16, 9, 35, 0, 0, time.UTC)))

	assert.Equal(t, "20,0 km", res.TotalDistance)
	assert.Equal(t, "0h 20min", res.TotalDuration)
	require.NotNil(t, res.TotalCost)
	assert.InDelta(t, 40.0, *res.TotalCost, 1e-9)
	require.NotNil(t, res.Profit)
	assert.InDelta(t, 460.0, *res.Profit, 1e-9)
}

func TestOperationsRouteEmpty(t *testing.T) {
	body := `{"account_id":"a1","start_location":{"lat":-23.5,"lng":-46.6},"operations":[]}`

	rec := do(t, newTestRouter(t), http.MethodPost, "/routes/operations", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"stops":[]}`, rec.Body.String())
}

func TestOperationsRouteBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"invalid json", `{"account_id":`, "invalid json body"},
		{"unknown field", `{"account_id":"a1","hub":"x"}`, "invalid json body"},
		{"two objects", `{"account_id":"a1"}{}`, "only one JSON object"},
		{"missing account", `{"start_location":{"lat":1,"lng":2}}`, "account"},
		{"missing start location", `{"account_id":"a1","operations":[]}`, "startLocation"},
	}

	h := newTestRouter(t)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/routes/operations", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, strings.ToLower(rec.Body.String()), strings.ToLower(tc.want))
		})
	}
}

func TestRentalsRoute(t *testing.T) {
	body := `{
		"account_id": "a1",
		"base_id": "b1",
		"day": "2026-10-16",
		"base_departure_time": "07:30",
		"start_location": {"lat": -23.5, "lng": -46.6},
		"rentals": [{
			"id": "r1",
			"destination": {"address": "Rua A", "lat": -23.51, "lng": -46.61},
			"rental_date": "2026-10-16T00:00:00Z",
			"return_date": "2026-10-20T00:00:00Z"
		}]
	}`

	rec := do(t, newTestRouter(t), http.MethodPost, "/routes/rentals", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res dto.RouteSummaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))

	require.Len(t, res.Stops, 1)
	assert.Equal(t, "r1-delivery", res.Stops[0].ID)
	assert.Equal(t, "delivery", res.Stops[0].Kind)
	require.NotNil(t, res.BaseDepartureTime)
	assert.True(t, res.BaseDepartureTime.Equal(time.Date(2026, 10, 16, 7, 30, 0, 0, time.UTC)))
	require.NotNil(t, res.TotalCost)
	assert.InDelta(t, 20.0, *res.TotalCost, 1e-9)
	assert.Nil(t, res.TotalRevenue)
	assert.Nil(t, res.Profit)
}

func TestRentalsRouteRejectsBadDay(t *testing.T) {
	body := `{"account_id":"a1","day":"16/10/2026","start_location":{"lat":-23.5,"lng":-46.6}}`

	rec := do(t, newTestRouter(t), http.MethodPost, "/routes/rentals", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type failingOptimizer struct{}

func (failingOptimizer) OptimizeOperationRoute(context.Context, services.OperationRouteRequest) (*domain.RouteSummary, error) {
	return nil, errors.New("fleet lookup: connection reset")
}

func (failingOptimizer) OptimizeRentalRoute(context.Context, services.RentalRouteRequest) (*domain.RouteSummary, error) {
	return nil, errors.New("fleet lookup: connection reset")
}

func TestRouteInternalErrorIsHidden(t *testing.T) {
	h := NewRouter(failingOptimizer{}, time.UTC, zerolog.Nop(), nil, nil)

	rec := do(t, h, http.MethodPost, "/routes/operations", `{"account_id":"a1","start_location":{"lat":1,"lng":2}}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestMetricsEndpointMounted(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	})
	h := NewRouter(failingOptimizer{}, time.UTC, zerolog.Nop(), nil, metrics)

	rec := do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "# metrics", rec.Body.String())
}
