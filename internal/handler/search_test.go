package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightdesk/flightdesk/internal/models"
	"github.com/flightdesk/flightdesk/internal/normalizer"
	"github.com/flightdesk/flightdesk/internal/query"
)

type fakeFlightsAPI struct {
	raws     []normalizer.RawFlight
	err      error
	calls    int
	criteria models.SearchCriteria
}

func (f *fakeFlightsAPI) Search(ctx context.Context, criteria models.SearchCriteria) ([]normalizer.RawFlight, error) {
	f.calls++
	f.criteria = criteria
	return f.raws, f.err
}

type fakeCache struct {
	stored map[models.SearchCriteria][]models.Flight
}

func newFakeCache() *fakeCache {
	return &fakeCache{stored: make(map[models.SearchCriteria][]models.Flight)}
}

func (f *fakeCache) Get(ctx context.Context, criteria models.SearchCriteria) ([]models.Flight, bool) {
	flights, ok := f.stored[criteria]
	return flights, ok
}

func (f *fakeCache) Set(ctx context.Context, criteria models.SearchCriteria, flights []models.Flight) error {
	f.stored[criteria] = flights
	return nil
}

func (f *fakeCache) Close() error { return nil }

func rawFlight(id string, price float64) normalizer.RawFlight {
	return normalizer.RawFlight{
		ID:            json.RawMessage(`"` + id + `"`),
		FlightNumber:  "AI 101",
		DepartureTime: "2025-11-20T10:00:00Z",
		ArrivalTime:   "2025-11-20T12:30:00Z",
		DepartureAirport: &normalizer.RawAirport{
			Code: "BOM", CityName: "Mumbai",
		},
		ArrivalAirport: &normalizer.RawAirport{
			Code: "GOX", CityName: "Goa",
		},
		Price: &price,
	}
}

func searchRequest(t *testing.T, h *SearchHandler, rawQuery string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/flights?"+rawQuery, nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Search(e.NewContext(req, rec)))
	return rec
}

func decodeSearch(t *testing.T, rec *httptest.ResponseRecorder) models.SearchResponse {
	t.Helper()
	var resp models.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestSearchSuccess(t *testing.T) {
	flights := &fakeFlightsAPI{raws: []normalizer.RawFlight{
		rawFlight("f1", 4072),
		{ID: json.RawMessage(`"f2"`)}, // malformed, dropped
	}}
	h := NewSearchHandler(flights, newFakeCache())

	rec := searchRequest(t, h, "trips=BOM-GOX&travellers=1&tripDate=2025-11-20")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeSearch(t, rec)
	assert.Equal(t, "BOM", resp.SearchCriteria.Origin)
	assert.Equal(t, "GOX", resp.SearchCriteria.Destination)
	assert.Equal(t, 2, resp.Metadata.RawResults)
	assert.Equal(t, 1, resp.Metadata.TotalResults)
	assert.Equal(t, 1, resp.Metadata.Dropped)
	assert.False(t, resp.Metadata.CacheHit)
	require.Len(t, resp.Flights, 1)
	assert.Equal(t, "f1", resp.Flights[0].ID)
}

func TestSearchInvalidQuerySkipsUpstream(t *testing.T) {
	flights := &fakeFlightsAPI{}
	h := NewSearchHandler(flights, newFakeCache())

	for _, rawQuery := range []string{
		"",
		"trips=BOM&travellers=1&tripDate=2025-11-20",
		"trips=BOM-GOX&travellers=0&tripDate=2025-11-20",
		"trips=BOM-GOX&travellers=1",
	} {
		rec := searchRequest(t, h, rawQuery)
		assert.Equal(t, http.StatusBadRequest, rec.Code, rawQuery)
	}
	assert.Zero(t, flights.calls)
}

func TestSearchCacheHit(t *testing.T) {
	criteria := models.SearchCriteria{
		Origin:      "BOM",
		Destination: "GOX",
		TripDate:    "2025-11-20",
		Travellers:  1,
	}
	cached, err := normalizer.Normalize(rawFlight("f1", 4072))
	require.NoError(t, err)

	c := newFakeCache()
	require.NoError(t, c.Set(context.Background(), criteria, []models.Flight{cached}))

	flights := &fakeFlightsAPI{}
	h := NewSearchHandler(flights, c)

	rec := searchRequest(t, h, query.Encode(criteria))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeSearch(t, rec)
	assert.True(t, resp.Metadata.CacheHit)
	assert.Equal(t, 1, resp.Metadata.TotalResults)
	assert.Zero(t, flights.calls)
}

func TestSearchPopulatesCache(t *testing.T) {
	flights := &fakeFlightsAPI{raws: []normalizer.RawFlight{rawFlight("f1", 4072)}}
	c := newFakeCache()
	h := NewSearchHandler(flights, c)

	searchRequest(t, h, "trips=BOM-GOX&travellers=1&tripDate=2025-11-20")
	require.Equal(t, 1, flights.calls)

	rec := searchRequest(t, h, "trips=BOM-GOX&travellers=1&tripDate=2025-11-20")
	assert.True(t, decodeSearch(t, rec).Metadata.CacheHit)
	assert.Equal(t, 1, flights.calls)
}

func TestSearchFilterParams(t *testing.T) {
	withStops := rawFlight("f2", 3000)
	withStops.StopDetails = []string{"HYD"}

	flights := &fakeFlightsAPI{raws: []normalizer.RawFlight{
		rawFlight("f1", 4072),
		withStops,
	}}
	h := NewSearchHandler(flights, newFakeCache())

	rec := searchRequest(t, h, "trips=BOM-GOX&travellers=1&tripDate=2025-11-20&stops=direct")
	resp := decodeSearch(t, rec)
	require.Len(t, resp.Flights, 1)
	assert.Equal(t, "f1", resp.Flights[0].ID)
	assert.Equal(t, 2, resp.Metadata.RawResults)

	// A present-but-empty filter is the cleared set, not "no filter".
	rec = searchRequest(t, h, "trips=BOM-GOX&travellers=1&tripDate=2025-11-20&stops=")
	assert.Empty(t, decodeSearch(t, rec).Flights)
}

func TestSearchSortParam(t *testing.T) {
	flights := &fakeFlightsAPI{raws: []normalizer.RawFlight{
		rawFlight("expensive", 9000),
		rawFlight("cheap", 3000),
	}}
	h := NewSearchHandler(flights, newFakeCache())

	rec := searchRequest(t, h, "trips=BOM-GOX&travellers=1&tripDate=2025-11-20")
	resp := decodeSearch(t, rec)
	require.Len(t, resp.Flights, 2)
	assert.Equal(t, "cheap", resp.Flights[0].ID)
}

func TestSearchUpstreamError(t *testing.T) {
	flights := &fakeFlightsAPI{err: errors.New("boom")}
	h := NewSearchHandler(flights, newFakeCache())

	rec := searchRequest(t, h, "trips=BOM-GOX&travellers=1&tripDate=2025-11-20")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "search_error", resp.Error)
}

func TestHealthHandler(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, HealthHandler(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
}
