package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/flightdesk/flightdesk/internal/cache"
	"github.com/flightdesk/flightdesk/internal/filter"
	"github.com/flightdesk/flightdesk/internal/models"
	"github.com/flightdesk/flightdesk/internal/normalizer"
	"github.com/flightdesk/flightdesk/internal/query"
)

// FlightsAPI is the upstream flight search the handler depends on.
type FlightsAPI interface {
	Search(ctx context.Context, criteria models.SearchCriteria) ([]normalizer.RawFlight, error)
}

type SearchHandler struct {
	flights FlightsAPI
	cache   cache.Cache
}

func NewSearchHandler(flights FlightsAPI, c cache.Cache) *SearchHandler {
	return &SearchHandler{
		flights: flights,
		cache:   c,
	}
}

// Search decodes the shareable query string, fetches and normalizes the
// flight list, and applies the caller's filter and sort. An undecodable
// query means no search was issued: the flight service is never contacted.
func (h *SearchHandler) Search(c echo.Context) error {
	startTime := time.Now()
	ctx := c.Request().Context()

	criteria, err := query.Decode(c.QueryString())
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_search",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	opts := parseFilterOptions(c)
	sortBy := c.QueryParam("sort")
	if sortBy == "" {
		sortBy = filter.SortCheapest
	}

	if cached, found := h.cache.Get(ctx, criteria); found {
		filtered := filter.Apply(cached, opts, sortBy)
		return c.JSON(http.StatusOK, models.SearchResponse{
			SearchCriteria: criteria,
			Metadata: models.SearchMetadata{
				TotalResults: len(filtered),
				RawResults:   len(cached),
				SearchTimeMs: time.Since(startTime).Milliseconds(),
				CacheHit:     true,
			},
			Flights: filtered,
		})
	}

	raws, err := h.flights.Search(ctx, criteria)
	if err != nil {
		return c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "search_error",
			Message: "Failed to search flights: " + err.Error(),
			Code:    http.StatusBadGateway,
		})
	}

	flights := normalizer.NormalizeAll(raws)
	_ = h.cache.Set(ctx, criteria, flights)

	filtered := filter.Apply(flights, opts, sortBy)

	return c.JSON(http.StatusOK, models.SearchResponse{
		SearchCriteria: criteria,
		Metadata: models.SearchMetadata{
			TotalResults: len(filtered),
			RawResults:   len(raws),
			Dropped:      len(raws) - len(flights),
			SearchTimeMs: time.Since(startTime).Milliseconds(),
			CacheHit:     false,
		},
		Flights: filtered,
	})
}

// parseFilterOptions reads the sidebar state from query parameters. An
// absent parameter leaves that predicate off (nil); a present-but-empty one
// is the cleared set, which shows nothing.
func parseFilterOptions(c echo.Context) *filter.Options {
	params := c.QueryParams()
	opts := &filter.Options{}
	active := false

	if params.Has("stops") {
		opts.Stops = splitList(params.Get("stops"))
		active = true
	}
	if params.Has("airlines") {
		opts.Airlines = splitList(params.Get("airlines"))
		active = true
	}
	if params.Has("baggage") {
		opts.Baggage = splitList(params.Get("baggage"))
		active = true
	}
	if params.Has("depMin") || params.Has("depMax") {
		opts.DepartureHours = &filter.HourRange{
			Min: intParam(params.Get("depMin"), 0),
			Max: intParam(params.Get("depMax"), 24),
		}
		active = true
	}

	if !active {
		return nil
	}
	return opts
}

func splitList(raw string) []string {
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
