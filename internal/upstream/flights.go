package upstream

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/flightdesk/flightdesk/internal/models"
	"github.com/flightdesk/flightdesk/internal/normalizer"
	"github.com/flightdesk/flightdesk/internal/query"
)

// FlightsClient queries the external flight service.
type FlightsClient struct {
	baseURL string
	client  *Client
}

func NewFlightsClient(baseURL string, client *Client) *FlightsClient {
	return &FlightsClient{baseURL: baseURL, client: client}
}

type flightsEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

// Search fetches the raw flight list for the criteria. An unsuccessful
// envelope or a data field that is not an array means zero results, not an
// error; only transport-level failures surface.
func (c *FlightsClient) Search(ctx context.Context, criteria models.SearchCriteria) ([]normalizer.RawFlight, error) {
	url := c.baseURL + "/flights?" + query.Encode(criteria)

	var envelope flightsEnvelope
	if err := c.client.doJSON(ctx, ServiceFlights, http.MethodGet, url, nil, nil, &envelope); err != nil {
		return nil, err
	}

	if !envelope.Success {
		return nil, nil
	}

	var raws []normalizer.RawFlight
	if err := json.Unmarshal(envelope.Data, &raws); err != nil {
		return nil, nil
	}

	return raws, nil
}
