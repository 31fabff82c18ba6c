package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightdesk/flightdesk/internal/models"
)

func TestEncode(t *testing.T) {
	c := models.SearchCriteria{
		Origin:      "BOM",
		Destination: "GOX",
		TripDate:    "2025-09-10",
		Travellers:  2,
	}

	assert.Equal(t, "trips=BOM-GOX&travellers=2&tripDate=2025-09-10", Encode(c))
}

func TestRoundTrip(t *testing.T) {
	cases := []models.SearchCriteria{
		{Origin: "BOM", Destination: "GOX", TripDate: "2025-09-10", Travellers: 2},
		{Origin: "DEL", Destination: "BLR", TripDate: "2026-01-01", Travellers: 1},
		{Origin: "MAA", Destination: "CCU", TripDate: "2025-12-31", Travellers: 9},
	}

	for _, c := range cases {
		decoded, err := Decode(Encode(c))
		require.NoError(t, err)
		assert.Equal(t, c, decoded)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantField string
	}{
		{"empty query", "", "trips"},
		{"missing trips", "travellers=2&tripDate=2025-09-10", "trips"},
		{"missing travellers", "trips=BOM-GOX&tripDate=2025-09-10", "travellers"},
		{"missing tripDate", "trips=BOM-GOX&travellers=2", "tripDate"},
		{"bad trips format", "trips=BOMGOX&travellers=2&tripDate=2025-09-10", "trips"},
		{"same origin and destination", "trips=BOM-BOM&travellers=2&tripDate=2025-09-10", "trips"},
		{"zero travellers", "trips=BOM-GOX&travellers=0&tripDate=2025-09-10", "travellers"},
		{"non-numeric travellers", "trips=BOM-GOX&travellers=two&tripDate=2025-09-10", "travellers"},
		{"bad date", "trips=BOM-GOX&travellers=2&tripDate=10-09-2025", "tripDate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.raw)
			require.Error(t, err)

			var decodeErr *DecodeError
			require.ErrorAs(t, err, &decodeErr)
			assert.Equal(t, tt.wantField, decodeErr.Field)
		})
	}
}
