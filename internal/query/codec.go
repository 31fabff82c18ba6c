package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/flightdesk/flightdesk/internal/models"
)

// Query string keys shared with the web client. Encode always emits them in
// this order so encoded criteria are reproducible and shareable as links.
const (
	keyTrips      = "trips"
	keyTravellers = "travellers"
	keyTripDate   = "tripDate"
)

const dateLayout = "2006-01-02"

// DecodeError reports a query string that cannot produce complete criteria.
// Callers treat it as "no search issued yet", never as a failed search.
type DecodeError struct {
	Field  string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("search query: %s: %s", e.Field, e.Reason)
}

// Encode renders criteria as a URL-shareable query string, e.g.
// "trips=BOM-GOX&travellers=2&tripDate=2025-09-10".
func Encode(c models.SearchCriteria) string {
	trips := c.Origin + "-" + c.Destination
	return keyTrips + "=" + url.QueryEscape(trips) +
		"&" + keyTravellers + "=" + strconv.Itoa(c.Travellers) +
		"&" + keyTripDate + "=" + url.QueryEscape(c.TripDate)
}

// Decode parses a query string back into criteria. Any missing or malformed
// required key yields a *DecodeError rather than partial criteria, so
// Decode(Encode(c)) == c for every valid c.
func Decode(raw string) (models.SearchCriteria, error) {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return models.SearchCriteria{}, &DecodeError{Field: keyTrips, Reason: "unparseable query string"}
	}

	trips := values.Get(keyTrips)
	if trips == "" {
		return models.SearchCriteria{}, &DecodeError{Field: keyTrips, Reason: "missing"}
	}
	origin, destination, ok := strings.Cut(trips, "-")
	if !ok || origin == "" || destination == "" {
		return models.SearchCriteria{}, &DecodeError{Field: keyTrips, Reason: "want ORIGIN-DESTINATION"}
	}
	if strings.EqualFold(origin, destination) {
		return models.SearchCriteria{}, &DecodeError{Field: keyTrips, Reason: "origin and destination must differ"}
	}

	rawTravellers := values.Get(keyTravellers)
	if rawTravellers == "" {
		return models.SearchCriteria{}, &DecodeError{Field: keyTravellers, Reason: "missing"}
	}
	travellers, err := strconv.Atoi(rawTravellers)
	if err != nil || travellers < 1 {
		return models.SearchCriteria{}, &DecodeError{Field: keyTravellers, Reason: "want integer >= 1"}
	}

	tripDate := values.Get(keyTripDate)
	if tripDate == "" {
		return models.SearchCriteria{}, &DecodeError{Field: keyTripDate, Reason: "missing"}
	}
	if _, err := time.Parse(dateLayout, tripDate); err != nil {
		return models.SearchCriteria{}, &DecodeError{Field: keyTripDate, Reason: "want " + dateLayout}
	}

	return models.SearchCriteria{
		Origin:      origin,
		Destination: destination,
		TripDate:    tripDate,
		Travellers:  travellers,
	}, nil
}
