package normalizer

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/flightdesk/flightdesk/internal/models"
	"github.com/flightdesk/flightdesk/internal/timezone"
	"github.com/flightdesk/flightdesk/pkg/currency"
)

// DefaultCarrierCode is used when no field variant yields a carrier code.
const DefaultCarrierCode = "XX"

const defaultCurrency = "INR"

// RawAirport covers the airport sub-object variants seen across backend
// versions. Older payloads nest the city under City.name, newer ones flatten
// it to cityName.
type RawAirport struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	CityName string `json:"cityName"`
	City     struct {
		Name string `json:"name"`
	} `json:"City"`
}

type RawAirplaneDetail struct {
	ModelNumber string `json:"modelNumber"`
}

// RawFlight is the union of every historical field-name variant the flight
// backend has used for the same logical values. Normalize picks the first
// non-empty candidate per field in a fixed precedence order.
type RawFlight struct {
	ID           json.RawMessage `json:"id"`
	FlightNumber string          `json:"flightNumber"`
	Carrier      string          `json:"carrier"`

	DepartureTime string `json:"departureTime"`
	DepartTime    string `json:"departTime"`
	ArrivalTime   string `json:"arrivalTime"`

	DepartureAirport   *RawAirport `json:"departure_airport"`
	ArrivalAirport     *RawAirport `json:"arrival_airport"`
	DepartureAirportID string      `json:"departureAirportId"`
	ArrivalAirportID   string      `json:"arrivalAirportId"`
	From               string      `json:"from"`
	To                 string      `json:"to"`

	Price *float64 `json:"price"`
	Fare  *float64 `json:"fare"`

	Stops       *int     `json:"stops"`
	StopDetails []string `json:"stopDetails"`
	Deals       []string `json:"deals"`

	AirplaneDetail *RawAirplaneDetail `json:"airplane_detail"`
	Baggage        *models.Baggage    `json:"baggage"`
}

// MalformedRecordError reports a raw flight that cannot be normalized, naming
// the logical field at fault.
type MalformedRecordError struct {
	Field  string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed flight record: %s: %s", e.Field, e.Reason)
}

// Normalize converts one raw backend flight into the canonical record, or
// fails with a *MalformedRecordError. Pure: no side effects, raw is not
// modified. Required fields are an identifier, both timestamps and a price
// amount; everything else defaults.
func Normalize(raw RawFlight) (models.Flight, error) {
	id := idString(raw.ID)
	if id == "" {
		return models.Flight{}, &MalformedRecordError{Field: "id", Reason: "missing"}
	}

	depRaw := firstNonEmpty(raw.DepartureTime, raw.DepartTime)
	if depRaw == "" {
		return models.Flight{}, &MalformedRecordError{Field: "departureTime", Reason: "missing"}
	}
	dep, err := parseInstant(depRaw)
	if err != nil {
		return models.Flight{}, &MalformedRecordError{Field: "departureTime", Reason: err.Error()}
	}

	if raw.ArrivalTime == "" {
		return models.Flight{}, &MalformedRecordError{Field: "arrivalTime", Reason: "missing"}
	}
	arr, err := parseInstant(raw.ArrivalTime)
	if err != nil {
		return models.Flight{}, &MalformedRecordError{Field: "arrivalTime", Reason: err.Error()}
	}
	if !dep.Before(arr) {
		return models.Flight{}, &MalformedRecordError{Field: "arrivalTime", Reason: "arrival not after departure"}
	}

	amount, ok := firstAmount(raw.Price, raw.Fare)
	if !ok {
		return models.Flight{}, &MalformedRecordError{Field: "price", Reason: "missing"}
	}
	if amount < 0 {
		return models.Flight{}, &MalformedRecordError{Field: "price", Reason: "negative amount"}
	}

	depAirport := normalizeAirport(raw.DepartureAirport, raw.DepartureAirportID, raw.From)
	arrAirport := normalizeAirport(raw.ArrivalAirport, raw.ArrivalAirportID, raw.To)

	stopDetails := raw.StopDetails
	stops := 0
	if raw.Stops != nil && *raw.Stops > 0 {
		stops = *raw.Stops
	}
	// The stop list is authoritative when present; a disagreeing stops count
	// is reconciled rather than dropped.
	if len(stopDetails) > 0 {
		stops = len(stopDetails)
	}

	deals := raw.Deals
	if deals == nil {
		deals = []string{}
	}

	baggage := models.Baggage{Cabin: true, Checked: true}
	if raw.Baggage != nil {
		baggage = *raw.Baggage
	}

	airlineName := ""
	if raw.AirplaneDetail != nil {
		airlineName = raw.AirplaneDetail.ModelNumber
	}

	return models.Flight{
		ID:           id,
		Airline:      models.Airline{Code: carrierCode(raw), Name: airlineName},
		FlightNumber: raw.FlightNumber,
		Departure: models.LegEndpoint{
			Time:    timezone.ConvertToAirport(dep, depAirport.Code),
			Airport: depAirport,
		},
		Arrival: models.LegEndpoint{
			Time:    timezone.ConvertToAirport(arr, arrAirport.Code),
			Airport: arrAirport,
		},
		Duration:    models.NewDuration(int(arr.Sub(dep).Minutes())),
		Stops:       stops,
		StopDetails: stopDetails,
		Price: models.Price{
			Amount:    amount,
			Currency:  defaultCurrency,
			Formatted: currency.FormatINR(amount),
		},
		Deals:   deals,
		Baggage: baggage,
	}, nil
}

// NormalizeAll normalizes a whole upstream page, dropping malformed records.
// A bad record is never fatal to the list.
func NormalizeAll(raws []RawFlight) []models.Flight {
	flights := make([]models.Flight, 0, len(raws))
	for _, raw := range raws {
		flight, err := Normalize(raw)
		if err != nil {
			log.Printf("Dropping flight record: %v", err)
			continue
		}
		flights = append(flights, flight)
	}
	return flights
}

// carrierCode resolves the airline code: the leading token of the flight
// number, then the bare carrier field, then the "XX" placeholder.
func carrierCode(raw RawFlight) string {
	if raw.FlightNumber != "" {
		if code, _, _ := strings.Cut(raw.FlightNumber, " "); code != "" {
			return code
		}
	}
	if raw.Carrier != "" {
		return raw.Carrier
	}
	return DefaultCarrierCode
}

// normalizeAirport resolves the airport code from the nested object, the
// flat *AirportId field, then the legacy from/to field. The display name
// falls back city name -> airport name -> code; UI copy depends on this
// order staying put.
func normalizeAirport(nested *RawAirport, airportID, legacy string) models.Airport {
	airport := models.Airport{}
	if nested != nil {
		airport.Code = nested.Code
		airport.City = firstNonEmpty(nested.City.Name, nested.CityName)
		airport.Name = firstNonEmpty(airport.City, nested.Name)
	}
	if airport.Code == "" {
		airport.Code = firstNonEmpty(airportID, legacy)
	}
	if airport.Name == "" {
		airport.Name = airport.Code
	}
	return airport
}

// parseInstant accepts RFC3339 and the older timezone-less backend format.
func parseInstant(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

func firstNonEmpty(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}

func firstAmount(candidates ...*float64) (float64, bool) {
	for _, c := range candidates {
		if c != nil {
			return *c, true
		}
	}
	return 0, false
}

// idString coerces the identifier, which backends have sent both as a JSON
// string and as a number.
func idString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
