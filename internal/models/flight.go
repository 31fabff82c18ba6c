package models

import (
	"fmt"
	"time"
)

type Airline struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type Airport struct {
	Code string `json:"code"`
	Name string `json:"name,omitempty"`
	City string `json:"city,omitempty"`
}

type LegEndpoint struct {
	Time    time.Time `json:"time"`
	Airport Airport   `json:"airport"`
}

type Duration struct {
	Hours        int `json:"hours"`
	Minutes      int `json:"minutes"`
	TotalMinutes int `json:"total_minutes"`
}

func NewDuration(totalMinutes int) Duration {
	return Duration{
		Hours:        totalMinutes / 60,
		Minutes:      totalMinutes % 60,
		TotalMinutes: totalMinutes,
	}
}

// String renders the duration the way the results UI shows it, e.g. "2h 30m".
func (d Duration) String() string {
	return fmt.Sprintf("%dh %dm", d.Hours, d.Minutes)
}

type Price struct {
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Formatted string  `json:"formatted,omitempty"`
}

type Baggage struct {
	Cabin   bool `json:"cabin"`
	Checked bool `json:"checked"`
}

// Flight is the canonical record every backend payload variant is normalized
// into. StopDetails lists intermediate airport codes in order; Stops matches
// its length for non-direct flights.
type Flight struct {
	ID           string      `json:"id"`
	Airline      Airline     `json:"airline"`
	FlightNumber string      `json:"flight_number"`
	Departure    LegEndpoint `json:"departure"`
	Arrival      LegEndpoint `json:"arrival"`
	Duration     Duration    `json:"duration"`
	Stops        int         `json:"stops"`
	StopDetails  []string    `json:"stop_details,omitempty"`
	Price        Price       `json:"price"`
	Deals        []string    `json:"deals,omitempty"`
	Baggage      Baggage     `json:"baggage"`
}
