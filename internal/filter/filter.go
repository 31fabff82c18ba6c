package filter

import (
	"sort"
	"strings"

	"github.com/flightdesk/flightdesk/internal/models"
)

// Stops buckets as the filter sidebar names them.
const (
	BucketDirect  = "direct"
	BucketOneStop = "1stop"
	BucketTwoPlus = "2+stops"
)

// Baggage kinds for the baggage allow-list.
const (
	BaggageCabin   = "cabin"
	BaggageChecked = "checked"
)

// Sort criteria.
const (
	SortCheapest = "cheapest"
	SortFastest  = "fastest"
	SortBest     = "best"
)

// HourRange is an inclusive departure hour-of-day window, 0 <= Min <= Max <= 24.
type HourRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Options is the filter state driven by user actions. For each list a nil
// slice means "no filter applied" (everything passes) while an empty non-nil
// slice means "cleared to show nothing". The filtered view is always derived
// from the full list, never stored back.
type Options struct {
	Stops          []string   `json:"stops,omitempty"`
	DepartureHours *HourRange `json:"departure_hours,omitempty"`
	Airlines       []string   `json:"airlines,omitempty"`
	Baggage        []string   `json:"baggage,omitempty"`
}

// Apply composes sort over filter: Apply == Sort(Filter(flights, opts), sortBy).
// Stateless and reentrant; safe to call on every update. Empty input yields
// an empty output.
func Apply(flights []models.Flight, opts *Options, sortBy string) []models.Flight {
	return Sort(Filter(flights, opts), sortBy)
}

// Filter returns the records passing every active predicate, preserving the
// original order.
func Filter(flights []models.Flight, opts *Options) []models.Flight {
	result := make([]models.Flight, 0, len(flights))
	if opts == nil {
		return append(result, flights...)
	}

	for _, f := range flights {
		if matches(f, opts) {
			result = append(result, f)
		}
	}

	return result
}

func matches(f models.Flight, opts *Options) bool {
	if opts.Stops != nil && !containsFold(opts.Stops, StopsBucket(f.Stops)) {
		return false
	}

	if r := opts.DepartureHours; r != nil {
		hour := f.Departure.Time.Hour()
		if hour < r.Min || hour > r.Max {
			return false
		}
	}

	if opts.Airlines != nil && !containsFold(opts.Airlines, f.Airline.Code) {
		return false
	}

	if opts.Baggage != nil {
		if !f.Baggage.Cabin && containsFold(opts.Baggage, BaggageCabin) {
			return false
		}
		if !f.Baggage.Checked && containsFold(opts.Baggage, BaggageChecked) {
			return false
		}
		if len(opts.Baggage) == 0 {
			return false
		}
	}

	return true
}

// Sort orders flights by the given criterion. All sorts are stable: equal
// keys keep the original relative order. An unknown criterion leaves the
// input order untouched.
func Sort(flights []models.Flight, sortBy string) []models.Flight {
	switch strings.ToLower(sortBy) {
	case SortCheapest:
		sort.SliceStable(flights, func(i, j int) bool {
			return flights[i].Price.Amount < flights[j].Price.Amount
		})

	case SortFastest:
		sort.SliceStable(flights, func(i, j int) bool {
			return flights[i].Duration.TotalMinutes < flights[j].Duration.TotalMinutes
		})

	case SortBest:
		sort.SliceStable(flights, func(i, j int) bool {
			return bestScore(flights[i]) < bestScore(flights[j])
		})
	}

	return flights
}

// StopsBucket maps a stop count to its sidebar bucket.
func StopsBucket(stops int) string {
	switch {
	case stops <= 0:
		return BucketDirect
	case stops == 1:
		return BucketOneStop
	default:
		return BucketTwoPlus
	}
}

// bestScore trades price against duration; lower is better.
func bestScore(f models.Flight) float64 {
	return f.Price.Amount/1000 + float64(f.Duration.TotalMinutes)
}

func containsFold(list []string, want string) bool {
	for _, v := range list {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}
