package models

// SearchCriteria is one issued search. Immutable once a search goes out; a
// new search builds a new value. TripDate is a calendar date (2006-01-02),
// no time component.
type SearchCriteria struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	TripDate    string `json:"trip_date"`
	Travellers  int    `json:"travellers"`
}
