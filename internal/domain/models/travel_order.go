package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"travelorders/internal/domain"
)

type Status string

const (
	StatusRequested Status = "Requested"
	StatusApproved  Status = "Approved"
	StatusCancelled Status = "Cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusRequested, StatusApproved, StatusCancelled:
		return true
	default:
		return false
	}
}

// Assessed reports whether the order already left the Requested state.
// Approved and Cancelled are terminal for the assessment flow.
func (s Status) Assessed() bool {
	return s != StatusRequested
}

// AssessableTo lists the statuses an admin may move a Requested order to.
func AssessableTo(s Status) bool {
	return s == StatusApproved || s == StatusCancelled
}

type TravelOrder struct {
	ID            int64        `json:"id"`
	UserID        int64        `json:"user_id"`
	City          string       `json:"city"`
	State         string       `json:"state"`
	Country       string       `json:"country"`
	DepartureDate time.Time    `json:"departure_date"`
	ReturnDate    time.Time    `json:"return_date"`
	Status        Status       `json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
	DeletedAt     *time.Time   `json:"deleted_at"`
	User          *UserProfile `json:"user,omitempty"`
}

// NewTravelOrder builds a travel order for the given requester, enforcing
// the creation invariants. The status always starts as Requested; a status
// supplied by the client is never honored.
func NewTravelOrder(userID int64, city, state, country string, departure, ret time.Time, now time.Time) (TravelOrder, error) {
	city = strings.TrimSpace(city)
	state = strings.TrimSpace(state)
	country = strings.TrimSpace(country)

	if err := checkLength("city", city, 2, 70); err != nil {
		return TravelOrder{}, err
	}
	if err := checkLength("state", state, 2, 50); err != nil {
		return TravelOrder{}, err
	}
	if err := checkLength("country", country, 2, 60); err != nil {
		return TravelOrder{}, err
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if !departure.After(today) {
		return TravelOrder{}, domain.ValidationError{Field: "departure_date", Msg: "must be after today"}
	}
	if ret.Before(departure) {
		return TravelOrder{}, domain.ValidationError{Field: "return_date", Msg: "must be equal to or after the departure date"}
	}

	return TravelOrder{
		UserID:        userID,
		City:          city,
		State:         state,
		Country:       country,
		DepartureDate: departure,
		ReturnDate:    ret,
		Status:        StatusRequested,
	}, nil
}

func checkLength(field, value string, min, max int) error {
	n := utf8.RuneCountInString(value)
	if n < min {
		return domain.ValidationError{Field: field, Msg: fmt.Sprintf("must have at least %d characters", min)}
	}
	if n > max {
		return domain.ValidationError{Field: field, Msg: fmt.Sprintf("must have at most %d characters", max)}
	}
	return nil
}
