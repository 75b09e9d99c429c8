package domain

import "time"

// Rental is a dumpster rental spanning a delivery date and a return date.
type Rental struct {
	ID          string
	ClientID    string
	Destination Destination
	RentalDate  *time.Time
	ReturnDate  *time.Time
	Value       float64
}
