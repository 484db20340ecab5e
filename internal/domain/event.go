package domain

import "time"

// Event is a scheduled team activity with an RSVP survey.
type Event struct {
	ID           int64     `db:"id"`
	Name         string    `db:"name"`
	Organization string    `db:"organization"`
	Price        int       `db:"price"`
	Latitude     float64   `db:"latitude"`
	Longitude    float64   `db:"longitude"`
	Description  string    `db:"description"`
	StartsAt     time.Time `db:"starts_at"`
	EndsAt       time.Time `db:"ends_at"`
	ExpiresAt    time.Time `db:"expires_at"`
	CreatedAt    time.Time `db:"created_at"`
}

// Open reports whether the RSVP survey still accepts answers at now.
func (e Event) Open(now time.Time) bool {
	return now.Before(e.ExpiresAt)
}

// Poll is one member's RSVP to one event.
type Poll struct {
	ID                 int64   `db:"id"`
	UserID             int64   `db:"user_id"`
	EventID            int64   `db:"event_id"`
	IsAttending        bool    `db:"is_attending"`
	ReasonNotAttending *string `db:"reason_not_attending"`
	CanProvideRide     *bool   `db:"can_provide_ride"`
	CarCapacity        *int    `db:"car_capacity"`
	StartLocation      *string `db:"start_location"`
}

// RideShare pairs a driver and a passenger for one event.
type RideShare struct {
	ID          int64 `db:"id"`
	DriverID    int64 `db:"driver_id"`
	PassengerID int64 `db:"passenger_id"`
	EventID     int64 `db:"event_id"`
}

// Driver is an attending member offering seats for an event.
type Driver struct {
	UserID        int64   `db:"user_id"`
	TelegramID    int64   `db:"telegram_id"`
	Callsign      string  `db:"callsign"`
	Seats         int     `db:"car_capacity"`
	Taken         int     `db:"taken"`
	StartLocation *string `db:"start_location"`
}

// Free returns the number of seats still available.
func (d Driver) Free() int {
	if d.Taken >= d.Seats {
		return 0
	}
	return d.Seats - d.Taken
}

// Attendance aggregates RSVP answers of an event.
type Attendance struct {
	Attending    int `db:"attending"`
	NotAttending int `db:"not_attending"`
	Drivers      int `db:"drivers"`
	Passengers   int `db:"passengers"`
}
