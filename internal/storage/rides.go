package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/teambot/internal/domain"
)

// Rides pairs passengers with drivers.
type Rides struct {
	db *sqlx.DB
}

const driversQuery = `
	SELECT u.id AS user_id, u.telegram_id, COALESCE(u.callsign, '') AS callsign,
	       COALESCE(p.car_capacity, 0) AS car_capacity, p.start_location,
	       (SELECT COUNT(*) FROM ride_shares r WHERE r.event_id = p.event_id AND r.driver_id = u.id) AS taken
	FROM polls p JOIN users u ON u.id = p.user_id
	WHERE p.event_id = ? AND p.is_attending = TRUE AND p.can_provide_ride = TRUE`

// Drivers lists ride offers of an event ordered by callsign.
func (r *Rides) Drivers(ctx context.Context, eventID int64) ([]domain.Driver, error) {
	var out []domain.Driver
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(driversQuery+` ORDER BY callsign, u.id`), eventID)
	if err != nil {
		return nil, mapError("rides.drivers", err)
	}
	return out, nil
}

// ErrSelfRide reports a driver trying to ride with themselves.
var ErrSelfRide = errors.New("driver cannot be own passenger")

// Join seats the passenger in the driver's car. The passenger must attend,
// the car must have a free seat, and a passenger rides in one car per event.
func (r *Rides) Join(ctx context.Context, driverTelegramID, passengerTelegramID, eventID int64) (domain.Driver, error) {
	if driverTelegramID == passengerTelegramID {
		return domain.Driver{}, ErrSelfRide
	}
	var driver domain.Driver
	err := withTx(ctx, r.db, "rides.join", func(tx *sqlx.Tx) error {
		pid, err := userID(ctx, tx, passengerTelegramID)
		if err != nil {
			return err
		}
		var attending bool
		err = tx.GetContext(ctx, &attending,
			tx.Rebind(`SELECT is_attending FROM polls WHERE user_id = ? AND event_id = ?`), pid, eventID)
		if err != nil {
			return mapError("rides.join.passenger", err)
		}
		if !attending {
			return fmt.Errorf("rides.join: passenger not attending: %w", domain.ErrNotFound)
		}

		err = tx.GetContext(ctx, &driver,
			tx.Rebind(driversQuery+` AND u.telegram_id = ?`+forUpdateOf(tx)), eventID, driverTelegramID)
		if err != nil {
			return mapError("rides.join.driver", err)
		}
		if driver.Free() == 0 {
			return fmt.Errorf("rides.join: %w", domain.ErrNoSeats)
		}
		_, err = tx.ExecContext(ctx,
			tx.Rebind(`INSERT INTO ride_shares (driver_id, passenger_id, event_id) VALUES (?, ?, ?)`),
			driver.UserID, pid, eventID)
		if err != nil {
			return mapError("rides.join", err)
		}
		driver.Taken++
		return nil
	})
	return driver, err
}

// forUpdateOf locks the driver's poll row so concurrent joins see the
// committed seat count.
func forUpdateOf(q sqlx.ExtContext) string {
	if s := forUpdate(q); s != "" {
		return s + " OF p"
	}
	return ""
}
