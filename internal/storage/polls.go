package storage

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/teambot/internal/domain"
)

// Polls stores RSVP answers, one per member and event.
type Polls struct {
	db *sqlx.DB
}

// Respond records the attendance answer of a member. Declining drops the
// member's ride offer and every ride share involving them for that event.
func (r *Polls) Respond(ctx context.Context, telegramID, eventID int64, attending bool, reason *string) error {
	return withTx(ctx, r.db, "polls.respond", func(tx *sqlx.Tx) error {
		uid, err := userID(ctx, tx, telegramID)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO polls (user_id, event_id, is_attending, reason_not_attending)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (user_id, event_id) DO UPDATE
			SET is_attending = excluded.is_attending,
			    reason_not_attending = excluded.reason_not_attending`),
			uid, eventID, attending, reason)
		if err != nil {
			return mapError("polls.respond", err)
		}
		if attending {
			return nil
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			UPDATE polls SET can_provide_ride = NULL, car_capacity = NULL, start_location = NULL
			WHERE user_id = ? AND event_id = ?`), uid, eventID); err != nil {
			return mapError("polls.respond.clear_ride", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			DELETE FROM ride_shares WHERE event_id = ? AND (driver_id = ? OR passenger_id = ?)`),
			eventID, uid, uid); err != nil {
			return mapError("polls.respond.drop_rides", err)
		}
		return nil
	})
}

// Find returns the member's answer or domain.ErrNotFound.
func (r *Polls) Find(ctx context.Context, telegramID, eventID int64) (domain.Poll, error) {
	var p domain.Poll
	err := r.db.GetContext(ctx, &p, r.db.Rebind(`
		SELECT p.id, p.user_id, p.event_id, p.is_attending, p.reason_not_attending,
		       p.can_provide_ride, p.car_capacity, p.start_location
		FROM polls p JOIN users u ON u.id = p.user_id
		WHERE u.telegram_id = ? AND p.event_id = ?`), telegramID, eventID)
	if err != nil {
		return domain.Poll{}, mapError("polls.find", err)
	}
	return p, nil
}

// OfferRide marks an attending member as a driver with seats free places.
func (r *Polls) OfferRide(ctx context.Context, telegramID, eventID int64, seats int, location *string) error {
	return withTx(ctx, r.db, "polls.offer_ride", func(tx *sqlx.Tx) error {
		uid, err := userID(ctx, tx, telegramID)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, tx.Rebind(`
			UPDATE polls SET can_provide_ride = TRUE, car_capacity = ?, start_location = ?
			WHERE user_id = ? AND event_id = ? AND is_attending = TRUE`),
			seats, location, uid, eventID)
		if err != nil {
			return mapError("polls.offer_ride", err)
		}
		return affected("polls.offer_ride", res)
	})
}
