package storage

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/teambot/internal/domain"
)

const eventColumns = `id, name, organization, price, latitude, longitude, description,
	starts_at, ends_at, expires_at, created_at`

// Events stores scheduled activities.
type Events struct {
	db *sqlx.DB
}

func utc(t time.Time) time.Time { return t.UTC().Truncate(time.Second) }

// Create inserts e and returns it with its id.
func (r *Events) Create(ctx context.Context, e domain.Event) (domain.Event, error) {
	e.StartsAt, e.EndsAt, e.ExpiresAt = utc(e.StartsAt), utc(e.EndsAt), utc(e.ExpiresAt)
	e.CreatedAt = utc(time.Now())
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(`
		INSERT INTO events (name, organization, price, latitude, longitude, description,
		                    starts_at, ends_at, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`),
		e.Name, e.Organization, e.Price, e.Latitude, e.Longitude, e.Description,
		e.StartsAt, e.EndsAt, e.ExpiresAt, e.CreatedAt,
	).Scan(&e.ID)
	if err != nil {
		return domain.Event{}, mapError("events.create", err)
	}
	return e, nil
}

// Find returns the event or domain.ErrNotFound.
func (r *Events) Find(ctx context.Context, id int64) (domain.Event, error) {
	var e domain.Event
	err := r.db.GetContext(ctx, &e, r.db.Rebind(`SELECT `+eventColumns+` FROM events WHERE id = ?`), id)
	if err != nil {
		return domain.Event{}, mapError("events.find", err)
	}
	return e, nil
}

// Upcoming lists events that have not ended by since, soonest first.
func (r *Events) Upcoming(ctx context.Context, since time.Time) ([]domain.Event, error) {
	var out []domain.Event
	err := r.db.SelectContext(ctx, &out,
		r.db.Rebind(`SELECT `+eventColumns+` FROM events WHERE ends_at >= ? ORDER BY starts_at, id`),
		utc(since))
	if err != nil {
		return nil, mapError("events.upcoming", err)
	}
	return out, nil
}

// Attendance counts the RSVP answers and ride shares of an event.
func (r *Events) Attendance(ctx context.Context, eventID int64) (domain.Attendance, error) {
	var a domain.Attendance
	err := r.db.GetContext(ctx, &a, r.db.Rebind(`
		SELECT
			COALESCE(SUM(CASE WHEN is_attending THEN 1 ELSE 0 END), 0) AS attending,
			COALESCE(SUM(CASE WHEN is_attending THEN 0 ELSE 1 END), 0) AS not_attending,
			COALESCE(SUM(CASE WHEN can_provide_ride THEN 1 ELSE 0 END), 0) AS drivers,
			(SELECT COUNT(*) FROM ride_shares WHERE event_id = ?) AS passengers
		FROM polls WHERE event_id = ?`), eventID, eventID)
	if err != nil {
		return domain.Attendance{}, mapError("events.attendance", err)
	}
	return a, nil
}
