package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/teambot/core/logger"
	"github.com/m3rciful/teambot/internal/domain"
)

const userColumns = `id, telegram_id, name, callsign, birth_date, about, experience,
	car, frequency, agreement, approved, reserved, created_at`

// Users is the member repository keyed by Telegram id.
type Users struct {
	db *sqlx.DB
}

// FindOrCreate returns the user with telegramID, inserting an empty record
// on first contact.
func (r *Users) FindOrCreate(ctx context.Context, telegramID int64) (domain.User, bool, error) {
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind(`INSERT INTO users (telegram_id) VALUES (?) ON CONFLICT (telegram_id) DO NOTHING`),
		telegramID)
	if err != nil {
		return domain.User{}, false, mapError("users.find_or_create", err)
	}
	n, _ := res.RowsAffected()
	u, err := r.Find(ctx, telegramID)
	if err != nil {
		return domain.User{}, false, err
	}
	if n > 0 {
		logger.LogEvent(ctx, logger.Users, slog.LevelInfo, "user.created",
			slog.Int64("target_id", telegramID),
		)
	}
	return u, n > 0, nil
}

// Find returns the user or domain.ErrNotFound.
func (r *Users) Find(ctx context.Context, telegramID int64) (domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u,
		r.db.Rebind(`SELECT `+userColumns+` FROM users WHERE telegram_id = ?`), telegramID)
	if err != nil {
		return domain.User{}, mapError("users.find", err)
	}
	return u, nil
}

// Update applies patch in one statement. Fields are last-write-wins.
// A taken callsign yields domain.ErrDuplicate, a missing user domain.ErrNotFound.
func (r *Users) Update(ctx context.Context, telegramID int64, p domain.UserPatch) error {
	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.Callsign != nil {
		add("callsign", strings.ToLower(*p.Callsign))
	}
	if p.BirthDate != nil {
		d := p.BirthDate.UTC()
		add("birth_date", time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC))
	}
	if p.About != nil {
		add("about", *p.About)
	}
	if p.Experience != nil {
		add("experience", *p.Experience)
	}
	if p.Car != nil {
		add("car", *p.Car)
	}
	if p.Frequency != nil {
		add("frequency", *p.Frequency)
	}
	if p.Agreement != nil {
		add("agreement", *p.Agreement)
	}
	if p.Approved != nil {
		add("approved", *p.Approved)
	}
	if p.Reserved != nil {
		add("reserved", *p.Reserved)
	}
	if len(sets) == 0 {
		_, err := r.Find(ctx, telegramID)
		return err
	}

	args = append(args, telegramID)
	q := r.db.Rebind(`UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE telegram_id = ?`)
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return mapError("users.update", err)
	}
	return affected("users.update", res)
}

// Delete removes the user; polls and ride shares cascade.
func (r *Users) Delete(ctx context.Context, telegramID int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM users WHERE telegram_id = ?`), telegramID)
	if err != nil {
		return mapError("users.delete", err)
	}
	return affected("users.delete", res)
}

// CallsignTaken reports whether another user than exceptTelegramID holds
// callsign. Pass 0 to check against everyone.
func (r *Users) CallsignTaken(ctx context.Context, callsign string, exceptTelegramID int64) (bool, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		r.db.Rebind(`SELECT COUNT(*) FROM users WHERE LOWER(callsign) = ? AND telegram_id <> ?`),
		strings.ToLower(strings.TrimSpace(callsign)), exceptTelegramID)
	if err != nil {
		return false, mapError("users.callsign_taken", err)
	}
	return n > 0, nil
}

// ListMembers returns users with both name and callsign, ordered by callsign.
func (r *Users) ListMembers(ctx context.Context) ([]domain.UserSummary, error) {
	var out []domain.UserSummary
	err := r.db.SelectContext(ctx, &out,
		`SELECT telegram_id, name, callsign FROM users
		 WHERE name IS NOT NULL AND callsign IS NOT NULL
		 ORDER BY callsign`)
	if err != nil {
		return nil, mapError("users.list", err)
	}
	return out, nil
}

// Applications returns submitted surveys awaiting a decision, oldest first.
func (r *Users) Applications(ctx context.Context) ([]domain.UserSummary, error) {
	var out []domain.UserSummary
	err := r.db.SelectContext(ctx, &out,
		`SELECT telegram_id, COALESCE(name, '') AS name, COALESCE(callsign, '') AS callsign FROM users
		 WHERE agreement = TRUE AND approved IS NULL
		 ORDER BY created_at, id`)
	if err != nil {
		return nil, mapError("users.applications", err)
	}
	return out, nil
}

// SurveyRecipients returns Telegram ids of approved members not exempt from surveys.
func (r *Users) SurveyRecipients(ctx context.Context) ([]int64, error) {
	var out []int64
	err := r.db.SelectContext(ctx, &out,
		`SELECT telegram_id FROM users
		 WHERE approved = TRUE AND (reserved IS NULL OR reserved = FALSE)
		 ORDER BY id`)
	if err != nil {
		return nil, mapError("users.recipients", err)
	}
	return out, nil
}

// userID resolves the internal id of a Telegram account.
func userID(ctx context.Context, q sqlx.ExtContext, telegramID int64) (int64, error) {
	var id int64
	err := sqlx.GetContext(ctx, q, &id, q.Rebind(`SELECT id FROM users WHERE telegram_id = ?`), telegramID)
	if err != nil {
		return 0, mapError(fmt.Sprintf("users.id(%d)", telegramID), err)
	}
	return id, nil
}
