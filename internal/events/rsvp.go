package events

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/m3rciful/teambot/core/logger"
	"github.com/m3rciful/teambot/core/telegram/format"
	"github.com/m3rciful/teambot/internal/convo"
	"github.com/m3rciful/teambot/internal/domain"
	"github.com/m3rciful/teambot/internal/validate"
)

// Catalog reads events and their statistics.
type Catalog interface {
	Find(ctx context.Context, id int64) (domain.Event, error)
	Upcoming(ctx context.Context, since time.Time) ([]domain.Event, error)
	Attendance(ctx context.Context, eventID int64) (domain.Attendance, error)
}

// Polls stores RSVP answers.
type Polls interface {
	Respond(ctx context.Context, telegramID, eventID int64, attending bool, reason *string) error
	Find(ctx context.Context, telegramID, eventID int64) (domain.Poll, error)
	OfferRide(ctx context.Context, telegramID, eventID int64, seats int, location *string) error
}

// Rides pairs passengers with drivers.
type Rides interface {
	Drivers(ctx context.Context, eventID int64) ([]domain.Driver, error)
	Join(ctx context.Context, driverTelegramID, passengerTelegramID, eventID int64) (domain.Driver, error)
}

// Members resolves the answering user.
type Members interface {
	Find(ctx context.Context, telegramID int64) (domain.User, error)
}

const (
	textNoEvent     = "Мероприятие не найдено."
	textClosed      = "Опрос по этому мероприятию уже завершен."
	textNotMember   = "Опрос доступен только участникам команды."
	textNoCar       = "Предложить поездку может только участник с автомобилем."
	textNotAnswered = "Сначала отметь, что идешь на мероприятие."
	textNoSeats     = "В этой машине не осталось свободных мест."
	textHasRide     = "Ты уже записан в машину на это мероприятие."
	textSelfRide    = "Нельзя записаться в собственную машину."
	textNoDrivers   = "Пока никто не предложил поездку на это мероприятие."
)

// RSVP answers event surveys for members.
type RSVP struct {
	events  Catalog
	polls   Polls
	rides   Rides
	members Members
	seats   int
	now     func() time.Time
}

// RSVPOptions configures the ride defaults.
type RSVPOptions struct {
	DefaultSeats int
	Now          func() time.Time
}

// NewRSVP builds the survey service.
func NewRSVP(events Catalog, polls Polls, rides Rides, members Members, opts RSVPOptions) *RSVP {
	r := &RSVP{events: events, polls: polls, rides: rides, members: members, seats: opts.DefaultSeats, now: opts.Now}
	if r.seats <= 0 {
		r.seats = 3
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// Upcoming lists events that have not ended yet.
func (r *RSVP) Upcoming(ctx context.Context) ([]domain.Event, error) {
	return r.events.Upcoming(ctx, r.now())
}

// Event returns one event with its attendance counters.
func (r *RSVP) Event(ctx context.Context, id int64) (domain.Event, domain.Attendance, error) {
	e, err := r.events.Find(ctx, id)
	if err != nil {
		return domain.Event{}, domain.Attendance{}, err
	}
	a, err := r.events.Attendance(ctx, id)
	return e, a, err
}

// Answered returns the member's RSVP for the event, if any.
func (r *RSVP) Answered(ctx context.Context, telegramID, eventID int64) (domain.Poll, bool, error) {
	p, err := r.polls.Find(ctx, telegramID, eventID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Poll{}, false, nil
	}
	return p, err == nil, err
}

// open gates every answer: the user must be a member and the survey open.
func (r *RSVP) open(ctx context.Context, telegramID, eventID int64) (domain.User, domain.Event, *convo.Result, error) {
	u, err := r.members.Find(ctx, telegramID)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && !u.Member()) {
		res := convo.Say(convo.Blocked, convo.Reply{Text: textNotMember})
		return u, domain.Event{}, &res, nil
	}
	if err != nil {
		return u, domain.Event{}, nil, err
	}
	e, err := r.events.Find(ctx, eventID)
	if errors.Is(err, domain.ErrNotFound) {
		res := convo.Say(convo.NotFound, convo.Reply{Text: textNoEvent})
		return u, e, &res, nil
	}
	if err != nil {
		return u, e, nil, err
	}
	if !e.Open(r.now()) {
		res := convo.Say(convo.Blocked, convo.Reply{Text: textClosed})
		return u, e, &res, nil
	}
	return u, e, nil, nil
}

// Respond records attendance. Declining drops the member's rides.
func (r *RSVP) Respond(ctx context.Context, telegramID, eventID int64, attending bool) (convo.Result, error) {
	_, e, stop, err := r.open(ctx, telegramID, eventID)
	if err != nil || stop != nil {
		return deref(stop), err
	}
	if err := r.polls.Respond(ctx, telegramID, eventID, attending, nil); err != nil {
		return convo.Result{}, err
	}
	logger.LogEvent(ctx, logger.Events, slog.LevelInfo, "rsvp.answered",
		slog.Int64("event_id", eventID),
		slog.Bool("attending", attending),
	)
	text := "Отметил: ты не идешь на " + format.Bold(e.Name) + "."
	if attending {
		text = "Отметил: ты идешь на " + format.Bold(e.Name) + ". Можешь предложить поездку или найти машину."
	}
	return convo.Say(convo.Completed, convo.Reply{Text: text}), nil
}

// OfferRide registers the member as a driver with the default seat count.
func (r *RSVP) OfferRide(ctx context.Context, telegramID, eventID int64) (convo.Result, error) {
	u, _, stop, err := r.open(ctx, telegramID, eventID)
	if err != nil || stop != nil {
		return deref(stop), err
	}
	if u.Car == nil || !*u.Car {
		return convo.Say(convo.Blocked, convo.Reply{Text: textNoCar}), nil
	}
	err = r.polls.OfferRide(ctx, telegramID, eventID, r.seats, nil)
	if errors.Is(err, domain.ErrNotFound) {
		return convo.Say(convo.Blocked, convo.Reply{Text: textNotAnswered}), nil
	}
	if err != nil {
		return convo.Result{}, err
	}
	logger.LogEvent(ctx, logger.Events, slog.LevelInfo, "ride.offered",
		slog.Int64("event_id", eventID),
		slog.Int("seats", r.seats),
	)
	return convo.Say(convo.Completed, convo.Reply{
		Text: "Ты в списке водителей. Свободных мест: " + format.Bold(itoa(r.seats)) + ".",
	}), nil
}

// Drivers lists cars with free seats for an attending member.
func (r *RSVP) Drivers(ctx context.Context, telegramID, eventID int64) ([]domain.Driver, convo.Result, error) {
	_, _, stop, err := r.open(ctx, telegramID, eventID)
	if err != nil || stop != nil {
		return nil, deref(stop), err
	}
	p, ok, err := r.Answered(ctx, telegramID, eventID)
	if err != nil {
		return nil, convo.Result{}, err
	}
	if !ok || !p.IsAttending {
		return nil, convo.Say(convo.Blocked, convo.Reply{Text: textNotAnswered}), nil
	}
	all, err := r.rides.Drivers(ctx, eventID)
	if err != nil {
		return nil, convo.Result{}, err
	}
	var free []domain.Driver
	for _, d := range all {
		if d.TelegramID != telegramID && d.Free() > 0 {
			free = append(free, d)
		}
	}
	if len(free) == 0 {
		return nil, convo.Say(convo.NotFound, convo.Reply{Text: textNoDrivers}), nil
	}
	return free, convo.Say(convo.Completed, convo.Reply{Text: "Выбери машину:"}), nil
}

// JoinRide seats the member in the driver's car. The returned driver is set
// on success so the caller can notify them.
func (r *RSVP) JoinRide(ctx context.Context, driverTelegramID, telegramID, eventID int64) (domain.Driver, convo.Result, error) {
	if driverTelegramID == telegramID {
		return domain.Driver{}, convo.Say(convo.Blocked, convo.Reply{Text: textSelfRide}), nil
	}
	_, e, stop, err := r.open(ctx, telegramID, eventID)
	if err != nil || stop != nil {
		return domain.Driver{}, deref(stop), err
	}
	d, err := r.rides.Join(ctx, driverTelegramID, telegramID, eventID)
	switch {
	case errors.Is(err, domain.ErrNoSeats):
		return domain.Driver{}, convo.Say(convo.Blocked, convo.Reply{Text: textNoSeats}), nil
	case errors.Is(err, domain.ErrDuplicate):
		return domain.Driver{}, convo.Say(convo.Duplicate, convo.Reply{Text: textHasRide}), nil
	case errors.Is(err, domain.ErrNotFound):
		return domain.Driver{}, convo.Say(convo.NotFound, convo.Reply{Text: textNotAnswered}), nil
	case err != nil:
		return domain.Driver{}, convo.Result{}, err
	}
	logger.LogEvent(ctx, logger.Events, slog.LevelInfo, "ride.joined",
		slog.Int64("event_id", eventID),
		slog.Int64("driver_id", driverTelegramID),
	)
	text := "Ты едешь на " + format.Bold(e.Name) + " с " + format.Bold(validate.Capitalize(d.Callsign)) + "."
	if d.StartLocation != nil && *d.StartLocation != "" {
		text += "\nМесто сбора: " + format.Escape(*d.StartLocation)
	}
	return d, convo.Say(convo.Completed, convo.Reply{Text: text}), nil
}

func deref(r *convo.Result) convo.Result {
	if r == nil {
		return convo.Result{}
	}
	return *r
}
