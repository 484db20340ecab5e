package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/skip2/go-qrcode"

	"github.com/m3rciful/teambot/core/logger"
	"github.com/m3rciful/teambot/core/telegram/callbacks"
	"github.com/m3rciful/teambot/core/telegram/format"
	"github.com/m3rciful/teambot/core/telegram/guard"
	"github.com/m3rciful/teambot/core/telegram/helpers"
	"github.com/m3rciful/teambot/core/telegram/keyboard"
	"github.com/m3rciful/teambot/core/telegram/state"
	"github.com/m3rciful/teambot/internal/callback"
	"github.com/m3rciful/teambot/internal/convo"
	"github.com/m3rciful/teambot/internal/domain"
	"github.com/m3rciful/teambot/internal/events"
	"github.com/m3rciful/teambot/internal/validate"

	tele "gopkg.in/telebot.v4"
)

const qrSize = 512

// Announce sends a new event with RSVP buttons to every recipient.
func (a *App) Announce(ctx context.Context, e domain.Event, recipients []int64) {
	b := a.bot.Load()
	if b == nil {
		logger.LogEvent(ctx, logger.Events, slog.LevelWarn, "event.announce_skipped",
			slog.Int64("event_id", e.ID), slog.String("reason", "bot not started"))
		return
	}
	text := events.Card(e, a.cfg.Team.Location())
	markup := keyboard.InlineButtonsRows(rsvpRows(e.ID, false)...)
	start := time.Now()
	delivered := 0
	for _, id := range recipients {
		if err := helpers.Deliver(ctx, b, id, text, markup); err == nil {
			delivered++
		}
	}
	logger.LogEvent(ctx, logger.Events, slog.LevelInfo, "event.announced",
		slog.Int64("event_id", e.ID),
		slog.Int("recipients", len(recipients)),
		slog.Int("delivered", delivered),
		slog.Duration("duration_ms", logger.Took(start)),
	)
}

// memberOnly admits approved members to the event screens.
func (a *App) memberOnly(c tele.Context) guard.Decision {
	u, err := a.db.Users.Find(helpers.BuildContext(c), helpers.SenderID(c))
	if err == nil && u.Member() {
		return guard.Allowed
	}
	return guard.Deny("not_member", textNotMember)
}

func (a *App) onEvents(c tele.Context) error {
	if d := guard.Check(c, a.memberOnly); !d.Allow {
		helpers.SetOutcome(c, d.Code)
		return guard.Reject(c, d)
	}
	list, err := a.rsvp.Upcoming(helpers.BuildContext(c))
	if err != nil {
		return fail(c, err)
	}
	if len(list) == 0 {
		return send(c, textNoEvents)
	}
	return send(c, textEventsTitle, keyboard.InlineButtonsRows(eventListRows(list, a.cfg.Team.Location(), false)...))
}

// showEvent renders the member card of an event with the RSVP buttons
// matching the member's current answer.
func (a *App) showEvent(c tele.Context, id int64) error {
	if d := guard.Check(c, a.memberOnly); !d.Allow {
		helpers.SetOutcome(c, d.Code)
		return guard.Reject(c, d)
	}
	ctx := helpers.BuildContext(c)
	e, _, err := a.rsvp.Event(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return helpers.Alert(c, textNotFoundEvent)
	}
	if err != nil {
		return fail(c, err)
	}
	p, _, err := a.rsvp.Answered(ctx, helpers.SenderID(c), id)
	if err != nil {
		return fail(c, err)
	}
	return helpers.EditOrSendHTML(c, events.Card(e, a.cfg.Team.Location()),
		keyboard.InlineButtonsRows(rsvpRows(id, p.IsAttending)...))
}

func (a *App) onEventCard(c tele.Context) error {
	in, _ := callbacks.IntentFrom[callback.EventCard](c)
	return a.showEvent(c, in.EventID)
}

func (a *App) onRSVP(c tele.Context) error {
	in, _ := callbacks.IntentFrom[callback.RSVP](c)
	res, err := a.rsvp.Respond(helpers.BuildContext(c), helpers.SenderID(c), in.EventID, in.Attending)
	if err != nil {
		return fail(c, err)
	}
	if res.Outcome != convo.Completed {
		return answer(c, res)
	}
	if c.Message() != nil {
		_ = c.Edit(keyboard.InlineButtonsRows(rsvpRows(in.EventID, in.Attending)...))
	}
	return reply(c, res)
}

func (a *App) onOfferRide(c tele.Context) error {
	in, _ := callbacks.IntentFrom[callback.OfferRide](c)
	res, err := a.rsvp.OfferRide(helpers.BuildContext(c), helpers.SenderID(c), in.EventID)
	if err != nil {
		return fail(c, err)
	}
	return answer(c, res)
}

func (a *App) onFindRide(c tele.Context) error {
	in, _ := callbacks.IntentFrom[callback.FindRide](c)
	drivers, res, err := a.rsvp.Drivers(helpers.BuildContext(c), helpers.SenderID(c), in.EventID)
	if err != nil {
		return fail(c, err)
	}
	if res.Outcome != convo.Completed {
		return answer(c, res)
	}
	helpers.SetOutcome(c, string(res.Outcome))
	return send(c, res.Replies[0].Text, keyboard.InlineButtonsRows(driverRows(in.EventID, drivers)...))
}

// onPickDriver seats the member and tells the driver who joined.
func (a *App) onPickDriver(c tele.Context) error {
	in, _ := callbacks.IntentFrom[callback.PickDriver](c)
	ctx := helpers.BuildContext(c)
	me := helpers.SenderID(c)
	_, res, err := a.rsvp.JoinRide(ctx, in.DriverID, me, in.EventID)
	if err != nil {
		return fail(c, err)
	}
	if res.Outcome == convo.Completed {
		e, _, evErr := a.rsvp.Event(ctx, in.EventID)
		u, userErr := a.db.Users.Find(ctx, me)
		if evErr == nil && userErr == nil {
			callsign := validate.Capitalize(format.DerefString(u.Callsign, ""))
			_ = helpers.Notify(c, in.DriverID, fmt.Sprintf(textPassenger, format.Bold(e.Name), format.Bold(callsign)))
		}
	}
	return reply(c, res)
}

func (a *App) onCreateEvent(c tele.Context) error {
	k, ok := state.KeyFrom(c)
	if !ok {
		return nil
	}
	return reply(c, a.creator.Start(helpers.BuildContext(c), k))
}

func (a *App) onAdminEvents(c tele.Context) error {
	list, err := a.rsvp.Upcoming(helpers.BuildContext(c))
	if err != nil {
		return fail(c, err)
	}
	if len(list) == 0 {
		return edit(c, textNoEvents, [][]keyboard.InlineBtn{backRow(callback.AdminMenu{})})
	}
	return edit(c, textEventsTitle, eventListRows(list, a.cfg.Team.Location(), true))
}

func (a *App) onAdminEvent(c tele.Context) error {
	in, _ := callbacks.IntentFrom[callback.AdminEvent](c)
	e, att, err := a.rsvp.Event(helpers.BuildContext(c), in.EventID)
	if errors.Is(err, domain.ErrNotFound) {
		return helpers.Alert(c, textNotFoundEvent)
	}
	if err != nil {
		return fail(c, err)
	}
	return edit(c, events.AdminCard(e, att, a.cfg.Team.Location()), adminEventRows(e.ID))
}

// eventLink is the deep link that opens the event card in the bot.
func eventLink(botName string, id int64) string {
	return fmt.Sprintf("https://t.me/%s?start=%s%d", botName, eventLinkPrefix, id)
}

// onEventQR sends a QR code of the event deep link for printed invites.
func (a *App) onEventQR(c tele.Context) error {
	in, _ := callbacks.IntentFrom[callback.EventQR](c)
	b := a.bot.Load()
	if b == nil || b.Me == nil || b.Me.Username == "" {
		return helpers.Alert(c, textButtonExpired)
	}
	e, _, err := a.rsvp.Event(helpers.BuildContext(c), in.EventID)
	if errors.Is(err, domain.ErrNotFound) {
		return helpers.Alert(c, textNotFoundEvent)
	}
	if err != nil {
		return fail(c, err)
	}
	link := eventLink(b.Me.Username, e.ID)
	png, err := qrcode.Encode(link, qrcode.Medium, qrSize)
	if err != nil {
		return fail(c, fmt.Errorf("encode qr: %w", err))
	}
	helpers.SetOutcome(c, "qr")
	return helpers.SendPhoto(c, png, fmt.Sprintf(textEventQR, format.Bold(e.Name), format.Code(link)))
}
