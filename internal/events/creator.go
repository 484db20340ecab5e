// Package events runs event creation by admins and the RSVP survey of
// members, including ride sharing.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/m3rciful/teambot/core/logger"
	"github.com/m3rciful/teambot/core/telegram/format"
	"github.com/m3rciful/teambot/core/telegram/state"
	"github.com/m3rciful/teambot/internal/convo"
	"github.com/m3rciful/teambot/internal/domain"
	"github.com/m3rciful/teambot/internal/validate"
)

// Flow is the state prefix of the creation conversation.
const Flow = "event"

const (
	StateName         state.State = "event.name"
	StateOrganization state.State = "event.organization"
	StatePrice        state.State = "event.price"
	StateLocation     state.State = "event.location"
	StateDescription  state.State = "event.description"
	StateSchedule     state.State = "event.schedule"
	StateExpiry       state.State = "event.expiry"
)

const (
	keyName         = "name"
	keyOrganization = "organization"
	keyPrice        = "price"
	keyLatitude     = "latitude"
	keyLongitude    = "longitude"
	keyDescription  = "description"
	keyStartsAt     = "starts_at"
	keyEndsAt       = "ends_at"
	keyExpiresAt    = "expires_at"
	keyBuffer       = "buffer"
)

// Store is the part of the event repository the creator needs.
type Store interface {
	Create(ctx context.Context, e domain.Event) (domain.Event, error)
}

// Recipients lists members that receive event surveys.
type Recipients interface {
	SurveyRecipients(ctx context.Context) ([]int64, error)
}

// Announcer delivers a new event to members.
type Announcer interface {
	Announce(ctx context.Context, e domain.Event, recipients []int64)
}

type createStep struct {
	state state.State
	text  string
	apply func(c *Creator, d *validate.EventDraft, raw string) error
}

// Creator is the admin conversation that builds and saves an event.
type Creator struct {
	store      state.Store
	events     Store
	recipients Recipients
	announcer  Announcer
	loc        *time.Location
	now        func() time.Time
	order      []createStep
}

// CreatorOptions wires the creator.
type CreatorOptions struct {
	Recipients Recipients
	Announcer  Announcer
	Location   *time.Location
	Now        func() time.Time
}

// NewCreator builds the creation conversation.
func NewCreator(store state.Store, events Store, opts CreatorOptions) *Creator {
	c := &Creator{
		store:      store,
		events:     events,
		recipients: opts.Recipients,
		announcer:  opts.Announcer,
		loc:        opts.Location,
		now:        opts.Now,
	}
	if c.loc == nil {
		c.loc = time.UTC
	}
	if c.now == nil {
		c.now = time.Now
	}
	c.order = []createStep{
		{StateName, "Введи название мероприятия.", func(_ *Creator, d *validate.EventDraft, raw string) error {
			return validate.EventText(d, "Name", raw)
		}},
		{StateOrganization, "Кто организатор мероприятия?", func(_ *Creator, d *validate.EventDraft, raw string) error {
			return validate.EventText(d, "Organization", raw)
		}},
		{StatePrice, "Укажи стоимость участия в рублях. Если участие бесплатное, отправь 0.",
			func(_ *Creator, d *validate.EventDraft, raw string) error { return validate.Price(d, raw) }},
		{StateLocation, "Отправь точку на карте или координаты полигона в формате: широта, долгота.",
			func(_ *Creator, d *validate.EventDraft, raw string) error { return validate.Coordinates(d, raw) }},
		{StateDescription, "Добавь описание мероприятия.", func(_ *Creator, d *validate.EventDraft, raw string) error {
			return validate.EventText(d, "Description", raw)
		}},
		{StateSchedule, "Укажи дату и время начала и окончания мероприятия через запятую. Пример:\n\n" +
			"01.01.2030 12:00, 01.01.2030 19:00",
			func(c *Creator, d *validate.EventDraft, raw string) error {
				return validate.Schedule(d, raw, c.loc, c.now())
			}},
		{StateExpiry, "До какого момента участники могут ответить на опрос? Пример:\n\n01.01.2030 18:00",
			func(c *Creator, d *validate.EventDraft, raw string) error {
				return validate.Expiry(d, raw, c.loc, c.now())
			}},
	}
	return c
}

// Start opens the conversation.
func (c *Creator) Start(ctx context.Context, k state.Key) convo.Result {
	c.store.Clear(k)
	c.store.SetState(k, StateName)
	logger.LogEvent(ctx, logger.Events, slog.LevelInfo, "event.create_started")
	return convo.Say(convo.Started, convo.Reply{Text: convo.Prompt(c.order[0].text)})
}

func (c *Creator) step(st state.State) (int, bool) {
	for i, s := range c.order {
		if s.state == st {
			return i, true
		}
	}
	return 0, false
}

// Handle validates a text answer of the current step.
func (c *Creator) Handle(ctx context.Context, k state.Key, text string) (convo.Result, error) {
	i, ok := c.step(c.store.State(k))
	if !ok {
		c.store.Clear(k)
		return convo.Result{Outcome: convo.Cancelled}, nil
	}
	answer, done := convo.Collect(c.store, k, keyBuffer, text)
	if !done {
		return convo.Result{Outcome: convo.Waiting}, nil
	}
	d := loadDraft(c.store.Data(k))
	return c.accept(ctx, k, i, &d, c.order[i].apply(c, &d, answer))
}

// HandleLocation takes a shared map point at the location step.
func (c *Creator) HandleLocation(ctx context.Context, k state.Key, lat, lon float64) (convo.Result, error) {
	i, ok := c.step(c.store.State(k))
	if !ok || c.order[i].state != StateLocation {
		return convo.Result{}, domain.ErrMalformedInput
	}
	d := loadDraft(c.store.Data(k))
	return c.accept(ctx, k, i, &d, validate.Location(&d, lat, lon))
}

func (c *Creator) accept(ctx context.Context, k state.Key, i int, d *validate.EventDraft, err error) (convo.Result, error) {
	if err != nil {
		reason, ok := domain.ReasonOf(err)
		if !ok {
			return convo.Result{}, err
		}
		c.store.UpdateData(k, state.Data{keyBuffer: ""})
		return convo.Say(convo.Invalid, convo.Reply{Text: convo.Error(format.Escape(reason), c.order[i].text)}), nil
	}
	fields := saveDraft(d)
	fields[keyBuffer] = ""
	c.store.UpdateData(k, fields)

	if i+1 < len(c.order) {
		next := c.order[i+1]
		c.store.SetState(k, next.state)
		return convo.Say(convo.Advanced, convo.Reply{Text: convo.Prompt(next.text)}), nil
	}
	return c.finish(ctx, k, d)
}

func (c *Creator) finish(ctx context.Context, k state.Key, d *validate.EventDraft) (convo.Result, error) {
	if err := d.Validate(c.now()); err != nil {
		reason, ok := domain.ReasonOf(err)
		if !ok {
			return convo.Result{}, err
		}
		// A schedule that went stale while the admin typed is asked again.
		c.store.SetState(k, StateSchedule)
		i, _ := c.step(StateSchedule)
		return convo.Say(convo.Invalid, convo.Reply{Text: convo.Error(format.Escape(reason), c.order[i].text)}), nil
	}

	e, err := c.events.Create(ctx, d.Event())
	if err != nil {
		return convo.Result{}, fmt.Errorf("create event: %w", err)
	}
	c.store.Clear(k)
	logger.LogEvent(ctx, logger.Events, slog.LevelInfo, "event.created", slog.Int64("event_id", e.ID))

	sent := 0
	if c.recipients != nil && c.announcer != nil {
		ids, err := c.recipients.SurveyRecipients(ctx)
		if err != nil {
			logger.LogEvent(ctx, logger.Events, slog.LevelWarn, "event.recipients_failed",
				slog.Int64("event_id", e.ID), slog.String("err", err.Error()))
		} else {
			c.announcer.Announce(ctx, e, ids)
			sent = len(ids)
		}
	}
	return convo.Say(convo.Completed, convo.Reply{
		Text: "Мероприятие " + format.Bold(e.Name) + " создано. Опрос отправлен участникам: " + strconv.Itoa(sent) + ".",
	}), nil
}

func saveDraft(d *validate.EventDraft) state.Data {
	out := state.Data{
		keyName:         d.Name,
		keyOrganization: d.Organization,
		keyPrice:        strconv.Itoa(d.Price),
		keyLatitude:     strconv.FormatFloat(d.Latitude, 'f', -1, 64),
		keyLongitude:    strconv.FormatFloat(d.Longitude, 'f', -1, 64),
		keyDescription:  d.Description,
	}
	for key, t := range map[string]time.Time{keyStartsAt: d.StartsAt, keyEndsAt: d.EndsAt, keyExpiresAt: d.ExpiresAt} {
		if !t.IsZero() {
			out[key] = t.Format(time.RFC3339)
		}
	}
	return out
}

func loadDraft(data state.Data) validate.EventDraft {
	d := validate.EventDraft{
		Name:         data[keyName],
		Organization: data[keyOrganization],
		Description:  data[keyDescription],
	}
	d.Price, _ = strconv.Atoi(data[keyPrice])
	d.Latitude, _ = strconv.ParseFloat(data[keyLatitude], 64)
	d.Longitude, _ = strconv.ParseFloat(data[keyLongitude], 64)
	parse := func(key string) time.Time {
		t, err := time.Parse(time.RFC3339, data[key])
		if err != nil {
			return time.Time{}
		}
		return t
	}
	d.StartsAt, d.EndsAt, d.ExpiresAt = parse(keyStartsAt), parse(keyEndsAt), parse(keyExpiresAt)
	return d
}
