package events

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/m3rciful/teambot/core/telegram/state"
	"github.com/m3rciful/teambot/internal/convo"
	"github.com/m3rciful/teambot/internal/domain"
)

var now = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

type fakeEvents struct {
	mu     sync.Mutex
	saved  []domain.Event
	counts domain.Attendance
}

func (f *fakeEvents) Create(_ context.Context, e domain.Event) (domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = int64(len(f.saved) + 1)
	f.saved = append(f.saved, e)
	return e, nil
}

func (f *fakeEvents) Find(_ context.Context, id int64) (domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.saved {
		if e.ID == id {
			return e, nil
		}
	}
	return domain.Event{}, domain.ErrNotFound
}

func (f *fakeEvents) Upcoming(_ context.Context, since time.Time) ([]domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Event
	for _, e := range f.saved {
		if !e.EndsAt.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEvents) Attendance(context.Context, int64) (domain.Attendance, error) {
	return f.counts, nil
}

type fakeRecipients []int64

func (f fakeRecipients) SurveyRecipients(context.Context) ([]int64, error) { return f, nil }

type fakeAnnouncer struct {
	events []domain.Event
	to     []int64
}

func (f *fakeAnnouncer) Announce(_ context.Context, e domain.Event, ids []int64) {
	f.events = append(f.events, e)
	f.to = append(f.to, ids...)
}

var adminKey = state.Key{ChatID: 1, UserID: 1}

func newCreator() (*Creator, *fakeEvents, *fakeAnnouncer, state.Store) {
	store := state.NewMemory()
	ev := &fakeEvents{}
	an := &fakeAnnouncer{}
	c := NewCreator(store, ev, CreatorOptions{
		Recipients: fakeRecipients{10, 20},
		Announcer:  an,
		Now:        func() time.Time { return now },
	})
	return c, ev, an, store
}

func TestCreateEvent(t *testing.T) {
	ctx := context.Background()
	c, ev, an, store := newCreator()

	if res := c.Start(ctx, adminKey); res.Outcome != convo.Started {
		t.Fatalf("start: %v", res.Outcome)
	}
	answers := []struct {
		state state.State
		text  string
	}{
		{StateName, "Штурм форта"},
		{StateOrganization, "Клуб Север"},
		{StatePrice, "1500"},
		{StateLocation, "55.7522, 37.6156"},
		{StateDescription, "Игра на весь день"},
		{StateSchedule, "01.11.2026 10:00, 01.11.2026 18:00"},
	}
	for _, a := range answers {
		if got := store.State(adminKey); got != a.state {
			t.Fatalf("state = %q, want %q", got, a.state)
		}
		res, err := c.Handle(ctx, adminKey, a.text)
		if err != nil || res.Outcome != convo.Advanced {
			t.Fatalf("%s: %v %v", a.state, res.Outcome, err)
		}
	}
	res, err := c.Handle(ctx, adminKey, "31.10.2026 20:00")
	if err != nil || res.Outcome != convo.Completed {
		t.Fatalf("expiry: %v %v", res.Outcome, err)
	}
	if state.InProgress(store, adminKey) {
		t.Fatal("session must be idle")
	}

	if len(ev.saved) != 1 {
		t.Fatalf("saved %d events", len(ev.saved))
	}
	e := ev.saved[0]
	if e.Name != "Штурм форта" || e.Price != 1500 || e.Latitude != 55.7522 || e.Longitude != 37.6156 {
		t.Fatalf("event = %+v", e)
	}
	if !e.StartsAt.Equal(time.Date(2026, 11, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("starts_at = %v", e.StartsAt)
	}
	if len(an.events) != 1 || len(an.to) != 2 {
		t.Fatalf("announced %d events to %v", len(an.events), an.to)
	}
}

func TestCreateEventRejectsInvalidAnswers(t *testing.T) {
	ctx := context.Background()
	c, _, _, store := newCreator()
	c.Start(ctx, adminKey)

	res, _ := c.Handle(ctx, adminKey, "   ")
	if res.Outcome != convo.Invalid || store.State(adminKey) != StateName {
		t.Fatalf("empty name: %v in %q", res.Outcome, store.State(adminKey))
	}
	c.Handle(ctx, adminKey, "Игра")
	c.Handle(ctx, adminKey, "Клуб")
	for _, bad := range []string{"-5", "free", "1.5"} {
		if res, _ := c.Handle(ctx, adminKey, bad); res.Outcome != convo.Invalid {
			t.Fatalf("price %q: %v", bad, res.Outcome)
		}
	}
	c.Handle(ctx, adminKey, "0")
	if res, _ := c.Handle(ctx, adminKey, "95, 10"); res.Outcome != convo.Invalid {
		t.Fatalf("latitude out of range: %v", res.Outcome)
	}
	if store.State(adminKey) != StateLocation {
		t.Fatalf("state = %q", store.State(adminKey))
	}
}

func TestCreateEventLocationPoint(t *testing.T) {
	ctx := context.Background()
	c, _, _, store := newCreator()
	c.Start(ctx, adminKey)

	if _, err := c.HandleLocation(ctx, adminKey, 55, 37); err != domain.ErrMalformedInput {
		t.Fatalf("location at name step: %v", err)
	}
	c.Handle(ctx, adminKey, "Игра")
	c.Handle(ctx, adminKey, "Клуб")
	c.Handle(ctx, adminKey, "0")
	res, err := c.HandleLocation(ctx, adminKey, 55.75, 37.61)
	if err != nil || res.Outcome != convo.Advanced {
		t.Fatalf("location: %v %v", res.Outcome, err)
	}
	if store.State(adminKey) != StateDescription {
		t.Fatalf("state = %q", store.State(adminKey))
	}
	if got := store.Data(adminKey)[keyLatitude]; got != "55.75" {
		t.Fatalf("latitude = %q", got)
	}
}

func TestCreateEventPastSchedule(t *testing.T) {
	ctx := context.Background()
	c, _, _, _ := newCreator()
	c.Start(ctx, adminKey)
	for _, a := range []string{"Игра", "Клуб", "0", "1, 2", "Описание"} {
		c.Handle(ctx, adminKey, a)
	}
	res, _ := c.Handle(ctx, adminKey, "01.10.2026 10:00, 01.10.2026 18:00")
	if res.Outcome != convo.Invalid {
		t.Fatalf("past schedule: %v", res.Outcome)
	}
	res, _ = c.Handle(ctx, adminKey, "01.11.2026 18:00, 01.11.2026 10:00")
	if res.Outcome != convo.Invalid {
		t.Fatalf("end before start: %v", res.Outcome)
	}
}

type fakePolls struct {
	answers map[[2]int64]*domain.Poll
}

func (f *fakePolls) Respond(_ context.Context, tg, eventID int64, attending bool, _ *string) error {
	p := &domain.Poll{UserID: tg, EventID: eventID, IsAttending: attending}
	f.answers[[2]int64{tg, eventID}] = p
	return nil
}

func (f *fakePolls) Find(_ context.Context, tg, eventID int64) (domain.Poll, error) {
	if p, ok := f.answers[[2]int64{tg, eventID}]; ok {
		return *p, nil
	}
	return domain.Poll{}, domain.ErrNotFound
}

func (f *fakePolls) OfferRide(_ context.Context, tg, eventID int64, seats int, _ *string) error {
	p, ok := f.answers[[2]int64{tg, eventID}]
	if !ok || !p.IsAttending {
		return domain.ErrNotFound
	}
	p.CanProvideRide, p.CarCapacity = domain.Ptr(true), &seats
	return nil
}

type fakeRides struct {
	polls  *fakePolls
	joined map[[2]int64]int64
}

func (f *fakeRides) Drivers(_ context.Context, eventID int64) ([]domain.Driver, error) {
	var out []domain.Driver
	for key, p := range f.polls.answers {
		if key[1] != eventID || p.CanProvideRide == nil {
			continue
		}
		d := domain.Driver{TelegramID: key[0], Callsign: "driver", Seats: *p.CarCapacity}
		for k, drv := range f.joined {
			if k[1] == eventID && drv == key[0] {
				d.Taken++
			}
		}
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeRides) Join(ctx context.Context, driver, passenger, eventID int64) (domain.Driver, error) {
	if p, ok := f.polls.answers[[2]int64{passenger, eventID}]; !ok || !p.IsAttending {
		return domain.Driver{}, domain.ErrNotFound
	}
	if _, ok := f.joined[[2]int64{passenger, eventID}]; ok {
		return domain.Driver{}, domain.ErrDuplicate
	}
	drivers, _ := f.Drivers(ctx, eventID)
	for _, d := range drivers {
		if d.TelegramID == driver {
			if d.Free() == 0 {
				return domain.Driver{}, domain.ErrNoSeats
			}
			f.joined[[2]int64{passenger, eventID}] = driver
			d.Taken++
			return d, nil
		}
	}
	return domain.Driver{}, domain.ErrNotFound
}

type fakeMembers map[int64]domain.User

func (f fakeMembers) Find(_ context.Context, tg int64) (domain.User, error) {
	if u, ok := f[tg]; ok {
		return u, nil
	}
	return domain.User{}, domain.ErrNotFound
}

func newRSVP(seats int) (*RSVP, *fakeEvents) {
	ev := &fakeEvents{saved: []domain.Event{{
		ID:        1,
		Name:      "Штурм",
		StartsAt:  now.Add(48 * time.Hour),
		EndsAt:    now.Add(56 * time.Hour),
		ExpiresAt: now.Add(24 * time.Hour),
	}, {
		ID:        2,
		Name:      "Закрытый",
		StartsAt:  now.Add(2 * time.Hour),
		EndsAt:    now.Add(4 * time.Hour),
		ExpiresAt: now.Add(-time.Hour),
	}}}
	polls := &fakePolls{answers: map[[2]int64]*domain.Poll{}}
	rides := &fakeRides{polls: polls, joined: map[[2]int64]int64{}}
	members := fakeMembers{
		10: {TelegramID: 10, Approved: domain.Ptr(true), Car: domain.Ptr(true)},
		20: {TelegramID: 20, Approved: domain.Ptr(true)},
		30: {TelegramID: 30, Approved: domain.Ptr(true)},
		40: {TelegramID: 40},
	}
	return NewRSVP(ev, polls, rides, members, RSVPOptions{DefaultSeats: seats, Now: func() time.Time { return now }}), ev
}

func TestRespond(t *testing.T) {
	ctx := context.Background()
	r, _ := newRSVP(1)

	cases := []struct {
		name      string
		tg, event int64
		want      convo.Outcome
	}{
		{"member", 10, 1, convo.Completed},
		{"pending user", 40, 1, convo.Blocked},
		{"unknown user", 99, 1, convo.Blocked},
		{"expired survey", 10, 2, convo.Blocked},
		{"missing event", 10, 7, convo.NotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := r.Respond(ctx, tc.tg, tc.event, true)
			if err != nil || res.Outcome != tc.want {
				t.Fatalf("got %v %v, want %v", res.Outcome, err, tc.want)
			}
		})
	}
}

func TestRideSharing(t *testing.T) {
	ctx := context.Background()
	r, _ := newRSVP(1)

	if res, _ := r.OfferRide(ctx, 10, 1); res.Outcome != convo.Blocked {
		t.Fatalf("offer before answering: %v", res.Outcome)
	}
	r.Respond(ctx, 10, 1, true)
	if res, _ := r.OfferRide(ctx, 20, 1); res.Outcome != convo.Blocked {
		t.Fatalf("offer without car: %v", res.Outcome)
	}
	if res, err := r.OfferRide(ctx, 10, 1); err != nil || res.Outcome != convo.Completed {
		t.Fatalf("offer: %v %v", res.Outcome, err)
	}

	if _, res, _ := r.Drivers(ctx, 20, 1); res.Outcome != convo.Blocked {
		t.Fatalf("drivers before answering: %v", res.Outcome)
	}
	r.Respond(ctx, 20, 1, true)
	r.Respond(ctx, 30, 1, true)
	drivers, res, err := r.Drivers(ctx, 20, 1)
	if err != nil || res.Outcome != convo.Completed || len(drivers) != 1 || drivers[0].TelegramID != 10 {
		t.Fatalf("drivers: %v %v %+v", res.Outcome, err, drivers)
	}
	if _, res, _ := r.Drivers(ctx, 10, 1); res.Outcome != convo.NotFound {
		t.Fatalf("driver sees own car: %v", res.Outcome)
	}

	if _, res, _ := r.JoinRide(ctx, 10, 10, 1); res.Outcome != convo.Blocked {
		t.Fatalf("self ride: %v", res.Outcome)
	}
	d, res, err := r.JoinRide(ctx, 10, 20, 1)
	if err != nil || res.Outcome != convo.Completed || d.TelegramID != 10 {
		t.Fatalf("join: %v %v", res.Outcome, err)
	}
	if !strings.Contains(res.Replies[0].Text, "Driver") {
		t.Fatalf("reply = %q", res.Replies[0].Text)
	}
	if _, res, _ := r.JoinRide(ctx, 10, 20, 1); res.Outcome != convo.Duplicate {
		t.Fatalf("second join: %v", res.Outcome)
	}
	if _, res, _ := r.JoinRide(ctx, 10, 30, 1); res.Outcome != convo.Blocked {
		t.Fatalf("full car: %v", res.Outcome)
	}
	if _, res, _ := r.Drivers(ctx, 30, 1); res.Outcome != convo.NotFound {
		t.Fatalf("full car listed: %v", res.Outcome)
	}
}

func TestUpcomingAndCards(t *testing.T) {
	ctx := context.Background()
	r, ev := newRSVP(3)
	ev.counts = domain.Attendance{Attending: 4, NotAttending: 1, Drivers: 1, Passengers: 2}

	list, err := r.Upcoming(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("upcoming: %d %v", len(list), err)
	}
	e, a, err := r.Event(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	card := AdminCard(e, a, time.UTC)
	for _, want := range []string{"<b>Штурм</b>", "бесплатно", "<b>Идут:</b> 4", "<b>Пассажиров:</b> 2", "17.10.2026 12:00"} {
		if !strings.Contains(card, want) {
			t.Errorf("card misses %q:\n%s", want, card)
		}
	}
	if got := ButtonLabel(e, time.UTC); got != "17.10 Штурм" {
		t.Errorf("label = %q", got)
	}
}
