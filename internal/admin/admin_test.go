package admin

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/m3rciful/teambot/core/telegram/state"
	"github.com/m3rciful/teambot/internal/convo"
	"github.com/m3rciful/teambot/internal/domain"
)

type fakeUsers struct {
	mu   sync.Mutex
	byTG map[int64]*domain.User
}

func newFakeUsers(users ...domain.User) *fakeUsers {
	f := &fakeUsers{byTG: map[int64]*domain.User{}}
	for i := range users {
		u := users[i]
		f.byTG[u.TelegramID] = &u
	}
	return f
}

func (f *fakeUsers) Find(_ context.Context, tg int64) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byTG[tg]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return *u, nil
}

func (f *fakeUsers) Update(_ context.Context, tg int64, p domain.UserPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byTG[tg]
	if !ok {
		return domain.ErrNotFound
	}
	if p.Callsign != nil {
		for id, other := range f.byTG {
			if id != tg && other.Callsign != nil && *other.Callsign == *p.Callsign {
				return domain.ErrDuplicate
			}
		}
		u.Callsign = p.Callsign
	}
	if p.Name != nil {
		u.Name = p.Name
	}
	if p.BirthDate != nil {
		u.BirthDate = p.BirthDate
	}
	if p.Car != nil {
		u.Car = p.Car
	}
	if p.Approved != nil {
		u.Approved = p.Approved
	}
	if p.Reserved != nil {
		u.Reserved = p.Reserved
	}
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, tg int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byTG[tg]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byTG, tg)
	return nil
}

func (f *fakeUsers) CallsignTaken(_ context.Context, cs string, except int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, u := range f.byTG {
		if id != except && u.Callsign != nil && *u.Callsign == cs {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) summaries(keep func(domain.User) bool) []domain.UserSummary {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.UserSummary
	for _, u := range f.byTG {
		if keep(*u) {
			out = append(out, domain.UserSummary{TelegramID: u.TelegramID, Callsign: *u.Callsign})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Callsign < out[j].Callsign })
	return out
}

func (f *fakeUsers) ListMembers(context.Context) ([]domain.UserSummary, error) {
	return f.summaries(domain.User.Member), nil
}

func (f *fakeUsers) Applications(context.Context) ([]domain.UserSummary, error) {
	return f.summaries(func(u domain.User) bool {
		return u.Submitted() && u.Status() == domain.StatusPending
	}), nil
}

var today = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func member(tg int64, callsign string) domain.User {
	return domain.User{
		ID:         tg,
		TelegramID: tg,
		Name:       domain.Ptr("иван иванович"),
		Callsign:   domain.Ptr(callsign),
		BirthDate:  domain.Ptr(time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)),
		Agreement:  domain.Ptr(true),
		Approved:   domain.Ptr(true),
	}
}

func newEditor(users Users) (*Editor, state.Store) {
	store := state.NewMemory()
	return NewEditor(store, users, EditorOptions{MinAge: 21, Now: func() time.Time { return today }}), store
}

var adminKey = state.Key{ChatID: 1, UserID: 1}

func TestEditCallsign(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers(member(10, "ghost"), member(20, "viper"))
	ed, store := newEditor(users)

	res, err := ed.Begin(ctx, adminKey, 10, FieldCallsign)
	if err != nil || res.Outcome != convo.Started {
		t.Fatalf("begin: %v %v", res.Outcome, err)
	}
	if store.State(adminKey) != StateCallsign {
		t.Fatalf("state = %q", store.State(adminKey))
	}

	res, err = ed.Handle(ctx, adminKey, "Viper")
	if err != nil || res.Outcome != convo.Duplicate {
		t.Fatalf("taken: %v %v", res.Outcome, err)
	}
	if store.State(adminKey) != StateCallsign {
		t.Fatal("taken callsign must keep the edit step")
	}
	if u, _ := users.Find(ctx, 10); *u.Callsign != "ghost" {
		t.Fatalf("callsign changed to %q", *u.Callsign)
	}

	res, err = ed.Handle(ctx, adminKey, "Shadow")
	if err != nil || res.Outcome != convo.Completed {
		t.Fatalf("edit: %v %v", res.Outcome, err)
	}
	if u, _ := users.Find(ctx, 10); *u.Callsign != "shadow" {
		t.Fatalf("callsign = %q", *u.Callsign)
	}
	if !strings.Contains(res.Replies[0].Text, "Ghost") || !strings.Contains(res.Replies[0].Text, "Shadow") {
		t.Fatalf("confirmation = %q", res.Replies[0].Text)
	}
	if state.InProgress(store, adminKey) {
		t.Fatal("session must be idle after the edit")
	}
}

func TestEditCallsignKeepOwnAndPlaceholder(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers(member(10, "ghost"))
	ed, _ := newEditor(users)

	if _, err := ed.Begin(ctx, adminKey, 10, FieldCallsign); err != nil {
		t.Fatal(err)
	}
	if res, _ := ed.Handle(ctx, adminKey, "ghost"); res.Outcome != convo.Completed {
		t.Fatalf("own callsign: %v", res.Outcome)
	}

	if _, err := ed.Begin(ctx, adminKey, 10, FieldCallsign); err != nil {
		t.Fatal(err)
	}
	if res, _ := ed.Handle(ctx, adminKey, "-"); res.Outcome != convo.Completed {
		t.Fatalf("placeholder: %v", res.Outcome)
	}
	if u, _ := users.Find(ctx, 10); *u.Callsign != "rd10" {
		t.Fatalf("callsign = %q", *u.Callsign)
	}
}

func TestEditInvalidValues(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers(member(10, "ghost"))
	ed, store := newEditor(users)

	if _, err := ed.Begin(ctx, adminKey, 10, FieldName); err != nil {
		t.Fatal(err)
	}
	res, err := ed.Handle(ctx, adminKey, "Ivan")
	if err != nil || res.Outcome != convo.Invalid {
		t.Fatalf("latin name: %v %v", res.Outcome, err)
	}
	if !strings.HasPrefix(res.Replies[0].Text, "Ошибка: ") {
		t.Fatalf("reply = %q", res.Replies[0].Text)
	}
	if store.State(adminKey) != StateName {
		t.Fatal("invalid value must keep the edit step")
	}

	if _, err := ed.Begin(ctx, adminKey, 10, FieldAge); err != nil {
		t.Fatal(err)
	}
	res, _ = ed.Handle(ctx, adminKey, "16.10.2005")
	if res.Outcome != convo.Invalid {
		t.Fatalf("underage: %v", res.Outcome)
	}
	res, _ = ed.Handle(ctx, adminKey, "15.10.2005")
	if res.Outcome != convo.Completed {
		t.Fatalf("exactly min age: %v", res.Outcome)
	}
	u, _ := users.Find(ctx, 10)
	if got := u.BirthDate.Format("02.01.2006"); got != "15.10.2005" {
		t.Fatalf("birth date = %s", got)
	}
}

func TestBeginMissingTarget(t *testing.T) {
	ed, store := newEditor(newFakeUsers())
	store.SetState(adminKey, StateName)

	res, err := ed.Begin(context.Background(), adminKey, 99, FieldName)
	if err != nil || res.Outcome != convo.NotFound {
		t.Fatalf("begin: %v %v", res.Outcome, err)
	}
	if state.InProgress(store, adminKey) {
		t.Fatal("missing target must leave the admin idle")
	}
}

func TestBeginRejected(t *testing.T) {
	u := member(10, "ghost")
	u.Approved = domain.Ptr(false)
	ed, store := newEditor(newFakeUsers(u))

	res, err := ed.Begin(context.Background(), adminKey, 10, FieldName)
	if err != nil || res.Outcome != convo.Blocked {
		t.Fatalf("begin: %v %v", res.Outcome, err)
	}
	if state.InProgress(store, adminKey) {
		t.Fatal("rejected user must not be edited")
	}
}

func TestTargetDeletedDuringEdit(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers(member(10, "ghost"))
	ed, store := newEditor(users)

	if _, err := ed.Begin(ctx, adminKey, 10, FieldName); err != nil {
		t.Fatal(err)
	}
	_ = users.Delete(ctx, 10)
	res, err := ed.Handle(ctx, adminKey, "Петр Петрович")
	if err != nil || res.Outcome != convo.NotFound {
		t.Fatalf("handle: %v %v", res.Outcome, err)
	}
	if state.InProgress(store, adminKey) {
		t.Fatal("session must be cleared")
	}
}

func TestToggle(t *testing.T) {
	ctx := context.Background()
	pending := member(20, "viper")
	pending.Approved = nil
	users := newFakeUsers(member(10, "ghost"), pending)
	ed, _ := newEditor(users)

	u, res, err := ed.Toggle(ctx, adminKey, 10, FieldReserved)
	if err != nil || res.Outcome != convo.Completed || !*u.Reserved {
		t.Fatalf("reserve: %v %v", res.Outcome, err)
	}
	u, _, _ = ed.Toggle(ctx, adminKey, 10, FieldReserved)
	if *u.Reserved {
		t.Fatal("second toggle must clear the exemption")
	}
	u, _, _ = ed.Toggle(ctx, adminKey, 10, FieldCar)
	if stored, _ := users.Find(ctx, 10); !*stored.Car || !*u.Car {
		t.Fatal("car toggle not stored")
	}

	_, res, err = ed.Toggle(ctx, adminKey, 20, FieldReserved)
	if err != nil || res.Outcome != convo.Blocked {
		t.Fatalf("pending reserve: %v %v", res.Outcome, err)
	}
	if _, _, err := ed.Toggle(ctx, adminKey, 10, FieldName); err == nil {
		t.Fatal("name is not a flag")
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers(member(10, "ghost"))
	ed, _ := newEditor(users)

	if _, res, _ := ed.AskDelete(ctx, adminKey, 10); res.Outcome != convo.Started {
		t.Fatalf("ask: %v", res.Outcome)
	}
	if _, err := users.Find(ctx, 10); err != nil {
		t.Fatal("asking must not delete")
	}
	res, err := ed.ConfirmDelete(ctx, adminKey, 10)
	if err != nil || res.Outcome != convo.Completed {
		t.Fatalf("confirm: %v %v", res.Outcome, err)
	}
	res, err = ed.ConfirmDelete(ctx, adminKey, 10)
	if err != nil || res.Outcome != convo.NotFound {
		t.Fatalf("second confirm: %v %v", res.Outcome, err)
	}
	if res.Replies[0].Text != "Пользователь не найден, удаление отменено." {
		t.Fatalf("reply = %q", res.Replies[0].Text)
	}
}

func TestMembersPage(t *testing.T) {
	var seed []domain.User
	for i, cs := range []string{"k", "j", "i", "h", "g", "f", "e", "d", "c", "b", "a"} {
		seed = append(seed, member(int64(i+1), cs))
	}
	m := NewMembers(newFakeUsers(seed...), 9)
	ctx := context.Background()

	p, err := m.Page(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Items) != 9 || p.Total != 2 || p.HasPrev() || !p.HasNext() || p.Items[0].Callsign != "a" {
		t.Fatalf("page 0 = %+v", p)
	}
	p, _ = m.Page(ctx, 7)
	if p.Index != 1 || len(p.Items) != 2 || p.HasNext() {
		t.Fatalf("clamped page = %+v", p)
	}
	p, _ = m.Page(ctx, -3)
	if p.Index != 0 {
		t.Fatalf("negative page = %d", p.Index)
	}

	empty, _ := NewMembers(newFakeUsers(), 9).Page(ctx, 2)
	if empty.Total != 0 || len(empty.Items) != 0 {
		t.Fatalf("empty = %+v", empty)
	}
}

func TestDecide(t *testing.T) {
	ctx := context.Background()
	applicant := member(10, "ghost")
	applicant.Approved = nil
	unsurveyed := domain.User{ID: 20, TelegramID: 20, Callsign: domain.Ptr("rd20")}
	users := newFakeUsers(applicant, unsurveyed)
	m := NewMembers(users, 9)

	apps, _ := m.Applications(ctx)
	if len(apps) != 1 || apps[0].TelegramID != 10 {
		t.Fatalf("applications = %+v", apps)
	}
	u, err := m.Decide(ctx, 10, true)
	if err != nil || !u.Member() || u.Reserved == nil || *u.Reserved {
		t.Fatalf("approve: %+v %v", u, err)
	}
	if _, err := m.Decide(ctx, 10, false); !errors.Is(err, ErrDecided) {
		t.Fatalf("second decision err = %v", err)
	}
	if _, err := m.Decide(ctx, 20, true); !errors.Is(err, ErrDecided) {
		t.Fatalf("unsubmitted err = %v", err)
	}
	if _, err := m.Decide(ctx, 30, true); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing err = %v", err)
	}
}

func TestCard(t *testing.T) {
	u := member(10, "ghost")
	u.About = domain.Ptr("<script>")
	card := Card(u, today)
	for _, want := range []string{
		"<b>1. ФИО:</b> Иван Иванович",
		"<b>2. ПОЗЫВНОЙ:</b> Ghost",
		"<b>3. ВОЗРАСТ:</b> 36 (01.05.1990)",
		"&lt;script&gt;",
		"Принят в команду",
		"Не освобожден",
	} {
		if !strings.Contains(card, want) {
			t.Errorf("card misses %q:\n%s", want, card)
		}
	}

	u.Approved = nil
	if !strings.Contains(Card(u, today), "Еще не в команде") {
		t.Error("pending user must not show an exemption")
	}
}
