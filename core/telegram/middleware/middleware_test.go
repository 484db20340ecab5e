package middleware

import (
	"errors"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

type fakeContext struct {
	tele.Context
	user  *tele.User
	upd   tele.Update
	store map[string]any
}

func newFake(id int64) *fakeContext {
	return &fakeContext{
		user:  &tele.User{ID: id},
		upd:   tele.Update{ID: 1, Message: &tele.Message{Text: "hi"}},
		store: map[string]any{},
	}
}

func (f *fakeContext) Sender() *tele.User       { return f.user }
func (f *fakeContext) Chat() *tele.Chat         { return &tele.Chat{ID: f.user.ID, Type: tele.ChatPrivate} }
func (f *fakeContext) Update() tele.Update      { return f.upd }
func (f *fakeContext) Callback() *tele.Callback { return f.upd.Callback }
func (f *fakeContext) Message() *tele.Message   { return f.upd.Message }
func (f *fakeContext) Get(k string) any         { return f.store[k] }
func (f *fakeContext) Set(k string, v any)      { f.store[k] = v }
func (f *fakeContext) Send(any, ...any) error   { return nil }

func TestRateLimitMiddleware(t *testing.T) {
	limited := 0
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval:  time.Hour,
		Exclude:   map[string]struct{}{"callback": {}},
		OnLimited: func(tele.Context) error { limited++; return nil },
	})
	calls := 0
	h := mw(func(tele.Context) error { calls++; return nil })

	c := newFake(7)
	_ = h(c)
	_ = h(c)
	if calls != 1 || limited != 1 {
		t.Fatalf("calls=%d limited=%d", calls, limited)
	}

	cb := newFake(7)
	cb.upd = tele.Update{ID: 2, Callback: &tele.Callback{Data: "\fadmin_menu"}}
	_ = h(cb)
	if calls != 2 {
		t.Fatal("callbacks are excluded from limiting")
	}

	_ = h(newFake(8))
	if calls != 3 {
		t.Fatal("another user must not be limited")
	}
}

func TestRecoverMiddleware(t *testing.T) {
	h := RecoverMiddleware(func(tele.Context) error { panic("boom") })
	if err := h(newFake(1)); err == nil {
		t.Fatal("panic must surface as error")
	}
	want := errors.New("plain")
	h = RecoverMiddleware(func(tele.Context) error { return want })
	if err := h(newFake(1)); !errors.Is(err, want) {
		t.Fatalf("err = %v", err)
	}
}

func TestMessageMetricsMiddleware(t *testing.T) {
	c := newFake(3)
	h := MessageMetricsMiddleware(func(c tele.Context) error {
		_ = c.Send("one")
		return c.Send("two", &tele.ReplyMarkup{})
	})
	if err := h(c); err != nil {
		t.Fatal(err)
	}
	if msgs, kb := GetCounters(c); msgs != 2 || !kb {
		t.Fatalf("counters = %d, %v", msgs, kb)
	}
}

func TestLoggerMiddlewareStoresRID(t *testing.T) {
	c := newFake(9)
	h := LoggerMiddleware(func(tele.Context) error { return nil })
	if err := h(c); err != nil {
		t.Fatal(err)
	}
	if rid, _ := c.Get("rid").(string); rid != "1:9:9" {
		t.Fatalf("rid = %q", rid)
	}
}
