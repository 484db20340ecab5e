// Package survey runs the join questionnaire of new members.
package survey

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/teambot/core/logger"
	"github.com/m3rciful/teambot/core/telegram/state"
	"github.com/m3rciful/teambot/internal/convo"
	"github.com/m3rciful/teambot/internal/domain"
	"github.com/m3rciful/teambot/internal/validate"
)

// Users is the part of the member repository the survey needs.
type Users interface {
	FindOrCreate(ctx context.Context, telegramID int64) (domain.User, bool, error)
	Update(ctx context.Context, telegramID int64, p domain.UserPatch) error
	CallsignTaken(ctx context.Context, callsign string, exceptTelegramID int64) (bool, error)
}

// Options configures the survey rules.
type Options struct {
	MinAge   int
	Location *time.Location
	Now      func() time.Time
}

// Join is the join survey state machine. Sessions are addressed by
// state.Key; the member record by the key's UserID.
type Join struct {
	store  state.Store
	users  Users
	minAge int
	loc    *time.Location
	now    func() time.Time
	order  []step
}

// NewJoin builds the machine over the session store and the repository.
func NewJoin(store state.Store, users Users, opts Options) *Join {
	j := &Join{store: store, users: users, minAge: opts.MinAge, loc: opts.Location, now: opts.Now}
	if j.loc == nil {
		j.loc = time.UTC
	}
	if j.now == nil {
		j.now = time.Now
	}
	j.order = j.steps()
	return j
}

// Start opens the survey unless the user is already a member, was refused,
// or has a submitted application.
func (j *Join) Start(ctx context.Context, k state.Key) (convo.Result, error) {
	u, _, err := j.users.FindOrCreate(ctx, k.UserID)
	if err != nil {
		return convo.Result{}, fmt.Errorf("survey start: %w", err)
	}
	var notice string
	switch {
	case u.Status() == domain.StatusApproved:
		notice = textMember
	case u.Status() == domain.StatusRejected:
		notice = textRefused
	case u.Submitted():
		notice = textSubmitted
	}
	if notice != "" {
		return convo.Say(convo.Blocked, convo.Reply{Text: notice}), nil
	}

	j.store.Clear(k)
	j.store.SetState(k, StateName)
	logger.LogEvent(ctx, logger.Survey, slog.LevelInfo, "survey.started")
	q := j.order[0].question()
	q.RemoveKeyboard = true
	return convo.Say(convo.Started, q), nil
}

// Question repeats the prompt of the current step.
func (j *Join) Question(k state.Key) (convo.Reply, bool) {
	if i := j.index(j.store.State(k)); i >= 0 {
		return j.order[i].question(), true
	}
	return convo.Reply{}, false
}

func (j *Join) index(st state.State) int {
	for i, s := range j.order {
		if s.state == st {
			return i
		}
	}
	return -1
}

// Handle processes one text answer of the current step.
func (j *Join) Handle(ctx context.Context, k state.Key, text string) (convo.Result, error) {
	i := j.index(j.store.State(k))
	if i < 0 {
		j.store.Clear(k)
		return convo.Result{Outcome: convo.Cancelled}, nil
	}
	s := j.order[i]
	answer, done := convo.Collect(j.store, k, s.key, text)
	if !done {
		return convo.Result{Outcome: convo.Waiting}, nil
	}

	switch s.state {
	case StateName:
		v, err := validate.Name(answer)
		if err != nil {
			return j.invalid(k, s, err)
		}
		return j.advance(k, i, v)
	case StateCallsign:
		return j.callsign(ctx, k, i, answer)
	case StateAge:
		return j.age(ctx, k, i, answer)
	case StateAbout, StateExperience:
		v, err := validate.FreeText(s.key, answer)
		if err != nil {
			return j.invalid(k, s, err)
		}
		return j.advance(k, i, v)
	case StateCar:
		v, err := validate.Car(answer)
		if err != nil {
			return j.invalid(k, s, err)
		}
		return j.advance(k, i, flag(v))
	case StateFrequency:
		v, err := validate.Frequency(answer)
		if err != nil {
			return j.invalid(k, s, err)
		}
		return j.advance(k, i, v)
	case StateAgreement:
		return j.agreement(ctx, k, s, answer)
	}
	return convo.Result{}, fmt.Errorf("survey: unhandled state %q", s.state)
}

// invalid resets the answer buffer and repeats the question with the reason.
func (j *Join) invalid(k state.Key, s step, err error) (convo.Result, error) {
	reason, ok := domain.ReasonOf(err)
	if !ok {
		return convo.Result{}, err
	}
	j.store.UpdateData(k, state.Data{s.key: ""})
	return convo.Say(convo.Invalid, s.retry(reason)), nil
}

// advance stores value and moves to the first later step without an answer.
func (j *Join) advance(k state.Key, i int, value string) (convo.Result, error) {
	j.store.UpdateData(k, state.Data{j.order[i].key: value})
	data := j.store.Data(k)
	for n := i + 1; n < len(j.order); n++ {
		if data[j.order[n].key] == "" {
			j.store.SetState(k, j.order[n].state)
			return convo.Say(convo.Advanced, j.order[n].question()), nil
		}
	}
	return convo.Result{}, fmt.Errorf("survey: no step after %q", j.order[i].state)
}

func (j *Join) callsign(ctx context.Context, k state.Key, i int, answer string) (convo.Result, error) {
	s := j.order[i]
	v, sentinel, err := validate.Callsign(answer)
	if err != nil {
		return j.invalid(k, s, err)
	}
	if sentinel {
		u, _, err := j.users.FindOrCreate(ctx, k.UserID)
		if err != nil {
			return convo.Result{}, fmt.Errorf("survey placeholder: %w", err)
		}
		return j.advance(k, i, validate.Placeholder(u.ID))
	}
	taken, err := j.users.CallsignTaken(ctx, v, k.UserID)
	if err != nil {
		return convo.Result{}, fmt.Errorf("survey callsign: %w", err)
	}
	if taken {
		j.store.UpdateData(k, state.Data{s.key: ""})
		return convo.Say(convo.Duplicate, s.retry(textTaken)), nil
	}
	return j.advance(k, i, v)
}

func (j *Join) age(ctx context.Context, k state.Key, i int, answer string) (convo.Result, error) {
	s := j.order[i]
	birth, err := validate.BirthDate(answer)
	if err != nil {
		return j.invalid(k, s, err)
	}
	value := birth.Format(time.DateOnly)
	age := validate.Age(birth, j.now().In(j.loc))
	if age >= j.minAge {
		return j.advance(k, i, value)
	}

	j.store.UpdateData(k, state.Data{s.key: value})
	p := patchFrom(j.store.Data(k))
	p.Approved = domain.Ptr(false)
	if err := j.flush(ctx, k.UserID, p); errors.Is(err, domain.ErrDuplicate) {
		p.Callsign = nil
		err = j.flush(ctx, k.UserID, p)
		if err != nil {
			return convo.Result{}, err
		}
	} else if err != nil {
		return convo.Result{}, err
	}
	j.store.Clear(k)
	logger.LogEvent(ctx, logger.Survey, slog.LevelInfo, "survey.rejected",
		slog.Int("age", age),
		slog.Int("min_age", j.minAge),
	)
	text := fmt.Sprintf("К сожалению мы не можем принять тебя в команду, так как тебе меньше %s.\n\n"+
		"Попробуй обратиться к нам в будущем, когда тебе исполнится %d.", YearsGenitive(j.minAge), j.minAge)
	return convo.Say(convo.Rejected, convo.Reply{Text: text, RemoveKeyboard: true}), nil
}

func (j *Join) agreement(ctx context.Context, k state.Key, s step, answer string) (convo.Result, error) {
	agreed, err := validate.Agreement(answer)
	if err != nil {
		return j.invalid(k, s, err)
	}
	if !agreed {
		j.store.Clear(k)
		logger.LogEvent(ctx, logger.Survey, slog.LevelInfo, "survey.declined")
		return convo.Result{Outcome: convo.Declined, Replies: []convo.Reply{
			{Text: textCancelled, RemoveKeyboard: true},
			{Text: textDeclined},
		}}, nil
	}

	j.store.UpdateData(k, state.Data{s.key: flag(true)})
	err = j.flush(ctx, k.UserID, patchFrom(j.store.Data(k)))
	if errors.Is(err, domain.ErrDuplicate) {
		j.store.UpdateData(k, state.Data{keyCallsign: "", keyAgreement: ""})
		j.store.SetState(k, StateCallsign)
		logger.LogEvent(ctx, logger.Survey, slog.LevelWarn, "survey.callsign_lost")
		cs := j.order[j.index(StateCallsign)]
		r := cs.retry(textLostSign)
		r.RemoveKeyboard = true
		return convo.Say(convo.Duplicate, r), nil
	}
	if err != nil {
		return convo.Result{}, err
	}
	j.store.Clear(k)
	logger.LogEvent(ctx, logger.Survey, slog.LevelInfo, "survey.completed")
	return convo.Say(convo.Completed, convo.Reply{Text: textCompleted, RemoveKeyboard: true}), nil
}

// flush writes the collected answers in one update. A record deleted by an
// admin while the survey was running is created again.
func (j *Join) flush(ctx context.Context, telegramID int64, p domain.UserPatch) error {
	err := j.users.Update(ctx, telegramID, p)
	if errors.Is(err, domain.ErrNotFound) {
		if _, _, err = j.users.FindOrCreate(ctx, telegramID); err != nil {
			return fmt.Errorf("survey flush: %w", err)
		}
		err = j.users.Update(ctx, telegramID, p)
	}
	if err != nil && !errors.Is(err, domain.ErrDuplicate) {
		return fmt.Errorf("survey flush: %w", err)
	}
	return err
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func optional(data state.Data, key string) *string {
	if v := data[key]; v != "" {
		return &v
	}
	return nil
}

func optionalFlag(data state.Data, key string) *bool {
	switch data[key] {
	case "1":
		return domain.Ptr(true)
	case "0":
		return domain.Ptr(false)
	}
	return nil
}

// patchFrom converts the session answers into a record update.
func patchFrom(data state.Data) domain.UserPatch {
	p := domain.UserPatch{
		Name:       optional(data, keyName),
		Callsign:   optional(data, keyCallsign),
		About:      optional(data, keyAbout),
		Experience: optional(data, keyExperience),
		Frequency:  optional(data, keyFrequency),
		Car:        optionalFlag(data, keyCar),
		Agreement:  optionalFlag(data, keyAgreement),
	}
	if v := data[keyBirthDate]; v != "" {
		if t, err := time.Parse(time.DateOnly, v); err == nil {
			p.BirthDate = &t
		}
	}
	return p
}
