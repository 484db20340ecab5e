package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/m3rciful/teambot/core/logger"
	"github.com/m3rciful/teambot/core/telegram/format"
	"github.com/m3rciful/teambot/core/telegram/state"
	"github.com/m3rciful/teambot/internal/convo"
	"github.com/m3rciful/teambot/internal/domain"
	"github.com/m3rciful/teambot/internal/survey"
	"github.com/m3rciful/teambot/internal/validate"
)

// Field is an editable member attribute.
type Field string

const (
	FieldName     Field = "name"
	FieldCallsign Field = "callsign"
	FieldAge      Field = "age"
	FieldCar      Field = "car"
	FieldReserved Field = "reserved"
)

// Flow is the state prefix of the edit conversations.
const Flow = "edit"

// Edit states; each flow has exactly one.
const (
	StateName     state.State = "edit.name"
	StateCallsign state.State = "edit.callsign"
	StateAge      state.State = "edit.age"
)

var fieldTitles = map[Field]string{
	FieldName:     "ФИО",
	FieldCallsign: "Позывной",
	FieldAge:      "Дата рождения",
	FieldCar:      "Наличие авто",
	FieldReserved: "Освобождение от опросов",
}

var fieldStates = map[Field]state.State{
	FieldName:     StateName,
	FieldCallsign: StateCallsign,
	FieldAge:      StateAge,
}

// Valid reports whether f is a known field.
func (f Field) Valid() bool {
	_, ok := fieldTitles[f]
	return ok
}

// Title is the field name shown to admins.
func (f Field) Title() string { return fieldTitles[f] }

const (
	keyTarget = "target"
	keyValue  = "value"

	textNotFound = "Пользователь не был найден."
	textRefused  = "Анкета отклоненного пользователя не редактируется."
	textNoMember = "Освобождение от опросов доступно только участникам команды."
)

// Editor runs the single-field edit flows and the immediate toggles.
type Editor struct {
	store  state.Store
	users  Users
	minAge int
	loc    *time.Location
	now    func() time.Time
}

// EditorOptions configures age checks.
type EditorOptions struct {
	MinAge   int
	Location *time.Location
	Now      func() time.Time
}

// NewEditor builds the editor over the admin's session store.
func NewEditor(store state.Store, users Users, opts EditorOptions) *Editor {
	e := &Editor{store: store, users: users, minAge: opts.MinAge, loc: opts.Location, now: opts.Now}
	if e.loc == nil {
		e.loc = time.UTC
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// resolve loads the target. A missing target clears the admin's session.
func (e *Editor) resolve(ctx context.Context, k state.Key, target int64) (domain.User, *convo.Result, error) {
	u, err := e.users.Find(ctx, target)
	if errors.Is(err, domain.ErrNotFound) {
		e.store.Clear(k)
		res := convo.Say(convo.NotFound, convo.Reply{Text: textNotFound})
		return domain.User{}, &res, nil
	}
	if err != nil {
		return domain.User{}, nil, err
	}
	if u.Status() == domain.StatusRejected {
		res := convo.Say(convo.Blocked, convo.Reply{Text: textRefused})
		return u, &res, nil
	}
	return u, nil, nil
}

func question(f Field, label string) string {
	return convo.Prompt("Введи новое значение для поля " + format.Bold(f.Title()) +
		" пользователя " + format.Bold(label))
}

// Begin enters the edit state of a text field of target.
func (e *Editor) Begin(ctx context.Context, k state.Key, target int64, f Field) (convo.Result, error) {
	st, ok := fieldStates[f]
	if !ok {
		return convo.Result{}, fmt.Errorf("edit: field %q is not edited by text", f)
	}
	u, stop, err := e.resolve(ctx, k, target)
	if err != nil || stop != nil {
		return deref(stop), err
	}
	e.store.Clear(k)
	e.store.SetState(k, st)
	e.store.UpdateData(k, state.Data{keyTarget: strconv.FormatInt(target, 10)})

	text := question(f, Label(u))
	if f == FieldAge {
		text = convo.Prompt("Введи новую дату рождения пользователя " + format.Bold(Label(u)) +
			" в формате ДД.ММ.ГГГГ")
	}
	return convo.Say(convo.Started, convo.Reply{Text: text}), nil
}

func deref(r *convo.Result) convo.Result {
	if r == nil {
		return convo.Result{}
	}
	return *r
}

// Handle validates the new value and applies it in a single update.
func (e *Editor) Handle(ctx context.Context, k state.Key, text string) (convo.Result, error) {
	st := e.store.State(k)
	var f Field
	for field, s := range fieldStates {
		if s == st {
			f = field
		}
	}
	target, err := strconv.ParseInt(e.store.Data(k)[keyTarget], 10, 64)
	if f == "" || err != nil {
		e.store.Clear(k)
		return convo.Result{Outcome: convo.Cancelled}, nil
	}

	answer, done := convo.Collect(e.store, k, keyValue, text)
	if !done {
		return convo.Result{Outcome: convo.Waiting}, nil
	}

	u, stop, err := e.resolve(ctx, k, target)
	if err != nil || stop != nil {
		if stop != nil {
			e.store.Clear(k)
		}
		return deref(stop), err
	}

	var (
		patch         domain.UserPatch
		before, after string
	)
	switch f {
	case FieldName:
		v, err := validate.Name(answer)
		if err != nil {
			return e.retry(k, f, u, err)
		}
		patch.Name = &v
		before, after = validate.TitleName(format.DerefString(u.Name, "—")), validate.TitleName(v)
	case FieldCallsign:
		v, sentinel, err := validate.Callsign(answer)
		if err != nil {
			return e.retry(k, f, u, err)
		}
		if sentinel {
			v = validate.Placeholder(u.ID)
		} else {
			taken, err := e.users.CallsignTaken(ctx, v, target)
			if err != nil {
				return convo.Result{}, err
			}
			if taken {
				return e.duplicate(k, v)
			}
		}
		patch.Callsign = &v
		before, after = validate.Capitalize(format.DerefString(u.Callsign, "—")), validate.Capitalize(v)
	case FieldAge:
		birth, err := validate.BirthDate(answer)
		if err != nil {
			return e.retry(k, f, u, err)
		}
		if validate.Age(birth, e.now().In(e.loc)) < e.minAge {
			return e.retry(k, f, u, domain.Invalid("birth_date",
				"Возраст участника не может быть меньше "+survey.YearsGenitive(e.minAge)+"."))
		}
		patch.BirthDate = &birth
		before, after = format.DerefTime(u.BirthDate, "02.01.2006", "—"), birth.Format("02.01.2006")
	}

	err = e.users.Update(ctx, target, patch)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		e.store.Clear(k)
		return convo.Say(convo.NotFound, convo.Reply{
			Text: "Пользователь не найден. Изменение поля " + format.Bold(f.Title()) + " было отменено.",
		}), nil
	case errors.Is(err, domain.ErrDuplicate) && patch.Callsign != nil:
		return e.duplicate(k, *patch.Callsign)
	case err != nil:
		return convo.Result{}, err
	}

	e.store.Clear(k)
	logger.LogEvent(ctx, logger.Admin, slog.LevelInfo, "user.edited",
		slog.Int64("target_id", target),
		slog.String("field", string(f)),
	)
	return convo.Say(convo.Completed, convo.Reply{
		Text: "Для " + format.Bold(Label(u)) + " изменено поле " + format.Bold(f.Title()) + ": " +
			format.Bold(before) + " → " + format.Bold(after),
	}), nil
}

func (e *Editor) retry(k state.Key, f Field, u domain.User, err error) (convo.Result, error) {
	reason, ok := domain.ReasonOf(err)
	if !ok {
		return convo.Result{}, err
	}
	e.store.UpdateData(k, state.Data{keyValue: ""})
	q := "Введи новое значение для поля " + format.Bold(f.Title()) + " пользователя " + format.Bold(Label(u))
	return convo.Say(convo.Invalid, convo.Reply{Text: convo.Error(format.Escape(reason), q)}), nil
}

func (e *Editor) duplicate(k state.Key, callsign string) (convo.Result, error) {
	e.store.UpdateData(k, state.Data{keyValue: ""})
	return convo.Say(convo.Duplicate, convo.Reply{
		Text: convo.Prompt("Ошибка: Позывной " + format.Bold(validate.Capitalize(callsign)) +
			" уже занят, придется выбрать другой позывной."),
	}), nil
}

// Toggle flips a boolean field immediately, without a conversation. It
// returns the updated user for re-rendering the card.
func (e *Editor) Toggle(ctx context.Context, k state.Key, target int64, f Field) (domain.User, convo.Result, error) {
	u, stop, err := e.resolve(ctx, k, target)
	if err != nil || stop != nil {
		return u, deref(stop), err
	}
	var patch domain.UserPatch
	switch f {
	case FieldCar:
		u.Car = domain.Ptr(u.Car == nil || !*u.Car)
		patch.Car = u.Car
	case FieldReserved:
		if !u.Member() {
			return u, convo.Say(convo.Blocked, convo.Reply{Text: textNoMember}), nil
		}
		u.Reserved = domain.Ptr(u.Reserved == nil || !*u.Reserved)
		patch.Reserved = u.Reserved
	default:
		return u, convo.Result{}, fmt.Errorf("toggle: field %q is not a flag", f)
	}
	err = e.users.Update(ctx, target, patch)
	if errors.Is(err, domain.ErrNotFound) {
		return u, convo.Say(convo.NotFound, convo.Reply{Text: textNotFound}), nil
	}
	if err != nil {
		return u, convo.Result{}, err
	}
	logger.LogEvent(ctx, logger.Admin, slog.LevelInfo, "user.toggled",
		slog.Int64("target_id", target),
		slog.String("field", string(f)),
	)
	return u, convo.Result{Outcome: convo.Completed}, nil
}

// AskDelete resolves the target before the confirmation keyboard is shown.
// Nothing is changed yet.
func (e *Editor) AskDelete(ctx context.Context, k state.Key, target int64) (domain.User, convo.Result, error) {
	u, err := e.users.Find(ctx, target)
	if errors.Is(err, domain.ErrNotFound) {
		e.store.Clear(k)
		return u, convo.Say(convo.NotFound, convo.Reply{Text: textNotFound}), nil
	}
	if err != nil {
		return u, convo.Result{}, err
	}
	return u, convo.Say(convo.Started, convo.Reply{
		Text: "Ты уверен, что хочешь удалить пользователя " + format.Bold(Label(u)) + "?",
	}), nil
}

// ConfirmDelete removes the target. A record removed in between by another
// admin is reported as not found.
func (e *Editor) ConfirmDelete(ctx context.Context, k state.Key, target int64) (convo.Result, error) {
	label := strconv.FormatInt(target, 10)
	if u, err := e.users.Find(ctx, target); err == nil {
		label = Label(u)
	}
	err := e.users.Delete(ctx, target)
	if errors.Is(err, domain.ErrNotFound) {
		e.store.Clear(k)
		return convo.Say(convo.NotFound, convo.Reply{Text: "Пользователь не найден, удаление отменено."}), nil
	}
	if err != nil {
		return convo.Result{}, err
	}
	logger.LogEvent(ctx, logger.Admin, slog.LevelInfo, "user.deleted", slog.Int64("target_id", target))
	return convo.Say(convo.Completed, convo.Reply{Text: "Пользователь " + format.Bold(label) + " удален."}), nil
}
