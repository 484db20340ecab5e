package validate

import (
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/m3rciful/teambot/core/telegram/helpers"
	"github.com/m3rciful/teambot/internal/domain"
)

// EventDraft collects the answers of the event creation conversation.
type EventDraft struct {
	Name         string    `validate:"required,max=255"`
	Organization string    `validate:"required,max=255"`
	Price        int       `validate:"gte=0"`
	Latitude     float64   `validate:"gte=-90,lte=90"`
	Longitude    float64   `validate:"gte=-180,lte=180"`
	Description  string    `validate:"required,max=3000"`
	StartsAt     time.Time `validate:"required"`
	EndsAt       time.Time `validate:"required,gtefield=StartsAt"`
	ExpiresAt    time.Time `validate:"required"`
}

var (
	validateOnce sync.Once
	structs      *validator.Validate
)

func engine() *validator.Validate {
	validateOnce.Do(func() {
		structs = validator.New(validator.WithRequiredStructEnabled())
	})
	return structs
}

// reasons maps struct fields to the notice shown when their tag fails.
var reasons = map[string]string{
	"Name":         "Название мероприятия не может быть пустым и длиннее 255 символов.",
	"Organization": "Имя организатора не может быть пустым и длиннее 255 символов.",
	"Price":        "Цена должна быть целым и не отрицательным числом.",
	"Latitude":     "Широта должна быть в пределах от -90 до 90.",
	"Longitude":    "Долгота должна быть в пределах от -180 до 180.",
	"Description":  "Описание не может быть пустым и длиннее 3000 символов.",
	"StartsAt":     "Не указано время начала мероприятия.",
	"EndsAt":       "Дата и время окончания мероприятия не могут быть раньше времени и даты старта мероприятия.",
	"ExpiresAt":    "Не указано время окончания опроса.",
}

func fieldError(err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		f := ve[0].StructField()
		return &domain.ValidationError{Field: strings.ToLower(f), Reason: reasons[f], Err: err}
	}
	return err
}

// Field checks one field of d with its struct tag.
func (d *EventDraft) Field(name string) error {
	if err := engine().StructPartial(d, name); err != nil {
		return fieldError(err)
	}
	return nil
}

// Validate checks the complete draft against now: the schedule and the
// survey expiry must lie in the future.
func (d *EventDraft) Validate(now time.Time) error {
	if err := engine().Struct(d); err != nil {
		return fieldError(err)
	}
	if !d.StartsAt.After(now) || !d.EndsAt.After(now) {
		return domain.Invalid("schedule", "Дата и время мероприятия не могут быть раньше текущего времени.")
	}
	if !d.ExpiresAt.After(now) {
		return domain.Invalid("expiry", "Нельзя устанавливать прошедшие дату и время.")
	}
	return nil
}

// Event converts a validated draft.
func (d *EventDraft) Event() domain.Event {
	return domain.Event{
		Name:         d.Name,
		Organization: d.Organization,
		Price:        d.Price,
		Latitude:     d.Latitude,
		Longitude:    d.Longitude,
		Description:  d.Description,
		StartsAt:     d.StartsAt,
		EndsAt:       d.EndsAt,
		ExpiresAt:    d.ExpiresAt,
	}
}

// EventText validates a short text answer (name or organization).
func EventText(d *EventDraft, field, raw string) error {
	v := strings.TrimSpace(raw)
	switch field {
	case "Name":
		d.Name = v
	case "Organization":
		d.Organization = v
	case "Description":
		d.Description = v
	default:
		return errors.New("validate: unknown event text field " + field)
	}
	return d.Field(field)
}

// Price parses a non-negative integer price.
func Price(d *EventDraft, raw string) error {
	v := strings.TrimSpace(raw)
	n, err := strconv.Atoi(v)
	if v == "" || err != nil {
		return &domain.ValidationError{Field: "price", Reason: reasons["Price"], Err: err}
	}
	d.Price = n
	return d.Field("Price")
}

// Coordinates parses "lat, lon".
func Coordinates(d *EventDraft, raw string) error {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return domain.Invalid("coordinates", "Координаты нужно указать в формате: широта, долгота. Например: 55.7522, 37.6156")
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lon, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err := errors.Join(err1, err2); err != nil {
		return &domain.ValidationError{Field: "coordinates", Reason: "Координаты должны быть числами.", Err: err}
	}
	return Location(d, lat, lon)
}

// Location sets the coordinates of a shared Telegram location.
func Location(d *EventDraft, lat, lon float64) error {
	d.Latitude, d.Longitude = lat, lon
	if err := d.Field("Latitude"); err != nil {
		return err
	}
	return d.Field("Longitude")
}

// Schedule parses "DD.MM.YYYY HH:MM, DD.MM.YYYY HH:MM" in loc. Single digit
// day and month and a dot between hours and minutes are accepted.
func Schedule(d *EventDraft, raw string, loc *time.Location, now time.Time) error {
	const reason = "Передан неверный формат даты. Обязательно укажи часы и минуты. Пример:\n\n01.01.2030 12:00, 01.01.2030 19:00"
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return domain.Invalid("schedule", reason)
	}
	start, ok1 := helpers.ParseDateTime(parts[0], loc)
	end, ok2 := helpers.ParseDateTime(parts[1], loc)
	if !ok1 || !ok2 {
		return domain.Invalid("schedule", reason)
	}
	if !start.After(now) {
		return domain.Invalid("schedule", "Дата и время старта мероприятия не могут быть раньше текущего времени.")
	}
	if !end.After(now) {
		return domain.Invalid("schedule", "Дата и время окончания мероприятия не могут быть раньше текущего времени.")
	}
	d.StartsAt, d.EndsAt = start, end
	return d.Field("EndsAt")
}

// Expiry parses the survey deadline "DD.MM.YYYY HH:MM" in loc.
func Expiry(d *EventDraft, raw string, loc *time.Location, now time.Time) error {
	t, ok := helpers.ParseDateTime(raw, loc)
	if !ok {
		return domain.Invalid("expiry", "Неверный формат даты и времени окончания опроса. Пример:\n\n01.01.2030 18:00")
	}
	if !t.After(now) {
		return domain.Invalid("expiry", "Нельзя устанавливать прошедшие дату и время.")
	}
	d.ExpiresAt = t
	return nil
}
