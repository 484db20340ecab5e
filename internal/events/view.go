package events

import (
	"fmt"
	"strconv"
	"time"

	"github.com/m3rciful/teambot/core/telegram/format"
	"github.com/m3rciful/teambot/core/telegram/helpers"
	"github.com/m3rciful/teambot/internal/domain"
)

func itoa(n int) string { return strconv.Itoa(n) }

// Card renders the event announcement in loc.
func Card(e domain.Event, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	price := "бесплатно"
	if e.Price > 0 {
		price = itoa(e.Price) + " ₽"
	}
	return format.Lines(
		format.Bold(e.Name)+"\n",
		"<b>Организатор:</b> "+format.Escape(e.Organization),
		"<b>Начало:</b> "+helpers.FormatDateTime(e.StartsAt.In(loc)),
		"<b>Окончание:</b> "+helpers.FormatDateTime(e.EndsAt.In(loc)),
		"<b>Стоимость:</b> "+price,
		fmt.Sprintf(`<b>Место:</b> <a href="https://maps.google.com/?q=%f,%f">%.5f, %.5f</a>`,
			e.Latitude, e.Longitude, e.Latitude, e.Longitude),
		"<b>Опрос открыт до:</b> "+helpers.FormatDateTime(e.ExpiresAt.In(loc)),
		"\n"+format.Italic(e.Description),
	)
}

// AdminCard adds the attendance counters to the announcement.
func AdminCard(e domain.Event, a domain.Attendance, loc *time.Location) string {
	return format.Lines(
		Card(e, loc)+"\n",
		"<b>Идут:</b> "+itoa(a.Attending),
		"<b>Не идут:</b> "+itoa(a.NotAttending),
		"<b>Водителей:</b> "+itoa(a.Drivers),
		"<b>Пассажиров:</b> "+itoa(a.Passengers),
	)
}

// ButtonLabel is the short list entry of an event.
func ButtonLabel(e domain.Event, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return e.StartsAt.In(loc).Format("02.01") + " " + e.Name
}
