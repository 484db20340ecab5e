package admin

import (
	"fmt"
	"strconv"
	"time"

	"github.com/m3rciful/teambot/core/telegram/format"
	"github.com/m3rciful/teambot/internal/domain"
	"github.com/m3rciful/teambot/internal/validate"
)

// Label names a user in messages: capitalized callsign, else the name, else the id.
func Label(u domain.User) string {
	if u.Callsign != nil && *u.Callsign != "" {
		return validate.Capitalize(*u.Callsign)
	}
	if u.Name != nil && *u.Name != "" {
		return validate.TitleName(*u.Name)
	}
	return strconv.FormatInt(u.TelegramID, 10)
}

func ageText(u domain.User, today time.Time) string {
	if u.BirthDate == nil {
		return "Не указан"
	}
	return fmt.Sprintf("%d (%s)", validate.Age(*u.BirthDate, today), u.BirthDate.Format("02.01.2006"))
}

// Card renders the member card in HTML.
func Card(u domain.User, today time.Time) string {
	name := "Не указано"
	if u.Name != nil {
		name = validate.TitleName(*u.Name)
	}
	callsign := "Не указан"
	if u.Callsign != nil {
		callsign = validate.Capitalize(*u.Callsign)
	}
	membership := map[domain.Status]string{
		domain.StatusApproved: "Принят в команду",
		domain.StatusRejected: "Отказано",
		domain.StatusPending:  "На рассмотрении",
	}[u.Status()]
	reserved := "Еще не в команде"
	if u.Member() {
		reserved = format.YesNo(u.Reserved, "Освобожден", "Не освобожден", "Не освобожден")
	}

	return format.Lines(
		"<b>1. ФИО:</b> "+format.Escape(name),
		"<b>2. ПОЗЫВНОЙ:</b> "+format.Escape(callsign),
		"<b>3. ВОЗРАСТ:</b> "+ageText(u, today),
		"<b>4. О СЕБЕ:</b> "+format.Escape(format.DerefString(u.About, "Не указано")),
		"<b>5. ОБ ОПЫТЕ:</b> "+format.Escape(format.DerefString(u.Experience, "Не указано")),
		"<b>6. НАЛИЧИЕ АВТО:</b> "+format.YesNo(u.Car, "Есть", "Нет", "Не указано"),
		"<b>7. ЧЛЕНСТВО В КОМАНДЕ:</b> "+membership,
		"<b>8. ОСВОБОЖДЕНИЕ ОТ ОПРОСОВ:</b> "+reserved,
	)
}
