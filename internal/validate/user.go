// Package validate checks single answers of the member and event
// conversations and returns normalized values.
package validate

import (
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/m3rciful/teambot/core/telegram/helpers"
	"github.com/m3rciful/teambot/internal/domain"
)

const (
	MaxNameLen      = 100
	MaxCallsignLen  = 10
	MaxBirthDateLen = 10
	MaxFreeTextLen  = 1000
	MinBirthYear    = 1900

	// NoCallsign is the answer of users who have no callsign yet.
	NoCallsign = "-"
)

// Name accepts a full name of at least two Cyrillic words and returns it lower-cased.
func Name(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", domain.Invalid("name", "Имя не может быть пустым.")
	}
	if utf8.RuneCountInString(v) > MaxNameLen {
		return "", domain.Invalid("name", "Превышен лимит в 100 символов для имени.")
	}
	if len(strings.Fields(v)) < 2 {
		return "", domain.Invalid("name", "Имя должно содержать минимум два слова (хотя бы Имя и Отчество) и написано кириллицей.")
	}
	for _, r := range v {
		if unicode.IsSpace(r) {
			continue
		}
		if !unicode.IsLetter(r) || !unicode.Is(unicode.Cyrillic, r) {
			return "", domain.Invalid("name", "Имя должно содержать только буквы кириллицы.")
		}
	}
	return strings.Join(strings.Fields(strings.ToLower(v)), " "), nil
}

// Callsign accepts a Latin-only callsign and returns it lower-cased.
// The NoCallsign answer yields sentinel=true and no value; the caller
// assigns Placeholder instead.
func Callsign(raw string) (value string, sentinel bool, err error) {
	v := strings.TrimSpace(raw)
	if v == NoCallsign {
		return "", true, nil
	}
	if v == "" {
		return "", false, domain.Invalid("callsign", "Позывной не может быть пустым.")
	}
	if utf8.RuneCountInString(v) > MaxCallsignLen {
		return "", false, domain.Invalid("callsign", "Длина позывного не должна превышать 10 символов.")
	}
	latin := strings.Map(func(r rune) rune {
		if isLatin(r) {
			return r
		}
		return -1
	}, v)
	if latin == "" {
		return "", false, domain.Invalid("callsign", "Неверный формат позывного. Текст должен содержать только латинские символы.")
	}
	if latin != v {
		return "", false, domain.Invalid("callsign",
			"Позывной должен быть написан исключительно латинскими буквами, без символов, цифр и пробелов. "+
				"Если позывного еще нет, то просто отправь \"-\" в чат.")
	}
	return strings.ToLower(latin), false, nil
}

func isLatin(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// Placeholder derives the callsign of a member without one from the
// internal user id. Digits keep it out of the space of chosen callsigns.
func Placeholder(userID int64) string {
	return "rd" + strconv.FormatInt(userID, 10)
}

// BirthDate parses DD.MM.YYYY. The result is a UTC calendar date.
func BirthDate(raw string) (time.Time, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return time.Time{}, domain.Invalid("birth_date", "Дата рождения не может быть пустой.")
	}
	if utf8.RuneCountInString(v) > MaxBirthDateLen {
		return time.Time{}, domain.Invalid("birth_date", "Длина сообщения с датой рождения не должна превышать 10 символов.")
	}
	t, ok := helpers.ParseDate(v, time.UTC)
	if !ok {
		return time.Time{}, domain.Invalid("birth_date", "Неверный формат даты. Укажите дату в формате ДД.ММ.ГГГГ.")
	}
	if t.Year() < MinBirthYear {
		return time.Time{}, domain.Invalid("birth_date", "Дата рождения не может быть ранее 1900 года.")
	}
	return t, nil
}

// Age returns full years between birth and today by calendar date.
func Age(birth, today time.Time) int {
	age := today.Year() - birth.Year()
	if today.Month() < birth.Month() || (today.Month() == birth.Month() && today.Day() < birth.Day()) {
		age--
	}
	return age
}

// FreeText trims raw and enforces MaxFreeTextLen.
func FreeText(field, raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", domain.Invalid(field, "Текст не может быть пустым.")
	}
	if utf8.RuneCountInString(v) > MaxFreeTextLen {
		return "", domain.Invalid(field, "Слишком длинный текст! Пожалуйста, сократи ответ до 1000 символов.")
	}
	return v, nil
}
