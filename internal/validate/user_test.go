package validate

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/m3rciful/teambot/internal/domain"
)

func TestName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"Иван Петрович", "иван петрович", false},
		{"  Иванов   Иван  Иванович ", "иванов иван иванович", false},
		{"Ёжик Ёлкин", "ёжик ёлкин", false},
		{"Иван", "", true},
		{"Ivan Petrov", "", true},
		{"Иван Петров2", "", true},
		{"Иван-Петров Сидоров", "", true},
		{"   ", "", true},
		{strings.Repeat("я", 60) + " " + strings.Repeat("я", 60), "", true},
	}
	for _, tt := range tests {
		got, err := Name(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("Name(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Name(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNameProperty(t *testing.T) {
	for _, in := range []string{"Анна Мария", "ПЁТР ПЕТРОВИЧ ПЕТРОВ", "а б"} {
		got, err := Name(in)
		if err != nil {
			t.Fatalf("Name(%q) error = %v", in, err)
		}
		if len(strings.Fields(got)) < 2 {
			t.Fatalf("Name(%q) = %q has fewer than two words", in, got)
		}
		if got != strings.ToLower(got) {
			t.Fatalf("Name(%q) = %q not lower-case", in, got)
		}
	}
}

func TestCallsign(t *testing.T) {
	tests := []struct {
		in           string
		want         string
		wantSentinel bool
		wantErr      bool
	}{
		{"Ghost", "ghost", false, false},
		{"  RaVeN ", "raven", false, false},
		{"-", "", true, false},
		{" - ", "", true, false},
		{"", "", false, true},
		{"abcdefghijk", "", false, true},
		{"ghost1", "", false, true},
		{"gh ost", "", false, true},
		{"призрак", "", false, true},
		{"123", "", false, true},
	}
	for _, tt := range tests {
		got, sentinel, err := Callsign(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("Callsign(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want || sentinel != tt.wantSentinel {
			t.Errorf("Callsign(%q) = %q, %v; want %q, %v", tt.in, got, sentinel, tt.want, tt.wantSentinel)
		}
		if err != nil {
			var ve *domain.ValidationError
			if !errors.As(err, &ve) || ve.Field != "callsign" {
				t.Errorf("Callsign(%q) error %v is not a callsign ValidationError", tt.in, err)
			}
		}
	}
}

func TestCallsignAcceptedIsLowerLatin(t *testing.T) {
	for _, in := range []string{"A", "Zulu", "bRaVo", "abcdefghij"} {
		got, _, err := Callsign(in)
		if err != nil {
			t.Fatalf("Callsign(%q) error = %v", in, err)
		}
		for _, r := range got {
			if r < 'a' || r > 'z' {
				t.Fatalf("Callsign(%q) = %q contains %q", in, got, r)
			}
		}
	}
}

func TestPlaceholderIsUnique(t *testing.T) {
	seen := map[string]bool{}
	for id := int64(1); id <= 1000; id++ {
		p := Placeholder(id)
		if seen[p] {
			t.Fatalf("duplicate placeholder %q", p)
		}
		seen[p] = true
		if _, _, err := Callsign(p); err == nil {
			t.Fatalf("placeholder %q must not be a valid chosen callsign", p)
		}
	}
}

func TestBirthDate(t *testing.T) {
	got, err := BirthDate("01.02.1990")
	if err != nil {
		t.Fatalf("BirthDate() error = %v", err)
	}
	if got.Year() != 1990 || got.Month() != time.February || got.Day() != 1 {
		t.Fatalf("BirthDate() = %v", got)
	}
	if _, err := BirthDate("1.2.1990"); err != nil {
		t.Fatalf("single digit day and month should parse: %v", err)
	}
	for _, in := range []string{"", "31.02.1990", "01.01.1899", "1990-01-01", "01.01.19900", "вчера"} {
		if _, err := BirthDate(in); err == nil {
			t.Errorf("BirthDate(%q) expected error", in)
		}
	}
}

func TestAge(t *testing.T) {
	today := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		birth time.Time
		want  int
	}{
		{time.Date(2005, 10, 15, 0, 0, 0, 0, time.UTC), 21},
		{time.Date(2005, 10, 16, 0, 0, 0, 0, time.UTC), 20},
		{time.Date(2005, 11, 1, 0, 0, 0, 0, time.UTC), 20},
		{time.Date(2005, 9, 30, 0, 0, 0, 0, time.UTC), 21},
		{time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), 36},
	}
	for _, tt := range tests {
		if got := Age(tt.birth, today); got != tt.want {
			t.Errorf("Age(%v) = %d, want %d", tt.birth.Format("2006-01-02"), got, tt.want)
		}
	}
}

func TestFreeText(t *testing.T) {
	if _, err := FreeText("about", strings.Repeat("ж", MaxFreeTextLen)); err != nil {
		t.Fatalf("limit should be accepted: %v", err)
	}
	if _, err := FreeText("about", strings.Repeat("ж", MaxFreeTextLen+1)); err == nil {
		t.Fatal("over limit should be rejected")
	}
}

func TestChoices(t *testing.T) {
	if v, err := Car("ДА"); err != nil || !v {
		t.Fatalf("Car(ДА) = %v, %v", v, err)
	}
	if v, err := Car("нет"); err != nil || v {
		t.Fatalf("Car(нет) = %v, %v", v, err)
	}
	if _, err := Car("может быть"); err == nil {
		t.Fatal("Car should reject unknown answers")
	}
	if v, err := Frequency("2 Раза в месяц"); err != nil || v != "2 раза в месяц" {
		t.Fatalf("Frequency() = %q, %v", v, err)
	}
	if _, err := Frequency("каждый день"); err == nil {
		t.Fatal("Frequency should reject unknown answers")
	}
	if v, err := Agreement("Не даю согласие"); err != nil || v {
		t.Fatalf("Agreement() = %v, %v", v, err)
	}
	if v, err := Agreement("даю согласие"); err != nil || !v {
		t.Fatalf("Agreement() = %v, %v", v, err)
	}
}

func TestDisplay(t *testing.T) {
	if got := TitleName("иван петрович"); got != "Иван Петрович" {
		t.Fatalf("TitleName() = %q", got)
	}
	if got := Capitalize("ghost"); got != "Ghost" {
		t.Fatalf("Capitalize() = %q", got)
	}
	if got := Capitalize(""); got != "" {
		t.Fatalf("Capitalize(\"\") = %q", got)
	}
}
