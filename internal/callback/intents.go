// Package callback defines the closed set of inline button intents. Each
// intent renders to a telebot unique plus payload and is decoded once by the
// callback router.
package callback

import (
	"fmt"

	"github.com/m3rciful/teambot/core/telegram/callbacks"
	"github.com/m3rciful/teambot/core/telegram/keyboard"
	"github.com/m3rciful/teambot/internal/admin"
)

// Callback uniques.
const (
	UniqueAdminMenu     = "admin_menu"
	UniqueUsersPage     = "users_page"
	UniqueShowUser      = "show_user"
	UniqueEditField     = "edit_field"
	UniqueAskDelete     = "delete_user"
	UniqueConfirmDelete = "confirm_delete"
	UniqueApplications  = "applications"
	UniqueApplication   = "application"
	UniqueDecision      = "decision"
	UniqueCreateEvent   = "create_event"
	UniqueAdminEvents   = "admin_events"
	UniqueAdminEvent    = "admin_event"
	UniqueEventQR       = "event_qr"
	UniqueEventCard     = "event"
	UniqueRSVP          = "rsvp"
	UniqueOfferRide     = "offer_ride"
	UniqueFindRide      = "find_ride"
	UniquePickDriver    = "pick_driver"
)

// Intent is a decoded button press.
type Intent interface {
	Unique() string
	Payload() string
}

type (
	// AdminMenu opens the admin panel.
	AdminMenu struct{}
	// UsersPage shows one page of the member list.
	UsersPage struct{ Page int }
	// ShowUser opens a member card; Page is the list page to return to.
	ShowUser struct {
		TelegramID int64
		Page       int
	}
	// EditField starts an edit or flips a flag of a member.
	EditField struct {
		TelegramID int64
		Field      admin.Field
	}
	AskDelete     struct{ TelegramID int64 }
	ConfirmDelete struct{ TelegramID int64 }
	Applications  struct{}
	Application   struct{ TelegramID int64 }
	// Decision approves or rejects an application.
	Decision struct {
		TelegramID int64
		Approve    bool
	}
	CreateEvent struct{}
	AdminEvents struct{}
	AdminEvent  struct{ EventID int64 }
	EventCard   struct{ EventID int64 }
	// EventQR sends a printable QR code of the event deep link.
	EventQR struct{ EventID int64 }
	// RSVP is an attendance answer.
	RSVP struct {
		EventID   int64
		Attending bool
	}
	OfferRide struct{ EventID int64 }
	FindRide  struct{ EventID int64 }
	// PickDriver seats the presser in DriverID's car.
	PickDriver struct {
		EventID  int64
		DriverID int64
	}
)

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (AdminMenu) Unique() string { return UniqueAdminMenu }
func (AdminMenu) Payload() string { return "" }
func (UsersPage) Unique() string { return UniqueUsersPage }
func (i UsersPage) Payload() string { return callbacks.Join(i.Page) }
func (ShowUser) Unique() string { return UniqueShowUser }
func (i ShowUser) Payload() string { return callbacks.Join(i.TelegramID, i.Page) }
func (EditField) Unique() string { return UniqueEditField }
func (i EditField) Payload() string { return callbacks.Join(i.TelegramID, string(i.Field)) }
func (AskDelete) Unique() string { return UniqueAskDelete }
func (i AskDelete) Payload() string { return callbacks.Join(i.TelegramID) }
func (ConfirmDelete) Unique() string { return UniqueConfirmDelete }
func (i ConfirmDelete) Payload() string { return callbacks.Join(i.TelegramID) }
func (Applications) Unique() string { return UniqueApplications }
func (Applications) Payload() string { return "" }
func (Application) Unique() string { return UniqueApplication }
func (i Application) Payload() string { return callbacks.Join(i.TelegramID) }
func (Decision) Unique() string { return UniqueDecision }
func (i Decision) Payload() string { return callbacks.Join(i.TelegramID, flag(i.Approve)) }
func (CreateEvent) Unique() string { return UniqueCreateEvent }
func (CreateEvent) Payload() string { return "" }
func (AdminEvents) Unique() string { return UniqueAdminEvents }
func (AdminEvents) Payload() string { return "" }
func (AdminEvent) Unique() string { return UniqueAdminEvent }
func (i AdminEvent) Payload() string { return callbacks.Join(i.EventID) }
func (EventQR) Unique() string { return UniqueEventQR }
func (i EventQR) Payload() string { return callbacks.Join(i.EventID) }
func (EventCard) Unique() string { return UniqueEventCard }
func (i EventCard) Payload() string { return callbacks.Join(i.EventID) }
func (RSVP) Unique() string { return UniqueRSVP }
func (i RSVP) Payload() string { return callbacks.Join(i.EventID, flag(i.Attending)) }
func (OfferRide) Unique() string { return UniqueOfferRide }
func (i OfferRide) Payload() string { return callbacks.Join(i.EventID) }
func (FindRide) Unique() string { return UniqueFindRide }
func (i FindRide) Payload() string { return callbacks.Join(i.EventID) }
func (PickDriver) Unique() string { return UniquePickDriver }
func (i PickDriver) Payload() string { return callbacks.Join(i.EventID, i.DriverID) }

// Button renders an inline button carrying the intent.
func Button(label string, i Intent) keyboard.InlineBtn {
	return keyboard.InlineBtn{Text: label, Unique: i.Unique(), Data: i.Payload()}
}

// Decode parses the payload of unique into its intent.
func Decode(unique, payload string) (any, error) {
	var (
		f      *callbacks.Fields
		intent Intent
	)
	switch unique {
	case UniqueAdminMenu:
		f, intent = callbacks.Split(payload, 0), AdminMenu{}
	case UniqueApplications:
		f, intent = callbacks.Split(payload, 0), Applications{}
	case UniqueCreateEvent:
		f, intent = callbacks.Split(payload, 0), CreateEvent{}
	case UniqueAdminEvents:
		f, intent = callbacks.Split(payload, 0), AdminEvents{}
	case UniqueUsersPage:
		f = callbacks.Split(payload, 1)
		intent = UsersPage{Page: f.Int()}
	case UniqueShowUser:
		f = callbacks.Split(payload, 2)
		intent = ShowUser{TelegramID: f.Int64(), Page: f.Int()}
	case UniqueEditField:
		f = callbacks.Split(payload, 2)
		i := EditField{TelegramID: f.Int64(), Field: admin.Field(f.String())}
		if f.Err() == nil && !i.Field.Valid() {
			return nil, fmt.Errorf("unknown field %q", i.Field)
		}
		intent = i
	case UniqueAskDelete:
		f = callbacks.Split(payload, 1)
		intent = AskDelete{TelegramID: f.Int64()}
	case UniqueConfirmDelete:
		f = callbacks.Split(payload, 1)
		intent = ConfirmDelete{TelegramID: f.Int64()}
	case UniqueApplication:
		f = callbacks.Split(payload, 1)
		intent = Application{TelegramID: f.Int64()}
	case UniqueDecision:
		f = callbacks.Split(payload, 2)
		intent = Decision{TelegramID: f.Int64(), Approve: f.Bool()}
	case UniqueAdminEvent:
		f = callbacks.Split(payload, 1)
		intent = AdminEvent{EventID: f.Int64()}
	case UniqueEventQR:
		f = callbacks.Split(payload, 1)
		intent = EventQR{EventID: f.Int64()}
	case UniqueEventCard:
		f = callbacks.Split(payload, 1)
		intent = EventCard{EventID: f.Int64()}
	case UniqueRSVP:
		f = callbacks.Split(payload, 2)
		intent = RSVP{EventID: f.Int64(), Attending: f.Bool()}
	case UniqueOfferRide:
		f = callbacks.Split(payload, 1)
		intent = OfferRide{EventID: f.Int64()}
	case UniqueFindRide:
		f = callbacks.Split(payload, 1)
		intent = FindRide{EventID: f.Int64()}
	case UniquePickDriver:
		f = callbacks.Split(payload, 2)
		intent = PickDriver{EventID: f.Int64(), DriverID: f.Int64()}
	default:
		return nil, fmt.Errorf("unknown callback %q", unique)
	}
	if err := f.Err(); err != nil {
		return nil, err
	}
	return intent, nil
}
