package bot

import (
	"fmt"
	"time"

	"github.com/m3rciful/teambot/core/telegram/keyboard"
	"github.com/m3rciful/teambot/internal/admin"
	"github.com/m3rciful/teambot/internal/callback"
	"github.com/m3rciful/teambot/internal/domain"
	"github.com/m3rciful/teambot/internal/events"
	"github.com/m3rciful/teambot/internal/validate"
)

const usersPerRow = 3

func adminMenuRows() [][]keyboard.InlineBtn {
	return keyboard.Column(
		callback.Button(btnCreateEvent, callback.CreateEvent{}),
		callback.Button(btnAdminEvents, callback.AdminEvents{}),
		callback.Button(btnApplications, callback.Applications{}),
		callback.Button(btnUsers, callback.UsersPage{}),
	)
}

func backRow(to callback.Intent) []keyboard.InlineBtn {
	return []keyboard.InlineBtn{callback.Button(btnBack, to)}
}

func usersPageRows(p admin.Page) [][]keyboard.InlineBtn {
	buttons := make([]keyboard.InlineBtn, 0, len(p.Items))
	for _, u := range p.Items {
		buttons = append(buttons, callback.Button(validate.Capitalize(u.Callsign),
			callback.ShowUser{TelegramID: u.TelegramID, Page: p.Index}))
	}
	rows := keyboard.Grid(buttons, usersPerRow)

	var nav []keyboard.InlineBtn
	if p.HasPrev() {
		nav = append(nav, callback.Button(btnPrev, callback.UsersPage{Page: p.Index - 1}))
	}
	if p.HasNext() {
		nav = append(nav, callback.Button(btnNext, callback.UsersPage{Page: p.Index + 1}))
	}
	return append(rows, nav, backRow(callback.AdminMenu{}))
}

func userCardRows(u domain.User, page int) [][]keyboard.InlineBtn {
	id := u.TelegramID
	edit := func(label string, f admin.Field) keyboard.InlineBtn {
		return callback.Button(label, callback.EditField{TelegramID: id, Field: f})
	}
	flags := []keyboard.InlineBtn{edit(btnToggleCar, admin.FieldCar)}
	if u.Member() {
		flags = append(flags, edit(btnToggleExempt, admin.FieldReserved))
	}
	return [][]keyboard.InlineBtn{
		{edit(btnEditName, admin.FieldName), edit(btnEditCallsign, admin.FieldCallsign), edit(btnEditAge, admin.FieldAge)},
		flags,
		{callback.Button(btnDelete, callback.AskDelete{TelegramID: id})},
		backRow(callback.UsersPage{Page: page}),
	}
}

func confirmDeleteRows(id int64) [][]keyboard.InlineBtn {
	return [][]keyboard.InlineBtn{{
		callback.Button(btnConfirmDel, callback.ConfirmDelete{TelegramID: id}),
		callback.Button(btnCancel, callback.ShowUser{TelegramID: id}),
	}}
}

func applicationsRows(apps []domain.UserSummary) [][]keyboard.InlineBtn {
	buttons := make([]keyboard.InlineBtn, 0, len(apps))
	for _, u := range apps {
		buttons = append(buttons, callback.Button(validate.Capitalize(u.Callsign),
			callback.Application{TelegramID: u.TelegramID}))
	}
	return append(keyboard.Column(buttons...), backRow(callback.AdminMenu{}))
}

func applicationRows(id int64) [][]keyboard.InlineBtn {
	return [][]keyboard.InlineBtn{
		{
			callback.Button(btnApprove, callback.Decision{TelegramID: id, Approve: true}),
			callback.Button(btnReject, callback.Decision{TelegramID: id}),
		},
		backRow(callback.Applications{}),
	}
}

// eventListRows lists events; admin lists open the admin card.
func eventListRows(list []domain.Event, loc *time.Location, forAdmin bool) [][]keyboard.InlineBtn {
	buttons := make([]keyboard.InlineBtn, 0, len(list))
	for _, e := range list {
		var to callback.Intent = callback.EventCard{EventID: e.ID}
		if forAdmin {
			to = callback.AdminEvent{EventID: e.ID}
		}
		buttons = append(buttons, callback.Button(events.ButtonLabel(e, loc), to))
	}
	rows := keyboard.Column(buttons...)
	if forAdmin {
		rows = append(rows, backRow(callback.AdminMenu{}))
	}
	return rows
}

func adminEventRows(id int64) [][]keyboard.InlineBtn {
	return [][]keyboard.InlineBtn{
		{callback.Button(btnQR, callback.EventQR{EventID: id})},
		backRow(callback.AdminEvents{}),
	}
}

// rsvpRows offers the answer buttons, plus ride sharing once attending.
func rsvpRows(id int64, attending bool) [][]keyboard.InlineBtn {
	rows := [][]keyboard.InlineBtn{{
		callback.Button(btnAttend, callback.RSVP{EventID: id, Attending: true}),
		callback.Button(btnSkip, callback.RSVP{EventID: id}),
	}}
	if attending {
		rows = append(rows, []keyboard.InlineBtn{
			callback.Button(btnOfferRide, callback.OfferRide{EventID: id}),
			callback.Button(btnFindRide, callback.FindRide{EventID: id}),
		})
	}
	return rows
}

func driverRows(eventID int64, drivers []domain.Driver) [][]keyboard.InlineBtn {
	buttons := make([]keyboard.InlineBtn, 0, len(drivers))
	for _, d := range drivers {
		label := fmt.Sprintf("%s (мест: %d)", validate.Capitalize(d.Callsign), d.Free())
		buttons = append(buttons, callback.Button(label, callback.PickDriver{EventID: eventID, DriverID: d.TelegramID}))
	}
	return keyboard.Column(buttons...)
}
