package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tg "github.com/m3rciful/teambot/core/telegram"
	"github.com/m3rciful/teambot/core/telegram/commands"
	"github.com/m3rciful/teambot/core/telegram/format"
	"github.com/m3rciful/teambot/core/telegram/guard"
	"github.com/m3rciful/teambot/core/telegram/helpers"
	"github.com/m3rciful/teambot/core/telegram/keyboard"
	"github.com/m3rciful/teambot/core/telegram/state"
	"github.com/m3rciful/teambot/internal/admin"
	"github.com/m3rciful/teambot/internal/callback"
	"github.com/m3rciful/teambot/internal/domain"

	tele "gopkg.in/telebot.v4"
)

// eventLinkPrefix marks /start payloads that open an event card.
const eventLinkPrefix = "event_"

func (a *App) register(reg *tg.Registry) error {
	cmds := []struct {
		name string
		cmd  commands.Command
	}{
		{"/start", commands.Command{Handler: a.onStart, Description: "Начало работы"}},
		{"/join", commands.Command{Handler: a.onJoin, Description: "Заполнить анкету на вступление", Aliases: []string{"survey"}}},
		{"/cancel", commands.Command{Handler: a.onCancel, Description: "Прервать текущее действие"}},
		{"/profile", commands.Command{Handler: a.onProfile, Description: "Моя анкета"}},
		{"/events", commands.Command{Handler: a.onEvents, Description: "Ближайшие мероприятия"}},
		{"/about_team", commands.Command{Handler: a.onAbout, Description: "О команде"}},
		{"/admin", commands.Command{Handler: a.onAdmin, Description: "Панель администратора", AdminOnly: true}},
	}
	for _, c := range cmds {
		if err := reg.RegisterCommand(c.name, c.cmd); err != nil {
			return err
		}
	}

	cbs := map[string]commands.Callback{
		callback.UniqueAdminMenu:     {Handler: a.onAdminMenu, AdminOnly: true},
		callback.UniqueUsersPage:     {Handler: a.onUsersPage, AdminOnly: true},
		callback.UniqueShowUser:      {Handler: a.onShowUser, AdminOnly: true},
		callback.UniqueEditField:     {Handler: a.onEditField, AdminOnly: true},
		callback.UniqueAskDelete:     {Handler: a.onAskDelete, AdminOnly: true},
		callback.UniqueConfirmDelete: {Handler: a.onConfirmDelete, AdminOnly: true},
		callback.UniqueApplications:  {Handler: a.onApplications, AdminOnly: true},
		callback.UniqueApplication:   {Handler: a.onApplication, AdminOnly: true},
		callback.UniqueDecision:      {Handler: a.onDecision, AdminOnly: true},
		callback.UniqueCreateEvent:   {Handler: a.onCreateEvent, AdminOnly: true},
		callback.UniqueAdminEvents:   {Handler: a.onAdminEvents, AdminOnly: true},
		callback.UniqueAdminEvent:    {Handler: a.onAdminEvent, AdminOnly: true},
		callback.UniqueEventQR:       {Handler: a.onEventQR, AdminOnly: true},
		callback.UniqueEventCard:     {Handler: a.onEventCard},
		callback.UniqueRSVP:          {Handler: a.onRSVP},
		callback.UniqueOfferRide:     {Handler: a.onOfferRide},
		callback.UniqueFindRide:      {Handler: a.onFindRide},
		callback.UniquePickDriver:    {Handler: a.onPickDriver},
	}
	for unique, cb := range cbs {
		if err := reg.RegisterCallback(unique, cb); err != nil {
			return err
		}
	}
	return nil
}

// onStart drops any conversation, registers the sender and greets. An
// event deep link opens the event card instead.
func (a *App) onStart(c tele.Context) error {
	if d := guard.Check(c, a.private); !d.Allow {
		return guard.Reject(c, d)
	}
	k, ok := state.KeyFrom(c)
	if !ok {
		return nil
	}
	a.store.Clear(k)
	ctx := helpers.BuildContext(c)
	if _, _, err := a.db.Users.FindOrCreate(ctx, k.UserID); err != nil {
		return fail(c, err)
	}

	if payload := strings.TrimSpace(c.Message().Payload); strings.HasPrefix(payload, eventLinkPrefix) {
		if id, err := strconv.ParseInt(strings.TrimPrefix(payload, eventLinkPrefix), 10, 64); err == nil {
			return a.showEvent(c, id)
		}
	}
	helpers.SetOutcome(c, "greeted")
	return send(c, fmt.Sprintf(textGreeting, format.Escape(a.cfg.Team.Name)), keyboard.RemoveKeyboard())
}

func (a *App) onJoin(c tele.Context) error {
	if d := guard.Check(c, a.private); !d.Allow {
		return guard.Reject(c, d)
	}
	k, ok := state.KeyFrom(c)
	if !ok {
		return nil
	}
	res, err := a.join.Start(helpers.BuildContext(c), k)
	if err != nil {
		return fail(c, err)
	}
	return reply(c, res)
}

func (a *App) onCancel(c tele.Context) error {
	k, ok := state.KeyFrom(c)
	if !ok {
		return nil
	}
	if !state.InProgress(a.store, k) {
		helpers.SetOutcome(c, "idle")
		return send(c, textNothingToStop)
	}
	a.store.Clear(k)
	helpers.SetOutcome(c, "cancelled")
	return send(c, textStopped, keyboard.RemoveKeyboard())
}

func (a *App) onProfile(c tele.Context) error {
	u, err := a.db.Users.Find(helpers.BuildContext(c), helpers.SenderID(c))
	if errors.Is(err, domain.ErrNotFound) || (err == nil && !u.Submitted() && !u.Member()) {
		helpers.SetOutcome(c, "no_profile")
		return send(c, textNoProfile)
	}
	if err != nil {
		return fail(c, err)
	}
	return send(c, admin.Card(u, a.now().In(a.cfg.Team.Location())))
}

func (a *App) onAbout(c tele.Context) error {
	text := a.cfg.Team.About
	if text == "" {
		text = fmt.Sprintf(textAboutDefault, format.Escape(a.cfg.Team.Name))
	}
	return send(c, text)
}

func (a *App) onAdmin(c tele.Context) error {
	if k, ok := state.KeyFrom(c); ok {
		a.store.Clear(k)
	}
	return send(c, textAdminMenu, keyboard.InlineButtonsRows(adminMenuRows()...))
}
