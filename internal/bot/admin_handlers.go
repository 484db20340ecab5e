package bot

import (
	"errors"
	"fmt"

	"github.com/m3rciful/teambot/core/telegram/callbacks"
	"github.com/m3rciful/teambot/core/telegram/format"
	"github.com/m3rciful/teambot/core/telegram/helpers"
	"github.com/m3rciful/teambot/core/telegram/keyboard"
	"github.com/m3rciful/teambot/core/telegram/state"
	"github.com/m3rciful/teambot/internal/admin"
	"github.com/m3rciful/teambot/internal/callback"
	"github.com/m3rciful/teambot/internal/convo"
	"github.com/m3rciful/teambot/internal/domain"

	tele "gopkg.in/telebot.v4"
)

func edit(c tele.Context, text string, rows [][]keyboard.InlineBtn) error {
	return helpers.EditOrSendHTML(c, text, keyboard.InlineButtonsRows(rows...))
}

func (a *App) onAdminMenu(c tele.Context) error {
	if k, ok := state.KeyFrom(c); ok {
		a.store.Clear(k)
	}
	return edit(c, textAdminMenu, adminMenuRows())
}

func (a *App) onUsersPage(c tele.Context) error {
	in, _ := callbacks.IntentFrom[callback.UsersPage](c)
	p, err := a.members.Page(helpers.BuildContext(c), in.Page)
	if err != nil {
		return fail(c, err)
	}
	if p.Total == 0 {
		return edit(c, textNoMembers, [][]keyboard.InlineBtn{backRow(callback.AdminMenu{})})
	}
	return edit(c, fmt.Sprintf(textUsersTitle, p.Index+1, p.Total), usersPageRows(p))
}

func (a *App) showUser(c tele.Context, id int64, page int) error {
	u, err := a.members.User(helpers.BuildContext(c), id)
	if errors.Is(err, domain.ErrNotFound) {
		helpers.SetOutcome(c, string(convo.NotFound))
		return helpers.Alert(c, textUserNotFound)
	}
	if err != nil {
		return fail(c, err)
	}
	return edit(c, admin.Card(u, a.now().In(a.cfg.Team.Location())), userCardRows(u, page))
}

func (a *App) onShowUser(c tele.Context) error {
	in, _ := callbacks.IntentFrom[callback.ShowUser](c)
	return a.showUser(c, in.TelegramID, in.Page)
}

// onEditField starts a text edit, or flips a flag and re-renders the card.
func (a *App) onEditField(c tele.Context) error {
	in, _ := callbacks.IntentFrom[callback.EditField](c)
	k, ok := state.KeyFrom(c)
	if !ok {
		return nil
	}
	ctx := helpers.BuildContext(c)

	if in.Field == admin.FieldCar || in.Field == admin.FieldReserved {
		u, res, err := a.editor.Toggle(ctx, k, in.TelegramID, in.Field)
		if err != nil {
			return fail(c, err)
		}
		if res.Outcome != convo.Completed {
			return answer(c, res)
		}
		helpers.SetOutcome(c, "toggled")
		return edit(c, admin.Card(u, a.now().In(a.cfg.Team.Location())), userCardRows(u, 0))
	}

	res, err := a.editor.Begin(ctx, k, in.TelegramID, in.Field)
	if err != nil {
		return fail(c, err)
	}
	if res.Outcome != convo.Started {
		return answer(c, res)
	}
	return reply(c, res)
}

func (a *App) onAskDelete(c tele.Context) error {
	in, _ := callbacks.IntentFrom[callback.AskDelete](c)
	k, ok := state.KeyFrom(c)
	if !ok {
		return nil
	}
	_, res, err := a.editor.AskDelete(helpers.BuildContext(c), k, in.TelegramID)
	if err != nil {
		return fail(c, err)
	}
	if res.Outcome != convo.Started {
		return answer(c, res)
	}
	helpers.SetOutcome(c, string(res.Outcome))
	return edit(c, res.Replies[0].Text, confirmDeleteRows(in.TelegramID))
}

func (a *App) onConfirmDelete(c tele.Context) error {
	in, _ := callbacks.IntentFrom[callback.ConfirmDelete](c)
	k, ok := state.KeyFrom(c)
	if !ok {
		return nil
	}
	res, err := a.editor.ConfirmDelete(helpers.BuildContext(c), k, in.TelegramID)
	if err != nil {
		return fail(c, err)
	}
	helpers.SetOutcome(c, string(res.Outcome))
	return edit(c, res.Replies[0].Text, [][]keyboard.InlineBtn{backRow(callback.UsersPage{})})
}

func (a *App) onApplications(c tele.Context) error {
	apps, err := a.members.Applications(helpers.BuildContext(c))
	if err != nil {
		return fail(c, err)
	}
	if len(apps) == 0 {
		return edit(c, textNoApplications, [][]keyboard.InlineBtn{backRow(callback.AdminMenu{})})
	}
	return edit(c, textAppsTitle, applicationsRows(apps))
}

func (a *App) onApplication(c tele.Context) error {
	in, _ := callbacks.IntentFrom[callback.Application](c)
	u, err := a.members.User(helpers.BuildContext(c), in.TelegramID)
	if errors.Is(err, domain.ErrNotFound) {
		return helpers.Alert(c, textUserNotFound)
	}
	if err != nil {
		return fail(c, err)
	}
	if u.Status() != domain.StatusPending || !u.Submitted() {
		return helpers.Alert(c, textDecided)
	}
	return edit(c, admin.Card(u, a.now().In(a.cfg.Team.Location())), applicationRows(u.TelegramID))
}

// onDecision records the verdict and tells the applicant.
func (a *App) onDecision(c tele.Context) error {
	in, _ := callbacks.IntentFrom[callback.Decision](c)
	u, err := a.members.Decide(helpers.BuildContext(c), in.TelegramID, in.Approve)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return helpers.Alert(c, textUserNotFound)
	case errors.Is(err, admin.ErrDecided):
		helpers.SetOutcome(c, "decided")
		return helpers.Alert(c, textDecided)
	case err != nil:
		return fail(c, err)
	}

	verdict, notice := "отклонена", textRejected
	if in.Approve {
		verdict, notice = "принята", textApproved
	}
	_ = helpers.Notify(c, u.TelegramID, notice)
	helpers.SetOutcome(c, "decided")
	return edit(c, fmt.Sprintf(textDecisionDone, format.Bold(admin.Label(u)), verdict),
		[][]keyboard.InlineBtn{backRow(callback.Applications{})})
}
