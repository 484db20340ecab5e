package bot

import (
	"errors"
	"fmt"

	"github.com/m3rciful/teambot/core/telegram/format"
	"github.com/m3rciful/teambot/core/telegram/guard"
	"github.com/m3rciful/teambot/core/telegram/helpers"
	"github.com/m3rciful/teambot/core/telegram/keyboard"
	"github.com/m3rciful/teambot/core/telegram/middleware"
	"github.com/m3rciful/teambot/core/telegram/state"
	"github.com/m3rciful/teambot/internal/admin"
	"github.com/m3rciful/teambot/internal/callback"
	"github.com/m3rciful/teambot/internal/convo"
	"github.com/m3rciful/teambot/internal/domain"

	tele "gopkg.in/telebot.v4"
)

// adminOnly re-checks the allow-list on every step of an admin flow.
func (a *App) adminOnly(next tele.HandlerFunc) tele.HandlerFunc {
	return middleware.AdminOnlyMiddleware(a.cfg.Telegram.Admins, textNotAdmin)(next)
}

// textStep rejects non-text messages before a flow step runs.
func (a *App) textStep(c tele.Context, step func(k state.Key, text string) (convo.Result, error)) error {
	if d := guard.Check(c, a.textOnly); !d.Allow {
		helpers.SetOutcome(c, d.Code)
		return guard.Reject(c, d)
	}
	k, ok := state.KeyFrom(c)
	if !ok {
		return nil
	}
	res, err := step(k, c.Text())
	if err != nil {
		return fail(c, err)
	}
	return reply(c, res)
}

func (a *App) joinStep(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	return a.textStep(c, func(k state.Key, text string) (convo.Result, error) {
		res, err := a.join.Handle(ctx, k, text)
		if err == nil && res.Outcome == convo.Completed {
			a.notifyAdmins(c, k.UserID)
		}
		return res, err
	})
}

func (a *App) editStep(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	return a.textStep(c, func(k state.Key, text string) (convo.Result, error) {
		return a.editor.Handle(ctx, k, text)
	})
}

// eventStep also takes a shared map point at the location step.
func (a *App) eventStep(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	if msg := c.Message(); msg != nil && msg.Location != nil {
		k, ok := state.KeyFrom(c)
		if !ok {
			return nil
		}
		res, err := a.creator.HandleLocation(ctx, k, float64(msg.Location.Lat), float64(msg.Location.Lng))
		if errors.Is(err, domain.ErrMalformedInput) {
			helpers.SetOutcome(c, "not_text")
			return send(c, textLocationStep)
		}
		if err != nil {
			return fail(c, err)
		}
		return reply(c, res)
	}
	return a.textStep(c, func(k state.Key, text string) (convo.Result, error) {
		return a.creator.Handle(ctx, k, text)
	})
}

// notifyAdmins tells every admin about a submitted application.
func (a *App) notifyAdmins(c tele.Context, applicant int64) {
	u, err := a.db.Users.Find(helpers.BuildContext(c), applicant)
	if err != nil {
		return
	}
	text := fmt.Sprintf(textNewApplication, format.Mention(applicant, admin.Label(u)), format.Escape(helpers.Handle(c.Sender())))
	markup := keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		callback.Button(btnApplications, callback.Application{TelegramID: applicant}),
	})
	for _, id := range a.cfg.Telegram.Admins {
		_ = helpers.Notify(c, id, text, markup)
	}
}
