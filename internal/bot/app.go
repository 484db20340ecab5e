// Package bot binds the team services to telebot: commands, callbacks,
// conversation flows and notifications.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/teambot/core/logger"
	tg "github.com/m3rciful/teambot/core/telegram"
	"github.com/m3rciful/teambot/core/telegram/guard"
	"github.com/m3rciful/teambot/core/telegram/router"
	"github.com/m3rciful/teambot/core/telegram/state"
	"github.com/m3rciful/teambot/core/telegram/ui"
	"github.com/m3rciful/teambot/internal/admin"
	"github.com/m3rciful/teambot/internal/callback"
	"github.com/m3rciful/teambot/internal/config"
	"github.com/m3rciful/teambot/internal/events"
	"github.com/m3rciful/teambot/internal/storage"
	"github.com/m3rciful/teambot/internal/survey"

	tele "gopkg.in/telebot.v4"
)

// App is the team bot: services over one storage and one session store.
type App struct {
	cfg   *config.Config
	db    *storage.Storage
	store state.Store
	flows *state.Flows

	join    *survey.Join
	editor  *admin.Editor
	members *admin.Members
	creator *events.Creator
	rsvp    *events.RSVP

	admins   guard.Guard
	textOnly guard.Guard
	private  guard.Guard

	bot atomic.Pointer[tele.Bot]
	now func() time.Time
}

// New builds the app over an open, migrated database.
func New(cfg *config.Config, db *sqlx.DB) *App {
	return newApp(cfg, storage.New(db), state.NewMemory(), time.Now)
}

func newApp(cfg *config.Config, db *storage.Storage, store state.Store, now func() time.Time) *App {
	loc := cfg.Team.Location()
	a := &App{
		cfg:      cfg,
		db:       db,
		store:    store,
		flows:    state.NewFlows(store),
		admins:   guard.Admins(cfg.Telegram.Admins, textNotAdmin),
		textOnly: guard.TextOnly(textNotText),
		private:  guard.PrivateChat(textPrivateOnly),
		now:      now,
	}
	a.join = survey.NewJoin(store, db.Users, survey.Options{MinAge: cfg.Team.MinAge, Location: loc, Now: now})
	a.editor = admin.NewEditor(store, db.Users, admin.EditorOptions{MinAge: cfg.Team.MinAge, Location: loc, Now: now})
	a.members = admin.NewMembers(db.Users, cfg.Team.UsersPerPage)
	a.creator = events.NewCreator(store, db.Events, events.CreatorOptions{
		Recipients: db.Users,
		Announcer:  a,
		Location:   loc,
		Now:        now,
	})
	a.rsvp = events.NewRSVP(db.Events, db.Polls, db.Rides, db.Users, events.RSVPOptions{
		DefaultSeats: cfg.Team.DefaultCarSeats,
		Now:          now,
	})

	a.flows.Handle(survey.Flow, a.joinStep)
	a.flows.Handle(admin.Flow, a.adminOnly(a.editStep))
	a.flows.Handle(events.Flow, a.adminOnly(a.eventStep))
	return a
}

// TelegramRunOptions registers commands and callbacks and assembles routes.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	reg := tg.NewRegistry()
	if err := a.register(reg); err != nil {
		return tg.RunOptions{}, err
	}
	reg.SetCallbackNotFound(a.UnknownCallback())

	core := a.cfg.CoreConfig()
	routes := router.CommandRoutes(reg, router.CommandRouteOptions{Admin: a.admins})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{
		Decode:    callback.Decode,
		Admin:     a.admins,
		Malformed: textButtonExpired,
	}))
	routes = append(routes, router.TextRoutes(a.flows, reg, router.TextOptions{
		UnknownText:  a.UnknownText(),
		UnknownMedia: a.UnknownMedia(),
	})...)

	return tg.RunOptions{
		Config:      core,
		Registry:    reg,
		Middlewares: tg.DefaultMiddlewares(core, a.store, a.RateLimited()),
		Routes:      routes,
		OnStart: func(ctx context.Context, rt tg.Runtime) error {
			a.bot.Store(rt.Bot)
			logger.LogEvent(ctx, logger.TG, slog.LevelInfo, "team.ready",
				slog.String("team", a.cfg.Team.Name),
				slog.Int("admins", len(a.cfg.Telegram.Admins)),
			)
			return nil
		},
	}, nil
}

// Close releases the database.
func (a *App) Close() error {
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("close storage: %w", err)
	}
	return nil
}

var _ ui.FallbackProvider = (*App)(nil)

// UnknownText answers text outside any command or conversation.
func (a *App) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error { return send(c, textUnknown) }
}

// UnknownMedia answers non-text messages outside a conversation.
func (a *App) UnknownMedia() tele.HandlerFunc {
	return func(c tele.Context) error { return send(c, textUnknownMedia) }
}

// UnknownCallback answers presses of buttons nobody handles anymore.
func (a *App) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error { return guard.Reject(c, guard.Deny("stale", textButtonExpired)) }
}

// RateLimited answers throttled updates.
func (a *App) RateLimited() tele.HandlerFunc {
	return func(c tele.Context) error { return guard.Reject(c, guard.Deny("rate_limited", textRateLimited)) }
}
