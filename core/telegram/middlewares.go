package telegram

import (
	"strings"
	"time"

	coreconfig "github.com/m3rciful/teambot/core/config"
	"github.com/m3rciful/teambot/core/telegram/middleware"
	"github.com/m3rciful/teambot/core/telegram/state"

	tele "gopkg.in/telebot.v4"
)

// DefaultMiddlewares builds the shared middleware chain:
// recover, rate limit, logger, metrics and, with a store, the session lock.
func DefaultMiddlewares(cfg *coreconfig.Config, store state.Store, onLimited tele.HandlerFunc) []Middleware {
	mws := []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
	}

	if cfg != nil {
		interval := time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond
		if interval > 0 {
			ex := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
			for _, t := range cfg.RateLimit.ExcludeUpdates {
				ex[strings.ToLower(t)] = struct{}{}
			}
			mws = append(mws, Middleware{
				Name: "rate_limit",
				Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
					Interval:  interval,
					Exclude:   ex,
					OnLimited: onLimited,
				}),
			})
		}
	}

	mws = append(mws,
		Middleware{Name: "logger", Use: middleware.LoggerMiddleware},
		Middleware{Name: "metrics", Use: middleware.MessageMetricsMiddleware},
	)
	if store != nil {
		mws = append(mws, Middleware{Name: "session_lock", Use: middleware.SessionLock(store)})
	}
	return mws
}
