// Package admin implements the member management of team admins: member
// list, member card, applications and single-field edits.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/m3rciful/teambot/core/logger"
	"github.com/m3rciful/teambot/internal/domain"
)

// Users is the part of the member repository admins work with.
type Users interface {
	Find(ctx context.Context, telegramID int64) (domain.User, error)
	Update(ctx context.Context, telegramID int64, p domain.UserPatch) error
	Delete(ctx context.Context, telegramID int64) error
	CallsignTaken(ctx context.Context, callsign string, exceptTelegramID int64) (bool, error)
	ListMembers(ctx context.Context) ([]domain.UserSummary, error)
	Applications(ctx context.Context) ([]domain.UserSummary, error)
}

// ErrDecided reports a decision on a user that has no pending application.
var ErrDecided = errors.New("application already decided")

// Page is one page of the member list.
type Page struct {
	Items []domain.UserSummary
	// Index is the zero-based page shown after clamping.
	Index int
	Total int
}

// HasPrev reports whether a previous page exists.
func (p Page) HasPrev() bool { return p.Index > 0 }

// HasNext reports whether a next page exists.
func (p Page) HasNext() bool { return p.Index < p.Total-1 }

// Members serves the read side of the admin panel and application decisions.
type Members struct {
	users   Users
	perPage int
}

// NewMembers returns the service with perPage entries per list page.
func NewMembers(users Users, perPage int) *Members {
	if perPage <= 0 {
		perPage = 9
	}
	return &Members{users: users, perPage: perPage}
}

// Paginate clamps page into range and returns the slice bounds.
func Paginate(n, perPage, page int) (start, end, index, total int) {
	total = (n + perPage - 1) / perPage
	if total == 0 {
		return 0, 0, 0, 0
	}
	index = min(max(page, 0), total-1)
	start = index * perPage
	end = min(start+perPage, n)
	return start, end, index, total
}

// Page returns the page of members ordered by callsign.
func (m *Members) Page(ctx context.Context, page int) (Page, error) {
	all, err := m.users.ListMembers(ctx)
	if err != nil {
		return Page{}, err
	}
	start, end, index, total := Paginate(len(all), m.perPage, page)
	return Page{Items: all[start:end], Index: index, Total: total}, nil
}

// User returns the card subject or domain.ErrNotFound.
func (m *Members) User(ctx context.Context, telegramID int64) (domain.User, error) {
	return m.users.Find(ctx, telegramID)
}

// Applications lists submitted surveys awaiting a decision.
func (m *Members) Applications(ctx context.Context) ([]domain.UserSummary, error) {
	return m.users.Applications(ctx)
}

// Decide approves or rejects a pending application. Approved members start
// without survey exemption.
func (m *Members) Decide(ctx context.Context, telegramID int64, approve bool) (domain.User, error) {
	u, err := m.users.Find(ctx, telegramID)
	if err != nil {
		return domain.User{}, err
	}
	if u.Status() != domain.StatusPending || !u.Submitted() {
		return u, fmt.Errorf("decide %d: %w", telegramID, ErrDecided)
	}
	p := domain.UserPatch{Approved: domain.Ptr(approve)}
	if approve {
		p.Reserved = domain.Ptr(false)
	}
	if err := m.users.Update(ctx, telegramID, p); err != nil {
		return domain.User{}, err
	}
	u.Approved, u.Reserved = p.Approved, p.Reserved
	logger.LogEvent(ctx, logger.Admin, slog.LevelInfo, "application.decided",
		slog.Int64("target_id", telegramID),
		slog.Bool("approved", approve),
	)
	return u, nil
}
