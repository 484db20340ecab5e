package domain

import "time"

// User is one Telegram account known to the bot. Survey fields stay nil
// until the member answers them.
type User struct {
	ID         int64      `db:"id"`
	TelegramID int64      `db:"telegram_id"`
	Name       *string    `db:"name"`
	Callsign   *string    `db:"callsign"`
	BirthDate  *time.Time `db:"birth_date"`
	About      *string    `db:"about"`
	Experience *string    `db:"experience"`
	Car        *bool      `db:"car"`
	Frequency  *string    `db:"frequency"`
	Agreement  *bool      `db:"agreement"`
	// Approved is the team decision: nil pending, true member, false rejected.
	Approved *bool `db:"approved"`
	// Reserved exempts an approved member from event surveys.
	Reserved  *bool     `db:"reserved"`
	CreatedAt time.Time `db:"created_at"`
}

// Status is the membership state derived from Approved.
type Status int

const (
	StatusPending Status = iota
	StatusApproved
	StatusRejected
)

func (s Status) String() string {
	switch s {
	case StatusApproved:
		return "approved"
	case StatusRejected:
		return "rejected"
	}
	return "pending"
}

// Status reports the membership decision.
func (u User) Status() Status {
	switch {
	case u.Approved == nil:
		return StatusPending
	case *u.Approved:
		return StatusApproved
	}
	return StatusRejected
}

// Submitted reports whether the join survey was completed with consent.
func (u User) Submitted() bool {
	return u.Agreement != nil && *u.Agreement
}

// Member reports whether the user is an approved team member.
func (u User) Member() bool { return u.Status() == StatusApproved }

// Surveyed reports whether the member receives event surveys.
func (u User) Surveyed() bool {
	return u.Member() && (u.Reserved == nil || !*u.Reserved)
}

// UserPatch lists the fields to change; nil fields are left untouched.
type UserPatch struct {
	Name       *string
	Callsign   *string
	BirthDate  *time.Time
	About      *string
	Experience *string
	Car        *bool
	Frequency  *string
	Agreement  *bool
	Approved   *bool
	Reserved   *bool
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p == UserPatch{}
}

// UserSummary is a list entry of the admin member list.
type UserSummary struct {
	TelegramID int64  `db:"telegram_id"`
	Name       string `db:"name"`
	Callsign   string `db:"callsign"`
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }
