package user

import (
	"net/mail"
	"strings"
	"time"

	"github.com/shareit-platform/service-booking/internal/pkg/domain"
)

// User is a person who lists items or books them.
type User struct {
	id        int64
	name      string
	email     string
	createdAt time.Time
	updatedAt time.Time
}

// NewUser creates an unsaved user.
func NewUser(name, email string, now time.Time) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewBadRequestError("user name is required")
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	return &User{name: name, email: strings.TrimSpace(email), createdAt: now, updatedAt: now}, nil
}

// Reconstruct rebuilds a User from persistence data (no validation).
func Reconstruct(id int64, name, email string, createdAt, updatedAt time.Time) *User {
	return &User{id: id, name: name, email: email, createdAt: createdAt, updatedAt: updatedAt}
}

func (u *User) ID() int64            { return u.id }
func (u *User) Name() string         { return u.name }
func (u *User) Email() string        { return u.email }
func (u *User) CreatedAt() time.Time { return u.createdAt }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }

// Patch applies the non-blank fields. It reports whether the email changed.
func (u *User) Patch(name, email string, now time.Time) (bool, error) {
	emailChanged := false
	if n := strings.TrimSpace(name); n != "" {
		u.name = n
	}
	if e := strings.TrimSpace(email); e != "" && e != u.email {
		if err := validateEmail(e); err != nil {
			return false, err
		}
		u.email = e
		emailChanged = true
	}
	u.updatedAt = now
	return emailChanged, nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.NewBadRequestError("user email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.NewBadRequestErrorf("invalid email: %s", email)
	}
	return nil
}
