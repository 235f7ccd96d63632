package booking

import (
	"time"

	"github.com/shareit-platform/service-booking/internal/domain/item"
	"github.com/shareit-platform/service-booking/internal/pkg/domain"
)

// ItemRef is the part of the booked item a booking carries around.
type ItemRef struct {
	ID      int64
	Name    string
	OwnerID int64
}

// BookerRef identifies the user who requested the booking.
type BookerRef struct {
	ID   int64
	Name string
}

// Booking is the aggregate root for the booking domain: a request by a booker
// to use an item over [start, end).
type Booking struct {
	id     int64
	start  time.Time
	end    time.Time
	item   ItemRef
	booker BookerRef
	status BookingStatus

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a WAITING booking of it by booker. The item must be
// available and must not belong to the booker.
func NewBooking(booker BookerRef, it *item.Item, start, end, now time.Time) (*Booking, error) {
	if !start.Before(end) {
		return nil, domain.NewBadRequestErrorf("booking start %s must be before end %s",
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	if !it.Available() {
		return nil, domain.NewBadRequestErrorf("Item with id '%d' is not available for booking", it.ID())
	}
	if it.IsOwnedBy(booker.ID) {
		// Reported as not found so owners learn nothing from probing.
		return nil, domain.NewNotFoundErrorf("Item with id '%d' cannot be booked by its owner", it.ID())
	}

	return &Booking{
		start:     start.UTC(),
		end:       end.UTC(),
		item:      ItemRef{ID: it.ID(), Name: it.Name(), OwnerID: it.OwnerID()},
		booker:    booker,
		status:    StatusWaiting,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id int64,
	start, end time.Time,
	item ItemRef,
	booker BookerRef,
	status BookingStatus,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:        id,
		start:     start,
		end:       end,
		item:      item,
		booker:    booker,
		status:    status,
		version:   version,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's identifier, zero until saved.
func (b *Booking) ID() int64 { return b.id }

// Start returns the first instant of the booking.
func (b *Booking) Start() time.Time { return b.start }

// End returns the instant the booking ends.
func (b *Booking) End() time.Time { return b.end }

// Item returns the booked item reference.
func (b *Booking) Item() ItemRef { return b.item }

// Booker returns the requesting user reference.
func (b *Booking) Booker() BookerRef { return b.booker }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// IsItemOwnedBy reports whether userID owns the booked item.
func (b *Booking) IsItemOwnedBy(userID int64) bool { return b.item.OwnerID == userID }

// IsVisibleTo reports whether userID is the booker or the item owner.
func (b *Booking) IsVisibleTo(userID int64) bool {
	return b.booker.ID == userID || b.item.OwnerID == userID
}

// IsCurrentAt reports whether start <= now < end.
func (b *Booking) IsCurrentAt(now time.Time) bool {
	return !b.start.After(now) && now.Before(b.end)
}

// IsPastAt reports whether end < now.
func (b *Booking) IsPastAt(now time.Time) bool { return b.end.Before(now) }

// IsFutureAt reports whether start > now.
func (b *Booking) IsFutureAt(now time.Time) bool { return b.start.After(now) }

// Decide approves or rejects a WAITING booking. Rejecting an already
// rejected booking is a no-op and reports changed=false.
func (b *Booking) Decide(approve bool, now time.Time) (changed bool, err error) {
	target := StatusRejected
	if approve {
		target = StatusApproved
	}

	switch {
	case approve && b.status == StatusApproved:
		return false, domain.NewBadRequestErrorf("Booking with id '%d' is already approved", b.id)
	case !approve && b.status == StatusRejected:
		return false, nil
	case !b.status.CanTransitionTo(target):
		return false, domain.NewInvalidStateError(string(b.status), string(target))
	}

	b.status = target
	b.updatedAt = now
	return true, nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
}
