package booking

import (
	"context"
	"time"

	"github.com/shareit-platform/service-booking/internal/pkg/domain"
)

// BookingRepository defines the persistence contract for booking aggregates.
// Every listing applies order and breaks ties on ascending id.
type BookingRepository interface {
	// FindByID returns a NotFound error when the booking does not exist.
	FindByID(ctx context.Context, id int64) (*Booking, error)

	// Save inserts a new booking and returns it with its assigned id.
	Save(ctx context.Context, b *Booking) (*Booking, error)

	// Update persists a status change. It fails with a Conflict error when
	// the stored version is not b.Version()-1.
	Update(ctx context.Context, b *Booking) error

	FindByBooker(ctx context.Context, bookerID int64, order Order, page domain.PageRequest) (domain.Page[*Booking], error)
	FindByBookerCurrent(ctx context.Context, bookerID int64, now time.Time, order Order, page domain.PageRequest) (domain.Page[*Booking], error)
	FindByBookerPast(ctx context.Context, bookerID int64, now time.Time, order Order, page domain.PageRequest) (domain.Page[*Booking], error)
	FindByBookerFuture(ctx context.Context, bookerID int64, now time.Time, order Order, page domain.PageRequest) (domain.Page[*Booking], error)
	FindByBookerAndStatus(ctx context.Context, bookerID int64, status BookingStatus, order Order, page domain.PageRequest) (domain.Page[*Booking], error)

	FindByOwner(ctx context.Context, ownerID int64, order Order, page domain.PageRequest) (domain.Page[*Booking], error)
	FindByOwnerCurrent(ctx context.Context, ownerID int64, now time.Time, order Order, page domain.PageRequest) (domain.Page[*Booking], error)
	FindByOwnerPast(ctx context.Context, ownerID int64, now time.Time, order Order, page domain.PageRequest) (domain.Page[*Booking], error)
	FindByOwnerFuture(ctx context.Context, ownerID int64, now time.Time, order Order, page domain.PageRequest) (domain.Page[*Booking], error)
	FindByOwnerAndStatus(ctx context.Context, ownerID int64, status BookingStatus, order Order, page domain.PageRequest) (domain.Page[*Booking], error)

	// ExistsFinishedApproved reports whether bookerID has an APPROVED booking
	// of itemID that ended before now.
	ExistsFinishedApproved(ctx context.Context, itemID, bookerID int64, now time.Time) (bool, error)

	// FindLastForItems returns, per item, the APPROVED booking with the latest
	// end before now.
	FindLastForItems(ctx context.Context, itemIDs []int64, now time.Time) (map[int64]*Booking, error)

	// FindNextForItems returns, per item, the APPROVED booking with the
	// earliest start after now.
	FindNextForItems(ctx context.Context, itemIDs []int64, now time.Time) (map[int64]*Booking, error)
}
