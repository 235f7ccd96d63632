package application

import (
	"context"
	"time"

	bookingDomain "github.com/shareit-platform/service-booking/internal/domain/booking"
	"github.com/shareit-platform/service-booking/internal/pkg/domain"
)

// CommentPolicy decides whether a user may review an item: only after an
// approved rental of it has ended.
type CommentPolicy struct {
	bookings bookingDomain.BookingRepository
}

// NewCommentPolicy creates a new CommentPolicy.
func NewCommentPolicy(bookings bookingDomain.BookingRepository) *CommentPolicy {
	return &CommentPolicy{bookings: bookings}
}

// CanComment reports whether userID has an APPROVED booking of itemID whose
// end is strictly before now.
func (p *CommentPolicy) CanComment(ctx context.Context, userID, itemID int64, now time.Time) (bool, error) {
	return p.bookings.ExistsFinishedApproved(ctx, itemID, userID, now)
}

// AssertCommentable returns a BadRequest error unless CanComment holds.
func (p *CommentPolicy) AssertCommentable(ctx context.Context, userID, itemID int64, now time.Time) error {
	ok, err := p.CanComment(ctx, userID, itemID, now)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NewBadRequestErrorf(
			"user %d cannot comment on item %d before an approved booking of it has ended", userID, itemID)
	}
	return nil
}
