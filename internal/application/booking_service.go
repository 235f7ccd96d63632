package application

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	bookingDomain "github.com/shareit-platform/service-booking/internal/domain/booking"
	itemDomain "github.com/shareit-platform/service-booking/internal/domain/item"
	userDomain "github.com/shareit-platform/service-booking/internal/domain/user"
	"github.com/shareit-platform/service-booking/internal/pkg/clock"
	"github.com/shareit-platform/service-booking/internal/pkg/domain"
)

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	ItemID int64     `json:"itemId" binding:"required,gt=0"`
	Start  time.Time `json:"start" binding:"required"`
	End    time.Time `json:"end" binding:"required"`
}

// BookingItemDTO is the item summary embedded in a booking.
type BookingItemDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// BookerDTO is the booker summary embedded in a booking.
type BookerDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID     int64          `json:"id"`
	Start  time.Time      `json:"start"`
	End    time.Time      `json:"end"`
	Status string         `json:"status"`
	Item   BookingItemDTO `json:"item"`
	Booker BookerDTO      `json:"booker"`
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	repo       bookingDomain.BookingRepository
	items      itemDomain.ItemRepository
	users      userDomain.UserRepository
	strategies *StrategyRegistry
	clock      clock.Clock
	publisher  EventPublisher
	logger     *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo bookingDomain.BookingRepository,
	items itemDomain.ItemRepository,
	users userDomain.UserRepository,
	strategies *StrategyRegistry,
	clk clock.Clock,
	publisher EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:       repo,
		items:      items,
		users:      users,
		strategies: strategies,
		clock:      clk,
		publisher:  publisher,
		logger:     logger,
	}
}

// CreateBooking registers a WAITING booking of an item by bookerID.
func (s *BookingService) CreateBooking(ctx context.Context, bookerID int64, req CreateBookingRequest) (*BookingDTO, error) {
	booker, err := s.users.FindByID(ctx, bookerID)
	if err != nil {
		return nil, err
	}

	it, err := s.items.FindByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}

	bk, err := bookingDomain.NewBooking(
		bookingDomain.BookerRef{ID: booker.ID(), Name: booker.Name()},
		it,
		req.Start,
		req.End,
		s.clock.Now(),
	)
	if err != nil {
		return nil, err
	}

	saved, err := s.repo.Save(ctx, bk)
	if err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	s.logger.Info("booking created",
		zap.Int64("booking_id", saved.ID()),
		zap.Int64("item_id", it.ID()),
		zap.Int64("booker_id", bookerID),
	)
	s.publishBookingEvent(ctx, EventBookingCreated, saved)

	result := toBookingDTO(saved)
	return &result, nil
}

// DecideBooking approves or rejects a WAITING booking. Only the owner of the
// booked item may decide.
func (s *BookingService) DecideBooking(ctx context.Context, bookingID int64, approve bool, userID int64) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !bk.IsItemOwnedBy(userID) {
		return nil, domain.NewNotFoundErrorf("user with id '%d' does not own the item of booking '%d'", userID, bookingID)
	}

	changed, err := bk.Decide(approve, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if !changed {
		result := toBookingDTO(bk)
		return &result, nil
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		if domain.IsConflict(err) {
			return nil, domain.NewBadRequestErrorf("Booking with id '%d' was already decided", bookingID).Wrap(err)
		}
		return nil, err
	}

	eventType := EventBookingRejected
	if approve {
		eventType = EventBookingApproved
	}
	s.logger.Info("booking decided",
		zap.Int64("booking_id", bookingID),
		zap.String("status", bk.Status().String()),
	)
	s.publishBookingEvent(ctx, eventType, bk)

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBooking returns a booking visible to userID, the booker or the item
// owner. Anyone else gets NotFound.
func (s *BookingService) GetBooking(ctx context.Context, bookingID, userID int64) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.IsVisibleTo(userID) {
		return nil, domain.NewNotFoundError("Booking", bookingID)
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// ListBookerBookings returns a page of the bookings userID made, filtered by
// the named state.
func (s *BookingService) ListBookerBookings(ctx context.Context, rawState string, userID int64, offset, size int) (domain.Page[BookingDTO], error) {
	return s.list(ctx, rawState, userID, offset, size, FetchStrategy.ByBooker)
}

// ListOwnerBookings returns a page of the bookings of items userID owns,
// filtered by the named state.
func (s *BookingService) ListOwnerBookings(ctx context.Context, rawState string, userID int64, offset, size int) (domain.Page[BookingDTO], error) {
	return s.list(ctx, rawState, userID, offset, size, FetchStrategy.ByOwner)
}

type fetchFunc func(FetchStrategy, context.Context, int64, domain.PageRequest) (domain.Page[*bookingDomain.Booking], error)

func (s *BookingService) list(ctx context.Context, rawState string, userID int64, offset, size int, fetch fetchFunc) (domain.Page[BookingDTO], error) {
	state, err := bookingDomain.ParseState(rawState)
	if err != nil {
		return domain.Page[BookingDTO]{}, err
	}

	page, err := domain.NewPageRequest(offset, size)
	if err != nil {
		return domain.Page[BookingDTO]{}, err
	}

	exists, err := s.users.ExistsByID(ctx, userID)
	if err != nil {
		return domain.Page[BookingDTO]{}, err
	}
	if !exists {
		return domain.Page[BookingDTO]{}, domain.NewNotFoundError("User", userID)
	}

	bookings, err := fetch(s.strategies.Resolve(state), ctx, userID, page)
	if err != nil {
		return domain.Page[BookingDTO]{}, fmt.Errorf("failed to list %s bookings: %w", state, err)
	}
	return domain.MapPage(bookings, toBookingDTO), nil
}

// --- Helpers ---

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:     bk.ID(),
		Start:  bk.Start(),
		End:    bk.End(),
		Status: bk.Status().String(),
		Item:   BookingItemDTO{ID: bk.Item().ID, Name: bk.Item().Name},
		Booker: BookerDTO{ID: bk.Booker().ID, Name: bk.Booker().Name},
	}
}

func (s *BookingService) publishBookingEvent(ctx context.Context, eventType string, bk *bookingDomain.Booking) {
	evt := BookingEvent{
		BookingID:  bk.ID(),
		ItemID:     bk.Item().ID,
		OwnerID:    bk.Item().OwnerID,
		BookerID:   bk.Booker().ID,
		Status:     bk.Status().String(),
		Start:      bk.Start(),
		End:        bk.End(),
		OccurredAt: s.clock.Now(),
	}
	publishEvent(ctx, s.publisher, s.logger, eventType, strconv.FormatInt(bk.ID(), 10), evt)
}
