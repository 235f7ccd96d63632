package application

import (
	"context"
	"fmt"

	bookingDomain "github.com/shareit-platform/service-booking/internal/domain/booking"
	"github.com/shareit-platform/service-booking/internal/pkg/clock"
	"github.com/shareit-platform/service-booking/internal/pkg/domain"
)

// FetchStrategy retrieves one category of bookings for either side of a
// rental. Each strategy owns the store query and the ordering of its category.
type FetchStrategy interface {
	State() bookingDomain.State
	ByBooker(ctx context.Context, userID int64, page domain.PageRequest) (domain.Page[*bookingDomain.Booking], error)
	ByOwner(ctx context.Context, userID int64, page domain.PageRequest) (domain.Page[*bookingDomain.Booking], error)

	strategy()
}

type allStrategy struct {
	repo bookingDomain.BookingRepository
}

func (allStrategy) State() bookingDomain.State { return bookingDomain.StateAll }
func (allStrategy) strategy()                  {}

func (s allStrategy) ByBooker(ctx context.Context, userID int64, page domain.PageRequest) (domain.Page[*bookingDomain.Booking], error) {
	return s.repo.FindByBooker(ctx, userID, bookingDomain.OrderByEndDesc, page)
}

func (s allStrategy) ByOwner(ctx context.Context, userID int64, page domain.PageRequest) (domain.Page[*bookingDomain.Booking], error) {
	return s.repo.FindByOwner(ctx, userID, bookingDomain.OrderByEndDesc, page)
}

// currentStrategy matches bookings with start <= now < end.
type currentStrategy struct {
	repo  bookingDomain.BookingRepository
	clock clock.Clock
}

func (currentStrategy) State() bookingDomain.State { return bookingDomain.StateCurrent }
func (currentStrategy) strategy()                  {}

func (s currentStrategy) ByBooker(ctx context.Context, userID int64, page domain.PageRequest) (domain.Page[*bookingDomain.Booking], error) {
	return s.repo.FindByBookerCurrent(ctx, userID, s.clock.Now(), bookingDomain.OrderByEndDesc, page)
}

func (s currentStrategy) ByOwner(ctx context.Context, userID int64, page domain.PageRequest) (domain.Page[*bookingDomain.Booking], error) {
	return s.repo.FindByOwnerCurrent(ctx, userID, s.clock.Now(), bookingDomain.OrderByEndDesc, page)
}

type pastStrategy struct {
	repo  bookingDomain.BookingRepository
	clock clock.Clock
}

func (pastStrategy) State() bookingDomain.State { return bookingDomain.StatePast }
func (pastStrategy) strategy()                  {}

func (s pastStrategy) ByBooker(ctx context.Context, userID int64, page domain.PageRequest) (domain.Page[*bookingDomain.Booking], error) {
	return s.repo.FindByBookerPast(ctx, userID, s.clock.Now(), bookingDomain.OrderByStartDesc, page)
}

func (s pastStrategy) ByOwner(ctx context.Context, userID int64, page domain.PageRequest) (domain.Page[*bookingDomain.Booking], error) {
	return s.repo.FindByOwnerPast(ctx, userID, s.clock.Now(), bookingDomain.OrderByStartDesc, page)
}

type futureStrategy struct {
	repo  bookingDomain.BookingRepository
	clock clock.Clock
}

func (futureStrategy) State() bookingDomain.State { return bookingDomain.StateFuture }
func (futureStrategy) strategy()                  {}

func (s futureStrategy) ByBooker(ctx context.Context, userID int64, page domain.PageRequest) (domain.Page[*bookingDomain.Booking], error) {
	return s.repo.FindByBookerFuture(ctx, userID, s.clock.Now(), bookingDomain.OrderByEndDesc, page)
}

func (s futureStrategy) ByOwner(ctx context.Context, userID int64, page domain.PageRequest) (domain.Page[*bookingDomain.Booking], error) {
	return s.repo.FindByOwnerFuture(ctx, userID, s.clock.Now(), bookingDomain.OrderByEndDesc, page)
}

// statusStrategy serves the categories defined by a single booking status.
type statusStrategy struct {
	repo   bookingDomain.BookingRepository
	state  bookingDomain.State
	status bookingDomain.BookingStatus
}

func (s statusStrategy) State() bookingDomain.State { return s.state }
func (statusStrategy) strategy()                    {}

func (s statusStrategy) ByBooker(ctx context.Context, userID int64, page domain.PageRequest) (domain.Page[*bookingDomain.Booking], error) {
	return s.repo.FindByBookerAndStatus(ctx, userID, s.status, bookingDomain.OrderByStartDesc, page)
}

func (s statusStrategy) ByOwner(ctx context.Context, userID int64, page domain.PageRequest) (domain.Page[*bookingDomain.Booking], error) {
	return s.repo.FindByOwnerAndStatus(ctx, userID, s.status, bookingDomain.OrderByStartDesc, page)
}

// DefaultStrategies returns one strategy per booking state.
func DefaultStrategies(repo bookingDomain.BookingRepository, clk clock.Clock) []FetchStrategy {
	return []FetchStrategy{
		allStrategy{repo: repo},
		currentStrategy{repo: repo, clock: clk},
		pastStrategy{repo: repo, clock: clk},
		futureStrategy{repo: repo, clock: clk},
		statusStrategy{repo: repo, state: bookingDomain.StateWaiting, status: bookingDomain.StatusWaiting},
		statusStrategy{repo: repo, state: bookingDomain.StateRejected, status: bookingDomain.StatusRejected},
	}
}

// StrategyRegistry maps every booking state to its strategy. It is immutable
// once built.
type StrategyRegistry struct {
	byState [bookingDomain.NumStates]FetchStrategy
}

// NewStrategyRegistry indexes strategies by state. Every state must be
// covered exactly once.
func NewStrategyRegistry(strategies ...FetchStrategy) (*StrategyRegistry, error) {
	r := &StrategyRegistry{}
	for _, s := range strategies {
		st := s.State()
		if int(st) < 0 || int(st) >= bookingDomain.NumStates {
			return nil, fmt.Errorf("strategy for unknown state %d", st)
		}
		if r.byState[st] != nil {
			return nil, fmt.Errorf("duplicate strategy for state %s", st)
		}
		r.byState[st] = s
	}
	for _, st := range bookingDomain.States() {
		if r.byState[st] == nil {
			return nil, fmt.Errorf("no strategy registered for state %s", st)
		}
	}
	return r, nil
}

// MustStrategyRegistry is NewStrategyRegistry for wiring code; it panics on
// an incomplete set.
func MustStrategyRegistry(strategies ...FetchStrategy) *StrategyRegistry {
	r, err := NewStrategyRegistry(strategies...)
	if err != nil {
		panic(err)
	}
	return r
}

// Resolve returns the strategy for state.
func (r *StrategyRegistry) Resolve(state bookingDomain.State) FetchStrategy {
	return r.byState[state]
}
