package application

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	bookingDomain "github.com/shareit-platform/service-booking/internal/domain/booking"
	itemDomain "github.com/shareit-platform/service-booking/internal/domain/item"
	requestDomain "github.com/shareit-platform/service-booking/internal/domain/request"
	userDomain "github.com/shareit-platform/service-booking/internal/domain/user"
	"github.com/shareit-platform/service-booking/internal/pkg/domain"
)

// --- bookings ---

type memBookingRepo struct {
	mu       sync.Mutex
	seq      int64
	bookings map[int64]*bookingDomain.Booking
	versions map[int64]int64
	calls    int
	// updateErr, when set, is returned by the next Update.
	updateErr error
}

func newMemBookingRepo() *memBookingRepo {
	return &memBookingRepo{bookings: map[int64]*bookingDomain.Booking{}, versions: map[int64]int64{}}
}

func (r *memBookingRepo) put(b *bookingDomain.Booking) *bookingDomain.Booking {
	r.bookings[b.ID()] = b
	r.versions[b.ID()] = b.Version()
	if b.ID() > r.seq {
		r.seq = b.ID()
	}
	return b
}

func (r *memBookingRepo) FindByID(_ context.Context, id int64) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id)
	}
	return bookingDomain.ReconstructBooking(b.ID(), b.Start(), b.End(), b.Item(), b.Booker(), b.Status(),
		b.Version(), b.CreatedAt(), b.UpdatedAt()), nil
}

func (r *memBookingRepo) Save(_ context.Context, b *bookingDomain.Booking) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.seq++
	saved := bookingDomain.ReconstructBooking(r.seq, b.Start(), b.End(), b.Item(), b.Booker(), b.Status(),
		b.Version(), b.CreatedAt(), b.UpdatedAt())
	return r.put(saved), nil
}

func (r *memBookingRepo) Update(_ context.Context, b *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.updateErr != nil {
		err := r.updateErr
		r.updateErr = nil
		return err
	}
	if r.versions[b.ID()] != b.Version()-1 {
		return domain.NewConflictError("booking was modified concurrently")
	}
	r.put(b)
	return nil
}

func (r *memBookingRepo) query(match func(*bookingDomain.Booking) bool, order bookingDomain.Order, page domain.PageRequest) (domain.Page[*bookingDomain.Booking], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++

	var matched []*bookingDomain.Booking
	for _, b := range r.bookings {
		if match(b) {
			matched = append(matched, b)
		}
	}
	key := func(b *bookingDomain.Booking) time.Time {
		if order.Key == bookingDomain.SortByEnd {
			return b.End()
		}
		return b.Start()
	}
	sort.Slice(matched, func(i, j int) bool {
		ki, kj := key(matched[i]), key(matched[j])
		if !ki.Equal(kj) {
			if order.Desc {
				return ki.After(kj)
			}
			return ki.Before(kj)
		}
		return matched[i].ID() < matched[j].ID()
	})

	total := int64(len(matched))
	from := page.Skip()
	if from > len(matched) {
		from = len(matched)
	}
	to := from + page.Size
	if to > len(matched) {
		to = len(matched)
	}
	return domain.NewPage(matched[from:to], total, page), nil
}

func byBooker(id int64) func(*bookingDomain.Booking) bool {
	return func(b *bookingDomain.Booking) bool { return b.Booker().ID == id }
}

func byOwner(id int64) func(*bookingDomain.Booking) bool {
	return func(b *bookingDomain.Booking) bool { return b.Item().OwnerID == id }
}

func and(a, b func(*bookingDomain.Booking) bool) func(*bookingDomain.Booking) bool {
	return func(x *bookingDomain.Booking) bool { return a(x) && b(x) }
}

func (r *memBookingRepo) FindByBooker(_ context.Context, id int64, o bookingDomain.Order, p domain.PageRequest) (domain.Page[*bookingDomain.Booking], error) {
	return r.query(byBooker(id), o, p)
}

func (r *memBookingRepo) FindByBookerCurrent(_ context.Context, id int64, now time.Time, o bookingDomain.Order, p domain.PageRequest) (domain.Page[*bookingDomain.Booking], error) {
	return r.query(and(byBooker(id), func(b *bookingDomain.Booking) bool { return b.IsCurrentAt(now) }), o, p)
}

func (r *memBookingRepo) FindByBookerPast(_ context.Context, id int64, now time.Time, o bookingDomain.Order, p domain.PageRequest) (domain.Page[*bookingDomain.Booking], error) {
	return r.query(and(byBooker(id), func(b *bookingDomain.Booking) bool { return b.IsPastAt(now) }), o, p)
}

func (r *memBookingRepo) FindByBookerFuture(_ context.Context, id int64, now time.Time, o bookingDomain.Order, p domain.PageRequest) (domain.Page[*bookingDomain.Booking], error) {
	return r.query(and(byBooker(id), func(b *bookingDomain.Booking) bool { return b.IsFutureAt(now) }), o, p)
}

func (r *memBookingRepo) FindByBookerAndStatus(_ context.Context, id int64, st bookingDomain.BookingStatus, o bookingDomain.Order, p domain.PageRequest) (domain.Page[*bookingDomain.Booking], error) {
	return r.query(and(byBooker(id), func(b *bookingDomain.Booking) bool { return b.Status() == st }), o, p)
}

func (r *memBookingRepo) FindByOwner(_ context.Context, id int64, o bookingDomain.Order, p domain.PageRequest) (domain.Page[*bookingDomain.Booking], error) {
	return r.query(byOwner(id), o, p)
}

func (r *memBookingRepo) FindByOwnerCurrent(_ context.Context, id int64, now time.Time, o bookingDomain.Order, p domain.PageRequest) (domain.Page[*bookingDomain.Booking], error) {
	return r.query(and(byOwner(id), func(b *bookingDomain.Booking) bool { return b.IsCurrentAt(now) }), o, p)
}

func (r *memBookingRepo) FindByOwnerPast(_ context.Context, id int64, now time.Time, o bookingDomain.Order, p domain.PageRequest) (domain.Page[*bookingDomain.Booking], error) {
	return r.query(and(byOwner(id), func(b *bookingDomain.Booking) bool { return b.IsPastAt(now) }), o, p)
}

func (r *memBookingRepo) FindByOwnerFuture(_ context.Context, id int64, now time.Time, o bookingDomain.Order, p domain.PageRequest) (domain.Page[*bookingDomain.Booking], error) {
	return r.query(and(byOwner(id), func(b *bookingDomain.Booking) bool { return b.IsFutureAt(now) }), o, p)
}

func (r *memBookingRepo) FindByOwnerAndStatus(_ context.Context, id int64, st bookingDomain.BookingStatus, o bookingDomain.Order, p domain.PageRequest) (domain.Page[*bookingDomain.Booking], error) {
	return r.query(and(byOwner(id), func(b *bookingDomain.Booking) bool { return b.Status() == st }), o, p)
}

func (r *memBookingRepo) ExistsFinishedApproved(_ context.Context, itemID, bookerID int64, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	for _, b := range r.bookings {
		if b.Item().ID == itemID && b.Booker().ID == bookerID &&
			b.Status() == bookingDomain.StatusApproved && b.End().Before(now) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memBookingRepo) FindLastForItems(_ context.Context, itemIDs []int64, now time.Time) (map[int64]*bookingDomain.Booking, error) {
	return r.adjacent(itemIDs, func(b *bookingDomain.Booking) bool { return b.End().Before(now) },
		func(cand, cur *bookingDomain.Booking) bool { return cand.End().After(cur.End()) }), nil
}

func (r *memBookingRepo) FindNextForItems(_ context.Context, itemIDs []int64, now time.Time) (map[int64]*bookingDomain.Booking, error) {
	return r.adjacent(itemIDs, func(b *bookingDomain.Booking) bool { return b.Start().After(now) },
		func(cand, cur *bookingDomain.Booking) bool { return cand.Start().Before(cur.Start()) }), nil
}

func (r *memBookingRepo) adjacent(itemIDs []int64, match func(*bookingDomain.Booking) bool, better func(cand, cur *bookingDomain.Booking) bool) map[int64]*bookingDomain.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	wanted := map[int64]bool{}
	for _, id := range itemIDs {
		wanted[id] = true
	}
	out := map[int64]*bookingDomain.Booking{}
	for _, b := range r.bookings {
		if !wanted[b.Item().ID] || b.Status() != bookingDomain.StatusApproved || !match(b) {
			continue
		}
		if cur, ok := out[b.Item().ID]; !ok || better(b, cur) {
			out[b.Item().ID] = b
		}
	}
	return out
}

// --- users ---

type memUserRepo struct {
	mu    sync.Mutex
	seq   int64
	users map[int64]*userDomain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[int64]*userDomain.User{}}
}

func (r *memUserRepo) FindByID(_ context.Context, id int64) (*userDomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.NewNotFoundError("User", id)
	}
	return userDomain.Reconstruct(u.ID(), u.Name(), u.Email(), u.CreatedAt(), u.UpdatedAt()), nil
}

func (r *memUserRepo) FindAll(_ context.Context) ([]*userDomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*userDomain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

func (r *memUserRepo) ExistsByID(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[id]
	return ok, nil
}

func (r *memUserRepo) emailTaken(email string, except int64) bool {
	for _, u := range r.users {
		if u.ID() != except && strings.EqualFold(u.Email(), email) {
			return true
		}
	}
	return false
}

func (r *memUserRepo) Save(_ context.Context, u *userDomain.User) (*userDomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.emailTaken(u.Email(), 0) {
		return nil, domain.NewConflictError("email already registered")
	}
	r.seq++
	saved := userDomain.Reconstruct(r.seq, u.Name(), u.Email(), u.CreatedAt(), u.UpdatedAt())
	r.users[saved.ID()] = saved
	return saved, nil
}

func (r *memUserRepo) Update(_ context.Context, u *userDomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.emailTaken(u.Email(), u.ID()) {
		return domain.NewConflictError("email already registered")
	}
	r.users[u.ID()] = u
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.NewNotFoundError("User", id)
	}
	delete(r.users, id)
	return nil
}

// --- items ---

type memItemRepo struct {
	mu    sync.Mutex
	seq   int64
	items map[int64]*itemDomain.Item
}

func newMemItemRepo() *memItemRepo {
	return &memItemRepo{items: map[int64]*itemDomain.Item{}}
}

func (r *memItemRepo) FindByID(_ context.Context, id int64) (*itemDomain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return nil, domain.NewNotFoundError("Item", id)
	}
	return it, nil
}

func (r *memItemRepo) page(match func(*itemDomain.Item) bool, page domain.PageRequest) domain.Page[*itemDomain.Item] {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*itemDomain.Item
	for _, it := range r.items {
		if match(it) {
			matched = append(matched, it)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID() < matched[j].ID() })
	from := min(page.Skip(), len(matched))
	to := min(from+page.Size, len(matched))
	return domain.NewPage(matched[from:to], int64(len(matched)), page)
}

func (r *memItemRepo) FindByOwnerID(_ context.Context, ownerID int64, page domain.PageRequest) (domain.Page[*itemDomain.Item], error) {
	return r.page(func(it *itemDomain.Item) bool { return it.OwnerID() == ownerID }, page), nil
}

func (r *memItemRepo) Search(_ context.Context, text string, page domain.PageRequest) (domain.Page[*itemDomain.Item], error) {
	needle := strings.ToLower(text)
	return r.page(func(it *itemDomain.Item) bool {
		return it.Available() && (strings.Contains(strings.ToLower(it.Name()), needle) ||
			strings.Contains(strings.ToLower(it.Description()), needle))
	}, page), nil
}

func (r *memItemRepo) FindByRequestIDs(_ context.Context, requestIDs []int64) ([]*itemDomain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*itemDomain.Item
	for _, it := range r.items {
		for _, id := range requestIDs {
			if it.RequestID() != nil && *it.RequestID() == id {
				out = append(out, it)
			}
		}
	}
	return out, nil
}

func (r *memItemRepo) Save(_ context.Context, it *itemDomain.Item) (*itemDomain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	saved := itemDomain.Reconstruct(r.seq, it.Name(), it.Description(), it.Available(), it.OwnerID(),
		it.RequestID(), it.CreatedAt(), it.UpdatedAt())
	r.items[saved.ID()] = saved
	return saved, nil
}

func (r *memItemRepo) Update(_ context.Context, it *itemDomain.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[it.ID()] = it
	return nil
}

// --- comments ---

type memCommentRepo struct {
	mu       sync.Mutex
	seq      int64
	comments []*itemDomain.Comment
}

func (r *memCommentRepo) Save(_ context.Context, c *itemDomain.Comment) (*itemDomain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	saved := itemDomain.ReconstructComment(r.seq, c.Text(), c.ItemID(), c.AuthorID(), c.AuthorName(), c.Created())
	r.comments = append(r.comments, saved)
	return saved, nil
}

func (r *memCommentRepo) FindByItemIDs(_ context.Context, itemIDs []int64) ([]*itemDomain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*itemDomain.Comment
	for _, c := range r.comments {
		for _, id := range itemIDs {
			if c.ItemID() == id {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

// --- requests ---

type memRequestRepo struct {
	mu       sync.Mutex
	seq      int64
	requests []*requestDomain.ItemRequest
}

func (r *memRequestRepo) FindByID(_ context.Context, id int64) (*requestDomain.ItemRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, req := range r.requests {
		if req.ID() == id {
			return req, nil
		}
	}
	return nil, domain.NewNotFoundError("Request", id)
}

func (r *memRequestRepo) newestFirst(match func(*requestDomain.ItemRequest) bool) []*requestDomain.ItemRequest {
	var out []*requestDomain.ItemRequest
	for _, req := range r.requests {
		if match(req) {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created().After(out[j].Created()) })
	return out
}

func (r *memRequestRepo) FindByRequestorID(_ context.Context, requestorID int64) ([]*requestDomain.ItemRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.newestFirst(func(req *requestDomain.ItemRequest) bool { return req.RequestorID() == requestorID }), nil
}

func (r *memRequestRepo) FindOthers(_ context.Context, userID int64, page domain.PageRequest) (domain.Page[*requestDomain.ItemRequest], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.newestFirst(func(req *requestDomain.ItemRequest) bool { return req.RequestorID() != userID })
	from := min(page.Skip(), len(all))
	to := min(from+page.Size, len(all))
	return domain.NewPage(all[from:to], int64(len(all)), page), nil
}

func (r *memRequestRepo) Save(_ context.Context, req *requestDomain.ItemRequest) (*requestDomain.ItemRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	saved := requestDomain.Reconstruct(r.seq, req.Description(), req.RequestorID(), req.Created())
	r.requests = append(r.requests, saved)
	return saved, nil
}

// --- events ---

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, eventType, key string, data any) error {
	args := m.Called(ctx, eventType, key, data)
	return args.Error(0)
}
