package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	bookingDomain "github.com/shareit-platform/service-booking/internal/domain/booking"
	"github.com/shareit-platform/service-booking/internal/pkg/domain"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	StartDate time.Time `gorm:"not null"`
	EndDate   time.Time `gorm:"not null"`
	ItemID    int64     `gorm:"not null;index:idx_bookings_item"`
	Item      ItemModel `gorm:"foreignKey:ItemID"`
	BookerID  int64     `gorm:"not null;index:idx_bookings_booker"`
	Booker    UserModel `gorm:"foreignKey:BookerID"`
	Status    string    `gorm:"not null;size:20"`
	Version   int64     `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking with its item and booker.
func (r *GormBookingRepository) FindByID(ctx context.Context, id int64) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).
		Preload("Item").
		Preload("Booker").
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id)
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) (*bookingDomain.Booking, error) {
	model := toBookingModel(bk)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error; err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.NewNotFoundErrorf("item %d or booker %d does not exist", bk.Item().ID, bk.Booker().ID)
		}
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}
	return bookingDomain.ReconstructBooking(
		model.ID, bk.Start(), bk.End(), bk.Item(), bk.Booker(), bk.Status(),
		bk.Version(), bk.CreatedAt(), bk.UpdatedAt(),
	), nil
}

// Update persists a status change with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	// IncrementVersion has already been called, so the stored row holds the previous version.
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", bk.ID(), expectedVersion).
		Updates(map[string]interface{}{
			"status":     bk.Status().String(),
			"version":    bk.Version(),
			"updated_at": bk.UpdatedAt(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}

	return nil
}

// --- Listing scopes ---

func bookedBy(bookerID int64) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("bookings.booker_id = ?", bookerID)
	}
}

func itemOwnedBy(ownerID int64) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Joins("JOIN items ON items.id = bookings.item_id").Where("items.owner_id = ?", ownerID)
	}
}

func currentAt(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("bookings.start_date <= ? AND bookings.end_date > ?", now, now)
	}
}

func pastAt(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("bookings.end_date < ?", now)
	}
}

func futureAt(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("bookings.start_date > ?", now)
	}
}

func withStatus(status bookingDomain.BookingStatus) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("bookings.status = ?", status.String())
	}
}

func orderClause(order bookingDomain.Order) string {
	column := "bookings.start_date"
	if order.Key == bookingDomain.SortByEnd {
		column = "bookings.end_date"
	}
	direction := "ASC"
	if order.Desc {
		direction = "DESC"
	}
	return fmt.Sprintf("%s %s, bookings.id ASC", column, direction)
}

// list counts and fetches one page of bookings matching scopes.
func (r *GormBookingRepository) list(
	ctx context.Context,
	order bookingDomain.Order,
	page domain.PageRequest,
	scopes ...func(*gorm.DB) *gorm.DB,
) (domain.Page[*bookingDomain.Booking], error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Scopes(scopes...).Count(&total).Error; err != nil {
		return domain.Page[*bookingDomain.Booking]{}, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Scopes(scopes...).
		Preload("Item").
		Preload("Booker").
		Order(orderClause(order)).
		Offset(page.Skip()).
		Limit(page.Size).
		Find(&models).Error; err != nil {
		return domain.Page[*bookingDomain.Booking]{}, fmt.Errorf("failed to find bookings: %w", err)
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return domain.Page[*bookingDomain.Booking]{}, err
	}
	return domain.NewPage(bookings, total, page), nil
}

// FindByBooker lists every booking made by bookerID.
func (r *GormBookingRepository) FindByBooker(ctx context.Context, bookerID int64, order bookingDomain.Order, page domain.PageRequest) (domain.Page[*bookingDomain.Booking], error) {
	return r.list(ctx, order, page, bookedBy(bookerID))
}

// FindByBookerCurrent lists bookerID's bookings in progress at now.
func (r *GormBookingRepository) FindByBookerCurrent(ctx context.Context, bookerID int64, now time.Time, order bookingDomain.Order, page domain.PageRequest) (domain.Page[*bookingDomain.Booking], error) {
	return r.list(ctx, order, page, bookedBy(bookerID), currentAt(now))
}

// FindByBookerPast lists bookerID's bookings that ended before now.
func (r *GormBookingRepository) FindByBookerPast(ctx context.Context, bookerID int64, now time.Time, order bookingDomain.Order, page domain.PageRequest) (domain.Page[*bookingDomain.Booking], error) {
	return r.list(ctx, order, page, bookedBy(bookerID), pastAt(now))
}

// FindByBookerFuture lists bookerID's bookings that start after now.
func (r *GormBookingRepository) FindByBookerFuture(ctx context.Context, bookerID int64, now time.Time, order bookingDomain.Order, page domain.PageRequest) (domain.Page[*bookingDomain.Booking], error) {
	return r.list(ctx, order, page, bookedBy(bookerID), futureAt(now))
}

// FindByBookerAndStatus lists bookerID's bookings in status.
func (r *GormBookingRepository) FindByBookerAndStatus(ctx context.Context, bookerID int64, status bookingDomain.BookingStatus, order bookingDomain.Order, page domain.PageRequest) (domain.Page[*bookingDomain.Booking], error) {
	return r.list(ctx, order, page, bookedBy(bookerID), withStatus(status))
}

// FindByOwner lists every booking of items owned by ownerID.
func (r *GormBookingRepository) FindByOwner(ctx context.Context, ownerID int64, order bookingDomain.Order, page domain.PageRequest) (domain.Page[*bookingDomain.Booking], error) {
	return r.list(ctx, order, page, itemOwnedBy(ownerID))
}

// FindByOwnerCurrent lists bookings of ownerID's items in progress at now.
func (r *GormBookingRepository) FindByOwnerCurrent(ctx context.Context, ownerID int64, now time.Time, order bookingDomain.Order, page domain.PageRequest) (domain.Page[*bookingDomain.Booking], error) {
	return r.list(ctx, order, page, itemOwnedBy(ownerID), currentAt(now))
}

// FindByOwnerPast lists bookings of ownerID's items that ended before now.
func (r *GormBookingRepository) FindByOwnerPast(ctx context.Context, ownerID int64, now time.Time, order bookingDomain.Order, page domain.PageRequest) (domain.Page[*bookingDomain.Booking], error) {
	return r.list(ctx, order, page, itemOwnedBy(ownerID), pastAt(now))
}

// FindByOwnerFuture lists bookings of ownerID's items that start after now.
func (r *GormBookingRepository) FindByOwnerFuture(ctx context.Context, ownerID int64, now time.Time, order bookingDomain.Order, page domain.PageRequest) (domain.Page[*bookingDomain.Booking], error) {
	return r.list(ctx, order, page, itemOwnedBy(ownerID), futureAt(now))
}

// FindByOwnerAndStatus lists bookings of ownerID's items in status.
func (r *GormBookingRepository) FindByOwnerAndStatus(ctx context.Context, ownerID int64, status bookingDomain.BookingStatus, order bookingDomain.Order, page domain.PageRequest) (domain.Page[*bookingDomain.Booking], error) {
	return r.list(ctx, order, page, itemOwnedBy(ownerID), withStatus(status))
}

// ExistsFinishedApproved reports whether bookerID completed an approved rental of itemID.
func (r *GormBookingRepository) ExistsFinishedApproved(ctx context.Context, itemID, bookerID int64, now time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("item_id = ? AND booker_id = ? AND status = ? AND end_date < ?",
			itemID, bookerID, bookingDomain.StatusApproved.String(), now).
		Limit(1).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check finished bookings: %w", err)
	}
	return count > 0, nil
}

// FindLastForItems returns the latest-ending approved booking before now per item.
func (r *GormBookingRepository) FindLastForItems(ctx context.Context, itemIDs []int64, now time.Time) (map[int64]*bookingDomain.Booking, error) {
	return r.adjacent(ctx, itemIDs, "end_date < ?", now, "end_date DESC")
}

// FindNextForItems returns the earliest-starting approved booking after now per item.
func (r *GormBookingRepository) FindNextForItems(ctx context.Context, itemIDs []int64, now time.Time) (map[int64]*bookingDomain.Booking, error) {
	return r.adjacent(ctx, itemIDs, "start_date > ?", now, "start_date ASC")
}

// adjacent picks one approved booking per item with DISTINCT ON.
func (r *GormBookingRepository) adjacent(ctx context.Context, itemIDs []int64, cond string, now time.Time, order string) (map[int64]*bookingDomain.Booking, error) {
	out := make(map[int64]*bookingDomain.Booking, len(itemIDs))
	if len(itemIDs) == 0 {
		return out, nil
	}

	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Select("DISTINCT ON (item_id) *").
		Preload("Item").
		Preload("Booker").
		Where("item_id IN ? AND status = ?", itemIDs, bookingDomain.StatusApproved.String()).
		Where(cond, now).
		Order("item_id, " + order + ", id ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find adjacent bookings: %w", err)
	}

	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return nil, err
		}
		out[models[i].ItemID] = bk
	}
	return out, nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:        bk.ID(),
		StartDate: bk.Start(),
		EndDate:   bk.End(),
		ItemID:    bk.Item().ID,
		BookerID:  bk.Booker().ID,
		Status:    bk.Status().String(),
		Version:   bk.Version(),
		CreatedAt: bk.CreatedAt(),
		UpdatedAt: bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, fmt.Errorf("booking %d: %w", m.ID, err)
	}
	return bookingDomain.ReconstructBooking(
		m.ID,
		m.StartDate.UTC(),
		m.EndDate.UTC(),
		bookingDomain.ItemRef{ID: m.Item.ID, Name: m.Item.Name, OwnerID: m.Item.OwnerID},
		bookingDomain.BookerRef{ID: m.Booker.ID, Name: m.Booker.Name},
		status,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}
