package application

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	bookingDomain "github.com/shareit-platform/service-booking/internal/domain/booking"
	itemDomain "github.com/shareit-platform/service-booking/internal/domain/item"
	requestDomain "github.com/shareit-platform/service-booking/internal/domain/request"
	userDomain "github.com/shareit-platform/service-booking/internal/domain/user"
	"github.com/shareit-platform/service-booking/internal/pkg/clock"
	"github.com/shareit-platform/service-booking/internal/pkg/domain"
)

// CreateItemRequest holds the data needed to list a new item.
type CreateItemRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	Available   *bool  `json:"available" binding:"required"`
	RequestID   *int64 `json:"requestId" binding:"omitempty,gt=0"`
}

// UpdateItemRequest carries a partial item update. Blank strings and a nil
// Available leave the field unchanged.
type UpdateItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   *bool  `json:"available"`
}

// CreateCommentRequest holds the text of a new comment.
type CreateCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// ItemDTO is the response representation of an item.
type ItemDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	RequestID   *int64 `json:"requestId,omitempty"`
}

// ItemBookingDTO is the short form of a booking attached to an item.
type ItemBookingDTO struct {
	ID       int64     `json:"id"`
	BookerID int64     `json:"bookerId"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

// CommentDTO is the response representation of a comment.
type CommentDTO struct {
	ID         int64     `json:"id"`
	Text       string    `json:"text"`
	AuthorName string    `json:"authorName"`
	Created    time.Time `json:"created"`
}

// ItemDetailsDTO is an item with its comments and, for the owner, its
// adjacent approved bookings.
type ItemDetailsDTO struct {
	ItemDTO
	LastBooking *ItemBookingDTO `json:"lastBooking"`
	NextBooking *ItemBookingDTO `json:"nextBooking"`
	Comments    []CommentDTO    `json:"comments"`
}

// ItemService is the application service for items and their comments.
type ItemService struct {
	repo      itemDomain.ItemRepository
	comments  itemDomain.CommentRepository
	users     userDomain.UserRepository
	requests  requestDomain.ItemRequestRepository
	bookings  bookingDomain.BookingRepository
	policy    *CommentPolicy
	clock     clock.Clock
	publisher EventPublisher
	logger    *zap.Logger
}

// NewItemService creates a new ItemService.
func NewItemService(
	repo itemDomain.ItemRepository,
	comments itemDomain.CommentRepository,
	users userDomain.UserRepository,
	requests requestDomain.ItemRequestRepository,
	bookings bookingDomain.BookingRepository,
	policy *CommentPolicy,
	clk clock.Clock,
	publisher EventPublisher,
	logger *zap.Logger,
) *ItemService {
	return &ItemService{
		repo:      repo,
		comments:  comments,
		users:     users,
		requests:  requests,
		bookings:  bookings,
		policy:    policy,
		clock:     clk,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateItem lists a new item owned by ownerID, optionally answering a request.
func (s *ItemService) CreateItem(ctx context.Context, ownerID int64, req CreateItemRequest) (*ItemDTO, error) {
	if err := s.requireUser(ctx, ownerID); err != nil {
		return nil, err
	}
	if req.RequestID != nil {
		if _, err := s.requests.FindByID(ctx, *req.RequestID); err != nil {
			return nil, err
		}
	}

	available := req.Available != nil && *req.Available
	it, err := itemDomain.NewItem(ownerID, req.Name, req.Description, available, req.RequestID, s.clock.Now())
	if err != nil {
		return nil, err
	}

	saved, err := s.repo.Save(ctx, it)
	if err != nil {
		return nil, fmt.Errorf("failed to save item: %w", err)
	}

	s.logger.Info("item created", zap.Int64("item_id", saved.ID()), zap.Int64("owner_id", ownerID))
	result := toItemDTO(saved)
	return &result, nil
}

// UpdateItem patches an item. Only its owner may do so.
func (s *ItemService) UpdateItem(ctx context.Context, ownerID, itemID int64, req UpdateItemRequest) (*ItemDTO, error) {
	it, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !it.IsOwnedBy(ownerID) {
		return nil, domain.NewNotFoundErrorf("user with id '%d' does not have an item with id '%d'", ownerID, itemID)
	}

	it.Patch(req.Name, req.Description, req.Available, s.clock.Now())
	if err := s.repo.Update(ctx, it); err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	result := toItemDTO(it)
	return &result, nil
}

// GetItem returns an item with its comments. The owner also sees the last
// and next approved bookings.
func (s *ItemService) GetItem(ctx context.Context, itemID, userID int64) (*ItemDetailsDTO, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	it, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	details, err := s.details(ctx, []*itemDomain.Item{it}, it.IsOwnedBy(userID))
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// ListOwnerItems pages through ownerID's items by ascending id.
func (s *ItemService) ListOwnerItems(ctx context.Context, ownerID int64, offset, size int) (domain.Page[ItemDetailsDTO], error) {
	page, err := domain.NewPageRequest(offset, size)
	if err != nil {
		return domain.Page[ItemDetailsDTO]{}, err
	}
	if err := s.requireUser(ctx, ownerID); err != nil {
		return domain.Page[ItemDetailsDTO]{}, err
	}

	items, err := s.repo.FindByOwnerID(ctx, ownerID, page)
	if err != nil {
		return domain.Page[ItemDetailsDTO]{}, fmt.Errorf("failed to list items: %w", err)
	}

	details, err := s.details(ctx, items.Items, true)
	if err != nil {
		return domain.Page[ItemDetailsDTO]{}, err
	}
	return domain.Page[ItemDetailsDTO]{Items: details, Total: items.Total, Index: items.Index, Size: items.Size}, nil
}

// SearchItems finds available items whose name or description contains
// text. Blank text matches nothing.
func (s *ItemService) SearchItems(ctx context.Context, userID int64, text string, offset, size int) (domain.Page[ItemDTO], error) {
	page, err := domain.NewPageRequest(offset, size)
	if err != nil {
		return domain.Page[ItemDTO]{}, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return domain.NewPage[ItemDTO](nil, 0, page), nil
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return domain.Page[ItemDTO]{}, err
	}

	items, err := s.repo.Search(ctx, text, page)
	if err != nil {
		return domain.Page[ItemDTO]{}, fmt.Errorf("failed to search items: %w", err)
	}
	return domain.MapPage(items, toItemDTO), nil
}

// AddComment stores a review of itemID by userID. The user must have a
// finished approved booking of the item.
func (s *ItemService) AddComment(ctx context.Context, userID, itemID int64, req CreateCommentRequest) (*CommentDTO, error) {
	author, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	it, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if err := s.policy.AssertCommentable(ctx, userID, it.ID(), now); err != nil {
		return nil, err
	}

	c, err := itemDomain.NewComment(it.ID(), userID, author.Name(), req.Text, now)
	if err != nil {
		return nil, err
	}
	saved, err := s.comments.Save(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("failed to save comment: %w", err)
	}

	publishEvent(ctx, s.publisher, s.logger, EventCommentAdded, strconv.FormatInt(it.ID(), 10), CommentAddedEvent{
		CommentID:  saved.ID(),
		ItemID:     it.ID(),
		AuthorID:   userID,
		OccurredAt: now,
	})

	result := toCommentDTO(saved)
	return &result, nil
}

// --- Helpers ---

func (s *ItemService) requireUser(ctx context.Context, userID int64) error {
	exists, err := s.users.ExistsByID(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.NewNotFoundError("User", userID)
	}
	return nil
}

// details loads comments for items and, when withBookings is set, their
// last and next approved bookings, in batched queries.
func (s *ItemService) details(ctx context.Context, items []*itemDomain.Item, withBookings bool) ([]ItemDetailsDTO, error) {
	ids := make([]int64, len(items))
	for i, it := range items {
		ids[i] = it.ID()
	}

	comments := map[int64][]CommentDTO{}
	if len(ids) > 0 {
		found, err := s.comments.FindByItemIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to load comments: %w", err)
		}
		for _, c := range found {
			comments[c.ItemID()] = append(comments[c.ItemID()], toCommentDTO(c))
		}
	}

	var last, next map[int64]*bookingDomain.Booking
	if withBookings && len(ids) > 0 {
		now := s.clock.Now()
		var err error
		if last, err = s.bookings.FindLastForItems(ctx, ids, now); err != nil {
			return nil, fmt.Errorf("failed to load last bookings: %w", err)
		}
		if next, err = s.bookings.FindNextForItems(ctx, ids, now); err != nil {
			return nil, fmt.Errorf("failed to load next bookings: %w", err)
		}
	}

	out := make([]ItemDetailsDTO, len(items))
	for i, it := range items {
		cs := comments[it.ID()]
		if cs == nil {
			cs = []CommentDTO{}
		}
		out[i] = ItemDetailsDTO{
			ItemDTO:     toItemDTO(it),
			LastBooking: toItemBookingDTO(last[it.ID()]),
			NextBooking: toItemBookingDTO(next[it.ID()]),
			Comments:    cs,
		}
	}
	return out, nil
}

func toItemDTO(it *itemDomain.Item) ItemDTO {
	return ItemDTO{
		ID:          it.ID(),
		Name:        it.Name(),
		Description: it.Description(),
		Available:   it.Available(),
		RequestID:   it.RequestID(),
	}
}

func toItemBookingDTO(bk *bookingDomain.Booking) *ItemBookingDTO {
	if bk == nil {
		return nil
	}
	return &ItemBookingDTO{ID: bk.ID(), BookerID: bk.Booker().ID, Start: bk.Start(), End: bk.End()}
}

func toCommentDTO(c *itemDomain.Comment) CommentDTO {
	return CommentDTO{ID: c.ID(), Text: c.Text(), AuthorName: c.AuthorName(), Created: c.Created()}
}
