package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	itemDomain "github.com/shareit-platform/service-booking/internal/domain/item"
	requestDomain "github.com/shareit-platform/service-booking/internal/domain/request"
	userDomain "github.com/shareit-platform/service-booking/internal/domain/user"
	"github.com/shareit-platform/service-booking/internal/pkg/clock"
	"github.com/shareit-platform/service-booking/internal/pkg/domain"
)

// CreateItemRequestRequest holds the description of a wanted item.
type CreateItemRequestRequest struct {
	Description string `json:"description" binding:"required"`
}

// ItemRequestDTO is the response representation of an item request and the
// items offered in answer to it.
type ItemRequestDTO struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	Created     time.Time `json:"created"`
	Items       []ItemDTO `json:"items"`
}

// RequestService is the application service for item requests.
type RequestService struct {
	repo   requestDomain.ItemRequestRepository
	items  itemDomain.ItemRepository
	users  userDomain.UserRepository
	clock  clock.Clock
	logger *zap.Logger
}

// NewRequestService creates a new RequestService.
func NewRequestService(
	repo requestDomain.ItemRequestRepository,
	items itemDomain.ItemRepository,
	users userDomain.UserRepository,
	clk clock.Clock,
	logger *zap.Logger,
) *RequestService {
	return &RequestService{repo: repo, items: items, users: users, clock: clk, logger: logger}
}

// CreateRequest records that userID is looking for an item.
func (s *RequestService) CreateRequest(ctx context.Context, userID int64, req CreateItemRequestRequest) (*ItemRequestDTO, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	r, err := requestDomain.NewItemRequest(userID, req.Description, s.clock.Now())
	if err != nil {
		return nil, err
	}
	saved, err := s.repo.Save(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("failed to save item request: %w", err)
	}

	s.logger.Info("item request created", zap.Int64("request_id", saved.ID()), zap.Int64("user_id", userID))
	return &ItemRequestDTO{
		ID:          saved.ID(),
		Description: saved.Description(),
		Created:     saved.Created(),
		Items:       []ItemDTO{},
	}, nil
}

// ListOwnRequests returns userID's requests, newest first.
func (s *RequestService) ListOwnRequests(ctx context.Context, userID int64) ([]ItemRequestDTO, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	requests, err := s.repo.FindByRequestorID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list item requests: %w", err)
	}
	return s.withItems(ctx, requests)
}

// ListOtherRequests pages through requests made by everyone but userID,
// newest first.
func (s *RequestService) ListOtherRequests(ctx context.Context, userID int64, offset, size int) (domain.Page[ItemRequestDTO], error) {
	page, err := domain.NewPageRequest(offset, size)
	if err != nil {
		return domain.Page[ItemRequestDTO]{}, err
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return domain.Page[ItemRequestDTO]{}, err
	}

	requests, err := s.repo.FindOthers(ctx, userID, page)
	if err != nil {
		return domain.Page[ItemRequestDTO]{}, fmt.Errorf("failed to list item requests: %w", err)
	}
	dtos, err := s.withItems(ctx, requests.Items)
	if err != nil {
		return domain.Page[ItemRequestDTO]{}, err
	}
	return domain.Page[ItemRequestDTO]{Items: dtos, Total: requests.Total, Index: requests.Index, Size: requests.Size}, nil
}

// GetRequest returns a single request with its answers.
func (s *RequestService) GetRequest(ctx context.Context, userID, requestID int64) (*ItemRequestDTO, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	r, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	dtos, err := s.withItems(ctx, []*requestDomain.ItemRequest{r})
	if err != nil {
		return nil, err
	}
	return &dtos[0], nil
}

func (s *RequestService) requireUser(ctx context.Context, userID int64) error {
	exists, err := s.users.ExistsByID(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.NewNotFoundError("User", userID)
	}
	return nil
}

func (s *RequestService) withItems(ctx context.Context, requests []*requestDomain.ItemRequest) ([]ItemRequestDTO, error) {
	out := make([]ItemRequestDTO, len(requests))
	if len(requests) == 0 {
		return out, nil
	}

	ids := make([]int64, len(requests))
	for i, r := range requests {
		ids[i] = r.ID()
	}
	items, err := s.items.FindByRequestIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load requested items: %w", err)
	}
	byRequest := make(map[int64][]ItemDTO, len(requests))
	for _, it := range items {
		if rid := it.RequestID(); rid != nil {
			byRequest[*rid] = append(byRequest[*rid], toItemDTO(it))
		}
	}

	for i, r := range requests {
		answers := byRequest[r.ID()]
		if answers == nil {
			answers = []ItemDTO{}
		}
		out[i] = ItemRequestDTO{ID: r.ID(), Description: r.Description(), Created: r.Created(), Items: answers}
	}
	return out, nil
}
