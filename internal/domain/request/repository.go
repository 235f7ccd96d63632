package request

import (
	"context"

	"github.com/shareit-platform/service-booking/internal/pkg/domain"
)

// ItemRequestRepository defines the persistence contract for item requests.
type ItemRequestRepository interface {
	FindByID(ctx context.Context, id int64) (*ItemRequest, error)

	// FindByRequestorID returns the user's own requests, newest first.
	FindByRequestorID(ctx context.Context, requestorID int64) ([]*ItemRequest, error)

	// FindOthers pages through everyone else's requests, newest first.
	FindOthers(ctx context.Context, userID int64, page domain.PageRequest) (domain.Page[*ItemRequest], error)

	Save(ctx context.Context, r *ItemRequest) (*ItemRequest, error)
}
