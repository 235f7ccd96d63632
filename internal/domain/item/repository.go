package item

import (
	"context"

	"github.com/shareit-platform/service-booking/internal/pkg/domain"
)

// ItemRepository defines the persistence contract for items.
type ItemRepository interface {
	// FindByID returns a NotFound error when the item does not exist.
	FindByID(ctx context.Context, id int64) (*Item, error)

	// FindByOwnerID pages through an owner's items by ascending id.
	FindByOwnerID(ctx context.Context, ownerID int64, page domain.PageRequest) (domain.Page[*Item], error)

	// Search matches text case-insensitively against name or description of
	// available items, by ascending id.
	Search(ctx context.Context, text string, page domain.PageRequest) (domain.Page[*Item], error)

	// FindByRequestIDs returns the items answering any of the given requests.
	FindByRequestIDs(ctx context.Context, requestIDs []int64) ([]*Item, error)

	Save(ctx context.Context, it *Item) (*Item, error)
	Update(ctx context.Context, it *Item) error
}

// CommentRepository defines the persistence contract for comments.
type CommentRepository interface {
	Save(ctx context.Context, c *Comment) (*Comment, error)

	// FindByItemIDs returns comments for the given items, oldest first.
	FindByItemIDs(ctx context.Context, itemIDs []int64) ([]*Comment, error)
}
