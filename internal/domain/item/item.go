package item

import (
	"strings"
	"time"

	"github.com/shareit-platform/service-booking/internal/pkg/domain"
)

// Item is something an owner lends out. The available flag governs whether
// new bookings may be created against it.
type Item struct {
	id          int64
	name        string
	description string
	available   bool
	ownerID     int64
	requestID   *int64
	createdAt   time.Time
	updatedAt   time.Time
}

// NewItem creates an unsaved item owned by ownerID, optionally answering an
// item request.
func NewItem(ownerID int64, name, description string, available bool, requestID *int64, now time.Time) (*Item, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if name == "" {
		return nil, domain.NewBadRequestError("item name is required")
	}
	if description == "" {
		return nil, domain.NewBadRequestError("item description is required")
	}
	return &Item{
		name:        name,
		description: description,
		available:   available,
		ownerID:     ownerID,
		requestID:   requestID,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Reconstruct rebuilds an Item from persistence data (no validation).
func Reconstruct(
	id int64,
	name, description string,
	available bool,
	ownerID int64,
	requestID *int64,
	createdAt, updatedAt time.Time,
) *Item {
	return &Item{
		id:          id,
		name:        name,
		description: description,
		available:   available,
		ownerID:     ownerID,
		requestID:   requestID,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

func (i *Item) ID() int64            { return i.id }
func (i *Item) Name() string         { return i.name }
func (i *Item) Description() string  { return i.description }
func (i *Item) Available() bool      { return i.available }
func (i *Item) OwnerID() int64       { return i.ownerID }
func (i *Item) RequestID() *int64    { return i.requestID }
func (i *Item) CreatedAt() time.Time { return i.createdAt }
func (i *Item) UpdatedAt() time.Time { return i.updatedAt }

// IsOwnedBy reports whether userID owns the item.
func (i *Item) IsOwnedBy(userID int64) bool { return i.ownerID == userID }

// Patch applies the non-blank name and description and a non-nil available.
func (i *Item) Patch(name, description string, available *bool, now time.Time) {
	if n := strings.TrimSpace(name); n != "" {
		i.name = n
	}
	if d := strings.TrimSpace(description); d != "" {
		i.description = d
	}
	if available != nil {
		i.available = *available
	}
	i.updatedAt = now
}
