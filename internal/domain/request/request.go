package request

import (
	"strings"
	"time"

	"github.com/shareit-platform/service-booking/internal/pkg/domain"
)

// ItemRequest is a user's description of an item they want but nobody lists yet.
type ItemRequest struct {
	id          int64
	description string
	requestorID int64
	created     time.Time
}

// NewItemRequest creates an unsaved request.
func NewItemRequest(requestorID int64, description string, created time.Time) (*ItemRequest, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, domain.NewBadRequestError("request description is required")
	}
	return &ItemRequest{description: description, requestorID: requestorID, created: created}, nil
}

// Reconstruct rebuilds an ItemRequest from persistence data.
func Reconstruct(id int64, description string, requestorID int64, created time.Time) *ItemRequest {
	return &ItemRequest{id: id, description: description, requestorID: requestorID, created: created}
}

func (r *ItemRequest) ID() int64           { return r.id }
func (r *ItemRequest) Description() string { return r.description }
func (r *ItemRequest) RequestorID() int64  { return r.requestorID }
func (r *ItemRequest) Created() time.Time  { return r.created }
