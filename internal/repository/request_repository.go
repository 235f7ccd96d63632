package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	requestDomain "github.com/shareit-platform/service-booking/internal/domain/request"
	"github.com/shareit-platform/service-booking/internal/pkg/domain"
)

// RequestModel is the GORM model for the requests table.
type RequestModel struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	Description string    `gorm:"not null;size:1000"`
	RequestorID int64     `gorm:"not null;index:idx_requests_requestor"`
	Created     time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (RequestModel) TableName() string {
	return "requests"
}

// GormRequestRepository is the GORM-based implementation of ItemRequestRepository.
type GormRequestRepository struct {
	db *gorm.DB
}

// NewGormRequestRepository creates a new GormRequestRepository.
func NewGormRequestRepository(db *gorm.DB) *GormRequestRepository {
	return &GormRequestRepository{db: db}
}

// FindByID retrieves a request by id.
func (r *GormRequestRepository) FindByID(ctx context.Context, id int64) (*requestDomain.ItemRequest, error) {
	var model RequestModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Request", id)
		}
		return nil, fmt.Errorf("failed to find request by ID: %w", err)
	}
	return toDomainRequest(&model), nil
}

// FindByRequestorID returns the user's requests, newest first.
func (r *GormRequestRepository) FindByRequestorID(ctx context.Context, requestorID int64) ([]*requestDomain.ItemRequest, error) {
	var models []RequestModel
	if err := r.db.WithContext(ctx).
		Where("requestor_id = ?", requestorID).
		Order("created DESC, id DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find requests: %w", err)
	}
	return toDomainRequests(models), nil
}

// FindOthers pages through requests not made by userID, newest first.
func (r *GormRequestRepository) FindOthers(ctx context.Context, userID int64, page domain.PageRequest) (domain.Page[*requestDomain.ItemRequest], error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&RequestModel{}).Where("requestor_id <> ?", userID).Count(&total).Error; err != nil {
		return domain.Page[*requestDomain.ItemRequest]{}, fmt.Errorf("failed to count requests: %w", err)
	}

	var models []RequestModel
	if err := r.db.WithContext(ctx).
		Where("requestor_id <> ?", userID).
		Order("created DESC, id DESC").
		Offset(page.Skip()).
		Limit(page.Size).
		Find(&models).Error; err != nil {
		return domain.Page[*requestDomain.ItemRequest]{}, fmt.Errorf("failed to find requests: %w", err)
	}
	return domain.NewPage(toDomainRequests(models), total, page), nil
}

// Save inserts a new request.
func (r *GormRequestRepository) Save(ctx context.Context, req *requestDomain.ItemRequest) (*requestDomain.ItemRequest, error) {
	model := &RequestModel{
		Description: req.Description(),
		RequestorID: req.RequestorID(),
		Created:     req.Created(),
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.NewNotFoundError("User", req.RequestorID())
		}
		return nil, fmt.Errorf("failed to save request: %w", err)
	}
	return toDomainRequest(model), nil
}

func toDomainRequest(m *RequestModel) *requestDomain.ItemRequest {
	return requestDomain.Reconstruct(m.ID, m.Description, m.RequestorID, m.Created)
}

func toDomainRequests(models []RequestModel) []*requestDomain.ItemRequest {
	out := make([]*requestDomain.ItemRequest, len(models))
	for i := range models {
		out[i] = toDomainRequest(&models[i])
	}
	return out
}
