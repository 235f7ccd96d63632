package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	itemDomain "github.com/shareit-platform/service-booking/internal/domain/item"
	"github.com/shareit-platform/service-booking/internal/pkg/domain"
)

// ItemModel is the GORM model for the items table.
type ItemModel struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	Name        string    `gorm:"not null;size:255"`
	Description string    `gorm:"not null;size:1000"`
	IsAvailable bool      `gorm:"not null"`
	OwnerID     int64     `gorm:"not null;index:idx_items_owner"`
	RequestID   *int64    `gorm:"index:idx_items_request"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ItemModel) TableName() string {
	return "items"
}

// GormItemRepository is the GORM-based implementation of ItemRepository.
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository.
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// FindByID retrieves an item by id.
func (r *GormItemRepository) FindByID(ctx context.Context, id int64) (*itemDomain.Item, error) {
	var model ItemModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Item", id)
		}
		return nil, fmt.Errorf("failed to find item by ID: %w", err)
	}
	return toDomainItem(&model), nil
}

// FindByOwnerID pages through an owner's items by ascending id.
func (r *GormItemRepository) FindByOwnerID(ctx context.Context, ownerID int64, page domain.PageRequest) (domain.Page[*itemDomain.Item], error) {
	return r.page(ctx, page, func(db *gorm.DB) *gorm.DB {
		return db.Where("owner_id = ?", ownerID)
	})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// Search matches text against name and description of available items.
func (r *GormItemRepository) Search(ctx context.Context, text string, page domain.PageRequest) (domain.Page[*itemDomain.Item], error) {
	pattern := "%" + likeEscaper.Replace(text) + "%"
	return r.page(ctx, page, func(db *gorm.DB) *gorm.DB {
		return db.Where("is_available = ? AND (name ILIKE ? OR description ILIKE ?)", true, pattern, pattern)
	})
}

func (r *GormItemRepository) page(ctx context.Context, page domain.PageRequest, scope func(*gorm.DB) *gorm.DB) (domain.Page[*itemDomain.Item], error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&ItemModel{}).Scopes(scope).Count(&total).Error; err != nil {
		return domain.Page[*itemDomain.Item]{}, fmt.Errorf("failed to count items: %w", err)
	}

	var models []ItemModel
	if err := r.db.WithContext(ctx).
		Scopes(scope).
		Order("id ASC").
		Offset(page.Skip()).
		Limit(page.Size).
		Find(&models).Error; err != nil {
		return domain.Page[*itemDomain.Item]{}, fmt.Errorf("failed to find items: %w", err)
	}

	items := make([]*itemDomain.Item, len(models))
	for i := range models {
		items[i] = toDomainItem(&models[i])
	}
	return domain.NewPage(items, total, page), nil
}

// FindByRequestIDs returns the items offered for any of the requests.
func (r *GormItemRepository) FindByRequestIDs(ctx context.Context, requestIDs []int64) ([]*itemDomain.Item, error) {
	if len(requestIDs) == 0 {
		return nil, nil
	}
	var models []ItemModel
	if err := r.db.WithContext(ctx).
		Where("request_id IN ?", requestIDs).
		Order("id ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find items by request: %w", err)
	}
	items := make([]*itemDomain.Item, len(models))
	for i := range models {
		items[i] = toDomainItem(&models[i])
	}
	return items, nil
}

// Save inserts a new item.
func (r *GormItemRepository) Save(ctx context.Context, it *itemDomain.Item) (*itemDomain.Item, error) {
	model := toItemModel(it)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.NewNotFoundErrorf("owner or request of item %q does not exist", it.Name())
		}
		return nil, fmt.Errorf("failed to save item: %w", err)
	}
	return toDomainItem(model), nil
}

// Update persists the mutable item fields.
func (r *GormItemRepository) Update(ctx context.Context, it *itemDomain.Item) error {
	result := r.db.WithContext(ctx).
		Model(&ItemModel{}).
		Where("id = ?", it.ID()).
		Updates(map[string]interface{}{
			"name":         it.Name(),
			"description":  it.Description(),
			"is_available": it.Available(),
			"updated_at":   it.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Item", it.ID())
	}
	return nil
}

func toItemModel(it *itemDomain.Item) *ItemModel {
	return &ItemModel{
		ID:          it.ID(),
		Name:        it.Name(),
		Description: it.Description(),
		IsAvailable: it.Available(),
		OwnerID:     it.OwnerID(),
		RequestID:   it.RequestID(),
		CreatedAt:   it.CreatedAt(),
		UpdatedAt:   it.UpdatedAt(),
	}
}

func toDomainItem(m *ItemModel) *itemDomain.Item {
	return itemDomain.Reconstruct(m.ID, m.Name, m.Description, m.IsAvailable, m.OwnerID, m.RequestID, m.CreatedAt, m.UpdatedAt)
}

// CommentModel is the GORM model for the comments table.
type CommentModel struct {
	ID       int64     `gorm:"primaryKey;autoIncrement"`
	Text     string    `gorm:"not null;size:2000"`
	ItemID   int64     `gorm:"not null;index:idx_comments_item"`
	AuthorID int64     `gorm:"not null"`
	Author   UserModel `gorm:"foreignKey:AuthorID"`
	Created  time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (CommentModel) TableName() string {
	return "comments"
}

// GormCommentRepository is the GORM-based implementation of CommentRepository.
type GormCommentRepository struct {
	db *gorm.DB
}

// NewGormCommentRepository creates a new GormCommentRepository.
func NewGormCommentRepository(db *gorm.DB) *GormCommentRepository {
	return &GormCommentRepository{db: db}
}

// Save inserts a new comment.
func (r *GormCommentRepository) Save(ctx context.Context, c *itemDomain.Comment) (*itemDomain.Comment, error) {
	model := &CommentModel{
		Text:     c.Text(),
		ItemID:   c.ItemID(),
		AuthorID: c.AuthorID(),
		Created:  c.Created(),
	}
	if err := r.db.WithContext(ctx).Omit("Author").Create(model).Error; err != nil {
		return nil, fmt.Errorf("failed to save comment: %w", err)
	}
	return itemDomain.ReconstructComment(model.ID, c.Text(), c.ItemID(), c.AuthorID(), c.AuthorName(), c.Created()), nil
}

// FindByItemIDs returns comments on the items, oldest first.
func (r *GormCommentRepository) FindByItemIDs(ctx context.Context, itemIDs []int64) ([]*itemDomain.Comment, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	var models []CommentModel
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("item_id IN ?", itemIDs).
		Order("created ASC, id ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find comments: %w", err)
	}
	comments := make([]*itemDomain.Comment, len(models))
	for i, m := range models {
		comments[i] = itemDomain.ReconstructComment(m.ID, m.Text, m.ItemID, m.AuthorID, m.Author.Name, m.Created)
	}
	return comments, nil
}
