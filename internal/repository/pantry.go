package repository

import (
	"context"
	"errors"

	"pantryshift/internal/models"

	"gorm.io/gorm"
)

// PantryRepository defines persistence operations for pantries and the
// pantry-lead assignment table.
type PantryRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Pantry, error)
	GetBySlug(ctx context.Context, slug string) (*models.Pantry, error)
	List(ctx context.Context) ([]models.Pantry, error)
	ListByLead(ctx context.Context, userID uint) ([]models.Pantry, error)
	Create(ctx context.Context, pantry *models.Pantry) error
	LeadExists(ctx context.Context, pantryID, userID uint) (bool, error)
	AddLead(ctx context.Context, lead *models.PantryLead) error
	RemoveLead(ctx context.Context, pantryID, userID uint) error
	ListLeads(ctx context.Context, pantryID uint) ([]models.User, error)
}

type pantryRepository struct {
	db *gorm.DB
}

// NewPantryRepository returns a new PantryRepository implementation.
func NewPantryRepository(db *gorm.DB) PantryRepository {
	return &pantryRepository{db: db}
}

func (r *pantryRepository) GetByID(ctx context.Context, id uint) (*models.Pantry, error) {
	var pantry models.Pantry
	if err := r.db.WithContext(ctx).First(&pantry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Pantry", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &pantry, nil
}

// GetBySlug returns (nil, nil) when no pantry carries the slug; the public
// endpoints treat an unknown slug as an empty result rather than an error.
func (r *pantryRepository) GetBySlug(ctx context.Context, slug string) (*models.Pantry, error) {
	var pantry models.Pantry
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&pantry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &pantry, nil
}

func (r *pantryRepository) List(ctx context.Context) ([]models.Pantry, error) {
	var pantries []models.Pantry
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&pantries).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return pantries, nil
}

func (r *pantryRepository) ListByLead(ctx context.Context, userID uint) ([]models.Pantry, error) {
	var pantries []models.Pantry
	if err := r.db.WithContext(ctx).
		Joins("JOIN pantry_leads ON pantry_leads.pantry_id = pantries.id").
		Where("pantry_leads.user_id = ?", userID).
		Order("pantries.id ASC").
		Find(&pantries).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return pantries, nil
}

func (r *pantryRepository) Create(ctx context.Context, pantry *models.Pantry) error {
	if err := r.db.WithContext(ctx).Create(pantry).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("A pantry with this slug already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *pantryRepository) LeadExists(ctx context.Context, pantryID, userID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PantryLead{}).
		Where("pantry_id = ? AND user_id = ?", pantryID, userID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *pantryRepository) AddLead(ctx context.Context, lead *models.PantryLead) error {
	if err := r.db.WithContext(ctx).Create(lead).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("User is already a lead for this pantry")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// RemoveLead is idempotent; removing an absent assignment succeeds.
func (r *pantryRepository) RemoveLead(ctx context.Context, pantryID, userID uint) error {
	if err := r.db.WithContext(ctx).
		Where("pantry_id = ? AND user_id = ?", pantryID, userID).
		Delete(&models.PantryLead{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ListLeads returns lead users for a pantry in assignment order.
func (r *pantryRepository) ListLeads(ctx context.Context, pantryID uint) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Joins("JOIN pantry_leads ON pantry_leads.user_id = users.id").
		Where("pantry_leads.pantry_id = ?", pantryID).
		Order("pantry_leads.created_at ASC, users.id ASC").
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
