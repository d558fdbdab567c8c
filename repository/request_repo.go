package repository

import (
	"craftmarket/models"

	"gorm.io/gorm"
)

// GormRequestRepository reads and writes service_requests. Status promotions
// do not go through here; they belong to the status guard.
type GormRequestRepository struct {
	db *gorm.DB
}

func NewGormRequestRepository(db *gorm.DB) *GormRequestRepository {
	return &GormRequestRepository{db: db}
}

func (r *GormRequestRepository) FindByID(id string) (*models.Request, error) {
	var req models.Request
	if err := r.db.First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *GormRequestRepository) Insert(req *models.Request) error {
	return r.db.Create(req).Error
}

func (r *GormRequestRepository) ListByOwner(ownerID string) ([]models.Request, error) {
	var reqs []models.Request
	err := r.db.Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&reqs).Error
	return reqs, err
}
