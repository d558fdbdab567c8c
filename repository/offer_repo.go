package repository

import (
	"errors"

	"craftmarket/models"

	"gorm.io/gorm"
)

type GormOfferRepository struct {
	db *gorm.DB
}

func NewGormOfferRepository(db *gorm.DB) *GormOfferRepository {
	return &GormOfferRepository{db: db}
}

func (r *GormOfferRepository) FindByID(id string) (*models.Offer, error) {
	var offer models.Offer
	if err := r.db.First(&offer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *GormOfferRepository) Insert(o *models.Offer) error {
	return r.db.Create(o).Error
}

func (r *GormOfferRepository) UpdateStatus(id, status string) error {
	return r.db.Model(&models.Offer{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": gorm.Expr("NOW()")}).Error
}

// LatestAcceptedByRequest returns the most recent accepted offer for the
// request, or nil without error when there is none.
func (r *GormOfferRepository) LatestAcceptedByRequest(requestID string) (*models.Offer, error) {
	var offer models.Offer
	err := r.db.Where("request_id = ? AND status = ?", requestID, models.OfferAccepted).
		Order("created_at DESC").First(&offer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &offer, nil
}

func (r *GormOfferRepository) ListFiles(offerID string) ([]models.OfferFile, error) {
	var files []models.OfferFile
	err := r.db.Where("offer_id = ?", offerID).Order("created_at ASC").Find(&files).Error
	return files, err
}
