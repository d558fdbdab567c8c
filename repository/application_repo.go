package repository

import (
	"craftmarket/models"

	"gorm.io/gorm"
)

type GormApplicationRepository struct {
	db *gorm.DB
}

func NewGormApplicationRepository(db *gorm.DB) *GormApplicationRepository {
	return &GormApplicationRepository{db: db}
}

func (r *GormApplicationRepository) FindByID(id string) (*models.Application, error) {
	var app models.Application
	if err := r.db.First(&app, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *GormApplicationRepository) ListByRequest(requestID string) ([]models.Application, error) {
	var apps []models.Application
	err := r.db.Where("request_id = ?", requestID).Order("created_at ASC").Find(&apps).Error
	return apps, err
}

func (r *GormApplicationRepository) UpdateStatus(id, status string) error {
	return r.db.Model(&models.Application{}).Where("id = ?", id).Update("status", status).Error
}

// DeclineSiblings declines every other application on the request in one
// statement, part of the single-winner acceptance.
func (r *GormApplicationRepository) DeclineSiblings(requestID, acceptedID string) error {
	return r.db.Model(&models.Application{}).
		Where("request_id = ? AND id <> ?", requestID, acceptedID).
		Update("status", models.ApplicationDeclined).Error
}

func (r *GormApplicationRepository) CountAcceptedExcept(requestID, exceptID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Application{}).
		Where("request_id = ? AND id <> ? AND status = ?", requestID, exceptID, models.ApplicationAccepted).
		Count(&count).Error
	return count, err
}
