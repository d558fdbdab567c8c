package repository

import (
	"craftmarket/models"

	"gorm.io/gorm"
)

type GormDocumentRepository struct {
	db *gorm.DB
}

func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

func (r *GormDocumentRepository) InsertOfferFile(f *models.OfferFile) error {
	return r.db.Create(f).Error
}

func (r *GormDocumentRepository) InsertOrderFile(f *models.OrderFile) error {
	return r.db.Create(f).Error
}

func (r *GormDocumentRepository) InsertDocument(d *models.Document) error {
	return r.db.Create(d).Error
}

func (r *GormDocumentRepository) DeleteOfferFile(id string) error {
	return r.db.Delete(&models.OfferFile{}, "id = ?", id).Error
}

func (r *GormDocumentRepository) DeleteOrderFile(id string) error {
	return r.db.Delete(&models.OrderFile{}, "id = ?", id).Error
}

func (r *GormDocumentRepository) ListByConversation(conversationID string) ([]models.Document, error) {
	var docs []models.Document
	err := r.db.Where("conversation_id = ?", conversationID).Order("created_at DESC").Find(&docs).Error
	return docs, err
}

func (r *GormDocumentRepository) InsertPendingDelete(p *models.PendingBlobDelete) error {
	return r.db.Create(p).Error
}

func (r *GormDocumentRepository) ListPendingDeletes(limit int) ([]models.PendingBlobDelete, error) {
	var pending []models.PendingBlobDelete
	err := r.db.Order("created_at ASC").Limit(limit).Find(&pending).Error
	return pending, err
}

func (r *GormDocumentRepository) ResolvePendingDelete(id uint) error {
	return r.db.Delete(&models.PendingBlobDelete{}, "id = ?", id).Error
}

func (r *GormDocumentRepository) BumpPendingDelete(id uint) error {
	return r.db.Model(&models.PendingBlobDelete{}).Where("id = ?", id).
		Update("attempts", gorm.Expr("attempts + 1")).Error
}
