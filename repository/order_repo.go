package repository

import (
	"errors"

	"craftmarket/models"

	"gorm.io/gorm"
)

type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) FindByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindActiveByRequest returns the order blocking new creations for the
// request (created/accepted/completed), or nil without error.
func (r *GormOrderRepository) FindActiveByRequest(requestID string) (*models.Order, error) {
	var order models.Order
	err := r.db.Where("request_id = ? AND status IN ?", requestID,
		[]string{models.OrderCreated, models.OrderAccepted, models.OrderCompleted}).
		Order("created_at DESC").First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// InsertIfNoActive lands the row only when no active order exists for the
// same request. The existence check and the insert are one statement, so two
// concurrent creators cannot both win.
func (r *GormOrderRepository) InsertIfNoActive(o *models.Order) (bool, error) {
	result := r.db.Exec(`
		INSERT INTO orders (id, request_id, offer_id, created_by, title, net_total, tax_rate,
		                    discount_type, discount_value, discount_label, gross_total, status, created_at)
		SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
		WHERE NOT EXISTS (
			SELECT 1 FROM orders WHERE request_id = ? AND status IN ('created', 'accepted', 'completed')
		)`,
		o.ID, o.RequestID, o.OfferID, o.CreatedBy, o.Title, o.NetTotal, o.TaxRate,
		o.DiscountType, o.DiscountValue, o.DiscountLabel, o.GrossTotal, o.Status, o.CreatedAt,
		o.RequestID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *GormOrderRepository) UpdateStatus(id, status string) error {
	return r.db.Model(&models.Order{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": gorm.Expr("NOW()")}).Error
}

func (r *GormOrderRepository) ListByCreator(creatorID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Where("created_by = ?", creatorID).Order("created_at DESC").Find(&orders).Error
	return orders, err
}
