package repository

import (
	"time"

	"craftmarket/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormConversationRepository struct {
	db *gorm.DB
}

func NewGormConversationRepository(db *gorm.DB) *GormConversationRepository {
	return &GormConversationRepository{db: db}
}

func (r *GormConversationRepository) FindByRequestID(requestID string) (*models.Conversation, error) {
	var conv models.Conversation
	if err := r.db.First(&conv, "request_id = ?", requestID).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

// InsertIfAbsent inserts the conversation unless one already exists for the
// request. The unique index on request_id plus ON CONFLICT DO NOTHING make
// this safe under concurrency; losing the race is not an error.
func (r *GormConversationRepository) InsertIfAbsent(conv *models.Conversation) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "request_id"}},
		DoNothing: true,
	}).Create(conv).Error
}

func (r *GormConversationRepository) SetPartnerIfEmpty(conversationID, partnerID string) error {
	return r.db.Model(&models.Conversation{}).
		Where("id = ? AND (partner_id IS NULL OR partner_id = '')", conversationID).
		Update("partner_id", partnerID).Error
}

func (r *GormConversationRepository) InsertMessage(msg *models.Message) error {
	return r.db.Create(msg).Error
}

func (r *GormConversationRepository) TouchLastMessage(conversationID string, at time.Time) error {
	return r.db.Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Update("last_message_at", at).Error
}

func (r *GormConversationRepository) ListMessages(conversationID string) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.Where("conversation_id = ?", conversationID).Order("created_at ASC").Find(&msgs).Error
	return msgs, err
}
