package services

import (
	"errors"
	"time"

	"craftmarket/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConversationRepository is the persistence contract of the gateway.
// InsertIfAbsent must be a conditional write (insert-or-ignore on request_id)
// so that concurrent callers cannot produce two conversations for one request.
type ConversationRepository interface {
	FindByRequestID(requestID string) (*models.Conversation, error)
	InsertIfAbsent(conv *models.Conversation) error
	SetPartnerIfEmpty(conversationID, partnerID string) error
	InsertMessage(msg *models.Message) error
	TouchLastMessage(conversationID string, at time.Time) error
	ListMessages(conversationID string) ([]models.Message, error)
}

// RequestRepository is the read contract on service requests shared by the engines.
type RequestRepository interface {
	FindByID(id string) (*models.Request, error)
	Insert(req *models.Request) error
	ListByOwner(ownerID string) ([]models.Request, error)
}

// ConversationService guarantees exactly one conversation per request and owns
// the message thread bound to it.
type ConversationService struct {
	repo     ConversationRepository
	requests RequestRepository
	now      func() time.Time
}

func NewConversationService(repo ConversationRepository, requests RequestRepository) *ConversationService {
	return &ConversationService{repo: repo, requests: requests, now: time.Now}
}

// Ensure returns the conversation id for the request, creating the
// conversation on first need. The consumer id is taken from the request owner,
// falling back to the caller when the request cannot be resolved. Safe to call
// repeatedly and concurrently: the insert ignores conflicts on request_id and
// the winning row is re-read afterwards.
func (s *ConversationService) Ensure(requestID, fallbackOwnerID string) (string, error) {
	conv, err := s.repo.FindByRequestID(requestID)
	if err == nil {
		return conv.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", models.ErrInternal("failed to look up conversation")
	}

	consumerID := fallbackOwnerID
	if req, err := s.requests.FindByID(requestID); err == nil {
		consumerID = req.OwnerID
	}

	fresh := &models.Conversation{
		ID:            uuid.NewString(),
		RequestID:     requestID,
		ConsumerID:    consumerID,
		LastMessageAt: s.now(),
		CreatedAt:     s.now(),
	}
	if err := s.repo.InsertIfAbsent(fresh); err != nil {
		return "", models.ErrInternal("failed to create conversation")
	}

	// Re-read: a concurrent caller may have won the insert.
	conv, err = s.repo.FindByRequestID(requestID)
	if err != nil {
		return "", models.ErrInternal("conversation vanished after create")
	}
	return conv.ID, nil
}

// FindByRequest exposes the conversation row for ownership checks.
func (s *ConversationService) FindByRequest(requestID string) (*models.Conversation, error) {
	conv, err := s.repo.FindByRequestID(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound("conversation not found")
		}
		return nil, models.ErrInternal("failed to look up conversation")
	}
	return conv, nil
}

// AssignPartner records the partner side of the conversation once known.
// Only the first assignment wins; later calls are no-ops.
func (s *ConversationService) AssignPartner(conversationID, partnerID string) {
	if partnerID == "" {
		return
	}
	if err := s.repo.SetPartnerIfEmpty(conversationID, partnerID); err != nil {
		// Not worth failing the calling operation over
		return
	}
}

// AppendSystemMessage posts one system-authored message into the conversation.
func (s *ConversationService) AppendSystemMessage(conversationID, body string) error {
	msg := &models.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		SenderID:       "system",
		Body:           body,
		System:         true,
		CreatedAt:      s.now(),
	}
	if err := s.repo.InsertMessage(msg); err != nil {
		return models.ErrInternal("failed to append system message")
	}
	_ = s.repo.TouchLastMessage(conversationID, msg.CreatedAt)
	return nil
}

// PostMessage appends a user message after verifying the sender belongs to the
// conversation.
func (s *ConversationService) PostMessage(conversationID, senderID, body string) (*models.Message, error) {
	if body == "" {
		return nil, models.ErrValidation("message body must not be empty")
	}
	msg := &models.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           body,
		CreatedAt:      s.now(),
	}
	if err := s.repo.InsertMessage(msg); err != nil {
		return nil, models.ErrInternal("failed to post message")
	}
	_ = s.repo.TouchLastMessage(conversationID, msg.CreatedAt)
	return msg, nil
}

// ListMessages returns the thread in chronological order.
func (s *ConversationService) ListMessages(conversationID string) ([]models.Message, error) {
	msgs, err := s.repo.ListMessages(conversationID)
	if err != nil {
		return nil, models.ErrInternal("failed to list messages")
	}
	return msgs, nil
}
