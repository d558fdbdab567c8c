package services

import (
	"errors"
	"time"

	"craftmarket/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequestService is the thin registry around service requests. The lifecycle
// itself is driven by the engines; this only covers submission and reads.
type RequestService struct {
	requests RequestRepository
	now      func() time.Time
}

func NewRequestService(requests RequestRepository) *RequestService {
	return &RequestService{requests: requests, now: time.Now}
}

// Create submits a new request in the initial state.
func (s *RequestService) Create(ownerID string, input models.CreateRequestRequest) (*models.Request, error) {
	if input.Title == "" {
		return nil, models.ErrValidation("title must not be empty")
	}
	req := &models.Request{
		ID:            uuid.NewString(),
		OwnerID:       ownerID,
		Branch:        input.Branch,
		Category:      input.Category,
		Title:         input.Title,
		Description:   input.Description,
		Status:        "Eingereicht",
		BudgetMin:     input.BudgetMin,
		BudgetMax:     input.BudgetMax,
		ExecutionMode: input.ExecutionMode,
		CreatedAt:     s.now(),
	}
	if err := s.requests.Insert(req); err != nil {
		return nil, models.ErrInternal("failed to persist request")
	}
	return req, nil
}

// Get loads one request.
func (s *RequestService) Get(id string) (*models.Request, error) {
	req, err := s.requests.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound("request not found")
		}
		return nil, models.ErrInternal("failed to load request")
	}
	return req, nil
}

// ListByOwner lists the caller's own requests.
func (s *RequestService) ListByOwner(ownerID string) ([]models.Request, error) {
	reqs, err := s.requests.ListByOwner(ownerID)
	if err != nil {
		return nil, models.ErrInternal("failed to list requests")
	}
	return reqs, nil
}
