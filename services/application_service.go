package services

import (
	"errors"
	"fmt"

	"craftmarket/models"

	"gorm.io/gorm"
)

// ApplicationRepository persists partner bids.
type ApplicationRepository interface {
	FindByID(id string) (*models.Application, error)
	ListByRequest(requestID string) ([]models.Application, error)
	UpdateStatus(id, status string) error
	DeclineSiblings(requestID, acceptedID string) error
	CountAcceptedExcept(requestID, exceptID string) (int64, error)
}

// ApplicationService records partner bids against a request and performs the
// single-winner acceptance transition.
type ApplicationService struct {
	apps     ApplicationRepository
	requests RequestRepository
	orders   OrderRepository
	conv     *ConversationService
	guard    StatusSetter
}

func NewApplicationService(apps ApplicationRepository, requests RequestRepository, orders OrderRepository, conv *ConversationService, guard StatusSetter) *ApplicationService {
	return &ApplicationService{apps: apps, requests: requests, orders: orders, conv: conv, guard: guard}
}

// List returns every bid on the request. Read-only.
func (s *ApplicationService) List(requestID string) ([]models.Application, error) {
	apps, err := s.apps.ListByRequest(requestID)
	if err != nil {
		return nil, models.ErrInternal("failed to list applications")
	}
	return apps, nil
}

func statusIn(status string, lists ...[]string) bool {
	for _, list := range lists {
		for _, label := range list {
			if status == label {
				return true
			}
		}
	}
	return false
}

// Decide accepts or declines one application. Accepting promotes the chosen
// application, declines every sibling, moves the request to an active label
// and makes sure the conversation exists; its id is returned for the client
// redirect. The three writes are sequential, not transactional: a failure
// mid-way is resolved by the caller retrying the whole operation.
func (s *ApplicationService) Decide(callerID, applicationID, action, requestID string) (string, error) {
	if action != "accept" && action != "decline" {
		return "", models.ErrValidation("action must be accept or decline")
	}

	app, err := s.apps.FindByID(applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", models.ErrNotFound("application not found")
		}
		return "", models.ErrInternal("failed to load application")
	}
	if app.RequestID != requestID {
		return "", models.ErrValidation("application does not belong to the given request")
	}

	req, err := s.requests.FindByID(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", models.ErrNotFound("request not found")
		}
		return "", models.ErrInternal("failed to load request")
	}
	if req.OwnerID != callerID {
		return "", models.ErrForbidden("only the request owner may decide applications")
	}

	if action == "decline" {
		if app.Status == models.ApplicationDeclined {
			return "", nil // already declined, nothing to do
		}
		if err := s.apps.UpdateStatus(app.ID, models.ApplicationDeclined); err != nil {
			return "", models.ErrInternal("failed to decline application")
		}
		return "", nil
	}

	// accept path

	if app.Status == models.ApplicationAccepted {
		// Retry of an earlier accept: re-apply the promotion and hand back the
		// conversation without touching siblings again.
		s.guard.TrySet(requestID, models.StatusCandidatesActive)
		convID, err := s.conv.Ensure(requestID, req.OwnerID)
		if err != nil {
			return "", err
		}
		s.conv.AssignPartner(convID, app.PartnerID)
		return convID, nil
	}
	if app.Status == models.ApplicationDeclined {
		return "", models.ErrConflict("application already declined")
	}

	accepted, err := s.apps.CountAcceptedExcept(requestID, app.ID)
	if err != nil {
		return "", models.ErrInternal("failed to check existing winner")
	}
	if accepted > 0 {
		return "", models.ErrConflict("another application was already accepted")
	}
	if active, err := s.orders.FindActiveByRequest(requestID); err == nil && active != nil {
		return "", models.ErrConflict(fmt.Sprintf("an order already exists for this request (%s)", active.ID))
	}
	if statusIn(req.Status, models.StatusCandidatesActive, models.StatusCandidatesOrderCreated) {
		return "", models.ErrConflict("request is already past the acceptance point")
	}

	if err := s.apps.UpdateStatus(app.ID, models.ApplicationAccepted); err != nil {
		return "", models.ErrInternal("failed to accept application")
	}
	if err := s.apps.DeclineSiblings(requestID, app.ID); err != nil {
		return "", models.ErrInternal("winner accepted but siblings not declined, retry the operation")
	}
	s.guard.TrySet(requestID, models.StatusCandidatesActive)

	convID, err := s.conv.Ensure(requestID, req.OwnerID)
	if err != nil {
		return "", err
	}
	s.conv.AssignPartner(convID, app.PartnerID)
	return convID, nil
}
