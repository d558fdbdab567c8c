package services

import (
	"errors"
	"fmt"
	"time"

	"craftmarket/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderRepository persists fulfillment orders. InsertIfNoActive must be a
// conditional write: the row lands only when no order for the same request is
// in created/accepted/completed, closing the race two concurrent creators
// would otherwise have.
type OrderRepository interface {
	FindByID(id string) (*models.Order, error)
	FindActiveByRequest(requestID string) (*models.Order, error)
	InsertIfNoActive(o *models.Order) (bool, error)
	UpdateStatus(id, status string) error
	ListByCreator(creatorID string) ([]models.Order, error)
}

// OrderService creates fulfillment orders from accepted offers (or directly)
// and enforces the statutory cancellation window.
type OrderService struct {
	orders   OrderRepository
	offers   OfferRepository
	requests RequestRepository
	users    UserRepository
	conv     *ConversationService
	linker   *DocumentLinker
	guard    StatusSetter
	notifier Notifier
	now      func() time.Time
}

func NewOrderService(orders OrderRepository, offers OfferRepository, requests RequestRepository, users UserRepository, conv *ConversationService, linker *DocumentLinker, guard StatusSetter, notifier Notifier) *OrderService {
	return &OrderService{
		orders:   orders,
		offers:   offers,
		requests: requests,
		users:    users,
		conv:     conv,
		linker:   linker,
		guard:    guard,
		notifier: notifier,
		now:      time.Now,
	}
}

// CreateResult reports order creation including the idempotent
// already-exists outcome.
type CreateResult struct {
	Order   *models.Order
	Existed bool
	Files   []models.FileResult
}

// Create inserts a new order unless an active one already exists for the
// request, in which case the existing order is returned unchanged. Offer
// linkage is mandatory-consistent when an offer id is passed and best-effort
// when it is not.
func (s *OrderService) Create(callerID string, isAdmin bool, input models.CreateOrderRequest, files []UploadedFile) (*CreateResult, error) {
	if input.Title == "" {
		return nil, models.ErrValidation("title must not be empty")
	}

	req, err := s.requests.FindByID(input.RequestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound("request not found")
		}
		return nil, models.ErrInternal("failed to load request")
	}

	if !isAdmin {
		if req.OwnerID == callerID {
			return nil, models.ErrForbidden("the consumer side cannot create orders")
		}
		if conv, err := s.conv.repo.FindByRequestID(req.ID); err == nil {
			if conv.PartnerID != "" && conv.PartnerID != callerID {
				return nil, models.ErrForbidden("caller is not the partner of this request")
			}
		}
	}

	// Idempotency guard: an active order wins over a new insert.
	if existing, err := s.orders.FindActiveByRequest(req.ID); err == nil && existing != nil {
		return &CreateResult{Order: existing, Existed: true}, nil
	}

	var offerID *string
	if input.OfferID != "" {
		offer, err := s.offers.FindByID(input.OfferID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.ErrNotFound("offer not found")
			}
			return nil, models.ErrInternal("failed to load offer")
		}
		if offer.RequestID != req.ID {
			return nil, models.ErrConflict("offer belongs to a different request")
		}
		if offer.Status != models.OfferAccepted {
			return nil, models.ErrConflict("offer is not accepted")
		}
		offerID = &offer.ID
	} else if offer, err := s.offers.LatestAcceptedByRequest(req.ID); err == nil && offer != nil {
		// opportunistic linkage, not required
		offerID = &offer.ID
	}

	order := &models.Order{
		ID:            uuid.NewString(),
		RequestID:     req.ID,
		OfferID:       offerID,
		CreatedBy:     callerID,
		Title:         input.Title,
		NetTotal:      input.NetTotal,
		TaxRate:       input.TaxRate,
		DiscountType:  input.DiscountType,
		DiscountValue: input.DiscountValue,
		DiscountLabel: input.DiscountLabel,
		GrossTotal:    GrossTotal(input.NetTotal, input.TaxRate, input.DiscountType, input.DiscountValue),
		Status:        models.OrderCreated,
		CreatedAt:     s.now(),
	}
	inserted, err := s.orders.InsertIfNoActive(order)
	if err != nil {
		return nil, models.ErrInternal("failed to persist order")
	}
	if !inserted {
		// A concurrent creator won; hand back that order.
		existing, err := s.orders.FindActiveByRequest(req.ID)
		if err != nil || existing == nil {
			return nil, models.ErrConflict("order creation raced and lost, retry")
		}
		return &CreateResult{Order: existing, Existed: true}, nil
	}

	convID, err := s.conv.Ensure(req.ID, req.OwnerID)
	if err != nil {
		return nil, err
	}
	s.conv.AssignPartner(convID, callerID)

	results := make([]models.FileResult, 0, len(files))
	for _, f := range files {
		row, err := s.linker.StoreOrderFile(order.ID, convID, callerID, req.ID, f)
		if err != nil {
			results = append(results, models.FileResult{Name: f.Name, Error: err.Error()})
			continue
		}
		results = append(results, models.FileResult{Name: f.Name, Path: row.Path, OK: true})
	}

	s.guard.TrySet(req.ID, models.StatusCandidatesOrderCreated)

	body := fmt.Sprintf("Auftrag „%s“ über %.2f € wurde erstellt.", order.Title, order.GrossTotal)
	if err := s.conv.AppendSystemMessage(convID, body); err != nil {
		return nil, err
	}

	return &CreateResult{Order: order, Files: results}, nil
}

// Cancel moves an order to canceled while the statutory 14-day window is
// still open. Repeat cancels succeed without a second system message;
// declined orders are terminal and cannot be canceled.
func (s *OrderService) Cancel(callerID, orderID string) error {
	order, err := s.orders.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ErrNotFound("order not found")
		}
		return models.ErrInternal("failed to load order")
	}

	conv, err := s.conv.FindByRequest(order.RequestID)
	if err != nil {
		return err
	}
	if conv.ConsumerID != callerID {
		return models.ErrForbidden("only the consumer may cancel an order")
	}

	if order.Status == models.OrderCanceled {
		s.guard.TrySet(order.RequestID, models.StatusCandidatesOrderCanceled)
		return nil
	}
	if order.Status == models.OrderDeclined {
		return models.ErrConflict("a declined order cannot be canceled")
	}

	ageDays := int(s.now().Sub(order.CreatedAt).Hours() / 24)
	if ageDays > models.WithdrawalPeriodDays {
		return models.NewServiceError(409, models.CodeWithdrawalExceeded,
			fmt.Sprintf("withdrawal period exceeded: order is %d days old, limit is %d", ageDays, models.WithdrawalPeriodDays))
	}

	if err := s.orders.UpdateStatus(order.ID, models.OrderCanceled); err != nil {
		return models.ErrInternal("failed to cancel order")
	}
	s.guard.TrySet(order.RequestID, models.StatusCandidatesOrderCanceled)

	body := fmt.Sprintf("Auftrag „%s“ über %.2f € wurde storniert.", order.Title, order.GrossTotal)
	if err := s.conv.AppendSystemMessage(conv.ID, body); err != nil {
		return err
	}

	if s.notifier != nil && s.users != nil {
		if partner, err := s.users.FindByID(order.CreatedBy); err == nil {
			_ = s.notifier.NotifyOrderCanceled(partner.Email, order)
		}
	}
	return nil
}

// ListByCreator returns a partner's orders for the export route.
func (s *OrderService) ListByCreator(creatorID string) ([]models.Order, error) {
	orders, err := s.orders.ListByCreator(creatorID)
	if err != nil {
		return nil, models.ErrInternal("failed to list orders")
	}
	return orders, nil
}
