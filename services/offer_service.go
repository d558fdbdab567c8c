package services

import (
	"errors"
	"fmt"
	"time"

	"craftmarket/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OfferRepository persists priced offers.
type OfferRepository interface {
	FindByID(id string) (*models.Offer, error)
	Insert(o *models.Offer) error
	UpdateStatus(id, status string) error
	LatestAcceptedByRequest(requestID string) (*models.Offer, error)
	ListFiles(offerID string) ([]models.OfferFile, error)
}

// UserRepository resolves the slice of user data the engines need.
type UserRepository interface {
	FindByID(id string) (*models.User, error)
}

// OfferService computes and persists priced offers and drives the
// accept/decline transitions.
type OfferService struct {
	offers   OfferRepository
	requests RequestRepository
	users    UserRepository
	conv     *ConversationService
	linker   *DocumentLinker
	guard    StatusSetter
	notifier Notifier
	now      func() time.Time
}

func NewOfferService(offers OfferRepository, requests RequestRepository, users UserRepository, conv *ConversationService, linker *DocumentLinker, guard StatusSetter, notifier Notifier) *OfferService {
	return &OfferService{
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

// Create validates the input, persists the offer, attaches files one by one
// (each with its own upload/link/compensate cycle), posts exactly one system
// message and promotes the request status. File failures do not abort the
// offer; they are reported per file in the returned results.
func (s *OfferService) Create(callerID string, input models.CreateOfferRequest, files []UploadedFile) (*models.Offer, []models.FileResult, error) {
	if input.Title == "" {
		return nil, nil, models.ErrValidation("title must not be empty")
	}
	if len(files) == 0 {
		return nil, nil, models.ErrValidation("at least one file must be attached")
	}

	req, err := s.requests.FindByID(input.RequestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, models.ErrNotFound("request not found")
		}
		return nil, nil, models.ErrInternal("failed to load request")
	}

	// The creating partner must be the conversation's partner once one is
	// assigned. Before that (direct offer without prior application) any
	// non-owner may step in and becomes the partner.
	if conv, err := s.conv.repo.FindByRequestID(req.ID); err == nil {
		if conv.PartnerID != "" && conv.PartnerID != callerID {
			return nil, nil, models.ErrForbidden("caller is not the partner of this request")
		}
	}
	if req.OwnerID == callerID {
		return nil, nil, models.ErrForbidden("request owner cannot create an offer on the own request")
	}

	offer := &models.Offer{
		ID:            uuid.NewString(),
		RequestID:     req.ID,
		CreatedBy:     callerID,
		Title:         input.Title,
		NetTotal:      input.NetTotal,
		TaxRate:       input.TaxRate,
		DiscountType:  input.DiscountType,
		DiscountValue: input.DiscountValue,
		DiscountLabel: input.DiscountLabel,
		GrossTotal:    GrossTotal(input.NetTotal, input.TaxRate, input.DiscountType, input.DiscountValue),
		Status:        models.OfferCreated,
		SignatureID:   uuid.NewString(),
		CreatedAt:     s.now(),
	}
	if err := s.offers.Insert(offer); err != nil {
		return nil, nil, models.ErrInternal("failed to persist offer")
	}

	convID, err := s.conv.Ensure(req.ID, req.OwnerID)
	if err != nil {
		return nil, nil, err
	}
	s.conv.AssignPartner(convID, callerID)

	results := make([]models.FileResult, 0, len(files))
	for _, f := range files {
		row, err := s.linker.StoreOfferFile(offer.ID, convID, callerID, req.ID, f)
		if err != nil {
			results = append(results, models.FileResult{Name: f.Name, Error: err.Error()})
			continue
		}
		results = append(results, models.FileResult{Name: f.Name, Path: row.Path, OK: true})
	}

	body := fmt.Sprintf("Neues Angebot „%s“ über %.2f € wurde erstellt.", offer.Title, offer.GrossTotal)
	if err := s.conv.AppendSystemMessage(convID, body); err != nil {
		return nil, nil, err
	}

	s.guard.TrySet(req.ID, models.StatusCandidatesOfferCreated)

	s.notifyOwner(req.OwnerID, func(email string) error {
		return s.notifier.NotifyOfferCreated(email, offer)
	})

	return offer, results, nil
}

// Accept flips the offer to accepted. Only the conversation's consumer may
// accept. Re-accepting an accepted offer re-applies the request promotion and
// succeeds without a duplicate system message.
func (s *OfferService) Accept(callerID, offerID string) (string, error) {
	offer, conv, err := s.loadOfferWithConversation(offerID)
	if err != nil {
		return "", err
	}
	if conv.ConsumerID != callerID {
		return "", models.ErrForbidden("only the consumer may accept an offer")
	}

	switch offer.Status {
	case models.OfferDeclined:
		return "", models.ErrConflict("offer already declined")
	case models.OfferAccepted:
		s.guard.TrySet(offer.RequestID, models.StatusCandidatesOfferAccepted)
		return models.OfferAccepted, nil
	}

	if err := s.offers.UpdateStatus(offer.ID, models.OfferAccepted); err != nil {
		return "", models.ErrInternal("failed to accept offer")
	}
	s.guard.TrySet(offer.RequestID, models.StatusCandidatesOfferAccepted)

	body := fmt.Sprintf("Angebot „%s“ über %.2f € wurde angenommen.", offer.Title, offer.GrossTotal)
	if err := s.conv.AppendSystemMessage(conv.ID, body); err != nil {
		return "", err
	}
	return models.OfferAccepted, nil
}

// Decline flips the offer to declined. Permitted from created and, as an
// explicit reversal (storno), from accepted. Repeat declines succeed without
// a duplicate message.
func (s *OfferService) Decline(callerID, offerID string) (string, error) {
	offer, conv, err := s.loadOfferWithConversation(offerID)
	if err != nil {
		return "", err
	}
	if conv.ConsumerID != callerID {
		return "", models.ErrForbidden("only the consumer may decline an offer")
	}

	if offer.Status == models.OfferDeclined {
		s.guard.TrySet(offer.RequestID, models.StatusCandidatesActive)
		return models.OfferDeclined, nil
	}

	if err := s.offers.UpdateStatus(offer.ID, models.OfferDeclined); err != nil {
		return "", models.ErrInternal("failed to decline offer")
	}
	s.guard.TrySet(offer.RequestID, models.StatusCandidatesActive)

	body := fmt.Sprintf("Angebot „%s“ wurde abgelehnt.", offer.Title)
	if err := s.conv.AppendSystemMessage(conv.ID, body); err != nil {
		return "", err
	}
	return models.OfferDeclined, nil
}

// Get returns an offer with its files for display and PDF rendering.
func (s *OfferService) Get(offerID string) (*models.Offer, []models.OfferFile, error) {
	offer, err := s.offers.FindByID(offerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, models.ErrNotFound("offer not found")
		}
		return nil, nil, models.ErrInternal("failed to load offer")
	}
	files, err := s.offers.ListFiles(offerID)
	if err != nil {
		return nil, nil, models.ErrInternal("failed to load offer files")
	}
	return offer, files, nil
}

func (s *OfferService) loadOfferWithConversation(offerID string) (*models.Offer, *models.Conversation, error) {
	offer, err := s.offers.FindByID(offerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, models.ErrNotFound("offer not found")
		}
		return nil, nil, models.ErrInternal("failed to load offer")
	}
	conv, err := s.conv.FindByRequest(offer.RequestID)
	if err != nil {
		return nil, nil, err
	}
	return offer, conv, nil
}

// notifyOwner resolves the owner's email and fires the notification
// best-effort. Delivery problems never surface to the caller.
func (s *OfferService) notifyOwner(ownerID string, send func(email string) error) {
	if s.notifier == nil || s.users == nil {
		return
	}
	owner, err := s.users.FindByID(ownerID)
	if err != nil {
		return
	}
	if err := send(owner.Email); err != nil {
		// logged inside the notifier
		return
	}
}
