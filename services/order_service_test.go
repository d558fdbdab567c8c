package services

import (
	"testing"
	"time"

	"craftmarket/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderFixture struct {
	orders   *fakeOrderRepo
	offers   *fakeOfferRepo
	convRepo *memConversationRepo
	guard    *recordingGuard
	notifier *recordingNotifier
	svc      *OrderService
}

func newOrderFixture(req *models.Request) *orderFixture {
	f := &orderFixture{
		orders:   &fakeOrderRepo{},
		offers:   &fakeOfferRepo{},
		convRepo: &memConversationRepo{},
		guard:    &recordingGuard{},
		notifier: &recordingNotifier{},
	}
	requests := &fakeRequestRepo{findByID: func(id string) (*models.Request, error) {
		copied := *req
		return &copied, nil
	}}
	users := &fakeUserRepo{users: map[string]*models.User{
		"c1": {ID: "c1", Email: "owner@example.com"},
		"p1": {ID: "p1", Email: "partner@example.com"},
	}}
	conv := NewConversationService(f.convRepo, requests)
	linker := NewDocumentLinker(&fakeBlob{}, &fakeDocumentRepo{})
	f.svc = NewOrderService(f.orders, f.offers, requests, users, conv, linker, f.guard, f.notifier)
	return f
}

func orderInput() models.CreateOrderRequest {
	return models.CreateOrderRequest{
		RequestID: "r1",
		Title:     "Badsanierung Auftrag",
		NetTotal:  250,
		TaxRate:   7,
	}
}

func TestCreateOrder(t *testing.T) {
	f := newOrderFixture(&models.Request{ID: "r1", OwnerID: "c1", Status: "Angebot angenommen"})

	res, err := f.svc.Create("p1", false, orderInput(), nil)
	require.NoError(t, err)

	assert.False(t, res.Existed)
	assert.Equal(t, models.OrderCreated, res.Order.Status)
	assert.InDelta(t, 267.50, res.Order.GrossTotal, 0.001)
	require.Len(t, f.orders.inserted, 1)
	assert.Equal(t, models.StatusCandidatesOrderCreated, f.guard.lastCandidates())
	require.Len(t, f.convRepo.systemMessages(), 1)
	assert.Contains(t, f.convRepo.systemMessages()[0].Body, "Badsanierung Auftrag")
}

func TestCreateOrderReturnsExistingActive(t *testing.T) {
	f := newOrderFixture(&models.Request{ID: "r1", OwnerID: "c1"})
	existing := &models.Order{ID: "o-old", RequestID: "r1", Status: models.OrderCreated}
	f.orders.findActive = func(requestID string) (*models.Order, error) { return existing, nil }

	res, err := f.svc.Create("p1", false, orderInput(), nil)
	require.NoError(t, err)

	assert.True(t, res.Existed)
	assert.Equal(t, "o-old", res.Order.ID)
	assert.Empty(t, f.orders.inserted)
	assert.Empty(t, f.convRepo.systemMessages())
	assert.Empty(t, f.guard.requests)
}

func TestCreateOrderRaceReturnsWinner(t *testing.T) {
	f := newOrderFixture(&models.Request{ID: "r1", OwnerID: "c1"})
	winner := &models.Order{ID: "o-winner", RequestID: "r1", Status: models.OrderCreated}
	calls := 0
	f.orders.findActive = func(requestID string) (*models.Order, error) {
		calls++
		if calls == 1 {
			return nil, nil // nothing active yet when we check
		}
		return winner, nil // the concurrent creator landed in between
	}
	f.orders.insertIfNoActive = func(o *models.Order) (bool, error) { return false, nil }

	res, err := f.svc.Create("p1", false, orderInput(), nil)
	require.NoError(t, err)

	assert.True(t, res.Existed)
	assert.Equal(t, "o-winner", res.Order.ID)
	assert.Empty(t, f.convRepo.systemMessages())
}

func TestCreateOrderForbiddenForConsumer(t *testing.T) {
	f := newOrderFixture(&models.Request{ID: "r1", OwnerID: "c1"})

	_, err := f.svc.Create("c1", false, orderInput(), nil)

	var se *models.ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, models.CodeForbidden, se.Code)
}

func TestCreateOrderAdminBypassesPartnerCheck(t *testing.T) {
	f := newOrderFixture(&models.Request{ID: "r1", OwnerID: "c1"})
	f.convRepo.conv = &models.Conversation{ID: "conv1", RequestID: "r1", ConsumerID: "c1", PartnerID: "p1"}

	res, err := f.svc.Create("admin-1", true, orderInput(), nil)
	require.NoError(t, err)

	assert.False(t, res.Existed)
}

func TestCreateOrderRejectsOfferOfOtherRequest(t *testing.T) {
	f := newOrderFixture(&models.Request{ID: "r1", OwnerID: "c1"})
	f.offers.findByID = func(id string) (*models.Offer, error) {
		return &models.Offer{ID: id, RequestID: "r2", Status: models.OfferAccepted}, nil
	}
	input := orderInput()
	input.OfferID = "off1"

	_, err := f.svc.Create("p1", false, input, nil)

	var se *models.ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, models.CodeConflict, se.Code)
}

func TestCreateOrderRejectsUnacceptedOffer(t *testing.T) {
	f := newOrderFixture(&models.Request{ID: "r1", OwnerID: "c1"})
	f.offers.findByID = func(id string) (*models.Offer, error) {
		return &models.Offer{ID: id, RequestID: "r1", Status: models.OfferCreated}, nil
	}
	input := orderInput()
	input.OfferID = "off1"

	_, err := f.svc.Create("p1", false, input, nil)

	var se *models.ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, models.CodeConflict, se.Code)
}

func TestCreateOrderLinksLatestAcceptedOffer(t *testing.T) {
	f := newOrderFixture(&models.Request{ID: "r1", OwnerID: "c1"})
	f.offers.latestAccepted = func(requestID string) (*models.Offer, error) {
		return &models.Offer{ID: "off-accepted", RequestID: requestID, Status: models.OfferAccepted}, nil
	}

	res, err := f.svc.Create("p1", false, orderInput(), nil)
	require.NoError(t, err)

	require.NotNil(t, res.Order.OfferID)
	assert.Equal(t, "off-accepted", *res.Order.OfferID)
}

func cancelFixture(status string, createdAt time.Time) *orderFixture {
	f := newOrderFixture(&models.Request{ID: "r1", OwnerID: "c1"})
	f.orders.findByID = func(id string) (*models.Order, error) {
		return &models.Order{
			ID: id, RequestID: "r1", CreatedBy: "p1",
			Title: "Badsanierung Auftrag", GrossTotal: 267.50,
			Status: status, CreatedAt: createdAt,
		}, nil
	}
	f.convRepo.conv = &models.Conversation{ID: "conv1", RequestID: "r1", ConsumerID: "c1", PartnerID: "p1"}
	return f
}

func TestCancelOrderWithinWindow(t *testing.T) {
	now := time.Date(2025, 3, 20, 10, 0, 0, 0, time.UTC)
	f := cancelFixture(models.OrderCreated, now.AddDate(0, 0, -13))
	f.svc.now = func() time.Time { return now }

	err := f.svc.Cancel("c1", "o1")
	require.NoError(t, err)

	assert.Equal(t, []string{"o1:canceled"}, f.orders.statusUpdates)
	assert.Equal(t, models.StatusCandidatesOrderCanceled, f.guard.lastCandidates())
	require.Len(t, f.convRepo.systemMessages(), 1)
	assert.Contains(t, f.convRepo.systemMessages()[0].Body, "storniert")
	assert.Equal(t, []string{"partner@example.com"}, f.notifier.orderMails)
}

func TestCancelOrderOnFourteenthDay(t *testing.T) {
	// 14 days and a few hours still counts as day 14 and stays cancelable.
	now := time.Date(2025, 3, 20, 10, 0, 0, 0, time.UTC)
	f := cancelFixture(models.OrderCreated, now.Add(-14*24*time.Hour-3*time.Hour))
	f.svc.now = func() time.Time { return now }

	err := f.svc.Cancel("c1", "o1")

	require.NoError(t, err)
	assert.Equal(t, []string{"o1:canceled"}, f.orders.statusUpdates)
}

func TestCancelOrderPastWindow(t *testing.T) {
	now := time.Date(2025, 3, 20, 10, 0, 0, 0, time.UTC)
	f := cancelFixture(models.OrderCreated, now.AddDate(0, 0, -15))
	f.svc.now = func() time.Time { return now }

	err := f.svc.Cancel("c1", "o1")

	var se *models.ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, models.CodeWithdrawalExceeded, se.Code)
	assert.Equal(t, 409, se.Status)
	assert.Contains(t, se.Message, "15 days old")
	assert.Empty(t, f.orders.statusUpdates)
}

func TestCancelOrderAgainIsIdempotent(t *testing.T) {
	f := cancelFixture(models.OrderCanceled, time.Now().AddDate(0, 0, -2))

	err := f.svc.Cancel("c1", "o1")
	require.NoError(t, err)

	assert.Empty(t, f.orders.statusUpdates)
	assert.Empty(t, f.convRepo.systemMessages())
	assert.Equal(t, models.StatusCandidatesOrderCanceled, f.guard.lastCandidates())
}

func TestCancelDeclinedOrderConflicts(t *testing.T) {
	f := cancelFixture(models.OrderDeclined, time.Now().AddDate(0, 0, -2))

	err := f.svc.Cancel("c1", "o1")

	var se *models.ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, models.CodeConflict, se.Code)
}

func TestCancelOrderOnlyByConsumer(t *testing.T) {
	f := cancelFixture(models.OrderCreated, time.Now().AddDate(0, 0, -2))

	err := f.svc.Cancel("p1", "o1")

	var se *models.ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, models.CodeForbidden, se.Code)
}
