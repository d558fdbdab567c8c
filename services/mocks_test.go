package services

import (
	"errors"
	"io"
	"strings"
	"time"

	"craftmarket/models"

	"gorm.io/gorm"
)

// Function-field fakes for the repository interfaces. Tests set only the
// fields they exercise; unset readers fall back to "not found".

type fakeRequestRepo struct {
	findByID    func(id string) (*models.Request, error)
	insert      func(req *models.Request) error
	listByOwner func(ownerID string) ([]models.Request, error)
}

func (f *fakeRequestRepo) FindByID(id string) (*models.Request, error) {
	if f.findByID == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.findByID(id)
}

func (f *fakeRequestRepo) Insert(req *models.Request) error {
	if f.insert == nil {
		return nil
	}
	return f.insert(req)
}

func (f *fakeRequestRepo) ListByOwner(ownerID string) ([]models.Request, error) {
	if f.listByOwner == nil {
		return nil, nil
	}
	return f.listByOwner(ownerID)
}

type fakeApplicationRepo struct {
	findByID            func(id string) (*models.Application, error)
	listByRequest       func(requestID string) ([]models.Application, error)
	countAcceptedExcept func(requestID, exceptID string) (int64, error)

	statusUpdates    []string // "id:status" in call order
	declinedSiblings []string // "requestID:acceptedID"
	updateErr        error
}

func (f *fakeApplicationRepo) FindByID(id string) (*models.Application, error) {
	if f.findByID == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.findByID(id)
}

func (f *fakeApplicationRepo) ListByRequest(requestID string) ([]models.Application, error) {
	if f.listByRequest == nil {
		return nil, nil
	}
	return f.listByRequest(requestID)
}

func (f *fakeApplicationRepo) UpdateStatus(id, status string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.statusUpdates = append(f.statusUpdates, id+":"+status)
	return nil
}

func (f *fakeApplicationRepo) DeclineSiblings(requestID, acceptedID string) error {
	f.declinedSiblings = append(f.declinedSiblings, requestID+":"+acceptedID)
	return nil
}

func (f *fakeApplicationRepo) CountAcceptedExcept(requestID, exceptID string) (int64, error) {
	if f.countAcceptedExcept == nil {
		return 0, nil
	}
	return f.countAcceptedExcept(requestID, exceptID)
}

type fakeOfferRepo struct {
	findByID       func(id string) (*models.Offer, error)
	latestAccepted func(requestID string) (*models.Offer, error)
	listFiles      func(offerID string) ([]models.OfferFile, error)

	inserted      []*models.Offer
	statusUpdates []string
	insertErr     error
}

func (f *fakeOfferRepo) FindByID(id string) (*models.Offer, error) {
	if f.findByID == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.findByID(id)
}

func (f *fakeOfferRepo) Insert(o *models.Offer) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, o)
	return nil
}

func (f *fakeOfferRepo) UpdateStatus(id, status string) error {
	f.statusUpdates = append(f.statusUpdates, id+":"+status)
	return nil
}

func (f *fakeOfferRepo) LatestAcceptedByRequest(requestID string) (*models.Offer, error) {
	if f.latestAccepted == nil {
		return nil, nil
	}
	return f.latestAccepted(requestID)
}

func (f *fakeOfferRepo) ListFiles(offerID string) ([]models.OfferFile, error) {
	if f.listFiles == nil {
		return nil, nil
	}
	return f.listFiles(offerID)
}

type fakeOrderRepo struct {
	findByID         func(id string) (*models.Order, error)
	findActive       func(requestID string) (*models.Order, error)
	insertIfNoActive func(o *models.Order) (bool, error)
	listByCreator    func(creatorID string) ([]models.Order, error)

	inserted      []*models.Order
	statusUpdates []string
}

func (f *fakeOrderRepo) FindByID(id string) (*models.Order, error) {
	if f.findByID == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.findByID(id)
}

func (f *fakeOrderRepo) FindActiveByRequest(requestID string) (*models.Order, error) {
	if f.findActive == nil {
		return nil, nil
	}
	return f.findActive(requestID)
}

func (f *fakeOrderRepo) InsertIfNoActive(o *models.Order) (bool, error) {
	if f.insertIfNoActive != nil {
		return f.insertIfNoActive(o)
	}
	f.inserted = append(f.inserted, o)
	return true, nil
}

func (f *fakeOrderRepo) UpdateStatus(id, status string) error {
	f.statusUpdates = append(f.statusUpdates, id+":"+status)
	return nil
}

func (f *fakeOrderRepo) ListByCreator(creatorID string) ([]models.Order, error) {
	if f.listByCreator == nil {
		return nil, nil
	}
	return f.listByCreator(creatorID)
}

type fakeUserRepo struct {
	users map[string]*models.User
}

func (f *fakeUserRepo) FindByID(id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// memConversationRepo is a stateful single-conversation store. It mirrors the
// real conditional-insert semantics: the first insert wins, later ones are
// ignored.
type memConversationRepo struct {
	conv     *models.Conversation
	messages []models.Message
	touched  int
}

func (m *memConversationRepo) FindByRequestID(requestID string) (*models.Conversation, error) {
	if m.conv == nil || m.conv.RequestID != requestID {
		return nil, gorm.ErrRecordNotFound
	}
	return m.conv, nil
}

func (m *memConversationRepo) InsertIfAbsent(conv *models.Conversation) error {
	if m.conv == nil {
		m.conv = conv
	}
	return nil
}

func (m *memConversationRepo) SetPartnerIfEmpty(conversationID, partnerID string) error {
	if m.conv != nil && m.conv.ID == conversationID && m.conv.PartnerID == "" {
		m.conv.PartnerID = partnerID
	}
	return nil
}

func (m *memConversationRepo) InsertMessage(msg *models.Message) error {
	m.messages = append(m.messages, *msg)
	return nil
}

func (m *memConversationRepo) TouchLastMessage(conversationID string, at time.Time) error {
	m.touched++
	if m.conv != nil && m.conv.ID == conversationID {
		m.conv.LastMessageAt = at
	}
	return nil
}

func (m *memConversationRepo) ListMessages(conversationID string) ([]models.Message, error) {
	return m.messages, nil
}

func (m *memConversationRepo) systemMessages() []models.Message {
	var out []models.Message
	for _, msg := range m.messages {
		if msg.System {
			out = append(out, msg)
		}
	}
	return out
}

// recordingGuard notes every promotion attempt and accepts them all.
type recordingGuard struct {
	requests   []string
	candidates [][]string
}

func (g *recordingGuard) TrySet(requestID string, candidates []string) bool {
	g.requests = append(g.requests, requestID)
	g.candidates = append(g.candidates, candidates)
	return true
}

func (g *recordingGuard) lastCandidates() []string {
	if len(g.candidates) == 0 {
		return nil
	}
	return g.candidates[len(g.candidates)-1]
}

type recordingNotifier struct {
	offerMails []string
	orderMails []string
}

func (n *recordingNotifier) NotifyOfferCreated(to string, offer *models.Offer) error {
	n.offerMails = append(n.offerMails, to)
	return nil
}

func (n *recordingNotifier) NotifyOrderCanceled(to string, order *models.Order) error {
	n.orderMails = append(n.orderMails, to)
	return nil
}

// fakeBlob implements storage.BlobStore in memory.
type fakeBlob struct {
	uploads   []string
	deletes   []string
	uploadErr error
	deleteFn  func(path string) error
}

func (b *fakeBlob) Upload(path string, r io.Reader) (int64, error) {
	if b.uploadErr != nil {
		return 0, b.uploadErr
	}
	n, err := io.Copy(io.Discard, r)
	if err != nil {
		return 0, err
	}
	b.uploads = append(b.uploads, path)
	return n, nil
}

func (b *fakeBlob) Delete(path string) error {
	if b.deleteFn != nil {
		if err := b.deleteFn(path); err != nil {
			return err
		}
	}
	b.deletes = append(b.deletes, path)
	return nil
}

func (b *fakeBlob) Open(path string) (io.ReadCloser, error) {
	return nil, errors.New("not stored")
}

func (b *fakeBlob) Exists(path string) bool { return false }

func (b *fakeBlob) SignedURL(path string, ttl time.Duration) (string, error) {
	return "http://test/files?path=" + path, nil
}

func (b *fakeBlob) VerifySignedToken(token string) (string, error) {
	return "", errors.New("not implemented")
}

type fakeDocumentRepo struct {
	offerFiles []models.OfferFile
	orderFiles []models.OrderFile
	documents  []models.Document
	pending    []models.PendingBlobDelete

	deletedOfferFiles []string
	deletedOrderFiles []string
	resolved          []uint
	bumped            []uint

	insertOfferFileErr error
	insertOrderFileErr error
	insertDocumentErr  error
}

func (f *fakeDocumentRepo) InsertOfferFile(file *models.OfferFile) error {
	if f.insertOfferFileErr != nil {
		return f.insertOfferFileErr
	}
	f.offerFiles = append(f.offerFiles, *file)
	return nil
}

func (f *fakeDocumentRepo) InsertOrderFile(file *models.OrderFile) error {
	if f.insertOrderFileErr != nil {
		return f.insertOrderFileErr
	}
	f.orderFiles = append(f.orderFiles, *file)
	return nil
}

func (f *fakeDocumentRepo) InsertDocument(d *models.Document) error {
	if f.insertDocumentErr != nil {
		return f.insertDocumentErr
	}
	f.documents = append(f.documents, *d)
	return nil
}

func (f *fakeDocumentRepo) DeleteOfferFile(id string) error {
	f.deletedOfferFiles = append(f.deletedOfferFiles, id)
	return nil
}

func (f *fakeDocumentRepo) DeleteOrderFile(id string) error {
	f.deletedOrderFiles = append(f.deletedOrderFiles, id)
	return nil
}

func (f *fakeDocumentRepo) ListByConversation(conversationID string) ([]models.Document, error) {
	return f.documents, nil
}

func (f *fakeDocumentRepo) InsertPendingDelete(p *models.PendingBlobDelete) error {
	f.pending = append(f.pending, *p)
	return nil
}

func (f *fakeDocumentRepo) ListPendingDeletes(limit int) ([]models.PendingBlobDelete, error) {
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeDocumentRepo) ResolvePendingDelete(id uint) error {
	f.resolved = append(f.resolved, id)
	return nil
}

func (f *fakeDocumentRepo) BumpPendingDelete(id uint) error {
	f.bumped = append(f.bumped, id)
	return nil
}

func testFile(name, content string) UploadedFile {
	return UploadedFile{
		Name:        name,
		ContentType: "application/octet-stream",
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}
