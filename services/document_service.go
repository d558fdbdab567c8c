package services

import (
	"fmt"
	"io"
	"log"
	"time"

	"craftmarket/models"
	"craftmarket/storage"
	"craftmarket/utils"

	"github.com/google/uuid"
)

// UploadedFile is the handler-agnostic view of one incoming file.
type UploadedFile struct {
	Name        string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// DocumentRepository persists file metadata and the pending-delete log.
type DocumentRepository interface {
	InsertOfferFile(f *models.OfferFile) error
	InsertOrderFile(f *models.OrderFile) error
	InsertDocument(d *models.Document) error
	DeleteOfferFile(id string) error
	DeleteOrderFile(id string) error
	ListByConversation(conversationID string) ([]models.Document, error)
	InsertPendingDelete(p *models.PendingBlobDelete) error
	ListPendingDeletes(limit int) ([]models.PendingBlobDelete, error)
	ResolvePendingDelete(id uint) error
	BumpPendingDelete(id uint) error
}

// DocumentLinker uploads a blob and records its metadata in the entity file
// table plus the generic conversation document index. There is no transaction
// spanning the blob store and the database, so a metadata failure after a
// successful upload triggers a compensating blob delete. A compensating delete
// that itself fails is written to the pending-delete log for the sweeper.
type DocumentLinker struct {
	blob storage.BlobStore
	repo DocumentRepository
	now  func() time.Time
}

func NewDocumentLinker(blob storage.BlobStore, repo DocumentRepository) *DocumentLinker {
	return &DocumentLinker{blob: blob, repo: repo, now: time.Now}
}

// storagePath builds the namespaced blob key for an upload: category folder,
// request id, random token prefix, sanitized name.
func (l *DocumentLinker) storagePath(category, requestID, name string) string {
	token := uuid.NewString()[:8]
	return models.DocumentCategoryPath(category, requestID) + "/" + token + "_" + utils.SanitizeFileName(name)
}

func (l *DocumentLinker) upload(category, requestID string, file UploadedFile) (path string, size int64, err error) {
	src, err := file.Open()
	if err != nil {
		return "", 0, models.ErrValidation("could not read uploaded file " + file.Name)
	}
	defer src.Close()

	path = l.storagePath(category, requestID, file.Name)
	size, err = l.blob.Upload(path, src)
	if err != nil {
		return "", 0, models.ErrUpstream("blob upload failed for " + file.Name)
	}
	return path, size, nil
}

// compensate removes a blob whose metadata writes did not land. If the delete
// itself fails the path goes into the pending-delete log so the cron sweeper
// can retry; the orphan must not survive silently.
func (l *DocumentLinker) compensate(path, reason string) {
	if err := l.blob.Delete(path); err == nil {
		return
	}
	pending := &models.PendingBlobDelete{Path: path, Reason: reason, CreatedAt: l.now()}
	if err := l.repo.InsertPendingDelete(pending); err != nil {
		log.Printf("document linker: failed to record pending delete for %s: %v", path, err)
	}
}

// StoreOfferFile uploads one offer attachment and links it in offer_files and
// conversation_documents. Either insert failing undoes everything for this file.
func (l *DocumentLinker) StoreOfferFile(offerID, conversationID, uploaderID, requestID string, file UploadedFile) (*models.OfferFile, error) {
	path, size, err := l.upload("angebot", requestID, file)
	if err != nil {
		return nil, err
	}

	row := &models.OfferFile{
		ID:          uuid.NewString(),
		OfferID:     offerID,
		Path:        path,
		Name:        file.Name,
		Size:        size,
		ContentType: file.ContentType,
		CreatedAt:   l.now(),
	}
	if err := l.repo.InsertOfferFile(row); err != nil {
		l.compensate(path, "offer_files insert failed")
		return nil, models.ErrUpstream("failed to link offer file " + file.Name)
	}
	if err := l.linkDocument(conversationID, uploaderID, "angebot", row.Path, row.Name, row.Size, row.ContentType); err != nil {
		_ = l.repo.DeleteOfferFile(row.ID)
		l.compensate(path, "conversation_documents insert failed")
		return nil, models.ErrUpstream("failed to index offer file " + file.Name)
	}
	return row, nil
}

// StoreOrderFile is the order-scoped counterpart of StoreOfferFile.
func (l *DocumentLinker) StoreOrderFile(orderID, conversationID, uploaderID, requestID string, file UploadedFile) (*models.OrderFile, error) {
	path, size, err := l.upload("auftrag", requestID, file)
	if err != nil {
		return nil, err
	}

	row := &models.OrderFile{
		ID:          uuid.NewString(),
		OrderID:     orderID,
		Path:        path,
		Name:        file.Name,
		Size:        size,
		ContentType: file.ContentType,
		CreatedAt:   l.now(),
	}
	if err := l.repo.InsertOrderFile(row); err != nil {
		l.compensate(path, "order_files insert failed")
		return nil, models.ErrUpstream("failed to link order file " + file.Name)
	}
	if err := l.linkDocument(conversationID, uploaderID, "auftrag", row.Path, row.Name, row.Size, row.ContentType); err != nil {
		_ = l.repo.DeleteOrderFile(row.ID)
		l.compensate(path, "conversation_documents insert failed")
		return nil, models.ErrUpstream("failed to index order file " + file.Name)
	}
	return row, nil
}

// StoreDocument uploads a standalone conversation document (generic upload
// endpoint, no offer/order linkage).
func (l *DocumentLinker) StoreDocument(conversationID, uploaderID, requestID, category string, file UploadedFile) (*models.Document, error) {
	path, size, err := l.upload(category, requestID, file)
	if err != nil {
		return nil, err
	}
	doc := &models.Document{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		UploadedBy:     uploaderID,
		Path:           path,
		Name:           file.Name,
		Size:           size,
		ContentType:    file.ContentType,
		Category:       category,
		CreatedAt:      l.now(),
	}
	if err := l.repo.InsertDocument(doc); err != nil {
		l.compensate(path, "conversation_documents insert failed")
		return nil, models.ErrUpstream("failed to index document " + file.Name)
	}
	return doc, nil
}

func (l *DocumentLinker) linkDocument(conversationID, uploaderID, category, path, name string, size int64, contentType string) error {
	return l.repo.InsertDocument(&models.Document{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		UploadedBy:     uploaderID,
		Path:           path,
		Name:           name,
		Size:           size,
		ContentType:    contentType,
		Category:       category,
		CreatedAt:      l.now(),
	})
}

// ListDocuments returns the document index of a conversation.
func (l *DocumentLinker) ListDocuments(conversationID string) ([]models.Document, error) {
	docs, err := l.repo.ListByConversation(conversationID)
	if err != nil {
		return nil, models.ErrInternal("failed to list documents")
	}
	return docs, nil
}

// SweepPendingDeletes retries logged compensating deletes. Called from cron.
func (l *DocumentLinker) SweepPendingDeletes() error {
	pending, err := l.repo.ListPendingDeletes(100)
	if err != nil {
		return fmt.Errorf("failed to list pending deletes: %w", err)
	}
	for _, p := range pending {
		if err := l.blob.Delete(p.Path); err != nil {
			log.Printf("pending delete sweep: %s still failing (attempt %d): %v", p.Path, p.Attempts+1, err)
			_ = l.repo.BumpPendingDelete(p.ID)
			continue
		}
		_ = l.repo.ResolvePendingDelete(p.ID)
	}
	return nil
}
