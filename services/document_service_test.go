package services

import (
	"errors"
	"strings"
	"testing"

	"craftmarket/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingDelete(id uint, path string) models.PendingBlobDelete {
	return models.PendingBlobDelete{ID: id, Path: path}
}

func TestStoreOfferFileLinksBothTables(t *testing.T) {
	blob := &fakeBlob{}
	repo := &fakeDocumentRepo{}
	linker := NewDocumentLinker(blob, repo)

	row, err := linker.StoreOfferFile("off1", "conv1", "p1", "r1", testFile("Rechnung März.pdf", "pdf"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(row.Path, "chat/angebot/r1/"))
	assert.True(t, strings.HasSuffix(row.Path, "_rechnung_marz.pdf"))
	assert.Equal(t, int64(3), row.Size)

	require.Len(t, repo.offerFiles, 1)
	require.Len(t, repo.documents, 1)
	assert.Equal(t, "angebot", repo.documents[0].Category)
	assert.Equal(t, row.Path, repo.documents[0].Path)
	assert.Equal(t, []string{row.Path}, blob.uploads)
	assert.Empty(t, blob.deletes)
}

func TestStoreOfferFileCompensatesOnLinkFailure(t *testing.T) {
	blob := &fakeBlob{}
	repo := &fakeDocumentRepo{insertDocumentErr: errors.New("db down")}
	linker := NewDocumentLinker(blob, repo)

	_, err := linker.StoreOfferFile("off1", "conv1", "p1", "r1", testFile("a.pdf", "pdf"))
	require.Error(t, err)

	// The offer_files row is rolled back and the blob removed.
	require.Len(t, repo.offerFiles, 1)
	require.Len(t, repo.deletedOfferFiles, 1)
	assert.Equal(t, repo.offerFiles[0].ID, repo.deletedOfferFiles[0])
	require.Len(t, blob.deletes, 1)
	assert.Equal(t, blob.uploads, blob.deletes)
	assert.Empty(t, repo.pending)
}

func TestStoreOrderFileCompensatesOnInsertFailure(t *testing.T) {
	blob := &fakeBlob{}
	repo := &fakeDocumentRepo{insertOrderFileErr: errors.New("db down")}
	linker := NewDocumentLinker(blob, repo)

	_, err := linker.StoreOrderFile("ord1", "conv1", "p1", "r1", testFile("a.pdf", "pdf"))
	require.Error(t, err)

	assert.Empty(t, repo.orderFiles)
	require.Len(t, blob.deletes, 1)
}

func TestFailedCompensationLandsInPendingLog(t *testing.T) {
	blob := &fakeBlob{deleteFn: func(path string) error { return errors.New("nfs gone") }}
	repo := &fakeDocumentRepo{insertDocumentErr: errors.New("db down")}
	linker := NewDocumentLinker(blob, repo)

	_, err := linker.StoreDocument("conv1", "u1", "r1", "allgemein", testFile("a.pdf", "pdf"))
	require.Error(t, err)

	require.Len(t, repo.pending, 1)
	assert.Equal(t, blob.uploads[0], repo.pending[0].Path)
	assert.NotEmpty(t, repo.pending[0].Reason)
}

func TestStoreDocumentUsesCategoryFolder(t *testing.T) {
	blob := &fakeBlob{}
	repo := &fakeDocumentRepo{}
	linker := NewDocumentLinker(blob, repo)

	doc, err := linker.StoreDocument("conv1", "u1", "r1", "rechnung", testFile("a.pdf", "pdf"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(doc.Path, "chat/rechnung/r1/"))
	assert.Equal(t, "rechnung", doc.Category)
}

func TestSweepPendingDeletesResolvesAndBumps(t *testing.T) {
	blob := &fakeBlob{deleteFn: func(path string) error {
		if path == "chat/r1/bad.pdf" {
			return errors.New("still failing")
		}
		return nil
	}}
	repo := &fakeDocumentRepo{}
	repo.pending = append(repo.pending,
		pendingDelete(1, "chat/r1/good.pdf"),
		pendingDelete(2, "chat/r1/bad.pdf"),
	)
	linker := NewDocumentLinker(blob, repo)

	err := linker.SweepPendingDeletes()
	require.NoError(t, err)

	assert.Equal(t, []uint{1}, repo.resolved)
	assert.Equal(t, []uint{2}, repo.bumped)
}
