package handlers

import (
	"io"
	"net/http"
	"time"

	"craftmarket/models"
	"craftmarket/services"
	"craftmarket/storage"

	"github.com/gin-gonic/gin"
)

var documentCategories = map[string]bool{
	"allgemein": true,
	"angebot":   true,
	"auftrag":   true,
	"rechnung":  true,
}

// UploadRequestDocument godoc
// @Summary      Upload a document into the request conversation
// @Tags         documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        id        path      string  true   "Request ID"
// @Param        category  formData  string  false  "allgemein | angebot | auftrag | rechnung"
// @Param        file      formData  file    true   "Document"
// @Success      200  {object}  models.DocumentResponse
// @Failure      400  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/requests/{id}/documents [post]
func UploadRequestDocument(conv *services.ConversationService, linker *services.DocumentLinker, blob storage.BlobStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.Param("id")
		callerID := c.GetString("userID")

		category := c.PostForm("category")
		if category == "" {
			category = "allgemein"
		}
		if !documentCategories[category] {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "unknown document category", Code: models.CodeValidation})
			return
		}

		header, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "file is required", Code: models.CodeValidation})
			return
		}

		conversationID, err := conv.Ensure(requestID, callerID)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		doc, err := linker.StoreDocument(conversationID, callerID, requestID, category, services.UploadedFile{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Open: func() (io.ReadCloser, error) {
				return header.Open()
			},
		})
		if err != nil {
			respondServiceError(c, err)
			return
		}

		signedURL, _ := blob.SignedURL(doc.Path, time.Hour)
		c.JSON(http.StatusOK, models.DocumentResponse{
			ID:         doc.ID,
			Name:       doc.Name,
			Path:       doc.Path,
			SignedURL:  signedURL,
			Category:   doc.Category,
			UploadedAt: doc.CreatedAt,
		})
	}
}

// ListRequestDocuments godoc
// @Summary      List documents of the request conversation
// @Tags         documents
// @Produce      json
// @Param        id  path  string  true  "Request ID"
// @Success      200  {array}   models.DocumentResponse
// @Failure      401  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/requests/{id}/documents [get]
func ListRequestDocuments(conv *services.ConversationService, linker *services.DocumentLinker, blob storage.BlobStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		conversation, err := conv.FindByRequest(c.Param("id"))
		if err != nil {
			respondServiceError(c, err)
			return
		}

		docs, err := linker.ListDocuments(conversation.ID)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		out := make([]models.DocumentResponse, 0, len(docs))
		for _, doc := range docs {
			signedURL, _ := blob.SignedURL(doc.Path, time.Hour)
			out = append(out, models.DocumentResponse{
				ID:         doc.ID,
				Name:       doc.Name,
				Path:       doc.Path,
				SignedURL:  signedURL,
				Category:   doc.Category,
				UploadedAt: doc.CreatedAt,
			})
		}
		c.JSON(http.StatusOK, out)
	}
}
