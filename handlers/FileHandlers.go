package handlers

import (
	"io"
	"net/http"

	"craftmarket/models"
	"craftmarket/storage"

	"github.com/gin-gonic/gin"
)

// ServeFile godoc
// @Summary      Download a file via signed token
// @Description  Serves a blob referenced by a signed, expiring download token
// @Tags         files
// @Produce      application/octet-stream
// @Param        token  query  string  true  "Signed download token"
// @Success      200  {file}    file  "File content"
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/files [get]
func ServeFile(blob storage.BlobStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "token parameter is required", Code: models.CodeValidation})
			return
		}

		path, err := blob.VerifySignedToken(token)
		if err != nil {
			c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "invalid or expired file token", Code: models.CodeForbidden})
			return
		}

		file, err := blob.Open(path)
		if err != nil {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "file not found", Code: models.CodeNotFound})
			return
		}
		defer file.Close()

		// Sniff the content type from the first chunk
		buffer := make([]byte, 512)
		n, _ := file.Read(buffer)
		contentType := http.DetectContentType(buffer[:n])

		c.Header("Content-Type", contentType)
		c.Status(http.StatusOK)
		c.Writer.Write(buffer[:n])
		io.Copy(c.Writer, file)
	}
}
