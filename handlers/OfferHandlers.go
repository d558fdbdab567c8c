package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"craftmarket/models"
	"craftmarket/services"

	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// collectUploadedFiles pulls the "files" field of a multipart form into the
// handler-agnostic upload type the services consume.
func collectUploadedFiles(c *gin.Context) []services.UploadedFile {
	form, err := c.MultipartForm()
	if err != nil {
		return nil
	}
	headers := form.File["files"]
	files := make([]services.UploadedFile, 0, len(headers))
	for _, h := range headers {
		header := h
		files = append(files, services.UploadedFile{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Open: func() (io.ReadCloser, error) {
				return header.Open()
			},
		})
	}
	return files
}

// CreateOffer godoc
// @Summary      Create an offer
// @Description  Persists a priced offer with attached files and posts a system message into the conversation
// @Tags         offers
// @Accept       multipart/form-data
// @Produce      json
// @Param        request_id     formData  string  true   "Request ID"
// @Param        title          formData  string  true   "Offer title"
// @Param        net_total      formData  number  false  "Net total"
// @Param        tax_rate       formData  number  false  "Tax rate percent"
// @Param        discount_type  formData  string  false  "percent or fixed"
// @Param        discount_value formData  number  false  "Discount value"
// @Param        files          formData  file    true   "Attachments"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  models.ErrorResponse
// @Failure      403  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/offers [post]
func CreateOffer(offers *services.OfferService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.CreateOfferRequest
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "request_id and title are required", Code: models.CodeValidation})
			return
		}

		offer, fileResults, err := offers.Create(c.GetString("userID"), input, collectUploadedFiles(c))
		if err != nil {
			respondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"ok":           true,
			"offer_id":     offer.ID,
			"signature_id": offer.SignatureID,
			"gross_total":  offer.GrossTotal,
			"files":        fileResults,
		})
	}
}

// AcceptOffer godoc
// @Summary      Accept an offer
// @Tags         offers
// @Produce      json
// @Param        id  path  string  true  "Offer ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /api/offers/{id}/accept [post]
func AcceptOffer(offers *services.OfferService) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, err := offers.Accept(c.GetString("userID"), c.Param("id"))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "status": status})
	}
}

// DeclineOffer godoc
// @Summary      Decline an offer
// @Description  Allowed from created and accepted (storno)
// @Tags         offers
// @Produce      json
// @Param        id  path  string  true  "Offer ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/offers/{id}/decline [post]
func DeclineOffer(offers *services.OfferService) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, err := offers.Decline(c.GetString("userID"), c.Param("id"))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "status": status})
	}
}

// OfferPDF godoc
// @Summary      Printable offer summary
// @Description  Renders the offer with pricing breakdown and a QR code of its signature id
// @Tags         offers
// @Produce      application/pdf
// @Param        id  path  string  true  "Offer ID"
// @Success      200  {file}    file  "PDF document"
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/offers/{id}/pdf [get]
func OfferPDF(offers *services.OfferService) gin.HandlerFunc {
	return func(c *gin.Context) {
		offer, files, err := offers.Get(c.Param("id"))
		if err != nil {
			respondServiceError(c, err)
			return
		}

		pdf := gofpdf.New("P", "mm", "A4", "")
		tr := pdf.UnicodeTranslatorFromDescriptor("")
		pdf.AddPage()

		pdf.SetFont("Helvetica", "B", 18)
		pdf.Cell(0, 12, tr("Angebot"))
		pdf.Ln(14)

		pdf.SetFont("Helvetica", "", 12)
		pdf.Cell(0, 8, tr(offer.Title))
		pdf.Ln(12)

		row := func(label, value string) {
			pdf.SetFont("Helvetica", "", 11)
			pdf.CellFormat(90, 8, tr(label), "", 0, "L", false, 0, "")
			pdf.CellFormat(60, 8, tr(value), "", 1, "R", false, 0, "")
		}
		row("Nettobetrag", fmt.Sprintf("%.2f EUR", offer.NetTotal))
		if offer.DiscountValue > 0 {
			label := offer.DiscountLabel
			if label == "" {
				label = "Rabatt"
			}
			if offer.DiscountType == models.DiscountPercent {
				row(label, fmt.Sprintf("-%.0f %%", offer.DiscountValue))
			} else {
				row(label, fmt.Sprintf("-%.2f EUR", offer.DiscountValue))
			}
		}
		row("Steuersatz", fmt.Sprintf("%.0f %%", offer.TaxRate))
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(90, 10, tr("Gesamtbetrag"), "T", 0, "L", false, 0, "")
		pdf.CellFormat(60, 10, fmt.Sprintf("%.2f EUR", offer.GrossTotal), "T", 1, "R", false, 0, "")
		pdf.Ln(6)

		if len(files) > 0 {
			pdf.SetFont("Helvetica", "B", 11)
			pdf.Cell(0, 8, tr("Anlagen"))
			pdf.Ln(8)
			pdf.SetFont("Helvetica", "", 10)
			for _, f := range files {
				pdf.Cell(0, 6, tr("- "+f.Name))
				pdf.Ln(6)
			}
		}

		// Signature QR in the top right corner
		png, err := qrcode.Encode(offer.SignatureID, qrcode.Medium, 256)
		if err == nil {
			opts := gofpdf.ImageOptions{ImageType: "PNG"}
			pdf.RegisterImageOptionsReader("signature-qr", opts, bytes.NewReader(png))
			pdf.ImageOptions("signature-qr", 160, 10, 35, 35, false, opts, 0, "")
		}

		var buf bytes.Buffer
		if err := pdf.Output(&buf); err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to render PDF", Code: models.CodeInternal})
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=angebot-%s.pdf", offer.ID))
		c.Data(http.StatusOK, "application/pdf", buf.Bytes())
	}
}
