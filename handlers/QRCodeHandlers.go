package handlers

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"net/http"

	"craftmarket/models"
	"craftmarket/services"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/math/fixed"
)

// addLabel draws a text line onto the image at the given position.
func addLabel(img *image.RGBA, x, y int, label string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{30, 30, 30, 255}),
		Face: inconsolata.Regular8x16,
		Dot: fixed.Point26_6{
			X: fixed.Int26_6(x * 64),
			Y: fixed.Int26_6(y * 64),
		},
	}
	d.DrawString(label)
}

// OfferSignatureQR godoc
// @Summary      Signature QR code for an offer
// @Description  JPEG of the offer's machine-checkable signature id as a QR code with a readable label
// @Tags         offers
// @Produce      image/jpeg
// @Param        id  path  string  true  "Offer ID"
// @Success      200  {file}    file  "JPEG image"
// @Failure      404  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/offers/{id}/signature-qr [get]
func OfferSignatureQR(offers *services.OfferService) gin.HandlerFunc {
	return func(c *gin.Context) {
		offer, _, err := offers.Get(c.Param("id"))
		if err != nil {
			respondServiceError(c, err)
			return
		}

		qrImg, err := qrcode.New(offer.SignatureID, qrcode.Medium)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to generate QR code", Code: models.CodeInternal})
			return
		}

		const qrSize = 256
		const labelHeight = 28
		canvas := image.NewRGBA(image.Rect(0, 0, qrSize, qrSize+labelHeight))
		draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
		draw.Draw(canvas, image.Rect(0, 0, qrSize, qrSize), qrImg.Image(qrSize), image.Point{}, draw.Over)
		addLabel(canvas, 8, qrSize+18, offer.SignatureID)

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: 90}); err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to encode image", Code: models.CodeInternal})
			return
		}
		c.Data(http.StatusOK, "image/jpeg", buf.Bytes())
	}
}
