package handlers

import (
	"net/http"

	"craftmarket/models"
	"craftmarket/services"

	"github.com/gin-gonic/gin"
)

// CreateOrder godoc
// @Summary      Create an order
// @Description  Creates a fulfillment order from an accepted offer or directly. Returns the existing order id when an active one already exists.
// @Tags         orders
// @Accept       multipart/form-data
// @Produce      json
// @Param        request_id     formData  string  true   "Request ID"
// @Param        offer_id       formData  string  false  "Accepted offer to link"
// @Param        title          formData  string  true   "Order title"
// @Param        net_total      formData  number  false  "Net total"
// @Param        tax_rate       formData  number  false  "Tax rate percent"
// @Param        discount_type  formData  string  false  "percent or fixed"
// @Param        discount_value formData  number  false  "Discount value"
// @Param        files          formData  file    false  "Attachments"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  models.ErrorResponse
// @Failure      403  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /api/orders [post]
func CreateOrder(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.CreateOrderRequest
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "request_id and title are required", Code: models.CodeValidation})
			return
		}

		result, err := orders.Create(c.GetString("userID"), c.GetBool("isAdmin"), input, collectUploadedFiles(c))
		if err != nil {
			respondServiceError(c, err)
			return
		}

		if result.Existed {
			c.JSON(http.StatusOK, gin.H{"ok": true, "status": "order_exists", "order_id": result.Order.ID})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"ok":       true,
			"order_id": result.Order.ID,
			"files":    result.Files,
		})
	}
}

// CancelOrder godoc
// @Summary      Cancel an order
// @Description  Allowed within the statutory 14-day withdrawal window. Repeat cancels succeed without duplicate effects.
// @Tags         orders
// @Produce      json
// @Param        id  path  string  true  "Order ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /api/orders/{id}/cancel [post]
func CancelOrder(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := orders.Cancel(c.GetString("userID"), c.Param("id")); err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "status": models.OrderCanceled})
	}
}
