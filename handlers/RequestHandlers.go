package handlers

import (
	"net/http"

	"craftmarket/models"
	"craftmarket/services"

	"github.com/gin-gonic/gin"
)

// CreateRequest godoc
// @Summary      Submit a service request
// @Tags         requests
// @Accept       json
// @Produce      json
// @Param        body  body  models.CreateRequestRequest  true  "Request"
// @Success      200  {object}  models.Request
// @Failure      400  {object}  models.ErrorResponse
// @Router       /api/requests [post]
func CreateRequest(requests *services.RequestService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.CreateRequestRequest
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "title is required", Code: models.CodeValidation})
			return
		}
		req, err := requests.Create(c.GetString("userID"), input)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, req)
	}
}

// GetRequest godoc
// @Summary      Fetch a service request
// @Tags         requests
// @Produce      json
// @Param        id  path  string  true  "Request ID"
// @Success      200  {object}  models.Request
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/requests/{id} [get]
func GetRequest(requests *services.RequestService) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := requests.Get(c.Param("id"))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, req)
	}
}

// ListRequests godoc
// @Summary      List the caller's service requests
// @Tags         requests
// @Produce      json
// @Success      200  {array}   models.Request
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/requests [get]
func ListRequests(requests *services.RequestService) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqs, err := requests.ListByOwner(c.GetString("userID"))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, reqs)
	}
}
