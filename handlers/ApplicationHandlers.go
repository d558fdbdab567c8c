package handlers

import (
	"net/http"

	"craftmarket/models"
	"craftmarket/services"

	"github.com/gin-gonic/gin"
)

// ListApplications godoc
// @Summary      List applications for a request
// @Description  Returns every partner bid on the request
// @Tags         applications
// @Produce      json
// @Param        id  path  string  true  "Request ID"
// @Success      200  {array}   models.Application
// @Failure      401  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/requests/{id}/applications [get]
func ListApplications(apps *services.ApplicationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := apps.List(c.Param("id"))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// DecideApplication godoc
// @Summary      Accept or decline an application
// @Description  Accepting declines every sibling bid, promotes the request and returns the conversation id for redirection
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        id    path  string                           true  "Application ID"
// @Param        body  body  models.DecideApplicationRequest  true  "Decision"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  models.ErrorResponse
// @Failure      403  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /api/applications/{id}/decision [post]
func DecideApplication(apps *services.ApplicationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body models.DecideApplicationRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "action and request_id are required", Code: models.CodeValidation})
			return
		}

		conversationID, err := apps.Decide(c.GetString("userID"), c.Param("id"), body.Action, body.RequestID)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		resp := gin.H{"ok": true}
		if conversationID != "" {
			resp["conversation_id"] = conversationID
		}
		c.JSON(http.StatusOK, resp)
	}
}
