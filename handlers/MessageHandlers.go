package handlers

import (
	"net/http"

	"craftmarket/models"
	"craftmarket/services"

	"github.com/gin-gonic/gin"
)

func conversationMember(conv *models.Conversation, callerID string, isAdmin bool) bool {
	return isAdmin || conv.ConsumerID == callerID || conv.PartnerID == callerID
}

// ListConversationMessages godoc
// @Summary      List the message thread of a request
// @Tags         messages
// @Produce      json
// @Param        id  path  string  true  "Request ID"
// @Success      200  {array}   models.Message
// @Failure      403  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/requests/{id}/messages [get]
func ListConversationMessages(conv *services.ConversationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		conversation, err := conv.FindByRequest(c.Param("id"))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		if !conversationMember(conversation, c.GetString("userID"), c.GetBool("isAdmin")) {
			c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "not a member of this conversation", Code: models.CodeForbidden})
			return
		}

		msgs, err := conv.ListMessages(conversation.ID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, msgs)
	}
}

// PostConversationMessage godoc
// @Summary      Post a message into the request conversation
// @Tags         messages
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "Request ID"
// @Param        body  body  models.PostMessageRequest  true  "Message"
// @Success      200  {object}  models.Message
// @Failure      400  {object}  models.ErrorResponse
// @Failure      403  {object}  models.ErrorResponse
// @Router       /api/requests/{id}/messages [post]
func PostConversationMessage(conv *services.ConversationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.PostMessageRequest
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "body is required", Code: models.CodeValidation})
			return
		}

		conversation, err := conv.FindByRequest(c.Param("id"))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		callerID := c.GetString("userID")
		if !conversationMember(conversation, callerID, c.GetBool("isAdmin")) {
			c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "not a member of this conversation", Code: models.CodeForbidden})
			return
		}

		msg, err := conv.PostMessage(conversation.ID, callerID, input.Body)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, msg)
	}
}
