package handlers

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"craftmarket/models"
	"craftmarket/storage"
	"craftmarket/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// respondServiceError maps a service-layer error onto the JSON error body.
func respondServiceError(c *gin.Context, err error) {
	if svcErr, ok := err.(*models.ServiceError); ok {
		c.JSON(svcErr.Status, models.ErrorResponse{Error: svcErr.Message, Code: svcErr.Code})
		return
	}
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal server error", Code: models.CodeInternal})
}

func bearerToken(c *gin.Context) string {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	const bearerPrefix = "Bearer "
	if strings.HasPrefix(authHeader, bearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
	}
	return authHeader
}

// SessionAuth validates the bearer token against both the JWT signature and
// the session table, then stores the caller identity in the context.
func SessionAuth(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "missing bearer token", Code: models.CodeUnauthorized})
			c.Abort()
			return
		}

		parsedToken, err := utils.ValidateJWT(token)
		if err != nil || !parsedToken.Valid {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid or expired token", Code: models.CodeUnauthorized})
			c.Abort()
			return
		}

		session, err := storage.GetSessionByToken(db, token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid or expired session", Code: models.CodeUnauthorized})
			c.Abort()
			return
		}

		var role string
		err = db.QueryRow("SELECT role FROM users WHERE id = $1", session.UserID).Scan(&role)
		if err != nil && err != sql.ErrNoRows {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "failed to resolve caller", Code: models.CodeUnauthorized})
			c.Abort()
			return
		}

		c.Set("userID", session.UserID)
		c.Set("email", session.Email)
		c.Set("isAdmin", strings.EqualFold(role, "admin"))
		c.Next()
	}
}

// ValidateSession validates a session token
// @Summary Validate session
// @Description Validate the caller's session token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.ErrorResponse
// @Router /api/validate-session [post]
func ValidateSession(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "missing Authorization header"})
			return
		}

		parsedToken, err := utils.ValidateJWT(token)
		if err != nil || !parsedToken.Valid {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid or expired token", Code: models.CodeUnauthorized})
			return
		}
		claims, ok := parsedToken.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid token claims", Code: models.CodeUnauthorized})
			return
		}
		if exp, ok := claims["exp"].(float64); !ok || time.Now().Unix() > int64(exp) {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "token expired", Code: models.CodeUnauthorized})
			return
		}

		session, err := storage.GetSessionByToken(db, token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid or expired session", Code: models.CodeUnauthorized})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"ok":      true,
			"user_id": session.UserID,
			"email":   session.Email,
		})
	}
}
