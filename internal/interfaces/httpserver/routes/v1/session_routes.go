package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"voicebroker/internal/interfaces/httpserver/handlers"
	"voicebroker/internal/interfaces/httpserver/requests"
	"voicebroker/internal/interfaces/httpserver/responses"
)

// RegisterSessionRoutes registers the broker session lifecycle routes.
// Session IDs travel as query parameters, matching the browser SDK's calls.
func RegisterSessionRoutes(router gin.IRoutes, handler *handlers.SessionHandler) {
	router.POST("/sessions", createSession(handler))
	router.GET("/sessions", validateSession(handler))
	router.DELETE("/sessions", deleteSession(handler))
}

func createSession(handler *handlers.SessionHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req requests.CreateSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			responses.HandleNewError(c, errorTypeValidation, "invalid request body: "+err.Error())
			return
		}

		sess, err := handler.CreateSession(c.Request.Context(), req.ClientID, c.GetHeader("Referer"), req.Metadata)
		if err != nil {
			responses.HandleError(c, err, "failed to create session")
			return
		}

		c.JSON(http.StatusCreated, responses.NewSessionResponse(sess))
	}
}

func validateSession(handler *handlers.SessionHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Query("session_id")
		if id == "" {
			responses.HandleNewError(c, errorTypeValidation, "session_id is required")
			return
		}

		sess, err := handler.ValidateSession(c.Request.Context(), id)
		if err != nil {
			responses.HandleError(c, err, "session not found")
			return
		}

		c.JSON(http.StatusOK, responses.ValidateSessionResponse{
			Valid:   true,
			Session: responses.NewSessionResponse(sess),
		})
	}
}

func deleteSession(handler *handlers.SessionHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Query("session_id")
		if id == "" {
			responses.HandleNewError(c, errorTypeValidation, "session_id is required")
			return
		}

		deleted, err := handler.DeleteSession(c.Request.Context(), id)
		if err != nil {
			responses.HandleError(c, err, "failed to delete session")
			return
		}

		c.JSON(http.StatusOK, responses.DeleteSessionResponse{
			Deleted:   deleted,
			SessionID: id,
		})
	}
}
