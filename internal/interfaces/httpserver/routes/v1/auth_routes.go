package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"voicebroker/internal/interfaces/httpserver/handlers"
	"voicebroker/internal/interfaces/httpserver/requests"
	"voicebroker/internal/interfaces/httpserver/responses"
)

// RegisterAuthRoutes registers the pre-session authorization handshake.
func RegisterAuthRoutes(router gin.IRoutes, handler *handlers.VoiceHandler) {
	router.POST("/auth/validate", validateClient(handler))
}

func validateClient(handler *handlers.VoiceHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req requests.ValidateClientRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			responses.HandleNewError(c, errorTypeValidation, "invalid request body: "+err.Error())
			return
		}

		if err := handler.ValidateClient(req.ClientID, c.GetHeader("Referer")); err != nil {
			responses.HandleError(c, err, "client validation failed")
			return
		}

		c.JSON(http.StatusOK, responses.ValidateClientResponse{Valid: true})
	}
}
