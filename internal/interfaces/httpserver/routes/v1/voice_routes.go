package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"voicebroker/internal/domain/voice"
	"voicebroker/internal/interfaces/httpserver/handlers"
	"voicebroker/internal/interfaces/httpserver/requests"
	"voicebroker/internal/interfaces/httpserver/responses"
)

// RegisterVoiceRoutes registers the signaling and transcript routes.
func RegisterVoiceRoutes(router gin.IRoutes, handler *handlers.VoiceHandler) {
	router.POST("/voice/process", processVoice(handler))
	router.POST("/voice/text-log", textLog(handler))
	router.GET("/instructions", instructions(handler))
}

func processVoice(handler *handlers.VoiceHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req requests.ProcessVoiceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			responses.HandleNewError(c, errorTypeValidation, "invalid request body: "+err.Error())
			return
		}

		result, err := handler.ProcessOffer(c.Request.Context(), &voice.OfferRequest{
			ClientID:  req.ClientID,
			SessionID: req.SessionID,
			Referer:   c.GetHeader("Referer"),
			Voice:     req.Voice,
			OfferSDP:  req.Offer.SDP,
		})
		if err != nil {
			responses.HandleError(c, err, "failed to process offer")
			return
		}

		c.JSON(http.StatusOK, responses.ProcessVoiceResponse{
			Answer:       result.Answer,
			Instructions: result.Instructions,
		})
	}
}

func textLog(handler *handlers.VoiceHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req requests.TextLogRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			responses.HandleNewError(c, errorTypeValidation, "invalid request body: "+err.Error())
			return
		}
		if !validRole(req.Role) {
			responses.HandleNewError(c, errorTypeValidation, "role must be user, assistant, or error")
			return
		}

		err := handler.AppendTranscript(c.Request.Context(), &voice.TranscriptEntry{
			ClientID:        req.ClientID,
			SessionID:       req.SessionID,
			Referer:         c.GetHeader("Referer"),
			Role:            req.Role,
			Text:            req.Text,
			IsTranscription: req.IsTranscription,
		})
		if err != nil {
			responses.HandleError(c, err, "failed to record transcript entry")
			return
		}

		c.JSON(http.StatusOK, responses.TextLogResponse{Logged: true})
	}
}

func instructions(handler *handlers.VoiceHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.Query("client_id")
		if clientID == "" {
			responses.HandleNewError(c, errorTypeValidation, "client_id is required")
			return
		}

		text, err := handler.Instructions(clientID, c.GetHeader("Referer"))
		if err != nil {
			responses.HandleError(c, err, "failed to load instructions")
			return
		}

		c.JSON(http.StatusOK, responses.InstructionsResponse{Instructions: text})
	}
}
