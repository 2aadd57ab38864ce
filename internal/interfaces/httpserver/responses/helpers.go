package responses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"voicebroker/internal/domain/bridge"
	"voicebroker/internal/domain/session"
	"voicebroker/internal/domain/voice"
	"voicebroker/internal/utils/platformerrors"
)

// HandleError maps domain errors to HTTP responses. The signaling protocol
// leans on two recovery hints the browser client branches on: a 404 with
// new_session_id (retry against the replacement session) and an error with
// new_session:true (start over with a fresh session).
func HandleError(c *gin.Context, err error, message string) {
	logger := log.With().Str("path", c.Request.URL.Path).Logger()

	if errors.Is(err, voice.ErrUnauthorized) {
		platformerrors.WriteForbidden(c, "client not authorized")
		return
	}

	var expired *voice.SessionExpiredError
	if errors.As(err, &expired) {
		c.JSON(http.StatusNotFound, platformerrors.HTTPErrorResponse{
			Error: &platformerrors.HTTPErrorDetail{
				Message:      "session expired or not found",
				Type:         "expired_error",
				NewSessionID: expired.NewSessionID,
			},
		})
		return
	}

	var exhausted *voice.RetryExhaustedError
	if errors.As(err, &exhausted) {
		c.JSON(http.StatusBadGateway, platformerrors.HTTPErrorResponse{
			Error: &platformerrors.HTTPErrorDetail{
				Message:    message,
				Type:       "external_error",
				NewSession: true,
			},
		})
		return
	}

	var upstream *bridge.UpstreamError
	if errors.As(err, &upstream) {
		c.JSON(http.StatusBadGateway, platformerrors.HTTPErrorResponse{
			Error: &platformerrors.HTTPErrorDetail{
				Message: message,
				Type:    "external_error",
			},
		})
		return
	}

	if errors.Is(err, bridge.ErrProviderInit) {
		platformerrors.WriteInternalError(c, "provider initialization failed")
		return
	}
	if errors.Is(err, session.ErrSessionNotFound) {
		platformerrors.WriteNotFound(c, message)
		return
	}
	if errors.Is(err, session.ErrSessionAlreadyExists) {
		c.JSON(http.StatusConflict, platformerrors.HTTPErrorResponse{
			Error: &platformerrors.HTTPErrorDetail{
				Message: message,
				Type:    "conflict_error",
			},
		})
		return
	}

	platformerrors.WriteError(c, err, logger)
}

// HandleNewError creates and writes a new typed error response.
// Use this for route-level errors like validation failures.
func HandleNewError(c *gin.Context, errorType platformerrors.ErrorType, message string) {
	status := platformerrors.ErrorTypeToHTTPStatus(errorType)
	c.JSON(status, platformerrors.HTTPErrorResponse{
		Error: &platformerrors.HTTPErrorDetail{
			Message: message,
			Type:    platformerrors.ErrorTypeString(errorType),
		},
	})
}
